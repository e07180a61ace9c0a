package paymentsvc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/enrollment"
)

// Decliner decides whether a charge is declined.
type Decliner func(req enrollment.ChargeRequest) bool

// SimulatedGateway approves every charge after a fixed delay unless its Decliner says otherwise.
type SimulatedGateway struct {
	delay   time.Duration
	decline Decliner
}

var _ enrollment.PaymentGateway = (*SimulatedGateway)(nil)

func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{delay: delay}
}

// WithDecliner returns a copy of the gateway declining the charges matched by fn.
func (gw SimulatedGateway) WithDecliner(fn Decliner) *SimulatedGateway {
	gw.decline = fn
	return &gw
}

// Charge waits for the configured delay, or until ctx is done.
func (gw *SimulatedGateway) Charge(ctx context.Context, req enrollment.ChargeRequest) (enrollment.ChargeResult, error) {
	if gw.delay > 0 {
		timer := time.NewTimer(gw.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return enrollment.ChargeResult{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return enrollment.ChargeResult{}, err
	}

	res := enrollment.ChargeResult{
		Status:        enrollment.PaymentCompleted,
		TransactionID: "TXN-" + uuid.NewString(),
		ProcessedAt:   core.Now(),
	}
	if gw.decline != nil && gw.decline(req) {
		res.Status = enrollment.PaymentFailed
	}
	return res, nil
}
