package core

import (
	"context"
	"time"
)

// Event types
const (
	EventSkillSubmitted        = "skill.submitted"
	EventSkillApproved         = "skill.approved"
	EventSkillRejected         = "skill.rejected"
	EventEnrollmentCreated     = "enrollment.created"
	EventPaymentCompleted      = "payment.completed"
	EventPaymentFailed         = "payment.failed"
	EventVideoUploaded         = "video.uploaded"
	EventVerificationScheduled = "verification.scheduled"
	EventVerificationCompleted = "verification.completed"
	EventNotificationCreated   = "notification.created"
)

type Event struct {
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func NewEvent(typ, key string, payload interface{}) Event {
	return Event{Type: typ, Key: key, Payload: payload, OccurredAt: Now()}
}

// EventPublisher is any service that can publish domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// PublishOrLog publishes events through pub, logging failures instead of returning them.
func PublishOrLog(ctx context.Context, pub EventPublisher, logger Logger, events ...Event) {
	if pub == nil || len(events) == 0 {
		return
	}
	if err := pub.Publish(ctx, events...); err != nil {
		logger.Error("publishing "+events[0].Type+" events", err)
	}
}
