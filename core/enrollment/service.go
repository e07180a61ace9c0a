package enrollment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/notification"
	"github.com/skillx/skillx/core/skill"
	"github.com/skillx/skillx/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("enrollment not found")
	ErrNotLearner      = errors.New("only students can enroll in skills")
	ErrOwnSkill        = errors.New("mentors cannot enroll in their own skills")
	ErrAlreadyEnrolled = errors.New("already enrolled in this skill")
	ErrPaymentFailed   = errors.New("payment failed")
	ErrFeedbackExists  = errors.New("feedback has already been left")
)

type (
	Repository interface {
		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id string) (Enrollment, error)
		QueryAllEnrollments(ctx context.Context) ([]Enrollment, error)
		FilterEnrollments(ctx context.Context, filter QueryFilter) ([]Enrollment, error)
		UpdateEnrollment(ctx context.Context, id string, fn func(*Enrollment) error) (Enrollment, error)

		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		QueryAllPayments(ctx context.Context) ([]Payment, error)
		FilterPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error)
	}

	// PaymentGateway charges learners. Charge blocks until the payment is processed or ctx is done.
	PaymentGateway interface {
		Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	}

	Skills interface {
		GetApproved(ctx context.Context, id string) (skill.Skill, error)
	}

	Users interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Notifier interface {
		Notify(ctx context.Context, recipient user.User, message, typ string) (notification.Notification, error)
	}

	Service struct {
		repo           Repository
		skills         Skills
		users          Users
		notifier       Notifier
		gateway        PaymentGateway
		events         core.EventPublisher
		logger         core.Logger
		paymentTimeout time.Duration

		mu       sync.Mutex
		inflight map[string]struct{} // learnerID/skillID being charged
	}
)

type Deps struct {
	Repo           Repository
	Skills         Skills
	Users          Users
	Notifier       Notifier
	Gateway        PaymentGateway
	Events         core.EventPublisher
	Logger         core.Logger
	PaymentTimeout time.Duration // 0: no timeout
}

func NewService(deps Deps) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Repo, "repo"),
		vala.IsNotNil(deps.Skills, "skills"),
		vala.IsNotNil(deps.Users, "users"),
		vala.IsNotNil(deps.Notifier, "notifier"),
		vala.IsNotNil(deps.Gateway, "gateway"),
		vala.IsNotNil(deps.Events, "events"),
		vala.IsNotNil(deps.Logger, "logger"),
	).CheckAndPanic()
	return &Service{
		repo:           deps.Repo,
		skills:         deps.Skills,
		users:          deps.Users,
		notifier:       deps.Notifier,
		gateway:        deps.Gateway,
		events:         deps.Events,
		logger:         deps.Logger,
		paymentTimeout: deps.PaymentTimeout,
		inflight:       make(map[string]struct{}),
	}
}

// Enroll charges the learner for an approved skill then records the enrollment.
// A declined charge is recorded as a failed Payment and no Enrollment is created.
// Nothing is recorded if ctx ends before the gateway answers.
func (svc *Service) Enroll(ctx context.Context, learner user.User, skillID string) (Enrollment, error) {
	if !learner.IsStudent() {
		return Enrollment{}, ErrNotLearner
	}
	s, err := svc.skills.GetApproved(ctx, skillID)
	if err != nil {
		return Enrollment{}, err
	}
	if s.MentorID == learner.ID {
		return Enrollment{}, ErrOwnSkill
	}

	key := learner.ID + "/" + s.ID
	if err = svc.begin(ctx, key, learner.ID, s.ID); err != nil {
		return Enrollment{}, err
	}
	defer svc.end(key)

	res, err := svc.charge(ctx, ChargeRequest{LearnerID: learner.ID, MentorID: s.MentorID, SkillID: s.ID, Amount: s.Price})
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "charging learner")
	}
	if res.Status != PaymentCompleted {
		if err = svc.recordFailedPayment(ctx, learner, s, res); err != nil {
			return Enrollment{}, err
		}
		return Enrollment{}, ErrPaymentFailed
	}
	return svc.RecordEnrollment(ctx, learner, s, res.TransactionID)
}

// begin reserves key for the duration of a charge, failing if the learner is already (being) enrolled.
func (svc *Service) begin(ctx context.Context, key, learnerID, skillID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if _, ok := svc.inflight[key]; ok {
		return ErrAlreadyEnrolled
	}
	enrolled, err := svc.IsEnrolled(ctx, learnerID, skillID)
	if err != nil {
		return err
	}
	if enrolled {
		return ErrAlreadyEnrolled
	}
	svc.inflight[key] = struct{}{}
	return nil
}

func (svc *Service) end(key string) {
	svc.mu.Lock()
	delete(svc.inflight, key)
	svc.mu.Unlock()
}

func (svc *Service) charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if svc.paymentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, svc.paymentTimeout)
		defer cancel()
	}
	return svc.gateway.Charge(ctx, req)
}

func (svc *Service) recordFailedPayment(ctx context.Context, learner user.User, s skill.Skill, res ChargeResult) error {
	p, err := svc.repo.CreatePayment(ctx, Payment{
		LearnerID:       learner.ID,
		MentorID:        s.MentorID,
		SkillID:         s.ID,
		Amount:          s.Price,
		Status:          PaymentFailed,
		TransactionID:   res.TransactionID,
		TransactionDate: core.Now(),
	})
	if err != nil {
		return errors.Wrap(err, "creating failed payment")
	}
	msg := fmt.Sprintf("Payment for \"%s\" failed. You have not been enrolled.", s.Title)
	if _, err = svc.notifier.Notify(ctx, learner, msg, notification.TypeWarning); err != nil {
		return errors.Wrap(err, "notifying learner")
	}
	core.PublishOrLog(ctx, svc.events, svc.logger, core.NewEvent(core.EventPaymentFailed, p.ID, p))
	return nil
}

// RecordEnrollment appends the Enrollment (price copied from s) and its completed Payment,
// then notifies the learner and the mentor. The two records are written independently.
func (svc *Service) RecordEnrollment(ctx context.Context, learner user.User, s skill.Skill, txID string) (Enrollment, error) {
	now := core.Now()
	e, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		LearnerID:   learner.ID,
		LearnerName: learner.Name,
		MentorID:    s.MentorID,
		MentorName:  s.MentorName,
		SkillID:     s.ID,
		SkillTitle:  s.Title,
		Price:       s.Price,
		EnrolledAt:  now,
	})
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "creating enrollment")
	}

	p, err := svc.repo.CreatePayment(ctx, Payment{
		LearnerID:       learner.ID,
		MentorID:        s.MentorID,
		SkillID:         s.ID,
		Amount:          s.Price,
		Status:          PaymentCompleted,
		TransactionID:   txID,
		TransactionDate: now,
	})
	if err != nil {
		return e, errors.Wrap(err, "creating payment")
	}

	core.PublishOrLog(ctx, svc.events, svc.logger,
		core.NewEvent(core.EventEnrollmentCreated, e.ID, e),
		core.NewEvent(core.EventPaymentCompleted, p.ID, p),
	)

	if _, err = svc.notifier.Notify(ctx, learner, fmt.Sprintf("Successfully enrolled in \"%s\"", s.Title), notification.TypeSuccess); err != nil {
		return e, errors.Wrap(err, "notifying learner")
	}
	mentor, err := svc.users.GetByID(ctx, s.MentorID)
	if err != nil {
		return e, errors.Wrap(err, "finding mentor")
	}
	msg := fmt.Sprintf("%s enrolled in your skill \"%s\"", learner.Name, s.Title)
	if _, err = svc.notifier.Notify(ctx, mentor, msg, notification.TypeInfo); err != nil {
		return e, errors.Wrap(err, "notifying mentor")
	}
	return e, nil
}

// MarkCompleted flags the learner's enrollment as completed. Calling it again changes nothing.
func (svc *Service) MarkCompleted(ctx context.Context, learner user.User, id string) (Enrollment, error) {
	return svc.repo.UpdateEnrollment(ctx, id, func(e *Enrollment) error {
		if e.LearnerID != learner.ID {
			return core.ErrForbidden
		}
		e.Completed = true
		return nil
	})
}

// LeaveFeedback sets the enrollment feedback once. Blank text is ignored.
func (svc *Service) LeaveFeedback(ctx context.Context, learner user.User, id, text string) (Enrollment, error) {
	text = core.CleanString(text)
	if text == "" {
		e, err := svc.repo.GetEnrollmentByID(ctx, id)
		if err != nil {
			return Enrollment{}, err
		}
		if e.LearnerID != learner.ID {
			return Enrollment{}, core.ErrForbidden
		}
		return e, nil
	}

	return svc.repo.UpdateEnrollment(ctx, id, func(e *Enrollment) error {
		if e.LearnerID != learner.ID {
			return core.ErrForbidden
		}
		if e.Feedback.Valid {
			return ErrFeedbackExists
		}
		e.Feedback = null.StringFrom(text)
		return nil
	})
}

func (svc *Service) IsEnrolled(ctx context.Context, learnerID, skillID string) (bool, error) {
	enrollments, err := svc.repo.FilterEnrollments(ctx, QueryFilter{LearnerID: learnerID, SkillID: skillID})
	if err != nil {
		return false, errors.Wrap(err, "filtering enrollments")
	}
	return len(enrollments) > 0, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollmentByID(ctx, id)
}

func (svc *Service) ListForLearner(ctx context.Context, learnerID string) ([]Enrollment, error) {
	return svc.repo.FilterEnrollments(ctx, QueryFilter{LearnerID: learnerID})
}

func (svc *Service) ListForMentor(ctx context.Context, mentorID string) ([]Enrollment, error) {
	return svc.repo.FilterEnrollments(ctx, QueryFilter{MentorID: mentorID})
}

func (svc *Service) ListAll(ctx context.Context) ([]Enrollment, error) {
	return svc.repo.QueryAllEnrollments(ctx)
}

// ListPaymentsForUser returns the payments the user made or received.
func (svc *Service) ListPaymentsForUser(ctx context.Context, userID string) ([]Payment, error) {
	return svc.repo.FilterPayments(ctx, PaymentFilter{UserID: userID})
}

func (svc *Service) ListPayments(ctx context.Context) ([]Payment, error) {
	return svc.repo.QueryAllPayments(ctx)
}
