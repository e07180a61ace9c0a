package verification

import (
	"context"
	"fmt"
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
	ErrNotFound     = errors.New("verification not found")
	ErrNotFaculty   = errors.New("only faculty can manage verifications")
	ErrDateRequired = errors.New("a scheduled date is required")
)

type (
	Repository interface {
		CreateVerification(ctx context.Context, v Verification) (Verification, error)
		GetVerificationByID(ctx context.Context, id string) (Verification, error)
		QueryAllVerifications(ctx context.Context) ([]Verification, error)
		FilterVerifications(ctx context.Context, filter QueryFilter) ([]Verification, error)
		UpdateVerification(ctx context.Context, id string, fn func(*Verification) error) (Verification, error)
	}

	Skills interface {
		Get(ctx context.Context, id string) (skill.Skill, error)
		GetApproved(ctx context.Context, id string) (skill.Skill, error)
	}

	Users interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Notifier interface {
		Notify(ctx context.Context, recipient user.User, message, typ string) (notification.Notification, error)
	}

	Service struct {
		repo     Repository
		skills   Skills
		users    Users
		notifier Notifier
		events   core.EventPublisher
		logger   core.Logger
	}
)

func NewService(repo Repository, skills Skills, users Users, notifier Notifier, events core.EventPublisher, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(skills, "skills"),
		vala.IsNotNil(users, "users"),
		vala.IsNotNil(notifier, "notifier"),
		vala.IsNotNil(events, "events"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	return &Service{repo: repo, skills: skills, users: users, notifier: notifier, events: events, logger: logger}
}

// Schedule books a verification session on an approved skill and notifies its mentor.
// Overlapping sessions are not detected.
func (svc *Service) Schedule(ctx context.Context, faculty user.User, skillID string, date time.Time) (Verification, error) {
	if !faculty.IsFaculty() {
		return Verification{}, ErrNotFaculty
	}
	if date.IsZero() {
		return Verification{}, core.NewFieldError("scheduled_date", ErrDateRequired)
	}
	s, err := svc.skills.GetApproved(ctx, skillID)
	if err != nil {
		return Verification{}, err
	}

	v, err := svc.repo.CreateVerification(ctx, Verification{
		SkillID:       s.ID,
		FacultyID:     faculty.ID,
		FacultyName:   faculty.Name,
		ScheduledDate: date.UTC(),
		CreatedAt:     core.Now(),
	})
	if err != nil {
		return Verification{}, errors.Wrap(err, "creating verification")
	}

	mentor, err := svc.users.GetByID(ctx, s.MentorID)
	if err != nil {
		return v, errors.Wrap(err, "finding mentor")
	}
	msg := fmt.Sprintf("Verification session scheduled for \"%s\" on %s", s.Title, v.ScheduledDate.Format(DateLayout))
	if _, err = svc.notifier.Notify(ctx, mentor, msg, notification.TypeInfo); err != nil {
		return v, errors.Wrap(err, "notifying mentor")
	}
	core.PublishOrLog(ctx, svc.events, svc.logger, core.NewEvent(core.EventVerificationScheduled, v.ID, v))
	return v, nil
}

// Complete closes the session with remarks. Completing a closed session changes nothing.
func (svc *Service) Complete(ctx context.Context, faculty user.User, id, remarks string) (Verification, error) {
	if !faculty.IsFaculty() {
		return Verification{}, ErrNotFaculty
	}

	var changed bool
	v, err := svc.repo.UpdateVerification(ctx, id, func(v *Verification) error {
		if v.Completed {
			return nil
		}
		v.Completed = true
		if remarks = core.CleanString(remarks); remarks != "" {
			v.Remarks = null.StringFrom(remarks)
		}
		changed = true
		return nil
	})
	if err != nil {
		return Verification{}, errors.Wrap(err, "completing verification")
	}
	if changed {
		core.PublishOrLog(ctx, svc.events, svc.logger, core.NewEvent(core.EventVerificationCompleted, v.ID, v))
	}
	return v, nil
}

// ListForFaculty returns the faculty member's sessions with their skill titles.
func (svc *Service) ListForFaculty(ctx context.Context, facultyID string) ([]View, error) {
	verifs, err := svc.repo.FilterVerifications(ctx, QueryFilter{FacultyID: facultyID})
	if err != nil {
		return nil, errors.Wrap(err, "filtering verifications")
	}

	views := make([]View, 0, len(verifs))
	for _, v := range verifs {
		view := View{Verification: v, SkillTitle: UnknownSkill}
		s, err := svc.skills.Get(ctx, v.SkillID)
		switch errors.Cause(err) {
		case nil:
			view.SkillTitle = s.Title
			view.MentorName = s.MentorName
		case skill.ErrNotFound: // keep fallback
		default:
			return nil, errors.Wrap(err, "finding skill")
		}
		views = append(views, view)
	}
	return views, nil
}

func (svc *Service) ListAll(ctx context.Context) ([]Verification, error) {
	return svc.repo.QueryAllVerifications(ctx)
}
