package skill

import (
	"context"
	"fmt"
	"sort"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/notification"
	"github.com/skillx/skillx/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("skill not found")
	ErrNotApproved    = errors.New("skill is not approved")
	ErrNotMentor      = errors.New("only mentors can submit skills")
	ErrNotFaculty     = errors.New("only faculty can decide on skills")
	ErrReasonRequired = errors.New("a rejection reason is required")
)

type (
	Repository interface {
		CreateSkill(ctx context.Context, s Skill) (Skill, error)
		GetSkillByID(ctx context.Context, id string) (Skill, error)
		QueryAllSkills(ctx context.Context) ([]Skill, error)
		// FilterSkills applies AND operation on available QueryFilter fields.
		FilterSkills(ctx context.Context, filter QueryFilter) ([]Skill, error)
		UpdateSkill(ctx context.Context, id string, fn func(*Skill) error) (Skill, error)
	}

	// Users looks up the people to notify.
	Users interface {
		GetByID(ctx context.Context, id string) (user.User, error)
		ListFaculty(ctx context.Context) ([]user.User, error)
	}

	Notifier interface {
		Notify(ctx context.Context, recipient user.User, message, typ string) (notification.Notification, error)
		NotifyMany(ctx context.Context, recipients []user.User, message, typ string) ([]notification.Notification, error)
	}

	Service struct {
		repo     Repository
		users    Users
		notifier Notifier
		events   core.EventPublisher
		logger   core.Logger
	}
)

func NewService(repo Repository, users Users, notifier Notifier, events core.EventPublisher, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(users, "users"),
		vala.IsNotNil(notifier, "notifier"),
		vala.IsNotNil(events, "events"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	return &Service{repo: repo, users: users, notifier: notifier, events: events, logger: logger}
}

// Submit creates a pending Skill and notifies its mentor and every faculty member.
func (svc *Service) Submit(ctx context.Context, mentor user.User, ns NewSkill) (Skill, error) {
	if !mentor.CanTeach() {
		return Skill{}, ErrNotMentor
	}

	s, err := svc.repo.CreateSkill(ctx, Skill{
		MentorID:    mentor.ID,
		MentorName:  mentor.Name,
		Title:       ns.Title,
		Description: ns.Description,
		Category:    ns.Category,
		Price:       ns.Price,
		Status:      StatusPending,
		CreatedAt:   core.Now(),
	})
	if err != nil {
		return Skill{}, errors.Wrap(err, "creating skill")
	}

	msg := fmt.Sprintf("Your skill \"%s\" has been submitted for verification", s.Title)
	if _, err = svc.notifier.Notify(ctx, mentor, msg, notification.TypeInfo); err != nil {
		return s, errors.Wrap(err, "notifying mentor")
	}

	faculty, err := svc.users.ListFaculty(ctx)
	if err != nil {
		return s, errors.Wrap(err, "listing faculty")
	}
	msg = fmt.Sprintf("New skill \"%s\" by %s pending verification", s.Title, mentor.Name)
	if _, err = svc.notifier.NotifyMany(ctx, faculty, msg, notification.TypeInfo); err != nil {
		return s, errors.Wrap(err, "notifying faculty")
	}

	core.PublishOrLog(ctx, svc.events, svc.logger, core.NewEvent(core.EventSkillSubmitted, s.ID, s))
	return s, nil
}

// Approve makes the Skill visible to learners. A rejected Skill may be approved afterwards.
func (svc *Service) Approve(ctx context.Context, decider user.User, id string) (Skill, error) {
	if !decider.IsFaculty() {
		return Skill{}, ErrNotFaculty
	}

	s, err := svc.repo.UpdateSkill(ctx, id, func(s *Skill) error {
		s.Status = StatusApproved
		s.DecidedBy = null.StringFrom(decider.Name)
		return nil
	})
	if err != nil {
		return Skill{}, errors.Wrap(err, "approving skill")
	}

	msg := fmt.Sprintf("Your skill \"%s\" has been approved by %s!", s.Title, decider.Name)
	if err = svc.notifyMentor(ctx, s, msg, notification.TypeSuccess); err != nil {
		return s, err
	}
	core.PublishOrLog(ctx, svc.events, svc.logger, core.NewEvent(core.EventSkillApproved, s.ID, s))
	return s, nil
}

// Reject hides the Skill from learners. A non blank reason is required.
func (svc *Service) Reject(ctx context.Context, decider user.User, id, reason string) (Skill, error) {
	if !decider.IsFaculty() {
		return Skill{}, ErrNotFaculty
	}
	reason = core.CleanString(reason)
	if reason == "" {
		return Skill{}, core.NewFieldError("reason", ErrReasonRequired)
	}

	s, err := svc.repo.UpdateSkill(ctx, id, func(s *Skill) error {
		s.Status = StatusRejected
		s.RejectionReason = null.StringFrom(reason)
		s.DecidedBy = null.StringFrom(decider.Name)
		return nil
	})
	if err != nil {
		return Skill{}, errors.Wrap(err, "rejecting skill")
	}

	msg := fmt.Sprintf("Your skill \"%s\" was not approved. Reason: %s", s.Title, reason)
	if err = svc.notifyMentor(ctx, s, msg, notification.TypeWarning); err != nil {
		return s, err
	}
	core.PublishOrLog(ctx, svc.events, svc.logger, core.NewEvent(core.EventSkillRejected, s.ID, s))
	return s, nil
}

func (svc *Service) notifyMentor(ctx context.Context, s Skill, msg, typ string) error {
	mentor, err := svc.users.GetByID(ctx, s.MentorID)
	if err != nil {
		return errors.Wrap(err, "finding mentor")
	}
	if _, err = svc.notifier.Notify(ctx, mentor, msg, typ); err != nil {
		return errors.Wrap(err, "notifying mentor")
	}
	return nil
}

func (svc *Service) Get(ctx context.Context, id string) (Skill, error) {
	return svc.repo.GetSkillByID(ctx, id)
}

// GetApproved returns the Skill only if learners can see it.
func (svc *Service) GetApproved(ctx context.Context, id string) (Skill, error) {
	s, err := svc.repo.GetSkillByID(ctx, id)
	if err != nil {
		return Skill{}, err
	}
	if !s.IsApproved() {
		return Skill{}, ErrNotApproved
	}
	return s, nil
}

// ListApproved returns the approved skills matching filter.
func (svc *Service) ListApproved(ctx context.Context, filter QueryFilter) ([]Skill, error) {
	filter.Clean()
	filter.Status = StatusApproved
	return svc.repo.FilterSkills(ctx, filter)
}

// Categories returns the distinct categories of approved skills, sorted.
func (svc *Service) Categories(ctx context.Context) ([]string, error) {
	skills, err := svc.repo.FilterSkills(ctx, QueryFilter{Status: StatusApproved})
	if err != nil {
		return nil, errors.Wrap(err, "filtering skills")
	}
	seen := make(map[string]struct{}, len(skills))
	categories := make([]string, 0, len(skills))
	for _, s := range skills {
		if _, ok := seen[s.Category]; !ok {
			seen[s.Category] = struct{}{}
			categories = append(categories, s.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (svc *Service) ListPending(ctx context.Context) ([]Skill, error) {
	return svc.repo.FilterSkills(ctx, QueryFilter{Status: StatusPending})
}

func (svc *Service) ListByMentor(ctx context.Context, mentorID string) ([]Skill, error) {
	return svc.repo.FilterSkills(ctx, QueryFilter{MentorID: mentorID})
}

func (svc *Service) ListAll(ctx context.Context) ([]Skill, error) {
	return svc.repo.QueryAllSkills(ctx)
}
