package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/enrollment"
	"github.com/skillx/skillx/core/notification"
	"github.com/skillx/skillx/core/report"
	"github.com/skillx/skillx/core/skill"
	"github.com/skillx/skillx/core/user"
	"github.com/skillx/skillx/core/verification"
	"github.com/skillx/skillx/core/video"
	paymentsvc "github.com/skillx/skillx/services/payment"
	uploadsvc "github.com/skillx/skillx/services/upload"
	inmemdb "github.com/skillx/skillx/storage/database/inmem"
	storerepos "github.com/skillx/skillx/storage/repos"
)

const DefaultPassword = "secret123"

// NopLogger discards everything.
type NopLogger struct{}

func (*NopLogger) Debug(string, ...interface{}) {}
func (*NopLogger) Info(string, ...interface{})  {}
func (*NopLogger) Warn(string, ...interface{})  {}
func (*NopLogger) Error(string, ...interface{}) {}
func (*NopLogger) Fatal(string, ...interface{}) {}

// EventRecorder keeps every published event in memory.
type EventRecorder struct {
	mu     sync.Mutex
	Events []core.Event
}

func (r *EventRecorder) Publish(_ context.Context, events ...core.Event) error {
	r.mu.Lock()
	r.Events = append(r.Events, events...)
	r.mu.Unlock()
	return nil
}

// Types returns the recorded event types, in publication order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.Events))
	for _, evt := range r.Events {
		types = append(types, evt.Type)
	}
	return types
}

// Services wires every domain service over a single in-memory store.
type Services struct {
	Store         core.Store
	Events        *EventRecorder
	Users         *user.Service
	Notifications *notification.Service
	Skills        *skill.Service
	Enrollments   *enrollment.Service
	Videos        *video.Service
	Verifications *verification.Service
	Reports       *report.Service
}

// NewServices builds Services with no payment or upload delay.
// gateway may be nil to use an always approving one.
func NewServices(t *testing.T, mailSvc core.EmailService, gateway enrollment.PaymentGateway) *Services {
	t.Helper()
	store := inmemdb.Open()
	t.Cleanup(func() { _ = store.Close() })

	logger := new(NopLogger)
	events := new(EventRecorder)
	if gateway == nil {
		gateway = paymentsvc.NewSimulatedGateway(0)
	}

	users := user.NewService(storerepos.NewUserRepository(store))
	notifications := notification.NewService(storerepos.NewNotificationRepository(store), mailSvc, events, logger)
	skills := skill.NewService(storerepos.NewSkillRepository(store), users, notifications, events, logger)
	enrollments := enrollment.NewService(enrollment.Deps{
		Repo:           storerepos.NewEnrollmentRepository(store),
		Skills:         skills,
		Users:          users,
		Notifier:       notifications,
		Gateway:        gateway,
		Events:         events,
		Logger:         logger,
		PaymentTimeout: time.Second,
	})
	videos := video.NewService(
		storerepos.NewVideoRepository(store), skills, uploadsvc.NewSimulatedUploader(0), events, logger, time.Second,
	)
	verifications := verification.NewService(storerepos.NewVerificationRepository(store), skills, users, notifications, events, logger)

	return &Services{
		Store:         store,
		Events:        events,
		Users:         users,
		Notifications: notifications,
		Skills:        skills,
		Enrollments:   enrollments,
		Videos:        videos,
		Verifications: verifications,
		Reports:       report.NewService(users, skills, enrollments, videos, verifications),
	}
}

// CreateUser registers a user with DefaultPassword. studentType is ignored for faculty.
func CreateUser(t *testing.T, svc *user.Service, name, email, role, studentType string) user.User {
	t.Helper()
	nu := user.NewUser{
		Name:            name,
		Email:           email,
		Password:        DefaultPassword,
		PasswordConfirm: DefaultPassword,
		Role:            role,
	}
	if role == user.RoleStudent {
		nu.StudentType = studentType
	}
	usr, err := svc.Register(context.Background(), nu)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateMentor(t *testing.T, svc *user.Service, name, email string) user.User {
	return CreateUser(t, svc, name, email, user.RoleStudent, user.StudentMentor)
}

func CreateLearner(t *testing.T, svc *user.Service, name, email string) user.User {
	return CreateUser(t, svc, name, email, user.RoleStudent, user.StudentLearner)
}

func CreateFaculty(t *testing.T, svc *user.Service, name, email string) user.User {
	return CreateUser(t, svc, name, email, user.RoleFaculty, "")
}

// CreateSkill submits a skill for mentor and, when approver is set, approves it.
func CreateSkill(
	t *testing.T,
	svcs *Services,
	mentor user.User,
	title, category string,
	price float64,
	approver *user.User,
) skill.Skill {
	t.Helper()
	ctx := context.Background()
	s, err := svcs.Skills.Submit(ctx, mentor, skill.NewSkill{
		Title:       title,
		Description: title + " from scratch",
		Category:    category,
		Price:       price,
	})
	if err != nil {
		t.Fatalf("CreateSkill() failed: %v", err)
	}
	if approver != nil {
		if s, err = svcs.Skills.Approve(ctx, *approver, s.ID); err != nil {
			t.Fatalf("CreateSkill() failed: %v", err)
		}
	}
	return s
}

// FreezeTime makes core.Now return ts until the test ends.
func FreezeTime(t *testing.T, ts time.Time) {
	t.Helper()
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return ts }
	t.Cleanup(func() { core.NowFunc = orig })
}
