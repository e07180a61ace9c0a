package user

import (
	"context"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists if a user has exactly this email.
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)

		CreateSession(ctx context.Context, sess Session) (Session, error)
		GetSession(ctx context.Context, id string) (Session, error)
		DeleteSession(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
		mu   sync.Mutex // serializes registrations: email check + insert
	}
)

func NewService(repo Repository) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
	).CheckAndPanic()
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email); err != nil {
		if err == ErrEmailExists {
			return core.NewFieldError("email", err)
		}
		return err
	}
	return nil
}

// Register creates a new User. nu must have been validated.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.checkUniqueness(ctx, nu.Email); err != nil {
		return User{}, err
	}

	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: core.Now(),
	}
	if usr.IsStudent() {
		usr.StudentType = nu.StudentType
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Login checks the credentials and opens a new Session.
// Unknown emails and wrong passwords are not distinguished.
func (svc *Service) Login(ctx context.Context, email, pwd string) (Session, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return svc.repo.CreateSession(ctx, Session{User: usr, CreatedAt: core.Now()})
}

// Logout closes the Session. Closing an unknown Session is not an error.
func (svc *Service) Logout(ctx context.Context, sessionID string) error {
	if err := svc.repo.DeleteSession(ctx, sessionID); err != nil && errors.Cause(err) != ErrSessionNotFound {
		return err
	}
	return nil
}

func (svc *Service) Session(ctx context.Context, sessionID string) (Session, error) {
	return svc.repo.GetSession(ctx, sessionID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]User, error) {
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *Service) ListFaculty(ctx context.Context) ([]User, error) {
	return svc.repo.FilterUsers(ctx, QueryFilter{Roles: []string{RoleFaculty}})
}
