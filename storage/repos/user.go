package storerepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/user"
)

// userRecord is the stored form of a user.User, password hash included.
type userRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	StudentType  string    `json:"student_type,omitempty"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type userRepository struct {
	users    collection[userRecord]
	sessions collection[user.Session]
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(store core.Store) user.Repository {
	return &userRepository{
		users:    collection[userRecord]{store: store, name: core.CollUsers, notFound: user.ErrNotFound},
		sessions: collection[user.Session]{store: store, name: core.CollSessions, notFound: user.ErrSessionNotFound},
	}
}

func (repo *userRepository) toRecord(usr user.User) userRecord {
	return userRecord{
		ID:           usr.ID,
		Name:         usr.Name,
		Email:        usr.Email,
		Role:         usr.Role,
		StudentType:  usr.StudentType,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
	}
}

func (repo *userRepository) fromRecord(rec userRecord) user.User {
	return user.User{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		Role:         rec.Role,
		StudentType:  rec.StudentType,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}
}

func (repo *userRepository) fromRecords(recs []userRecord) []user.User {
	users := make([]user.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, repo.fromRecord(rec))
	}
	return users
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	found, err := repo.users.filter(ctx, func(rec userRecord) bool { return rec.Email == email })
	if err != nil {
		return err
	}
	if len(found) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	if err := repo.users.insert(ctx, usr.ID, repo.toRecord(usr)); err != nil {
		if err == core.ErrRecordExists {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	recs, err := repo.users.all(ctx)
	if err != nil {
		return nil, err
	}
	return repo.fromRecords(recs), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	rec, err := repo.users.get(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	return repo.fromRecord(rec), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	recs, err := repo.users.filter(ctx, func(rec userRecord) bool { return rec.Email == email })
	if err != nil {
		return user.User{}, err
	}
	if len(recs) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.fromRecord(recs[0]), nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	recs, err := repo.users.filter(ctx, func(rec userRecord) bool { return filter.Match(repo.fromRecord(rec)) })
	if err != nil {
		return nil, err
	}
	return repo.fromRecords(recs), nil
}

func (repo *userRepository) CreateSession(ctx context.Context, sess user.Session) (user.Session, error) {
	sess.ID = newID()
	if err := repo.sessions.insert(ctx, sess.ID, sess); err != nil {
		return user.Session{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (repo *userRepository) GetSession(ctx context.Context, id string) (user.Session, error) {
	return repo.sessions.get(ctx, id)
}

func (repo *userRepository) DeleteSession(ctx context.Context, id string) error {
	return repo.sessions.delete(ctx, id)
}
