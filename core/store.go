package core

import (
	"context"

	"github.com/pkg/errors"
)

// Collections
const (
	CollUsers         = "users"
	CollSessions      = "sessions"
	CollSkills        = "skills"
	CollVideos        = "videos"
	CollEnrollments   = "enrollments"
	CollPayments      = "payments"
	CollVerifications = "verifications"
	CollNotifications = "notifications"
)

var (
	Collections = []string{
		CollUsers, CollSessions, CollSkills, CollVideos,
		CollEnrollments, CollPayments, CollVerifications, CollNotifications,
	}

	ErrRecordNotFound = errors.New("record not found")
	ErrRecordExists   = errors.New("record already exists")
)

// Store is a keyed record store partitioned into named collections.
// Records are opaque JSON documents.
type Store interface {
	// Insert adds a new record. It fails with ErrRecordExists if the key is taken.
	Insert(ctx context.Context, coll, id string, data []byte) error
	Get(ctx context.Context, coll, id string) ([]byte, error)
	// List returns all records of coll in insertion order.
	List(ctx context.Context, coll string) ([][]byte, error)
	// Update atomically replaces a record with the result of fn.
	// Nothing is written if fn returns an error, which Update returns as is.
	Update(ctx context.Context, coll, id string, fn func(data []byte) ([]byte, error)) error
	Delete(ctx context.Context, coll, id string) error
	// Clear removes every record of every collection.
	Clear(ctx context.Context) error
	Close() error
}
