// Package store defines the narrow relational-store contract the job handlers
// read from: row shapes and ordered cursor-page queries. The full data-access
// layer of the platform lives with the service layer; the jobs subsystem only
// ever reads rows by id order.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a row with the requested id does not exist.
var ErrNotFound = errors.New("row not found")

// Post is the post row projection read by the indexing jobs. Ids are UUIDv7,
// so ascending id order is creation-time order and usable as a monotonic
// pagination cursor.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Title     string    `gorm:"type:text;not null"`
	Slug      string    `gorm:"type:text;not null"`
	Summary   string    `gorm:"type:text"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// User is the user row projection read by the indexing jobs.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Handle    string    `gorm:"type:text;uniqueIndex;not null"`
	Name      string    `gorm:"type:text;not null"`
	Bio       string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

// PostStore is the post-side read contract.
type PostStore interface {
	// FindPageAfter returns up to limit posts ordered ascending by id,
	// filtered to id > after when after is non-nil.
	FindPageAfter(ctx context.Context, after *uuid.UUID, limit int) ([]Post, error)

	// FindByID returns one post or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)

	// FindIDsByUser returns all post ids owned by a user, ordered ascending.
	FindIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// UserStore is the user-side read contract.
type UserStore interface {
	// FindPageAfter returns up to limit users ordered ascending by id,
	// filtered to id > after when after is non-nil.
	FindPageAfter(ctx context.Context, after *uuid.UUID, limit int) ([]User, error)

	// FindByID returns one user or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDs returns the users matching ids, keyed by id. Missing ids are
	// simply absent from the map; callers treat them as missing joined
	// dependencies and skip the dependent rows.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]User, error)
}
