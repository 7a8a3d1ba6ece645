package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to the platform's Postgres database.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return db, nil
}

// GormPostStore implements PostStore over a GORM connection.
type GormPostStore struct {
	db *gorm.DB
}

// Compile-time assertion that GormPostStore implements PostStore.
var _ PostStore = (*GormPostStore)(nil)

// NewGormPostStore creates a PostStore backed by db.
func NewGormPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db}
}

// FindPageAfter returns up to limit posts ordered ascending by id, starting
// strictly after the cursor when present.
func (s *GormPostStore) FindPageAfter(ctx context.Context, after *uuid.UUID, limit int) ([]Post, error) {
	q := s.db.WithContext(ctx).Order("id ASC").Limit(limit)
	if after != nil {
		q = q.Where("id > ?", *after)
	}

	var posts []Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to query posts page: %w", err)
	}

	return posts, nil
}

// FindByID returns one post or ErrNotFound.
func (s *GormPostStore) FindByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	var post Post
	err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query post %s: %w", id, err)
	}

	return &post, nil
}

// FindIDsByUser returns all post ids owned by userID, ordered ascending.
func (s *GormPostStore) FindIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&Post{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query post ids for user %s: %w", userID, err)
	}

	return ids, nil
}

// GormUserStore implements UserStore over a GORM connection.
type GormUserStore struct {
	db *gorm.DB
}

// Compile-time assertion that GormUserStore implements UserStore.
var _ UserStore = (*GormUserStore)(nil)

// NewGormUserStore creates a UserStore backed by db.
func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

// FindPageAfter returns up to limit users ordered ascending by id, starting
// strictly after the cursor when present.
func (s *GormUserStore) FindPageAfter(ctx context.Context, after *uuid.UUID, limit int) ([]User, error) {
	q := s.db.WithContext(ctx).Order("id ASC").Limit(limit)
	if after != nil {
		q = q.Where("id > ?", *after)
	}

	var users []User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to query users page: %w", err)
	}

	return users, nil
}

// FindByID returns one user or ErrNotFound.
func (s *GormUserStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user %s: %w", id, err)
	}

	return &user, nil
}

// FindByIDs returns the users matching ids keyed by id; missing ids are absent.
func (s *GormUserStore) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]User, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]User{}, nil
	}

	var users []User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to query %d users by id: %w", len(ids), err)
	}

	out := make(map[uuid.UUID]User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}

	return out, nil
}
