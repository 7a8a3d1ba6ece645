package testing

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/levish0/mofujobs/search"
	"github.com/levish0/mofujobs/store"
)

// MemoryIndex is an in-memory search.Index implementation that records the
// calls handlers make, for asserting batch sizes, resets, and final state.
//
// Error injection: set UpsertErr, DeleteErr, or ResetErr to force the next
// matching call to fail.
type MemoryIndex[D any] struct {
	mu  sync.Mutex
	id  func(D) string
	doc map[string]D

	wipes         int
	settingsCalls int
	upsertSizes   []int

	UpsertErr error
	DeleteErr error
	ResetErr  error
}

// Compile-time assertion that MemoryIndex implements search.Index.
var _ search.Index[search.PostDocument] = (*MemoryIndex[search.PostDocument])(nil)

// NewMemoryIndex creates an empty index; id extracts a document's primary key.
func NewMemoryIndex[D any](id func(D) string) *MemoryIndex[D] {
	return &MemoryIndex[D]{id: id, doc: make(map[string]D)}
}

// EnsureSettings counts the call; there are no settings to apply in memory.
func (m *MemoryIndex[D]) EnsureSettings(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settingsCalls++

	return nil
}

// UpsertBatch adds or replaces docs, recording the batch size.
func (m *MemoryIndex[D]) UpsertBatch(_ context.Context, docs []D) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		err := m.UpsertErr
		m.UpsertErr = nil

		return err
	}
	if len(docs) == 0 {
		return nil
	}
	for _, d := range docs {
		m.doc[m.id(d)] = d
	}
	m.upsertSizes = append(m.upsertSizes, len(docs))

	return nil
}

// DeleteByID removes one document; missing ids succeed.
func (m *MemoryIndex[D]) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		err := m.DeleteErr
		m.DeleteErr = nil

		return err
	}
	delete(m.doc, id)

	return nil
}

// DeleteAll wipes the index, recording the reset.
func (m *MemoryIndex[D]) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ResetErr != nil {
		err := m.ResetErr
		m.ResetErr = nil

		return err
	}
	m.doc = make(map[string]D)
	m.wipes++

	return nil
}

// Len returns the number of stored documents.
func (m *MemoryIndex[D]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.doc)
}

// Get returns a stored document by id.
func (m *MemoryIndex[D]) Get(id string) (D, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doc[id]

	return d, ok
}

// Wipes returns how many times DeleteAll ran.
func (m *MemoryIndex[D]) Wipes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.wipes
}

// SettingsCalls returns how many times EnsureSettings ran.
func (m *MemoryIndex[D]) SettingsCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.settingsCalls
}

// UpsertSizes returns the recorded batch size of every non-empty upsert, in order.
func (m *MemoryIndex[D]) UpsertSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.upsertSizes))
	copy(out, m.upsertSizes)

	return out
}

func uuidLess(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// MemoryPostStore is an in-memory store.PostStore keeping rows sorted by id.
type MemoryPostStore struct {
	mu    sync.Mutex
	posts []store.Post

	// PageErr fails the next FindPageAfter call when non-nil.
	PageErr error
}

// Compile-time assertion that MemoryPostStore implements PostStore.
var _ store.PostStore = (*MemoryPostStore)(nil)

// NewMemoryPostStore creates a store seeded with posts.
func NewMemoryPostStore(posts ...store.Post) *MemoryPostStore {
	s := &MemoryPostStore{}
	s.posts = append(s.posts, posts...)
	sort.Slice(s.posts, func(i, j int) bool { return uuidLess(s.posts[i].ID, s.posts[j].ID) })

	return s
}

// FindPageAfter returns up to limit posts ordered ascending by id after the cursor.
func (s *MemoryPostStore) FindPageAfter(_ context.Context, after *uuid.UUID, limit int) ([]store.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PageErr != nil {
		err := s.PageErr
		s.PageErr = nil

		return nil, err
	}

	var out []store.Post
	for _, p := range s.posts {
		if after != nil && !uuidLess(*after, p.ID) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

// FindByID returns one post or store.ErrNotFound.
func (s *MemoryPostStore) FindByID(_ context.Context, id uuid.UUID) (*store.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			out := p

			return &out, nil
		}
	}

	return nil, store.ErrNotFound
}

// FindIDsByUser returns the ids of userID's posts, ordered ascending.
func (s *MemoryPostStore) FindIDsByUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for _, p := range s.posts {
		if p.UserID == userID {
			ids = append(ids, p.ID)
		}
	}

	return ids, nil
}

// Remove deletes a post row, simulating a delete racing an index job.
func (s *MemoryPostStore) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.posts {
		if p.ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)

			return
		}
	}
}

// MemoryUserStore is an in-memory store.UserStore keeping rows sorted by id.
type MemoryUserStore struct {
	mu    sync.Mutex
	users []store.User
}

// Compile-time assertion that MemoryUserStore implements UserStore.
var _ store.UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore creates a store seeded with users.
func NewMemoryUserStore(users ...store.User) *MemoryUserStore {
	s := &MemoryUserStore{}
	s.users = append(s.users, users...)
	sort.Slice(s.users, func(i, j int) bool { return uuidLess(s.users[i].ID, s.users[j].ID) })

	return s
}

// FindPageAfter returns up to limit users ordered ascending by id after the cursor.
func (s *MemoryUserStore) FindPageAfter(_ context.Context, after *uuid.UUID, limit int) ([]store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.User
	for _, u := range s.users {
		if after != nil && !uuidLess(*after, u.ID) {
			continue
		}
		out = append(out, u)
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

// FindByID returns one user or store.ErrNotFound.
func (s *MemoryUserStore) FindByID(_ context.Context, id uuid.UUID) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			out := u

			return &out, nil
		}
	}

	return nil, store.ErrNotFound
}

// FindByIDs returns the users matching ids keyed by id; missing ids are absent.
func (s *MemoryUserStore) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]store.User, len(ids))
	for _, id := range ids {
		for _, u := range s.users {
			if u.ID == id {
				out[id] = u

				break
			}
		}
	}

	return out, nil
}

// Remove deletes a user row.
func (s *MemoryUserStore) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)

			return
		}
	}
}

// PublishedJob is one captured publish call.
type PublishedJob struct {
	Subject string
	Job     any
}

// CapturePublisher records publishes instead of talking to a broker, so chain
// tests can walk a reindex run by hand.
type CapturePublisher struct {
	mu        sync.Mutex
	published []PublishedJob

	// Err fails the next Publish call when non-nil.
	Err error
}

// Publish records the call or returns the injected error.
func (p *CapturePublisher) Publish(_ context.Context, subject string, job any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		err := p.Err
		p.Err = nil

		return err
	}
	p.published = append(p.published, PublishedJob{Subject: subject, Job: job})

	return nil
}

// Published returns a copy of all captured publishes in order.
func (p *CapturePublisher) Published() []PublishedJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedJob, len(p.published))
	copy(out, p.published)

	return out
}

// Pop removes and returns the oldest captured publish.
func (p *CapturePublisher) Pop() (PublishedJob, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.published) == 0 {
		return PublishedJob{}, false
	}
	job := p.published[0]
	p.published = p.published[1:]

	return job, true
}
