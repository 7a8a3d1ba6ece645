package search

import (
	"context"
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"github.com/levish0/mofujobs/internal/logging"
	"github.com/levish0/mofujobs/types"
)

// MeiliIndex implements Index against a Meilisearch index.
//
// Meilisearch applies writes as asynchronous tasks and processes tasks for one
// index strictly in enqueue order, so the adapter never waits for task
// completion: a DeleteAll followed by UpsertBatch lands in order on the engine
// side. The meilisearch client does not accept contexts; ctx parameters bound
// only this process's bookkeeping.
type MeiliIndex[D any] struct {
	client     *meilisearch.Client
	uid        string
	primaryKey string
	settings   *meilisearch.Settings
	logger     types.Logger
}

// NewMeiliIndex creates an Index adapter for one Meilisearch index.
//
// Parameters:
//   - client: Meilisearch client (shared across adapters)
//   - uid: Index uid, e.g. PostsIndexUID
//   - primaryKey: Primary key attribute, e.g. PrimaryKey
//   - settings: Expected index settings applied by EnsureSettings (may be nil)
//   - logger: Structured logger (nil for no-op)
func NewMeiliIndex[D any](client *meilisearch.Client, uid, primaryKey string, settings *meilisearch.Settings, logger types.Logger) *MeiliIndex[D] {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &MeiliIndex[D]{
		client:     client,
		uid:        uid,
		primaryKey: primaryKey,
		settings:   settings,
		logger:     logger,
	}
}

// EnsureSettings creates the index with its primary key and applies the
// expected settings. Both calls enqueue idempotent tasks; creating an index
// that already exists fails only the task, not the request.
func (m *MeiliIndex[D]) EnsureSettings(_ context.Context) error {
	if _, err := m.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        m.uid,
		PrimaryKey: m.primaryKey,
	}); err != nil {
		return fmt.Errorf("failed to create index %s: %w", m.uid, err)
	}

	if m.settings != nil {
		if _, err := m.client.Index(m.uid).UpdateSettings(m.settings); err != nil {
			return fmt.Errorf("failed to update settings for index %s: %w", m.uid, err)
		}
	}
	m.logger.Debug("ensured index settings", "index", m.uid)

	return nil
}

// UpsertBatch adds or replaces docs in one call. A no-op for an empty batch.
func (m *MeiliIndex[D]) UpsertBatch(_ context.Context, docs []D) error {
	if len(docs) == 0 {
		return nil
	}

	if _, err := m.client.Index(m.uid).AddDocuments(docs, m.primaryKey); err != nil {
		return fmt.Errorf("failed to upsert %d documents into index %s: %w", len(docs), m.uid, err)
	}

	return nil
}

// DeleteByID removes one document; deleting a missing id succeeds.
func (m *MeiliIndex[D]) DeleteByID(_ context.Context, id string) error {
	if _, err := m.client.Index(m.uid).DeleteDocument(id); err != nil {
		return fmt.Errorf("failed to delete document %s from index %s: %w", id, m.uid, err)
	}

	return nil
}

// DeleteAll removes every document, keeping index settings.
func (m *MeiliIndex[D]) DeleteAll(_ context.Context) error {
	if _, err := m.client.Index(m.uid).DeleteAllDocuments(); err != nil {
		return fmt.Errorf("failed to delete all documents from index %s: %w", m.uid, err)
	}

	return nil
}

// PostsSettings returns the expected settings of the posts index.
func PostsSettings() *meilisearch.Settings {
	return &meilisearch.Settings{
		SearchableAttributes: []string{"title", "summary", "content", "author_handle", "author_name"},
		FilterableAttributes: []string{"author_handle"},
		SortableAttributes:   []string{"created_at_unix"},
	}
}

// UsersSettings returns the expected settings of the users index.
func UsersSettings() *meilisearch.Settings {
	return &meilisearch.Settings{
		SearchableAttributes: []string{"handle", "name", "bio"},
		SortableAttributes:   []string{"created_at_unix"},
	}
}
