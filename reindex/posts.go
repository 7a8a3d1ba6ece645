package reindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	mofujobs "github.com/levish0/mofujobs"
	"github.com/levish0/mofujobs/internal/logging"
	"github.com/levish0/mofujobs/search"
	"github.com/levish0/mofujobs/store"
	"github.com/levish0/mofujobs/types"
)

// PostsHandler processes one batch of the posts reindex chain per delivery.
type PostsHandler struct {
	posts  store.PostStore
	users  store.UserStore
	index  search.Index[search.PostDocument]
	pub    Publisher
	logger types.Logger
}

// NewPostsHandler wires the posts chain handler.
//
// Parameters:
//   - posts: Cursor-page source of post rows
//   - users: Author lookup for document assembly
//   - index: Posts search index adapter
//   - pub: Publisher used to publish the successor job
//   - logger: Structured logger (nil for no-op)
func NewPostsHandler(posts store.PostStore, users store.UserStore, index search.Index[search.PostDocument], pub Publisher, logger types.Logger) *PostsHandler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &PostsHandler{posts: posts, users: users, index: index, pub: pub, logger: logger}
}

// Handle runs one batch: reset the index on batch 1, page rows after the
// cursor, upsert their documents, and publish the successor before returning.
// An empty page terminates the chain. Any error returns non-nil so the runtime
// naks the message and the broker retries the whole batch.
func (h *PostsHandler) Handle(ctx context.Context, job Job) error {
	base := job.Base
	if err := base.Validate(); err != nil {
		// Semantically invalid payloads can never succeed; treat them like
		// undecodable ones and ack instead of burning redeliveries.
		h.logger.Error("dropping invalid posts reindex job", "reindex_id", base.ReindexID, "error", err)

		return nil
	}

	if base.AfterID == nil {
		// Batch 1 performs the full reset. A redelivery of this message wipes
		// the index and restarts the run, an accepted cost of at-least-once.
		if err := h.index.EnsureSettings(ctx); err != nil {
			return fmt.Errorf("ensure posts index settings: %w", err)
		}
		if err := h.index.DeleteAll(ctx); err != nil {
			return fmt.Errorf("reset posts index: %w", err)
		}
		h.logger.Info("starting posts reindex run", "reindex_id", base.ReindexID, "batch_size", base.BatchSize)
	}

	posts, err := h.posts.FindPageAfter(ctx, base.AfterID, int(base.BatchSize))
	if err != nil {
		return fmt.Errorf("query posts page (batch %d): %w", base.BatchNumber, err)
	}

	if len(posts) == 0 {
		h.logger.Info("posts reindex complete",
			"reindex_id", base.ReindexID,
			"batches", base.BatchNumber-1,
		)

		return nil
	}

	authorIDs := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.UserID)
	}
	authors, err := h.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return fmt.Errorf("query authors (batch %d): %w", base.BatchNumber, err)
	}

	docs := make([]search.PostDocument, 0, len(posts))
	for _, p := range posts {
		author, ok := authors[p.UserID]
		if !ok {
			// Per-row tolerance: a missing author costs one document, never
			// the batch.
			h.logger.Warn("skipping post with missing author", "post_id", p.ID, "user_id", p.UserID)
			continue
		}
		docs = append(docs, PostDocument(p, author))
	}

	if err := h.index.UpsertBatch(ctx, docs); err != nil {
		return fmt.Errorf("upsert posts batch %d: %w", base.BatchNumber, err)
	}

	// The cursor advances past skipped rows too; the page, not the document
	// set, defines progress.
	next := job.Next(posts[len(posts)-1].ID)
	if err := h.pub.Publish(ctx, mofujobs.SubjectReindexPosts, next); err != nil {
		return fmt.Errorf("publish posts reindex batch %d: %w", next.Base.BatchNumber, err)
	}

	h.logger.Info("posts reindex batch complete",
		"reindex_id", base.ReindexID,
		"batch", base.BatchNumber,
		"rows", len(posts),
		"indexed", len(docs),
	)

	return nil
}

// PostDocument assembles the searchable projection of a post and its author.
func PostDocument(p store.Post, author store.User) search.PostDocument {
	return search.PostDocument{
		ID:            p.ID.String(),
		Title:         p.Title,
		Summary:       p.Summary,
		Content:       p.Content,
		Slug:          p.Slug,
		AuthorHandle:  author.Handle,
		AuthorName:    author.Name,
		CreatedAt:     p.CreatedAt,
		CreatedAtUnix: p.CreatedAt.Unix(),
	}
}
