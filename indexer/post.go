package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/levish0/mofujobs/internal/logging"
	"github.com/levish0/mofujobs/reindex"
	"github.com/levish0/mofujobs/search"
	"github.com/levish0/mofujobs/store"
	"github.com/levish0/mofujobs/types"
)

// PostHandler refreshes one post document per delivery.
type PostHandler struct {
	posts  store.PostStore
	users  store.UserStore
	index  search.Index[search.PostDocument]
	logger types.Logger
}

// NewPostHandler wires the single-post index handler.
func NewPostHandler(posts store.PostStore, users store.UserStore, index search.Index[search.PostDocument], logger types.Logger) *PostHandler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &PostHandler{posts: posts, users: users, index: index, logger: logger}
}

// Handle resolves the post row and converges the index: a present row is
// upserted with its author joined in, a missing row deletes the document
// (covers deletes racing a redelivered update). A missing author drops the
// document too, matching the reindex chain's join semantics.
func (h *PostHandler) Handle(ctx context.Context, job PostJob) error {
	post, err := h.posts.FindByID(ctx, job.PostID)
	if errors.Is(err, store.ErrNotFound) {
		if err := h.index.DeleteByID(ctx, job.PostID.String()); err != nil {
			return fmt.Errorf("delete document for removed post %s: %w", job.PostID, err)
		}
		h.logger.Debug("removed document for deleted post", "post_id", job.PostID)

		return nil
	}
	if err != nil {
		return fmt.Errorf("query post %s: %w", job.PostID, err)
	}

	author, err := h.users.FindByID(ctx, post.UserID)
	if errors.Is(err, store.ErrNotFound) {
		h.logger.Warn("removing document for post with missing author", "post_id", post.ID, "user_id", post.UserID)
		if err := h.index.DeleteByID(ctx, post.ID.String()); err != nil {
			return fmt.Errorf("delete orphaned post document %s: %w", post.ID, err)
		}

		return nil
	}
	if err != nil {
		return fmt.Errorf("query author %s: %w", post.UserID, err)
	}

	doc := reindex.PostDocument(*post, *author)
	if err := h.index.UpsertBatch(ctx, []search.PostDocument{doc}); err != nil {
		return fmt.Errorf("upsert post document %s: %w", post.ID, err)
	}

	return nil
}
