package indexer

import (
	"context"
	"fmt"

	"github.com/levish0/mofujobs/internal/logging"
	"github.com/levish0/mofujobs/search"
	"github.com/levish0/mofujobs/store"
	"github.com/levish0/mofujobs/types"
)

// DeleteContentHandler removes an account's documents from both search
// indexes: every post the account authored, then the user document itself.
type DeleteContentHandler struct {
	posts     store.PostStore
	postIndex search.Index[search.PostDocument]
	userIndex search.Index[search.UserDocument]
	logger    types.Logger
}

// NewDeleteContentHandler wires the content-delete handler.
func NewDeleteContentHandler(posts store.PostStore, postIndex search.Index[search.PostDocument], userIndex search.Index[search.UserDocument], logger types.Logger) *DeleteContentHandler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &DeleteContentHandler{posts: posts, postIndex: postIndex, userIndex: userIndex, logger: logger}
}

// Handle deletes the account's documents. Deletes are idempotent, so a
// redelivery that repeats completed work is harmless; any failure naks the
// whole job and the next attempt re-walks the remaining ids.
//
// The post ids are read from the store, so this job must run before the
// service layer purges the rows, or with the rows soft-deleted but readable.
func (h *DeleteContentHandler) Handle(ctx context.Context, job DeleteContentJob) error {
	ids, err := h.posts.FindIDsByUser(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("query post ids for user %s: %w", job.UserID, err)
	}

	for _, id := range ids {
		if err := h.postIndex.DeleteByID(ctx, id.String()); err != nil {
			return fmt.Errorf("delete post document %s: %w", id, err)
		}
	}

	if err := h.userIndex.DeleteByID(ctx, job.UserID.String()); err != nil {
		return fmt.Errorf("delete user document %s: %w", job.UserID, err)
	}

	h.logger.Info("removed account content from search indexes", "user_id", job.UserID, "posts", len(ids))

	return nil
}
