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

// UserHandler refreshes one user document per delivery.
type UserHandler struct {
	users  store.UserStore
	index  search.Index[search.UserDocument]
	logger types.Logger
}

// NewUserHandler wires the single-user index handler.
func NewUserHandler(users store.UserStore, index search.Index[search.UserDocument], logger types.Logger) *UserHandler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &UserHandler{users: users, index: index, logger: logger}
}

// Handle resolves the user row and converges the index; a missing row deletes
// the document.
func (h *UserHandler) Handle(ctx context.Context, job UserJob) error {
	user, err := h.users.FindByID(ctx, job.UserID)
	if errors.Is(err, store.ErrNotFound) {
		if err := h.index.DeleteByID(ctx, job.UserID.String()); err != nil {
			return fmt.Errorf("delete document for removed user %s: %w", job.UserID, err)
		}
		h.logger.Debug("removed document for deleted user", "user_id", job.UserID)

		return nil
	}
	if err != nil {
		return fmt.Errorf("query user %s: %w", job.UserID, err)
	}

	if err := h.index.UpsertBatch(ctx, []search.UserDocument{reindex.UserDocument(*user)}); err != nil {
		return fmt.Errorf("upsert user document %s: %w", user.ID, err)
	}

	return nil
}
