package reindex

import (
	"context"
	"fmt"

	mofujobs "github.com/levish0/mofujobs"
	"github.com/levish0/mofujobs/internal/logging"
	"github.com/levish0/mofujobs/search"
	"github.com/levish0/mofujobs/store"
	"github.com/levish0/mofujobs/types"
)

// UsersHandler processes one batch of the users reindex chain per delivery.
// Structurally identical to PostsHandler, minus the author join.
type UsersHandler struct {
	users  store.UserStore
	index  search.Index[search.UserDocument]
	pub    Publisher
	logger types.Logger
}

// NewUsersHandler wires the users chain handler.
func NewUsersHandler(users store.UserStore, index search.Index[search.UserDocument], pub Publisher, logger types.Logger) *UsersHandler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &UsersHandler{users: users, index: index, pub: pub, logger: logger}
}

// Handle runs one batch of the users chain; see PostsHandler.Handle.
func (h *UsersHandler) Handle(ctx context.Context, job Job) error {
	base := job.Base
	if err := base.Validate(); err != nil {
		h.logger.Error("dropping invalid users reindex job", "reindex_id", base.ReindexID, "error", err)

		return nil
	}

	if base.AfterID == nil {
		if err := h.index.EnsureSettings(ctx); err != nil {
			return fmt.Errorf("ensure users index settings: %w", err)
		}
		if err := h.index.DeleteAll(ctx); err != nil {
			return fmt.Errorf("reset users index: %w", err)
		}
		h.logger.Info("starting users reindex run", "reindex_id", base.ReindexID, "batch_size", base.BatchSize)
	}

	users, err := h.users.FindPageAfter(ctx, base.AfterID, int(base.BatchSize))
	if err != nil {
		return fmt.Errorf("query users page (batch %d): %w", base.BatchNumber, err)
	}

	if len(users) == 0 {
		h.logger.Info("users reindex complete",
			"reindex_id", base.ReindexID,
			"batches", base.BatchNumber-1,
		)

		return nil
	}

	docs := make([]search.UserDocument, 0, len(users))
	for _, u := range users {
		docs = append(docs, UserDocument(u))
	}

	if err := h.index.UpsertBatch(ctx, docs); err != nil {
		return fmt.Errorf("upsert users batch %d: %w", base.BatchNumber, err)
	}

	next := job.Next(users[len(users)-1].ID)
	if err := h.pub.Publish(ctx, mofujobs.SubjectReindexUsers, next); err != nil {
		return fmt.Errorf("publish users reindex batch %d: %w", next.Base.BatchNumber, err)
	}

	h.logger.Info("users reindex batch complete",
		"reindex_id", base.ReindexID,
		"batch", base.BatchNumber,
		"rows", len(users),
	)

	return nil
}

// UserDocument assembles the searchable projection of a user row.
func UserDocument(u store.User) search.UserDocument {
	return search.UserDocument{
		ID:            u.ID.String(),
		Handle:        u.Handle,
		Name:          u.Name,
		Bio:           u.Bio,
		CreatedAt:     u.CreatedAt,
		CreatedAtUnix: u.CreatedAt.Unix(),
	}
}
