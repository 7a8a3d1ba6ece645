package reindex

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	mofujobs "github.com/levish0/mofujobs"
	"github.com/levish0/mofujobs/search"
	"github.com/levish0/mofujobs/store"
	mjtest "github.com/levish0/mofujobs/testing"
)

func newV7(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)

	return id
}

func seedPosts(t *testing.T, author store.User, n int) []store.Post {
	t.Helper()
	posts := make([]store.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, store.Post{
			ID:        newV7(t),
			UserID:    author.ID,
			Title:     fmt.Sprintf("Post %d", i),
			Slug:      fmt.Sprintf("post-%d", i),
			Summary:   "summary",
			Content:   "content",
			CreatedAt: time.Now().UTC(),
		})
	}

	return posts
}

func postID(d search.PostDocument) string { return d.ID }

// walkPostsChain feeds captured successor jobs back into the handler until the
// chain terminates, returning every job that was handled.
func walkPostsChain(t *testing.T, h *PostsHandler, pub *mjtest.CapturePublisher, first Job) []Job {
	t.Helper()
	ctx := context.Background()

	handled := []Job{first}
	require.NoError(t, h.Handle(ctx, first))
	for {
		captured, ok := pub.Pop()
		if !ok {
			return handled
		}
		require.Equal(t, mofujobs.SubjectReindexPosts, captured.Subject)
		job, ok := captured.Job.(Job)
		require.True(t, ok)
		handled = append(handled, job)
		require.NoError(t, h.Handle(ctx, job))
	}
}

func TestPostsHandlerChain(t *testing.T) {
	author := store.User{ID: newV7(t), Handle: "alice", Name: "Alice"}
	posts := seedPosts(t, author, 25)

	index := mjtest.NewMemoryIndex(postID)
	pub := &mjtest.CapturePublisher{}
	h := NewPostsHandler(mjtest.NewMemoryPostStore(posts...), mjtest.NewMemoryUserStore(author), index, pub, nil)

	first, err := NewJob(10)
	require.NoError(t, err)

	handled := walkPostsChain(t, h, pub, first)

	// 25 rows at batch size 10 make three data batches plus the empty
	// terminal batch.
	require.Len(t, handled, 4)
	require.Equal(t, []int{10, 10, 5}, index.UpsertSizes())
	require.Equal(t, 25, index.Len())
	require.Equal(t, 1, index.Wipes())
	require.Equal(t, 1, index.SettingsCalls())

	// Every document made it across with its author denormalized.
	doc, ok := index.Get(posts[0].ID.String())
	require.True(t, ok)
	require.Equal(t, "alice", doc.AuthorHandle)
	require.Equal(t, posts[0].Title, doc.Title)

	// Run id is constant, batch numbers count up, and the cursor strictly
	// increases across the run.
	var prevCursor *uuid.UUID
	for i, job := range handled {
		require.Equal(t, first.Base.ReindexID, job.Base.ReindexID)
		require.Equal(t, uint(i+1), job.Base.BatchNumber)
		if i == 0 {
			require.Nil(t, job.Base.AfterID)
			continue
		}
		require.NotNil(t, job.Base.AfterID)
		if prevCursor != nil {
			require.Less(t, prevCursor.String(), job.Base.AfterID.String())
		}
		prevCursor = job.Base.AfterID
	}
}

func TestPostsHandlerRowCountMultipleOfBatch(t *testing.T) {
	author := store.User{ID: newV7(t), Handle: "bob", Name: "Bob"}
	posts := seedPosts(t, author, 20)

	index := mjtest.NewMemoryIndex(postID)
	pub := &mjtest.CapturePublisher{}
	h := NewPostsHandler(mjtest.NewMemoryPostStore(posts...), mjtest.NewMemoryUserStore(author), index, pub, nil)

	first, err := NewJob(10)
	require.NoError(t, err)

	// A full final page still publishes a successor; only the empty page
	// terminates.
	handled := walkPostsChain(t, h, pub, first)
	require.Len(t, handled, 3)
	require.Equal(t, []int{10, 10}, index.UpsertSizes())
	require.Equal(t, 20, index.Len())
}

func TestPostsHandlerEmptyTable(t *testing.T) {
	index := mjtest.NewMemoryIndex(postID)
	pub := &mjtest.CapturePublisher{}
	h := NewPostsHandler(mjtest.NewMemoryPostStore(), mjtest.NewMemoryUserStore(), index, pub, nil)

	first, err := NewJob(10)
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), first))

	// Batch 1 on an empty table wipes the index and terminates immediately.
	require.Equal(t, 1, index.Wipes())
	require.Empty(t, pub.Published())
}

func TestPostsHandlerRedeliveredBatchIsIdempotentForTheIndex(t *testing.T) {
	author := store.User{ID: newV7(t), Handle: "carol", Name: "Carol"}
	posts := seedPosts(t, author, 5)

	index := mjtest.NewMemoryIndex(postID)
	pub := &mjtest.CapturePublisher{}
	h := NewPostsHandler(mjtest.NewMemoryPostStore(posts...), mjtest.NewMemoryUserStore(author), index, pub, nil)

	first, err := NewJob(10)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, first))
	require.NoError(t, h.Handle(ctx, first))

	// Redelivery re-upserts the same primary keys, so the index converges to
	// the same state even though the successor was published twice.
	require.Equal(t, 5, index.Len())
	require.Len(t, pub.Published(), 2)
	a := pub.Published()[0].Job.(Job)
	b := pub.Published()[1].Job.(Job)
	require.Equal(t, a, b)
}

func TestPostsHandlerSkipsMissingAuthor(t *testing.T) {
	author := store.User{ID: newV7(t), Handle: "dave", Name: "Dave"}
	orphanAuthor := newV7(t)
	posts := seedPosts(t, author, 3)
	orphan := store.Post{ID: newV7(t), UserID: orphanAuthor, Title: "orphan", Slug: "orphan"}

	index := mjtest.NewMemoryIndex(postID)
	pub := &mjtest.CapturePublisher{}
	h := NewPostsHandler(
		mjtest.NewMemoryPostStore(append(posts, orphan)...),
		mjtest.NewMemoryUserStore(author),
		index, pub, nil,
	)

	first, err := NewJob(10)
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), first))

	// The orphaned row is skipped, not fatal, and the cursor still covers it.
	require.Equal(t, 3, index.Len())
	_, ok := index.Get(orphan.ID.String())
	require.False(t, ok)

	captured, ok := pub.Pop()
	require.True(t, ok)
	next := captured.Job.(Job)
	require.Equal(t, orphan.ID, *next.Base.AfterID)
}

func TestPostsHandlerFailuresPropagate(t *testing.T) {
	author := store.User{ID: newV7(t), Handle: "erin", Name: "Erin"}
	posts := seedPosts(t, author, 3)
	ctx := context.Background()

	first, err := NewJob(10)
	require.NoError(t, err)

	t.Run("page query failure", func(t *testing.T) {
		postStore := mjtest.NewMemoryPostStore(posts...)
		postStore.PageErr = errors.New("db down")
		h := NewPostsHandler(postStore, mjtest.NewMemoryUserStore(author), mjtest.NewMemoryIndex(postID), &mjtest.CapturePublisher{}, nil)

		require.Error(t, h.Handle(ctx, first))
	})

	t.Run("upsert failure", func(t *testing.T) {
		index := mjtest.NewMemoryIndex(postID)
		index.UpsertErr = errors.New("search down")
		pub := &mjtest.CapturePublisher{}
		h := NewPostsHandler(mjtest.NewMemoryPostStore(posts...), mjtest.NewMemoryUserStore(author), index, pub, nil)

		require.Error(t, h.Handle(ctx, first))
		// No successor when the batch failed.
		require.Empty(t, pub.Published())
	})

	t.Run("publish failure", func(t *testing.T) {
		index := mjtest.NewMemoryIndex(postID)
		pub := &mjtest.CapturePublisher{}
		pub.Err = errors.New("broker down")
		h := NewPostsHandler(mjtest.NewMemoryPostStore(posts...), mjtest.NewMemoryUserStore(author), index, pub, nil)

		require.Error(t, h.Handle(ctx, first))
	})

	t.Run("reset failure", func(t *testing.T) {
		index := mjtest.NewMemoryIndex(postID)
		index.ResetErr = errors.New("search down")
		h := NewPostsHandler(mjtest.NewMemoryPostStore(posts...), mjtest.NewMemoryUserStore(author), index, &mjtest.CapturePublisher{}, nil)

		require.Error(t, h.Handle(ctx, first))
	})
}

func TestPostsHandlerAcksInvalidJob(t *testing.T) {
	index := mjtest.NewMemoryIndex(postID)
	pub := &mjtest.CapturePublisher{}
	h := NewPostsHandler(mjtest.NewMemoryPostStore(), mjtest.NewMemoryUserStore(), index, pub, nil)

	cursor := newV7(t)
	bad := Job{Base: Base{ReindexID: newV7(t), AfterID: &cursor, BatchSize: 10, BatchNumber: 1}}

	// Invalid payloads are dropped without touching the index or publishing.
	require.NoError(t, h.Handle(context.Background(), bad))
	require.Equal(t, 0, index.Wipes())
	require.Empty(t, pub.Published())
}
