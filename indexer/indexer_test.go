package indexer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/levish0/mofujobs/reindex"
	"github.com/levish0/mofujobs/search"
	"github.com/levish0/mofujobs/store"
	mjtest "github.com/levish0/mofujobs/testing"
)

func postID(d search.PostDocument) string { return d.ID }
func userID(d search.UserDocument) string { return d.ID }

func TestPostHandlerUpsert(t *testing.T) {
	author := store.User{ID: uuid.New(), Handle: "alice", Name: "Alice"}
	post := store.Post{
		ID:        uuid.New(),
		UserID:    author.ID,
		Title:     "Hello",
		Slug:      "hello",
		CreatedAt: time.Now().UTC(),
	}

	index := mjtest.NewMemoryIndex(postID)
	h := NewPostHandler(mjtest.NewMemoryPostStore(post), mjtest.NewMemoryUserStore(author), index, nil)

	require.NoError(t, h.Handle(context.Background(), PostJob{PostID: post.ID}))

	doc, ok := index.Get(post.ID.String())
	require.True(t, ok)
	require.Equal(t, "Hello", doc.Title)
	require.Equal(t, "alice", doc.AuthorHandle)

	// A second delivery of the same job converges to the same document.
	require.NoError(t, h.Handle(context.Background(), PostJob{PostID: post.ID}))
	require.Equal(t, 1, index.Len())
}

func TestPostHandlerDeletesMissingRow(t *testing.T) {
	author := store.User{ID: uuid.New(), Handle: "bob"}
	post := store.Post{ID: uuid.New(), UserID: author.ID, Title: "Bye"}

	posts := mjtest.NewMemoryPostStore(post)
	index := mjtest.NewMemoryIndex(postID)
	h := NewPostHandler(posts, mjtest.NewMemoryUserStore(author), index, nil)

	ctx := context.Background()
	require.NoError(t, h.Handle(ctx, PostJob{PostID: post.ID}))
	require.Equal(t, 1, index.Len())

	// The row vanished between publish and handling; the document goes too.
	posts.Remove(post.ID)
	require.NoError(t, h.Handle(ctx, PostJob{PostID: post.ID}))
	require.Equal(t, 0, index.Len())
}

func TestPostHandlerDeletesOrphanedDocument(t *testing.T) {
	post := store.Post{ID: uuid.New(), UserID: uuid.New(), Title: "Orphan"}

	index := mjtest.NewMemoryIndex(postID)
	require.NoError(t, index.UpsertBatch(context.Background(), []search.PostDocument{{ID: post.ID.String()}}))

	h := NewPostHandler(mjtest.NewMemoryPostStore(post), mjtest.NewMemoryUserStore(), index, nil)
	require.NoError(t, h.Handle(context.Background(), PostJob{PostID: post.ID}))
	require.Equal(t, 0, index.Len())
}

func TestPostHandlerIndexFailurePropagates(t *testing.T) {
	author := store.User{ID: uuid.New(), Handle: "carol"}
	post := store.Post{ID: uuid.New(), UserID: author.ID}

	index := mjtest.NewMemoryIndex(postID)
	index.UpsertErr = errors.New("search down")
	h := NewPostHandler(mjtest.NewMemoryPostStore(post), mjtest.NewMemoryUserStore(author), index, nil)

	require.Error(t, h.Handle(context.Background(), PostJob{PostID: post.ID}))
}

func TestUserHandler(t *testing.T) {
	user := store.User{ID: uuid.New(), Handle: "dave", Name: "Dave", CreatedAt: time.Now().UTC()}

	users := mjtest.NewMemoryUserStore(user)
	index := mjtest.NewMemoryIndex(userID)
	h := NewUserHandler(users, index, nil)

	ctx := context.Background()
	require.NoError(t, h.Handle(ctx, UserJob{UserID: user.ID}))

	doc, ok := index.Get(user.ID.String())
	require.True(t, ok)
	require.Equal(t, reindex.UserDocument(user), doc)

	users.Remove(user.ID)
	require.NoError(t, h.Handle(ctx, UserJob{UserID: user.ID}))
	require.Equal(t, 0, index.Len())
}

func TestDeleteContentHandler(t *testing.T) {
	user := store.User{ID: uuid.New(), Handle: "erin"}
	other := store.User{ID: uuid.New(), Handle: "frank"}
	mine := []store.Post{
		{ID: uuid.New(), UserID: user.ID, Title: "one"},
		{ID: uuid.New(), UserID: user.ID, Title: "two"},
	}
	theirs := store.Post{ID: uuid.New(), UserID: other.ID, Title: "keep"}

	posts := mjtest.NewMemoryPostStore(append(mine, theirs)...)

	postIndex := mjtest.NewMemoryIndex(postID)
	userIndex := mjtest.NewMemoryIndex(userID)
	ctx := context.Background()
	for _, p := range append(mine, theirs) {
		require.NoError(t, postIndex.UpsertBatch(ctx, []search.PostDocument{{ID: p.ID.String()}}))
	}
	for _, u := range []store.User{user, other} {
		require.NoError(t, userIndex.UpsertBatch(ctx, []search.UserDocument{{ID: u.ID.String()}}))
	}

	h := NewDeleteContentHandler(posts, postIndex, userIndex, nil)
	require.NoError(t, h.Handle(ctx, DeleteContentJob{UserID: user.ID}))

	// Only the account's documents are gone.
	require.Equal(t, 1, postIndex.Len())
	_, ok := postIndex.Get(theirs.ID.String())
	require.True(t, ok)
	require.Equal(t, 1, userIndex.Len())
	_, ok = userIndex.Get(other.ID.String())
	require.True(t, ok)

	// Redelivery after completion is a no-op.
	require.NoError(t, h.Handle(ctx, DeleteContentJob{UserID: user.ID}))
	require.Equal(t, 1, postIndex.Len())
}

func TestDeleteContentHandlerFailurePropagates(t *testing.T) {
	user := store.User{ID: uuid.New()}
	post := store.Post{ID: uuid.New(), UserID: user.ID}

	postIndex := mjtest.NewMemoryIndex(postID)
	postIndex.DeleteErr = errors.New("search down")
	h := NewDeleteContentHandler(mjtest.NewMemoryPostStore(post), postIndex, mjtest.NewMemoryIndex(userID), nil)

	require.Error(t, h.Handle(context.Background(), DeleteContentJob{UserID: user.ID}))
}
