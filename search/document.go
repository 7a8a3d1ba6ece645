package search

import "time"

// Index uids and primary keys for the platform's two search indexes.
const (
	PostsIndexUID = "posts"
	UsersIndexUID = "users"

	// PrimaryKey is the id field shared by both document shapes.
	PrimaryKey = "id"
)

// PostDocument is the searchable projection of a post row joined with its
// author. The author fields exist for relevance and display only; the post row
// remains the source of truth.
type PostDocument struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Content       string    `json:"content"`
	Slug          string    `json:"slug"`
	AuthorHandle  string    `json:"author_handle"`
	AuthorName    string    `json:"author_name"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedAtUnix int64     `json:"created_at_unix"`
}

// UserDocument is the searchable projection of a user row.
type UserDocument struct {
	ID            string    `json:"id"`
	Handle        string    `json:"handle"`
	Name          string    `json:"name"`
	Bio           string    `json:"bio"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedAtUnix int64     `json:"created_at_unix"`
}
