package indexer

import "github.com/google/uuid"

// PostJob requests a refresh of one post's search document. Published on
// post create/update/delete; the handler decides between upsert and delete
// by looking at the row.
type PostJob struct {
	PostID uuid.UUID `json:"post_id"`
}

// UserJob requests a refresh of one user's search document.
type UserJob struct {
	UserID uuid.UUID `json:"user_id"`
}

// DeleteContentJob requests removal of an account's documents from both
// search indexes. Row deletion itself belongs to the service layer; this job
// only reconciles the indexes.
type DeleteContentJob struct {
	UserID uuid.UUID `json:"user_id"`
}
