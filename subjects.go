package mofujobs

import "strings"

// Job subjects. Each subject maps 1:1 to a JetStream stream with work-queue
// retention (see StreamName) and a fixed durable consumer name.
const (
	// SubjectReindexPosts carries batch reindex jobs for the posts search index.
	SubjectReindexPosts = "jobs.reindex.posts"

	// SubjectReindexUsers carries batch reindex jobs for the users search index.
	SubjectReindexUsers = "jobs.reindex.users"

	// SubjectIndexPost carries single-document index jobs emitted on post writes.
	SubjectIndexPost = "jobs.index.post"

	// SubjectIndexUser carries single-document index jobs emitted on user writes.
	SubjectIndexUser = "jobs.index.user"

	// SubjectEmail carries outbound email jobs.
	SubjectEmail = "jobs.email"

	// SubjectDeleteContent carries search-index cleanup jobs for removed accounts.
	SubjectDeleteContent = "jobs.delete.content"
)

// Durable consumer names, one per subject. Worker processes sharing a durable
// name form a competing-consumer group.
const (
	DurableReindexPosts  = "reindex-posts-consumer"
	DurableReindexUsers  = "reindex-users-consumer"
	DurableIndexPost     = "index-post-consumer"
	DurableIndexUser     = "index-user-consumer"
	DurableEmail         = "email-consumer"
	DurableDeleteContent = "delete-content-consumer"
)

// Subjects returns all job subjects known to the runtime.
func Subjects() []string {
	return []string{
		SubjectReindexPosts,
		SubjectReindexUsers,
		SubjectIndexPost,
		SubjectIndexUser,
		SubjectEmail,
		SubjectDeleteContent,
	}
}

// StreamName derives the JetStream stream name owning a subject.
//
// Subjects use dot-separated lowercase tokens; stream names are the same tokens
// uppercased and joined with dashes, e.g. "jobs.reindex.posts" becomes
// "JOBS-REINDEX-POSTS".
func StreamName(subject string) string {
	return strings.ToUpper(strings.ReplaceAll(subject, ".", "-"))
}
