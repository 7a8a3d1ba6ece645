// Package search defines the search-index adapter consumed by the job
// handlers: document shapes for posts and users, the Index contract, and a
// Meilisearch-backed implementation.
//
// All Index operations are idempotent and safe to call redundantly; the job
// runtime's at-least-once delivery depends on that.
package search
