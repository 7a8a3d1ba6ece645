package search

import "context"

// Index is the narrow contract the job handlers use to mutate one search
// index holding documents of type D.
//
// Implementations must make every operation idempotent: redelivered jobs call
// these redundantly and rely on converging to the same index state.
type Index[D any] interface {
	// EnsureSettings creates the index if needed and applies its expected
	// settings. Safe to call repeatedly.
	EnsureSettings(ctx context.Context) error

	// UpsertBatch adds or replaces the given documents in one call.
	UpsertBatch(ctx context.Context, docs []D) error

	// DeleteByID removes the document with the given primary key; removing a
	// missing document is not an error.
	DeleteByID(ctx context.Context, id string) error

	// DeleteAll removes every document from the index, keeping its settings.
	DeleteAll(ctx context.Context) error
}
