// Package reindex implements the self-resuming batch reindex chains that
// rebuild the posts and users search indexes from the relational store.
//
// A chain is a sequence of independent job deliveries sharing one reindex id.
// Each delivery processes a fixed-size page of rows ordered by their
// monotonic UUIDv7 ids, upserts the page into the search index, and publishes
// the next job with the cursor advanced to the last processed id, all before
// acknowledging itself. An empty page is the chain's only terminal state.
//
// The chain's entire state is the (reindex_id, after_id, batch_number) triple
// carried in the job payload; no long-running process and no broker-side state
// is involved, so a run survives worker restarts at batch granularity.
//
// At-least-once delivery means a batch can run twice (ack lost, or crash
// between publishing the successor and acking). Idempotent upserts keep the
// index state converged either way; a duplicate successor merely duplicates
// the remaining chain, which the publisher's message-id deduplication
// suppresses when the redelivery falls inside the stream's duplicate window.
package reindex
