// Package indexer implements the incremental search-index jobs: single-
// document upserts emitted by the service layer on every post/user write, and
// the index cleanup fan-out for removed accounts.
//
// Unlike the reindex chains these jobs are independent; the service layer
// publishes one per write and the broker may deliver them in any order.
// Handlers resolve the current row at handling time, so a stale delivery
// converges to the row's latest state rather than replaying history.
package indexer
