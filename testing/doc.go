// Package testing provides test utilities for the mofujobs library: an
// embedded NATS server with JetStream, a testing.T-backed logger, and
// in-memory implementations of the search index, store, and publisher
// contracts for broker-free handler tests.
package testing
