// Package types contains the shared interfaces of the mofujobs library.
//
// Keeping these contracts in their own package lets internal packages depend on
// them without importing the root mofujobs package, avoiding import cycles. The
// root package re-exports them as aliases for convenience.
package types
