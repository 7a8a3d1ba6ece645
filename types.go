package mofujobs

import "github.com/levish0/mofujobs/types"

// Re-export interfaces from the types subpackage.
//
// Internal packages depend on the types package directly to avoid import
// cycles; users of the library get the convenient mofujobs.Logger and
// mofujobs.MetricsCollector aliases.
type (
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)
