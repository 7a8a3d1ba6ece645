package logging

import "github.com/levish0/mofujobs/types"

// NopLogger implements a no-op logger that discards all messages.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger.
//
// Used as the default when no logger is configured.
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (n *NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (n *NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (n *NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (n *NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message and does NOT exit; a no-op logger must never
// terminate the host process.
func (n *NopLogger) Fatal(_ string, _ ...any) {}
