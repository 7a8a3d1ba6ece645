package mofujobs

import "errors"

// Sentinel errors returned by the runtime.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrJetStreamRequired is returned when the JetStream context is nil.
	ErrJetStreamRequired = errors.New("JetStream context is required")

	// ErrHandlerRequired is returned when the job handler is nil.
	ErrHandlerRequired = errors.New("job handler is required")

	// ErrAlreadyStarted is returned when Start is called on a running consumer or group.
	ErrAlreadyStarted = errors.New("consumer already started")

	// ErrNotStarted is returned when Close is called before Start.
	ErrNotStarted = errors.New("consumer not started")

	// ErrDuplicateConsumer is returned when a consumer name is registered twice on a group.
	ErrDuplicateConsumer = errors.New("consumer name already registered")
)
