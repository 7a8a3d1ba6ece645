package mofujobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/levish0/mofujobs/internal/logging"
	"github.com/levish0/mofujobs/types"
)

// Runnable is the lifecycle contract shared by consumers managed by a Group.
// Consumer[T] satisfies it for every T.
type Runnable interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

// Group manages the lifecycle of a set of named consumers as one unit. A
// worker process registers one consumer per job subject and starts/stops them
// together.
type Group struct {
	consumers *xsync.MapOf[string, Runnable]
	// order preserves registration order for deterministic start/close.
	order  []string
	logger types.Logger

	mu      sync.Mutex
	started bool
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupLogger sets the group's logger.
func WithGroupLogger(logger types.Logger) GroupOption {
	return func(g *Group) { g.logger = logger }
}

// NewGroup creates an empty consumer group.
func NewGroup(opts ...GroupOption) *Group {
	g := &Group{
		consumers: xsync.NewMapOf[string, Runnable](),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Register adds a named consumer to the group. Names must be unique; the
// durable name is the conventional choice.
//
// Returns:
//   - error: ErrDuplicateConsumer when name is already registered, or
//     ErrAlreadyStarted when the group is running
func (g *Group) Register(name string, c Runnable) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started {
		return ErrAlreadyStarted
	}
	if _, loaded := g.consumers.LoadOrStore(name, c); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateConsumer, name)
	}
	g.order = append(g.order, name)

	return nil
}

// Start starts all registered consumers in registration order. On the first
// failure, consumers already started are closed and the error is returned.
func (g *Group) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started {
		return ErrAlreadyStarted
	}

	for i, name := range g.order {
		c, _ := g.consumers.Load(name)
		if err := c.Start(ctx); err != nil {
			for _, prev := range g.order[:i] {
				p, _ := g.consumers.Load(prev)
				if closeErr := p.Close(ctx); closeErr != nil {
					g.logger.Warn("failed to close consumer during start rollback", "name", prev, "error", closeErr)
				}
			}

			return fmt.Errorf("failed to start consumer %s: %w", name, err)
		}
	}
	g.started = true
	g.logger.Info("consumer group started", "consumers", len(g.order))

	return nil
}

// Close stops all consumers in reverse registration order. Errors are joined;
// closing never stops early.
func (g *Group) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started {
		return ErrNotStarted
	}
	g.started = false

	var errs []error
	for i := len(g.order) - 1; i >= 0; i-- {
		name := g.order[i]
		c, _ := g.consumers.Load(name)
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	g.logger.Info("consumer group closed", "consumers", len(g.order))

	return errors.Join(errs...)
}
