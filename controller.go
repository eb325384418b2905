package gopaginator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the observable state of a Controller.
type State int

const (
	// StateIdle - nothing has been loaded since construction or the last failed Load.
	StateIdle State = iota
	// StateLoading - an operation is outstanding.
	StateLoading
	// StateLoaded - the last fetch returned a full page.
	StateLoaded
	// StateEndReached - the last fetch returned a short page.
	StateEndReached
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateEndReached:
		return "end_reached"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// operation is a single outstanding fetch owned by the controller.
type operation struct {
	id     uint64
	kind   Operation
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// Controller sequences Load and LoadMore calls over a Strategy and keeps
// track of the loading and end-of-data flags.
//
// At most one operation is outstanding at any time. Load supersedes the
// outstanding operation, LoadMore is refused while one is running.
// A Controller is safe for concurrent use; the fetch function is never
// called with the internal lock held.
type Controller[T any] struct {
	mu sync.Mutex

	pageSize    int
	strategy    Strategy[T]
	isLoading   bool
	didReachEnd bool
	loaded      bool
	active      *operation
	nextID      uint64

	logger  Logger
	metrics MetricsCollector
}

// NewController builds a Controller over an arbitrary Strategy. pageSize
// must be positive; it is only capped when WithMaxPageSize is given.
func NewController[T any](pageSize int, strategy Strategy[T], opts ...Option) (*Controller[T], error) {
	if strategy == nil {
		return nil, ErrNilStrategy
	}

	return newController(pageSize, strategy, applyOptions(opts))
}

// NewNumbered builds a Controller paginating by page number.
//
// Usage:
//
//	ctrl, err := gopaginator.NewNumbered(20, func(ctx context.Context, page, size int) ([]Item, error) {
//		return api.ListItems(ctx, page, size)
//	})
func NewNumbered[T any](pageSize int, fetch NumberedFetchFunc[T], opts ...Option) (*Controller[T], error) {
	o := applyOptions(opts)

	strategy, err := NewNumberedStrategy(o.initialPage, fetch)
	if err != nil {
		return nil, fmt.Errorf("cannot build numbered controller: %w", err)
	}

	return newController[T](pageSize, strategy, o)
}

// NewKeyset builds a Controller paginating by the key of the last seen item.
func NewKeyset[T Keyed](pageSize int, fetch KeysetFetchFunc[T], opts ...Option) (*Controller[T], error) {
	return NewKeysetFunc(pageSize, fetch, func(item T) string { return item.PaginationKey() }, opts...)
}

// NewKeysetFunc is NewKeyset for item types that do not implement Keyed.
// keyOf extracts the key of an item.
func NewKeysetFunc[T any](pageSize int, fetch KeysetFetchFunc[T], keyOf func(T) string, opts ...Option) (*Controller[T], error) {
	o := applyOptions(opts)

	strategy, err := NewKeysetStrategy(o.initialKey, fetch, keyOf)
	if err != nil {
		return nil, fmt.Errorf("cannot build keyset controller: %w", err)
	}

	return newController[T](pageSize, strategy, o)
}

func newController[T any](pageSize int, strategy Strategy[T], o options) (*Controller[T], error) {
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, pageSize)
	}

	if o.maxPageSize > 0 {
		requested := pageSize

		var within bool
		if pageSize, within = IsNormalizedLimitMax(pageSize, o.maxPageSize); !within {
			o.logger.Warn("page size capped",
				"requested", requested,
				"page_size", pageSize,
			)
		}
	}

	return &Controller[T]{
		pageSize: pageSize,
		strategy: strategy,
		logger:   o.logger,
		metrics:  o.metrics,
	}, nil
}

// Load cancels the outstanding operation, if any, resets the strategy to its
// initial cursor and fetches the first page.
//
// The superseded operation returns ErrCancelled to its own caller. A failed
// Load leaves the reset strategy in place.
func (c *Controller[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	if c.active != nil {
		c.logger.Debug("superseding outstanding operation",
			"operation_id", c.active.id,
			"operation", string(c.active.kind),
		)
		c.active.cancel(errSuperseded)
		c.active = nil
	}

	c.strategy = c.strategy.Reset()
	c.didReachEnd = false
	c.loaded = false

	op, strategy := c.begin(ctx, OperationLoad)
	c.mu.Unlock()

	return c.run(op, strategy)
}

// LoadMore fetches the page after the last one loaded.
//
// It fails with ErrAlreadyLoading while an operation is outstanding and with
// ErrEndReached once a short page has been seen; the loading check wins
// when both hold. Neither failure touches the controller state.
func (c *Controller[T]) LoadMore(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	if c.isLoading {
		c.mu.Unlock()
		c.metrics.IncRejected(OperationLoadMore, RejectAlreadyLoading)

		return nil, ErrAlreadyLoading
	}
	if c.didReachEnd {
		c.mu.Unlock()
		c.metrics.IncRejected(OperationLoadMore, RejectEndReached)

		return nil, ErrEndReached
	}

	op, strategy := c.begin(ctx, OperationLoadMore)
	c.mu.Unlock()

	return c.run(op, strategy)
}

// Cancel cancels the outstanding operation, if any. Its caller receives
// ErrCancelled. The flags are cleared once that operation returns.
func (c *Controller[T]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.cancel(ErrCancelled)
	}
}

// begin registers a new active operation. Must be called with c.mu held.
func (c *Controller[T]) begin(ctx context.Context, kind Operation) (*operation, Strategy[T]) {
	c.nextID++
	opCtx, cancel := context.WithCancelCause(ctx)
	op := &operation{
		id:     c.nextID,
		kind:   kind,
		ctx:    opCtx,
		cancel: cancel,
	}

	c.active = op
	c.isLoading = true

	c.logger.Debug("operation started",
		"operation_id", op.id,
		"operation", string(kind),
		"page_size", c.pageSize,
	)

	return op, c.strategy
}

// run fetches against the strategy snapshot and applies the result only if
// op is still the active operation.
func (c *Controller[T]) run(op *operation, strategy Strategy[T]) ([]T, error) {
	defer op.cancel(nil)

	returned := false
	defer func() {
		// The fetch function panicked: release the operation before the
		// panic propagates.
		if !returned {
			c.mu.Lock()
			c.release(op)
			c.mu.Unlock()
		}
	}()

	start := time.Now()
	items, fetchErr := strategy.Fetch(op.ctx, c.pageSize)
	elapsed := time.Since(start)
	returned = true

	c.mu.Lock()
	defer c.mu.Unlock()

	c.release(op)

	if op.ctx.Err() != nil {
		c.metrics.ObserveFetch(op.kind, OutcomeCancelled, 0, elapsed)
		c.logger.Debug("operation cancelled",
			"operation_id", op.id,
			"operation", string(op.kind),
		)

		return nil, cancellationError(op.ctx)
	}

	if fetchErr != nil {
		c.metrics.ObserveFetch(op.kind, OutcomeError, 0, elapsed)
		c.logger.Warn("fetch failed",
			"operation_id", op.id,
			"operation", string(op.kind),
			"error", fetchErr.Error(),
		)

		return nil, fetchErr
	}

	// Cancellation is the only way an operation stops being active, so a
	// non-current operation has already been handled above.
	c.didReachEnd = len(items) < c.pageSize
	c.strategy = strategy.Advance(items)
	c.loaded = true

	c.metrics.ObserveFetch(op.kind, OutcomeSuccess, len(items), elapsed)
	c.logger.Debug("operation completed",
		"operation_id", op.id,
		"operation", string(op.kind),
		"items", len(items),
		"end_reached", c.didReachEnd,
	)

	return items, nil
}

// release clears the loading flag if op is still the active operation.
// Must be called with c.mu held.
func (c *Controller[T]) release(op *operation) {
	if c.active == op {
		c.active = nil
		c.isLoading = false
	}
}

// cancellationError converts the cancellation cause of ctx into an error
// matching ErrCancelled.
func cancellationError(ctx context.Context) error {
	cause := context.Cause(ctx)
	if cause == nil {
		return ErrCancelled
	}
	if errors.Is(cause, ErrCancelled) {
		return cause
	}

	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// IsLoading reports whether an operation is outstanding.
func (c *Controller[T]) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.isLoading
}

// DidReachEnd reports whether the last completed fetch returned a short page.
func (c *Controller[T]) DidReachEnd() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.didReachEnd
}

// PageSize returns the page size requested from the fetch function.
func (c *Controller[T]) PageSize() int {
	return c.pageSize
}

// Strategy returns the current strategy value.
func (c *Controller[T]) Strategy() Strategy[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.strategy
}

// State returns the controller state derived from its flags.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.isLoading:
		return StateLoading
	case c.didReachEnd:
		return StateEndReached
	case c.loaded:
		return StateLoaded
	default:
		return StateIdle
	}
}
