package gopaginator

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the Controller itself. Errors produced by a
// fetch function are never replaced by one of these.
var (
	// ErrAlreadyLoading is returned by LoadMore while another operation is outstanding.
	ErrAlreadyLoading = errors.New("pagination: already loading")

	// ErrEndReached is returned by LoadMore once a short page has been seen.
	// It stays in effect until the next Load.
	ErrEndReached = errors.New("pagination: end of data reached")

	// ErrCancelled is returned to the caller of an operation that was
	// superseded by a newer Load or whose context was cancelled.
	ErrCancelled = errors.New("pagination: operation cancelled")

	// ErrNilFetchFunc is returned when a controller is built without a fetch function.
	ErrNilFetchFunc = errors.New("pagination: fetch function is required")

	// ErrNilStrategy is returned by NewController when no strategy is given.
	ErrNilStrategy = errors.New("pagination: strategy is required")

	// ErrInvalidPageNumber is returned when the initial page is not positive.
	ErrInvalidPageNumber = errors.New("pagination: page number must be positive")

	// ErrInvalidPageSize is returned when a controller is built with a page size below 1.
	ErrInvalidPageSize = errors.New("pagination: page size must be positive")
)

// errSuperseded is the cancellation cause attached to an operation replaced by a newer Load.
var errSuperseded = fmt.Errorf("%w: superseded by a newer load", ErrCancelled)
