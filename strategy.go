package gopaginator

import "context"

// Strategy describes where the next page starts and how that position moves
// once a page has been fetched.
//
// Implementations are immutable: Reset and Advance return a new value and
// never touch the receiver, so an in-flight Fetch always runs against a
// stable snapshot.
type Strategy[T any] interface {
	// Reset returns a strategy positioned at its initial cursor.
	Reset() Strategy[T]
	// Fetch requests one page of at most pageSize items at the current cursor.
	// The result of the underlying fetch function is returned unfiltered.
	Fetch(ctx context.Context, pageSize int) ([]T, error)
	// Advance returns a strategy positioned after items.
	Advance(items []T) Strategy[T]
}

// NumberedFetchFunc fetches the page with the given 1-based number.
type NumberedFetchFunc[T any] func(ctx context.Context, page, pageSize int) ([]T, error)

// KeysetFetchFunc fetches the page that follows lastKey. An empty lastKey
// means the beginning of the dataset.
type KeysetFetchFunc[T any] func(ctx context.Context, lastKey string, pageSize int) ([]T, error)

// Keyed is implemented by items that can be paginated with a KeysetStrategy.
type Keyed interface {
	// PaginationKey returns the position of the item within the dataset.
	PaginationKey() string
}
