package gopaginator

import (
	"context"
	"fmt"
)

// NumberedStrategy identifies pages by an incrementing page number.
// A page is advanced by exactly one regardless of how many items it held.
type NumberedStrategy[T any] struct {
	initialPage int
	page        int
	fetch       NumberedFetchFunc[T]
}

func NewNumberedStrategy[T any](initialPage int, fetch NumberedFetchFunc[T]) (NumberedStrategy[T], error) {
	if fetch == nil {
		return NumberedStrategy[T]{}, ErrNilFetchFunc
	}
	if initialPage < 1 {
		return NumberedStrategy[T]{}, fmt.Errorf("%w: got %d", ErrInvalidPageNumber, initialPage)
	}

	return NumberedStrategy[T]{
		initialPage: initialPage,
		page:        initialPage,
		fetch:       fetch,
	}, nil
}

// Page returns the number of the page the next Fetch will request.
func (s NumberedStrategy[T]) Page() int {
	return s.page
}

// Reset - implements Strategy.
func (s NumberedStrategy[T]) Reset() Strategy[T] {
	s.page = s.initialPage
	return s
}

// Fetch - implements Strategy.
func (s NumberedStrategy[T]) Fetch(ctx context.Context, pageSize int) ([]T, error) {
	return s.fetch(ctx, s.page, pageSize)
}

// Advance - implements Strategy.
func (s NumberedStrategy[T]) Advance(_ []T) Strategy[T] {
	s.page++
	return s
}

var _ Strategy[any] = NumberedStrategy[any]{}
