package gopaginator

import (
	"context"

	"github.com/samber/lo"
)

// KeysetStrategy identifies pages by the key of the last item seen so far.
//
// IMPORTANT:
// The key of an item must define a strict position in the dataset ordering,
// otherwise items sharing a key with the last one of a page may be skipped.
type KeysetStrategy[T any] struct {
	initialKey string
	lastKey    string
	keyOf      func(T) string
	fetch      KeysetFetchFunc[T]
}

func NewKeysetStrategy[T any](initialKey string, fetch KeysetFetchFunc[T], keyOf func(T) string) (KeysetStrategy[T], error) {
	if fetch == nil || keyOf == nil {
		return KeysetStrategy[T]{}, ErrNilFetchFunc
	}

	return KeysetStrategy[T]{
		initialKey: initialKey,
		lastKey:    initialKey,
		keyOf:      keyOf,
		fetch:      fetch,
	}, nil
}

// LastKey returns the key the next Fetch will continue after. Empty means
// the beginning of the dataset.
func (s KeysetStrategy[T]) LastKey() string {
	return s.lastKey
}

// Reset - implements Strategy.
func (s KeysetStrategy[T]) Reset() Strategy[T] {
	s.lastKey = s.initialKey
	return s
}

// Fetch - implements Strategy.
func (s KeysetStrategy[T]) Fetch(ctx context.Context, pageSize int) ([]T, error) {
	return s.fetch(ctx, s.lastKey, pageSize)
}

// Advance - implements Strategy. An empty page keeps the current key.
func (s KeysetStrategy[T]) Advance(items []T) Strategy[T] {
	if len(items) == 0 {
		return s
	}

	s.lastKey = s.keyOf(lo.LastOrEmpty(items))

	return s
}

var _ Strategy[any] = KeysetStrategy[any]{}
