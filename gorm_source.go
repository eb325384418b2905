package gopaginator

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Getters maps every ordering column to a function reading that column from
// an item. They are used to build the key of the last item of a page.
//
//	gopaginator.Getters[models.User]{
//		"id":         func(u models.User) any { return u.ID },
//		"created_at": func(u models.User) any { return u.CreatedAt },
//	}
type Getters[T any] map[string]func(T) any

// GORMSource provides fetch functions for both strategies over a gorm query.
//
// Usage:
//
//	src, err := gopaginator.NewGORMSource(db.Model(&User{}), sort, getters)
//	numbered, err := gopaginator.NewNumbered(20, src.FetchNumbered)
//	keyset, err := gopaginator.NewKeysetFunc(20, src.FetchKeyset, src.Key)
type GORMSource[T any] struct {
	db      *gorm.DB
	sort    Orderings
	getters Getters[T]
}

// NewGORMSource validates sort and getters. db is the base query, e.g. a
// model or table with filters already applied; it is never mutated.
func NewGORMSource[T any](db *gorm.DB, sort Orderings, getters Getters[T]) (*GORMSource[T], error) {
	if db == nil {
		return nil, fmt.Errorf("cannot build gorm source: nil db")
	}

	if err := sort.validate(); err != nil {
		return nil, fmt.Errorf("cannot build gorm source: %w", err)
	}

	for _, orderBy := range sort {
		if _, ok := getters[orderBy.Column]; !ok {
			return nil, fmt.Errorf("cannot build gorm source: cannot find getter for column '%s' met in ordering", orderBy.Column)
		}
	}

	return &GORMSource[T]{
		db:      db,
		sort:    sort,
		getters: getters,
	}, nil
}

// FetchNumbered - NumberedFetchFunc reading page number page with LIMIT/OFFSET.
func (s *GORMSource[T]) FetchNumbered(ctx context.Context, page, pageSize int) ([]T, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageNumber, page)
	}

	query := s.sort.Apply(s.db.WithContext(ctx)).Limit(pageSize)
	if offset := (page - 1) * pageSize; offset > 0 {
		query = query.Offset(offset)
	}

	return s.find(query)
}

// FetchKeyset - KeysetFetchFunc reading the rows after the item encoded in lastKey.
func (s *GORMSource[T]) FetchKeyset(ctx context.Context, lastKey string, pageSize int) ([]T, error) {
	token, err := DecodeKeysetToken(lastKey)
	if err != nil {
		return nil, err
	}

	if err = token.validate(s.sort); err != nil {
		return nil, fmt.Errorf("cannot apply keyset token: %w", err)
	}

	query := token.Apply(s.db.WithContext(ctx))
	query = s.sort.Apply(query).Limit(pageSize)

	return s.find(query)
}

// Key returns the keyset token pointing right after item.
func (s *GORMSource[T]) Key(item T) string {
	elements := make([]TokenElement, 0, len(s.sort))
	for _, orderBy := range s.sort {
		elements = append(elements, TokenElement{
			Column:   orderBy.Column,
			Value:    s.getters[orderBy.Column](item),
			Operator: orderBy.Direction.ForOperator(),
		})
	}

	return NewKeysetToken(elements...).String()
}

func (s *GORMSource[T]) find(query *gorm.DB) ([]T, error) {
	var items []T
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}
