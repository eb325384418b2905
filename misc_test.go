package gopaginator

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "mysql", db.Debug(), mock, nil
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := postgres.New(postgres.Config{
		Conn: mockDB,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "postgres", db.Debug(), mock, nil
}

// tItem is a dataset row used by the controller tests.
type tItem struct {
	ID int
}

func (i tItem) PaginationKey() string {
	return strconv.Itoa(i.ID)
}

func newDataset(n int) []tItem {
	ret := make([]tItem, 0, n)
	for i := 1; i <= n; i++ {
		ret = append(ret, tItem{ID: i})
	}

	return ret
}

// tDataset serves an in-memory dataset to both strategies and counts calls.
type tDataset struct {
	items []tItem
	calls atomic.Int32
}

func (d *tDataset) numbered(_ context.Context, page, pageSize int) ([]tItem, error) {
	d.calls.Add(1)

	from := min((page-1)*pageSize, len(d.items))
	to := min(from+pageSize, len(d.items))

	return append([]tItem(nil), d.items[from:to]...), nil
}

// strategy returns a numbered strategy over the dataset starting at page 1.
func (d *tDataset) strategy() Strategy[tItem] {
	s, _ := NewNumberedStrategy(1, d.numbered)
	return s
}

func (d *tDataset) keyset(_ context.Context, lastKey string, pageSize int) ([]tItem, error) {
	d.calls.Add(1)

	from := 0
	if lastKey != "" {
		lastID, err := strconv.Atoi(lastKey)
		if err != nil {
			return nil, err
		}
		for from < len(d.items) && d.items[from].ID <= lastID {
			from++
		}
	}
	to := min(from+pageSize, len(d.items))

	return append([]tItem(nil), d.items[from:to]...), nil
}

func ids(items []tItem) []int {
	ret := make([]int, 0, len(items))
	for _, item := range items {
		ret = append(ret, item.ID)
	}

	return ret
}

// tFetchCall is a single blocked invocation of a tGate fetch function.
type tFetchCall struct {
	ctx     context.Context
	page    int
	release chan tFetchResult
}

type tFetchResult struct {
	items []tItem
	err   error
}

// tGate is a numbered fetch function whose calls block until the test
// releases them. Calls are published on the calls channel.
type tGate struct {
	calls chan *tFetchCall
	// ignoreCancel makes the fetch function wait for release even after its
	// context is cancelled.
	ignoreCancel bool
}

func newGate() *tGate {
	return &tGate{calls: make(chan *tFetchCall, 16)}
}

func (g *tGate) fetch(ctx context.Context, page, _ int) ([]tItem, error) {
	call := &tFetchCall{ctx: ctx, page: page, release: make(chan tFetchResult, 1)}
	g.calls <- call

	if g.ignoreCancel {
		res := <-call.release
		return res.items, res.err
	}

	select {
	case res := <-call.release:
		return res.items, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
