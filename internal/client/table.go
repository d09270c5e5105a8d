package client

import (
	"context"
	"sync"

	"github.com/mrlokans/bookstore/internal/listquery"
)

// Fetcher loads one page of rows for a table, usually a bound Client
// method like ListUsers or ListBooks.
type Fetcher[T any] func(context.Context, listquery.Request) (listquery.Page[T], error)

// Reloadable is the slice of a table other flows need: after a dialog
// mutates data, the owning table refreshes with its current search state.
type Reloadable interface {
	Reload(ctx context.Context) error
}

// TableController drives one paginated admin table. It owns the visible
// rows, the authoritative pagination meta reported by the backend, and
// the last request so mutation flows can refresh in place.
//
// Responses are sequenced: every Load takes a monotonically increasing
// ticket, and a response whose ticket is no longer the newest is
// discarded so a slow early request can never overwrite a later one.
type TableController[T any] struct {
	fetch Fetcher[T]

	mu      sync.Mutex
	seq     uint64
	rows    []T
	meta    listquery.Meta
	loading bool
	loaded  bool
	lastReq listquery.Request
	lastErr error
}

// NewTableController builds a controller around a fetcher.
func NewTableController[T any](fetch Fetcher[T]) *TableController[T] {
	return &TableController[T]{fetch: fetch}
}

// Snapshot is the table's render state at one point in time.
type Snapshot[T any] struct {
	Rows    []T
	Meta    listquery.Meta
	Loading bool
	// Err holds the most recent fetch failure; nil after any success.
	Err error
}

// Snapshot returns a copy of the current render state.
func (t *TableController[T]) Snapshot() Snapshot[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := make([]T, len(t.rows))
	copy(rows, t.rows)
	return Snapshot[T]{Rows: rows, Meta: t.meta, Loading: t.loading, Err: t.lastErr}
}

// Load fetches the page described by req and applies it. A failed fetch
// clears the rows and reports zero total but leaves the previous meta
// untouched. Stale responses are dropped without touching any state.
func (t *TableController[T]) Load(ctx context.Context, req listquery.Request) error {
	t.mu.Lock()
	t.seq++
	ticket := t.seq
	t.loading = true
	t.lastReq = req
	t.loaded = true
	t.mu.Unlock()

	page, err := t.fetch(ctx, req)

	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket != t.seq {
		return nil
	}
	t.loading = false

	if err != nil {
		t.rows = nil
		t.lastErr = err
		return err
	}

	t.rows = page.Result
	t.meta = page.Meta
	t.lastErr = nil
	return nil
}

// Reload re-fetches with the last request, keeping filters, sort and
// page exactly as they were. Before any Load it fetches page one with
// defaults.
func (t *TableController[T]) Reload(ctx context.Context) error {
	t.mu.Lock()
	req := t.lastReq
	loaded := t.loaded
	t.mu.Unlock()

	if !loaded {
		req = listquery.Request{Current: 1, PageSize: 10}
	}
	return t.Load(ctx, req)
}

// LastRequest returns the request behind the current rows.
func (t *TableController[T]) LastRequest() listquery.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastReq
}

// Total returns the backend-reported row count across all pages, zero
// after a failed fetch.
func (t *TableController[T]) Total() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastErr != nil {
		return 0
	}
	return t.meta.Total
}
