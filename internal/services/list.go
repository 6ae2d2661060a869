// Package services sits between the HTTP/CLI surfaces and storage: cached
// page loading, bulk actions, per-session selections, CSV previews and
// spreadsheet export.
package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"villeto/internal/cache"
	"villeto/internal/log"
	"villeto/internal/storage"
	"villeto/internal/table"
)

// PageResult is one fetched page and the total matching its state.
type PageResult[R any] struct {
	Rows  []R
	Total int
}

// ListFunc and CountFunc are the storage calls behind a remote table.
type (
	ListFunc[R any] func(ctx context.Context, p storage.ListParams) ([]R, error)
	CountFunc       func(ctx context.Context, p storage.ListParams) (int, error)
)

// Lister loads remote table pages, fetching rows and total concurrently
// and caching results by table state.
type Lister[R any] struct {
	name   string
	list   ListFunc[R]
	count  CountFunc
	cache  cache.Cache[PageResult[R]]
	logger *log.Logger
}

// NewLister creates a lister for the named table. A nil cache disables
// caching.
func NewLister[R any](name string, list ListFunc[R], count CountFunc, c cache.Cache[PageResult[R]], logger *log.Logger) *Lister[R] {
	return &Lister[R]{
		name:   name,
		list:   list,
		count:  count,
		cache:  c,
		logger: logger.WithComponent(log.ComponentTable),
	}
}

func (l *Lister[R]) key(st table.State) string {
	return l.name + "|" + st.Query().Encode()
}

// Fetch returns the page described by st.
func (l *Lister[R]) Fetch(ctx context.Context, st table.State) (PageResult[R], error) {
	key := l.key(st)
	if l.cache != nil {
		if res, ok := l.cache.Get(key); ok {
			l.logger.DebugContext(ctx, "Page cache hit", log.FieldTable, l.name, log.FieldCacheHit, true)
			return res, nil
		}
	}

	p := storage.ParamsFromState(st)
	var res PageResult[R]
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := l.list(gctx, p)
		if err != nil {
			return fmt.Errorf("list %s: %w", l.name, err)
		}
		res.Rows = rows
		return nil
	})
	g.Go(func() error {
		n, err := l.count(gctx, p)
		if err != nil {
			return fmt.Errorf("count %s: %w", l.name, err)
		}
		res.Total = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return PageResult[R]{}, err
	}
	l.logger.DebugContext(ctx, "Page fetched from storage", log.NewFields().
		WithTable(l.name, st.Page, st.PageSize, table.FormatSort(st.SortBy), st.GlobalSearch, len(st.FilterBy)).
		WithOperation(log.OpList).
		ToSlice()...)

	if l.cache != nil {
		l.cache.Set(key, res)
	}
	return res, nil
}

// Load fetches the page for the controller state and feeds the total back.
// A page past the end, left behind by a narrower filter or a larger page
// size, is moved to the last page and fetched again.
func (l *Lister[R]) Load(ctx context.Context, ctrl *table.Controller) ([]R, error) {
	res, err := l.Fetch(ctx, ctrl.State())
	if err != nil {
		return nil, err
	}
	ctrl.SetTotalItems(res.Total)

	st := ctrl.State()
	if st.Page > st.TotalPages {
		ctrl.SetPage(st.TotalPages)
		res, err = l.Fetch(ctx, ctrl.State())
		if err != nil {
			return nil, err
		}
		ctrl.SetTotalItems(res.Total)
	}
	return res.Rows, nil
}

// All returns every row matching st, ignoring its page window. Exports use
// it; results are not cached.
func (l *Lister[R]) All(ctx context.Context, st table.State) ([]R, error) {
	rows, err := l.list(ctx, storage.ParamsFromState(st).All())
	if err != nil {
		return nil, fmt.Errorf("list all %s: %w", l.name, err)
	}
	return rows, nil
}

// Exporter adapts All to the table export hook.
func (l *Lister[R]) Exporter(st table.State) table.Exporter[R] {
	return func(ctx context.Context) ([]R, error) { return l.All(ctx, st) }
}

// Invalidate drops every cached page of the table.
func (l *Lister[R]) Invalidate() int {
	if l.cache == nil {
		return 0
	}
	return l.cache.DeletePrefix(l.name + "|")
}
