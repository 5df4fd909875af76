package cascade

import (
	"context"
)

// Page is one bounded slice of a feed plus what is needed to continue it.
// NextCursor is non-nil exactly when HasMore is true.
type Page[T any] struct {
	Items      []T
	HasMore    bool
	NextCursor *string
}

// TotalReturned is the number of items on this page.
func (p *Page[T]) TotalReturned() int {
	return len(p.Items)
}

// Paginate reads one page from src. It over-fetches a single row to decide HasMore
// and never returns a partial page: any error from src is returned as is.
func Paginate[T Positioner](ctx context.Context, src Source[T], req Request, limits Limits) (*Page[T], error) {
	q, err := limits.Prepare(req)
	if err != nil {
		return nil, err
	}
	size := q.Limit
	q.Limit = size + 1
	rows, err := src.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return NewPage(rows, size, q.Key, q.Order), nil
}

// NewPage truncates rows (fetched with limit+1) to limit and derives the next cursor
// from the last row kept.
func NewPage[T Positioner](rows []T, limit int, key SortKey, order SortOrder) *Page[T] {
	page := &Page[T]{Items: rows}
	if len(rows) > limit && limit > 0 {
		page.Items = rows[:limit]
		page.HasMore = true
		last := page.Items[limit-1]
		next := EncodeCursor(NewCursor(key, order, last.CascadePosition(key)))
		page.NextCursor = &next
	}
	if page.Items == nil {
		page.Items = make([]T, 0)
	}
	return page
}
