package cascade

import (
	"context"
	"fmt"
	"strings"
)

// Query is one keyset read handed to a Source: the ordering, the optional boundary
// and how many rows to return at most.
type Query struct {
	Key   SortKey
	Order SortOrder
	After *Cursor
	Limit int
}

// Source executes a filtered, sorted, limited read over a backing collection.
// Filters are bound into the Source by the caller; the Source applies q's ordering,
// boundary and limit.
type Source[T any] interface {
	Fetch(ctx context.Context, q Query) ([]T, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, q Query) ([]T, error)

// Fetch calls f.
func (f SourceFunc[T]) Fetch(ctx context.Context, q Query) ([]T, error) {
	return f(ctx, q)
}

// Request carries the caller-supplied pagination parameters, still unparsed.
type Request struct {
	Cursor    string
	Limit     int
	SortBy    string
	SortOrder string
}

// Limits bounds page sizes.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits is 20 rows per page, at most 100.
var DefaultLimits = Limits{Default: 20, Max: 100}

// Prepare validates req and turns it into a Query for one page of size Limit.
// Limits above Max are clamped; non-positive limits are rejected. With a cursor, an
// empty sort_by or sort_order is taken from the cursor; an explicit one must match it.
func (l Limits) Prepare(req Request) (Query, error) {
	key, err := ParseSortKey(req.SortBy)
	if err != nil {
		return Query{}, err
	}
	order, err := ParseSortOrder(req.SortOrder)
	if err != nil {
		return Query{}, err
	}
	if req.Limit <= 0 {
		return Query{}, fmt.Errorf("%w: limit must be greater than 0", ErrInvalidParameter)
	}
	limit := req.Limit
	if l.Max > 0 && limit > l.Max {
		limit = l.Max
	}

	var after *Cursor
	if req.Cursor != "" {
		c, err := DecodeCursor(req.Cursor)
		if err != nil {
			return Query{}, err
		}
		if strings.TrimSpace(req.SortBy) == "" {
			key = c.Key
		}
		if strings.TrimSpace(req.SortOrder) == "" {
			order = c.Order
		}
		if c.Key != key || c.Order != order {
			return Query{}, fmt.Errorf("%w: cursor was issued for %s %s, not %s %s", ErrInvalidCursor, c.Key, c.Order, key, order)
		}
		after = &c
	}
	return Query{Key: key, Order: order, Limit: limit, After: after}, nil
}
