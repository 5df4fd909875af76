package cascade

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidCursor is returned when a cursor token cannot be decoded or was issued
	// for a different ordering.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrInvalidParameter is returned for an unusable limit, sort_by or sort_order.
	ErrInvalidParameter = errors.New("invalid pagination parameter")
)

// SortKey names one sortable post attribute.
type SortKey string

const (
	SortCreatedAt SortKey = "created_at"
	SortUpdatedAt SortKey = "updated_at"
	SortViewCount SortKey = "view_count"
)

// ValueKind is the type of a sort column's values.
type ValueKind int

const (
	TimeValue ValueKind = iota + 1
	IntValue
)

var sortKinds = map[SortKey]ValueKind{
	SortCreatedAt: TimeValue,
	SortUpdatedAt: TimeValue,
	SortViewCount: IntValue,
}

// ParseSortKey resolves a sort_by value. An empty value selects created_at; anything
// outside the known keys is rejected.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortCreatedAt, nil
	}
	key := SortKey(s)
	if !key.Valid() {
		return "", fmt.Errorf("%w: sort_by must be one of created_at, updated_at, view_count (got %q)", ErrInvalidParameter, s)
	}
	return key, nil
}

// Valid reports whether k is one of the known sort keys.
func (k SortKey) Valid() bool {
	_, ok := sortKinds[k]
	return ok
}

// Kind returns the value type of the column behind k.
func (k SortKey) Kind() ValueKind {
	return sortKinds[k]
}

// SortOrder is the scan direction.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder resolves a sort_order value; empty means desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Desc, nil
	case string(Asc):
		return Asc, nil
	case string(Desc):
		return Desc, nil
	}
	return "", fmt.Errorf("%w: sort_order must be asc or desc (got %q)", ErrInvalidParameter, s)
}

// Position is where a row sits in a keyset scan. Only the field matching the sort
// key's kind is meaningful, ID always is.
type Position struct {
	Time  time.Time
	Count int64
	ID    int64
}

// Positioner is implemented by rows that can be paginated.
type Positioner interface {
	CascadePosition(key SortKey) Position
}

// Compare orders two positions ascending by (value, id).
func Compare(kind ValueKind, a, b Position) int {
	var c int
	switch kind {
	case TimeValue:
		c = a.Time.Compare(b.Time)
	case IntValue:
		c = cmp.Compare(a.Count, b.Count)
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
