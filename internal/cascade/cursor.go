package cascade

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// maxCursorLen bounds the token size accepted from clients.
const maxCursorLen = 512

var cursorEncoding = base64.RawURLEncoding

// Cursor marks the last row of a page within one ordering.
type Cursor struct {
	Key   SortKey
	Order SortOrder
	Position
}

// NewCursor builds the canonical cursor for pos: the value field that does not belong
// to key's kind is cleared and timestamps are kept in UTC.
func NewCursor(key SortKey, order SortOrder, pos Position) Cursor {
	c := Cursor{Key: key, Order: order, Position: Position{ID: pos.ID}}
	switch key.Kind() {
	case TimeValue:
		c.Time = pos.Time.UTC()
	case IntValue:
		c.Count = pos.Count
	}
	return c
}

// Admits reports whether a row at p comes strictly after the cursor in its ordering.
func (c Cursor) Admits(p Position) bool {
	r := Compare(c.Key.Kind(), p, c.Position)
	if c.Order == Desc {
		return r < 0
	}
	return r > 0
}

// Value returns the sort-column value the boundary predicate compares against.
func (c Cursor) Value() any {
	if c.Key.Kind() == IntValue {
		return c.Count
	}
	return c.Time
}

type cursorRecord struct {
	Key   string `json:"k"`
	Order string `json:"o"`
	Time  string `json:"t,omitempty"`
	Count *int64 `json:"n,omitempty"`
	ID    int64  `json:"id"`
}

// EncodeCursor serializes c into an opaque, URL-safe token.
func EncodeCursor(c Cursor) string {
	rec := cursorRecord{Key: string(c.Key), Order: string(c.Order), ID: c.ID}
	if c.Key.Kind() == IntValue {
		n := c.Count
		rec.Count = &n
	} else {
		rec.Time = c.Time.UTC().Format(time.RFC3339Nano)
	}
	b, _ := json.Marshal(rec)
	return cursorEncoding.EncodeToString(b)
}

// DecodeCursor parses a token produced by EncodeCursor. Every failure wraps
// ErrInvalidCursor.
func DecodeCursor(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("%w: empty cursor", ErrInvalidCursor)
	}
	if len(token) > maxCursorLen {
		return Cursor{}, fmt.Errorf("%w: cursor too long", ErrInvalidCursor)
	}
	raw, err := cursorEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: not base64url", ErrInvalidCursor)
	}
	var rec cursorRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return Cursor{}, fmt.Errorf("%w: malformed payload", ErrInvalidCursor)
	}

	key := SortKey(rec.Key)
	if !key.Valid() {
		return Cursor{}, fmt.Errorf("%w: unknown sort key %q", ErrInvalidCursor, rec.Key)
	}
	order := SortOrder(rec.Order)
	if order != Asc && order != Desc {
		return Cursor{}, fmt.Errorf("%w: unknown sort order %q", ErrInvalidCursor, rec.Order)
	}
	if rec.ID <= 0 {
		return Cursor{}, fmt.Errorf("%w: id must be positive", ErrInvalidCursor)
	}

	c := Cursor{Key: key, Order: order, Position: Position{ID: rec.ID}}
	switch key.Kind() {
	case TimeValue:
		if rec.Time == "" || rec.Count != nil {
			return Cursor{}, fmt.Errorf("%w: %s cursor needs a timestamp", ErrInvalidCursor, key)
		}
		t, err := time.Parse(time.RFC3339Nano, rec.Time)
		if err != nil {
			return Cursor{}, fmt.Errorf("%w: bad timestamp %q", ErrInvalidCursor, rec.Time)
		}
		c.Time = t.UTC()
	case IntValue:
		if rec.Count == nil || rec.Time != "" {
			return Cursor{}, fmt.Errorf("%w: %s cursor needs an integer", ErrInvalidCursor, key)
		}
		c.Count = *rec.Count
	}
	return c, nil
}
