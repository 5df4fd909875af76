package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"chyrp/internal/cascade"
	"chyrp/internal/domain"
)

// ParsePagination reads skip and limit from the query string. Invalid or missing values
// are left zero; services clamp them to their own defaults.
func ParsePagination(r *http.Request) domain.PaginationParams {
	var p domain.PaginationParams
	if v, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil && v > 0 {
		p.Skip = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	return p
}

// PathID parses the named path value as a positive integer ID.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, name)
	}
	return id, nil
}

// QueryID parses an optional positive integer query parameter; absent means 0.
func QueryID(r *http.Request, name string) (int64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", cascade.ErrInvalidParameter, name)
	}
	return id, nil
}

// ParseCascadeRequest reads cursor, limit, sort_by and sort_order. An absent limit takes
// def; a non-numeric one is an invalid parameter. Range checks are left to the engine.
func ParseCascadeRequest(r *http.Request, def int) (cascade.Request, error) {
	q := r.URL.Query()
	req := cascade.Request{
		Cursor:    q.Get("cursor"),
		Limit:     def,
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return cascade.Request{}, fmt.Errorf("%w: limit must be an integer", cascade.ErrInvalidParameter)
		}
		req.Limit = n
	}
	return req, nil
}
