package domain

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Skip  int
	Limit int
}

// Clamp returns p with a non-negative Skip and a Limit in [1, max], using def when Limit is unset.
func (p PaginationParams) Clamp(def, max int) PaginationParams {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = def
	}
	if max > 0 && p.Limit > max {
		p.Limit = max
	}
	return p
}
