package cascade

import (
	"fmt"
)

// Columns maps sort keys to the SQL expressions that hold them, plus the id column
// used as tie-break.
type Columns struct {
	Sort map[SortKey]string
	ID   string
}

// Clause is the SQL fragment set for one keyset read. Where is empty on the first page.
// Args holds the bound values in placeholder order, the LIMIT value last.
type Clause struct {
	Where   string
	OrderBy string
	Limit   string
	Args    []any
}

// SQL renders q for Postgres-style placeholders, numbering from next.
func (q Query) SQL(cols Columns, next int) (Clause, error) {
	col, ok := cols.Sort[q.Key]
	if !ok || cols.ID == "" {
		return Clause{}, fmt.Errorf("%w: no column for sort key %q", ErrInvalidParameter, q.Key)
	}
	dir, op := "DESC", "<"
	if q.Order == Asc {
		dir, op = "ASC", ">"
	}

	var cl Clause
	if q.After != nil {
		v, id := next, next+1
		cl.Where = fmt.Sprintf("(%s %s $%d OR (%s = $%d AND %s %s $%d))", col, op, v, col, v, cols.ID, op, id)
		cl.Args = append(cl.Args, q.After.Value(), q.After.ID)
		next += 2
	}
	cl.OrderBy = fmt.Sprintf("%s %s, %s %s", col, dir, cols.ID, dir)
	cl.Limit = fmt.Sprintf("LIMIT $%d", next)
	cl.Args = append(cl.Args, q.Limit)
	return cl, nil
}
