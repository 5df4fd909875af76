package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"chyrp/internal/domain"
)

type groupRepository struct {
	DB *sql.DB
}

// NewGroupRepository returns a domain.GroupRepository implemented with Postgres.
func NewGroupRepository(db *sql.DB) domain.GroupRepository {
	return &groupRepository{DB: db}
}

func (r *groupRepository) Create(ctx context.Context, g *domain.Group) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO groups (name, permissions) VALUES ($1, $2) RETURNING id`,
		g.Name, pq.Array(fromPermissions(g.Permissions)),
	).Scan(&g.ID)
	return mapError(err, "group")
}

func (r *groupRepository) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	g := &domain.Group{}
	var perms []string
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, permissions FROM groups WHERE name = $1`, name).
		Scan(&g.ID, &g.Name, pq.Array(&perms))
	if err != nil {
		return nil, mapError(err, "group")
	}
	g.Permissions = toPermissions(perms)
	return g, nil
}

func (r *groupRepository) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Group, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, permissions FROM groups ORDER BY id LIMIT $1 OFFSET $2`, p.Limit, p.Skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*domain.Group, 0)
	for rows.Next() {
		g := &domain.Group{}
		var perms []string
		if err := rows.Scan(&g.ID, &g.Name, pq.Array(&perms)); err != nil {
			return nil, err
		}
		g.Permissions = toPermissions(perms)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&n)
	return n, err
}
