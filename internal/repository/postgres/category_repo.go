package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"chyrp/internal/domain"
)

type categoryRepository struct {
	DB *sql.DB
}

// NewCategoryRepository returns a domain.CategoryRepository implemented with Postgres.
func NewCategoryRepository(db *sql.DB) domain.CategoryRepository {
	return &categoryRepository{DB: db}
}

const categorySelect = `
	SELECT c.id, c.name, c.slug, c.description, c.color, c.parent_id, c.created_at,
	       (SELECT COUNT(*) FROM post_categories pc JOIN posts p ON p.id = pc.post_id
	        WHERE pc.category_id = c.id AND p.status = 'public') AS post_count
	FROM categories c`

func scanCategory(s rowScanner) (*domain.Category, error) {
	c := &domain.Category{}
	var desc, color sql.NullString
	var parentID sql.NullInt64
	if err := s.Scan(&c.ID, &c.Name, &c.Slug, &desc, &color, &parentID, &c.CreatedAt, &c.PostCount); err != nil {
		return nil, err
	}
	c.Description = desc.String
	c.Color = color.String
	c.ParentID = int64Ptr(parentID)
	return c, nil
}

func (r *categoryRepository) queryCategories(ctx context.Context, query string, args ...any) ([]*domain.Category, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := make([]*domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *categoryRepository) getOne(ctx context.Context, query string, arg any) (*domain.Category, error) {
	c, err := scanCategory(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, mapError(err, "category")
	}
	return c, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO categories (name, slug, description, color, parent_id, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		c.Name, c.Slug, nullString(c.Description), nullString(c.Color), nullInt64(c.ParentID), c.CreatedAt,
	).Scan(&c.ID)
	return mapError(err, "category")
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	return r.getOne(ctx, categorySelect+` WHERE c.id = $1`, id)
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.getOne(ctx, categorySelect+` WHERE c.slug = $1`, slug)
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.getOne(ctx, categorySelect+` WHERE lower(c.name) = lower($1)`, name)
}

func (r *categoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *categoryRepository) List(ctx context.Context, f domain.CategoryFilter, p domain.PaginationParams) ([]*domain.Category, error) {
	var c clauses
	if f.Search != "" {
		c.add("c.name ILIKE ?", likePattern(f.Search))
	}
	if f.ParentID != nil {
		if *f.ParentID == 0 {
			c.conds = append(c.conds, "c.parent_id IS NULL")
		} else {
			c.add("c.parent_id = ?", *f.ParentID)
		}
	}
	query := categorySelect + c.where() + fmt.Sprintf(" ORDER BY c.name LIMIT $%d OFFSET $%d", c.next(), c.next()+1)
	return r.queryCategories(ctx, query, append(c.args, p.Limit, p.Skip)...)
}

func (r *categoryRepository) ListAll(ctx context.Context) ([]*domain.Category, error) {
	return r.queryCategories(ctx, categorySelect+` ORDER BY c.name`)
}

func (r *categoryRepository) Popular(ctx context.Context, limit int) ([]*domain.Category, error) {
	return r.queryCategories(ctx, `SELECT * FROM (`+categorySelect+`) x WHERE x.post_count > 0 ORDER BY x.post_count DESC, x.id LIMIT $1`, limit)
}

func (r *categoryRepository) CountChildren(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&n)
	return n, err
}

func (r *categoryRepository) Update(ctx context.Context, c *domain.Category) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE categories SET name = $2, slug = $3, description = $4, color = $5, parent_id = $6 WHERE id = $1`,
		c.ID, c.Name, c.Slug, nullString(c.Description), nullString(c.Color), nullInt64(c.ParentID))
	if err != nil {
		return mapError(err, "category")
	}
	return requireAffected(res, "category")
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "category")
}

func (r *categoryRepository) AttachToPost(ctx context.Context, postID, categoryID int64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2) ON CONFLICT (post_id, category_id) DO NOTHING`,
		postID, categoryID)
	return err
}

func (r *categoryRepository) DetachFromPost(ctx context.Context, postID, categoryID int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = $1 AND category_id = $2`, postID, categoryID)
	if err != nil {
		return err
	}
	return requireAffected(res, "post category")
}
