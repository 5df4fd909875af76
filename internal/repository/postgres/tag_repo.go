package postgres

import (
	"context"
	"database/sql"

	"chyrp/internal/domain"
)

type tagRepository struct {
	DB *sql.DB
}

// NewTagRepository returns a domain.TagRepository implemented with Postgres.
func NewTagRepository(db *sql.DB) domain.TagRepository {
	return &tagRepository{DB: db}
}

const tagSelect = `
	SELECT t.id, t.name, t.slug, t.description, t.color, t.created_at,
	       (SELECT COUNT(*) FROM post_tags pt JOIN posts p ON p.id = pt.post_id
	        WHERE pt.tag_id = t.id AND p.status = 'public') AS post_count
	FROM tags t`

func scanTag(s rowScanner) (*domain.Tag, error) {
	t := &domain.Tag{}
	var desc, color sql.NullString
	if err := s.Scan(&t.ID, &t.Name, &t.Slug, &desc, &color, &t.CreatedAt, &t.PostCount); err != nil {
		return nil, err
	}
	t.Description = desc.String
	t.Color = color.String
	return t, nil
}

func (r *tagRepository) queryTags(ctx context.Context, query string, args ...any) ([]*domain.Tag, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]*domain.Tag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) Create(ctx context.Context, t *domain.Tag) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO tags (name, slug, description, color, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		t.Name, t.Slug, nullString(t.Description), nullString(t.Color), t.CreatedAt,
	).Scan(&t.ID)
	return mapError(err, "tag")
}

func (r *tagRepository) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	t, err := scanTag(r.DB.QueryRowContext(ctx, tagSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "tag")
	}
	return t, nil
}

func (r *tagRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	t, err := scanTag(r.DB.QueryRowContext(ctx, tagSelect+` WHERE t.slug = $1`, slug))
	if err != nil {
		return nil, mapError(err, "tag")
	}
	return t, nil
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	t, err := scanTag(r.DB.QueryRowContext(ctx, tagSelect+` WHERE lower(t.name) = lower($1)`, name))
	if err != nil {
		return nil, mapError(err, "tag")
	}
	return t, nil
}

func (r *tagRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tags WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *tagRepository) List(ctx context.Context, search string, p domain.PaginationParams) ([]*domain.Tag, error) {
	if search != "" {
		return r.queryTags(ctx, tagSelect+` WHERE t.name ILIKE $1 ORDER BY t.name LIMIT $2 OFFSET $3`,
			likePattern(search), p.Limit, p.Skip)
	}
	return r.queryTags(ctx, tagSelect+` ORDER BY t.name LIMIT $1 OFFSET $2`, p.Limit, p.Skip)
}

func (r *tagRepository) Popular(ctx context.Context, limit int) ([]*domain.Tag, error) {
	return r.queryTags(ctx, `SELECT * FROM (`+tagSelect+`) x WHERE x.post_count > 0 ORDER BY x.post_count DESC, x.id LIMIT $1`, limit)
}

func (r *tagRepository) Update(ctx context.Context, t *domain.Tag) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tags SET name = $2, slug = $3, description = $4, color = $5 WHERE id = $1`,
		t.ID, t.Name, t.Slug, nullString(t.Description), nullString(t.Color))
	if err != nil {
		return mapError(err, "tag")
	}
	return requireAffected(res, "tag")
}

func (r *tagRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "tag")
}

func (r *tagRepository) AttachToPost(ctx context.Context, postID, tagID int64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT (post_id, tag_id) DO NOTHING`, postID, tagID)
	return err
}

func (r *tagRepository) DetachFromPost(ctx context.Context, postID, tagID int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1 AND tag_id = $2`, postID, tagID)
	if err != nil {
		return err
	}
	return requireAffected(res, "post tag")
}
