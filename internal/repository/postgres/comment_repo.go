package postgres

import (
	"context"
	"database/sql"

	"chyrp/internal/domain"
)

type commentRepository struct {
	DB *sql.DB
}

// NewCommentRepository returns a domain.CommentRepository implemented with Postgres.
func NewCommentRepository(db *sql.DB) domain.CommentRepository {
	return &commentRepository{DB: db}
}

const commentSelect = `
	SELECT c.id, c.post_id, c.user_id, c.parent_id, c.content, c.is_approved, c.created_at, c.updated_at,
	       u.login, u.full_name
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func scanComment(s rowScanner) (*domain.Comment, error) {
	c := &domain.Comment{Author: &domain.PostOwner{}}
	var parentID sql.NullInt64
	var fullName sql.NullString
	err := s.Scan(&c.ID, &c.PostID, &c.UserID, &parentID, &c.Content, &c.IsApproved, &c.CreatedAt, &c.UpdatedAt,
		&c.Author.Login, &fullName)
	if err != nil {
		return nil, err
	}
	c.ParentID = int64Ptr(parentID)
	c.Author.ID = c.UserID
	c.Author.FullName = fullName.String
	return c, nil
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (post_id, user_id, parent_id, content, is_approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		c.PostID, c.UserID, nullInt64(c.ParentID), c.Content, c.IsApproved, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	return mapError(err, "comment")
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	c, err := scanComment(r.DB.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "comment")
	}
	return c, nil
}

func (r *commentRepository) ListApprovedByPost(ctx context.Context, postID int64) ([]*domain.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		commentSelect+` WHERE c.post_id = $1 AND c.is_approved ORDER BY c.created_at, c.id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, c *domain.Comment) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE comments SET content = $2, is_approved = $3, updated_at = $4 WHERE id = $1`,
		c.ID, c.Content, c.IsApproved, c.UpdatedAt)
	if err != nil {
		return err
	}
	return requireAffected(res, "comment")
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "comment")
}
