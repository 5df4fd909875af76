package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"chyrp/internal/domain"
)

type interactionRepository struct {
	DB *sql.DB
}

// NewInteractionRepository returns a domain.InteractionRepository implemented with Postgres.
func NewInteractionRepository(db *sql.DB) domain.InteractionRepository {
	return &interactionRepository{DB: db}
}

// toggle deletes the (a, b) row from table when present and inserts it otherwise.
// It reports whether the row exists afterwards.
func (r *interactionRepository) toggle(ctx context.Context, table, colA, colB string, a, b int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, table, colA, colB), a, b)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n > 0 {
		return false, nil
	}
	_, err = r.DB.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table, colA, colB), a, b)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *interactionRepository) ToggleLike(ctx context.Context, userID, postID int64) (bool, error) {
	return r.toggle(ctx, "post_likes", "user_id", "post_id", userID, postID)
}

func (r *interactionRepository) CountLikes(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&n)
	return n, err
}

func (r *interactionRepository) ToggleBookmark(ctx context.Context, userID, postID int64) (bool, error) {
	return r.toggle(ctx, "post_bookmarks", "user_id", "post_id", userID, postID)
}

func (r *interactionRepository) ToggleFavorite(ctx context.Context, userID, writerID int64) (bool, error) {
	return r.toggle(ctx, "favorite_writers", "user_id", "favorite_user_id", userID, writerID)
}
