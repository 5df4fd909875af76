package postgres

import (
	"context"
	"database/sql"
	"time"

	"chyrp/internal/domain"
)

type viewRepository struct {
	DB *sql.DB
}

// NewViewRepository returns a domain.ViewRepository implemented with Postgres.
func NewViewRepository(db *sql.DB) domain.ViewRepository {
	return &viewRepository{DB: db}
}

const viewSelect = `SELECT id, post_id, user_id, ip_address, user_agent, viewed_at FROM post_views`

func scanView(s rowScanner) (*domain.PostView, error) {
	v := &domain.PostView{}
	var userID sql.NullInt64
	var ip, ua sql.NullString
	if err := s.Scan(&v.ID, &v.PostID, &userID, &ip, &ua, &v.ViewedAt); err != nil {
		return nil, err
	}
	v.UserID = int64Ptr(userID)
	v.IPAddress = ip.String
	v.UserAgent = ua.String
	return v, nil
}

// RecordIfNew inserts a view unless the viewer already has one on the post after since,
// and returns the post's latest view by any viewer. Calls for the same post are serialized by a
// transaction-scoped advisory lock so concurrent duplicates count once.
func (r *viewRepository) RecordIfNew(ctx context.Context, postID int64, v domain.Viewer, since time.Time) (*domain.PostView, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, postID); err != nil {
		return nil, err
	}

	var seen bool
	if v.UserID != 0 {
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM post_views WHERE post_id = $1 AND viewed_at > $2 AND user_id = $3)`,
			postID, since, v.UserID).Scan(&seen)
	} else {
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM post_views WHERE post_id = $1 AND viewed_at > $2 AND ip_address = $3)`,
			postID, since, v.IPAddress).Scan(&seen)
	}
	if err != nil {
		return nil, err
	}

	if !seen {
		var userID sql.NullInt64
		var ip sql.NullString
		if v.UserID != 0 {
			userID = sql.NullInt64{Int64: v.UserID, Valid: true}
		} else {
			ip = nullString(v.IPAddress)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO post_views (post_id, user_id, ip_address, user_agent, viewed_at) VALUES ($1, $2, $3, $4, NOW())`,
			postID, userID, ip, nullString(v.UserAgent))
		if err != nil {
			return nil, mapError(err, "post view")
		}
		res, err := tx.ExecContext(ctx, `UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, postID)
		if err != nil {
			return nil, err
		}
		if err := requireAffected(res, "post"); err != nil {
			return nil, err
		}
	}

	latest, err := scanView(tx.QueryRowContext(ctx,
		viewSelect+` WHERE post_id = $1 ORDER BY viewed_at DESC, id DESC LIMIT 1`, postID))
	if err != nil {
		return nil, mapError(err, "post view")
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return latest, nil
}

func (r *viewRepository) ListByPost(ctx context.Context, postID int64, p domain.PaginationParams) ([]*domain.PostView, error) {
	rows, err := r.DB.QueryContext(ctx,
		viewSelect+` WHERE post_id = $1 ORDER BY viewed_at DESC, id DESC LIMIT $2 OFFSET $3`, postID, p.Limit, p.Skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]*domain.PostView, 0)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

func (r *viewRepository) CountSince(ctx context.Context, postID int64, since time.Time) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM post_views WHERE post_id = $1 AND viewed_at >= $2`, postID, since).Scan(&n)
	return n, err
}

func (r *viewRepository) CountUnique(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (SELECT DISTINCT user_id, ip_address FROM post_views WHERE post_id = $1) v`, postID).Scan(&n)
	return n, err
}

func (r *viewRepository) CountAllSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_views WHERE viewed_at >= $1`, since).Scan(&n)
	return n, err
}

func (r *viewRepository) Popular(ctx context.Context, since *time.Time, p domain.PaginationParams) ([]*domain.Post, error) {
	if since != nil {
		return queryPosts(ctx, r.DB, postSelect+`
			WHERE p.status = 'public'
			  AND EXISTS (SELECT 1 FROM post_views v WHERE v.post_id = p.id AND v.viewed_at >= $1)
			ORDER BY p.view_count DESC, p.id DESC
			LIMIT $2 OFFSET $3`, *since, p.Limit, p.Skip)
	}
	return queryPosts(ctx, r.DB, postSelect+`
		WHERE p.status = 'public'
		ORDER BY p.view_count DESC, p.id DESC
		LIMIT $1 OFFSET $2`, p.Limit, p.Skip)
}

func (r *viewRepository) Totals(ctx context.Context) (int64, int64, error) {
	var posts, views int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(view_count), 0) FROM posts`).Scan(&posts, &views)
	return posts, views, err
}
