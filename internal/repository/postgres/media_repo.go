package postgres

import (
	"context"
	"database/sql"

	"chyrp/internal/domain"
)

type mediaRepository struct {
	DB *sql.DB
}

// NewMediaRepository returns a domain.MediaRepository implemented with Postgres.
func NewMediaRepository(db *sql.DB) domain.MediaRepository {
	return &mediaRepository{DB: db}
}

const mediaSelect = `
	SELECT m.id, m.filename, m.original_name, m.content_type, m.file_size, m.file_url, m.uploaded_at, m.user_id,
	       u.login, u.full_name
	FROM media m
	JOIN users u ON u.id = m.user_id`

func scanMedia(s rowScanner) (*domain.Media, error) {
	m := &domain.Media{Owner: &domain.PostOwner{}}
	var fullName sql.NullString
	err := s.Scan(&m.ID, &m.Filename, &m.OriginalName, &m.ContentType, &m.FileSize, &m.FileURL, &m.UploadedAt, &m.UserID,
		&m.Owner.Login, &fullName)
	if err != nil {
		return nil, err
	}
	m.Owner.ID = m.UserID
	m.Owner.FullName = fullName.String
	return m, nil
}

func (r *mediaRepository) Create(ctx context.Context, m *domain.Media) error {
	query := `
		INSERT INTO media (filename, original_name, content_type, file_size, file_url, uploaded_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		m.Filename, m.OriginalName, m.ContentType, m.FileSize, m.FileURL, m.UploadedAt, m.UserID,
	).Scan(&m.ID)
	return mapError(err, "media")
}

func (r *mediaRepository) GetByID(ctx context.Context, id int64) (*domain.Media, error) {
	m, err := scanMedia(r.DB.QueryRowContext(ctx, mediaSelect+` WHERE m.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "media")
	}
	return m, nil
}

func (r *mediaRepository) ListByUser(ctx context.Context, userID int64, p domain.PaginationParams) ([]*domain.Media, error) {
	rows, err := r.DB.QueryContext(ctx,
		mediaSelect+` WHERE m.user_id = $1 ORDER BY m.uploaded_at DESC, m.id DESC LIMIT $2 OFFSET $3`,
		userID, p.Limit, p.Skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mediaRepository) CountReferences(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE media_id = $1`, id).Scan(&n)
	return n, err
}

func (r *mediaRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "media")
}

func (r *mediaRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM media m WHERE NOT EXISTS (SELECT 1 FROM posts p WHERE p.media_id = m.id)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
