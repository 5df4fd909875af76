package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"chyrp/internal/cascade"
	"chyrp/internal/domain"
)

type postRepository struct {
	DB *sql.DB
}

// NewPostRepository returns a domain.PostRepository implemented with Postgres.
func NewPostRepository(db *sql.DB) domain.PostRepository {
	return &postRepository{DB: db}
}

const postSelect = `
	SELECT p.id, p.content_type, p.feather, p.clean, p.status, p.pinned, p.title, p.body,
	       p.parent_id, p.user_id, p.media_id, p.view_count, p.created_at, p.updated_at,
	       u.login, u.full_name,
	       m.filename, m.original_name, m.content_type, m.file_size, m.file_url, m.uploaded_at
	FROM posts p
	JOIN users u ON u.id = p.user_id
	LEFT JOIN media m ON m.id = p.media_id`

// keysetColumns backs cascade ordering on the posts alias.
var keysetColumns = cascade.Columns{
	Sort: map[cascade.SortKey]string{
		cascade.SortCreatedAt: "p.created_at",
		cascade.SortUpdatedAt: "p.updated_at",
		cascade.SortViewCount: "p.view_count",
	},
	ID: "p.id",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (*domain.Post, error) {
	p := &domain.Post{Owner: &domain.PostOwner{}}
	var (
		feather, title, body, fullName sql.NullString
		parentID, mediaID              sql.NullInt64
		mFilename, mOriginal, mType    sql.NullString
		mURL                           sql.NullString
		mSize                          sql.NullInt64
		mUploaded                      sql.NullTime
	)
	err := s.Scan(
		&p.ID, &p.ContentType, &feather, &p.Clean, &p.Status, &p.Pinned, &title, &body,
		&parentID, &p.UserID, &mediaID, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
		&p.Owner.Login, &fullName,
		&mFilename, &mOriginal, &mType, &mSize, &mURL, &mUploaded,
	)
	if err != nil {
		return nil, err
	}
	p.Feather = feather.String
	p.Title = title.String
	p.Body = body.String
	p.ParentID = int64Ptr(parentID)
	p.MediaID = int64Ptr(mediaID)
	p.Owner.ID = p.UserID
	p.Owner.FullName = fullName.String
	if mediaID.Valid && mFilename.Valid {
		p.Media = &domain.Media{
			ID:           mediaID.Int64,
			Filename:     mFilename.String,
			OriginalName: mOriginal.String,
			ContentType:  mType.String,
			FileSize:     mSize.Int64,
			FileURL:      mURL.String,
			UploadedAt:   mUploaded.Time,
		}
	}
	return p, nil
}

func queryPosts(ctx context.Context, db *sql.DB, query string, args ...any) ([]*domain.Post, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Create(ctx context.Context, p *domain.Post) error {
	query := `
		INSERT INTO posts (content_type, feather, clean, status, pinned, title, body, parent_id, user_id, media_id, view_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, $12)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		p.ContentType, nullString(p.Feather), p.Clean, p.Status, p.Pinned, nullString(p.Title), nullString(p.Body),
		nullInt64(p.ParentID), p.UserID, nullInt64(p.MediaID), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return mapError(err, "post")
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	p, err := scanPost(r.DB.QueryRowContext(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "post")
	}
	return p, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, clean string) (*domain.Post, error) {
	p, err := scanPost(r.DB.QueryRowContext(ctx, postSelect+` WHERE p.clean = $1`, clean))
	if err != nil {
		return nil, mapError(err, "post")
	}
	return p, nil
}

// filterClauses renders f. Tag and category membership use EXISTS so a post never
// appears twice in one page.
func filterClauses(f domain.PostFilter) *clauses {
	c := &clauses{}
	if f.Status != "" {
		c.add("p.status = ?", f.Status)
	}
	if f.ContentType != "" {
		c.add("p.content_type = ?", f.ContentType)
	}
	if f.UserID != 0 {
		c.add("p.user_id = ?", f.UserID)
	}
	if f.TagID != 0 {
		c.add("EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = ?)", f.TagID)
	}
	if f.CategoryID != 0 {
		c.add("EXISTS (SELECT 1 FROM post_categories pc WHERE pc.post_id = p.id AND pc.category_id = ?)", f.CategoryID)
	}
	return c
}

func (r *postRepository) List(ctx context.Context, f domain.PostFilter, p domain.PaginationParams) ([]*domain.Post, error) {
	c := filterClauses(f)
	n := c.next()
	query := fmt.Sprintf("%s%s ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d", postSelect, c.where(), n, n+1)
	return queryPosts(ctx, r.DB, query, append(c.args, p.Limit, p.Skip)...)
}

func (r *postRepository) ListKeyset(ctx context.Context, f domain.PostFilter, q cascade.Query) ([]*domain.Post, error) {
	c := filterClauses(f)
	cl, err := q.SQL(keysetColumns, c.next())
	if err != nil {
		return nil, err
	}
	if cl.Where != "" {
		c.conds = append(c.conds, cl.Where)
	}
	query := fmt.Sprintf("%s%s ORDER BY %s %s", postSelect, c.where(), cl.OrderBy, cl.Limit)
	return queryPosts(ctx, r.DB, query, append(c.args, cl.Args...)...)
}

func (r *postRepository) Update(ctx context.Context, p *domain.Post) error {
	query := `
		UPDATE posts
		SET content_type = $1, feather = $2, clean = $3, status = $4, pinned = $5, title = $6, body = $7,
		    parent_id = $8, media_id = $9, updated_at = $10
		WHERE id = $11
	`
	res, err := r.DB.ExecContext(ctx, query,
		p.ContentType, nullString(p.Feather), p.Clean, p.Status, p.Pinned, nullString(p.Title), nullString(p.Body),
		nullInt64(p.ParentID), nullInt64(p.MediaID), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return mapError(err, "post")
	}
	return requireAffected(res, "post")
}

// Delete removes the post and, when no other post still points at it, its media row.
func (r *postRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var mediaID sql.NullInt64
	err = tx.QueryRowContext(ctx, `DELETE FROM posts WHERE id = $1 RETURNING media_id`, id).Scan(&mediaID)
	if err != nil {
		return mapError(err, "post")
	}
	if mediaID.Valid {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM media WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM posts WHERE media_id = $1)`, mediaID.Int64)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *postRepository) Search(ctx context.Context, term string, limit int) ([]*domain.Post, error) {
	query := postSelect + `
		WHERE p.status = 'public' AND (
			p.title ILIKE $1 OR p.body ILIKE $1
			OR EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = p.id AND t.name ILIKE $1)
			OR EXISTS (SELECT 1 FROM post_categories pc JOIN categories c ON c.id = pc.category_id WHERE pc.post_id = p.id AND c.name ILIKE $1)
		)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2`
	return queryPosts(ctx, r.DB, query, likePattern(term), limit)
}
