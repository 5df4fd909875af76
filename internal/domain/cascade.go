package domain

import (
	"context"

	"chyrp/internal/cascade"
)

// PostPage is one page of a cascade feed.
type PostPage = cascade.Page[*Post]

// CascadeService serves keyset-paginated feeds of public posts.
type CascadeService interface {
	// Posts pages through all public posts, optionally narrowed by content type and author.
	Posts(ctx context.Context, req cascade.Request, contentType string, userID int64) (*PostPage, error)
	ByTag(ctx context.Context, tagID int64, req cascade.Request) (*Tag, *PostPage, error)
	ByCategory(ctx context.Context, categoryID int64, req cascade.Request) (*Category, *PostPage, error)
	ByUser(ctx context.Context, userID int64, req cascade.Request) (*User, *PostPage, error)
}
