package domain

import (
	"context"
	"time"
)

// Tag is a free-form label attached to posts.
// swagger:model Tag
type Tag struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	PostCount   int64     `json:"post_count"`
}

// TagInput carries the fields of a new tag.
type TagInput struct {
	Name        string
	Description string
	Color       string
}

// TagPatch carries a partial tag update.
type TagPatch struct {
	Name        *string
	Description *string
	Color       *string
}

// TagRepository defines storage for tags and post–tag links.
type TagRepository interface {
	Create(ctx context.Context, tag *Tag) error
	GetByID(ctx context.Context, id int64) (*Tag, error)
	GetBySlug(ctx context.Context, slug string) (*Tag, error)
	// GetByName matches name case-insensitively.
	GetByName(ctx context.Context, name string) (*Tag, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, search string, p PaginationParams) ([]*Tag, error)
	// Popular returns tags ordered by the number of public posts carrying them.
	Popular(ctx context.Context, limit int) ([]*Tag, error)
	Update(ctx context.Context, tag *Tag) error
	Delete(ctx context.Context, id int64) error
	AttachToPost(ctx context.Context, postID, tagID int64) error
	DetachFromPost(ctx context.Context, postID, tagID int64) error
}

// TagService defines the business logic for tags.
type TagService interface {
	Create(ctx context.Context, in TagInput) (*Tag, error)
	GetByID(ctx context.Context, id int64) (*Tag, error)
	GetBySlug(ctx context.Context, slug string) (*Tag, error)
	List(ctx context.Context, search string, p PaginationParams) ([]*Tag, error)
	Popular(ctx context.Context, limit int) ([]*Tag, error)
	Update(ctx context.Context, id int64, patch TagPatch) (*Tag, error)
	Delete(ctx context.Context, id int64) error
	GetOrCreate(ctx context.Context, names []string) ([]*Tag, error)
	AttachToPost(ctx context.Context, actor *User, postID, tagID int64) (*Post, error)
	DetachFromPost(ctx context.Context, actor *User, postID, tagID int64) (*Post, error)
}
