package domain

import (
	"context"
	"time"
)

// Category is a hierarchical post grouping.
// swagger:model Category
type Category struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description,omitempty"`
	Color       string      `json:"color,omitempty"`
	ParentID    *int64      `json:"parent_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	PostCount   int64       `json:"post_count"`
	Children    []*Category `json:"children,omitempty"`
}

// CategoryInput carries the fields of a new category.
type CategoryInput struct {
	Name        string
	Description string
	Color       string
	ParentID    *int64
}

// CategoryFilter narrows a category listing. A nil ParentID lists every level, 0 lists
// root categories and any other value lists that category's direct children.
type CategoryFilter struct {
	Search   string
	ParentID *int64
}

// CategoryPatch carries a partial category update. A ParentID of 0 detaches the category
// from its parent.
type CategoryPatch struct {
	Name        *string
	Description *string
	Color       *string
	ParentID    *int64
}

// CategoryRepository defines storage for categories and post–category links.
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, f CategoryFilter, p PaginationParams) ([]*Category, error)
	// ListAll returns every category ordered by name.
	ListAll(ctx context.Context) ([]*Category, error)
	Popular(ctx context.Context, limit int) ([]*Category, error)
	CountChildren(ctx context.Context, id int64) (int, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
	AttachToPost(ctx context.Context, postID, categoryID int64) error
	DetachFromPost(ctx context.Context, postID, categoryID int64) error
}

// CategoryService defines the business logic for categories.
type CategoryService interface {
	Create(ctx context.Context, in CategoryInput) (*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context, f CategoryFilter, p PaginationParams) ([]*Category, error)
	Tree(ctx context.Context) ([]*Category, error)
	Popular(ctx context.Context, limit int) ([]*Category, error)
	ForDropdown(ctx context.Context) ([]*Category, error)
	Update(ctx context.Context, id int64, patch CategoryPatch) (*Category, error)
	Delete(ctx context.Context, id int64) error
	AttachToPost(ctx context.Context, actor *User, postID, categoryID int64) (*Post, error)
	DetachFromPost(ctx context.Context, actor *User, postID, categoryID int64) (*Post, error)
}
