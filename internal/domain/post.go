package domain

import (
	"context"
	"strings"
	"time"

	"chyrp/internal/cascade"
)

// Post visibility.
const (
	PostStatusPublic  = "public"
	PostStatusPrivate = "private"
	PostStatusDraft   = "draft"
)

// Post kinds.
const (
	ContentTypePost = "post"
	ContentTypePage = "page"
)

// Post is a blog entry or a static page.
// swagger:model Post
type Post struct {
	ID          int64      `json:"id"`
	ContentType string     `json:"content_type"`
	Feather     string     `json:"feather,omitempty"`
	Clean       string     `json:"clean"`
	Status      string     `json:"status"`
	Pinned      bool       `json:"pinned"`
	Title       string     `json:"title,omitempty"`
	Body        string     `json:"body,omitempty"`
	ParentID    *int64     `json:"parent_id,omitempty"`
	UserID      int64      `json:"-"`
	MediaID     *int64     `json:"media_id,omitempty"`
	ViewCount   int64      `json:"view_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Owner       *PostOwner `json:"owner,omitempty"`
	Media       *Media     `json:"media,omitempty"`
}

// CascadePosition places the post in a keyset scan ordered by key.
func (p *Post) CascadePosition(key cascade.SortKey) cascade.Position {
	switch key {
	case cascade.SortUpdatedAt:
		return cascade.Position{Time: p.UpdatedAt, ID: p.ID}
	case cascade.SortViewCount:
		return cascade.Position{Count: p.ViewCount, ID: p.ID}
	default:
		return cascade.Position{Time: p.CreatedAt, ID: p.ID}
	}
}

// HasMedia reports whether a media file is attached.
func (p *Post) HasMedia() bool {
	return p.MediaID != nil
}

// FeatherMediaKinds maps media feathers to the media kind they accept.
var FeatherMediaKinds = map[string]string{
	"photo": MediaKindImage,
	"audio": MediaKindAudio,
	"video": MediaKindVideo,
}

// ValidPostStatus reports whether s is a known status.
func ValidPostStatus(s string) bool {
	return s == PostStatusPublic || s == PostStatusPrivate || s == PostStatusDraft
}

// ValidContentType reports whether s is a known content type.
func ValidContentType(s string) bool {
	return s == ContentTypePost || s == ContentTypePage
}

// ValidClean reports whether s is a usable slug: lowercase letters, digits and hyphens.
func ValidClean(s string) bool {
	if s == "" {
		return false
	}
	return strings.Trim(s, "abcdefghijklmnopqrstuvwxyz0123456789-") == ""
}

// PostInput carries the fields of a new post.
type PostInput struct {
	ContentType string
	Feather     string
	Clean       string
	Status      string
	Pinned      bool
	Title       string
	Body        string
	ParentID    *int64
	MediaID     *int64
}

// PostPatch carries a partial post update; nil fields are left unchanged.
type PostPatch struct {
	ContentType *string
	Feather     *string
	Clean       *string
	Status      *string
	Pinned      *bool
	Title       *string
	Body        *string
	ParentID    *int64
	MediaID     *int64
}

// QuoteInput carries a quote post.
type QuoteInput struct {
	Clean       string
	Quote       string
	Attribution string
	Status      string
}

// LinkInput carries a link post.
type LinkInput struct {
	Clean       string
	Title       string
	URL         string
	Description string
	Status      string
}

// PostFilter narrows post listings. Zero values disable a filter.
type PostFilter struct {
	Status      string
	ContentType string
	UserID      int64
	TagID       int64
	CategoryID  int64
}

// PostRepository defines the interface for post storage
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	GetBySlug(ctx context.Context, clean string) (*Post, error)
	// List returns posts matching f, newest first.
	List(ctx context.Context, f PostFilter, p PaginationParams) ([]*Post, error)
	// ListKeyset returns posts matching f in q's ordering, strictly after q.After, at most q.Limit rows.
	ListKeyset(ctx context.Context, f PostFilter, q cascade.Query) ([]*Post, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id int64) error
	// Search returns public posts whose title, body, tag or category name contains term.
	Search(ctx context.Context, term string, limit int) ([]*Post, error)
}

// PostService defines the business logic for posts and pages.
type PostService interface {
	Create(ctx context.Context, actor *User, in PostInput) (*Post, error)
	CreateQuote(ctx context.Context, actor *User, in QuoteInput) (*Post, error)
	CreateLink(ctx context.Context, actor *User, in LinkInput) (*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	GetBySlug(ctx context.Context, clean string) (*Post, error)
	List(ctx context.Context, f PostFilter, p PaginationParams) ([]*Post, error)
	Update(ctx context.Context, actor *User, id int64, patch PostPatch) (*Post, error)
	Delete(ctx context.Context, actor *User, id int64) error
	Search(ctx context.Context, term string) ([]*Post, error)
}
