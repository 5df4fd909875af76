package domain

import (
	"context"
	"time"
)

// Comment is a reader's reply on a post, optionally nested under another comment.
// swagger:model Comment
type Comment struct {
	ID         int64      `json:"id"`
	PostID     int64      `json:"post_id"`
	UserID     int64      `json:"user_id"`
	ParentID   *int64     `json:"parent_id,omitempty"`
	Content    string     `json:"content"`
	IsApproved bool       `json:"is_approved"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Author     *PostOwner `json:"author,omitempty"`
	Replies    []*Comment `json:"replies,omitempty"`
}

// CommentRepository defines the interface for comment storage
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	// ListApprovedByPost returns the approved comments of a post, oldest first.
	ListApprovedByPost(ctx context.Context, postID int64) ([]*Comment, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id int64) error
}

// CommentService defines the business logic for comments.
type CommentService interface {
	Create(ctx context.Context, actor *User, postID int64, parentID *int64, content string) (*Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*Comment, error)
	GetByID(ctx context.Context, id int64) (*Comment, error)
	Update(ctx context.Context, actor *User, id int64, content string) (*Comment, error)
	Delete(ctx context.Context, actor *User, id int64) error
	SetApproved(ctx context.Context, id int64, approved bool) (*Comment, error)
}
