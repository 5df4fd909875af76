package domain

import "context"

// LikeState is the result of toggling a like.
type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// InteractionRepository stores likes, bookmarks and favorite writers. Each Toggle
// reports whether the relation exists afterwards.
type InteractionRepository interface {
	ToggleLike(ctx context.Context, userID, postID int64) (bool, error)
	CountLikes(ctx context.Context, postID int64) (int64, error)
	ToggleBookmark(ctx context.Context, userID, postID int64) (bool, error)
	ToggleFavorite(ctx context.Context, userID, writerID int64) (bool, error)
}

// InteractionService defines the business logic for reader interactions.
type InteractionService interface {
	ToggleLike(ctx context.Context, actor *User, postID int64) (*LikeState, error)
	ToggleBookmark(ctx context.Context, actor *User, postID int64) error
	ToggleFavorite(ctx context.Context, actor *User, writerID int64) error
}
