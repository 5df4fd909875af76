package domain

import (
	"context"
	"time"
)

// PostView is one recorded read of a post.
// swagger:model PostView
type PostView struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    *int64    `json:"user_id,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// Viewer identifies who read a post: a user when signed in, otherwise the client IP.
type Viewer struct {
	UserID    int64
	IPAddress string
	UserAgent string
}

// PostViewStats summarizes the views of one post.
type PostViewStats struct {
	TotalViews     int64 `json:"total_views"`
	UniqueViews    int64 `json:"unique_views"`
	ViewsToday     int64 `json:"views_today"`
	ViewsThisWeek  int64 `json:"views_this_week"`
	ViewsThisMonth int64 `json:"views_this_month"`
}

// PopularPostRef is the headline post of the analytics overview.
type PopularPostRef struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	ViewCount int64  `json:"view_count"`
}

// AnalyticsOverview summarizes views across the site.
type AnalyticsOverview struct {
	TotalPosts      int64           `json:"total_posts"`
	TotalViews      int64           `json:"total_views"`
	ViewsToday      int64           `json:"views_today"`
	ViewsThisWeek   int64           `json:"views_this_week"`
	ViewsThisMonth  int64           `json:"views_this_month"`
	MostPopularPost *PopularPostRef `json:"most_popular_post"`
}

// Timeframe windows for popularity queries.
const (
	TimeframeToday = "today"
	TimeframeWeek  = "week"
	TimeframeMonth = "month"
	TimeframeAll   = "all"
)

// ViewRepository defines the interface for view tracking storage
type ViewRepository interface {
	// RecordIfNew stores a view and bumps the post's view_count unless the viewer already
	// has a view newer than since. It returns the latest view of the post.
	RecordIfNew(ctx context.Context, postID int64, v Viewer, since time.Time) (*PostView, error)
	ListByPost(ctx context.Context, postID int64, p PaginationParams) ([]*PostView, error)
	CountSince(ctx context.Context, postID int64, since time.Time) (int64, error)
	CountUnique(ctx context.Context, postID int64) (int64, error)
	// CountAllSince counts views of any post recorded after since.
	CountAllSince(ctx context.Context, since time.Time) (int64, error)
	// Popular returns public posts by view_count; a non-nil since restricts to posts viewed after it.
	Popular(ctx context.Context, since *time.Time, p PaginationParams) ([]*Post, error)
	Totals(ctx context.Context) (posts, views int64, err error)
}

// ViewService defines the business logic for views and analytics.
type ViewService interface {
	// Track counts v's view of the post unless it is a repeat within the dedupe window.
	// It returns the post's most recent view by any viewer, not necessarily v's.
	Track(ctx context.Context, postID int64, v Viewer) (*PostView, error)
	List(ctx context.Context, postID int64, p PaginationParams) ([]*PostView, error)
	Stats(ctx context.Context, postID int64) (*PostViewStats, error)
	Popular(ctx context.Context, timeframe string, p PaginationParams) ([]*Post, error)
	Overview(ctx context.Context) (*AnalyticsOverview, error)
}
