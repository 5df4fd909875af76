package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chyrp/internal/domain"
)

type viewService struct {
	viewRepo       domain.ViewRepository
	postRepo       domain.PostRepository
	dedupeWindow   time.Duration
	now            func() time.Time
	contextTimeout time.Duration
}

// NewViewService creates a ViewService that counts a viewer at most once per dedupeWindow.
func NewViewService(viewRepo domain.ViewRepository, postRepo domain.PostRepository, dedupeWindow, timeout time.Duration) domain.ViewService {
	return &viewService{
		viewRepo:       viewRepo,
		postRepo:       postRepo,
		dedupeWindow:   dedupeWindow,
		now:            func() time.Time { return time.Now().UTC() },
		contextTimeout: timeout,
	}
}

func (s *viewService) Track(ctx context.Context, postID int64, v domain.Viewer) (*domain.PostView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if v.UserID == 0 && strings.TrimSpace(v.IPAddress) == "" {
		return nil, fmt.Errorf("%w: viewer has neither user nor address", domain.ErrInvalidInput)
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	view, err := s.viewRepo.RecordIfNew(ctx, postID, v, s.now().Add(-s.dedupeWindow))
	if err != nil {
		return nil, fmt.Errorf("record view: %w", err)
	}
	return view, nil
}

func (s *viewService) List(ctx context.Context, postID int64, p domain.PaginationParams) ([]*domain.PostView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	views, err := s.viewRepo.ListByPost(ctx, postID, p.Clamp(50, maxListLimit))
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	return views, nil
}

// windows returns the start of today, a week ago and a month ago relative to now.
func windows(now time.Time) (today, week, month time.Time) {
	today = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today, now.AddDate(0, 0, -7), now.AddDate(0, 0, -30)
}

func (s *viewService) Stats(ctx context.Context, postID int64) (*domain.PostViewStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	stats := &domain.PostViewStats{TotalViews: post.ViewCount}
	if stats.UniqueViews, err = s.viewRepo.CountUnique(ctx, postID); err != nil {
		return nil, fmt.Errorf("count unique views: %w", err)
	}
	today, week, month := windows(s.now())
	for _, w := range []struct {
		since time.Time
		dst   *int64
	}{
		{today, &stats.ViewsToday},
		{week, &stats.ViewsThisWeek},
		{month, &stats.ViewsThisMonth},
	} {
		if *w.dst, err = s.viewRepo.CountSince(ctx, postID, w.since); err != nil {
			return nil, fmt.Errorf("count views: %w", err)
		}
	}
	return stats, nil
}

// timeframeStart maps a timeframe to the earliest view that counts; nil means all time.
func timeframeStart(timeframe string, now time.Time) (*time.Time, error) {
	today, week, month := windows(now)
	switch timeframe {
	case "", domain.TimeframeAll:
		return nil, nil
	case domain.TimeframeToday:
		return &today, nil
	case domain.TimeframeWeek:
		return &week, nil
	case domain.TimeframeMonth:
		return &month, nil
	}
	return nil, fmt.Errorf("%w: timeframe must be today, week, month or all", domain.ErrInvalidInput)
}

func (s *viewService) Popular(ctx context.Context, timeframe string, p domain.PaginationParams) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	since, err := timeframeStart(timeframe, s.now())
	if err != nil {
		return nil, err
	}
	posts, err := s.viewRepo.Popular(ctx, since, p.Clamp(defaultListLimit, maxListLimit))
	if err != nil {
		return nil, fmt.Errorf("popular posts: %w", err)
	}
	return posts, nil
}

func (s *viewService) Overview(ctx context.Context) (*domain.AnalyticsOverview, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		out domain.AnalyticsOverview
		err error
	)
	if out.TotalPosts, out.TotalViews, err = s.viewRepo.Totals(ctx); err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	today, week, month := windows(s.now())
	if out.ViewsToday, err = s.viewRepo.CountAllSince(ctx, today); err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}
	if out.ViewsThisWeek, err = s.viewRepo.CountAllSince(ctx, week); err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}
	if out.ViewsThisMonth, err = s.viewRepo.CountAllSince(ctx, month); err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}
	top, err := s.viewRepo.Popular(ctx, nil, domain.PaginationParams{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("most popular post: %w", err)
	}
	if len(top) > 0 {
		out.MostPopularPost = &domain.PopularPostRef{ID: top[0].ID, Title: top[0].Title, ViewCount: top[0].ViewCount}
	}
	return &out, nil
}
