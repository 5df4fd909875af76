package services

import (
	"context"
	"testing"
	"time"

	"chyrp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var viewNow = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func newTestViewService() (*viewService, *fakeViewRepo, *fakePostRepo) {
	posts := newFakePostRepo()
	views := &fakeViewRepo{posts: posts, countSince: map[time.Time]int64{}}
	svc := NewViewService(views, posts, time.Hour, testTimeout).(*viewService)
	svc.now = func() time.Time { return viewNow }
	return svc, views, posts
}

func TestViewService_TrackDedupes(t *testing.T) {
	svc, views, posts := newTestViewService()
	ctx := context.Background()
	posts.add(&domain.Post{ID: 1, Clean: "a"})

	first, err := svc.Track(ctx, 1, domain.Viewer{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	again, err := svc.Track(ctx, 1, domain.Viewer{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = svc.Track(ctx, 1, domain.Viewer{UserID: 8, IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	assert.Len(t, views.views, 2)
	assert.Equal(t, int64(2), posts.byID[1].ViewCount)
	require.Len(t, views.sinceArgs, 3)
	assert.Equal(t, viewNow.Add(-time.Hour), views.sinceArgs[0])
}

func TestViewService_TrackRejects(t *testing.T) {
	svc, views, posts := newTestViewService()
	ctx := context.Background()
	posts.add(&domain.Post{ID: 1, Clean: "a"})

	_, err := svc.Track(ctx, 1, domain.Viewer{IPAddress: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Track(ctx, 2, domain.Viewer{IPAddress: "10.0.0.1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, views.sinceArgs)
}

func TestViewService_Stats(t *testing.T) {
	svc, views, posts := newTestViewService()
	posts.add(&domain.Post{ID: 1, Clean: "a", ViewCount: 40})
	today, week, month := windows(viewNow)
	views.countSince[today] = 3
	views.countSince[week] = 12
	views.countSince[month] = 30
	views.unique = 25

	stats, err := svc.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &domain.PostViewStats{
		TotalViews:     40,
		UniqueViews:    25,
		ViewsToday:     3,
		ViewsThisWeek:  12,
		ViewsThisMonth: 30,
	}, stats)

	_, err = svc.Stats(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWindows(t *testing.T) {
	today, week, month := windows(viewNow)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), today)
	assert.Equal(t, time.Date(2024, 6, 8, 14, 30, 0, 0, time.UTC), week)
	assert.Equal(t, time.Date(2024, 5, 16, 14, 30, 0, 0, time.UTC), month)
}

func TestViewService_PopularTimeframes(t *testing.T) {
	svc, views, _ := newTestViewService()
	views.popular = []*domain.Post{{ID: 3}, {ID: 1}}
	ctx := context.Background()
	today, week, month := windows(viewNow)

	tests := []struct {
		timeframe string
		want      *time.Time
	}{
		{timeframe: "", want: nil},
		{timeframe: "all", want: nil},
		{timeframe: "today", want: &today},
		{timeframe: "week", want: &week},
		{timeframe: "month", want: &month},
	}
	for _, tt := range tests {
		t.Run("timeframe "+tt.timeframe, func(t *testing.T) {
			views.popSince = nil
			got, err := svc.Popular(ctx, tt.timeframe, domain.PaginationParams{})
			require.NoError(t, err)
			assert.Len(t, got, 2)
			require.Len(t, views.popSince, 1)
			assert.Equal(t, tt.want, views.popSince[0])
		})
	}

	_, err := svc.Popular(ctx, "year", domain.PaginationParams{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestViewService_Overview(t *testing.T) {
	svc, views, _ := newTestViewService()
	today, week, month := windows(viewNow)
	views.countSince[today] = 5
	views.countSince[week] = 50
	views.countSince[month] = 500
	views.totalPosts, views.totalViews = 12, 900
	views.popular = []*domain.Post{{ID: 4, Title: "Hit", ViewCount: 300}, {ID: 2}}

	out, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), out.TotalPosts)
	assert.Equal(t, int64(900), out.TotalViews)
	assert.Equal(t, int64(5), out.ViewsToday)
	assert.Equal(t, int64(50), out.ViewsThisWeek)
	assert.Equal(t, int64(500), out.ViewsThisMonth)
	assert.Equal(t, &domain.PopularPostRef{ID: 4, Title: "Hit", ViewCount: 300}, out.MostPopularPost)
	assert.Nil(t, views.popSince[0])

	views.popular = nil
	out, err = svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Nil(t, out.MostPopularPost)
}
