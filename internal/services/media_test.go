package services

import (
	"context"
	"testing"

	"chyrp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMedia(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantKind    string
		wantErr     bool
	}{
		{name: "png", contentType: "image/png", size: 1024, wantKind: domain.MediaKindImage},
		{name: "upper case", contentType: "IMAGE/JPEG", size: 1024, wantKind: domain.MediaKindImage},
		{name: "mp3 at limit", contentType: "audio/mpeg", size: 50 * 1024 * 1024, wantKind: domain.MediaKindAudio},
		{name: "quicktime", contentType: "video/quicktime", size: 1, wantKind: domain.MediaKindVideo},
		{name: "image too large", contentType: "image/gif", size: 10*1024*1024 + 1, wantErr: true},
		{name: "empty", contentType: "image/png", size: 0, wantErr: true},
		{name: "pdf", contentType: "application/pdf", size: 10, wantErr: true},
		{name: "svg", contentType: "image/svg+xml", size: 10, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := ValidateMedia(tt.contentType, tt.size)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestMediaService_Register(t *testing.T) {
	repo := newFakeMediaRepo()
	svc := NewMediaService(repo, testLogger, testTimeout)
	ctx := context.Background()

	m, err := svc.Register(ctx, memberUser(7), domain.MediaInput{
		Filename:    "uploads/2024/06/cat.png",
		ContentType: " Image/PNG ",
		FileSize:    2048,
		FileURL:     "https://cdn.example.com/cat.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "cat.png", m.OriginalName)
	assert.Equal(t, "image/png", m.ContentType)
	assert.Equal(t, int64(7), m.UserID)
	assert.Equal(t, domain.MediaKindImage, m.Kind())

	_, err = svc.Register(ctx, memberUser(7), domain.MediaInput{Filename: "x.png", ContentType: "image/png", FileSize: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Register(ctx, nil, domain.MediaInput{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	mine, err := svc.ListMine(ctx, memberUser(7), domain.PaginationParams{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestMediaService_Delete(t *testing.T) {
	repo := newFakeMediaRepo()
	svc := NewMediaService(repo, testLogger, testTimeout)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.Media{UserID: 7, ContentType: "image/png"}))
	require.NoError(t, repo.Create(ctx, &domain.Media{UserID: 7, ContentType: "image/png"}))
	repo.refs[2] = 1

	assert.ErrorIs(t, svc.Delete(ctx, memberUser(8), 1), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, memberUser(7), 2), domain.ErrConflict)
	assert.ErrorIs(t, svc.Delete(ctx, memberUser(7), 3), domain.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, memberUser(7), 1))

	_, err := svc.GetInfo(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMediaService_CleanupOrphans(t *testing.T) {
	repo := newFakeMediaRepo()
	svc := NewMediaService(repo, testLogger, testTimeout)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Media{UserID: 7}))
	}
	repo.refs[3] = 2

	n, err := svc.CleanupOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, repo.byID, 1)
	assert.Contains(t, repo.byID, int64(3))
}
