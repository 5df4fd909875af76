package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"chyrp/internal/domain"
)

type mediaService struct {
	mediaRepo      domain.MediaRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewMediaService creates a MediaService.
func NewMediaService(mediaRepo domain.MediaRepository, logger *slog.Logger, timeout time.Duration) domain.MediaService {
	return &mediaService{
		mediaRepo:      mediaRepo,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// ValidateMedia checks the MIME type against the allow-lists and the size against the
// limit of its kind. It returns the kind.
func ValidateMedia(contentType string, size int64) (string, error) {
	kind := domain.MediaKind(contentType)
	if kind == "" {
		return "", fmt.Errorf("%w: file type %q not allowed", domain.ErrInvalidInput, contentType)
	}
	if size <= 0 {
		return "", fmt.Errorf("%w: file is empty", domain.ErrInvalidInput)
	}
	if max := domain.MaxMediaSize[kind]; size > max {
		return "", fmt.Errorf("%w: %s files are limited to %d MB", domain.ErrInvalidInput, kind, max/(1024*1024))
	}
	return kind, nil
}

func (s *mediaService) Register(ctx context.Context, actor *domain.User, in domain.MediaInput) (*domain.Media, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if _, err := ValidateMedia(contentType, in.FileSize); err != nil {
		return nil, err
	}
	filename := strings.TrimSpace(in.Filename)
	if filename == "" || strings.TrimSpace(in.FileURL) == "" {
		return nil, fmt.Errorf("%w: filename and file_url are required", domain.ErrInvalidInput)
	}
	original := strings.TrimSpace(in.OriginalName)
	if original == "" {
		original = path.Base(filename)
	}
	m := &domain.Media{
		Filename:     filename,
		OriginalName: original,
		ContentType:  contentType,
		FileSize:     in.FileSize,
		FileURL:      strings.TrimSpace(in.FileURL),
		UploadedAt:   time.Now().UTC(),
		UserID:       actor.ID,
		Owner:        &domain.PostOwner{ID: actor.ID, Login: actor.Login, FullName: actor.FullName},
	}
	if err := s.mediaRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return m, nil
}

func (s *mediaService) GetInfo(ctx context.Context, id int64) (*domain.Media, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	m, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return m, nil
}

func (s *mediaService) ListMine(ctx context.Context, actor *domain.User, p domain.PaginationParams) ([]*domain.Media, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	media, err := s.mediaRepo.ListByUser(ctx, actor.ID, p.Clamp(defaultListLimit, maxListLimit))
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return media, nil
}

func (s *mediaService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return domain.ErrUnauthorized
	}
	m, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get media: %w", err)
	}
	if m.UserID != actor.ID && !actor.Can(domain.PermDeletePost) {
		return fmt.Errorf("%w: you can only delete media you uploaded", domain.ErrForbidden)
	}
	refs, err := s.mediaRepo.CountReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("count media references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: media is used by %d post(s)", domain.ErrConflict, refs)
	}
	if err := s.mediaRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}

func (s *mediaService) CleanupOrphans(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.mediaRepo.DeleteOrphans(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete orphaned media: %w", err)
	}
	s.logger.InfoContext(ctx, "orphaned media cleaned up", "deleted", n)
	return n, nil
}
