package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"chyrp/internal/domain"
)

type tagService struct {
	tagRepo        domain.TagRepository
	postRepo       domain.PostRepository
	cache          domain.Cache
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewTagService creates a TagService. cache may be nil.
func NewTagService(tagRepo domain.TagRepository, postRepo domain.PostRepository, cache domain.Cache, logger *slog.Logger, timeout time.Duration) domain.TagService {
	return &tagService{
		tagRepo:        tagRepo,
		postRepo:       postRepo,
		cache:          cache,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// uniqueSlug slugifies name and appends -1, -2, ... until exists reports a free slug.
func uniqueSlug(ctx context.Context, name string, exists func(context.Context, string) (bool, error)) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", fmt.Errorf("%w: name must contain letters or digits", domain.ErrInvalidInput)
	}
	candidate := base
	for i := 1; ; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *tagService) Create(ctx context.Context, in domain.TagInput) (*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tag, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, popularTagsKey)
	return tag, nil
}

func (s *tagService) create(ctx context.Context, in domain.TagInput) (*domain.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", domain.ErrInvalidInput)
	}
	if _, err := s.tagRepo.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: tag %q already exists", domain.ErrConflict, name)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check tag name: %w", err)
	}
	sl, err := uniqueSlug(ctx, name, s.tagRepo.SlugExists)
	if err != nil {
		return nil, err
	}
	tag := &domain.Tag{
		Name:        name,
		Slug:        sl,
		Description: strings.TrimSpace(in.Description),
		Color:       strings.TrimSpace(in.Color),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

func (s *tagService) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

func (s *tagService) GetBySlug(ctx context.Context, sl string) (*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tag, err := s.tagRepo.GetBySlug(ctx, sl)
	if err != nil {
		return nil, fmt.Errorf("get tag by slug: %w", err)
	}
	return tag, nil
}

func (s *tagService) List(ctx context.Context, search string, p domain.PaginationParams) ([]*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tags, err := s.tagRepo.List(ctx, strings.TrimSpace(search), p.Clamp(defaultListLimit, maxListLimit))
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (s *tagService) Popular(ctx context.Context, limit int) ([]*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tags, err := readThrough(ctx, s.cache, s.logger, popularTagsKey, popularTTL, func() ([]*domain.Tag, error) {
		return s.tagRepo.Popular(ctx, popularCacheSize)
	})
	if err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}
	return headOf(tags, limit), nil
}

// headOf returns at most n leading items of items; n <= 0 means 10.
func headOf[T any](items []T, n int) []T {
	if n <= 0 {
		n = 10
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

func (s *tagService) Update(ctx context.Context, id int64, patch domain.TagPatch) (*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tag name is required", domain.ErrInvalidInput)
		}
		if !strings.EqualFold(name, tag.Name) {
			if other, err := s.tagRepo.GetByName(ctx, name); err == nil && other.ID != id {
				return nil, fmt.Errorf("%w: tag %q already exists", domain.ErrConflict, name)
			} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("check tag name: %w", err)
			}
			sl, err := uniqueSlug(ctx, name, s.tagRepo.SlugExists)
			if err != nil {
				return nil, err
			}
			tag.Slug = sl
		}
		tag.Name = name
	}
	if patch.Description != nil {
		tag.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Color != nil {
		tag.Color = strings.TrimSpace(*patch.Color)
	}
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, fmt.Errorf("update tag: %w", err)
	}
	invalidate(ctx, s.cache, s.logger, popularTagsKey)
	return tag, nil
}

func (s *tagService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.tagRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	invalidate(ctx, s.cache, s.logger, popularTagsKey)
	return nil
}

func (s *tagService) GetOrCreate(ctx context.Context, names []string) ([]*domain.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tags := make([]*domain.Tag, 0, len(names))
	created := false
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tag, err := s.tagRepo.GetByName(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			tag, err = s.create(ctx, domain.TagInput{Name: name})
			created = true
		}
		if err != nil {
			return nil, fmt.Errorf("get or create tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	if created {
		invalidate(ctx, s.cache, s.logger, popularTagsKey)
	}
	return tags, nil
}

func (s *tagService) AttachToPost(ctx context.Context, actor *domain.User, postID, tagID int64) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	post, err := loadOwnedPost(ctx, s.postRepo, actor, postID, domain.PermEditPost, domain.PermEditOwnPost)
	if err != nil {
		return nil, err
	}
	if _, err := s.tagRepo.GetByID(ctx, tagID); err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	if err := s.tagRepo.AttachToPost(ctx, postID, tagID); err != nil {
		return nil, fmt.Errorf("attach tag: %w", err)
	}
	invalidate(ctx, s.cache, s.logger, popularTagsKey)
	return post, nil
}

func (s *tagService) DetachFromPost(ctx context.Context, actor *domain.User, postID, tagID int64) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	post, err := loadOwnedPost(ctx, s.postRepo, actor, postID, domain.PermEditPost, domain.PermEditOwnPost)
	if err != nil {
		return nil, err
	}
	if _, err := s.tagRepo.GetByID(ctx, tagID); err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	if err := s.tagRepo.DetachFromPost(ctx, postID, tagID); err != nil {
		return nil, fmt.Errorf("detach tag: %w", err)
	}
	invalidate(ctx, s.cache, s.logger, popularTagsKey)
	return post, nil
}
