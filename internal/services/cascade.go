package services

import (
	"context"
	"fmt"
	"time"

	"chyrp/internal/cascade"
	"chyrp/internal/domain"
)

type cascadeService struct {
	postRepo       domain.PostRepository
	tagRepo        domain.TagRepository
	categoryRepo   domain.CategoryRepository
	userRepo       domain.UserRepository
	limits         cascade.Limits
	contextTimeout time.Duration
}

// NewCascadeService creates a CascadeService that pages public posts with the given limits.
func NewCascadeService(postRepo domain.PostRepository,
	tagRepo domain.TagRepository,
	categoryRepo domain.CategoryRepository,
	userRepo domain.UserRepository,
	limits cascade.Limits,
	timeout time.Duration,
) domain.CascadeService {
	return &cascadeService{
		postRepo:       postRepo,
		tagRepo:        tagRepo,
		categoryRepo:   categoryRepo,
		userRepo:       userRepo,
		limits:         limits,
		contextTimeout: timeout,
	}
}

// source binds f to the post repository as a cascade source.
func (s *cascadeService) source(f domain.PostFilter) cascade.Source[*domain.Post] {
	f.Status = domain.PostStatusPublic
	return cascade.SourceFunc[*domain.Post](func(ctx context.Context, q cascade.Query) ([]*domain.Post, error) {
		return s.postRepo.ListKeyset(ctx, f, q)
	})
}

func (s *cascadeService) page(ctx context.Context, f domain.PostFilter, req cascade.Request) (*domain.PostPage, error) {
	page, err := cascade.Paginate(ctx, s.source(f), req, s.limits)
	if err != nil {
		return nil, fmt.Errorf("cascade posts: %w", err)
	}
	return page, nil
}

func (s *cascadeService) Posts(ctx context.Context, req cascade.Request, contentType string, userID int64) (*domain.PostPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if contentType != "" && !domain.ValidContentType(contentType) {
		return nil, fmt.Errorf("%w: unknown content_type %q", cascade.ErrInvalidParameter, contentType)
	}
	return s.page(ctx, domain.PostFilter{ContentType: contentType, UserID: userID}, req)
}

func (s *cascadeService) ByTag(ctx context.Context, tagID int64, req cascade.Request) (*domain.Tag, *domain.PostPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tag, err := s.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		return nil, nil, fmt.Errorf("get tag: %w", err)
	}
	page, err := s.page(ctx, domain.PostFilter{TagID: tagID}, req)
	if err != nil {
		return nil, nil, err
	}
	return tag, page, nil
}

func (s *cascadeService) ByCategory(ctx context.Context, categoryID int64, req cascade.Request) (*domain.Category, *domain.PostPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("get category: %w", err)
	}
	page, err := s.page(ctx, domain.PostFilter{CategoryID: categoryID}, req)
	if err != nil {
		return nil, nil, err
	}
	return category, page, nil
}

func (s *cascadeService) ByUser(ctx context.Context, userID int64, req cascade.Request) (*domain.User, *domain.PostPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	page, err := s.page(ctx, domain.PostFilter{UserID: userID}, req)
	if err != nil {
		return nil, nil, err
	}
	return user, page, nil
}
