package services

import (
	"context"
	"fmt"
	"time"

	"chyrp/internal/domain"
)

type interactionService struct {
	interactionRepo domain.InteractionRepository
	postRepo        domain.PostRepository
	userRepo        domain.UserRepository
	contextTimeout  time.Duration
}

// NewInteractionService creates an InteractionService.
func NewInteractionService(interactionRepo domain.InteractionRepository, postRepo domain.PostRepository, userRepo domain.UserRepository, timeout time.Duration) domain.InteractionService {
	return &interactionService{
		interactionRepo: interactionRepo,
		postRepo:        postRepo,
		userRepo:        userRepo,
		contextTimeout:  timeout,
	}
}

func (s *interactionService) ToggleLike(ctx context.Context, actor *domain.User, postID int64) (*domain.LikeState, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.Can(domain.PermLikePost) {
		return nil, fmt.Errorf("%w: like_post permission required", domain.ErrForbidden)
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	liked, err := s.interactionRepo.ToggleLike(ctx, actor.ID, postID)
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	n, err := s.interactionRepo.CountLikes(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	return &domain.LikeState{Liked: liked, LikeCount: n}, nil
}

func (s *interactionService) ToggleBookmark(ctx context.Context, actor *domain.User, postID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return domain.ErrUnauthorized
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return fmt.Errorf("get post: %w", err)
	}
	if _, err := s.interactionRepo.ToggleBookmark(ctx, actor.ID, postID); err != nil {
		return fmt.Errorf("toggle bookmark: %w", err)
	}
	return nil
}

func (s *interactionService) ToggleFavorite(ctx context.Context, actor *domain.User, writerID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return domain.ErrUnauthorized
	}
	if _, err := s.userRepo.GetByID(ctx, writerID); err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if writerID == actor.ID {
		return fmt.Errorf("%w: you cannot favorite yourself", domain.ErrInvalidInput)
	}
	if _, err := s.interactionRepo.ToggleFavorite(ctx, actor.ID, writerID); err != nil {
		return fmt.Errorf("toggle favorite: %w", err)
	}
	return nil
}
