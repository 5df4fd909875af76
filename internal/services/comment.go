package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"chyrp/internal/domain"
)

const excerptRunes = 200

type commentService struct {
	commentRepo    domain.CommentRepository
	postRepo       domain.PostRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewCommentService creates a CommentService. emailService may be nil to disable notifications.
func NewCommentService(commentRepo domain.CommentRepository,
	postRepo domain.PostRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.CommentService {
	return &commentService{
		commentRepo:    commentRepo,
		postRepo:       postRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *commentService) Create(ctx context.Context, actor *domain.User, postID int64, parentID *int64, content string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", domain.ErrInvalidInput)
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if parentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("get parent comment: %w", err)
		}
		if parent.PostID != postID {
			return nil, fmt.Errorf("parent comment: %w", domain.ErrNotFound)
		}
	}

	now := time.Now().UTC()
	c := &domain.Comment{
		PostID:     postID,
		UserID:     actor.ID,
		ParentID:   parentID,
		Content:    content,
		IsApproved: true,
		CreatedAt:  now,
		UpdatedAt:  now,
		Author:     &domain.PostOwner{ID: actor.ID, Login: actor.Login, FullName: actor.FullName},
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if post.UserID != actor.ID {
		s.notifyAuthor(ctx, post, actor, c)
	}
	return c, nil
}

// notifyAuthor emails the post's author about a new comment. Failures are only logged.
func (s *commentService) notifyAuthor(ctx context.Context, post *domain.Post, commenter *domain.User, c *domain.Comment) {
	if s.emailService == nil {
		return
	}
	author, err := s.userRepo.GetByID(ctx, post.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "comment notification skipped", "post_id", post.ID, "error", err)
		return
	}
	data := &domain.CommentNotificationEmailData{
		Email:         author.Email,
		AuthorName:    displayName(author),
		CommenterName: displayName(commenter),
		PostTitle:     post.Title,
		PostSlug:      post.Clean,
		Excerpt:       excerpt(c.Content, excerptRunes),
	}
	if err := s.emailService.SendCommentNotification(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "comment notification failed", "post_id", post.ID, "comment_id", c.ID, "error", err)
	}
}

func displayName(u *domain.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Login
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}

func (s *commentService) ListByPost(ctx context.Context, postID int64) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	all, err := s.commentRepo.ListApprovedByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return NestComments(all), nil
}

// NestComments attaches replies to their parents and returns the top-level comments in
// input order. Replies whose parent is absent from comments are dropped.
func NestComments(comments []*domain.Comment) []*domain.Comment {
	byID := make(map[int64]*domain.Comment, len(comments))
	for _, c := range comments {
		c.Replies = nil
		byID[c.ID] = c
	}
	top := make([]*domain.Comment, 0)
	for _, c := range comments {
		if c.ParentID == nil {
			top = append(top, c)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		}
	}
	return top
}

func (s *commentService) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (s *commentService) Update(ctx context.Context, actor *domain.User, id int64, content string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", domain.ErrInvalidInput)
	}
	c, err := s.ownedComment(ctx, actor, id, domain.PermEditPost)
	if err != nil {
		return nil, err
	}
	c.Content = content
	c.UpdatedAt = time.Now().UTC()
	if err := s.commentRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedComment(ctx, actor, id, domain.PermDeletePost); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// ownedComment loads the comment when actor wrote it or holds moderator.
func (s *commentService) ownedComment(ctx context.Context, actor *domain.User, id int64, moderator domain.Permission) (*domain.Comment, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	c, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if c.UserID != actor.ID && !actor.Can(moderator) {
		return nil, fmt.Errorf("%w: you can only change your own comments", domain.ErrForbidden)
	}
	return c, nil
}

func (s *commentService) SetApproved(ctx context.Context, id int64, approved bool) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	c.IsApproved = approved
	c.UpdatedAt = time.Now().UTC()
	if err := s.commentRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}
