package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chyrp/internal/domain"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	searchLimit      = 50
)

type postService struct {
	postRepo       domain.PostRepository
	mediaRepo      domain.MediaRepository
	contextTimeout time.Duration
}

// NewPostService creates a PostService backed by the given repositories.
func NewPostService(postRepo domain.PostRepository, mediaRepo domain.MediaRepository, timeout time.Duration) domain.PostService {
	return &postService{
		postRepo:       postRepo,
		mediaRepo:      mediaRepo,
		contextTimeout: timeout,
	}
}

func (s *postService) Create(ctx context.Context, actor *domain.User, in domain.PostInput) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.Can(domain.PermAddPost) {
		return nil, fmt.Errorf("%w: add_post permission required", domain.ErrForbidden)
	}
	if in.ContentType == "" {
		in.ContentType = domain.ContentTypePost
	}
	if in.Status == "" {
		in.Status = domain.PostStatusPublic
	}
	if err := validatePostFields(in.ContentType, in.Status, in.Clean); err != nil {
		return nil, err
	}
	if in.MediaID != nil {
		if err := s.checkMedia(ctx, actor, *in.MediaID, in.Feather); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	post := &domain.Post{
		ContentType: in.ContentType,
		Feather:     strings.TrimSpace(in.Feather),
		Clean:       in.Clean,
		Status:      in.Status,
		Pinned:      in.Pinned,
		Title:       strings.TrimSpace(in.Title),
		Body:        in.Body,
		ParentID:    in.ParentID,
		UserID:      actor.ID,
		MediaID:     in.MediaID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.insert(ctx, post)
}

func (s *postService) CreateQuote(ctx context.Context, actor *domain.User, in domain.QuoteInput) (*domain.Post, error) {
	quote := strings.TrimSpace(in.Quote)
	attribution := strings.TrimSpace(in.Attribution)
	if quote == "" || attribution == "" {
		return nil, fmt.Errorf("%w: quote and attribution are required", domain.ErrInvalidInput)
	}
	return s.Create(ctx, actor, domain.PostInput{
		ContentType: domain.ContentTypePost,
		Feather:     "quote",
		Clean:       in.Clean,
		Status:      in.Status,
		Body:        QuoteBody(quote, attribution),
	})
}

func (s *postService) CreateLink(ctx context.Context, actor *domain.User, in domain.LinkInput) (*domain.Post, error) {
	title := strings.TrimSpace(in.Title)
	url := strings.TrimSpace(in.URL)
	if title == "" || url == "" {
		return nil, fmt.Errorf("%w: title and url are required", domain.ErrInvalidInput)
	}
	return s.Create(ctx, actor, domain.PostInput{
		ContentType: domain.ContentTypePost,
		Feather:     "link",
		Clean:       in.Clean,
		Status:      in.Status,
		Title:       title,
		Body:        LinkBody(title, url, strings.TrimSpace(in.Description)),
	})
}

// QuoteBody renders the body of a quote post.
func QuoteBody(quote, attribution string) string {
	return fmt.Sprintf("\"%s\"\n\n— %s", quote, attribution)
}

// LinkBody renders the body of a link post. URLs without a scheme get https://.
func LinkBody(title, url, description string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	body := fmt.Sprintf("**%s**\n\n[%s](%s)", title, url, url)
	if description != "" {
		body += "\n\n" + description
	}
	return body
}

func (s *postService) insert(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: a post with slug %q already exists", domain.ErrConflict, post.Clean)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("reload post: %w", err)
	}
	return created, nil
}

func (s *postService) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

func (s *postService) GetBySlug(ctx context.Context, clean string) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	post, err := s.postRepo.GetBySlug(ctx, clean)
	if err != nil {
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, f domain.PostFilter, p domain.PaginationParams) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if f.ContentType != "" && !domain.ValidContentType(f.ContentType) {
		return nil, fmt.Errorf("%w: unknown content_type %q", domain.ErrInvalidInput, f.ContentType)
	}
	posts, err := s.postRepo.List(ctx, f, p.Clamp(defaultListLimit, maxListLimit))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Update(ctx context.Context, actor *domain.User, id int64, patch domain.PostPatch) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	post, err := loadOwnedPost(ctx, s.postRepo, actor, id, domain.PermEditPost, domain.PermEditOwnPost)
	if err != nil {
		return nil, err
	}
	if post.HasMedia() {
		return nil, fmt.Errorf("%w: posts with media cannot be edited, only deleted", domain.ErrForbidden)
	}

	if patch.MediaID != nil && *patch.MediaID != 0 {
		feather := post.Feather
		if patch.Feather != nil && *patch.Feather != "" {
			feather = *patch.Feather
		}
		if err := s.checkMedia(ctx, actor, *patch.MediaID, feather); err != nil {
			return nil, err
		}
	}

	applyPostPatch(post, patch)
	if err := validatePostFields(post.ContentType, post.Status, post.Clean); err != nil {
		return nil, err
	}
	post.UpdatedAt = time.Now().UTC()

	if err := s.postRepo.Update(ctx, post); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: a post with slug %q already exists", domain.ErrConflict, post.Clean)
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	updated, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload post: %w", err)
	}
	return updated, nil
}

func applyPostPatch(post *domain.Post, patch domain.PostPatch) {
	if patch.ContentType != nil {
		post.ContentType = *patch.ContentType
	}
	if patch.Feather != nil {
		post.Feather = strings.TrimSpace(*patch.Feather)
	}
	if patch.Clean != nil {
		post.Clean = *patch.Clean
	}
	if patch.Status != nil {
		post.Status = *patch.Status
	}
	if patch.Pinned != nil {
		post.Pinned = *patch.Pinned
	}
	if patch.Title != nil {
		post.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Body != nil {
		post.Body = *patch.Body
	}
	if patch.ParentID != nil {
		post.ParentID = patch.ParentID
	}
	if patch.MediaID != nil {
		if *patch.MediaID == 0 {
			post.MediaID = nil
		} else {
			post.MediaID = patch.MediaID
		}
	}
}

func (s *postService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := loadOwnedPost(ctx, s.postRepo, actor, id, domain.PermDeletePost, domain.PermDeleteOwnPost); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *postService) Search(ctx context.Context, term string) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	term = strings.TrimSpace(term)
	if term == "" {
		return []*domain.Post{}, nil
	}
	posts, err := s.postRepo.Search(ctx, term, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}

// checkMedia verifies that mediaID exists, that actor may attach it, and that its kind
// suits feather when feather names a media kind.
func (s *postService) checkMedia(ctx context.Context, actor *domain.User, mediaID int64, feather string) error {
	media, err := s.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("get media: %w", err)
	}
	if media.UserID != actor.ID && !actor.Can(domain.PermEditPost) {
		return fmt.Errorf("%w: you can only attach media you uploaded", domain.ErrForbidden)
	}
	if feather == "" {
		return nil
	}
	want, ok := domain.FeatherMediaKinds[feather]
	if ok && media.Kind() != want {
		return fmt.Errorf("%w: %s posts need %s media, got %s", domain.ErrInvalidInput, feather, want, media.ContentType)
	}
	return nil
}

func validatePostFields(contentType, status, clean string) error {
	if !domain.ValidContentType(contentType) {
		return fmt.Errorf("%w: content_type must be post or page", domain.ErrInvalidInput)
	}
	if !domain.ValidPostStatus(status) {
		return fmt.Errorf("%w: status must be public, private or draft", domain.ErrInvalidInput)
	}
	if !domain.ValidClean(clean) {
		return fmt.Errorf("%w: slug can only contain lowercase letters, numbers, and hyphens", domain.ErrInvalidInput)
	}
	return nil
}

// loadOwnedPost fetches the post and checks that actor holds all, or own while owning it.
func loadOwnedPost(ctx context.Context, repo domain.PostRepository, actor *domain.User, id int64, all, own domain.Permission) (*domain.Post, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	post, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if !actor.CanModify(post.UserID, all, own) {
		return nil, fmt.Errorf("%w: not enough permissions", domain.ErrForbidden)
	}
	return post, nil
}
