package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chyrp/internal/domain"
)

type categoryService struct {
	categoryRepo   domain.CategoryRepository
	postRepo       domain.PostRepository
	cache          domain.Cache
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewCategoryService creates a CategoryService. cache may be nil.
func NewCategoryService(categoryRepo domain.CategoryRepository, postRepo domain.PostRepository, cache domain.Cache, logger *slog.Logger, timeout time.Duration) domain.CategoryService {
	return &categoryService{
		categoryRepo:   categoryRepo,
		postRepo:       postRepo,
		cache:          cache,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *categoryService) invalidate(ctx context.Context) {
	invalidate(ctx, s.cache, s.logger, categoryTreeKey, popularCategoriesKey)
}

func (s *categoryService) Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
	}
	if _, err := s.categoryRepo.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: category %q already exists", domain.ErrConflict, name)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if in.ParentID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *in.ParentID); err != nil {
			return nil, fmt.Errorf("get parent category: %w", err)
		}
	}
	sl, err := uniqueSlug(ctx, name, s.categoryRepo.SlugExists)
	if err != nil {
		return nil, err
	}
	c := &domain.Category{
		Name:        name,
		Slug:        sl,
		Description: strings.TrimSpace(in.Description),
		Color:       strings.TrimSpace(in.Color),
		ParentID:    in.ParentID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, sl string) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.categoryRepo.GetBySlug(ctx, sl)
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return c, nil
}

func (s *categoryService) List(ctx context.Context, f domain.CategoryFilter, p domain.PaginationParams) ([]*domain.Category, error) {
	if f.ParentID != nil && *f.ParentID < 0 {
		return nil, fmt.Errorf("%w: parent_id must not be negative", domain.ErrInvalidInput)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	f.Search = strings.TrimSpace(f.Search)
	cats, err := s.categoryRepo.List(ctx, f, p.Clamp(defaultListLimit, maxListLimit))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *categoryService) Tree(ctx context.Context) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tree, err := readThrough(ctx, s.cache, s.logger, categoryTreeKey, treeTTL, func() ([]*domain.Category, error) {
		all, err := s.categoryRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return BuildCategoryTree(all), nil
	})
	if err != nil {
		return nil, fmt.Errorf("category tree: %w", err)
	}
	return tree, nil
}

// BuildCategoryTree links cats into a forest by ParentID and returns the roots in input
// order. A category whose parent is missing is treated as a root.
func BuildCategoryTree(cats []*domain.Category) []*domain.Category {
	byID := make(map[int64]*domain.Category, len(cats))
	for _, c := range cats {
		c.Children = nil
		byID[c.ID] = c
	}
	roots := make([]*domain.Category, 0)
	for _, c := range cats {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok && parent != c {
				parent.Children = append(parent.Children, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots
}

func (s *categoryService) Popular(ctx context.Context, limit int) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	cats, err := readThrough(ctx, s.cache, s.logger, popularCategoriesKey, popularTTL, func() ([]*domain.Category, error) {
		return s.categoryRepo.Popular(ctx, popularCacheSize)
	})
	if err != nil {
		return nil, fmt.Errorf("popular categories: %w", err)
	}
	return headOf(cats, limit), nil
}

func (s *categoryService) ForDropdown(ctx context.Context) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	cats, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, patch domain.CategoryPatch) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
		}
		if !strings.EqualFold(name, c.Name) {
			if other, err := s.categoryRepo.GetByName(ctx, name); err == nil && other.ID != id {
				return nil, fmt.Errorf("%w: category %q already exists", domain.ErrConflict, name)
			} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("check category name: %w", err)
			}
			sl, err := uniqueSlug(ctx, name, s.categoryRepo.SlugExists)
			if err != nil {
				return nil, err
			}
			c.Slug = sl
		}
		c.Name = name
	}
	if patch.Description != nil {
		c.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Color != nil {
		c.Color = strings.TrimSpace(*patch.Color)
	}
	if patch.ParentID != nil {
		if *patch.ParentID == 0 {
			c.ParentID = nil
		} else {
			if err := s.checkParent(ctx, id, *patch.ParentID); err != nil {
				return nil, err
			}
			parent := *patch.ParentID
			c.ParentID = &parent
		}
	}
	if err := s.categoryRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	s.invalidate(ctx)
	return c, nil
}

// checkParent rejects a parent that is missing, the category itself, or one of its descendants.
func (s *categoryService) checkParent(ctx context.Context, id, parentID int64) error {
	if parentID == id {
		return fmt.Errorf("%w: category cannot be its own parent", domain.ErrInvalidInput)
	}
	seen := map[int64]bool{}
	next := &parentID
	for next != nil && !seen[*next] {
		seen[*next] = true
		p, err := s.categoryRepo.GetByID(ctx, *next)
		if err != nil {
			return fmt.Errorf("get parent category: %w", err)
		}
		if p.ParentID != nil && *p.ParentID == id {
			return fmt.Errorf("%w: category cannot be nested under its own descendant", domain.ErrInvalidInput)
		}
		next = p.ParentID
	}
	return nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	n, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("count subcategories: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: category has %d subcategories, delete or move them first", domain.ErrConflict, n)
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *categoryService) AttachToPost(ctx context.Context, actor *domain.User, postID, categoryID int64) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	post, err := loadOwnedPost(ctx, s.postRepo, actor, postID, domain.PermEditPost, domain.PermEditOwnPost)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if err := s.categoryRepo.AttachToPost(ctx, postID, categoryID); err != nil {
		return nil, fmt.Errorf("attach category: %w", err)
	}
	s.invalidate(ctx)
	return post, nil
}

func (s *categoryService) DetachFromPost(ctx context.Context, actor *domain.User, postID, categoryID int64) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	post, err := loadOwnedPost(ctx, s.postRepo, actor, postID, domain.PermEditPost, domain.PermEditOwnPost)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if err := s.categoryRepo.DetachFromPost(ctx, postID, categoryID); err != nil {
		return nil, fmt.Errorf("detach category: %w", err)
	}
	s.invalidate(ctx)
	return post, nil
}
