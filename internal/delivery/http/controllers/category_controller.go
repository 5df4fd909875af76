package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"chyrp/internal/delivery/http/helpers"
	"chyrp/internal/domain"
)

// CategoryRequest is the request body for POST /categories
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	ParentID    *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

// CategoryPatchRequest is the request body for PUT /categories/{categoryID}. A parent_id of
// 0 moves the category to the top level.
type CategoryPatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	ParentID    *int64  `json:"parent_id" validate:"omitempty,gte=0"`
}

// CategorySuccessResponse is the success response envelope for endpoints returning one category.
type CategorySuccessResponse struct {
	Data  *domain.Category  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CategoryListSuccessResponse is the success response envelope for category listings.
type CategoryListSuccessResponse struct {
	Data  []*domain.Category `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// CategoryController handles categories and their attachment to posts.
type CategoryController struct {
	Logger  *slog.Logger
	Service domain.CategoryService
}

// NewCategoryController creates a CategoryController.
func NewCategoryController(logger *slog.Logger, svc domain.CategoryService) *CategoryController {
	return &CategoryController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Create a category
// @Description Requires add_post. A parent must exist.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CategoryRequest true "Category"
// @Success 201 {object} controllers.CategorySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /categories [post]
func (c *CategoryController) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	category, err := c.Service.Create(r.Context(), domain.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		ParentID:    req.ParentID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, category)
}

// List godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Param search query string false "Name contains"
// @Param parent_id query int false "0 for root categories, otherwise the direct children of this category"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} controllers.CategoryListSuccessResponse
// @Failure 400 {object} helpers.APIResponse
// @Router /categories [get]
func (c *CategoryController) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.CategoryFilter{Search: r.URL.Query().Get("search")}
	if s := r.URL.Query().Get("parent_id"); s != "" {
		parentID, err := strconv.ParseInt(s, 10, 64)
		if err != nil || parentID < 0 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "parent_id must be a non-negative integer")
			return
		}
		filter.ParentID = &parentID
	}
	categories, err := c.Service.List(r.Context(), filter, helpers.ParsePagination(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, categories)
}

// Tree godoc
// @Summary Category tree
// @Description Root categories with their children nested. Cached for an hour.
// @Tags categories
// @Produce json
// @Success 200 {object} controllers.CategoryListSuccessResponse
// @Router /categories/tree [get]
func (c *CategoryController) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := c.Service.Tree(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tree)
}

// Popular godoc
// @Summary Most used categories
// @Tags categories
// @Produce json
// @Param limit query int false "How many categories (default 10)"
// @Success 200 {object} controllers.CategoryListSuccessResponse
// @Router /categories/popular [get]
func (c *CategoryController) Popular(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Service.Popular(r.Context(), popularLimit(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, categories)
}

// ForDropdown godoc
// @Summary Categories for a select box
// @Description Every category ordered by name.
// @Tags categories
// @Produce json
// @Success 200 {object} controllers.CategoryListSuccessResponse
// @Router /categories/for-dropdown [get]
func (c *CategoryController) ForDropdown(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Service.ForDropdown(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, categories)
}

// GetByID godoc
// @Summary Get a category
// @Tags categories
// @Produce json
// @Param categoryID path int true "Category ID"
// @Success 200 {object} controllers.CategorySuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{categoryID} [get]
func (c *CategoryController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "categoryID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	category, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, category)
}

// GetBySlug godoc
// @Summary Get a category by slug
// @Tags categories
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} controllers.CategorySuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/slug/{slug} [get]
func (c *CategoryController) GetBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := c.Service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, category)
}

// Update godoc
// @Summary Update a category
// @Description Requires edit_post. A category cannot become its own ancestor.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param categoryID path int true "Category ID"
// @Param body body CategoryPatchRequest true "Fields to change"
// @Success 200 {object} controllers.CategorySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /categories/{categoryID} [put]
func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "categoryID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req CategoryPatchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	category, err := c.Service.Update(r.Context(), id, domain.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		ParentID:    req.ParentID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, category)
}

// Delete godoc
// @Summary Delete a category
// @Description Requires delete_post. Refused while the category has children.
// @Tags categories
// @Security BearerAuth
// @Param categoryID path int true "Category ID"
// @Success 204
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /categories/{categoryID} [delete]
func (c *CategoryController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "categoryID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Attach godoc
// @Summary Put a post in a category
// @Description Requires edit_post, or edit_own_post on one's own posts.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Param categoryID path int true "Category ID"
// @Success 200 {object} controllers.PostSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID}/categories/{categoryID} [post]
func (c *CategoryController) Attach(w http.ResponseWriter, r *http.Request) {
	writePostLink(w, r, c.Logger, "categoryID", c.Service.AttachToPost)
}

// Detach godoc
// @Summary Take a post out of a category
// @Description Requires edit_post, or edit_own_post on one's own posts.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Param categoryID path int true "Category ID"
// @Success 200 {object} controllers.PostSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID}/categories/{categoryID} [delete]
func (c *CategoryController) Detach(w http.ResponseWriter, r *http.Request) {
	writePostLink(w, r, c.Logger, "categoryID", c.Service.DetachFromPost)
}
