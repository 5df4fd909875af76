package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"chyrp/internal/delivery/http/helpers"
	"chyrp/internal/delivery/http/middleware"
	"chyrp/internal/domain"
)

// CreatePostRequest is the request body for POST /posts
type CreatePostRequest struct {
	ContentType string `json:"content_type" validate:"omitempty,oneof=post page"`
	Feather     string `json:"feather" validate:"max=32"`
	Clean       string `json:"clean" validate:"required,max=128"`
	Status      string `json:"status" validate:"omitempty,oneof=public private draft"`
	Pinned      bool   `json:"pinned"`
	Title       string `json:"title" validate:"max=255"`
	Body        string `json:"body"`
	ParentID    *int64 `json:"parent_id"`
	MediaID     *int64 `json:"media_id"`
}

// Validate implements Validator.
func (p CreatePostRequest) Validate() []string {
	var errs []string
	if p.Clean != "" && !domain.ValidClean(p.Clean) {
		errs = append(errs, "clean can only contain lowercase letters, numbers, and hyphens")
	}
	return errs
}

// UpdatePostRequest is the request body for PUT /posts/{postID}. Omitted fields are unchanged.
type UpdatePostRequest struct {
	ContentType *string `json:"content_type" validate:"omitempty,oneof=post page"`
	Feather     *string `json:"feather"`
	Clean       *string `json:"clean"`
	Status      *string `json:"status" validate:"omitempty,oneof=public private draft"`
	Pinned      *bool   `json:"pinned"`
	Title       *string `json:"title"`
	Body        *string `json:"body"`
	ParentID    *int64  `json:"parent_id"`
	MediaID     *int64  `json:"media_id"`
}

// Validate implements Validator.
func (p UpdatePostRequest) Validate() []string {
	var errs []string
	if p.Clean != nil && !domain.ValidClean(*p.Clean) {
		errs = append(errs, "clean can only contain lowercase letters, numbers, and hyphens")
	}
	return errs
}

// QuotePostRequest is the request body for POST /posts/quote
type QuotePostRequest struct {
	Clean       string `json:"clean" validate:"required"`
	Quote       string `json:"quote" validate:"required"`
	Attribution string `json:"attribution" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=public private draft"`
}

// LinkPostRequest is the request body for POST /posts/link
type LinkPostRequest struct {
	Clean       string `json:"clean" validate:"required"`
	Title       string `json:"title" validate:"required,max=255"`
	URL         string `json:"url" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=public private draft"`
}

// PostSuccessResponse is the success response envelope for endpoints returning one post.
type PostSuccessResponse struct {
	Data  *domain.Post      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PostListSuccessResponse is the success response envelope for post listings.
type PostListSuccessResponse struct {
	Data  []*domain.Post    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PostController handles post and page endpoints.
type PostController struct {
	Logger  *slog.Logger
	Service domain.PostService
}

// NewPostController creates a PostController.
func NewPostController(logger *slog.Logger, svc domain.PostService) *PostController {
	return &PostController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Create a post
// @Description Requires add_post. The clean slug must be unique. An attached media file must exist, belong to the author (unless edit_post) and match the feather.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreatePostRequest true "Post"
// @Success 201 {object} controllers.PostSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /posts [post]
func (c *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	post, err := c.Service.Create(r.Context(), middleware.UserFromContext(r.Context()), domain.PostInput{
		ContentType: req.ContentType,
		Feather:     req.Feather,
		Clean:       req.Clean,
		Status:      req.Status,
		Pinned:      req.Pinned,
		Title:       req.Title,
		Body:        req.Body,
		ParentID:    req.ParentID,
		MediaID:     req.MediaID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, post)
}

// CreateQuote godoc
// @Summary Create a quote post
// @Description Requires add_post. The body is the quoted text followed by the attribution.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body QuotePostRequest true "Quote"
// @Success 201 {object} controllers.PostSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /posts/quote [post]
func (c *PostController) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuotePostRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	post, err := c.Service.CreateQuote(r.Context(), middleware.UserFromContext(r.Context()), domain.QuoteInput{
		Clean:       req.Clean,
		Quote:       req.Quote,
		Attribution: req.Attribution,
		Status:      req.Status,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, post)
}

// CreateLink godoc
// @Summary Create a link post
// @Description Requires add_post. URLs without a scheme get https://.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LinkPostRequest true "Link"
// @Success 201 {object} controllers.PostSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /posts/link [post]
func (c *PostController) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req LinkPostRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	post, err := c.Service.CreateLink(r.Context(), middleware.UserFromContext(r.Context()), domain.LinkInput{
		Clean:       req.Clean,
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, post)
}

// List godoc
// @Summary List posts
// @Description Offset-paginated posts, newest first. Prefer the cascade feeds for browsing.
// @Tags posts
// @Produce json
// @Param content_type query string false "post or page"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} controllers.PostListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /posts [get]
func (c *PostController) List(w http.ResponseWriter, r *http.Request) {
	f := domain.PostFilter{ContentType: r.URL.Query().Get("content_type")}
	posts, err := c.Service.List(r.Context(), f, helpers.ParsePagination(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, posts)
}

// GetByID godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param postID path int true "Post ID"
// @Success 200 {object} controllers.PostSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID} [get]
func (c *PostController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "postID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	post, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, post)
}

// GetBySlug godoc
// @Summary Get a post by slug
// @Tags posts
// @Produce json
// @Param clean path string true "Post slug"
// @Success 200 {object} controllers.PostSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/slug/{clean} [get]
func (c *PostController) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := c.Service.GetBySlug(r.Context(), r.PathValue("clean"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, post)
}

// Update godoc
// @Summary Update a post
// @Description Requires edit_post, or edit_own_post on one's own posts. Posts with media cannot be edited.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Param body body UpdatePostRequest true "Fields to change"
// @Success 200 {object} controllers.PostSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /posts/{postID} [put]
func (c *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "postID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req UpdatePostRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	post, err := c.Service.Update(r.Context(), middleware.UserFromContext(r.Context()), id, domain.PostPatch{
		ContentType: req.ContentType,
		Feather:     req.Feather,
		Clean:       req.Clean,
		Status:      req.Status,
		Pinned:      req.Pinned,
		Title:       req.Title,
		Body:        req.Body,
		ParentID:    req.ParentID,
		MediaID:     req.MediaID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, post)
}

// Delete godoc
// @Summary Delete a post
// @Description Requires delete_post, or delete_own_post on one's own posts. Attached media no other post uses is removed too.
// @Tags posts
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Success 204
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID} [delete]
func (c *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "postID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if err := c.Service.Delete(r.Context(), middleware.UserFromContext(r.Context()), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search godoc
// @Summary Search posts
// @Description Public posts whose title, body, tag or category name contains q. An empty q returns an empty list.
// @Tags search
// @Produce json
// @Param q query string false "Search term"
// @Success 200 {object} controllers.PostListSuccessResponse
// @Router /search/posts [get]
func (c *PostController) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := c.Service.Search(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, posts)
}
