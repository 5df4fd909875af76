package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"chyrp/internal/delivery/http/helpers"
	"chyrp/internal/delivery/http/middleware"
	"chyrp/internal/domain"
)

const defaultPopularLimit = 10

// TagRequest is the request body for POST /tags
type TagRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// TagPatchRequest is the request body for PUT /tags/{tagID}
type TagPatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

// GetOrCreateTagsRequest is the request body for POST /tags/get-or-create
type GetOrCreateTagsRequest struct {
	Names []string `json:"names" validate:"required,min=1,dive,max=100"`
}

// TagSuccessResponse is the success response envelope for endpoints returning one tag.
type TagSuccessResponse struct {
	Data  *domain.Tag       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// TagListSuccessResponse is the success response envelope for tag listings.
type TagListSuccessResponse struct {
	Data  []*domain.Tag     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// TagController handles tags and their attachment to posts.
type TagController struct {
	Logger  *slog.Logger
	Service domain.TagService
}

// NewTagController creates a TagController.
func NewTagController(logger *slog.Logger, svc domain.TagService) *TagController {
	return &TagController{Logger: logger, Service: svc}
}

// popularLimit reads ?limit for popularity listings.
func popularLimit(r *http.Request) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		return n
	}
	return defaultPopularLimit
}

// Create godoc
// @Summary Create a tag
// @Description Requires add_post. The slug is derived from the name and made unique.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TagRequest true "Tag"
// @Success 201 {object} controllers.TagSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /tags [post]
func (c *TagController) Create(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tag, err := c.Service.Create(r.Context(), domain.TagInput{Name: req.Name, Description: req.Description, Color: req.Color})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, tag)
}

// List godoc
// @Summary List tags
// @Tags tags
// @Produce json
// @Param search query string false "Name contains"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} controllers.TagListSuccessResponse
// @Router /tags [get]
func (c *TagController) List(w http.ResponseWriter, r *http.Request) {
	tags, err := c.Service.List(r.Context(), r.URL.Query().Get("search"), helpers.ParsePagination(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tags)
}

// Popular godoc
// @Summary Most used tags
// @Description Tags ordered by their number of public posts. Cached for five minutes.
// @Tags tags
// @Produce json
// @Param limit query int false "How many tags (default 10)"
// @Success 200 {object} controllers.TagListSuccessResponse
// @Router /tags/popular [get]
func (c *TagController) Popular(w http.ResponseWriter, r *http.Request) {
	tags, err := c.Service.Popular(r.Context(), popularLimit(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tags)
}

// GetByID godoc
// @Summary Get a tag
// @Tags tags
// @Produce json
// @Param tagID path int true "Tag ID"
// @Success 200 {object} controllers.TagSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /tags/{tagID} [get]
func (c *TagController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "tagID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	tag, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tag)
}

// GetBySlug godoc
// @Summary Get a tag by slug
// @Tags tags
// @Produce json
// @Param slug path string true "Tag slug"
// @Success 200 {object} controllers.TagSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /tags/slug/{slug} [get]
func (c *TagController) GetBySlug(w http.ResponseWriter, r *http.Request) {
	tag, err := c.Service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tag)
}

// Update godoc
// @Summary Update a tag
// @Description Requires edit_post. Renaming regenerates the slug.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tagID path int true "Tag ID"
// @Param body body TagPatchRequest true "Fields to change"
// @Success 200 {object} controllers.TagSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /tags/{tagID} [put]
func (c *TagController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "tagID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req TagPatchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tag, err := c.Service.Update(r.Context(), id, domain.TagPatch{Name: req.Name, Description: req.Description, Color: req.Color})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tag)
}

// Delete godoc
// @Summary Delete a tag
// @Description Requires delete_post.
// @Tags tags
// @Security BearerAuth
// @Param tagID path int true "Tag ID"
// @Success 204
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /tags/{tagID} [delete]
func (c *TagController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "tagID")
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

// GetOrCreate godoc
// @Summary Resolve tag names
// @Description Returns the tag for each name, matching case-insensitively and creating the missing ones.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GetOrCreateTagsRequest true "Names"
// @Success 200 {object} controllers.TagListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /tags/get-or-create [post]
func (c *TagController) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	var req GetOrCreateTagsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tags, err := c.Service.GetOrCreate(r.Context(), req.Names)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tags)
}

// Attach godoc
// @Summary Tag a post
// @Description Requires edit_post, or edit_own_post on one's own posts.
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Param tagID path int true "Tag ID"
// @Success 200 {object} controllers.PostSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID}/tags/{tagID} [post]
func (c *TagController) Attach(w http.ResponseWriter, r *http.Request) {
	c.link(w, r, c.Service.AttachToPost)
}

// Detach godoc
// @Summary Untag a post
// @Description Requires edit_post, or edit_own_post on one's own posts.
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Param tagID path int true "Tag ID"
// @Success 200 {object} controllers.PostSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID}/tags/{tagID} [delete]
func (c *TagController) Detach(w http.ResponseWriter, r *http.Request) {
	c.link(w, r, c.Service.DetachFromPost)
}

func (c *TagController) link(w http.ResponseWriter, r *http.Request, op postLinkFunc) {
	writePostLink(w, r, c.Logger, "tagID", op)
}

// postLinkFunc attaches or detaches a tag or category.
type postLinkFunc func(ctx context.Context, actor *domain.User, postID, otherID int64) (*domain.Post, error)

func writePostLink(w http.ResponseWriter, r *http.Request, logger *slog.Logger, otherKey string, op postLinkFunc) {
	postID, err := helpers.PathID(r, "postID")
	if err != nil {
		helpers.WriteServiceError(w, r, logger, err)
		return
	}
	otherID, err := helpers.PathID(r, otherKey)
	if err != nil {
		helpers.WriteServiceError(w, r, logger, err)
		return
	}
	post, err := op(r.Context(), middleware.UserFromContext(r.Context()), postID, otherID)
	if err != nil {
		helpers.WriteServiceError(w, r, logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, post)
}
