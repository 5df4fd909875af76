package controllers

import (
	"log/slog"
	"net/http"

	"chyrp/internal/delivery/http/helpers"
	"chyrp/internal/delivery/http/middleware"
	"chyrp/internal/domain"
)

// CommentRequest is the request body for POST /posts/{postID}/comments
type CommentRequest struct {
	Content  string `json:"content" validate:"required,max=10000"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

// CommentUpdateRequest is the request body for PUT /comments/{commentID}
type CommentUpdateRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// CommentSuccessResponse is the success response envelope for endpoints returning one comment.
type CommentSuccessResponse struct {
	Data  *domain.Comment   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CommentListSuccessResponse is the success response envelope for comment threads.
type CommentListSuccessResponse struct {
	Data  []*domain.Comment `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CommentController handles comments on posts.
type CommentController struct {
	Logger  *slog.Logger
	Service domain.CommentService
}

// NewCommentController creates a CommentController.
func NewCommentController(logger *slog.Logger, svc domain.CommentService) *CommentController {
	return &CommentController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Comment on a post
// @Description A reply's parent must belong to the same post. The post's author is notified by email.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Param body body CommentRequest true "Comment"
// @Success 201 {object} controllers.CommentSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID}/comments [post]
func (c *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID, err := helpers.PathID(r, "postID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req CommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Service.Create(r.Context(), middleware.UserFromContext(r.Context()), postID, req.ParentID, req.Content)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, comment)
}

// ListByPost godoc
// @Summary Comment thread of a post
// @Description Approved top-level comments, oldest first, with approved replies nested.
// @Tags comments
// @Produce json
// @Param postID path int true "Post ID"
// @Success 200 {object} controllers.CommentListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID}/comments [get]
func (c *CommentController) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := helpers.PathID(r, "postID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	comments, err := c.Service.ListByPost(r.Context(), postID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comments)
}

// GetByID godoc
// @Summary Get a comment
// @Tags comments
// @Produce json
// @Param commentID path int true "Comment ID"
// @Success 200 {object} controllers.CommentSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID} [get]
func (c *CommentController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "commentID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	comment, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comment)
}

// Update godoc
// @Summary Edit a comment
// @Description Allowed for the comment's author or holders of edit_post.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param commentID path int true "Comment ID"
// @Param body body CommentUpdateRequest true "New content"
// @Success 200 {object} controllers.CommentSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID} [put]
func (c *CommentController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "commentID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req CommentUpdateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Service.Update(r.Context(), middleware.UserFromContext(r.Context()), id, req.Content)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comment)
}

// Delete godoc
// @Summary Delete a comment
// @Description Allowed for the comment's author or holders of delete_post.
// @Tags comments
// @Security BearerAuth
// @Param commentID path int true "Comment ID"
// @Success 204
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID} [delete]
func (c *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "commentID")
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

// Approve godoc
// @Summary Approve a comment
// @Description Requires edit_post.
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param commentID path int true "Comment ID"
// @Success 200 {object} controllers.CommentSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID}/approve [post]
func (c *CommentController) Approve(w http.ResponseWriter, r *http.Request) {
	c.setApproved(w, r, true)
}

// Disapprove godoc
// @Summary Hide a comment
// @Description Requires edit_post. Hidden comments drop out of the thread.
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param commentID path int true "Comment ID"
// @Success 200 {object} controllers.CommentSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID}/disapprove [post]
func (c *CommentController) Disapprove(w http.ResponseWriter, r *http.Request) {
	c.setApproved(w, r, false)
}

func (c *CommentController) setApproved(w http.ResponseWriter, r *http.Request, approved bool) {
	id, err := helpers.PathID(r, "commentID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	comment, err := c.Service.SetApproved(r.Context(), id, approved)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comment)
}
