package controllers

import (
	"log/slog"
	"net/http"

	"chyrp/internal/delivery/http/helpers"
	"chyrp/internal/delivery/http/middleware"
	"chyrp/internal/domain"
)

// LikeSuccessResponse is the success response envelope for POST /posts/{postID}/like.
type LikeSuccessResponse struct {
	Data  *domain.LikeState `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// InteractionController handles likes, bookmarks and favorite writers.
type InteractionController struct {
	Logger  *slog.Logger
	Service domain.InteractionService
}

// NewInteractionController creates an InteractionController.
func NewInteractionController(logger *slog.Logger, svc domain.InteractionService) *InteractionController {
	return &InteractionController{Logger: logger, Service: svc}
}

// Like godoc
// @Summary Like or unlike a post
// @Description Requires like_post. Toggles the like and returns the new state.
// @Tags interactions
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Success 200 {object} controllers.LikeSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID}/like [post]
func (c *InteractionController) Like(w http.ResponseWriter, r *http.Request) {
	postID, err := helpers.PathID(r, "postID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	state, err := c.Service.ToggleLike(r.Context(), middleware.UserFromContext(r.Context()), postID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, state)
}

// Bookmark godoc
// @Summary Bookmark or unbookmark a post
// @Tags interactions
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Success 204
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID}/bookmark [post]
func (c *InteractionController) Bookmark(w http.ResponseWriter, r *http.Request) {
	postID, err := helpers.PathID(r, "postID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if err := c.Service.ToggleBookmark(r.Context(), middleware.UserFromContext(r.Context()), postID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Favorite godoc
// @Summary Follow or unfollow a writer
// @Tags interactions
// @Security BearerAuth
// @Param userID path int true "Writer's user ID"
// @Success 204
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/favorite [post]
func (c *InteractionController) Favorite(w http.ResponseWriter, r *http.Request) {
	writerID, err := helpers.PathID(r, "userID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if err := c.Service.ToggleFavorite(r.Context(), middleware.UserFromContext(r.Context()), writerID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
