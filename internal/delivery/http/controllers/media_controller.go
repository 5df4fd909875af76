package controllers

import (
	"log/slog"
	"net/http"

	"chyrp/internal/delivery/http/helpers"
	"chyrp/internal/delivery/http/middleware"
	"chyrp/internal/domain"
)

// RegisterMediaRequest is the request body for POST /media
type RegisterMediaRequest struct {
	Filename     string `json:"filename" validate:"required,max=255"`
	OriginalName string `json:"original_name" validate:"max=255"`
	ContentType  string `json:"content_type" validate:"required"`
	FileSize     int64  `json:"file_size" validate:"gt=0"`
	FileURL      string `json:"file_url" validate:"required,url"`
}

// MediaSuccessResponse is the success response envelope for endpoints returning one media row.
type MediaSuccessResponse struct {
	Data  *domain.Media     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MediaListSuccessResponse is the success response envelope for GET /media.
type MediaListSuccessResponse struct {
	Data  []*domain.Media   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CleanupResult reports how many orphaned media rows were removed.
type CleanupResult struct {
	Deleted int64 `json:"deleted"`
}

// CleanupSuccessResponse is the success response envelope for DELETE /admin/cleanup-media.
type CleanupSuccessResponse struct {
	Data  CleanupResult     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MediaController handles media metadata.
type MediaController struct {
	Logger  *slog.Logger
	Service domain.MediaService
}

// NewMediaController creates a MediaController.
func NewMediaController(logger *slog.Logger, svc domain.MediaService) *MediaController {
	return &MediaController{Logger: logger, Service: svc}
}

// Register godoc
// @Summary Register an uploaded file
// @Description Stores the metadata of a file already uploaded to storage. The MIME type must be an allowed image, audio or video type within its size limit.
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RegisterMediaRequest true "Media metadata"
// @Success 201 {object} controllers.MediaSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /media [post]
func (c *MediaController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterMediaRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	media, err := c.Service.Register(r.Context(), middleware.UserFromContext(r.Context()), domain.MediaInput{
		Filename:     req.Filename,
		OriginalName: req.OriginalName,
		ContentType:  req.ContentType,
		FileSize:     req.FileSize,
		FileURL:      req.FileURL,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, media)
}

// ListMine godoc
// @Summary List my media
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} controllers.MediaListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /media [get]
func (c *MediaController) ListMine(w http.ResponseWriter, r *http.Request) {
	media, err := c.Service.ListMine(r.Context(), middleware.UserFromContext(r.Context()), helpers.ParsePagination(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, media)
}

// GetInfo godoc
// @Summary Get media metadata
// @Tags media
// @Produce json
// @Param mediaID path int true "Media ID"
// @Success 200 {object} controllers.MediaSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /media/{mediaID}/info [get]
func (c *MediaController) GetInfo(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "mediaID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	media, err := c.Service.GetInfo(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, media)
}

// Delete godoc
// @Summary Delete media metadata
// @Description Allowed for the uploader or holders of delete_post. Refused while a post uses the file.
// @Tags media
// @Security BearerAuth
// @Param mediaID path int true "Media ID"
// @Success 204
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /media/{mediaID} [delete]
func (c *MediaController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "mediaID")
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

// Cleanup godoc
// @Summary Remove orphaned media
// @Description Requires delete_user. Deletes media rows no post references. The same job runs on a schedule.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.CleanupSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/cleanup-media [delete]
func (c *MediaController) Cleanup(w http.ResponseWriter, r *http.Request) {
	n, err := c.Service.CleanupOrphans(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.Logger.InfoContext(r.Context(), "orphaned media removed", "deleted", n)
	helpers.WriteJSONSuccess(w, http.StatusOK, CleanupResult{Deleted: n})
}
