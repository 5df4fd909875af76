package controllers

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"chyrp/internal/delivery/http/helpers"
	"chyrp/internal/delivery/http/middleware"
	"chyrp/internal/domain"
)

// PostViewSuccessResponse is the success response envelope for POST /views/posts/{postID}.
type PostViewSuccessResponse struct {
	Data  *domain.PostView  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PostViewListSuccessResponse is the success response envelope for GET /posts/{postID}/views.
type PostViewListSuccessResponse struct {
	Data  []*domain.PostView `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// PostViewStatsSuccessResponse is the success response envelope for GET /posts/{postID}/view-stats.
type PostViewStatsSuccessResponse struct {
	Data  *domain.PostViewStats `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// AnalyticsOverviewSuccessResponse is the success response envelope for GET /analytics/overview.
type AnalyticsOverviewSuccessResponse struct {
	Data  *domain.AnalyticsOverview `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// ViewController handles view tracking and analytics.
type ViewController struct {
	Logger  *slog.Logger
	Service domain.ViewService
}

// NewViewController creates a ViewController.
func NewViewController(logger *slog.Logger, svc domain.ViewService) *ViewController {
	return &ViewController{Logger: logger, Service: svc}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Track godoc
// @Summary Record a view
// @Description Counts one view per signed-in user, or per client IP for anonymous readers, within the dedupe window. Returns the most recent view of the post by any reader, which is not necessarily the caller's own view record.
// @Tags views
// @Produce json
// @Param postID path int true "Post ID"
// @Success 200 {object} controllers.PostViewSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /views/posts/{postID} [post]
func (c *ViewController) Track(w http.ResponseWriter, r *http.Request) {
	postID, err := helpers.PathID(r, "postID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	viewer := domain.Viewer{UserAgent: r.UserAgent()}
	if user := middleware.UserFromContext(r.Context()); user != nil {
		viewer.UserID = user.ID
	} else {
		viewer.IPAddress = clientIP(r)
	}
	view, err := c.Service.Track(r.Context(), postID, viewer)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// List godoc
// @Summary Views of a post
// @Tags views
// @Produce json
// @Param postID path int true "Post ID"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} controllers.PostViewListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID}/views [get]
func (c *ViewController) List(w http.ResponseWriter, r *http.Request) {
	postID, err := helpers.PathID(r, "postID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	views, err := c.Service.List(r.Context(), postID, helpers.ParsePagination(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}

// Stats godoc
// @Summary View statistics of a post
// @Tags views
// @Produce json
// @Param postID path int true "Post ID"
// @Success 200 {object} controllers.PostViewStatsSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID}/view-stats [get]
func (c *ViewController) Stats(w http.ResponseWriter, r *http.Request) {
	postID, err := helpers.PathID(r, "postID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	stats, err := c.Service.Stats(r.Context(), postID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// Popular godoc
// @Summary Most viewed posts
// @Tags views
// @Produce json
// @Param timeframe query string false "today, week, month or all (default)"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} controllers.PostListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /posts/popular [get]
func (c *ViewController) Popular(w http.ResponseWriter, r *http.Request) {
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = domain.TimeframeAll
	}
	posts, err := c.Service.Popular(r.Context(), timeframe, helpers.ParsePagination(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, posts)
}

// Overview godoc
// @Summary Site analytics
// @Description Post and view totals plus the most viewed post.
// @Tags analytics
// @Produce json
// @Success 200 {object} controllers.AnalyticsOverviewSuccessResponse
// @Router /analytics/overview [get]
func (c *ViewController) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := c.Service.Overview(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, overview)
}
