package controllers

import (
	"log/slog"
	"net/http"

	"chyrp/internal/cascade"
	"chyrp/internal/delivery/http/helpers"
	"chyrp/internal/domain"
)

// CascadePage is the body of every cascade feed. Relation-scoped feeds also echo the
// tag, category or user they are narrowed to.
type CascadePage struct {
	Posts         []*domain.Post `json:"posts"`
	HasMore       bool           `json:"has_more"`
	NextCursor    *string        `json:"next_cursor"`
	TotalReturned int            `json:"total_returned"`
	TagID         *int64         `json:"tag_id,omitempty"`
	TagName       string         `json:"tag_name,omitempty"`
	CategoryID    *int64         `json:"category_id,omitempty"`
	CategoryName  string         `json:"category_name,omitempty"`
	UserID        *int64         `json:"user_id,omitempty"`
	UserName      string         `json:"user_name,omitempty"`
}

func newCascadePage(p *domain.PostPage) CascadePage {
	return CascadePage{
		Posts:         p.Items,
		HasMore:       p.HasMore,
		NextCursor:    p.NextCursor,
		TotalReturned: p.TotalReturned(),
	}
}

// CascadePageSuccessResponse is the success response envelope for cascade feeds (200).
type CascadePageSuccessResponse struct {
	Data  CascadePage       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CascadeController serves keyset-paginated post feeds.
type CascadeController struct {
	Logger       *slog.Logger
	Service      domain.CascadeService
	DefaultLimit int
}

// NewCascadeController creates a CascadeController. defaultLimit applies when a request
// carries no limit.
func NewCascadeController(logger *slog.Logger, svc domain.CascadeService, defaultLimit int) *CascadeController {
	if defaultLimit <= 0 {
		defaultLimit = cascade.DefaultLimits.Default
	}
	return &CascadeController{
		Logger:       logger,
		Service:      svc,
		DefaultLimit: defaultLimit,
	}
}

// Posts godoc
// @Summary Cascade feed of public posts
// @Description Keyset-paginated public posts. Pass next_cursor from the previous page as cursor to continue. A cursor carries its own sort key and order: follow-up requests may send only cursor and limit. An explicit sort_by or sort_order that differs from the cursor's is rejected with invalid_cursor.
// @Tags cascade
// @Produce json
// @Param cursor query string false "Opaque cursor from a previous page"
// @Param limit query int false "Page size (default 20, clamped to the configured maximum)"
// @Param sort_by query string false "created_at (default), updated_at or view_count"
// @Param sort_order query string false "desc (default) or asc"
// @Param content_type query string false "post or page"
// @Param user_id query int false "Only posts by this user"
// @Success 200 {object} controllers.CascadePageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_cursor or invalid_parameter"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /cascade/posts [get]
func (c *CascadeController) Posts(w http.ResponseWriter, r *http.Request) {
	req, err := helpers.ParseCascadeRequest(r, c.DefaultLimit)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	userID, err := helpers.QueryID(r, "user_id")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	page, err := c.Service.Posts(r.Context(), req, r.URL.Query().Get("content_type"), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newCascadePage(page))
}

// ByTag godoc
// @Summary Cascade feed of a tag
// @Description Keyset-paginated public posts carrying the tag, newest first.
// @Tags cascade
// @Produce json
// @Param tagID path int true "Tag ID"
// @Param cursor query string false "Opaque cursor from a previous page"
// @Param limit query int false "Page size"
// @Success 200 {object} controllers.CascadePageSuccessResponse "data also carries tag_id and tag_name"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, invalid_cursor or invalid_parameter"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /cascade/tags/{tagID}/posts [get]
func (c *CascadeController) ByTag(w http.ResponseWriter, r *http.Request) {
	tagID, req, ok := c.scoped(w, r, "tagID")
	if !ok {
		return
	}
	tag, page, err := c.Service.ByTag(r.Context(), tagID, req)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	body := newCascadePage(page)
	body.TagID, body.TagName = &tag.ID, tag.Name
	helpers.WriteJSONSuccess(w, http.StatusOK, body)
}

// ByCategory godoc
// @Summary Cascade feed of a category
// @Description Keyset-paginated public posts in the category, newest first.
// @Tags cascade
// @Produce json
// @Param categoryID path int true "Category ID"
// @Param cursor query string false "Opaque cursor from a previous page"
// @Param limit query int false "Page size"
// @Success 200 {object} controllers.CascadePageSuccessResponse "data also carries category_id and category_name"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, invalid_cursor or invalid_parameter"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /cascade/categories/{categoryID}/posts [get]
func (c *CascadeController) ByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, req, ok := c.scoped(w, r, "categoryID")
	if !ok {
		return
	}
	category, page, err := c.Service.ByCategory(r.Context(), categoryID, req)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	body := newCascadePage(page)
	body.CategoryID, body.CategoryName = &category.ID, category.Name
	helpers.WriteJSONSuccess(w, http.StatusOK, body)
}

// ByUser godoc
// @Summary Cascade feed of a user
// @Description Keyset-paginated public posts written by the user, newest first.
// @Tags cascade
// @Produce json
// @Param userID path int true "User ID"
// @Param cursor query string false "Opaque cursor from a previous page"
// @Param limit query int false "Page size"
// @Success 200 {object} controllers.CascadePageSuccessResponse "data also carries user_id and user_name"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, invalid_cursor or invalid_parameter"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /cascade/user/{userID}/posts [get]
func (c *CascadeController) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, req, ok := c.scoped(w, r, "userID")
	if !ok {
		return
	}
	user, page, err := c.Service.ByUser(r.Context(), userID, req)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	body := newCascadePage(page)
	body.UserID, body.UserName = &user.ID, user.Login
	helpers.WriteJSONSuccess(w, http.StatusOK, body)
}

// scoped reads the relation ID from the path plus the paging parameters. Relation feeds
// are always newest first; sort_by and sort_order are ignored and a cursor issued for
// another ordering is rejected.
func (c *CascadeController) scoped(w http.ResponseWriter, r *http.Request, pathKey string) (int64, cascade.Request, bool) {
	id, err := helpers.PathID(r, pathKey)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return 0, cascade.Request{}, false
	}
	req, err := helpers.ParseCascadeRequest(r, c.DefaultLimit)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return 0, cascade.Request{}, false
	}
	req.SortBy, req.SortOrder = string(cascade.SortCreatedAt), string(cascade.Desc)
	return id, req, true
}
