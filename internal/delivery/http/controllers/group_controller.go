package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"chyrp/internal/delivery/http/helpers"
	"chyrp/internal/domain"
)

// CreateGroupRequest is the request body for POST /groups
type CreateGroupRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Permissions []string `json:"permissions"`
}

// Validate implements Validator.
func (g CreateGroupRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(g.Name) == "" {
		errs = append(errs, "name cannot be blank")
	}
	return errs
}

func (g CreateGroupRequest) permissions() []domain.Permission {
	perms := make([]domain.Permission, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		perms = append(perms, domain.Permission(strings.TrimSpace(p)))
	}
	return perms
}

// GroupSuccessResponse is the success response envelope for POST /groups (201).
type GroupSuccessResponse struct {
	Data  *domain.Group     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GroupListSuccessResponse is the success response envelope for GET /groups (200).
type GroupListSuccessResponse struct {
	Data  []*domain.Group   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GroupController handles permission groups.
type GroupController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

// NewGroupController creates a GroupController.
func NewGroupController(logger *slog.Logger, svc domain.UserService) *GroupController {
	return &GroupController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Create a group
// @Description Requires the add_group permission. Group names are unique.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateGroupRequest true "Group"
// @Success 201 {object} controllers.GroupSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /groups [post]
func (c *GroupController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	group, err := c.Service.CreateGroup(r.Context(), req.Name, req.permissions())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, group)
}

// List godoc
// @Summary List groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} controllers.GroupListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /groups [get]
func (c *GroupController) List(w http.ResponseWriter, r *http.Request) {
	groups, err := c.Service.ListGroups(r.Context(), helpers.ParsePagination(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, groups)
}
