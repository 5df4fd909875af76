package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chyrp/internal/delivery/http/helpers"
	"chyrp/internal/domain"
)

func TestUserController_SignUp(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodyCode   string
		wantBodySubstr string
	}{
		{
			name:       "success",
			body:       `{"login":"writer","email":"w@example.com","password":"secret1","full_name":"Wendy"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "invalid JSON",
		},
		{
			name:           "short password",
			body:           `{"login":"writer","email":"w@example.com","password":"abc"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "password must satisfy min=6",
		},
		{
			name:           "bad email",
			body:           `{"login":"writer","email":"nope","password":"secret1"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "email",
		},
		{
			name:           "login with spaces",
			body:           `{"login":"the writer","email":"w@example.com","password":"secret1"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "login can only contain",
		},
		{
			name:         "email taken",
			body:         `{"login":"writer","email":"w@example.com","password":"secret1"}`,
			fakeErr:      fmt.Errorf("%w: email already registered", domain.ErrConflict),
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "service error",
			body:         `{"login":"writer","email":"w@example.com","password":"secret1"}`,
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{user: &domain.User{ID: 7, Login: "writer", Email: "w@example.com"}, err: tt.fakeErr}
			ctrl := NewUserController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.SignUp(rr, httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rr.Code)
			var u domain.User
			apiErr := decode(t, rr, &u)
			if tt.wantBodyCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantBodyCode, apiErr.Code)
				assert.Contains(t, apiErr.Message, tt.wantBodySubstr)
				return
			}
			require.Nil(t, apiErr)
			assert.Equal(t, int64(7), u.ID)
			assert.Equal(t, domain.SignupInput{Login: "writer", Email: "w@example.com", Password: "secret1", FullName: "Wendy"}, fake.lastSignup)
		})
	}
}

func TestUserController_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{"success", `{"login_or_email":"writer","password":"secret1"}`, nil, http.StatusOK, ""},
		{"missing password", `{"login_or_email":"writer"}`, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"bad credentials", `{"login_or_email":"writer","password":"nope"}`, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized), http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
		{"disabled account", `{"login_or_email":"writer","password":"secret1"}`, fmt.Errorf("%w: account is disabled", domain.ErrForbidden), http.StatusForbidden, helpers.ErrCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{user: member, token: "jwt", err: tt.fakeErr}
			ctrl := NewUserController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.Login(rr, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rr.Code)
			var resp LoginResponse
			apiErr := decode(t, rr, &resp)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.Equal(t, "jwt", resp.Token)
			assert.Equal(t, "Bearer", resp.TokenType)
			require.NotNil(t, resp.User)
			assert.Equal(t, "writer", resp.User.Login)
			assert.Equal(t, "writer", fake.lastLogin)
		})
	}
}

func TestUserController_GetMe(t *testing.T) {
	ctrl := NewUserController(testLogger, &fakeUserService{})

	rr := httptest.NewRecorder()
	ctrl.GetMe(rr, asUser(httptest.NewRequest(http.MethodGet, "/users/me", nil), member))
	require.Equal(t, http.StatusOK, rr.Code)
	var u domain.User
	require.Nil(t, decode(t, rr, &u))
	assert.Equal(t, member.ID, u.ID)
	require.NotNil(t, u.Group)
	assert.Equal(t, domain.MemberPermissions, u.Group.Permissions)
	assert.NotContains(t, rr.Body.String(), "salt")

	rr = httptest.NewRecorder()
	ctrl.GetMe(rr, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUserController_GetByID(t *testing.T) {
	tests := []struct {
		name       string
		pathValue  string
		fakeErr    error
		wantStatus int
	}{
		{"found", "7", nil, http.StatusOK},
		{"not numeric", "me", nil, http.StatusBadRequest},
		{"missing", "99", fmt.Errorf("get user: %w", domain.ErrNotFound), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewUserController(testLogger, &fakeUserService{user: member, err: tt.fakeErr})
			req := httptest.NewRequest(http.MethodGet, "/users/"+tt.pathValue, nil)
			req.SetPathValue("userID", tt.pathValue)
			rr := httptest.NewRecorder()

			ctrl.GetByID(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestGroupController(t *testing.T) {
	fake := &fakeUserService{groups: []*domain.Group{{ID: 1, Name: domain.GroupAdmin}, {ID: 2, Name: domain.GroupMember}}}
	ctrl := NewGroupController(testLogger, fake)

	rr := httptest.NewRecorder()
	ctrl.Create(rr, httptest.NewRequest(http.MethodPost, "/groups", strings.NewReader(`{"name":"Editors","permissions":["edit_post"," delete_post "]}`)))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, []domain.Permission{domain.PermEditPost, domain.PermDeletePost}, fake.lastPerms)

	rr = httptest.NewRecorder()
	ctrl.Create(rr, httptest.NewRequest(http.MethodPost, "/groups", strings.NewReader(`{"name":"   "}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	ctrl.List(rr, httptest.NewRequest(http.MethodGet, "/groups?limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var groups []*domain.Group
	require.Nil(t, decode(t, rr, &groups))
	assert.Len(t, groups, 2)
}
