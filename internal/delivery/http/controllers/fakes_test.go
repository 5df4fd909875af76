package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"chyrp/internal/cascade"
	"chyrp/internal/delivery/http/helpers"
	"chyrp/internal/delivery/http/middleware"
	"chyrp/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var member = &domain.User{ID: 7, Login: "writer", IsActive: true, Group: &domain.Group{ID: 2, Name: domain.GroupMember, Permissions: domain.MemberPermissions}}

// asUser attaches user to req the way RequireAuth does.
func asUser(req *http.Request, user *domain.User) *http.Request {
	return req.WithContext(middleware.SetUser(req.Context(), user))
}

// decode reads the envelope and unmarshals its data into dest when dest is non-nil.
func decode(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	if dest != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env.Error
}

// fakeCascadeService records the last request it served.
type fakeCascadeService struct {
	page        *domain.PostPage
	err         error
	tag         *domain.Tag
	category    *domain.Category
	user        *domain.User
	lastReq     cascade.Request
	lastType    string
	lastUserID  int64
	lastScopeID int64
}

func (f *fakeCascadeService) Posts(_ context.Context, req cascade.Request, contentType string, userID int64) (*domain.PostPage, error) {
	f.lastReq, f.lastType, f.lastUserID = req, contentType, userID
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeCascadeService) ByTag(_ context.Context, tagID int64, req cascade.Request) (*domain.Tag, *domain.PostPage, error) {
	f.lastReq, f.lastScopeID = req, tagID
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.tag, f.page, nil
}

func (f *fakeCascadeService) ByCategory(_ context.Context, categoryID int64, req cascade.Request) (*domain.Category, *domain.PostPage, error) {
	f.lastReq, f.lastScopeID = req, categoryID
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.category, f.page, nil
}

func (f *fakeCascadeService) ByUser(_ context.Context, userID int64, req cascade.Request) (*domain.User, *domain.PostPage, error) {
	f.lastReq, f.lastScopeID = req, userID
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.user, f.page, nil
}

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	user       *domain.User
	token      string
	err        error
	lastSignup domain.SignupInput
	lastLogin  string
	groups     []*domain.Group
	lastPerms  []domain.Permission
}

func (f *fakeUserService) Signup(_ context.Context, in domain.SignupInput) (*domain.User, error) {
	f.lastSignup = in
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) Login(_ context.Context, loginOrEmail, _ string) (string, *domain.User, error) {
	f.lastLogin = loginOrEmail
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeUserService) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) CreateGroup(_ context.Context, name string, perms []domain.Permission) (*domain.Group, error) {
	f.lastPerms = perms
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Group{ID: 3, Name: name, Permissions: perms}, nil
}

func (f *fakeUserService) ListGroups(_ context.Context, _ domain.PaginationParams) ([]*domain.Group, error) {
	return f.groups, f.err
}

func (f *fakeUserService) Seed(context.Context, string) error { return nil }

// fakePostService implements domain.PostService, recording the actor and inputs it saw.
type fakePostService struct {
	post       *domain.Post
	posts      []*domain.Post
	err        error
	lastActor  *domain.User
	lastInput  domain.PostInput
	lastQuote  domain.QuoteInput
	lastLink   domain.LinkInput
	lastPatch  domain.PostPatch
	lastID     int64
	lastFilter domain.PostFilter
	lastPage   domain.PaginationParams
	lastTerm   string
}

func (f *fakePostService) result() (*domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.post, nil
}

func (f *fakePostService) Create(_ context.Context, actor *domain.User, in domain.PostInput) (*domain.Post, error) {
	f.lastActor, f.lastInput = actor, in
	return f.result()
}

func (f *fakePostService) CreateQuote(_ context.Context, actor *domain.User, in domain.QuoteInput) (*domain.Post, error) {
	f.lastActor, f.lastQuote = actor, in
	return f.result()
}

func (f *fakePostService) CreateLink(_ context.Context, actor *domain.User, in domain.LinkInput) (*domain.Post, error) {
	f.lastActor, f.lastLink = actor, in
	return f.result()
}

func (f *fakePostService) GetByID(_ context.Context, id int64) (*domain.Post, error) {
	f.lastID = id
	return f.result()
}

func (f *fakePostService) GetBySlug(_ context.Context, _ string) (*domain.Post, error) {
	return f.result()
}

func (f *fakePostService) List(_ context.Context, filter domain.PostFilter, p domain.PaginationParams) ([]*domain.Post, error) {
	f.lastFilter, f.lastPage = filter, p
	return f.posts, f.err
}

func (f *fakePostService) Update(_ context.Context, actor *domain.User, id int64, patch domain.PostPatch) (*domain.Post, error) {
	f.lastActor, f.lastID, f.lastPatch = actor, id, patch
	return f.result()
}

func (f *fakePostService) Delete(_ context.Context, actor *domain.User, id int64) error {
	f.lastActor, f.lastID = actor, id
	return f.err
}

func (f *fakePostService) Search(_ context.Context, term string) ([]*domain.Post, error) {
	f.lastTerm = term
	return f.posts, f.err
}
