package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chyrp/internal/domain"
)

// fakeCategoryService implements domain.CategoryService for handler tests.
type fakeCategoryService struct {
	err       error
	tree      []*domain.Category
	lastInput domain.CategoryInput
	lastPatch domain.CategoryPatch
	lastLink  [2]int64
	lastList  domain.CategoryFilter
}

func (f *fakeCategoryService) one(id int64) (*domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Category{ID: id, Name: "News"}, nil
}

func (f *fakeCategoryService) Create(_ context.Context, in domain.CategoryInput) (*domain.Category, error) {
	f.lastInput = in
	return f.one(1)
}

func (f *fakeCategoryService) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	return f.one(id)
}

func (f *fakeCategoryService) GetBySlug(context.Context, string) (*domain.Category, error) {
	return f.one(1)
}

func (f *fakeCategoryService) List(_ context.Context, filter domain.CategoryFilter, _ domain.PaginationParams) ([]*domain.Category, error) {
	f.lastList = filter
	return f.tree, f.err
}

func (f *fakeCategoryService) Tree(context.Context) ([]*domain.Category, error) { return f.tree, f.err }

func (f *fakeCategoryService) Popular(context.Context, int) ([]*domain.Category, error) {
	return f.tree, f.err
}

func (f *fakeCategoryService) ForDropdown(context.Context) ([]*domain.Category, error) {
	return f.tree, f.err
}

func (f *fakeCategoryService) Update(_ context.Context, id int64, patch domain.CategoryPatch) (*domain.Category, error) {
	f.lastPatch = patch
	return f.one(id)
}

func (f *fakeCategoryService) Delete(context.Context, int64) error { return f.err }

func (f *fakeCategoryService) AttachToPost(_ context.Context, _ *domain.User, postID, categoryID int64) (*domain.Post, error) {
	f.lastLink = [2]int64{postID, categoryID}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Post{ID: postID}, nil
}

func (f *fakeCategoryService) DetachFromPost(ctx context.Context, actor *domain.User, postID, categoryID int64) (*domain.Post, error) {
	return f.AttachToPost(ctx, actor, postID, categoryID)
}

func TestCategoryController_Tree(t *testing.T) {
	parent := int64(1)
	fake := &fakeCategoryService{tree: []*domain.Category{
		{ID: 1, Name: "News", Children: []*domain.Category{{ID: 2, Name: "Local", ParentID: &parent}}},
	}}
	rr := httptest.NewRecorder()
	NewCategoryController(testLogger, fake).Tree(rr, httptest.NewRequest(http.MethodGet, "/categories/tree", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var tree []*domain.Category
	require.Nil(t, decode(t, rr, &tree))
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Local", tree[0].Children[0].Name)
}

func ptrInt64(v int64) *int64 { return &v }

func TestCategoryController_ListParentFilter(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantParent *int64
	}{
		{"no filter", "/categories?search=news", http.StatusOK, nil},
		{"roots", "/categories?parent_id=0", http.StatusOK, ptrInt64(0)},
		{"children", "/categories?parent_id=4", http.StatusOK, ptrInt64(4)},
		{"negative", "/categories?parent_id=-2", http.StatusBadRequest, nil},
		{"not numeric", "/categories?parent_id=root", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCategoryService{tree: []*domain.Category{}}
			rr := httptest.NewRecorder()
			NewCategoryController(testLogger, fake).List(rr, httptest.NewRequest(http.MethodGet, tt.query, nil))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, tt.wantParent, fake.lastList.ParentID)
		})
	}
}

func TestCategoryController_CreateUpdate(t *testing.T) {
	fake := &fakeCategoryService{}
	ctrl := NewCategoryController(testLogger, fake)

	rr := httptest.NewRecorder()
	ctrl.Create(rr, httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"Local","parent_id":1}`)))
	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, fake.lastInput.ParentID)
	assert.Equal(t, int64(1), *fake.lastInput.ParentID)

	rr = httptest.NewRecorder()
	ctrl.Create(rr, httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"Local","parent_id":0}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code, "parent_id 0 only means detach on update")

	req := httptest.NewRequest(http.MethodPut, "/categories/2", strings.NewReader(`{"parent_id":0}`))
	req.SetPathValue("categoryID", "2")
	rr = httptest.NewRecorder()
	ctrl.Update(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, fake.lastPatch.ParentID)
	assert.Zero(t, *fake.lastPatch.ParentID)

	fake.err = fmt.Errorf("%w: category cannot be its own parent", domain.ErrInvalidInput)
	req = httptest.NewRequest(http.MethodPut, "/categories/2", strings.NewReader(`{"parent_id":2}`))
	req.SetPathValue("categoryID", "2")
	rr = httptest.NewRecorder()
	ctrl.Update(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCategoryController_DeleteAndAttach(t *testing.T) {
	fake := &fakeCategoryService{err: fmt.Errorf("%w: category has children", domain.ErrConflict)}
	ctrl := NewCategoryController(testLogger, fake)

	req := httptest.NewRequest(http.MethodDelete, "/categories/1", nil)
	req.SetPathValue("categoryID", "1")
	rr := httptest.NewRecorder()
	ctrl.Delete(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)

	fake.err = nil
	req = asUser(httptest.NewRequest(http.MethodPost, "/posts/4/categories/1", nil), member)
	req.SetPathValue("postID", "4")
	req.SetPathValue("categoryID", "1")
	rr = httptest.NewRecorder()
	ctrl.Attach(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, [2]int64{4, 1}, fake.lastLink)
}
