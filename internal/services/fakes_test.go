package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"chyrp/internal/cascade"
	"chyrp/internal/domain"
)

const testTimeout = 5 * time.Second

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func adminUser() *domain.User {
	return &domain.User{ID: 1, Login: "admin", Email: "admin@example.com", IsActive: true,
		Group: &domain.Group{ID: 1, Name: domain.GroupAdmin, Permissions: domain.AdminPermissions}}
}

func memberUser(id int64) *domain.User {
	return &domain.User{ID: id, Login: "member", Email: "member@example.com", IsActive: true,
		Group: &domain.Group{ID: 2, Name: domain.GroupMember, Permissions: domain.MemberPermissions}}
}

// fakePostRepo is an in-memory PostRepository for tests.
type fakePostRepo struct {
	byID     map[int64]*domain.Post
	postTags map[int64][]int64
	postCats map[int64][]int64
	nextID   int64
	err      error // if set, every call returns this error
	queries  []cascade.Query
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		byID:     make(map[int64]*domain.Post),
		postTags: make(map[int64][]int64),
		postCats: make(map[int64][]int64),
		nextID:   1,
	}
}

func (f *fakePostRepo) add(p *domain.Post) *domain.Post {
	if p.ID == 0 {
		p.ID = f.nextID
	}
	if p.ID >= f.nextID {
		f.nextID = p.ID + 1
	}
	if p.Status == "" {
		p.Status = domain.PostStatusPublic
	}
	if p.ContentType == "" {
		p.ContentType = domain.ContentTypePost
	}
	f.byID[p.ID] = p
	return p
}

func (f *fakePostRepo) Create(ctx context.Context, p *domain.Post) error {
	if f.err != nil {
		return f.err
	}
	for _, other := range f.byID {
		if other.Clean == p.Clean {
			return domain.ErrConflict
		}
	}
	f.add(p)
	return nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakePostRepo) GetBySlug(ctx context.Context, clean string) (*domain.Post, error) {
	for _, p := range f.byID {
		if p.Clean == clean {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePostRepo) matches(p *domain.Post, filter domain.PostFilter) bool {
	switch {
	case filter.Status != "" && p.Status != filter.Status:
		return false
	case filter.ContentType != "" && p.ContentType != filter.ContentType:
		return false
	case filter.UserID != 0 && p.UserID != filter.UserID:
		return false
	case filter.TagID != 0 && !slices.Contains(f.postTags[p.ID], filter.TagID):
		return false
	case filter.CategoryID != 0 && !slices.Contains(f.postCats[p.ID], filter.CategoryID):
		return false
	}
	return true
}

func (f *fakePostRepo) List(ctx context.Context, filter domain.PostFilter, p domain.PaginationParams) ([]*domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Post
	for _, post := range f.byID {
		if f.matches(post, filter) {
			out = append(out, post)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Post) int { return int(b.ID - a.ID) })
	if p.Skip >= len(out) {
		return []*domain.Post{}, nil
	}
	out = out[p.Skip:]
	if len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

func (f *fakePostRepo) ListKeyset(ctx context.Context, filter domain.PostFilter, q cascade.Query) ([]*domain.Post, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Post
	for _, p := range f.byID {
		if !f.matches(p, filter) {
			continue
		}
		if q.After != nil && !q.After.Admits(p.CascadePosition(q.Key)) {
			continue
		}
		out = append(out, p)
	}
	kind := q.Key.Kind()
	slices.SortFunc(out, func(a, b *domain.Post) int {
		c := cascade.Compare(kind, a.CascadePosition(q.Key), b.CascadePosition(q.Key))
		if q.Order == cascade.Desc {
			return -c
		}
		return c
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakePostRepo) Update(ctx context.Context, p *domain.Post) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[p.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range f.byID {
		if other.ID != p.ID && other.Clean == p.Clean {
			return domain.ErrConflict
		}
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePostRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePostRepo) Search(ctx context.Context, term string, limit int) ([]*domain.Post, error) {
	var out []*domain.Post
	term = strings.ToLower(term)
	for _, p := range f.byID {
		if p.Status == domain.PostStatusPublic &&
			(strings.Contains(strings.ToLower(p.Title), term) || strings.Contains(strings.ToLower(p.Body), term)) {
			out = append(out, p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeMediaRepo is an in-memory MediaRepository for tests.
type fakeMediaRepo struct {
	byID   map[int64]*domain.Media
	refs   map[int64]int
	nextID int64
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{byID: make(map[int64]*domain.Media), refs: make(map[int64]int), nextID: 1}
}

func (f *fakeMediaRepo) Create(ctx context.Context, m *domain.Media) error {
	m.ID = f.nextID
	f.nextID++
	f.byID[m.ID] = m
	return nil
}

func (f *fakeMediaRepo) GetByID(ctx context.Context, id int64) (*domain.Media, error) {
	if m, ok := f.byID[id]; ok {
		return m, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMediaRepo) ListByUser(ctx context.Context, userID int64, p domain.PaginationParams) ([]*domain.Media, error) {
	out := []*domain.Media{}
	for _, m := range f.byID {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMediaRepo) CountReferences(ctx context.Context, id int64) (int, error) {
	return f.refs[id], nil
}

func (f *fakeMediaRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeMediaRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	var n int64
	for id := range f.byID {
		if f.refs[id] == 0 {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID   map[int64]*domain.User
	nextID int64
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[int64]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.err != nil {
		return f.err
	}
	u.ID = f.nextID
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Login == login {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeGroupRepo is an in-memory GroupRepository for tests.
type fakeGroupRepo struct {
	groups []*domain.Group
}

func (f *fakeGroupRepo) Create(ctx context.Context, g *domain.Group) error {
	for _, other := range f.groups {
		if other.Name == g.Name {
			return domain.ErrConflict
		}
	}
	g.ID = int64(len(f.groups) + 1)
	f.groups = append(f.groups, g)
	return nil
}

func (f *fakeGroupRepo) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	for _, g := range f.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGroupRepo) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Group, error) {
	return f.groups, nil
}

func (f *fakeGroupRepo) Count(ctx context.Context) (int, error) {
	return len(f.groups), nil
}

// fakeTagRepo is an in-memory TagRepository for tests.
type fakeTagRepo struct {
	byID     map[int64]*domain.Tag
	posts    *fakePostRepo
	nextID   int64
	popular  []*domain.Tag
	popCalls int
}

func newFakeTagRepo(posts *fakePostRepo) *fakeTagRepo {
	return &fakeTagRepo{byID: make(map[int64]*domain.Tag), posts: posts, nextID: 1}
}

func (f *fakeTagRepo) Create(ctx context.Context, t *domain.Tag) error {
	t.ID = f.nextID
	f.nextID++
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTagRepo) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTagRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	for _, t := range f.byID {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTagRepo) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	for _, t := range f.byID {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTagRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := f.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (f *fakeTagRepo) List(ctx context.Context, search string, p domain.PaginationParams) ([]*domain.Tag, error) {
	out := []*domain.Tag{}
	for _, t := range f.byID {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(search)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTagRepo) Popular(ctx context.Context, limit int) ([]*domain.Tag, error) {
	f.popCalls++
	return f.popular, nil
}

func (f *fakeTagRepo) Update(ctx context.Context, t *domain.Tag) error {
	if _, ok := f.byID[t.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTagRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTagRepo) AttachToPost(ctx context.Context, postID, tagID int64) error {
	if !slices.Contains(f.posts.postTags[postID], tagID) {
		f.posts.postTags[postID] = append(f.posts.postTags[postID], tagID)
	}
	return nil
}

func (f *fakeTagRepo) DetachFromPost(ctx context.Context, postID, tagID int64) error {
	i := slices.Index(f.posts.postTags[postID], tagID)
	if i < 0 {
		return domain.ErrNotFound
	}
	f.posts.postTags[postID] = slices.Delete(f.posts.postTags[postID], i, i+1)
	return nil
}

// fakeCategoryRepo is an in-memory CategoryRepository for tests.
type fakeCategoryRepo struct {
	byID     map[int64]*domain.Category
	posts    *fakePostRepo
	nextID   int64
	listAlls int
}

func newFakeCategoryRepo(posts *fakePostRepo) *fakeCategoryRepo {
	return &fakeCategoryRepo{byID: make(map[int64]*domain.Category), posts: posts, nextID: 1}
}

func (f *fakeCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	c.ID = f.nextID
	f.nextID++
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	if c, ok := f.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, c := range f.byID {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, c := range f.byID {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := f.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (f *fakeCategoryRepo) List(ctx context.Context, filter domain.CategoryFilter, p domain.PaginationParams) ([]*domain.Category, error) {
	all, err := f.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []*domain.Category{}
	for _, c := range all {
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.ParentID != nil {
			if *filter.ParentID == 0 && c.ParentID != nil {
				continue
			}
			if *filter.ParentID != 0 && (c.ParentID == nil || *c.ParentID != *filter.ParentID) {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) ListAll(ctx context.Context) ([]*domain.Category, error) {
	f.listAlls++
	out := []*domain.Category{}
	for id := int64(1); id < f.nextID; id++ {
		if c, ok := f.byID[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) Popular(ctx context.Context, limit int) ([]*domain.Category, error) {
	return f.ListAll(ctx)
}

func (f *fakeCategoryRepo) CountChildren(ctx context.Context, id int64) (int, error) {
	n := 0
	for _, c := range f.byID {
		if c.ParentID != nil && *c.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	if _, ok := f.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCategoryRepo) AttachToPost(ctx context.Context, postID, categoryID int64) error {
	if !slices.Contains(f.posts.postCats[postID], categoryID) {
		f.posts.postCats[postID] = append(f.posts.postCats[postID], categoryID)
	}
	return nil
}

func (f *fakeCategoryRepo) DetachFromPost(ctx context.Context, postID, categoryID int64) error {
	i := slices.Index(f.posts.postCats[postID], categoryID)
	if i < 0 {
		return domain.ErrNotFound
	}
	f.posts.postCats[postID] = slices.Delete(f.posts.postCats[postID], i, i+1)
	return nil
}

// fakeCommentRepo is an in-memory CommentRepository for tests.
type fakeCommentRepo struct {
	byID   map[int64]*domain.Comment
	nextID int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{byID: make(map[int64]*domain.Comment), nextID: 1}
}

func (f *fakeCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	c.ID = f.nextID
	f.nextID++
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCommentRepo) ListApprovedByPost(ctx context.Context, postID int64) ([]*domain.Comment, error) {
	out := []*domain.Comment{}
	for id := int64(1); id < f.nextID; id++ {
		if c, ok := f.byID[id]; ok && c.PostID == postID && c.IsApproved {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) Update(ctx context.Context, c *domain.Comment) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeViewRepo records arguments and returns canned answers.
type fakeViewRepo struct {
	views      []*domain.PostView
	posts      *fakePostRepo
	sinceArgs  []time.Time
	countSince map[time.Time]int64
	unique     int64
	popular    []*domain.Post
	popSince   []*time.Time
	totalPosts int64
	totalViews int64
}

func (f *fakeViewRepo) RecordIfNew(ctx context.Context, postID int64, v domain.Viewer, since time.Time) (*domain.PostView, error) {
	f.sinceArgs = append(f.sinceArgs, since)
	for _, pv := range f.views {
		sameViewer := (v.UserID != 0 && pv.UserID != nil && *pv.UserID == v.UserID) ||
			(v.UserID == 0 && pv.IPAddress == v.IPAddress)
		if pv.PostID == postID && sameViewer && pv.ViewedAt.After(since) {
			return f.views[len(f.views)-1], nil
		}
	}
	pv := &domain.PostView{ID: int64(len(f.views) + 1), PostID: postID, IPAddress: v.IPAddress, ViewedAt: time.Now().UTC()}
	if v.UserID != 0 {
		uid := v.UserID
		pv.UserID = &uid
	}
	f.views = append(f.views, pv)
	f.posts.byID[postID].ViewCount++
	return pv, nil
}

func (f *fakeViewRepo) ListByPost(ctx context.Context, postID int64, p domain.PaginationParams) ([]*domain.PostView, error) {
	return f.views, nil
}

func (f *fakeViewRepo) CountSince(ctx context.Context, postID int64, since time.Time) (int64, error) {
	return f.countSince[since], nil
}

func (f *fakeViewRepo) CountUnique(ctx context.Context, postID int64) (int64, error) {
	return f.unique, nil
}

func (f *fakeViewRepo) CountAllSince(ctx context.Context, since time.Time) (int64, error) {
	return f.countSince[since], nil
}

func (f *fakeViewRepo) Popular(ctx context.Context, since *time.Time, p domain.PaginationParams) ([]*domain.Post, error) {
	f.popSince = append(f.popSince, since)
	if len(f.popular) > p.Limit {
		return f.popular[:p.Limit], nil
	}
	return f.popular, nil
}

func (f *fakeViewRepo) Totals(ctx context.Context) (int64, int64, error) {
	return f.totalPosts, f.totalViews, nil
}

// fakeInteractionRepo keeps toggled relations in sets.
type fakeInteractionRepo struct {
	likes     map[[2]int64]bool
	bookmarks map[[2]int64]bool
	favorites map[[2]int64]bool
}

func newFakeInteractionRepo() *fakeInteractionRepo {
	return &fakeInteractionRepo{
		likes:     make(map[[2]int64]bool),
		bookmarks: make(map[[2]int64]bool),
		favorites: make(map[[2]int64]bool),
	}
}

func toggle(set map[[2]int64]bool, a, b int64) bool {
	k := [2]int64{a, b}
	if set[k] {
		delete(set, k)
		return false
	}
	set[k] = true
	return true
}

func (f *fakeInteractionRepo) ToggleLike(ctx context.Context, userID, postID int64) (bool, error) {
	return toggle(f.likes, userID, postID), nil
}

func (f *fakeInteractionRepo) CountLikes(ctx context.Context, postID int64) (int64, error) {
	var n int64
	for k := range f.likes {
		if k[1] == postID {
			n++
		}
	}
	return n, nil
}

func (f *fakeInteractionRepo) ToggleBookmark(ctx context.Context, userID, postID int64) (bool, error) {
	return toggle(f.bookmarks, userID, postID), nil
}

func (f *fakeInteractionRepo) ToggleFavorite(ctx context.Context, userID, writerID int64) (bool, error) {
	return toggle(f.favorites, userID, writerID), nil
}

// fakeCache is an in-memory domain.Cache that ignores TTLs.
type fakeCache struct {
	data    map[string][]byte
	deleted []string
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	f.deleted = append(f.deleted, keys...)
	return nil
}

// fakeEmailService records notifications.
type fakeEmailService struct {
	sent []*domain.CommentNotificationEmailData
	err  error
}

func (f *fakeEmailService) SendCommentNotification(ctx context.Context, data *domain.CommentNotificationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error)              { return "salt", nil }
func (fakePasswordHasher) Hash(salt, password string) (string, error) { return "hash-" + salt + password, nil }
func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer returns a predictable token.
type fakeTokenIssuer struct {
	issuedFor []int64
}

func (f *fakeTokenIssuer) Issue(userID int64, login string, expiry time.Duration) (string, error) {
	f.issuedFor = append(f.issuedFor, userID)
	return "token-" + login, nil
}
