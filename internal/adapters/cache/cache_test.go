package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chyrp/internal/domain"
)

type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	deleted []string
	err     error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	f.deleted = append(f.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), f.err)
}

func TestRedis_GetSetDelete(t *testing.T) {
	rc := newFakeRedis()
	c := NewRedis(rc, "chyrp")
	ctx := context.Background()

	_, err := c.Get(ctx, "tags:popular")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "tags:popular", []byte(`[1,2]`), 5*time.Minute))
	assert.Equal(t, 5*time.Minute, rc.ttls["chyrp:tags:popular"])

	got, err := c.Get(ctx, "tags:popular")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))

	require.NoError(t, c.Delete(ctx, "tags:popular", "categories:tree"))
	assert.Equal(t, []string{"chyrp:tags:popular", "chyrp:categories:tree"}, rc.deleted)
	require.NoError(t, c.Delete(ctx))
	assert.Len(t, rc.deleted, 2)
}

func TestRedis_Errors(t *testing.T) {
	rc := newFakeRedis()
	rc.err = errors.New("connection refused")
	c := NewRedis(rc, "")
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, rc.err)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)
	assert.ErrorIs(t, c.Set(ctx, "k", []byte("v"), 0), rc.err)
	assert.ErrorIs(t, c.Delete(ctx, "k"), rc.err)
}

func TestLRU_Expiry(t *testing.T) {
	c, err := NewLRU(8)
	require.NoError(t, err)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("b"), 0))

	got, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	_, err = c.Get(ctx, "forever")
	assert.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "forever", "missing"))
	_, err = c.Get(ctx, "forever")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewLRU(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	_, err = c.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	_, err = c.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestNewLRU_RejectsZeroSize(t *testing.T) {
	_, err := NewLRU(0)
	assert.Error(t, err)
}
