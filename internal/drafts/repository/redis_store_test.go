package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	err = client.Ping(context.Background()).Err()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisStore_LoadMissingKey(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisStore(client, "", nil)

	drafts, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestRedisStore_LoadCorruptedValue(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, "test:drafts", nil)
	require.NoError(t, mr.Set("test:drafts", `{"not":"a list"}`))

	drafts, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestRedisStore_AppendAndDelete(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, "test:drafts", nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := store.Append(ctx, stampNext(`{"cpu":"X"}`))
		require.NoError(t, err)
		assert.Equal(t, i+1, d.ID)
	}

	removed, err := store.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, removed)

	drafts, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, ids(drafts))

	d, err := store.Append(ctx, stampNext(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 4, d.ID)

	t.Run("delete missing id does not rewrite the key", func(t *testing.T) {
		before, err := mr.Get("test:drafts")
		require.NoError(t, err)

		removed, err := store.Delete(ctx, 42)
		require.NoError(t, err)
		assert.False(t, removed)

		after, err := mr.Get("test:drafts")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestRedisStore_AppendBuildErrorIsReturned(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, "test:drafts", nil)
	boom := &domain.PayloadError{Err: errors.New("boom")}

	_, err := store.Append(context.Background(), func([]domain.Draft) (domain.Draft, error) {
		return domain.Draft{}, boom
	})

	var perr *domain.PayloadError
	require.ErrorAs(t, err, &perr)
	assert.False(t, mr.Exists("test:drafts"))
}

func TestRedisStore_ServerDownIsPersistError(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, "test:drafts", nil)
	mr.Close()

	_, err := store.Append(context.Background(), stampNext(`{}`))
	require.Error(t, err)

	var perr *domain.PersistError
	assert.ErrorAs(t, err, &perr)
	assert.Error(t, store.Ping(context.Background()))
}

func TestRedisStore_ConcurrentAppendsKeepEveryRecord(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisStore(client, "test:drafts", nil)
	ctx := context.Background()

	const writers = 5
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Append(ctx, stampNext(`{}`))
		}()
	}
	wg.Wait()

	drafts, err := store.Load(ctx)
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, d := range drafts {
		assert.False(t, seen[d.ID], "duplicate id %d", d.ID)
		seen[d.ID] = true
	}
	assert.Len(t, drafts, writers)
}

func TestRedisStore_AppendKeepsUnusualRecords(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, "test:drafts", nil)
	ctx := context.Background()
	require.NoError(t, mr.Set("test:drafts", `[{"id":2.0,"stats":{"serial":12345678901234567891}},[1,2]]`))

	d, err := store.Append(ctx, stampNext(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 3, d.ID)

	value, err := mr.Get("test:drafts")
	require.NoError(t, err)
	assert.Contains(t, value, `12345678901234567891`)

	drafts, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 3)
	assert.True(t, drafts[1].Passthrough())
	assert.JSONEq(t, `[1,2]`, mustMarshal(t, drafts[1]))
}
