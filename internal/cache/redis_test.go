package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/birdup/internal/domain"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisFeedCacheInvalidateDropsIndexedPages(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewRedisFeedCache(client)

	page := &FeedPage{Posts: []domain.Post{{ID: 1, Text: "hi"}}, Total: 1, Window: domain.Window{Limit: 10}}
	for p := 1; p <= 3; p++ {
		require.NoError(t, c.SetHomePage(ctx, p, 10, page, time.Minute))
	}

	got, err := c.GetHomePage(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Posts[0].Text)

	require.NoError(t, c.InvalidateHome(ctx))
	for p := 1; p <= 3; p++ {
		_, err := c.GetHomePage(ctx, p, 10)
		assert.ErrorIs(t, err, ErrCacheMiss)
	}
	assert.False(t, mr.Exists(homeFeedIndexKey))

	// A page stored after invalidation is indexed again and dropped by the next one.
	require.NoError(t, c.SetHomePage(ctx, 1, 10, page, time.Minute))
	members, err := mr.Members(homeFeedIndexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{homeFeedKey(1, 10)}, members)

	require.NoError(t, c.InvalidateHome(ctx))
	assert.False(t, mr.Exists(homeFeedKey(1, 10)))

	// Invalidating an empty cache is fine.
	require.NoError(t, c.InvalidateHome(ctx))
}

func TestRedisCounterStoreConditionalUpdates(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)
	s := NewRedisCounterStore(client)

	require.NoError(t, s.CondIncrFollowersCount(ctx, 1))
	_, found, err := s.GetFollowersCount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetFollowersCount(ctx, 1, 0))
	require.NoError(t, s.CondDecrFollowersCount(ctx, 1))
	require.NoError(t, s.CondIncrFollowersCount(ctx, 1))
	require.NoError(t, s.CondIncrFollowersCount(ctx, 1))

	count, found, err := s.GetFollowersCount(ctx, 1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), count)

	require.NoError(t, s.RecordAccess(ctx, 7))
	require.NoError(t, s.RecordAccess(ctx, 7))
	require.NoError(t, s.RecordAccess(ctx, 3))
	top, err := s.GetTopHotKeys(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{7, 3}, top)

	require.NoError(t, s.ResetHotKeyScores(ctx))
	top, err = s.GetTopHotKeys(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
