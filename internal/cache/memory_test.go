package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/birdup/internal/domain"
)

func TestMemoryCounterStoreConditionalUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCounterStore()

	// Uncached counts are never seeded by increments.
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
}

func TestMemoryCounterStoreHotKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCounterStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordAccess(ctx, 7))
	}
	require.NoError(t, s.RecordAccess(ctx, 3))
	require.NoError(t, s.RecordAccess(ctx, 3))
	require.NoError(t, s.RecordAccess(ctx, 9))

	top, err := s.GetTopHotKeys(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{7, 3}, top)

	require.NoError(t, s.ResetHotKeyScores(ctx))
	top, err = s.GetTopHotKeys(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestMemoryFeedCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryFeedCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.GetHomePage(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrCacheMiss)

	page := &FeedPage{Posts: []domain.Post{{ID: 1, Text: "hi"}}, Total: 1, Window: domain.Window{Limit: 10}}
	require.NoError(t, c.SetHomePage(ctx, 1, 10, page, time.Minute))

	got, err := c.GetHomePage(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Total)
	assert.Equal(t, "hi", got.Posts[0].Text)

	now = now.Add(2 * time.Minute)
	_, err = c.GetHomePage(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.SetHomePage(ctx, 1, 10, page, time.Minute))
	require.NoError(t, c.InvalidateHome(ctx))
	_, err = c.GetHomePage(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
