package consumer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/birdup/internal/cache"
	"github.com/weiawesome/birdup/pkg/pubsub"
)

type countingInvalidator struct{ calls atomic.Int32 }

func (c *countingInvalidator) InvalidateHome(context.Context) error {
	c.calls.Add(1)
	return nil
}

func event(t *testing.T, typ, channel string, payload interface{}) *pubsub.Event {
	t.Helper()
	ev, err := pubsub.NewEvent(typ, channel, payload)
	require.NoError(t, err)
	return ev
}

func TestHandleFollowEventsAdjustCachedCounts(t *testing.T) {
	ctx := context.Background()
	counters := cache.NewMemoryCounterStore()
	c := New(pubsub.NewMemoryPubSub(), counters, &countingInvalidator{})

	author := uint(2)
	require.NoError(t, counters.SetFollowersCount(ctx, author, 5))

	created := event(t, pubsub.EventFollowCreated, pubsub.FollowChannel(1), pubsub.FollowPayload{FollowerID: 1, AuthorID: &author})
	require.NoError(t, c.HandleEvent(ctx, created))
	require.NoError(t, c.HandleEvent(ctx, created))

	deleted := event(t, pubsub.EventFollowDeleted, pubsub.FollowChannel(1), pubsub.FollowPayload{FollowerID: 1, AuthorID: &author})
	require.NoError(t, c.HandleEvent(ctx, deleted))

	count, found, err := counters.GetFollowersCount(ctx, author)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(6), count)

	group := uint(9)
	groupEdge := event(t, pubsub.EventFollowCreated, pubsub.FollowChannel(1), pubsub.FollowPayload{FollowerID: 1, GroupID: &group})
	require.NoError(t, c.HandleEvent(ctx, groupEdge))
	_, found, _ = counters.GetFollowersCount(ctx, group)
	assert.False(t, found)
}

func TestHandlePostEventInvalidatesFeed(t *testing.T) {
	inv := &countingInvalidator{}
	c := New(pubsub.NewMemoryPubSub(), cache.NewMemoryCounterStore(), inv)

	ev := event(t, pubsub.EventPostCreated, pubsub.PostChannel(1), pubsub.PostPayload{PostID: 1, AuthorID: 1})
	require.NoError(t, c.HandleEvent(context.Background(), ev))

	comment := event(t, pubsub.EventCommentCreated, pubsub.CommentChannel(1), pubsub.CommentPayload{CommentID: 1, PostID: 1, AuthorID: 1})
	require.NoError(t, c.HandleEvent(context.Background(), comment))

	assert.Equal(t, int32(1), inv.calls.Load())
}

func TestConsumerReceivesPublishedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := pubsub.NewMemoryPubSub()
	inv := &countingInvalidator{}
	c := New(bus, cache.NewMemoryCounterStore(), inv)
	require.NoError(t, c.Start(ctx))

	ev := event(t, pubsub.EventPostDeleted, pubsub.PostChannel(3), pubsub.PostPayload{PostID: 4, AuthorID: 3})
	require.NoError(t, bus.Publish(ctx, pubsub.PostChannel(3), ev))

	assert.Eventually(t, func() bool { return inv.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, c.Close())
}
