package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelToTopicAndKey(t *testing.T) {
	topic, key, err := channelToTopicAndKey(PostChannel(42))
	require.NoError(t, err)
	assert.Equal(t, TopicPosts, topic)
	assert.Equal(t, "42", key)

	_, _, err = channelToTopicAndKey("no-separator")
	assert.Error(t, err)
	_, _, err = channelToTopicAndKey("birdup-posts:")
	assert.Error(t, err)
}

func TestPatternToTopic(t *testing.T) {
	topic, err := patternToTopic(TopicPattern(TopicFollows))
	require.NoError(t, err)
	assert.Equal(t, TopicFollows, topic)

	_, err = patternToTopic("birdup-*:1")
	assert.Error(t, err)
}

func TestNewEventCarriesChannelAndPayload(t *testing.T) {
	group := uint(9)
	ev, err := NewEvent(EventFollowCreated, FollowChannel(3), FollowPayload{FollowerID: 3, GroupID: &group})
	require.NoError(t, err)
	assert.Equal(t, EventFollowCreated, ev.Type)
	assert.Equal(t, "birdup-follows:3", ev.Key)
	assert.False(t, ev.Timestamp.IsZero())

	var p FollowPayload
	require.NoError(t, ev.UnmarshalPayload(&p))
	assert.Equal(t, uint(3), p.FollowerID)
	assert.Nil(t, p.AuthorID)
	require.NotNil(t, p.GroupID)
	assert.Equal(t, group, *p.GroupID)

	_, err = NewEvent(EventPostCreated, PostChannel(1), func() {})
	assert.Error(t, err)
}

func receive(t *testing.T, ch <-chan *Event) *Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestMemoryPubSubPatternDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewMemoryPubSub()
	defer bus.Close()

	posts, err := bus.SubscribePattern(ctx, TopicPattern(TopicPosts))
	require.NoError(t, err)
	one, err := bus.Subscribe(ctx, FollowChannel(1))
	require.NoError(t, err)

	ev, err := NewEvent(EventPostCreated, "7", PostPayload{PostID: 3, AuthorID: 7})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, PostChannel(7), ev))

	got := receive(t, posts)
	assert.Equal(t, EventPostCreated, got.Type)
	var payload PostPayload
	require.NoError(t, got.UnmarshalPayload(&payload))
	assert.Equal(t, uint(3), payload.PostID)

	// Other follower keys do not reach the exact subscription.
	ev, err = NewEvent(EventFollowCreated, "2", FollowPayload{FollowerID: 2})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, FollowChannel(2), ev))
	select {
	case <-one:
		t.Fatal("unexpected delivery")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryPubSubUnsubscribeClosesChannel(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryPubSub()

	ch, err := bus.Subscribe(ctx, CommentChannel(1))
	require.NoError(t, err)
	require.NoError(t, bus.Unsubscribe(ctx, CommentChannel(1)))

	_, open := <-ch
	assert.False(t, open)
}
