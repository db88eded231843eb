package consumer

import (
	"context"
	"fmt"

	"github.com/weiawesome/birdup/internal/cache"
	pkglog "github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/pubsub"
)

// Consumer keeps derived state in step with writes: follow events adjust
// cached follower counts and post events drop cached home feed pages.
type Consumer struct {
	sub      pubsub.Subscriber
	counters cache.CounterStore
	feed     FeedInvalidator
	doneCh   chan struct{}
}

// New creates a new event consumer.
func New(sub pubsub.Subscriber, counters cache.CounterStore, feed FeedInvalidator) *Consumer {
	return &Consumer{
		sub:      sub,
		counters: counters,
		feed:     feed,
		doneCh:   make(chan struct{}),
	}
}

// Start subscribes to the follow and post topics and consumes until ctx is
// cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	follows, err := c.sub.SubscribePattern(ctx, pubsub.TopicPattern(pubsub.TopicFollows))
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", pubsub.TopicFollows, err)
	}
	posts, err := c.sub.SubscribePattern(ctx, pubsub.TopicPattern(pubsub.TopicPosts))
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", pubsub.TopicPosts, err)
	}

	l := pkglog.L()
	l.Info().Strs("topics", []string{pubsub.TopicFollows, pubsub.TopicPosts}).Msg("event consumer started")

	go c.consumeLoop(ctx, follows, posts)
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, follows, posts <-chan *pubsub.Event) {
	l := pkglog.L()
	defer close(c.doneCh)

	for follows != nil || posts != nil {
		select {
		case <-ctx.Done():
			l.Info().Msg("event consumer shutting down")
			return
		case ev, ok := <-follows:
			if !ok {
				follows = nil
				continue
			}
			c.process(context.WithoutCancel(ctx), ev)
		case ev, ok := <-posts:
			if !ok {
				posts = nil
				continue
			}
			c.process(context.WithoutCancel(ctx), ev)
		}
	}
}

func (c *Consumer) process(ctx context.Context, ev *pubsub.Event) {
	l := pkglog.L()
	if err := c.HandleEvent(ctx, ev); err != nil {
		l.Error().Err(err).Str(pkglog.FieldEvent, ev.Type).Str("key", ev.Key).Msg("failed to handle event")
	}
}

// HandleEvent applies one event.
func (c *Consumer) HandleEvent(ctx context.Context, ev *pubsub.Event) error {
	l := pkglog.L()

	switch ev.Type {
	case pubsub.EventFollowCreated, pubsub.EventFollowDeleted:
		var p pubsub.FollowPayload
		if err := ev.UnmarshalPayload(&p); err != nil {
			return fmt.Errorf("decode follow payload: %w", err)
		}
		// Group edges have no cached counter.
		if p.AuthorID == nil {
			return nil
		}
		if ev.Type == pubsub.EventFollowCreated {
			return c.counters.CondIncrFollowersCount(ctx, *p.AuthorID)
		}
		return c.counters.CondDecrFollowersCount(ctx, *p.AuthorID)

	case pubsub.EventPostCreated, pubsub.EventPostUpdated, pubsub.EventPostDeleted:
		return c.feed.InvalidateHome(ctx)

	default:
		l.Debug().Str(pkglog.FieldEvent, ev.Type).Msg("ignoring event")
		return nil
	}
}

// Close waits for the consume loop to exit. Cancel the Start context first.
func (c *Consumer) Close() error {
	<-c.doneCh
	return nil
}

var _ EventConsumer = (*Consumer)(nil)
