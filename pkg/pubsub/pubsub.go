// Package pubsub carries domain events between the services that write
// posts and follows and the consumers that keep caches in step. The memory
// driver serves a single process; Redis and Kafka share events across
// replicas.
package pubsub

import "context"

// Publisher publishes an event on a channel built by PostChannel,
// FollowChannel or CommentChannel.
type Publisher interface {
	Publish(ctx context.Context, channel string, event *Event) error
}

// Subscriber delivers events for a channel or a TopicPattern.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan *Event, error)
	SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error)
	Unsubscribe(ctx context.Context, channel string) error
}

type PubSub interface {
	Publisher
	Subscriber
	Close() error
}
