package consumer

import "context"

// FeedInvalidator drops cached feed pages.
type FeedInvalidator interface {
	InvalidateHome(ctx context.Context) error
}

// EventConsumer manages the consumer lifecycle.
type EventConsumer interface {
	Start(ctx context.Context) error
	Close() error
}
