package service

import (
	"context"

	pkglog "github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/pubsub"
)

// publish sends an event after a committed write. Delivery is best-effort:
// the write already happened, so failures are logged and swallowed.
func publish(ctx context.Context, pub pubsub.Publisher, channel, eventType string, payload interface{}) {
	if pub == nil {
		return
	}
	l := pkglog.Ctx(ctx)

	event, err := pubsub.NewEvent(eventType, channel, payload)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldEvent, eventType).Msg("failed to build event")
		return
	}
	if err := pub.Publish(ctx, channel, event); err != nil {
		l.Warn().Err(err).
			Str(pkglog.FieldChannel, channel).
			Str(pkglog.FieldEvent, eventType).
			Msg("failed to publish event")
	}
}

func uintPtr(v uint) *uint { return &v }
