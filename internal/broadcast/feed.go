package broadcast

import (
	"context"

	"github.com/tailview/community-service/internal/domain"
	"github.com/tailview/community-service/internal/metrics"
	"github.com/tailview/community-service/internal/pkg/logger"
)

// PresenceLister is the slice of the presence registry the broadcaster needs
// to build presence_changed payloads.
type PresenceLister interface {
	Active(ctx context.Context) ([]domain.PresenceEntry, error)
}

// FeedBroadcaster publishes the two logical feed events. Downstream
// consumers re-render from the payloads; rendering is not this layer's
// concern.
type FeedBroadcaster struct {
	broker   *Broker
	presence PresenceLister
}

func NewFeedBroadcaster(broker *Broker, presence PresenceLister) *FeedBroadcaster {
	return &FeedBroadcaster{broker: broker, presence: presence}
}

// DiscussionAdded fans the new discussion out to every feed subscriber.
func (f *FeedBroadcaster) DiscussionAdded(ctx context.Context, d domain.Discussion) {
	f.broker.Publish(TopicFeed, Event{Type: EventDiscussionAdded, Payload: d})
	metrics.RecordBroadcast(EventDiscussionAdded)
}

// PresenceChanged snapshots the active presence set and fans it out. A
// failed snapshot is logged and dropped; presence is best-effort and the
// next heartbeat re-publishes it anyway.
func (f *FeedBroadcaster) PresenceChanged(ctx context.Context) {
	active, err := f.presence.Active(ctx)
	if err != nil {
		log := logger.WithCtx(ctx)
		log.Warn().Err(err).Msg("presence snapshot failed, skipping broadcast")
		return
	}

	f.broker.Publish(TopicPresence, Event{Type: EventPresenceChanged, Payload: active})
	metrics.RecordBroadcast(EventPresenceChanged)
}
