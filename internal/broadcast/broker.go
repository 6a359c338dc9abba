package broadcast

import (
	"sync"
	"sync/atomic"
)

const subscriberBufSize = 64

// Topic names for the community feed channel.
const (
	TopicFeed     = "community_feed"
	TopicPresence = "community_presence"
)

// Event types pushed to subscribers.
const (
	EventDiscussionAdded = "discussion_added"
	EventPresenceChanged = "presence_changed"
)

// Event is one fan-out message. Payload is whatever the publisher attached;
// transports serialize it on the way out.
type Event struct {
	Type    string `json:"event"`
	Payload any    `json:"payload"`
}

// Broker fans events out to all current subscribers of a topic. Delivery is
// fire-and-forget and at-most-once: subscriber channels are buffered and a
// full buffer drops the event for that subscriber only. Late subscribers
// never see past events.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[int64]chan Event
	nextID atomic.Int64
}

func NewBroker() *Broker {
	return &Broker{
		topics: make(map[string]map[int64]chan Event),
	}
}

// Subscribe registers a new subscriber on topic and returns its id and
// receive channel.
func (b *Broker) Subscribe(topic string) (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)

	b.mu.Lock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[int64]chan Event)
		b.topics[topic] = subs
	}
	subs[id] = ch
	b.mu.Unlock()

	return id, ch
}

// Unsubscribe removes the subscriber and closes its channel. Unknown ids are
// a no-op.
func (b *Broker) Unsubscribe(topic string, id int64) {
	b.mu.Lock()
	if subs, ok := b.topics[topic]; ok {
		if ch, ok := subs[id]; ok {
			delete(subs, id)
			close(ch)
		}
		if len(subs) == 0 {
			delete(b.topics, topic)
		}
	}
	b.mu.Unlock()
}

// Publish delivers evt to every current subscriber of topic without
// blocking. Slow subscribers lose events rather than stalling the publisher.
func (b *Broker) Publish(topic string, evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.topics[topic] {
		select {
		case ch <- evt:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers a topic currently has.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
