package ws

import (
	"context"

	"github.com/tailview/community-service/internal/domain"
	"github.com/tailview/community-service/internal/metrics"
	"github.com/tailview/community-service/internal/presence"
)

// PresenceRegistry is the write side of the presence registry.
type PresenceRegistry interface {
	Touch(ctx context.Context, id string, upd presence.Update) error
	Remove(ctx context.Context, id string) error
}

// PresenceNotifier pushes the refreshed presence list to live subscribers.
type PresenceNotifier interface {
	PresenceChanged(ctx context.Context)
}

// Gateway holds the connection lifecycle logic, independent of the wire
// transport. The websocket handler drives it; tests drive it directly.
type Gateway struct {
	registry PresenceRegistry
	notifier PresenceNotifier
}

func NewGateway(registry PresenceRegistry, notifier PresenceNotifier) *Gateway {
	return &Gateway{registry: registry, notifier: notifier}
}

// Subscribe marks the visitor present and announces the change.
func (g *Gateway) Subscribe(ctx context.Context, v domain.VisitorIdentity) error {
	if err := g.registry.Touch(ctx, v.UID, presence.Update{Name: v.DisplayName}); err != nil {
		return err
	}
	g.notifier.PresenceChanged(ctx)
	return nil
}

// Heartbeat refreshes the visitor's sliding TTL and re-announces presence,
// which also repairs entries that lapsed while the connection was healthy.
func (g *Gateway) Heartbeat(ctx context.Context, v domain.VisitorIdentity) error {
	if err := g.registry.Touch(ctx, v.UID, presence.Update{Name: v.DisplayName}); err != nil {
		return err
	}
	metrics.RecordHeartbeat()
	g.notifier.PresenceChanged(ctx)
	return nil
}

// Unsubscribe removes the visitor and announces the change. Called on clean
// disconnects; abandoned connections age out via the TTL instead.
func (g *Gateway) Unsubscribe(ctx context.Context, v domain.VisitorIdentity) error {
	if err := g.registry.Remove(ctx, v.UID); err != nil {
		return err
	}
	g.notifier.PresenceChanged(ctx)
	return nil
}
