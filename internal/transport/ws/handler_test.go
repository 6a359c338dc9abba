package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailview/community-service/internal/broadcast"
	"github.com/tailview/community-service/internal/domain"
	"github.com/tailview/community-service/internal/infrastructure/memory"
	"github.com/tailview/community-service/internal/middleware"
	"github.com/tailview/community-service/internal/presence"
)

type wsEnv struct {
	srv      *httptest.Server
	registry *presence.Registry
	broker   *broadcast.Broker
	fanout   *broadcast.FeedBroadcaster
}

func newWSEnv(t *testing.T) *wsEnv {
	t.Helper()

	registry := presence.NewRegistry(memory.NewCache())
	broker := broadcast.NewBroker()
	fanout := broadcast.NewFeedBroadcaster(broker, registry)

	handler := NewHandler(NewGateway(registry, fanout), broker, 25*time.Second)
	srv := httptest.NewServer(middleware.Visitor("test-secret", time.Hour, false)(handler))
	t.Cleanup(srv.Close)

	return &wsEnv{srv: srv, registry: registry, broker: broker, fanout: fanout}
}

func (e *wsEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) broadcast.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt broadcast.Event
	require.NoError(t, conn.ReadJSON(&evt))
	return evt
}

func TestHandler_SubscribedIsFirstFrame(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t)

	evt := readEvent(t, conn)
	assert.Equal(t, "subscribed", evt.Type)

	payload, ok := evt.Payload.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 25, payload["heartbeat_interval_seconds"])
}

func TestHandler_ConnectMarksVisitorPresent(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t)
	readEvent(t, conn) // subscribed frame

	active, err := env.registry.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Regexp(t, `^[A-Za-z]+ [A-Za-z]+-[0-9A-F]{2}$`, active[0].Name)
}

func TestHandler_DeliversFeedEvents(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t)
	readEvent(t, conn) // subscribed frame

	env.fanout.DiscussionAdded(context.Background(), domain.Discussion{
		ID:    "live-abc-1234",
		Title: "Broadcast check",
	})

	evt := readEvent(t, conn)
	assert.Equal(t, broadcast.EventDiscussionAdded, evt.Type)

	payload, ok := evt.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "live-abc-1234", payload["id"])
}

func TestHandler_HeartbeatKeepsConnectionAlive(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t)
	readEvent(t, conn) // subscribed frame

	msg, _ := json.Marshal(clientCommand{Action: actionHeartbeat})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))

	// Still present after the heartbeat round-trips.
	require.Eventually(t, func() bool {
		active, err := env.registry.Active(context.Background())
		return err == nil && len(active) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestHandler_UnsubscribeRemovesPresence(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t)
	readEvent(t, conn) // subscribed frame

	msg, _ := json.Marshal(clientCommand{Action: actionUnsubscribe})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))

	require.Eventually(t, func() bool {
		active, err := env.registry.Active(context.Background())
		return err == nil && len(active) == 0
	}, 2*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		return env.broker.SubscriberCount(broadcast.TopicFeed) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestHandler_DisconnectCleansUpSubscriptions(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t)
	readEvent(t, conn) // subscribed frame

	require.Equal(t, 1, env.broker.SubscriberCount(broadcast.TopicFeed))
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return env.broker.SubscriberCount(broadcast.TopicFeed) == 0 &&
			env.broker.SubscriberCount(broadcast.TopicPresence) == 0
	}, 2*time.Second, 20*time.Millisecond)
}
