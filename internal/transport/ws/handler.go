package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tailview/community-service/internal/broadcast"
	"github.com/tailview/community-service/internal/domain"
	"github.com/tailview/community-service/internal/metrics"
	"github.com/tailview/community-service/internal/middleware"
	"github.com/tailview/community-service/internal/pkg/logger"
)

const (
	pingPeriod     = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 4 * 1024
)

// clientCommand is the only inbound frame shape:
// {"action":"heartbeat"} or {"action":"unsubscribe"}
type clientCommand struct {
	Action string `json:"action"`
}

const (
	actionHeartbeat   = "heartbeat"
	actionUnsubscribe = "unsubscribe"
)

// Handler upgrades /ws requests and bridges the connection to the broker and
// the presence gateway. One goroutine reads commands, one writes events.
type Handler struct {
	gateway           *Gateway
	broker            *broadcast.Broker
	heartbeatInterval time.Duration
	upgrader          websocket.Upgrader
}

func NewHandler(gateway *Gateway, broker *broadcast.Broker, heartbeatInterval time.Duration) *Handler {
	return &Handler{
		gateway:           gateway,
		broker:            broker,
		heartbeatInterval: heartbeatInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	visitor, ok := middleware.VisitorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	log := logger.WithCtx(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	metrics.WSConnected()

	if err := h.gateway.Subscribe(r.Context(), visitor); err != nil {
		log.Error().Err(err).Msg("presence subscribe failed")
	}

	feedID, feedCh := h.broker.Subscribe(broadcast.TopicFeed)
	presID, presCh := h.broker.Subscribe(broadcast.TopicPresence)

	c := &client{
		conn:    conn,
		visitor: visitor,
		gateway: h.gateway,
		feedCh:  feedCh,
		presCh:  presCh,
	}

	// The subscribed frame goes out before the write pump starts, so it is
	// always the first frame the client sees.
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteJSON(broadcast.Event{
		Type: "subscribed",
		Payload: map[string]any{
			"heartbeat_interval_seconds": int(h.heartbeatInterval.Seconds()),
		},
	})

	go c.writePump()
	c.readPump(log)

	// The request context is usually gone by now; the teardown writes must
	// still reach the registry.
	h.broker.Unsubscribe(broadcast.TopicFeed, feedID)
	h.broker.Unsubscribe(broadcast.TopicPresence, presID)
	if err := h.gateway.Unsubscribe(context.Background(), visitor); err != nil {
		log.Warn().Err(err).Msg("presence unsubscribe failed")
	}
	metrics.WSDisconnected()
	_ = conn.Close()
}

type client struct {
	conn    *websocket.Conn
	visitor domain.VisitorIdentity
	gateway *Gateway
	feedCh  <-chan broadcast.Event
	presCh  <-chan broadcast.Event
}

// readPump consumes client commands until the connection drops or the client
// asks to leave. Returning triggers the teardown in ServeHTTP.
func (c *client) readPump(log zerolog.Logger) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			continue
		}

		switch cmd.Action {
		case actionHeartbeat:
			if err := c.gateway.Heartbeat(context.Background(), c.visitor); err != nil {
				log.Warn().Err(err).Msg("heartbeat failed")
			}
			// A heartbeat also counts as liveness on the socket itself.
			_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		case actionUnsubscribe:
			return
		}
	}
}

// writePump forwards broker events to the socket and keeps the connection
// alive with pings. It exits when the broker channels close on unsubscribe.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(evt broadcast.Event) bool {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.conn.WriteJSON(evt) == nil
	}

	for {
		select {
		case evt, ok := <-c.feedCh:
			if !ok || !write(evt) {
				return
			}
		case evt, ok := <-c.presCh:
			if !ok || !write(evt) {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
