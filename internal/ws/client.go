package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum command size allowed from peer.
	maxMessageSize = 512

	// Outbound queue depth per session.
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PresenceSink receives connection lifecycle signals; the redis presence
// tracker implements it.
type PresenceSink interface {
	Connected(ctx context.Context, userID string) error
	Heartbeat(ctx context.Context, userID string) error
	Disconnected(ctx context.Context, userID string) error
}

// command is the only client-initiated frame: explicit room join/leave.
type command struct {
	Op   string `json:"op"`
	Room string `json:"room"`
}

// Client ties a websocket connection to its Session and pumps frames in both
// directions.
type Client struct {
	session  *Session
	conn     *websocket.Conn
	registry *Registry
	presence PresenceSink
	logger   *zap.Logger

	done chan struct{}
}

// ServeWS upgrades an authenticated request to a websocket session. The
// session is unconditionally subscribed to its own user room; every other
// subscription is an explicit client command. Unauthenticated attempts are
// rejected here, at connection time.
func ServeWS(registry *Registry, sink PresenceSink, logger *zap.Logger, c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	uid := userID.(string)
	client := &Client{
		session:  NewSession(uid, sendBuffer),
		conn:     conn,
		registry: registry,
		presence: sink,
		logger:   logger,
		done:     make(chan struct{}),
	}

	registry.Subscribe(client.session, UserRoom(uid))
	if err := sink.Connected(c.Request.Context(), uid); err != nil {
		logger.Warn("presence update failed", zap.String("user_id", uid), zap.Error(err))
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.registry.SessionClosed(c.session)
		close(c.done)
		c.conn.Close()
		if err := c.presence.Disconnected(context.Background(), c.session.UserID); err != nil {
			c.logger.Warn("presence update failed",
				zap.String("user_id", c.session.UserID), zap.Error(err))
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		// The pong proves the client is alive; refresh presence off the
		// read loop so a slow redis never stalls the heartbeat.
		go c.presence.Heartbeat(context.Background(), c.session.UserID)
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket closed unexpectedly",
					zap.String("user_id", c.session.UserID), zap.Error(err))
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.logger.Debug("ignoring malformed command", zap.Error(err))
			continue
		}
		c.handleCommand(cmd)
	}
}

func (c *Client) handleCommand(cmd command) {
	if !ClientJoinable(cmd.Room) {
		c.logger.Debug("rejecting room command",
			zap.String("op", cmd.Op), zap.String("room", cmd.Room))
		return
	}
	switch cmd.Op {
	case "join":
		c.registry.Subscribe(c.session, cmd.Room)
	case "leave":
		c.registry.Unsubscribe(c.session, cmd.Room)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event := <-c.session.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			json.NewEncoder(w).Encode(event)

			// Drain whatever else is already queued into the same frame.
			n := len(c.session.send)
			for range n {
				json.NewEncoder(w).Encode(<-c.session.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
