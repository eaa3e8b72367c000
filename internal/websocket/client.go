package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wms/internal/database"
	"wms/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 2048
)

// Client represents a WebSocket client connection
type Client struct {
	UserID   string
	DriverID int
	UserRole string
	conn     *websocket.Conn
	hub      *Hub
	send     chan []byte
	repo     database.Repository
	log      *zap.Logger
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewClient creates a new WebSocket client
func NewClient(driverID int, userRole string, conn *websocket.Conn, hub *Hub, repo database.Repository) *Client {
	return &Client{
		UserID:   models.DriverKey(driverID),
		DriverID: driverID,
		UserRole: userRole,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, 256),
		repo:     repo,
		log:      hub.log.With(zap.Int("driver_id", driverID)),
	}
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.markAsDisconnected()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn("WebSocket error", zap.Error(err))
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.log.Debug("Invalid message format", zap.Error(err))
			continue
		}

		switch msg.Type {
		case "ping":
			c.hub.BroadcastToUser(c.UserID, map[string]interface{}{
				"type":      "pong",
				"timestamp": time.Now().Format(time.RFC3339),
			})

		case "location_update":
			c.handleLocationUpdate(msg.Data)
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection.
// Each message goes out as its own frame.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleLocationUpdate stores the driver's position and relays it to admins.
func (c *Client) handleLocationUpdate(data json.RawMessage) {
	var u models.LocationUpdate
	if err := json.Unmarshal(data, &u); err != nil {
		c.log.Debug("❌ Invalid location update", zap.Error(err))
		return
	}
	if u.Latitude < -90 || u.Latitude > 90 || u.Longitude < -180 || u.Longitude > 180 {
		c.log.Debug("❌ Location out of range", zap.Float64("lat", u.Latitude), zap.Float64("lng", u.Longitude))
		return
	}
	u.DriverID = c.DriverID
	if u.Timestamp == 0 {
		u.Timestamp = time.Now().UnixMilli()
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := c.repo.SaveLocation(ctx, u); err != nil {
		c.log.Error("❌ Error saving location", zap.Error(err))
		return
	}

	c.hub.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
		"type": "driver_location_update",
		"data": u,
	})
}

// markAsDisconnected preserves the driver's last position but flags it stale.
func (c *Client) markAsDisconnected() {
	if c.UserRole != models.RoleDriver {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := c.repo.MarkDisconnected(ctx, c.DriverID); err != nil {
		c.log.Error("❌ Error marking driver as disconnected", zap.Error(err))
	}
}
