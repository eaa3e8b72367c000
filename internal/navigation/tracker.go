package navigation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wms/internal/models"
)

const (
	// Time allowed to write a frame to the server
	writeWait = 10 * time.Second

	// Maximum frame size accepted from the server
	maxMessageSize = 4096
)

// ErrClosed is returned when sending on a closed tracker.
var ErrClosed = errors.New("navigation: tracker closed")

// Frame is the envelope of every websocket message exchanged with the backend.
type Frame struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Tracker streams the driver's position to the backend while navigating.
type Tracker struct {
	conn *websocket.Conn
	log  *zap.Logger

	writeMu sync.Mutex
	frames  chan Frame
	done    chan struct{}
	once    sync.Once
}

// WebsocketURL derives the tracking endpoint from the REST base URL.
func WebsocketURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u = u.JoinPath("ws")
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial opens the tracking connection authenticated with token.
func Dial(ctx context.Context, baseURL, token string, log *zap.Logger) (*Tracker, error) {
	if log == nil {
		log = zap.NewNop()
	}
	endpoint, err := WebsocketURL(baseURL, token)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial tracking socket: %w", err)
	}
	conn.SetReadLimit(maxMessageSize)

	t := &Tracker{
		conn:   conn,
		log:    log,
		frames: make(chan Frame, 16),
		done:   make(chan struct{}),
	}
	go t.readPump()
	log.Info("✅ Tracking connected")
	return t, nil
}

// Frames delivers frames pushed by the server. It is closed when the
// connection ends.
func (t *Tracker) Frames() <-chan Frame { return t.frames }

// Send streams one position update.
func (t *Tracker) Send(u models.LocationUpdate) error {
	if u.Timestamp == 0 {
		u.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return t.write(Frame{Type: "location_update", Timestamp: time.Now().Format(time.RFC3339), Data: data})
}

// Ping asks the server for a pong frame.
func (t *Tracker) Ping() error {
	return t.write(Frame{Type: "ping", Timestamp: time.Now().Format(time.RFC3339)})
}

func (t *Tracker) write(f Frame) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteJSON(f)
}

// Close sends a close frame and releases the connection.
func (t *Tracker) Close() error {
	var err error
	t.once.Do(func() {
		close(t.done)
		t.writeMu.Lock()
		_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = t.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		t.writeMu.Unlock()
		err = t.conn.Close()
		t.log.Info("🔴 Tracking disconnected")
	})
	return err
}

func (t *Tracker) readPump() {
	defer close(t.frames)
	for {
		_, raw, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				t.log.Warn("❌ Tracking socket error", zap.Error(err))
			}
			return
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.log.Debug("Invalid frame", zap.Error(err))
			continue
		}
		select {
		case t.frames <- f:
		case <-t.done:
			return
		default:
			t.log.Debug("Dropping frame, reader is behind", zap.String("type", f.Type))
		}
	}
}
