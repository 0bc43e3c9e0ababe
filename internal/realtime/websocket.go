package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"pulasa-client/monitoring"
)

type WebsocketConfig struct {
	URL string
	// Reconnect backoff bounds.
	BackoffMin time.Duration
	BackoffMax time.Duration
	// PingInterval keeps the connection alive through idle proxies.
	PingInterval time.Duration
}

// WebsocketChannel implements Channel over a raw websocket carrying the same
// envelope frames in both directions.
type WebsocketChannel struct {
	cfg   WebsocketConfig
	creds Credentials

	rooms  *roomSet
	events chan Event

	mu     sync.Mutex // guards conn writes and closed
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

func NewWebsocketChannel(cfg WebsocketConfig, creds Credentials) *WebsocketChannel {
	if cfg.BackoffMin <= 0 {
		cfg.BackoffMin = time.Second
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 30 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 25 * time.Second
	}
	return &WebsocketChannel{
		cfg:    cfg,
		creds:  creds,
		rooms:  newRoomSet(),
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
}

// Connect dials and registers the user. A failure is not fatal: the channel
// keeps retrying in the background, and the Reconnected signal makes the
// stores refetch whatever was missed while offline.
func (c *WebsocketChannel) Connect(ctx context.Context) error {
	if err := c.dial(ctx); err != nil {
		log.WithError(err).Warn("realtime: connect failed, retrying in background")
	} else if err := c.register(); err != nil {
		log.WithError(err).Warn("realtime: register failed, retrying in background")
		c.dropConn()
	}
	go c.run(ctx)
	return nil
}

// dropConn closes a half-set-up connection so the reconnect loop starts
// from a clean dial.
func (c *WebsocketChannel) dropConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *WebsocketChannel) Events() <-chan Event { return c.events }

func (c *WebsocketChannel) JoinAuction(_ context.Context, auctionID string) error {
	c.rooms.add(auctionID)
	return c.send(emitJoinAuction, map[string]any{"auction_id": auctionID})
}

func (c *WebsocketChannel) LeaveAuction(_ context.Context, auctionID string) error {
	c.rooms.remove(auctionID)
	return c.send(emitLeaveAuction, map[string]any{"auction_id": auctionID})
}

func (c *WebsocketChannel) Close(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = c.conn.Close()
	}
	return nil
}

func (c *WebsocketChannel) dial(ctx context.Context) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.creds.Token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return fmt.Errorf("realtime: dial %s: %w", c.cfg.URL, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

func (c *WebsocketChannel) register() error {
	return c.send(emitRegisterUser, map[string]any{"token": c.creds.Token})
}

func (c *WebsocketChannel) send(name string, data map[string]any) error {
	data["user_id"] = c.creds.UserID
	payload, err := json.Marshal(map[string]any{"event": name, "data": data})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil {
		return fmt.Errorf("realtime: not connected")
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// run reads frames until the connection drops, then reconnects with
// exponential backoff, rejoining tracked rooms and signalling Reconnected
// so the stores refetch state missed while offline.
func (c *WebsocketChannel) run(ctx context.Context) {
	pinger := time.NewTicker(c.cfg.PingInterval)
	defer pinger.Stop()

	go func() {
		for {
			select {
			case <-pinger.C:
				c.mu.Lock()
				if c.conn != nil && !c.closed {
					_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				}
				c.mu.Unlock()
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		c.readLoop()

		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		if !c.reconnect(ctx) {
			return
		}
		monitoring.TrackReconnect("websocket")
		c.deliver(Event{Type: EventReconnected})
	}
}

func (c *WebsocketChannel) readLoop() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				log.WithError(err).Warn("realtime: connection lost")
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			continue
		}
		ev, err := DecodeEvent(env.Event, env.Data)
		if err != nil {
			log.WithError(err).Debug("realtime: skipping frame")
			continue
		}
		c.deliver(ev)
	}
}

func (c *WebsocketChannel) reconnect(ctx context.Context) bool {
	backoff := c.cfg.BackoffMin
	for {
		select {
		case <-c.done:
			return false
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		if err := c.dial(ctx); err != nil {
			log.WithError(err).Warn("realtime: reconnect failed")
			backoff *= 2
			if backoff > c.cfg.BackoffMax {
				backoff = c.cfg.BackoffMax
			}
			continue
		}

		if err := c.register(); err != nil {
			log.WithError(err).Warn("realtime: register after reconnect failed")
			c.dropConn()
			continue
		}
		for _, id := range c.rooms.list() {
			if err := c.send(emitJoinAuction, map[string]any{"auction_id": id}); err != nil {
				log.WithError(err).WithField("auction_id", id).Warn("realtime: rejoin failed")
			}
		}
		log.Info("realtime: reconnected")
		return true
	}
}

func (c *WebsocketChannel) deliver(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	default:
		log.WithField("type", ev.Type).Warn("realtime: event buffer full, dropping")
	}
}
