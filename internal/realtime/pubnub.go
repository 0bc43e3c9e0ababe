package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	pubnub "github.com/pubnub/go/v7"
	log "github.com/sirupsen/logrus"

	"pulasa-client/monitoring"
)

type PubNubConfig struct {
	SubscribeKey string
	PublishKey   string
	// ControlChannel receives client identity registrations.
	ControlChannel string
}

// PubNubChannel implements Channel over PubNub. The personal channel
// "user-<id>" carries events addressed to this user (outbid, auctionWon);
// auction rooms "auction-<id>" carry room-scoped events (newBid,
// auctionEnded).
type PubNubChannel struct {
	cfg   PubNubConfig
	creds Credentials

	pn       *pubnub.PubNub
	listener *pubnub.Listener
	rooms    *roomSet
	events   chan Event

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewPubNubChannel(cfg PubNubConfig, creds Credentials) *PubNubChannel {
	if cfg.ControlChannel == "" {
		cfg.ControlChannel = "presence"
	}
	return &PubNubChannel{
		cfg:    cfg,
		creds:  creds,
		rooms:  newRoomSet(),
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
}

func (c *PubNubChannel) Connect(ctx context.Context) error {
	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(c.creds.UserID))
	pnCfg.SubscribeKey = c.cfg.SubscribeKey
	pnCfg.PublishKey = c.cfg.PublishKey

	c.pn = pubnub.NewPubNub(pnCfg)
	c.listener = pubnub.NewListener()
	c.pn.AddListener(c.listener)

	go c.processSubscription(ctx)

	c.pn.Subscribe().
		Channels([]string{c.personalChannel()}).
		Execute()

	return nil
}

func (c *PubNubChannel) Events() <-chan Event { return c.events }

func (c *PubNubChannel) JoinAuction(ctx context.Context, auctionID string) error {
	c.rooms.add(auctionID)
	c.pn.Subscribe().
		Channels([]string{roomChannel(auctionID)}).
		Execute()
	return c.emit(ctx, emitJoinAuction, map[string]any{"auction_id": auctionID})
}

func (c *PubNubChannel) LeaveAuction(ctx context.Context, auctionID string) error {
	c.rooms.remove(auctionID)
	c.pn.Unsubscribe().
		Channels([]string{roomChannel(auctionID)}).
		Execute()
	return c.emit(ctx, emitLeaveAuction, map[string]any{"auction_id": auctionID})
}

func (c *PubNubChannel) Close(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	if c.pn != nil {
		c.pn.UnsubscribeAll()
		c.pn.Destroy()
	}
	return nil
}

func (c *PubNubChannel) personalChannel() string {
	return fmt.Sprintf("user-%s", c.creds.UserID)
}

func roomChannel(auctionID string) string {
	return fmt.Sprintf("auction-%s", auctionID)
}

// emit publishes a client event on the control channel, mirroring the
// registerUser/joinAuction/leaveAuction messages the server expects.
func (c *PubNubChannel) emit(_ context.Context, name string, data map[string]any) error {
	data["user_id"] = c.creds.UserID
	_, _, err := c.pn.Publish().
		Channel(c.cfg.ControlChannel).
		Message(map[string]any{"event": name, "data": data}).
		Execute()
	if err != nil {
		return fmt.Errorf("realtime: publish %s: %w", name, err)
	}
	return nil
}

func (c *PubNubChannel) processSubscription(ctx context.Context) {
	for {
		select {
		case st := <-c.listener.Status:
			switch st.Category {
			case pubnub.PNConnectedCategory:
				log.WithField("user_id", c.creds.UserID).Info("realtime: connected")
				if err := c.emit(ctx, emitRegisterUser, map[string]any{"token": c.creds.Token}); err != nil {
					log.WithError(err).Warn("realtime: registerUser failed")
				}

			case pubnub.PNReconnectedCategory:
				log.Info("realtime: reconnected")
				monitoring.TrackReconnect("pubnub")
				c.resubscribe()
				if err := c.emit(ctx, emitRegisterUser, map[string]any{"token": c.creds.Token}); err != nil {
					log.WithError(err).Warn("realtime: registerUser failed")
				}
				c.deliver(Event{Type: EventReconnected})

			case pubnub.PNDisconnectedCategory:
				log.Warn("realtime: disconnected")

			case pubnub.PNAccessDeniedCategory:
				log.Error("realtime: access denied")

			case pubnub.PNReconnectionAttemptsExhausted:
				log.Error("realtime: reconnection attempts exhausted")
			}

		case message := <-c.listener.Message:
			ev, ok := decodePubNubMessage(message)
			if !ok {
				continue
			}
			c.deliver(ev)

		case <-c.done:
			return

		case <-ctx.Done():
			return
		}
	}
}

// resubscribe rejoins every tracked room after a reconnect; missed events
// are not replayed, so the stores refetch on the Reconnected event.
func (c *PubNubChannel) resubscribe() {
	rooms := c.rooms.list()
	if len(rooms) == 0 {
		return
	}
	channels := make([]string, 0, len(rooms))
	for _, id := range rooms {
		channels = append(channels, roomChannel(id))
	}
	c.pn.Subscribe().Channels(channels).Execute()
}

func (c *PubNubChannel) deliver(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	default:
		log.WithField("type", ev.Type).Warn("realtime: event buffer full, dropping")
	}
}

func decodePubNubMessage(message *pubnub.PNMessage) (Event, bool) {
	raw, err := json.Marshal(message.Message)
	if err != nil {
		return Event{}, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
		return Event{}, false
	}
	ev, err := DecodeEvent(env.Event, env.Data)
	if err != nil {
		log.WithError(err).Debug("realtime: skipping message")
		return Event{}, false
	}
	return ev, true
}
