package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pulasa-client/internal/realtime"
	"pulasa-client/models"
	"pulasa-client/monitoring"
	"pulasa-client/utils"
)

// Countdown is a point-in-time view of a tracked auction's timer.
type Countdown struct {
	AuctionID string        `json:"auction_id"`
	Remaining time.Duration `json:"remaining"`
	Display   string        `json:"display"`
	Status    models.AuctionStatus
}

// Tracker follows the auctions whose detail view is open: it joins the
// auction room on the realtime channel, ticks a one-second countdown, and
// triggers a full refetch when a bid lands. Untracking stops the timer and
// leaves the room, so nothing fires for a view that is gone.
type Tracker struct {
	auctions *AuctionService
	channel  realtime.Channel
	log      *logrus.Entry

	mu      sync.Mutex
	tracked map[string]*trackedAuction
	closed  bool
}

type trackedAuction struct {
	done chan struct{}
}

func NewTracker(auctions *AuctionService, channel realtime.Channel) *Tracker {
	return &Tracker{
		auctions: auctions,
		channel:  channel,
		log:      utils.Component("tracker"),
		tracked:  make(map[string]*trackedAuction),
	}
}

// Track starts following an auction. Idempotent; tracking an auction twice
// keeps the single existing timer.
func (t *Tracker) Track(ctx context.Context, auctionID string) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	if _, ok := t.tracked[auctionID]; ok {
		t.mu.Unlock()
		return nil
	}
	ta := &trackedAuction{done: make(chan struct{})}
	t.tracked[auctionID] = ta
	monitoring.SetTrackedAuctions(len(t.tracked))
	t.mu.Unlock()

	if err := t.channel.JoinAuction(ctx, auctionID); err != nil {
		t.log.WithError(err).WithField("auction_id", auctionID).Warn("join auction room failed")
	}

	go t.tick(auctionID, ta.done)
	return nil
}

// Untrack stops the countdown and leaves the auction room.
func (t *Tracker) Untrack(ctx context.Context, auctionID string) {
	t.mu.Lock()
	ta, ok := t.tracked[auctionID]
	if ok {
		delete(t.tracked, auctionID)
		close(ta.done)
	}
	monitoring.SetTrackedAuctions(len(t.tracked))
	t.mu.Unlock()

	if ok {
		if err := t.channel.LeaveAuction(ctx, auctionID); err != nil {
			t.log.WithError(err).WithField("auction_id", auctionID).Warn("leave auction room failed")
		}
	}
}

// IsTracked reports whether the auction currently has a live countdown.
func (t *Tracker) IsTracked(auctionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.tracked[auctionID]
	return ok
}

// Tracked lists the auction ids with a live countdown.
func (t *Tracker) Tracked() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.tracked))
	for id := range t.tracked {
		out = append(out, id)
	}
	return out
}

// Countdown computes the current countdown for a tracked auction from the
// cached end time.
func (t *Tracker) Countdown(auctionID string, now time.Time) (Countdown, bool) {
	if !t.IsTracked(auctionID) {
		return Countdown{}, false
	}
	var found *models.Auction
	for _, a := range t.auctions.Cached() {
		if a.ID == auctionID {
			cp := a
			found = &cp
			break
		}
	}
	if found == nil {
		return Countdown{}, false
	}
	remaining := found.TimeRemaining(now)
	return Countdown{
		AuctionID: auctionID,
		Remaining: remaining,
		Display:   models.FormatRemaining(remaining),
		Status:    found.StatusAt(now),
	}, true
}

// HandleEvent refetches a tracked auction when a bid lands on it. Events for
// untracked auctions only touch the list cache, handled by AuctionService.
func (t *Tracker) HandleEvent(ctx context.Context, ev realtime.Event) {
	if ev.Type != realtime.EventNewBid {
		return
	}
	if !t.IsTracked(ev.NewBid.AuctionID) {
		return
	}
	if _, err := t.auctions.Refresh(ctx, ev.NewBid.AuctionID); err != nil {
		t.log.WithError(err).WithField("auction_id", ev.NewBid.AuctionID).Warn("refetch after bid failed")
	}
}

// tick advances the local lifecycle projection once a second until the
// auction is untracked or the tracker closes.
func (t *Tracker) tick(auctionID string, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			t.mu.Lock()
			if t.closed {
				t.mu.Unlock()
				return
			}
			t.mu.Unlock()

			t.advance(auctionID, now)
		}
	}
}

func (t *Tracker) advance(auctionID string, now time.Time) {
	t.auctions.mu.Lock()
	defer t.auctions.mu.Unlock()
	a, ok := t.auctions.auctions[auctionID]
	if !ok {
		return
	}
	a.Status = models.AdvanceStatus(a.Status, a.StatusAt(now))
}

// Close stops every countdown. After Close returns no timer fires again.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for id, ta := range t.tracked {
		close(ta.done)
		delete(t.tracked, id)
	}
	monitoring.SetTrackedAuctions(0)
}
