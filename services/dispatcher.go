package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"pulasa-client/internal/realtime"
	"pulasa-client/monitoring"
	"pulasa-client/utils"
)

// EventRouter fans the realtime channel's events out to the domain stores.
// One goroutine owns the channel's event stream; stores do their own
// locking, so dispatch order is the only ordering guarantee.
type EventRouter struct {
	auctions      *AuctionService
	tracker       *Tracker
	wallet        *WalletService
	notifications *NotificationService
	log           *logrus.Entry
}

func NewEventRouter(auctions *AuctionService, tracker *Tracker, wallet *WalletService, notifications *NotificationService) *EventRouter {
	return &EventRouter{
		auctions:      auctions,
		tracker:       tracker,
		wallet:        wallet,
		notifications: notifications,
		log:           utils.Component("events"),
	}
}

// Run consumes events until the channel closes or ctx is cancelled. Call it
// in its own goroutine, once per realtime channel.
func (r *EventRouter) Run(ctx context.Context, events <-chan realtime.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.dispatch(ctx, ev)
		}
	}
}

func (r *EventRouter) dispatch(ctx context.Context, ev realtime.Event) {
	monitoring.TrackRealtimeEvent(string(ev.Type))

	switch ev.Type {
	case realtime.EventNewBid:
		r.auctions.HandleEvent(ev)
		r.tracker.HandleEvent(ctx, ev)

	case realtime.EventOutbid:
		r.notifications.HandleEvent(ev)
		// An outbid refunds the locked amount; pick up the new balance.
		if _, err := r.wallet.Refresh(ctx); err != nil {
			r.log.WithError(err).Debug("wallet refresh after outbid failed")
		}

	case realtime.EventAuctionWon:
		r.auctions.HandleEvent(ev)
		r.notifications.HandleEvent(ev)

	case realtime.EventAuctionEnded:
		r.auctions.HandleEvent(ev)

	case realtime.EventReconnected:
		// State may have moved while offline; refetch everything tracked.
		r.log.Info("channel reconnected, refetching state")
		for _, id := range r.tracker.Tracked() {
			if _, err := r.auctions.Refresh(ctx, id); err != nil {
				r.log.WithError(err).WithField("auction_id", id).Warn("refetch after reconnect failed")
			}
		}
		if _, err := r.wallet.Refresh(ctx); err != nil {
			r.log.WithError(err).Debug("wallet refresh after reconnect failed")
		}
		if _, err := r.notifications.Refresh(ctx); err != nil {
			r.log.WithError(err).Debug("notification refresh after reconnect failed")
		}
	}
}
