package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pulasa-client/internal/api"
	"pulasa-client/internal/realtime"
	"pulasa-client/models"
	"pulasa-client/utils"
)

// NotificationService merges server-fetched notifications with ones
// synthesized locally from push events. Each outbid or win event yields
// exactly one local notification; the next fetch replaces it with the
// server's copy.
type NotificationService struct {
	client *api.Client
	log    *logrus.Entry

	mu            sync.Mutex
	notifications []models.Notification
	unread        int
	// seenEvents dedupes synthesized notifications when the channel
	// redelivers an event after a reconnect.
	seenEvents map[string]struct{}
}

func NewNotificationService(client *api.Client) *NotificationService {
	return &NotificationService{
		client:     client,
		log:        utils.Component("notifications"),
		seenEvents: make(map[string]struct{}),
	}
}

// Refresh fetches the notification list and replaces local state with it.
func (s *NotificationService) Refresh(ctx context.Context) ([]models.Notification, error) {
	resp, err := s.client.MyNotifications(ctx)
	if err != nil {
		return s.Cached(), err
	}
	s.mu.Lock()
	s.notifications = resp.Notifications
	s.unread = resp.UnreadCount
	s.seenEvents = make(map[string]struct{})
	out := s.cachedLocked()
	s.mu.Unlock()
	return out, nil
}

// RefreshCount fetches only the unread counter. Runs on the periodic poll.
func (s *NotificationService) RefreshCount(ctx context.Context) (int, error) {
	count, err := s.client.NotificationCount(ctx)
	if err != nil {
		return s.UnreadCount(), err
	}
	s.mu.Lock()
	s.unread = count
	s.mu.Unlock()
	return count, nil
}

// HandleEvent synthesizes a local notification from an outbid or win event
// so the bell updates before the next fetch.
func (s *NotificationService) HandleEvent(ev realtime.Event) {
	var n models.Notification
	var key string

	switch ev.Type {
	case realtime.EventOutbid:
		key = fmt.Sprintf("outbid:%s:%s", ev.Outbid.AuctionID, ev.Outbid.NewAmount.String())
		n = models.Notification{
			ID:          uuid.NewString(),
			Type:        models.NotificationOutbid,
			Title:       "You've been outbid!",
			Message:     fmt.Sprintf("Someone bid ₹%s on %s", ev.Outbid.NewAmount.StringFixed(2), ev.Outbid.AuctionName),
			AuctionID:   ev.Outbid.AuctionID,
			AuctionName: ev.Outbid.AuctionName,
			Amount:      ev.Outbid.NewAmount,
			CreatedAt:   time.Now(),
		}
	case realtime.EventAuctionWon:
		key = fmt.Sprintf("won:%s", ev.AuctionWon.AuctionID)
		n = models.Notification{
			ID:          uuid.NewString(),
			Type:        models.NotificationWon,
			Title:       "Congratulations, you won!",
			Message:     fmt.Sprintf("You won %s for ₹%s", ev.AuctionWon.AuctionName, ev.AuctionWon.Amount.StringFixed(2)),
			AuctionID:   ev.AuctionWon.AuctionID,
			AuctionName: ev.AuctionWon.AuctionName,
			Amount:      ev.AuctionWon.Amount,
			CreatedAt:   time.Now(),
		}
	default:
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seenEvents[key]; dup {
		return
	}
	s.seenEvents[key] = struct{}{}
	s.notifications = append([]models.Notification{n}, s.notifications...)
	s.unread++
}

// MarkRead marks one notification read, optimistically: the local copy
// flips immediately, the server call follows.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && !s.notifications[i].Read {
			s.notifications[i].Read = true
			if s.unread > 0 {
				s.unread--
			}
		}
	}
	s.mu.Unlock()

	if err := s.client.MarkNotificationRead(ctx, id); err != nil {
		s.log.WithError(err).WithField("notification_id", id).Warn("mark read failed")
		return err
	}
	return nil
}

// MarkAllRead marks every notification read, one server call per unread
// entry.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	var unreadIDs []string
	for i := range s.notifications {
		if !s.notifications[i].Read {
			unreadIDs = append(unreadIDs, s.notifications[i].ID)
			s.notifications[i].Read = true
		}
	}
	s.unread = 0
	s.mu.Unlock()

	var firstErr error
	for _, id := range unreadIDs {
		if err := s.client.MarkNotificationRead(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// UnreadCount is the badge figure on the bell.
func (s *NotificationService) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Cached returns a copy of the merged notification list, newest first.
func (s *NotificationService) Cached() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cachedLocked()
}

func (s *NotificationService) cachedLocked() []models.Notification {
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// Reset drops all notification state. Called on logout.
func (s *NotificationService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
	s.unread = 0
	s.seenEvents = make(map[string]struct{})
}
