package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulasa-client/internal/api"
	"pulasa-client/internal/realtime"
	"pulasa-client/models"
)

func newTestNotificationService(t *testing.T, handler http.HandlerFunc) *NotificationService {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	client := api.NewClient(ts.URL, 5*time.Second, func() string { return "tok" })
	return NewNotificationService(client)
}

func outbidEvent(auctionID string, amount int64) realtime.Event {
	return realtime.Event{
		Type: realtime.EventOutbid,
		Outbid: &realtime.OutbidEvent{
			AuctionID:   auctionID,
			AuctionName: "Pulasa Premium",
			UserID:      "u1",
			NewAmount:   decimal.NewFromInt(amount),
		},
	}
}

func TestNotificationService_HandleEvent_OutbidSynthesizesOne(t *testing.T) {
	svc := NewNotificationService(nil)

	svc.HandleEvent(outbidEvent("a1", 800))

	notifications := svc.Cached()
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationOutbid, notifications[0].Type)
	assert.Equal(t, "a1", notifications[0].AuctionID)
	assert.NotEmpty(t, notifications[0].ID)
	assert.False(t, notifications[0].Read)
	assert.Equal(t, 1, svc.UnreadCount())
}

func TestNotificationService_HandleEvent_RedeliveredEventDeduped(t *testing.T) {
	svc := NewNotificationService(nil)

	svc.HandleEvent(outbidEvent("a1", 800))
	svc.HandleEvent(outbidEvent("a1", 800))

	assert.Len(t, svc.Cached(), 1)
	assert.Equal(t, 1, svc.UnreadCount())

	// A different amount is a genuinely new outbid.
	svc.HandleEvent(outbidEvent("a1", 900))
	assert.Len(t, svc.Cached(), 2)
}

func TestNotificationService_HandleEvent_WonSynthesizesOne(t *testing.T) {
	svc := NewNotificationService(nil)

	ev := realtime.Event{
		Type: realtime.EventAuctionWon,
		AuctionWon: &realtime.AuctionWonEvent{
			AuctionID:   "a1",
			AuctionName: "Pulasa Premium",
			UserID:      "u1",
			Amount:      decimal.NewFromInt(900),
		},
	}
	svc.HandleEvent(ev)
	svc.HandleEvent(ev)

	notifications := svc.Cached()
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationWon, notifications[0].Type)
}

func TestNotificationService_MarkRead_OptimisticDecrement(t *testing.T) {
	marked := make(chan string, 1)
	svc := newTestNotificationService(t, func(w http.ResponseWriter, r *http.Request) {
		marked <- r.URL.Path
		w.Write([]byte(`{}`))
	})

	svc.HandleEvent(outbidEvent("a1", 800))
	id := svc.Cached()[0].ID

	require.NoError(t, svc.MarkRead(context.Background(), id))

	assert.Equal(t, 0, svc.UnreadCount())
	assert.True(t, svc.Cached()[0].Read)
	assert.Contains(t, <-marked, id)
}

func TestNotificationService_Refresh_ReplacesLocalState(t *testing.T) {
	svc := newTestNotificationService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"notifications":[{"id":"n1","type":"outbid","read":false}],"unreadCount":1}`))
	})

	// A locally synthesized notification exists before the fetch.
	svc.HandleEvent(outbidEvent("a1", 800))

	notifications, err := svc.Refresh(context.Background())

	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "n1", notifications[0].ID)
	assert.Equal(t, 1, svc.UnreadCount())
}

func TestNotificationService_Reset(t *testing.T) {
	svc := NewNotificationService(nil)
	svc.HandleEvent(outbidEvent("a1", 800))

	svc.Reset()

	assert.Empty(t, svc.Cached())
	assert.Zero(t, svc.UnreadCount())
}
