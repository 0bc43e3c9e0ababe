package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulasa-client/internal/realtime"
	"pulasa-client/models"
)

// recordingChannel records room membership calls.
type recordingChannel struct {
	mu     sync.Mutex
	joined []string
	left   []string
}

func (c *recordingChannel) Connect(context.Context) error { return nil }
func (c *recordingChannel) Events() <-chan realtime.Event { return nil }
func (c *recordingChannel) Close(context.Context) error   { return nil }

func (c *recordingChannel) JoinAuction(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joined = append(c.joined, id)
	return nil
}

func (c *recordingChannel) LeaveAuction(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left = append(c.left, id)
	return nil
}

func TestTracker_TrackJoinsRoomOnce(t *testing.T) {
	auctions := NewAuctionService(nil)
	channel := &recordingChannel{}
	tracker := NewTracker(auctions, channel)
	defer tracker.Close()
	ctx := context.Background()

	require.NoError(t, tracker.Track(ctx, "a1"))
	require.NoError(t, tracker.Track(ctx, "a1"))

	assert.True(t, tracker.IsTracked("a1"))
	assert.Equal(t, []string{"a1"}, channel.joined)
}

func TestTracker_UntrackLeavesRoom(t *testing.T) {
	auctions := NewAuctionService(nil)
	channel := &recordingChannel{}
	tracker := NewTracker(auctions, channel)
	defer tracker.Close()
	ctx := context.Background()

	require.NoError(t, tracker.Track(ctx, "a1"))
	tracker.Untrack(ctx, "a1")

	assert.False(t, tracker.IsTracked("a1"))
	assert.Equal(t, []string{"a1"}, channel.left)

	// Untracking again is a no-op.
	tracker.Untrack(ctx, "a1")
	assert.Equal(t, []string{"a1"}, channel.left)
}

func TestTracker_CloseStopsAllTracking(t *testing.T) {
	auctions := NewAuctionService(nil)
	tracker := NewTracker(auctions, &recordingChannel{})
	ctx := context.Background()

	require.NoError(t, tracker.Track(ctx, "a1"))
	require.NoError(t, tracker.Track(ctx, "a2"))

	tracker.Close()

	assert.False(t, tracker.IsTracked("a1"))
	assert.False(t, tracker.IsTracked("a2"))
	assert.Empty(t, tracker.Tracked())

	// Tracking after Close does nothing.
	require.NoError(t, tracker.Track(ctx, "a3"))
	assert.False(t, tracker.IsTracked("a3"))
}

func TestTracker_Countdown_FromCachedAuction(t *testing.T) {
	auctions := NewAuctionService(nil)
	now := time.Now()
	auctions.auctions["a1"] = &models.Auction{
		ID:        "a1",
		BasePrice: decimal.NewFromInt(500),
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(43 * time.Minute),
		Status:    models.AuctionActive,
	}
	tracker := NewTracker(auctions, &recordingChannel{})
	defer tracker.Close()

	require.NoError(t, tracker.Track(context.Background(), "a1"))

	cd, ok := tracker.Countdown("a1", now)
	require.True(t, ok)
	assert.Equal(t, "a1", cd.AuctionID)
	assert.Equal(t, "43m", cd.Display)
	assert.Equal(t, models.AuctionActive, cd.Status)

	_, ok = tracker.Countdown("untracked", now)
	assert.False(t, ok)
}

func TestTracker_HandleEvent_IgnoresUntrackedAuctions(t *testing.T) {
	auctions := NewAuctionService(nil)
	tracker := NewTracker(auctions, &recordingChannel{})
	defer tracker.Close()

	// A newBid for an untracked auction must not trigger a refetch; with a
	// nil client a refetch would panic.
	tracker.HandleEvent(context.Background(), realtime.Event{
		Type:   realtime.EventNewBid,
		NewBid: &realtime.NewBidEvent{AuctionID: "elsewhere", Amount: decimal.NewFromInt(100)},
	})
}
