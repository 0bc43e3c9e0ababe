package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAuction_CurrentBid_FallsBackToBasePrice(t *testing.T) {
	a := &Auction{
		BasePrice:  decimal.NewFromInt(500),
		HighestBid: decimal.Zero,
	}

	assert.True(t, a.CurrentBid().Equal(decimal.NewFromInt(500)))

	a.HighestBid = decimal.NewFromInt(750)
	assert.True(t, a.CurrentBid().Equal(decimal.NewFromInt(750)))
}

func TestAuction_StatusAt_DerivesFromClock(t *testing.T) {
	now := time.Now()
	a := &Auction{
		Status:    AuctionPending,
		StartTime: now.Add(1 * time.Hour),
		EndTime:   now.Add(2 * time.Hour),
	}

	assert.Equal(t, AuctionPending, a.StatusAt(now))
	assert.Equal(t, AuctionActive, a.StatusAt(now.Add(90*time.Minute)))
	assert.Equal(t, AuctionEnded, a.StatusAt(now.Add(3*time.Hour)))
}

func TestAuction_StatusAt_CancelledStaysCancelled(t *testing.T) {
	now := time.Now()
	a := &Auction{
		Status:    AuctionCancelled,
		StartTime: now.Add(-2 * time.Hour),
		EndTime:   now.Add(2 * time.Hour),
	}

	assert.Equal(t, AuctionCancelled, a.StatusAt(now))
}

func TestAdvanceStatus_NeverMovesBackward(t *testing.T) {
	assert.Equal(t, AuctionActive, AdvanceStatus(AuctionPending, AuctionActive))
	assert.Equal(t, AuctionEnded, AdvanceStatus(AuctionActive, AuctionEnded))

	// A stale fetch cannot reopen an ended auction.
	assert.Equal(t, AuctionEnded, AdvanceStatus(AuctionEnded, AuctionActive))
	assert.Equal(t, AuctionActive, AdvanceStatus(AuctionActive, AuctionPending))
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{"days", 53*time.Hour + 12*time.Minute, "2d 5h 12m"},
		{"hours", 3*time.Hour + 7*time.Minute, "3h 7m"},
		{"minutes", 43 * time.Minute, "43m"},
		{"ended", 0, "Ended"},
		{"negative", -time.Minute, "Ended"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatRemaining(tt.d))
		})
	}
}

func TestAuction_TimeRemaining_ClampsAtZero(t *testing.T) {
	now := time.Now()
	a := &Auction{EndTime: now.Add(-time.Hour)}
	assert.Equal(t, time.Duration(0), a.TimeRemaining(now))
}

func TestWallet_Total(t *testing.T) {
	w := &Wallet{
		Balance:      decimal.NewFromInt(300),
		LockedAmount: decimal.NewFromInt(200),
	}
	assert.True(t, w.Total().Equal(decimal.NewFromInt(500)))
}
