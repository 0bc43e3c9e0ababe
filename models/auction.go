package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AuctionStatus string

const (
	AuctionPending   AuctionStatus = "pending"
	AuctionActive    AuctionStatus = "active"
	AuctionEnded     AuctionStatus = "ended"
	AuctionCancelled AuctionStatus = "cancelled"
)

// statusRank orders the auction lifecycle so local projections can only
// move forward, never backward, regardless of clock skew on a single tick.
var statusRank = map[AuctionStatus]int{
	AuctionPending:   0,
	AuctionActive:    1,
	AuctionEnded:     2,
	AuctionCancelled: 2,
}

type Auction struct {
	ID              string          `json:"id"`
	ItemName        string          `json:"item_name"`
	Description     string          `json:"description,omitempty"`
	ImageURL        string          `json:"image_url,omitempty"`
	BasePrice       decimal.Decimal `json:"base_price"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	HighestBid      decimal.Decimal `json:"highest_bid"`
	HighestBidderID string          `json:"highest_bidder_id,omitempty"`
	TotalBids       int             `json:"total_bids"`
	Status          AuctionStatus   `json:"status"`
	WinnerID        string          `json:"winner_id,omitempty"`
	WinningAmount   decimal.Decimal `json:"winning_amount,omitempty"`
	CreatedBy       string          `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CurrentBid is the figure shown to users: the highest bid, or the base
// price while no bid has been placed yet.
func (a *Auction) CurrentBid() decimal.Decimal {
	if a.HighestBid.IsPositive() {
		return a.HighestBid
	}
	return a.BasePrice
}

// StatusAt derives the lifecycle status from wall-clock time. It is a local
// best-effort projection; server state remains authoritative.
func (a *Auction) StatusAt(now time.Time) AuctionStatus {
	if a.Status == AuctionCancelled {
		return AuctionCancelled
	}
	switch {
	case now.Before(a.StartTime):
		return AuctionPending
	case now.Before(a.EndTime):
		return AuctionActive
	default:
		return AuctionEnded
	}
}

// AdvanceStatus returns next only if it moves the lifecycle forward from
// current; otherwise current is kept. pending → active → ended is monotone.
func AdvanceStatus(current, next AuctionStatus) AuctionStatus {
	if statusRank[next] > statusRank[current] {
		return next
	}
	return current
}

// TimeRemaining reports how long until the auction ends, zero once it has.
func (a *Auction) TimeRemaining(now time.Time) time.Duration {
	if d := a.EndTime.Sub(now); d > 0 {
		return d
	}
	return 0
}

// FormatRemaining renders a countdown the way the detail view shows it,
// e.g. "2d 5h 12m" or "43m".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "Ended"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// DashboardStats is the admin-wide summary reported by the auction backend.
type DashboardStats struct {
	ActiveAuctions int             `json:"active_auctions"`
	TotalAuctions  int             `json:"total_auctions"`
	TotalBids      int             `json:"total_bids"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	ActiveBidders  int             `json:"active_bidders"`
}

type AuctionStats struct {
	AuctionID    string          `json:"auction_id"`
	TotalBids    int             `json:"total_bids"`
	UniqueBidder int             `json:"unique_bidders"`
	HighestBid   decimal.Decimal `json:"highest_bid"`
	AverageBid   decimal.Decimal `json:"average_bid"`
	Revenue      decimal.Decimal `json:"revenue"`
}
