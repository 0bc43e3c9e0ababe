package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventNewBid       EventType = "newBid"
	EventOutbid       EventType = "outbid"
	EventAuctionWon   EventType = "auctionWon"
	EventAuctionEnded EventType = "auctionEnded"

	// EventReconnected is synthesized by the transport after the connection
	// is re-established, so stores can refetch state missed while offline.
	EventReconnected EventType = "reconnected"
)

// Client-emitted event names.
const (
	emitRegisterUser = "registerUser"
	emitJoinAuction  = "joinAuction"
	emitLeaveAuction = "leaveAuction"
)

type NewBidEvent struct {
	AuctionID  string          `json:"auction_id"`
	BidderID   string          `json:"bidder_id"`
	BidderName string          `json:"bidder,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Timestamp  time.Time       `json:"timestamp"`
}

type OutbidEvent struct {
	AuctionID      string          `json:"auction_id"`
	AuctionName    string          `json:"auction_name"`
	UserID         string          `json:"user_id"`
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	NewAmount      decimal.Decimal `json:"new_amount"`
	RefundID       string          `json:"refund_id,omitempty"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
	Timestamp      time.Time       `json:"timestamp"`
}

type AuctionWonEvent struct {
	AuctionID   string          `json:"auction_id"`
	AuctionName string          `json:"auction_name"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
}

type AuctionEndedEvent struct {
	AuctionID     string          `json:"auction_id"`
	WinnerID      string          `json:"winner_id,omitempty"`
	WinningAmount decimal.Decimal `json:"winning_amount"`
}

// Event is the typed union delivered to domain stores. Exactly one payload
// field matching Type is set, except for EventReconnected which has none.
type Event struct {
	Type         EventType
	NewBid       *NewBidEvent
	Outbid       *OutbidEvent
	AuctionWon   *AuctionWonEvent
	AuctionEnded *AuctionEndedEvent
}

// envelope is the wire frame shared by both transports.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeEvent turns a wire frame into a typed Event. Unknown event names
// yield an error so transports can skip them without crashing the loop.
func DecodeEvent(name string, data []byte) (Event, error) {
	switch EventType(name) {
	case EventNewBid:
		var p NewBidEvent
		if err := json.Unmarshal(data, &p); err != nil {
			return Event{}, fmt.Errorf("realtime: decode newBid: %w", err)
		}
		return Event{Type: EventNewBid, NewBid: &p}, nil
	case EventOutbid:
		var p OutbidEvent
		if err := json.Unmarshal(data, &p); err != nil {
			return Event{}, fmt.Errorf("realtime: decode outbid: %w", err)
		}
		return Event{Type: EventOutbid, Outbid: &p}, nil
	case EventAuctionWon:
		var p AuctionWonEvent
		if err := json.Unmarshal(data, &p); err != nil {
			return Event{}, fmt.Errorf("realtime: decode auctionWon: %w", err)
		}
		return Event{Type: EventAuctionWon, AuctionWon: &p}, nil
	case EventAuctionEnded:
		var p AuctionEndedEvent
		if err := json.Unmarshal(data, &p); err != nil {
			return Event{}, fmt.Errorf("realtime: decode auctionEnded: %w", err)
		}
		return Event{Type: EventAuctionEnded, AuctionEnded: &p}, nil
	default:
		return Event{}, fmt.Errorf("realtime: unknown event %q", name)
	}
}
