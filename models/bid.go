package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BidPaymentStatus string

const (
	BidPaymentPending    BidPaymentStatus = "pending"
	BidPaymentAuthorized BidPaymentStatus = "authorized"
	BidPaymentRefunded   BidPaymentStatus = "refunded"
)

type Bid struct {
	ID            string           `json:"id"`
	AuctionID     string           `json:"auction_id"`
	BidderID      string           `json:"bidder_id"`
	BidderName    string           `json:"bidder_name,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	PaymentStatus BidPaymentStatus `json:"payment_status"`
	CreatedAt     time.Time        `json:"created_at"`
}

// PaymentOrder is the server-issued order descriptor for a gateway checkout.
// Amount is in minor currency units (paise). The client passes these values
// to the gateway verbatim and never recomputes them.
type PaymentOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Key      string `json:"key"`
	Receipt  string `json:"receipt,omitempty"`
}
