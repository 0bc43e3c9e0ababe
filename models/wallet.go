package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	UserID       string          `json:"user_id"`
	Balance      decimal.Decimal `json:"balance"`
	LockedAmount decimal.Decimal `json:"locked_amount"`
}

// Total is the full wallet value, available plus locked.
func (w *Wallet) Total() decimal.Decimal {
	return w.Balance.Add(w.LockedAmount)
}

type TransactionType string

const (
	TransactionTopup      TransactionType = "topup"
	TransactionBidLock    TransactionType = "bid_lock"
	TransactionUnlock     TransactionType = "unlock"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionRefund     TransactionType = "refund"
)

type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Description string          `json:"description,omitempty"`
	AuctionID   string          `json:"auction_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
