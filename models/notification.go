package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type NotificationType string

const (
	NotificationOutbid NotificationType = "outbid"
	NotificationWon    NotificationType = "won"
	NotificationInfo   NotificationType = "info"
)

type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	AuctionID   string           `json:"auction_id,omitempty"`
	AuctionName string           `json:"auction_name,omitempty"`
	Amount      decimal.Decimal  `json:"amount,omitempty"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}
