package status

import "errors"

// Session / auth errors.
var (
	ErrNotAuthenticated = errors.New("session: not authenticated")
	ErrTokenInvalid     = errors.New("session: token invalid or expired")
)

// Bid validation errors (raised before any network call).
var (
	ErrInvalidAmount = errors.New("bid: invalid amount")
	ErrBidTooLow     = errors.New("bid: must exceed current highest bid")
	ErrAuctionClosed = errors.New("bid: auction is not active")
	ErrBidInFlight   = errors.New("bid: another bid is already in progress")
)

// Payment errors.
var (
	ErrFailedPayment    = errors.New("payment: payment failed")
	ErrPaymentDismissed = errors.New("payment: checkout dismissed")
	ErrOrderNotFound    = errors.New("payment: order not found")
)
