// Package payment bridges to third-party checkout gateways. The bridge opens
// a checkout with a server-issued order descriptor and reports the overlay's
// completion identifiers back to the caller; it never decides whether a
// payment succeeded — only server-side verification does.
package payment

import (
	"context"
)

// Provider identifies a checkout gateway implementation.
type Provider string

const (
	ProviderRazorpay  Provider = "razorpay"
	ProviderSimulated Provider = "simulated"
)

// CheckoutOptions is what the overlay is opened with. Amount is in minor
// currency units and, together with Currency and OrderID, is copied verbatim
// from the server-issued order — recomputing any of them client-side would
// open the door to amount-mismatch fraud.
type CheckoutOptions struct {
	Key      string  `json:"key"`
	Amount   int64   `json:"amount"`
	Currency string  `json:"currency"`
	OrderID  string  `json:"order_id"`
	Name     string  `json:"name,omitempty"`
	Prefill  Prefill `json:"prefill,omitempty"`
	Theme    Theme   `json:"theme,omitempty"`
}

type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type Theme struct {
	Color string `json:"color,omitempty"`
}

// Completion carries the identifiers the overlay reports when the user
// finishes paying. They are client-observable and therefore not proof of
// payment; the server verifies the signature before anything is final.
type Completion struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
}

// CheckoutResult resolves a checkout exactly once: a completion, a user
// dismissal, or a transport error.
type CheckoutResult struct {
	Completion *Completion
	Dismissed  bool
	Err        error
}

// Gateway is the common interface for checkout providers.
type Gateway interface {
	Provider() Provider

	// OpenCheckout registers a pending checkout for the order and returns a
	// channel that resolves once the overlay completes, is dismissed, or
	// times out.
	OpenCheckout(ctx context.Context, opts *CheckoutOptions) (<-chan CheckoutResult, error)

	Close(ctx context.Context) error
}
