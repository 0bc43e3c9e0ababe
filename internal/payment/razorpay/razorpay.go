// Package razorpay models the Razorpay standard checkout overlay for a
// headless client. The overlay itself runs in the user's browser; this
// bridge holds each pending checkout until a local callback delivers the
// overlay's completion identifiers (payment id, order id, signature) or
// reports a dismissal.
package razorpay

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"pulasa-client/internal/status"
)

type Config struct {
	// KeyID is only a fallback for orders that arrive without an embedded
	// key; the server-issued descriptor normally carries its own.
	KeyID string
	// CheckoutTimeout bounds how long an open overlay may stay unresolved.
	CheckoutTimeout time.Duration
}

type Checkout struct {
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

type Completion struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
}

type Result struct {
	Completion *Completion
	Dismissed  bool
	Err        error
}

type pendingCheckout struct {
	checkout *Checkout
	result   chan Result
	done     chan struct{}
	once     sync.Once
}

func (p *pendingCheckout) resolve(r Result) {
	p.once.Do(func() {
		p.result <- r
		close(p.done)
	})
}

type Bridge struct {
	cfg Config

	mu      sync.Mutex
	pending map[string]*pendingCheckout
	closed  bool
}

func New(cfg *Config) *Bridge {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	if c.CheckoutTimeout <= 0 {
		c.CheckoutTimeout = 10 * time.Minute
	}
	return &Bridge{
		cfg:     c,
		pending: make(map[string]*pendingCheckout),
	}
}

// Open registers a pending checkout for the order. The options are used as
// given; the bridge only fills in a missing key.
func (b *Bridge) Open(ctx context.Context, checkout *Checkout) (<-chan Result, error) {
	if checkout.OrderID == "" {
		return nil, fmt.Errorf("razorpay: checkout requires an order id")
	}
	if checkout.Key == "" {
		checkout.Key = b.cfg.KeyID
	}

	p := &pendingCheckout{
		checkout: checkout,
		result:   make(chan Result, 1),
		done:     make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("razorpay: bridge closed")
	}
	if _, exists := b.pending[checkout.OrderID]; exists {
		b.mu.Unlock()
		return nil, fmt.Errorf("razorpay: checkout for order %s already open", checkout.OrderID)
	}
	b.pending[checkout.OrderID] = p
	b.mu.Unlock()

	log.WithFields(log.Fields{
		"order_id": checkout.OrderID,
		"amount":   checkout.Amount,
		"currency": checkout.Currency,
	}).Info("razorpay: checkout opened")

	go b.watch(ctx, p)

	return p.result, nil
}

// watch abandons the checkout on context cancellation or timeout.
func (b *Bridge) watch(ctx context.Context, p *pendingCheckout) {
	timer := time.NewTimer(b.cfg.CheckoutTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		b.remove(p.checkout.OrderID)
		p.resolve(Result{Err: ctx.Err()})
	case <-timer.C:
		b.remove(p.checkout.OrderID)
		p.resolve(Result{Dismissed: true})
	case <-p.done:
		// Resolved by Complete/Dismiss.
	}
}

// Complete resolves the order's checkout with the overlay's callback
// identifiers.
func (b *Bridge) Complete(orderID string, completion Completion) error {
	p, ok := b.take(orderID)
	if !ok {
		return status.ErrOrderNotFound
	}
	p.resolve(Result{Completion: &completion})
	return nil
}

// Dismiss resolves the order's checkout as abandoned by the user.
func (b *Bridge) Dismiss(orderID string) error {
	p, ok := b.take(orderID)
	if !ok {
		return status.ErrOrderNotFound
	}
	p.resolve(Result{Dismissed: true})
	return nil
}

// Pending returns the options of an open checkout, for the local surface to
// render.
func (b *Bridge) Pending(orderID string) (*Checkout, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[orderID]
	if !ok {
		return nil, false
	}
	return p.checkout, true
}

func (b *Bridge) take(orderID string) (*pendingCheckout, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[orderID]
	if ok {
		delete(b.pending, orderID)
	}
	return p, ok
}

func (b *Bridge) remove(orderID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, orderID)
}

func (b *Bridge) Close(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, p := range b.pending {
		p.resolve(Result{Dismissed: true})
		delete(b.pending, id)
	}
	return nil
}
