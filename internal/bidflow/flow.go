// Package bidflow drives a single payment-backed submission from order
// creation through gateway checkout to server-side verification. The same
// machine backs auction bids and wallet top-ups; only the order and verify
// calls differ.
package bidflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"pulasa-client/internal/payment"
	"pulasa-client/internal/status"
	"pulasa-client/models"

	"github.com/sirupsen/logrus"
)

// State is where a flow currently is. A flow is linear: it moves forward
// through the states below and ends in settled or failed, after which the
// owning Flow is idle again.
type State string

const (
	StateIdle             State = "idle"
	StateOrderRequested   State = "order_requested"
	StateGatewayOpen      State = "gateway_open"
	StatePaymentSubmitted State = "payment_submitted"
	StateVerifying        State = "verifying"
	StateSettled          State = "settled"
	StateFailed           State = "failed"
)

// OrderFunc asks the server to create a payment order for the submission.
type OrderFunc func(ctx context.Context) (*models.PaymentOrder, error)

// VerifyFunc sends the overlay's completion identifiers to the server for
// signature verification. Only a nil error here makes the submission real.
type VerifyFunc func(ctx context.Context, completion payment.Completion) error

// Snapshot is a point-in-time view of a flow, safe to hand out.
type Snapshot struct {
	State   State                `json:"state"`
	OrderID string               `json:"order_id,omitempty"`
	Order   *models.PaymentOrder `json:"order,omitempty"`
	Err     string               `json:"error,omitempty"`
	Updated time.Time            `json:"updated_at"`
}

// Flow runs at most one submission at a time. Run blocks until the flow
// reaches a terminal state; concurrent callers get ErrBidInFlight.
type Flow struct {
	gateway payment.Gateway
	opts    Options
	log     *logrus.Entry

	mu      sync.Mutex
	running bool
	snap    Snapshot
}

type Options struct {
	// Display fields copied into the checkout overlay.
	Name    string
	Prefill payment.Prefill
	Theme   payment.Theme
}

func New(gateway payment.Gateway, opts Options, log *logrus.Entry) *Flow {
	return &Flow{
		gateway: gateway,
		opts:    opts,
		log:     log,
		snap:    Snapshot{State: StateIdle, Updated: time.Now()},
	}
}

// Snapshot returns the current state of the flow.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *Flow) set(s State, order *models.PaymentOrder, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = Snapshot{State: s, Order: order, Updated: time.Now()}
	if order != nil {
		f.snap.OrderID = order.OrderID
	}
	if err != nil {
		f.snap.Err = err.Error()
	}
}

// Run executes one submission. The order returned by createOrder is passed to
// the gateway verbatim; the submission counts only once verify returns nil.
func (f *Flow) Run(ctx context.Context, createOrder OrderFunc, verify VerifyFunc) (Snapshot, error) {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return f.Snapshot(), status.ErrBidInFlight
	}
	f.running = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.running = false
		f.mu.Unlock()
	}()

	f.set(StateOrderRequested, nil, nil)
	order, err := createOrder(ctx)
	if err != nil {
		f.set(StateFailed, nil, err)
		return f.Snapshot(), err
	}

	opts := &payment.CheckoutOptions{
		Key:      order.Key,
		Amount:   order.Amount,
		Currency: order.Currency,
		OrderID:  order.OrderID,
		Name:     f.opts.Name,
		Prefill:  f.opts.Prefill,
		Theme:    f.opts.Theme,
	}

	f.set(StateGatewayOpen, order, nil)
	results, err := f.gateway.OpenCheckout(ctx, opts)
	if err != nil {
		f.set(StateFailed, order, err)
		return f.Snapshot(), err
	}

	var result payment.CheckoutResult
	select {
	case result = <-results:
	case <-ctx.Done():
		f.set(StateFailed, order, ctx.Err())
		return f.Snapshot(), ctx.Err()
	}

	switch {
	case result.Err != nil:
		f.set(StateFailed, order, result.Err)
		return f.Snapshot(), result.Err
	case result.Dismissed:
		f.log.WithField("order_id", order.OrderID).Info("checkout dismissed")
		f.set(StateFailed, order, status.ErrPaymentDismissed)
		return f.Snapshot(), status.ErrPaymentDismissed
	case result.Completion == nil:
		err := errors.New("bidflow: checkout resolved without completion")
		f.set(StateFailed, order, err)
		return f.Snapshot(), err
	}

	f.set(StatePaymentSubmitted, order, nil)

	f.set(StateVerifying, order, nil)
	if err := verify(ctx, *result.Completion); err != nil {
		f.log.WithError(err).WithField("order_id", order.OrderID).Warn("payment verification rejected")
		f.set(StateFailed, order, err)
		return f.Snapshot(), err
	}

	f.set(StateSettled, order, nil)
	return f.Snapshot(), nil
}
