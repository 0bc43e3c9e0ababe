// Package simulated is a development gateway that auto-completes every
// checkout after a short delay, so the full bid flow can be exercised
// without a real payment provider.
package simulated

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pulasa-client/utils"
)

type Result struct {
	PaymentID string
	OrderID   string
	Signature string
	Err       error
}

type Gateway struct {
	delay time.Duration

	mu     sync.Mutex
	closed bool
}

func New(delay time.Duration) *Gateway {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Gateway{delay: delay}
}

func (g *Gateway) OpenCheckout(ctx context.Context, orderID string) (<-chan Result, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, fmt.Errorf("simulated: gateway closed")
	}
	g.mu.Unlock()

	ch := make(chan Result, 1)
	go func() {
		select {
		case <-ctx.Done():
			ch <- Result{Err: ctx.Err()}
			return
		case <-time.After(g.delay):
		}

		paymentID, err := utils.GenerateCode(12)
		if err != nil {
			ch <- Result{Err: err}
			return
		}
		signature, err := utils.GenerateCode(32)
		if err != nil {
			ch <- Result{Err: err}
			return
		}
		ch <- Result{
			PaymentID: "pay_sim_" + paymentID,
			OrderID:   orderID,
			Signature: signature,
		}
	}()
	return ch, nil
}

func (g *Gateway) Close(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}
