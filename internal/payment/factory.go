package payment

import (
	"context"
	"fmt"
	"time"

	"pulasa-client/internal/payment/razorpay"
	"pulasa-client/internal/payment/simulated"
)

// Factory creates gateway instances by provider.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

type RazorpayConfig = razorpay.Config

func (f *Factory) CreateGateway(_ context.Context, provider Provider, config any) (Gateway, error) {
	switch provider {
	case ProviderRazorpay:
		cfg, ok := config.(*razorpay.Config)
		if !ok {
			return nil, fmt.Errorf("invalid razorpay config type, expected *razorpay.Config")
		}
		return newRazorpayAdapter(cfg), nil

	case ProviderSimulated:
		delay, _ := config.(time.Duration)
		return newSimulatedAdapter(delay), nil

	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", provider)
	}
}

// razorpayAdapter adapts the razorpay bridge to the Gateway interface.
type razorpayAdapter struct {
	bridge *razorpay.Bridge
}

func newRazorpayAdapter(cfg *razorpay.Config) *razorpayAdapter {
	return &razorpayAdapter{bridge: razorpay.New(cfg)}
}

func (a *razorpayAdapter) Provider() Provider { return ProviderRazorpay }

func (a *razorpayAdapter) OpenCheckout(ctx context.Context, opts *CheckoutOptions) (<-chan CheckoutResult, error) {
	inner, err := a.bridge.Open(ctx, &razorpay.Checkout{
		Key:      opts.Key,
		Amount:   opts.Amount,
		Currency: opts.Currency,
		OrderID:  opts.OrderID,
		Name:     opts.Name,
		Prefill:  razorpay.Prefill(opts.Prefill),
		Theme:    razorpay.Theme(opts.Theme),
	})
	if err != nil {
		return nil, err
	}

	out := make(chan CheckoutResult, 1)
	go func() {
		r := <-inner
		out <- CheckoutResult{
			Completion: (*Completion)(r.Completion),
			Dismissed:  r.Dismissed,
			Err:        r.Err,
		}
	}()
	return out, nil
}

// Complete resolves a pending razorpay checkout with the overlay's callback
// identifiers; Dismiss resolves it as abandoned. Both are exposed for the
// local callback endpoints.
func (a *razorpayAdapter) Complete(orderID string, completion Completion) error {
	return a.bridge.Complete(orderID, razorpay.Completion(completion))
}

func (a *razorpayAdapter) Dismiss(orderID string) error {
	return a.bridge.Dismiss(orderID)
}

func (a *razorpayAdapter) Pending(orderID string) (*razorpay.Checkout, bool) {
	return a.bridge.Pending(orderID)
}

func (a *razorpayAdapter) Close(ctx context.Context) error {
	return a.bridge.Close(ctx)
}

// simulatedAdapter adapts the simulated gateway.
type simulatedAdapter struct {
	gw *simulated.Gateway
}

func newSimulatedAdapter(delay time.Duration) *simulatedAdapter {
	return &simulatedAdapter{gw: simulated.New(delay)}
}

func (a *simulatedAdapter) Provider() Provider { return ProviderSimulated }

func (a *simulatedAdapter) OpenCheckout(ctx context.Context, opts *CheckoutOptions) (<-chan CheckoutResult, error) {
	inner, err := a.gw.OpenCheckout(ctx, opts.OrderID)
	if err != nil {
		return nil, err
	}

	out := make(chan CheckoutResult, 1)
	go func() {
		r := <-inner
		if r.Err != nil {
			out <- CheckoutResult{Err: r.Err}
			return
		}
		out <- CheckoutResult{Completion: &Completion{
			PaymentID: r.PaymentID,
			OrderID:   r.OrderID,
			Signature: r.Signature,
		}}
	}()
	return out, nil
}

func (a *simulatedAdapter) Close(ctx context.Context) error { return a.gw.Close(ctx) }

// Completer is implemented by gateways whose checkouts are resolved by an
// external callback (the overlay's handler).
type Completer interface {
	Complete(orderID string, completion Completion) error
	Dismiss(orderID string) error
}
