package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulasa-client/internal/api"
	"pulasa-client/internal/bidflow"
	"pulasa-client/internal/payment"
	"pulasa-client/internal/status"
)

// dismissGateway resolves every checkout as dismissed by the user.
type dismissGateway struct{}

func (dismissGateway) Provider() payment.Provider { return payment.ProviderSimulated }

func (dismissGateway) OpenCheckout(ctx context.Context, opts *payment.CheckoutOptions) (<-chan payment.CheckoutResult, error) {
	out := make(chan payment.CheckoutResult, 1)
	out <- payment.CheckoutResult{Dismissed: true}
	return out, nil
}

func (dismissGateway) Close(context.Context) error { return nil }

func newTestWalletService(t *testing.T, gateway payment.Gateway, handler http.HandlerFunc) *WalletService {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	client := api.NewClient(ts.URL, 5*time.Second, func() string { return "tok" })
	return NewWalletService(client, gateway, bidflow.Options{})
}

func TestWalletService_TopUp_CreditsFromVerificationResponse(t *testing.T) {
	svc := newTestWalletService(t, autoCompleteGateway{}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/wallet/topup/create-order":
			w.Write([]byte(`{"order":{"order_id":"order_t1","amount":100000,"currency":"INR","key":"rzp_test"}}`))
		case "/api/wallet/topup/verify-payment":
			w.Write([]byte(`{"balance":"1500","locked_amount":"200"}`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})

	snap, err := svc.TopUp(context.Background(), decimal.NewFromInt(1000))

	require.NoError(t, err)
	assert.Equal(t, bidflow.StateSettled, snap.State)

	// The cached balance is the server's, no extra fetch.
	wallet, err := svc.Balance(context.Background())
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(1500)))
	assert.True(t, wallet.LockedAmount.Equal(decimal.NewFromInt(200)))
}

func TestWalletService_TopUp_DismissedCreditsNothing(t *testing.T) {
	svc := newTestWalletService(t, dismissGateway{}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/wallet/topup/create-order":
			w.Write([]byte(`{"order":{"order_id":"order_t2","amount":50000,"currency":"INR","key":"rzp_test"}}`))
		case "/api/wallet/topup/verify-payment":
			t.Error("a dismissed checkout must never reach verification")
		}
	})

	snap, err := svc.TopUp(context.Background(), decimal.NewFromInt(500))

	assert.ErrorIs(t, err, status.ErrPaymentDismissed)
	assert.Equal(t, bidflow.StateFailed, snap.State)

	svc.mu.Lock()
	assert.Nil(t, svc.wallet)
	svc.mu.Unlock()
}

func TestWalletService_TopUp_NonPositiveAmountRejected(t *testing.T) {
	svc := newTestWalletService(t, autoCompleteGateway{}, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})

	_, err := svc.TopUp(context.Background(), decimal.Zero)

	assert.ErrorIs(t, err, status.ErrInvalidAmount)
}

func TestWalletService_Balance_ServesCacheWithoutFetch(t *testing.T) {
	fetches := 0
	svc := newTestWalletService(t, autoCompleteGateway{}, func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(`{"balance":"900","locked_amount":"0"}`))
	})

	first, err := svc.Balance(context.Background())
	require.NoError(t, err)
	second, err := svc.Balance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, fetches)
	assert.True(t, first.Balance.Equal(second.Balance))
}

func TestWalletService_Withdraw_UpdatesCache(t *testing.T) {
	svc := newTestWalletService(t, autoCompleteGateway{}, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/wallet/withdraw", r.URL.Path)
		w.Write([]byte(`{"balance":"300","locked_amount":"200"}`))
	})

	wallet, err := svc.Withdraw(context.Background(), decimal.NewFromInt(600))

	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(300)))

	_, err = svc.Withdraw(context.Background(), decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, status.ErrInvalidAmount)
}

func TestWalletService_Reset_DropsCachedWallet(t *testing.T) {
	fetches := 0
	svc := newTestWalletService(t, autoCompleteGateway{}, func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(`{"balance":"900","locked_amount":"0"}`))
	})

	_, err := svc.Balance(context.Background())
	require.NoError(t, err)
	svc.Reset()
	_, err = svc.Balance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, fetches)
}
