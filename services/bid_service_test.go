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
	"pulasa-client/models"
)

// autoCompleteGateway resolves every checkout successfully.
type autoCompleteGateway struct{}

func (autoCompleteGateway) Provider() payment.Provider { return payment.ProviderSimulated }

func (autoCompleteGateway) OpenCheckout(ctx context.Context, opts *payment.CheckoutOptions) (<-chan payment.CheckoutResult, error) {
	out := make(chan payment.CheckoutResult, 1)
	out <- payment.CheckoutResult{Completion: &payment.Completion{
		PaymentID: "pay_test",
		OrderID:   opts.OrderID,
		Signature: "sig_test",
	}}
	return out, nil
}

func (autoCompleteGateway) Close(context.Context) error { return nil }

func activeAuction(id string, highest int64) *models.Auction {
	now := time.Now()
	return &models.Auction{
		ID:         id,
		ItemName:   "Pulasa Premium",
		BasePrice:  decimal.NewFromInt(500),
		HighestBid: decimal.NewFromInt(highest),
		StartTime:  now.Add(-time.Hour),
		EndTime:    now.Add(time.Hour),
		Status:     models.AuctionActive,
	}
}

func TestPlatformFee_ClampsToBand(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		expected string
	}{
		{"below minimum", 50, "2"},     // 2% = 1, clamped up
		{"within band", 200, "4"},      // 2% = 4
		{"above maximum", 500, "5"},    // 2% = 10, clamped down
		{"far above maximum", 5000, "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee := PlatformFee(decimal.NewFromInt(tt.amount))
			expected, _ := decimal.NewFromString(tt.expected)
			assert.True(t, fee.Equal(expected), "got %s, want %s", fee, expected)
		})
	}
}

func TestBidService_Validate(t *testing.T) {
	svc := &BidService{}
	now := time.Now()

	t.Run("bid too low", func(t *testing.T) {
		a := activeAuction("a1", 700)
		err := svc.Validate(a, decimal.NewFromInt(700), now)
		assert.ErrorIs(t, err, status.ErrBidTooLow)
	})

	t.Run("minimum increment accepted", func(t *testing.T) {
		a := activeAuction("a1", 700)
		assert.NoError(t, svc.Validate(a, decimal.NewFromInt(701), now))
	})

	t.Run("base price floor with no bids", func(t *testing.T) {
		a := activeAuction("a1", 0)
		err := svc.Validate(a, decimal.NewFromInt(500), now)
		assert.ErrorIs(t, err, status.ErrBidTooLow)
		assert.NoError(t, svc.Validate(a, decimal.NewFromInt(501), now))
	})

	t.Run("ended auction rejected", func(t *testing.T) {
		a := activeAuction("a1", 700)
		a.EndTime = now.Add(-time.Minute)
		err := svc.Validate(a, decimal.NewFromInt(800), now)
		assert.ErrorIs(t, err, status.ErrAuctionClosed)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		a := activeAuction("a1", 700)
		err := svc.Validate(a, decimal.Zero, now)
		assert.ErrorIs(t, err, status.ErrInvalidAmount)
	})
}

func TestBidService_PlaceBid_TooLowNeverTouchesNetwork(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer ts.Close()

	client := api.NewClient(ts.URL, 5*time.Second, func() string { return "tok" })
	auctions := NewAuctionService(client)
	auctions.auctions["a1"] = activeAuction("a1", 700)

	svc := NewBidService(client, auctions, autoCompleteGateway{}, bidflow.Options{})

	_, err := svc.PlaceBid(context.Background(), "a1", decimal.NewFromInt(650))

	assert.ErrorIs(t, err, status.ErrBidTooLow)
	assert.Zero(t, requests)
}

func TestBidService_PlaceBid_SettlesAndRecordsBid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/bid/create-order":
			w.Write([]byte(`{"order":{"order_id":"order_1","amount":75500,"currency":"INR","key":"rzp_test"}}`))
		case "/api/bid/verify-payment":
			w.Write([]byte(`{"bid":{"id":"b1","auction_id":"a1","amount":"755","payment_status":"authorized"}}`))
		case "/api/auction/a1":
			w.Write([]byte(`{"auction":{"id":"a1","highest_bid":"755","base_price":"500","status":"active"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client := api.NewClient(ts.URL, 5*time.Second, func() string { return "tok" })
	auctions := NewAuctionService(client)
	auctions.auctions["a1"] = activeAuction("a1", 700)

	svc := NewBidService(client, auctions, autoCompleteGateway{}, bidflow.Options{})

	snap, err := svc.PlaceBid(context.Background(), "a1", decimal.NewFromInt(755))

	require.NoError(t, err)
	assert.Equal(t, bidflow.StateSettled, snap.State)

	bids := svc.CachedBids()
	require.Len(t, bids, 1)
	assert.Equal(t, "b1", bids[0].ID)
	assert.Equal(t, models.BidPaymentAuthorized, bids[0].PaymentStatus)
}
