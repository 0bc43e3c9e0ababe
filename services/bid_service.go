package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"pulasa-client/internal/api"
	"pulasa-client/internal/bidflow"
	"pulasa-client/internal/payment"
	"pulasa-client/internal/status"
	"pulasa-client/models"
	"pulasa-client/monitoring"
	"pulasa-client/utils"
)

var (
	feeRate = decimal.NewFromFloat(0.02)
	feeMin  = decimal.NewFromInt(2)
	feeMax  = decimal.NewFromInt(5)

	minIncrement = decimal.NewFromInt(1)
)

// PlatformFee is the convenience fee charged on top of a bid: 2% of the
// amount, clamped to the ₹2–₹5 band. The server computes the same figure;
// this one is for display before the order exists.
func PlatformFee(amount decimal.Decimal) decimal.Decimal {
	fee := amount.Mul(feeRate)
	if fee.LessThan(feeMin) {
		return feeMin
	}
	if fee.GreaterThan(feeMax) {
		return feeMax
	}
	return fee.Round(2)
}

// BidService places payment-backed bids and caches the user's bid history.
// A bid is validated locally before any network call, then runs through the
// order → checkout → verify flow; it exists only once verification passes.
type BidService struct {
	client   *api.Client
	auctions *AuctionService
	flow     *bidflow.Flow
	log      *logrus.Entry

	mu     sync.Mutex
	myBids []models.Bid
}

func NewBidService(client *api.Client, auctions *AuctionService, gateway payment.Gateway, opts bidflow.Options) *BidService {
	log := utils.Component("bids")
	return &BidService{
		client:   client,
		auctions: auctions,
		flow:     bidflow.New(gateway, opts, log),
		log:      log,
	}
}

// Flow exposes the submission state machine for the local surface.
func (s *BidService) Flow() *bidflow.Flow { return s.flow }

// Validate checks a bid amount against the cached auction without touching
// the network. The server re-validates; this catches the obvious rejections
// before a payment order is created.
func (s *BidService) Validate(auction *models.Auction, amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return status.ErrInvalidAmount
	}
	if auction.StatusAt(now) != models.AuctionActive {
		return status.ErrAuctionClosed
	}
	if amount.LessThan(auction.CurrentBid().Add(minIncrement)) {
		return status.ErrBidTooLow
	}
	return nil
}

// PlaceBid runs the full payment-backed bid flow for an auction. The
// returned snapshot is terminal: settled with the confirmed bid recorded, or
// failed with the reason.
func (s *BidService) PlaceBid(ctx context.Context, auctionID string, amount decimal.Decimal) (bidflow.Snapshot, error) {
	auction, err := s.auctions.Get(ctx, auctionID)
	if err != nil {
		return s.flow.Snapshot(), err
	}
	if err := s.Validate(auction, amount, time.Now()); err != nil {
		return s.flow.Snapshot(), err
	}

	createOrder := func(ctx context.Context) (*models.PaymentOrder, error) {
		return s.client.CreateBidOrder(ctx, auctionID, amount)
	}
	verify := func(ctx context.Context, completion payment.Completion) error {
		bid, err := s.client.VerifyBidPayment(ctx, completion)
		if err != nil {
			return err
		}
		s.recordBid(*bid)
		return nil
	}

	snap, err := s.flow.Run(ctx, createOrder, verify)
	if err != nil {
		monitoring.TrackBidFlow("bid", "failed")
		return snap, err
	}
	monitoring.TrackBidFlow("bid", "settled")

	// Confirm the new highest bid right away; the push event follows.
	if _, err := s.auctions.Refresh(ctx, auctionID); err != nil {
		s.log.WithError(err).WithField("auction_id", auctionID).Warn("refetch after bid failed")
	}
	return snap, nil
}

func (s *BidService) recordBid(bid models.Bid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.myBids = append([]models.Bid{bid}, s.myBids...)
}

// MyBids fetches the user's bid history and refreshes the cache.
func (s *BidService) MyBids(ctx context.Context, page int) ([]models.Bid, error) {
	resp, err := s.client.MyBids(ctx, page)
	if err != nil {
		return s.CachedBids(), err
	}
	s.mu.Lock()
	if page <= 1 {
		s.myBids = resp.Bids
	} else {
		s.myBids = append(s.myBids, resp.Bids...)
	}
	s.mu.Unlock()
	return resp.Bids, nil
}

// AuctionBids fetches the bid history of one auction.
func (s *BidService) AuctionBids(ctx context.Context, auctionID string, page int) ([]models.Bid, error) {
	resp, err := s.client.AuctionBids(ctx, auctionID, page)
	if err != nil {
		return nil, err
	}
	return resp.Bids, nil
}

// CachedBids returns a copy of the cached bid history.
func (s *BidService) CachedBids() []models.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Bid, len(s.myBids))
	copy(out, s.myBids)
	return out
}

// Reset drops cached bids. Called on logout.
func (s *BidService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.myBids = nil
}
