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

// WalletService caches the wallet balance and runs top-ups through the same
// order → checkout → verify flow as bids. Available and locked funds are
// tracked separately; locked amounts back active bids.
type WalletService struct {
	client *api.Client
	flow   *bidflow.Flow
	log    *logrus.Entry

	mu     sync.Mutex
	wallet *models.Wallet
}

func NewWalletService(client *api.Client, gateway payment.Gateway, opts bidflow.Options) *WalletService {
	log := utils.Component("wallet")
	return &WalletService{
		client: client,
		flow:   bidflow.New(gateway, opts, log),
		log:    log,
	}
}

// Flow exposes the top-up state machine for the local surface.
func (s *WalletService) Flow() *bidflow.Flow { return s.flow }

// Balance returns the cached wallet, fetching it first if the cache is
// empty.
func (s *WalletService) Balance(ctx context.Context) (*models.Wallet, error) {
	s.mu.Lock()
	if s.wallet != nil {
		out := *s.wallet
		s.mu.Unlock()
		return &out, nil
	}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh refetches the wallet from the server.
func (s *WalletService) Refresh(ctx context.Context) (*models.Wallet, error) {
	started := time.Now()
	w, err := s.client.WalletBalance(ctx)
	if err != nil {
		return nil, err
	}
	monitoring.TrackRefetch("wallet", time.Since(started))

	s.mu.Lock()
	s.wallet = w
	out := *w
	s.mu.Unlock()
	return &out, nil
}

// TopUp adds funds through a gateway checkout. The credited balance comes
// back from the verification response; gateway completion alone credits
// nothing.
func (s *WalletService) TopUp(ctx context.Context, amount decimal.Decimal) (bidflow.Snapshot, error) {
	if !amount.IsPositive() {
		return s.flow.Snapshot(), status.ErrInvalidAmount
	}

	createOrder := func(ctx context.Context) (*models.PaymentOrder, error) {
		return s.client.CreateTopupOrder(ctx, amount)
	}
	verify := func(ctx context.Context, completion payment.Completion) error {
		w, err := s.client.VerifyTopupPayment(ctx, completion)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.wallet = w
		s.mu.Unlock()
		return nil
	}

	snap, err := s.flow.Run(ctx, createOrder, verify)
	if err != nil {
		monitoring.TrackBidFlow("topup", "failed")
		return snap, err
	}
	monitoring.TrackBidFlow("topup", "settled")
	return snap, nil
}

// Withdraw moves available funds out of the wallet. Locked funds cannot be
// withdrawn; the server rejects anything above the available balance.
func (s *WalletService) Withdraw(ctx context.Context, amount decimal.Decimal) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, status.ErrInvalidAmount
	}
	w, err := s.client.Withdraw(ctx, amount)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.wallet = w
	out := *w
	s.mu.Unlock()
	return &out, nil
}

// Transactions is the wallet's transaction history, paginated.
func (s *WalletService) Transactions(ctx context.Context, page, limit int) (*api.TransactionsResponse, error) {
	return s.client.Transactions(ctx, page, limit)
}

// ActiveBids lists the bids currently backed by locked funds.
func (s *WalletService) ActiveBids(ctx context.Context) ([]models.Bid, error) {
	return s.client.ActiveBids(ctx)
}

// WonAuctions lists the auctions the user has won.
func (s *WalletService) WonAuctions(ctx context.Context) ([]models.Auction, error) {
	return s.client.WonAuctions(ctx)
}

// Reset drops the cached wallet. Called on logout.
func (s *WalletService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallet = nil
}
