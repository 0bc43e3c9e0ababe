// Package services holds the client-side domain stores. Each store caches
// the slice of remote state its views need, reconciles push events against
// authoritative refetches, and exposes synchronous accessors for the local
// surface.
package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pulasa-client/internal/api"
	"pulasa-client/internal/realtime"
	"pulasa-client/models"
	"pulasa-client/monitoring"
	"pulasa-client/utils"
)

// AuctionService caches auctions fetched from the auction API and merges
// realtime bid events into the cache. Events only ever raise the cached
// highest bid; an authoritative fetch overwrites it, and the last fetch wins
// over any older in-flight fetch.
type AuctionService struct {
	client *api.Client
	log    *logrus.Entry

	mu       sync.Mutex
	auctions map[string]*models.Auction
	// fetchSeq assigns a token per entity; a response is applied only if no
	// newer fetch for the same entity finished first.
	fetchSeq map[string]uint64
	applied  map[string]uint64
	// wonAcks remembers which win banners the user dismissed, so a refetch
	// does not resurface them.
	wonAcks map[string]struct{}
}

func NewAuctionService(client *api.Client) *AuctionService {
	return &AuctionService{
		client:   client,
		log:      utils.Component("auctions"),
		auctions: make(map[string]*models.Auction),
		fetchSeq: make(map[string]uint64),
		applied:  make(map[string]uint64),
		wonAcks:  make(map[string]struct{}),
	}
}

func (s *AuctionService) begin(entity string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchSeq[entity]++
	return s.fetchSeq[entity]
}

// commit reports whether the fetch identified by token is still the newest
// for the entity and, if so, records it as applied.
func (s *AuctionService) commit(entity string, token uint64) bool {
	if token < s.fetchSeq[entity] || token <= s.applied[entity] {
		monitoring.TrackStaleResponse("auctions")
		return false
	}
	s.applied[entity] = token
	return true
}

// List fetches the auction list and replaces the cache with it. Filters are
// passed through to the API (status, search, page).
func (s *AuctionService) List(ctx context.Context, filters map[string]string) ([]models.Auction, error) {
	token := s.begin("list")
	started := time.Now()
	resp, err := s.client.ListAuctions(ctx, filters)
	if err != nil {
		return s.Cached(), err
	}
	monitoring.TrackRefetch("auctions", time.Since(started))

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.commit("list", token) {
		return s.cachedLocked(), nil
	}
	for i := range resp.Auctions {
		s.mergeLocked(&resp.Auctions[i])
	}
	return s.cachedLocked(), nil
}

// Get returns the cached auction if present, otherwise fetches it.
func (s *AuctionService) Get(ctx context.Context, id string) (*models.Auction, error) {
	s.mu.Lock()
	if a, ok := s.auctions[id]; ok {
		out := *a
		s.mu.Unlock()
		return &out, nil
	}
	s.mu.Unlock()
	return s.Refresh(ctx, id)
}

// Refresh refetches one auction from the server. On a newBid event this is
// the reconciliation step: the push event updates the cache immediately and
// the refetch confirms or corrects it.
func (s *AuctionService) Refresh(ctx context.Context, id string) (*models.Auction, error) {
	token := s.begin(id)
	started := time.Now()
	a, err := s.client.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	monitoring.TrackRefetch("auctions", time.Since(started))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commit(id, token) {
		s.mergeLocked(a)
	}
	if cached, ok := s.auctions[id]; ok {
		out := *cached
		return &out, nil
	}
	out := *a
	return &out, nil
}

// mergeLocked folds a fetched auction into the cache. The fetch is
// authoritative: its bid figures replace whatever events put in the cache,
// rolling back any optimistic value the server does not confirm. Only status
// is clamped, so a projection derived ahead of the server clock cannot move
// backward.
func (s *AuctionService) mergeLocked(next *models.Auction) {
	cur, ok := s.auctions[next.ID]
	if !ok {
		cp := *next
		s.auctions[next.ID] = &cp
		return
	}
	merged := *next
	merged.Status = models.AdvanceStatus(cur.Status, next.Status)
	s.auctions[next.ID] = &merged
}

// HandleEvent applies a push event to the cache. The caller follows up with
// Refresh for newBid on tracked auctions; the event alone keeps the list
// view current in the meantime.
func (s *AuctionService) HandleEvent(ev realtime.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case realtime.EventNewBid:
		a, ok := s.auctions[ev.NewBid.AuctionID]
		if !ok {
			return
		}
		if ev.NewBid.Amount.GreaterThan(a.HighestBid) {
			a.HighestBid = ev.NewBid.Amount
			a.HighestBidderID = ev.NewBid.BidderID
			a.TotalBids++
		}
	case realtime.EventAuctionEnded:
		a, ok := s.auctions[ev.AuctionEnded.AuctionID]
		if !ok {
			return
		}
		a.Status = models.AdvanceStatus(a.Status, models.AuctionEnded)
		if ev.AuctionEnded.WinnerID != "" {
			a.WinnerID = ev.AuctionEnded.WinnerID
			a.WinningAmount = ev.AuctionEnded.WinningAmount
		}
	case realtime.EventAuctionWon:
		a, ok := s.auctions[ev.AuctionWon.AuctionID]
		if !ok {
			return
		}
		a.Status = models.AdvanceStatus(a.Status, models.AuctionEnded)
		a.WinnerID = ev.AuctionWon.UserID
		a.WinningAmount = ev.AuctionWon.Amount
	}
}

// Create posts a new auction. Admin only; the server enforces it, this just
// forwards.
func (s *AuctionService) Create(ctx context.Context, req api.CreateAuctionRequest) (*models.Auction, error) {
	a, err := s.client.CreateAuction(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.mergeLocked(a)
	s.mu.Unlock()
	return a, nil
}

// End asks the server to close an auction early.
func (s *AuctionService) End(ctx context.Context, id string) (*models.Auction, error) {
	a, err := s.client.EndAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.mergeLocked(a)
	s.mu.Unlock()
	return a, nil
}

func (s *AuctionService) Stats(ctx context.Context, id string) (*models.AuctionStats, error) {
	return s.client.AuctionStats(ctx, id)
}

func (s *AuctionService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	return s.client.DashboardStats(ctx)
}

// AckWon records that the user dismissed the win banner for an auction.
func (s *AuctionService) AckWon(auctionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wonAcks[auctionID] = struct{}{}
}

// WonAcked reports whether the win banner for the auction was dismissed.
func (s *AuctionService) WonAcked(auctionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.wonAcks[auctionID]
	return ok
}

// Cached returns a copy of every cached auction, newest end time first.
func (s *AuctionService) Cached() []models.Auction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cachedLocked()
}

func (s *AuctionService) cachedLocked() []models.Auction {
	out := make([]models.Auction, 0, len(s.auctions))
	for _, a := range s.auctions {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EndTime.After(out[j].EndTime)
	})
	return out
}

// Reset drops all cached state. Called on logout.
func (s *AuctionService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions = make(map[string]*models.Auction)
	s.fetchSeq = make(map[string]uint64)
	s.applied = make(map[string]uint64)
	s.wonAcks = make(map[string]struct{})
}
