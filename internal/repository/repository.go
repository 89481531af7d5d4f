package repository

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

import (
	"fmt"
	"sort"
	"sync"

	"proxy-bidding/internal/biddingerrors"
	"proxy-bidding/internal/engine"
	model "proxy-bidding/internal/models"

	"github.com/google/uuid"
)

// AuctionDB defines the auction storage interface. Each auction owns one engine;
// Update and View run their callback while holding that auction's lock.
type AuctionDB interface {
	CreateAuction(auction model.Auction, eng *engine.ProxyBidEngine) error
	GetAuction(auctionID string) (model.Auction, error)
	ListAuctions() ([]model.Auction, error)
	Update(auctionID string, fn func(eng *engine.ProxyBidEngine) error) error
	View(auctionID string, fn func(eng *engine.ProxyBidEngine) error) error
	GetAuctionsByBidder(bidder uuid.UUID) ([]model.Auction, error)
}

// auctionSlot is the arena entry for one auction
type auctionSlot struct {
	mu      sync.RWMutex
	auction model.Auction
	engine  *engine.ProxyBidEngine
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
// The repo lock guards the maps; each slot lock serializes one auction.
type MemoryRepo struct {
	mu            sync.RWMutex
	auctions      map[string]*auctionSlot // key: auctionID -> value: slot
	bidderAuction map[uuid.UUID][]string  // key: bidder -> value: list of auctionIDs bidder has bid on
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:      make(map[string]*auctionSlot),
		bidderAuction: make(map[uuid.UUID][]string),
	}
}

// CreateAuction registers an auction and the engine that owns its state
func (r *MemoryRepo) CreateAuction(auction model.Auction, eng *engine.ProxyBidEngine) error {
	if auction.AuctionID == "" {
		return fmt.Errorf("repository: create auction: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}
	if eng == nil {
		return fmt.Errorf("repository: create auction %s: %w - missing engine", auction.AuctionID, biddingerrors.ErrInvalidAuction)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auction.AuctionID]; ok {
		return fmt.Errorf("repository: create auction %s: %w", auction.AuctionID, biddingerrors.ErrAuctionExists)
	}
	r.auctions[auction.AuctionID] = &auctionSlot{auction: auction, engine: eng}

	// restored engines may already carry bids
	for _, b := range eng.Bids() {
		r.indexBidderLocked(b.Bidder, auction.AuctionID)
	}
	return nil
}

// GetAuction returns an auction with its status taken from the engine
func (r *MemoryRepo) GetAuction(auctionID string) (model.Auction, error) {
	slot, err := r.slot(auctionID)
	if err != nil {
		return model.Auction{}, err
	}

	slot.mu.RLock()
	defer slot.mu.RUnlock()
	return slot.snapshot(), nil
}

// ListAuctions returns every auction ordered by creation time
func (r *MemoryRepo) ListAuctions() ([]model.Auction, error) {
	r.mu.RLock()
	slots := make([]*auctionSlot, 0, len(r.auctions))
	for _, s := range r.auctions {
		slots = append(slots, s)
	}
	r.mu.RUnlock()

	auctions := make([]model.Auction, 0, len(slots))
	for _, s := range slots {
		s.mu.RLock()
		auctions = append(auctions, s.snapshot())
		s.mu.RUnlock()
	}
	sort.Slice(auctions, func(i, j int) bool {
		if auctions[i].CreatedAt.Equal(auctions[j].CreatedAt) {
			return auctions[i].AuctionID < auctions[j].AuctionID
		}
		return auctions[i].CreatedAt.Before(auctions[j].CreatedAt)
	})
	return auctions, nil
}

// Update runs fn with exclusive access to the auction's engine. Bids appended by fn
// are indexed by bidder once fn returns without error.
func (r *MemoryRepo) Update(auctionID string, fn func(eng *engine.ProxyBidEngine) error) error {
	slot, err := r.slot(auctionID)
	if err != nil {
		return err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	before := slot.engine.CurrentStanding().BidCount
	if err := fn(slot.engine); err != nil {
		return err
	}

	if bids := slot.engine.Bids(); len(bids) > before {
		r.mu.Lock()
		for _, b := range bids[before:] {
			r.indexBidderLocked(b.Bidder, auctionID)
		}
		r.mu.Unlock()
	}
	if slot.engine.Status() == model.AuctionClosed && slot.auction.ClosedAt == nil {
		closedAt := slot.engine.AuctionResult().ClosedAt
		slot.auction.ClosedAt = &closedAt
	}
	return nil
}

// View runs fn with shared access to the auction's engine. fn must not mutate it.
func (r *MemoryRepo) View(auctionID string, fn func(eng *engine.ProxyBidEngine) error) error {
	slot, err := r.slot(auctionID)
	if err != nil {
		return err
	}

	slot.mu.RLock()
	defer slot.mu.RUnlock()
	return fn(slot.engine)
}

// GetAuctionsByBidder returns all auctions a bidder has bid on
func (r *MemoryRepo) GetAuctionsByBidder(bidder uuid.UUID) ([]model.Auction, error) {
	r.mu.RLock()
	ids, ok := r.bidderAuction[bidder]
	if !ok || len(ids) == 0 {
		r.mu.RUnlock()
		return nil, fmt.Errorf("repository: get auctions for bidder %s: %w", bidder, biddingerrors.ErrBidderNoBids)
	}
	slots := make([]*auctionSlot, 0, len(ids))
	for _, id := range ids {
		if s, exists := r.auctions[id]; exists {
			slots = append(slots, s)
		}
	}
	r.mu.RUnlock()

	auctions := make([]model.Auction, 0, len(slots))
	for _, s := range slots {
		s.mu.RLock()
		auctions = append(auctions, s.snapshot())
		s.mu.RUnlock()
	}
	return auctions, nil
}

func (r *MemoryRepo) slot(auctionID string) (*auctionSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slot, ok := r.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("repository: auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return slot, nil
}

// indexBidderLocked records that bidder has bid on auctionID. Caller holds r.mu.
func (r *MemoryRepo) indexBidderLocked(bidder uuid.UUID, auctionID string) {
	for _, id := range r.bidderAuction[bidder] {
		if id == auctionID {
			return
		}
	}
	r.bidderAuction[bidder] = append(r.bidderAuction[bidder], auctionID)
}

func (s *auctionSlot) snapshot() model.Auction {
	a := s.auction
	a.Status = s.engine.Status()
	return a
}
