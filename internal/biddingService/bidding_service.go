package bidding

//go:generate mockgen -source=bidding_service.go -destination=mock_bid_journal.go -package=bidding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"proxy-bidding/internal/biddingerrors"
	"proxy-bidding/internal/cache"
	"proxy-bidding/internal/engine"
	"proxy-bidding/internal/events"
	"proxy-bidding/internal/models"
	"proxy-bidding/internal/repository"
	"proxy-bidding/utils"

	"github.com/google/uuid"
)

// BidJournal durably records auctions and accepted bids so they survive a restart
type BidJournal interface {
	SaveAuction(ctx context.Context, auction models.Auction) error
	AppendBid(ctx context.Context, auctionID string, seq int, bid models.Bid) error
	MarkClosed(ctx context.Context, auctionID string, at time.Time) error
	LoadAuctions(ctx context.Context) ([]models.AuctionHistory, error)
}

// MetricsRecorder receives auction metrics
type MetricsRecorder interface {
	ObserveSubmission(result string, leaderChanged bool, elapsed time.Duration)
	AuctionOpened()
	AuctionClosed(finalPrice int64, sold bool)
}

// BiddingService defines the business logic for proxy bidding auctions
type BiddingService struct {
	repo             repository.AuctionDB
	journal          BidJournal
	publisher        events.Publisher
	cache            cache.StandingCache
	metrics          MetricsRecorder
	now              func() time.Time
	defaultIncrement int64

	// createMu makes the duplicate check, journal write and registration of a new
	// auction one step
	createMu sync.Mutex
}

// Option configures optional collaborators of the service
type Option func(*BiddingService)

func WithJournal(j BidJournal) Option {
	return func(s *BiddingService) { s.journal = j }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *BiddingService) { s.publisher = p }
}

func WithStandingCache(c cache.StandingCache) Option {
	return func(s *BiddingService) { s.cache = c }
}

func WithMetrics(m MetricsRecorder) Option {
	return func(s *BiddingService) { s.metrics = m }
}

// WithClock replaces time.Now as the source of bid and close timestamps
func WithClock(now func() time.Time) Option {
	return func(s *BiddingService) { s.now = now }
}

// WithDefaultIncrement sets the increment used when a new auction leaves it unset
func WithDefaultIncrement(inc int64) Option {
	return func(s *BiddingService) { s.defaultIncrement = inc }
}

// NewBiddingService creates a new BiddingService instance. Without options it keeps
// state in memory only and publishes nothing.
func NewBiddingService(repo repository.AuctionDB, opts ...Option) *BiddingService {
	s := &BiddingService{
		repo:             repo,
		journal:          nopJournal{},
		publisher:        events.NopPublisher{},
		cache:            cache.NopCache{},
		metrics:          nopMetrics{},
		now:              time.Now,
		defaultIncrement: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ======================================================================================
// Auction lifecycle
// ======================================================================================

// CreateAuction validates the pricing rules, journals the auction and opens it for bids
func (s *BiddingService) CreateAuction(ctx context.Context, req models.NewAuction) (models.Auction, error) {
	if req.MinIncrement == 0 {
		req.MinIncrement = s.defaultIncrement
	}
	cfg := engine.Config{
		StartingPrice: req.StartingPrice,
		MinIncrement:  req.MinIncrement,
		ReservePrice:  req.ReservePrice,
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: %w", err)
	}

	auctionID := req.AuctionID
	if auctionID == "" {
		auctionID = utils.GenerateID()
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	if _, err := s.repo.GetAuction(auctionID); err == nil {
		return models.Auction{}, fmt.Errorf("service: create auction %s: %w", auctionID, biddingerrors.ErrAuctionExists)
	} else if !errors.Is(err, biddingerrors.ErrAuctionNotFound) {
		return models.Auction{}, fmt.Errorf("service: failed to check auction %s: %w", auctionID, err)
	}

	auction := models.Auction{
		AuctionID:     auctionID,
		Title:         req.Title,
		StartingPrice: req.StartingPrice,
		MinIncrement:  req.MinIncrement,
		ReservePrice:  req.ReservePrice,
		Status:        models.AuctionOpen,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.journal.SaveAuction(ctx, auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to journal auction %s: %w", auctionID, err)
	}
	if err := s.repo.CreateAuction(auction, eng); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to register auction %s: %w", auctionID, err)
	}

	s.metrics.AuctionOpened()
	s.refreshCache(ctx, auctionID, eng.CurrentStanding())

	return auction, nil
}

// CloseAuction ends an auction. No submission is accepted afterwards.
func (s *BiddingService) CloseAuction(ctx context.Context, auctionID string) (models.AuctionResult, error) {
	if auctionID == "" {
		return models.AuctionResult{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}

	var (
		result   models.AuctionResult
		standing models.Standing
	)
	err := s.repo.Update(auctionID, func(eng *engine.ProxyBidEngine) error {
		if eng.Status() == models.AuctionClosed {
			return fmt.Errorf("service: %w", biddingerrors.ErrAuctionClosed)
		}
		at := s.stamp(eng.LastAcceptedAt())

		if err := s.journal.MarkClosed(ctx, auctionID, at); err != nil {
			return fmt.Errorf("service: failed to journal close: %w", err)
		}
		res, err := eng.Close(at)
		if err != nil {
			return err
		}
		result = res
		standing = eng.CurrentStanding()
		return nil
	})
	if err != nil {
		return models.AuctionResult{}, fmt.Errorf("service: failed to close auction %s: %w", auctionID, err)
	}

	s.metrics.AuctionClosed(result.FinalPrice, result.Sold())
	s.refreshCache(ctx, auctionID, standing)

	event := events.AuctionClosedEvent{
		EventID:    utils.GenerateID(),
		AuctionID:  auctionID,
		Winner:     result.Winner,
		FinalPrice: result.FinalPrice,
		ReserveMet: result.ReserveMet,
		BidCount:   result.BidCount,
		Timestamp:  result.ClosedAt,
	}
	if err := s.publisher.PublishAuctionClosed(ctx, event); err != nil {
		utils.Warn("service: failed to publish auction closed event", map[string]any{"auction_id": auctionID, "error": err.Error()})
	}

	return result, nil
}

// ======================================================================================
// Bidding
// ======================================================================================

// PlaceBid submits a bidder's maximum to an auction. The bid is stamped, resolved,
// journaled and committed while the auction is locked, so either all of that happens
// or the auction is left unchanged.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID string, bidder uuid.UUID, maximumBid int64) (models.SubmitResult, error) {
	if auctionID == "" {
		return models.SubmitResult{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}
	if err := ctx.Err(); err != nil {
		return models.SubmitResult{}, fmt.Errorf("service: %w", err)
	}

	started := time.Now()
	var result models.SubmitResult
	err := s.repo.Update(auctionID, func(eng *engine.ProxyBidEngine) error {
		res, err := eng.Evaluate(bidder, maximumBid, s.stamp(eng.LastAcceptedAt()))
		if err != nil {
			return err
		}

		seq := eng.CurrentStanding().BidCount
		if err := s.journal.AppendBid(ctx, auctionID, seq, res.Bid); err != nil {
			return fmt.Errorf("service: failed to journal bid: %w", err)
		}
		if err := eng.Apply(res); err != nil {
			return err
		}
		result = eng.Result(res)
		return nil
	})
	elapsed := time.Since(started)
	if err != nil {
		s.metrics.ObserveSubmission(rejectionReason(err), false, elapsed)
		return models.SubmitResult{}, fmt.Errorf("service: failed to place bid on auction %s by bidder %s: %w", auctionID, bidder, err)
	}

	s.metrics.ObserveSubmission(string(result.Outcome), result.LeaderChanged, elapsed)
	s.refreshCache(ctx, auctionID, result.Standing)

	event := events.BidPlacedEvent{
		EventID:       utils.GenerateID(),
		AuctionID:     auctionID,
		Seq:           result.Standing.BidCount,
		Bidder:        result.Bid.Bidder,
		BidPrice:      result.Bid.BidPrice,
		Outcome:       string(result.Outcome),
		LeadingBidder: result.Standing.LeadingBidder,
		CurrentPrice:  result.Standing.CurrentPrice,
		LeaderChanged: result.LeaderChanged,
		Timestamp:     result.Bid.PlacedAt,
	}
	if err := s.publisher.PublishBidPlaced(ctx, event); err != nil {
		utils.Warn("service: failed to publish bid placed event", map[string]any{"auction_id": auctionID, "error": err.Error()})
	}

	return result, nil
}

// stamp returns the current time, never earlier than the last accepted bid
func (s *BiddingService) stamp(last time.Time) time.Time {
	at := s.now().UTC()
	if at.Before(last) {
		return last
	}
	return at
}

// rejectionReason labels a failed submission for metrics
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return "too_low"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return "invalid"
	case errors.Is(err, biddingerrors.ErrOutOfOrderSubmission):
		return "out_of_order"
	case errors.Is(err, biddingerrors.ErrAuctionClosed):
		return "closed"
	case errors.Is(err, biddingerrors.ErrAuctionNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (s *BiddingService) refreshCache(ctx context.Context, auctionID string, standing models.Standing) {
	if err := s.cache.Put(ctx, auctionID, standing); err != nil {
		utils.Warn("service: failed to refresh standing cache", map[string]any{"auction_id": auctionID, "error": err.Error()})
	}
}

// ======================================================================================
// Reads
// ======================================================================================

// GetAuction returns one auction's configuration and status
func (s *BiddingService) GetAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}

	auction, err := s.repo.GetAuction(auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// ListAuctions returns every auction ordered by creation time
func (s *BiddingService) ListAuctions(ctx context.Context) ([]models.Auction, error) {
	auctions, err := s.repo.ListAuctions()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// GetStanding returns the public leader and price of an auction
func (s *BiddingService) GetStanding(ctx context.Context, auctionID string) (models.Standing, error) {
	if auctionID == "" {
		return models.Standing{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}

	var standing models.Standing
	err := s.repo.View(auctionID, func(eng *engine.ProxyBidEngine) error {
		standing = eng.CurrentStanding()
		return nil
	})
	if err != nil {
		return models.Standing{}, fmt.Errorf("service: failed to get standing for auction %s: %w", auctionID, err)
	}
	return standing, nil
}

// GetBidHistory returns the accepted bids of an auction without their ceilings
func (s *BiddingService) GetBidHistory(ctx context.Context, auctionID string) ([]models.PublicBid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}

	var bids []models.PublicBid
	err := s.repo.View(auctionID, func(eng *engine.ProxyBidEngine) error {
		bids = eng.PublicBids()
		if len(bids) == 0 {
			return biddingerrors.ErrNoBids
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetBidderBids returns a bidder's own bids on an auction, ceilings included.
// Callers must make sure only that bidder sees the result.
func (s *BiddingService) GetBidderBids(ctx context.Context, auctionID string, bidder uuid.UUID) ([]models.Bid, error) {
	if auctionID == "" || bidder == uuid.Nil {
		return nil, fmt.Errorf("service: %w - missing auction ID or bidder", biddingerrors.ErrInvalidBid)
	}

	var bids []models.Bid
	err := s.repo.View(auctionID, func(eng *engine.ProxyBidEngine) error {
		bids = eng.BidsBy(bidder)
		if len(bids) == 0 {
			return biddingerrors.ErrBidderNoBids
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids of bidder %s on auction %s: %w", bidder, auctionID, err)
	}
	return bids, nil
}

// GetAuctionsByBidder returns all auctions a bidder has placed bids on
func (s *BiddingService) GetAuctionsByBidder(ctx context.Context, bidder uuid.UUID) ([]models.Auction, error) {
	if bidder == uuid.Nil {
		return nil, fmt.Errorf("service: %w - empty bidder ID", biddingerrors.ErrInvalidBid)
	}

	auctions, err := s.repo.GetAuctionsByBidder(bidder)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for bidder %s: %w", bidder, err)
	}
	return auctions, nil
}

// ======================================================================================
// Startup
// ======================================================================================

// Restore rebuilds every journaled auction by replaying its bids. It returns the
// number of auctions restored.
func (s *BiddingService) Restore(ctx context.Context) (int, error) {
	histories, err := s.journal.LoadAuctions(ctx)
	if err != nil {
		return 0, fmt.Errorf("service: failed to load journal: %w", err)
	}

	for _, h := range histories {
		a := h.Auction
		eng, err := engine.Replay(engine.Config{
			StartingPrice: a.StartingPrice,
			MinIncrement:  a.MinIncrement,
			ReservePrice:  a.ReservePrice,
		}, h.Bids)
		if err != nil {
			return 0, fmt.Errorf("service: failed to replay auction %s: %w", a.AuctionID, err)
		}
		if err := checkReplay(eng.Bids(), h.Bids); err != nil {
			return 0, fmt.Errorf("service: auction %s: %w", a.AuctionID, err)
		}

		if a.Status == models.AuctionClosed {
			if a.ClosedAt == nil {
				return 0, fmt.Errorf("service: auction %s: %w - closed without close time", a.AuctionID, biddingerrors.ErrInvalidAuction)
			}
			if _, err := eng.Close(*a.ClosedAt); err != nil {
				return 0, fmt.Errorf("service: failed to close restored auction %s: %w", a.AuctionID, err)
			}
		}

		if err := s.repo.CreateAuction(a, eng); err != nil {
			return 0, fmt.Errorf("service: failed to register restored auction %s: %w", a.AuctionID, err)
		}

		standing := eng.CurrentStanding()
		if standing.Status == models.AuctionOpen {
			s.metrics.AuctionOpened()
		}
		s.refreshCache(ctx, a.AuctionID, standing)
	}

	utils.Info("service: restored auctions from journal", map[string]any{"count": len(histories)})
	return len(histories), nil
}

// checkReplay verifies that replaying a journal reproduced the recorded prices
func checkReplay(replayed, journaled []models.Bid) error {
	for i := range journaled {
		if replayed[i].BidPrice != journaled[i].BidPrice {
			return fmt.Errorf("replay diverged at bid %d: recorded price %d, replayed %d",
				i, journaled[i].BidPrice, replayed[i].BidPrice)
		}
	}
	return nil
}

// nopJournal keeps nothing. Used when the service runs without durable storage.
type nopJournal struct{}

func (nopJournal) SaveAuction(context.Context, models.Auction) error         { return nil }
func (nopJournal) AppendBid(context.Context, string, int, models.Bid) error  { return nil }
func (nopJournal) MarkClosed(context.Context, string, time.Time) error       { return nil }
func (nopJournal) LoadAuctions(context.Context) ([]models.AuctionHistory, error) {
	return nil, nil
}

type nopMetrics struct{}

func (nopMetrics) ObserveSubmission(string, bool, time.Duration) {}
func (nopMetrics) AuctionOpened()                                {}
func (nopMetrics) AuctionClosed(int64, bool)                     {}
