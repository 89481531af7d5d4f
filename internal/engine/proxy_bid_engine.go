package engine

import (
	"fmt"
	"time"

	"proxy-bidding/internal/biddingerrors"
	"proxy-bidding/internal/models"

	"github.com/google/uuid"
)

// Config holds the pricing rules of one auction. Amounts are minor currency units.
type Config struct {
	StartingPrice int64
	MinIncrement  int64
	// ReservePrice of zero means no reserve
	ReservePrice int64
}

// Validate checks that the pricing rules are usable
func (c Config) Validate() error {
	if c.StartingPrice < 0 {
		return fmt.Errorf("engine: %w - negative starting price", biddingerrors.ErrInvalidAuction)
	}
	if c.MinIncrement <= 0 {
		return fmt.Errorf("engine: %w - increment must be positive", biddingerrors.ErrInvalidAuction)
	}
	if c.ReservePrice < 0 {
		return fmt.Errorf("engine: %w - negative reserve price", biddingerrors.ErrInvalidAuction)
	}
	return nil
}

// ProxyBidEngine resolves bid submissions for a single auction under proxy-bidding
// rules. It performs no I/O and no locking: callers must serialize access per auction.
type ProxyBidEngine struct {
	cfg      Config
	status   models.AuctionStatus
	bids     []models.Bid
	leader   *models.Bid
	price    int64
	lastAt   time.Time
	closedAt time.Time
}

// Resolution is the outcome of evaluating a submission against one version of the
// auction state. It is only valid for Apply on that same version.
type Resolution struct {
	version       int
	Bid           models.Bid
	Leader        models.Bid
	Price         int64
	Outcome       models.Outcome
	LeaderChanged bool
}

// New opens an auction with no bids
func New(cfg Config) (*ProxyBidEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ProxyBidEngine{
		cfg:    cfg,
		status: models.AuctionOpen,
		price:  cfg.StartingPrice,
	}, nil
}

// Replay rebuilds an engine by resubmitting previously accepted bids in order
func Replay(cfg Config, bids []models.Bid) (*ProxyBidEngine, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	for i, b := range bids {
		if _, err := e.Submit(b.Bidder, b.MaximumBid, b.PlacedAt); err != nil {
			return nil, fmt.Errorf("engine: replay bid %d: %w", i, err)
		}
	}
	return e, nil
}

// Submit evaluates and commits a submission in one step
func (e *ProxyBidEngine) Submit(bidder uuid.UUID, maximumBid int64, at time.Time) (models.SubmitResult, error) {
	res, err := e.Evaluate(bidder, maximumBid, at)
	if err != nil {
		return models.SubmitResult{}, err
	}
	if err := e.Apply(res); err != nil {
		return models.SubmitResult{}, err
	}
	return e.result(res), nil
}

// Evaluate resolves a submission against the current state without changing it
func (e *ProxyBidEngine) Evaluate(bidder uuid.UUID, maximumBid int64, at time.Time) (Resolution, error) {
	if e.status == models.AuctionClosed {
		return Resolution{}, fmt.Errorf("engine: %w", biddingerrors.ErrAuctionClosed)
	}
	if err := validateSubmission(bidder, maximumBid, at); err != nil {
		return Resolution{}, err
	}
	if at.Before(e.lastAt) {
		return Resolution{}, fmt.Errorf("engine: %w - submitted %s, last accepted %s",
			biddingerrors.ErrOutOfOrderSubmission, at.Format(time.RFC3339Nano), e.lastAt.Format(time.RFC3339Nano))
	}

	switch {
	case e.leader == nil:
		return e.resolveOpening(bidder, maximumBid, at)
	case e.leader.Bidder == bidder:
		return e.resolveRaise(bidder, maximumBid, at)
	default:
		return e.resolveChallenge(bidder, maximumBid, at)
	}
}

// Apply commits a resolution produced by Evaluate on the current state
func (e *ProxyBidEngine) Apply(res Resolution) error {
	if e.status == models.AuctionClosed {
		return fmt.Errorf("engine: %w", biddingerrors.ErrAuctionClosed)
	}
	if res.version != len(e.bids) {
		return fmt.Errorf("engine: %w - evaluated at %d, state at %d",
			biddingerrors.ErrStaleResolution, res.version, len(e.bids))
	}

	leader := res.Leader
	e.bids = append(e.bids, res.Bid)
	e.leader = &leader
	e.price = res.Price
	e.lastAt = res.Bid.PlacedAt
	return nil
}

// Result turns a committed resolution into the caller-facing result
func (e *ProxyBidEngine) Result(res Resolution) models.SubmitResult {
	return e.result(res)
}

func (e *ProxyBidEngine) result(res Resolution) models.SubmitResult {
	return models.SubmitResult{
		Bid:           res.Bid,
		Outcome:       res.Outcome,
		LeaderChanged: res.LeaderChanged,
		Standing:      e.CurrentStanding(),
	}
}

func validateSubmission(bidder uuid.UUID, maximumBid int64, at time.Time) error {
	if bidder == uuid.Nil {
		return fmt.Errorf("engine: %w - missing bidder", biddingerrors.ErrInvalidBid)
	}
	if maximumBid < 0 {
		return fmt.Errorf("engine: %w - negative maximum bid", biddingerrors.ErrInvalidBid)
	}
	if at.IsZero() {
		return fmt.Errorf("engine: %w - missing timestamp", biddingerrors.ErrInvalidBid)
	}
	return nil
}

// resolveOpening handles the first accepted bid: it leads at the starting price
func (e *ProxyBidEngine) resolveOpening(bidder uuid.UUID, maximumBid int64, at time.Time) (Resolution, error) {
	if maximumBid < e.cfg.StartingPrice {
		return Resolution{}, fmt.Errorf("engine: %w - starting price is %d", biddingerrors.ErrBidTooLow, e.cfg.StartingPrice)
	}

	price := e.liftToReserve(e.cfg.StartingPrice, maximumBid)
	bid := models.Bid{Bidder: bidder, PlacedAt: at, BidPrice: price, MaximumBid: maximumBid}
	return Resolution{
		version:       len(e.bids),
		Bid:           bid,
		Leader:        bid,
		Price:         price,
		Outcome:       models.OutcomeAccepted,
		LeaderChanged: true,
	}, nil
}

// resolveRaise handles the leader restating their ceiling. A ceiling can only go up,
// and the price only moves when the new ceiling lets it reach the reserve.
func (e *ProxyBidEngine) resolveRaise(bidder uuid.UUID, maximumBid int64, at time.Time) (Resolution, error) {
	if maximumBid < e.price {
		return Resolution{}, fmt.Errorf("engine: %w - current price is %d", biddingerrors.ErrBidTooLow, e.price)
	}
	if maximumBid < e.leader.MaximumBid {
		return Resolution{}, fmt.Errorf("engine: %w - leader cannot lower their own ceiling", biddingerrors.ErrBidTooLow)
	}

	price := e.liftToReserve(e.price, maximumBid)
	bid := models.Bid{Bidder: bidder, PlacedAt: at, BidPrice: price, MaximumBid: maximumBid}
	return Resolution{
		version: len(e.bids),
		Bid:     bid,
		Leader:  bid,
		Price:   price,
		Outcome: models.OutcomeAccepted,
	}, nil
}

// resolveChallenge handles a bidder other than the leader. Equal ceilings keep
// the incumbent, who necessarily bid earlier.
func (e *ProxyBidEngine) resolveChallenge(bidder uuid.UUID, maximumBid int64, at time.Time) (Resolution, error) {
	if maximumBid <= e.price {
		return Resolution{}, fmt.Errorf("engine: %w - current price is %d", biddingerrors.ErrBidTooLow, e.price)
	}

	leader := *e.leader
	if maximumBid > leader.MaximumBid {
		price := max(e.price, addCapped(leader.MaximumBid, e.cfg.MinIncrement, maximumBid))
		price = e.liftToReserve(price, maximumBid)
		bid := models.Bid{Bidder: bidder, PlacedAt: at, BidPrice: price, MaximumBid: maximumBid}
		return Resolution{
			version:       len(e.bids),
			Bid:           bid,
			Leader:        bid,
			Price:         price,
			Outcome:       models.OutcomeAccepted,
			LeaderChanged: true,
		}, nil
	}

	price := max(e.price, addCapped(maximumBid, e.cfg.MinIncrement, leader.MaximumBid))
	price = e.liftToReserve(price, leader.MaximumBid)
	// the losing bid stands at its own ceiling, which the leader now matches or beats
	bid := models.Bid{Bidder: bidder, PlacedAt: at, BidPrice: min(maximumBid, price), MaximumBid: maximumBid}
	return Resolution{
		version: len(e.bids),
		Bid:     bid,
		Leader:  leader.WithPrice(price),
		Price:   price,
		Outcome: models.OutcomeOutbid,
	}, nil
}

// liftToReserve raises price to the reserve once the leader's ceiling covers it.
// A ceiling below the reserve leaves the price alone so it is never revealed.
func (e *ProxyBidEngine) liftToReserve(price, leaderMaximum int64) int64 {
	if e.cfg.ReservePrice <= price || leaderMaximum < e.cfg.ReservePrice {
		return price
	}
	return e.cfg.ReservePrice
}

// addCapped returns min(a+b, limit) without overflowing. a, b and limit are non-negative.
func addCapped(a, b, limit int64) int64 {
	if a >= limit || b > limit-a {
		return limit
	}
	return a + b
}

// Close moves the auction to its terminal state
func (e *ProxyBidEngine) Close(at time.Time) (models.AuctionResult, error) {
	if e.status == models.AuctionClosed {
		return models.AuctionResult{}, fmt.Errorf("engine: %w", biddingerrors.ErrAuctionClosed)
	}
	if at.IsZero() {
		return models.AuctionResult{}, fmt.Errorf("engine: %w - missing close time", biddingerrors.ErrInvalidBid)
	}
	if at.Before(e.lastAt) {
		return models.AuctionResult{}, fmt.Errorf("engine: %w - close precedes last accepted bid", biddingerrors.ErrOutOfOrderSubmission)
	}

	e.status = models.AuctionClosed
	e.closedAt = at
	return e.AuctionResult(), nil
}

// AuctionResult reports the terminal result. The zero time means the auction is still open.
func (e *ProxyBidEngine) AuctionResult() models.AuctionResult {
	standing := e.CurrentStanding()
	return models.AuctionResult{
		Winner:     standing.LeadingBidder,
		FinalPrice: standing.CurrentPrice,
		ReserveMet: standing.ReserveMet,
		BidCount:   standing.BidCount,
		ClosedAt:   e.closedAt,
	}
}

// CurrentStanding returns the public leader and price
func (e *ProxyBidEngine) CurrentStanding() models.Standing {
	s := models.Standing{
		CurrentPrice: e.price,
		Status:       e.status,
		BidCount:     len(e.bids),
	}
	if e.leader != nil {
		s.LeadingBidder = e.leader.Bidder
		s.ReserveMet = e.price >= e.cfg.ReservePrice
	}
	return s
}

// Status reports whether the auction still accepts submissions
func (e *ProxyBidEngine) Status() models.AuctionStatus {
	return e.status
}

// LastAcceptedAt is the timestamp of the newest accepted bid, or the zero time
func (e *ProxyBidEngine) LastAcceptedAt() time.Time {
	return e.lastAt
}

// Config returns the pricing rules the engine was opened with
func (e *ProxyBidEngine) Config() Config {
	return e.cfg
}

// Bids returns a copy of the full accepted history, ceilings included
func (e *ProxyBidEngine) Bids() []models.Bid {
	return append([]models.Bid(nil), e.bids...)
}

// PublicBids returns the history without ceilings
func (e *ProxyBidEngine) PublicBids() []models.PublicBid {
	out := make([]models.PublicBid, 0, len(e.bids))
	for _, b := range e.bids {
		out = append(out, b.Public())
	}
	return out
}

// BidsBy returns the bids a single bidder placed, ceilings included
func (e *ProxyBidEngine) BidsBy(bidder uuid.UUID) []models.Bid {
	var out []models.Bid
	for _, b := range e.bids {
		if b.Bidder == bidder {
			out = append(out, b)
		}
	}
	return out
}

// State returns a deep copy of the full internal state
func (e *ProxyBidEngine) State() models.AuctionState {
	st := models.AuctionState{
		StartingPrice: e.cfg.StartingPrice,
		MinIncrement:  e.cfg.MinIncrement,
		ReservePrice:  e.cfg.ReservePrice,
		Status:        e.status,
		CurrentPrice:  e.price,
		Bids:          e.Bids(),
	}
	if e.leader != nil {
		leader := *e.leader
		st.Leader = &leader
	}
	return st
}
