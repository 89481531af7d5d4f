package models

import (
	"time"

	"github.com/google/uuid"
)

// AuctionStatus is the macro-state of an auction
type AuctionStatus string

const (
	AuctionOpen   AuctionStatus = "open"
	AuctionClosed AuctionStatus = "closed"
)

// Outcome describes how an accepted submission was resolved
type Outcome string

const (
	// OutcomeAccepted means the submitting bidder holds the lead after resolution
	OutcomeAccepted Outcome = "accepted"
	// OutcomeOutbid means the bid was recorded but an existing ceiling still leads
	OutcomeOutbid Outcome = "outbid"
)

// Auction holds the configuration of one auction. Amounts are minor currency units.
type Auction struct {
	AuctionID     string        `json:"auction_id"`
	Title         string        `json:"title"`
	StartingPrice int64         `json:"starting_price"`
	MinIncrement  int64         `json:"min_increment"`
	ReservePrice  int64         `json:"reserve_price"`
	Status        AuctionStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	ClosedAt      *time.Time    `json:"closed_at,omitempty"`
}

// NewAuction carries the caller-supplied fields for opening an auction
type NewAuction struct {
	AuctionID     string
	Title         string
	StartingPrice int64
	MinIncrement  int64
	ReservePrice  int64
}

// Bid is an accepted bid. It never changes once recorded.
type Bid struct {
	Bidder     uuid.UUID `json:"bidder"`
	PlacedAt   time.Time `json:"placed_at"`
	BidPrice   int64     `json:"bid_price"`
	MaximumBid int64     `json:"maximum_bid"`
}

// WithPrice returns a copy of the bid standing at a different visible price
func (b Bid) WithPrice(price int64) Bid {
	b.BidPrice = price
	return b
}

// Public strips the private ceiling
func (b Bid) Public() PublicBid {
	return PublicBid{Bidder: b.Bidder, PlacedAt: b.PlacedAt, BidPrice: b.BidPrice}
}

// PublicBid is the projection of a Bid that competitors may see
type PublicBid struct {
	Bidder   uuid.UUID `json:"bidder"`
	PlacedAt time.Time `json:"placed_at"`
	BidPrice int64     `json:"bid_price"`
}

// Standing is the public view of an auction: who leads and at what price
type Standing struct {
	LeadingBidder uuid.UUID     `json:"leading_bidder"`
	CurrentPrice  int64         `json:"current_price"`
	Status        AuctionStatus `json:"status"`
	BidCount      int           `json:"bid_count"`
	ReserveMet    bool          `json:"reserve_met"`
}

// HasLeader reports whether any bid has been accepted
func (s Standing) HasLeader() bool {
	return s.LeadingBidder != uuid.Nil
}

// AuctionState is the full internal state of one auction, including every
// bidder's ceiling. It is meant for the engine, replay and persistence only.
type AuctionState struct {
	StartingPrice int64         `json:"starting_price"`
	MinIncrement  int64         `json:"min_increment"`
	ReservePrice  int64         `json:"reserve_price"`
	Status        AuctionStatus `json:"status"`
	CurrentPrice  int64         `json:"current_price"`
	Leader        *Bid          `json:"leader,omitempty"`
	Bids          []Bid         `json:"bids"`
}

// SubmitResult is returned for every accepted submission
type SubmitResult struct {
	Bid           Bid      `json:"bid"`
	Outcome       Outcome  `json:"outcome"`
	LeaderChanged bool     `json:"leader_changed"`
	Standing      Standing `json:"standing"`
}

// AuctionResult is the terminal result of a closed auction
type AuctionResult struct {
	Winner     uuid.UUID `json:"winner"`
	FinalPrice int64     `json:"final_price"`
	ReserveMet bool      `json:"reserve_met"`
	BidCount   int       `json:"bid_count"`
	ClosedAt   time.Time `json:"closed_at"`
}

// Sold reports whether the auction ended with a winner that met the reserve
func (r AuctionResult) Sold() bool {
	return r.Winner != uuid.Nil && r.ReserveMet
}

// AuctionHistory is an auction together with its accepted bids, as read back
// from durable storage
type AuctionHistory struct {
	Auction Auction
	Bids    []Bid
}
