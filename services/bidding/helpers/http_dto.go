package helpers

import (
	"time"

	model "proxy-bidding/internal/models"

	"github.com/google/uuid"
)

// Request/Response DTOs. Amounts are integer minor currency units.

type CreateAuctionRequest struct {
	AuctionID     string `json:"auction_id"`
	Title         string `json:"title" binding:"required"`
	StartingPrice int64  `json:"starting_price" binding:"gte=0"`
	MinIncrement  int64  `json:"min_increment" binding:"gte=0"`
	ReservePrice  int64  `json:"reserve_price" binding:"gte=0"`
}

func (r CreateAuctionRequest) ToModel() model.NewAuction {
	return model.NewAuction{
		AuctionID:     r.AuctionID,
		Title:         r.Title,
		StartingPrice: r.StartingPrice,
		MinIncrement:  r.MinIncrement,
		ReservePrice:  r.ReservePrice,
	}
}

type PlaceBidRequest struct {
	BidderID   string `json:"bidder_id" binding:"required,uuid"`
	MaximumBid *int64 `json:"maximum_bid" binding:"required,gte=0"`
}

// BidResponse is what the submitting bidder learns. It never carries another
// bidder's ceiling; the caller's own ceiling is echoed back.
type BidResponse struct {
	AuctionID     string `json:"auction_id"`
	BidderID      string `json:"bidder_id"`
	Outcome       string `json:"outcome"`
	BidPrice      int64  `json:"bid_price"`
	MaximumBid    int64  `json:"maximum_bid"`
	CurrentPrice  int64  `json:"current_price"`
	Leading       bool   `json:"leading"`
	LeaderChanged bool   `json:"leader_changed"`
	ReserveMet    bool   `json:"reserve_met"`
	PlacedAt      string `json:"placed_at"`
}

func NewBidResponse(auctionID string, res model.SubmitResult) BidResponse {
	return BidResponse{
		AuctionID:     auctionID,
		BidderID:      res.Bid.Bidder.String(),
		Outcome:       string(res.Outcome),
		BidPrice:      res.Bid.BidPrice,
		MaximumBid:    res.Bid.MaximumBid,
		CurrentPrice:  res.Standing.CurrentPrice,
		Leading:       res.Standing.LeadingBidder == res.Bid.Bidder,
		LeaderChanged: res.LeaderChanged,
		ReserveMet:    res.Standing.ReserveMet,
		PlacedAt:      res.Bid.PlacedAt.UTC().Format(time.RFC3339Nano),
	}
}

// StandingResponse omits the leader field entirely while nobody has bid
type StandingResponse struct {
	AuctionID     string `json:"auction_id"`
	LeadingBidder string `json:"leading_bidder,omitempty"`
	CurrentPrice  int64  `json:"current_price"`
	Status        string `json:"status"`
	BidCount      int    `json:"bid_count"`
	ReserveMet    bool   `json:"reserve_met"`
}

func NewStandingResponse(auctionID string, s model.Standing) StandingResponse {
	resp := StandingResponse{
		AuctionID:    auctionID,
		CurrentPrice: s.CurrentPrice,
		Status:       string(s.Status),
		BidCount:     s.BidCount,
		ReserveMet:   s.ReserveMet,
	}
	if s.HasLeader() {
		resp.LeadingBidder = s.LeadingBidder.String()
	}
	return resp
}

type ResultResponse struct {
	AuctionID  string `json:"auction_id"`
	Winner     string `json:"winner,omitempty"`
	FinalPrice int64  `json:"final_price"`
	ReserveMet bool   `json:"reserve_met"`
	Sold       bool   `json:"sold"`
	BidCount   int    `json:"bid_count"`
	ClosedAt   string `json:"closed_at"`
}

func NewResultResponse(auctionID string, r model.AuctionResult) ResultResponse {
	resp := ResultResponse{
		AuctionID:  auctionID,
		FinalPrice: r.FinalPrice,
		ReserveMet: r.ReserveMet,
		Sold:       r.Sold(),
		BidCount:   r.BidCount,
		ClosedAt:   r.ClosedAt.UTC().Format(time.RFC3339Nano),
	}
	if r.Winner != uuid.Nil {
		resp.Winner = r.Winner.String()
	}
	return resp
}
