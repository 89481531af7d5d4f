package handler

//go:generate mockgen -source=bidding_handler.go -destination=mock_bidding_service.go -package=handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"proxy-bidding/internal/biddingerrors"
	model "proxy-bidding/internal/models"
	"proxy-bidding/services/bidding/helpers"
	"proxy-bidding/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BiddingServiceInterface interface {
	CreateAuction(ctx context.Context, req model.NewAuction) (model.Auction, error)
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	ListAuctions(ctx context.Context) ([]model.Auction, error)
	PlaceBid(ctx context.Context, auctionID string, bidder uuid.UUID, maximumBid int64) (model.SubmitResult, error)
	GetStanding(ctx context.Context, auctionID string) (model.Standing, error)
	GetBidHistory(ctx context.Context, auctionID string) ([]model.PublicBid, error)
	GetBidderBids(ctx context.Context, auctionID string, bidder uuid.UUID) ([]model.Bid, error)
	CloseAuction(ctx context.Context, auctionID string) (model.AuctionResult, error)
	GetAuctionsByBidder(ctx context.Context, bidder uuid.UUID) ([]model.Auction, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions
func (h *BiddingHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	auction, err := h.service.CreateAuction(c.Request.Context(), req.ToModel())
	if err != nil {
		helpers.WriteError(c, err)
		utils.Error("CreateAuctionHandler: failed to create auction", map[string]any{
			"handler":    "CreateAuctionHandler",
			"auction_id": req.AuctionID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, auction, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id":     auction.AuctionID,
		"starting_price": auction.StartingPrice,
		"min_increment":  auction.MinIncrement,
	})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *BiddingHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.WriteError(c, err)
		utils.Warn("GetAuctionHandler: error retrieving auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, auction, "auction retrieved successfully")
}

// ListAuctionsHandler handles GET /auctions
func (h *BiddingHandler) ListAuctionsHandler(c *gin.Context) {
	auctions, err := h.service.ListAuctions(c.Request.Context())
	if err != nil {
		helpers.WriteError(c, err)
		utils.Warn("ListAuctionsHandler: error listing auctions", map[string]any{"error": err.Error()})
		return
	}

	if auctions == nil {
		auctions = []model.Auction{}
	}
	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}
	bidder, err := utils.ParseBidderID(req.BidderID)
	if err != nil {
		helpers.WriteError(c, fmt.Errorf("%w: %w", biddingerrors.ErrInvalidBid, err))
		return
	}

	result, err := h.service.PlaceBid(c.Request.Context(), auctionID, bidder, *req.MaximumBid)
	if err != nil {
		mapped := helpers.WriteError(c, err)
		fields := map[string]any{
			"handler":    "PlaceBidHandler",
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
			"error":      err.Error(),
		}
		// rejections are part of normal bidding, only failures are errors
		if mapped.Status >= http.StatusInternalServerError {
			utils.Error("PlaceBidHandler: failed to place bid", fields)
		} else {
			utils.Info("PlaceBidHandler: bid rejected", fields)
		}
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(auctionID, result), "bid placed successfully")
	// the ceiling stays out of the logs
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"auction_id":     auctionID,
		"bidder_id":      req.BidderID,
		"outcome":        result.Outcome,
		"bid_price":      result.Bid.BidPrice,
		"current_price":  result.Standing.CurrentPrice,
		"leader_changed": result.LeaderChanged,
	})
}

// GetStandingHandler handles GET /auctions/:auction_id/standing
func (h *BiddingHandler) GetStandingHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	standing, err := h.service.GetStanding(c.Request.Context(), auctionID)
	if err != nil {
		helpers.WriteError(c, err)
		utils.Warn("GetStandingHandler: error retrieving standing", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewStandingResponse(auctionID, standing), "standing retrieved successfully")
}

// GetBidHistoryHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) GetBidHistoryHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.service.GetBidHistory(c.Request.Context(), auctionID)
	if err != nil && !errors.Is(err, biddingerrors.ErrNoBids) {
		helpers.WriteError(c, err)
		utils.Warn("GetBidHistoryHandler: error retrieving bids", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	if bids == nil {
		bids = []model.PublicBid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidHistoryHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetBidderBidsHandler handles GET /auctions/:auction_id/bidders/:bidder_id/bids.
// It returns ceilings, so only the authenticated owner of :bidder_id may read it.
func (h *BiddingHandler) GetBidderBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bidder, err := utils.ParseBidderID(c.Param("bidder_id"))
	if err != nil {
		helpers.WriteError(c, fmt.Errorf("%w: %w", biddingerrors.ErrInvalidBid, err))
		return
	}

	caller, ok := helpers.AuthenticatedBidder(c)
	if !ok {
		helpers.WriteError(c, fmt.Errorf("%w - owner view requires a bidder token", biddingerrors.ErrUnauthenticated))
		return
	}
	if caller != bidder {
		helpers.WriteError(c, biddingerrors.ErrForbidden)
		utils.Warn("GetBidderBidsHandler: caller asked for another bidder's bids", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  bidder.String(),
			"caller_id":  caller.String(),
		})
		return
	}

	bids, err := h.service.GetBidderBids(c.Request.Context(), auctionID, bidder)
	if err != nil && !errors.Is(err, biddingerrors.ErrBidderNoBids) {
		helpers.WriteError(c, err)
		utils.Warn("GetBidderBidsHandler: error retrieving bids", map[string]any{"auction_id": auctionID, "bidder_id": bidder.String(), "error": err.Error()})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}
	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
}

// CloseAuctionHandler handles POST /auctions/:auction_id/close
func (h *BiddingHandler) CloseAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	result, err := h.service.CloseAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.WriteError(c, err)
		utils.Warn("CloseAuctionHandler: failed to close auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewResultResponse(auctionID, result), "auction closed successfully")
	helpers.LogSuccess("CloseAuctionHandler", "auction closed successfully", map[string]any{
		"auction_id":  auctionID,
		"sold":        result.Sold(),
		"final_price": result.FinalPrice,
		"bid_count":   result.BidCount,
	})
}

// GetAuctionsByBidderHandler handles GET /bidders/:bidder_id/auctions
func (h *BiddingHandler) GetAuctionsByBidderHandler(c *gin.Context) {
	bidder, err := utils.ParseBidderID(c.Param("bidder_id"))
	if err != nil {
		helpers.WriteError(c, fmt.Errorf("%w: %w", biddingerrors.ErrInvalidBid, err))
		return
	}

	auctions, err := h.service.GetAuctionsByBidder(c.Request.Context(), bidder)
	if err != nil && !errors.Is(err, biddingerrors.ErrBidderNoBids) {
		helpers.WriteError(c, err)
		utils.Warn("GetAuctionsByBidderHandler: error retrieving auctions", map[string]any{"bidder_id": bidder.String(), "error": err.Error()})
		return
	}

	if auctions == nil {
		auctions = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
	helpers.LogSuccess("GetAuctionsByBidderHandler", "auctions retrieved successfully", map[string]any{
		"bidder_id":      bidder.String(),
		"auctions_count": len(auctions),
	})
}
