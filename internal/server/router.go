package server

import (
	"net/http"

	handler "proxy-bidding/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

// Options holds the optional parts of the router
type Options struct {
	// Metrics serves GET /metrics when set
	Metrics http.Handler
	// RateLimiter throttles bid intake and auction writes when set
	RateLimiter *ClientRateLimiter
	// Auth enables the owner view of a bidder's ceilings. Without it the route is not served.
	Auth *BidderAuth
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService handler.BiddingServiceInterface, opts Options) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(biddingService)

	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	writes := []gin.HandlerFunc{}
	if opts.RateLimiter != nil {
		writes = append(writes, RateLimitMiddleware(opts.RateLimiter))
	}
	withLimit := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writes...), h)
	}

	auctions := router.Group("/auctions")
	{
		auctions.POST("", withLimit(biddingHandler.CreateAuctionHandler)...)
		auctions.GET("", biddingHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", biddingHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/standing", biddingHandler.GetStandingHandler)
		auctions.POST("/:auction_id/bids", withLimit(biddingHandler.PlaceBidHandler)...)
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidHistoryHandler)
		auctions.POST("/:auction_id/close", withLimit(biddingHandler.CloseAuctionHandler)...)
	}

	if opts.Auth != nil {
		auctions.GET("/:auction_id/bidders/:bidder_id/bids", opts.Auth.RequireBidder("bidder_id"), biddingHandler.GetBidderBidsHandler)
	}

	bidders := router.Group("/bidders")
	{
		bidders.GET("/:bidder_id/auctions", biddingHandler.GetAuctionsByBidderHandler)
	}

	return router
}
