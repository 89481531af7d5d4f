package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	bidding "proxy-bidding/internal/biddingService"
	"proxy-bidding/internal/cache"
	"proxy-bidding/internal/config"
	"proxy-bidding/internal/events"
	"proxy-bidding/internal/metrics"
	model "proxy-bidding/internal/models"
	"proxy-bidding/internal/repository"
	"proxy-bidding/internal/server"
	"proxy-bidding/internal/storage"
	"proxy-bidding/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", os.Getenv("PROXYBID_CONFIG"), "path to the YAML config file")
	seed := flag.Bool("seed", false, "open sample auctions when the store is empty")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := utils.ConfigureLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logger: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	opts := []bidding.Option{
		bidding.WithMetrics(collector),
		bidding.WithDefaultIncrement(cfg.Auction.Increment),
	}

	if cfg.Storage.Path != "" {
		journal, err := storage.NewStorage(cfg.Storage.Path)
		if err != nil {
			utils.Fatal("main: failed to open bid journal", map[string]any{"path": cfg.Storage.Path, "error": err.Error()})
		}
		defer journal.Close()
		opts = append(opts, bidding.WithJournal(journal))
	}

	if cfg.NATS.URL != "" {
		publisher, nc, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			utils.Fatal("main: failed to connect to NATS", map[string]any{"url": cfg.NATS.URL, "error": err.Error()})
		}
		defer nc.Drain()
		opts = append(opts, bidding.WithPublisher(publisher))
	}

	if cfg.Redis.Addr != "" {
		standingCache, err := cache.NewRedisStandingCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			utils.Fatal("main: failed to connect to Redis", map[string]any{"addr": cfg.Redis.Addr, "error": err.Error()})
		}
		defer standingCache.Close()
		opts = append(opts, bidding.WithStandingCache(standingCache))
	}

	biddingSvc := bidding.NewBiddingService(repository.NewMemoryRepo(), opts...)

	restored, err := biddingSvc.Restore(ctx)
	if err != nil {
		utils.Fatal("main: failed to restore auctions", map[string]any{"error": err.Error()})
	}
	if *seed && restored == 0 {
		prepopulateAuctions(ctx, biddingSvc)
	}

	var limiter *server.ClientRateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = server.NewClientRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	var auth *server.BidderAuth
	if cfg.Auth.Secret != "" {
		auth = server.NewBidderAuth(cfg.Auth.Secret, cfg.Auth.Issuer)
	} else {
		utils.Warn("main: no auth secret configured, owner view of bids is disabled", nil)
	}

	router := server.SetupRouter(biddingSvc, server.Options{
		Metrics:     collector.Handler(),
		RateLimiter: limiter,
		Auth:        auth,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		utils.Info("main: starting auction server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("main: server failed", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("main: shutting down", map[string]any{"timeout": cfg.Server.Shutdown.String()})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("main: graceful shutdown failed", map[string]any{"error": err.Error()})
	}
}

// prepopulateAuctions opens a few sample auctions on an empty store
func prepopulateAuctions(ctx context.Context, svc *bidding.BiddingService) {
	auctions := []model.NewAuction{
		{AuctionID: "auction1", Title: "title1", StartingPrice: 100, MinIncrement: 10},
		{AuctionID: "auction2", Title: "title2", StartingPrice: 200, MinIncrement: 25},
		{AuctionID: "auction3", Title: "title3", StartingPrice: 150, MinIncrement: 10, ReservePrice: 500},
	}

	for _, a := range auctions {
		if _, err := svc.CreateAuction(ctx, a); err != nil {
			utils.Warn("main: failed to open sample auction", map[string]any{"auction_id": a.AuctionID, "error": err.Error()})
		}
	}
}
