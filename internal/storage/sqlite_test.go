package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"proxy-bidding/internal/biddingerrors"
	"proxy-bidding/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "data", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStorage(t)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	auction := models.Auction{
		AuctionID:     "auction1",
		Title:         "Lamp",
		StartingPrice: 100,
		MinIncrement:  10,
		ReservePrice:  250,
		Status:        models.AuctionOpen,
		CreatedAt:     created,
	}
	require.NoError(t, s.SaveAuction(ctx, auction))

	bidderA, bidderB := uuid.New(), uuid.New()
	bids := []models.Bid{
		{Bidder: bidderA, PlacedAt: created.Add(time.Second), BidPrice: 100, MaximumBid: 150},
		{Bidder: bidderB, PlacedAt: created.Add(2*time.Second + 500*time.Microsecond), BidPrice: 140, MaximumBid: 140},
	}
	// journal order wins over insertion order
	require.NoError(t, s.AppendBid(ctx, "auction1", 1, bids[1]))
	require.NoError(t, s.AppendBid(ctx, "auction1", 0, bids[0]))

	histories, err := s.LoadAuctions(ctx)
	require.NoError(t, err)
	require.Len(t, histories, 1)

	got := histories[0]
	require.Equal(t, "auction1", got.Auction.AuctionID)
	require.Equal(t, "Lamp", got.Auction.Title)
	require.Equal(t, int64(250), got.Auction.ReservePrice)
	require.Equal(t, models.AuctionOpen, got.Auction.Status)
	require.Nil(t, got.Auction.ClosedAt)
	require.WithinDuration(t, created, got.Auction.CreatedAt, time.Millisecond)

	require.Len(t, got.Bids, 2)
	for i, want := range bids {
		require.Equal(t, want.Bidder, got.Bids[i].Bidder)
		require.Equal(t, want.BidPrice, got.Bids[i].BidPrice)
		require.Equal(t, want.MaximumBid, got.Bids[i].MaximumBid)
		require.True(t, want.PlacedAt.Equal(got.Bids[i].PlacedAt), "placed_at %s != %s", want.PlacedAt, got.Bids[i].PlacedAt)
	}
}

func TestStorage_AppendBidDuplicateSeq(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.SaveAuction(ctx, models.Auction{AuctionID: "auction1", MinIncrement: 1, Status: models.AuctionOpen, CreatedAt: time.Now()}))
	bid := models.Bid{Bidder: uuid.New(), PlacedAt: time.Now(), BidPrice: 1, MaximumBid: 1}
	require.NoError(t, s.AppendBid(ctx, "auction1", 0, bid))
	require.Error(t, s.AppendBid(ctx, "auction1", 0, bid))
}

func TestStorage_MarkClosed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.SaveAuction(ctx, models.Auction{AuctionID: "auction1", MinIncrement: 1, Status: models.AuctionOpen, CreatedAt: time.Now()}))

	closeAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.MarkClosed(ctx, "auction1", closeAt))

	err := s.MarkClosed(ctx, "missing", closeAt)
	require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)

	histories, err := s.LoadAuctions(ctx)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	require.Equal(t, models.AuctionClosed, histories[0].Auction.Status)
	require.NotNil(t, histories[0].Auction.ClosedAt)
	require.True(t, closeAt.Equal(*histories[0].Auction.ClosedAt))
	require.Empty(t, histories[0].Bids)
}

func TestStorage_SaveAuctionDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStorage(t)

	a := models.Auction{AuctionID: "auction1", MinIncrement: 1, Status: models.AuctionOpen, CreatedAt: time.Now()}
	require.NoError(t, s.SaveAuction(ctx, a))
	require.Error(t, s.SaveAuction(ctx, a))
}
