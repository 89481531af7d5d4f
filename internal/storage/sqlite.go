package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"proxy-bidding/internal/biddingerrors"
	"proxy-bidding/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuctionRecord is the persisted configuration and lifecycle of one auction
type AuctionRecord struct {
	AuctionID     string `gorm:"primaryKey"`
	Title         string
	StartingPrice int64
	MinIncrement  int64
	ReservePrice  int64
	Status        string
	CreatedAt     time.Time
	ClosedAt      *time.Time
}

// BidRecord is one accepted bid. (AuctionID, Seq) gives the replay order.
type BidRecord struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	AuctionID  string `gorm:"uniqueIndex:idx_auction_seq"`
	Seq        int    `gorm:"uniqueIndex:idx_auction_seq"`
	Bidder     string
	PlacedAt   time.Time
	BidPrice   int64
	MaximumBid int64
}

// Storage is the durable journal of auctions and their accepted bids
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite journal at path
func NewStorage(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("storage: failed to create DB directory: %w", err)
		}
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&AuctionRecord{}, &BidRecord{}); err != nil {
		return nil, fmt.Errorf("storage: failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Auction Operations
// ======================================================================================

// SaveAuction records a newly opened auction
func (s *Storage) SaveAuction(ctx context.Context, auction models.Auction) error {
	rec := AuctionRecord{
		AuctionID:     auction.AuctionID,
		Title:         auction.Title,
		StartingPrice: auction.StartingPrice,
		MinIncrement:  auction.MinIncrement,
		ReservePrice:  auction.ReservePrice,
		Status:        string(auction.Status),
		CreatedAt:     auction.CreatedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("storage: save auction %s: %w", auction.AuctionID, err)
	}
	return nil
}

// MarkClosed records the terminal transition of an auction
func (s *Storage) MarkClosed(ctx context.Context, auctionID string, at time.Time) error {
	closedAt := at.UTC()
	res := s.db.WithContext(ctx).
		Model(&AuctionRecord{}).
		Where("auction_id = ?", auctionID).
		Updates(map[string]any{"status": string(models.AuctionClosed), "closed_at": &closedAt})
	if res.Error != nil {
		return fmt.Errorf("storage: close auction %s: %w", auctionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("storage: close auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return nil
}

// ======================================================================================
// Bid Operations
// ======================================================================================

// AppendBid journals an accepted bid at position seq of its auction
func (s *Storage) AppendBid(ctx context.Context, auctionID string, seq int, bid models.Bid) error {
	rec := BidRecord{
		AuctionID:  auctionID,
		Seq:        seq,
		Bidder:     bid.Bidder.String(),
		PlacedAt:   bid.PlacedAt.UTC(),
		BidPrice:   bid.BidPrice,
		MaximumBid: bid.MaximumBid,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("storage: append bid %d to auction %s: %w", seq, auctionID, err)
	}
	return nil
}

// LoadAuctions reads every auction back with its bids in journal order
func (s *Storage) LoadAuctions(ctx context.Context) ([]models.AuctionHistory, error) {
	var auctions []AuctionRecord
	if err := s.db.WithContext(ctx).Order("created_at, auction_id").Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("storage: load auctions: %w", err)
	}

	out := make([]models.AuctionHistory, 0, len(auctions))
	for _, a := range auctions {
		var bids []BidRecord
		if err := s.db.WithContext(ctx).Where("auction_id = ?", a.AuctionID).Order("seq").Find(&bids).Error; err != nil {
			return nil, fmt.Errorf("storage: load bids for auction %s: %w", a.AuctionID, err)
		}

		history := models.AuctionHistory{Auction: a.toModel(), Bids: make([]models.Bid, 0, len(bids))}
		for _, b := range bids {
			bid, err := b.toModel()
			if err != nil {
				return nil, err
			}
			history.Bids = append(history.Bids, bid)
		}
		out = append(out, history)
	}
	return out, nil
}

// Close releases the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("storage: close: %w", err)
	}
	return sqlDB.Close()
}

func (a AuctionRecord) toModel() models.Auction {
	m := models.Auction{
		AuctionID:     a.AuctionID,
		Title:         a.Title,
		StartingPrice: a.StartingPrice,
		MinIncrement:  a.MinIncrement,
		ReservePrice:  a.ReservePrice,
		Status:        models.AuctionStatus(a.Status),
		CreatedAt:     a.CreatedAt.UTC(),
	}
	if a.ClosedAt != nil {
		closedAt := a.ClosedAt.UTC()
		m.ClosedAt = &closedAt
	}
	return m
}

func (b BidRecord) toModel() (models.Bid, error) {
	bidder, err := uuid.Parse(b.Bidder)
	if err != nil {
		return models.Bid{}, fmt.Errorf("storage: bid %d of auction %s: bad bidder %q: %w", b.Seq, b.AuctionID, b.Bidder, err)
	}
	return models.Bid{
		Bidder:     bidder,
		PlacedAt:   b.PlacedAt.UTC(),
		BidPrice:   b.BidPrice,
		MaximumBid: b.MaximumBid,
	}, nil
}
