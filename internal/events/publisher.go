package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// BidPlacedEvent is published after a bid is committed. It carries public data only.
type BidPlacedEvent struct {
	EventID       string    `json:"event_id"`
	AuctionID     string    `json:"auction_id"`
	Seq           int       `json:"seq"`
	Bidder        uuid.UUID `json:"bidder"`
	BidPrice      int64     `json:"bid_price"`
	Outcome       string    `json:"outcome"`
	LeadingBidder uuid.UUID `json:"leading_bidder"`
	CurrentPrice  int64     `json:"current_price"`
	LeaderChanged bool      `json:"leader_changed"`
	Timestamp     time.Time `json:"timestamp"`
}

// AuctionClosedEvent is published once an auction reaches its terminal state
type AuctionClosedEvent struct {
	EventID    string    `json:"event_id"`
	AuctionID  string    `json:"auction_id"`
	Winner     uuid.UUID `json:"winner"`
	FinalPrice int64     `json:"final_price"`
	ReserveMet bool      `json:"reserve_met"`
	BidCount   int       `json:"bid_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher fans auction events out to downstream consumers
type Publisher interface {
	PublishBidPlaced(ctx context.Context, event BidPlacedEvent) error
	PublishAuctionClosed(ctx context.Context, event AuctionClosedEvent) error
}

// Subject naming: "auction.events.{auctionID}.{kind}" lets consumers filter per auction
func BidPlacedSubject(auctionID string) string {
	return fmt.Sprintf("auction.events.%s.bid_placed", auctionID)
}

func AuctionClosedSubject(auctionID string) string {
	return fmt.Sprintf("auction.events.%s.closed", auctionID)
}

// conn is the part of *nats.Conn the publisher needs
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSPublisher publishes events as JSON on core NATS subjects
type NATSPublisher struct {
	conn conn
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url string) (*NATSPublisher, *nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("proxy-bidding"))
	if err != nil {
		return nil, nil, fmt.Errorf("events: failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: nc}, nc, nil
}

// PublishBidPlaced publishes a BidPlacedEvent
func (p *NATSPublisher) PublishBidPlaced(ctx context.Context, event BidPlacedEvent) error {
	return p.publish(ctx, BidPlacedSubject(event.AuctionID), event)
}

// PublishAuctionClosed publishes an AuctionClosedEvent
func (p *NATSPublisher) PublishAuctionClosed(ctx context.Context, event AuctionClosedEvent) error {
	return p.publish(ctx, AuctionClosedSubject(event.AuctionID), event)
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("events: failed to publish to %s: %w", subject, err)
	}
	// wait for the server to have the message so ordering per auction survives a crash of this process
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("events: failed to flush %s: %w", subject, err)
	}
	return nil
}

// NopPublisher drops every event. Used when no NATS URL is configured.
type NopPublisher struct{}

func (NopPublisher) PublishBidPlaced(context.Context, BidPlacedEvent) error { return nil }

func (NopPublisher) PublishAuctionClosed(context.Context, AuctionClosedEvent) error { return nil }
