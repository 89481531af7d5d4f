package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"proxy-bidding/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StandingCache publishes the public standing of each auction for fast external reads
type StandingCache interface {
	Put(ctx context.Context, auctionID string, standing models.Standing) error
	Get(ctx context.Context, auctionID string) (models.Standing, bool, error)
}

// putScript writes a standing unless the cached one is newer. Writers race once the
// per-auction lock is released, so bid_count acts as the version.
//
// KEYS[1]: auction:{auctionID}:standing
// ARGV: bid_count, leader, price, status, reserve_met, ttl seconds
var putScript = redis.NewScript(`
	local cur = redis.call('HGET', KEYS[1], 'bid_count')
	if cur then
		cur = tonumber(cur)
		local incoming = tonumber(ARGV[1])
		if cur > incoming then
			return 0
		end
		if cur == incoming and redis.call('HGET', KEYS[1], 'status') == 'closed' and ARGV[4] ~= 'closed' then
			return 0
		end
	end

	redis.call('HSET', KEYS[1], 'bid_count', ARGV[1], 'leader', ARGV[2], 'price', ARGV[3], 'status', ARGV[4], 'reserve_met', ARGV[5])
	local ttl = tonumber(ARGV[6])
	if ttl > 0 then
		redis.call('EXPIRE', KEYS[1], ttl)
	end
	return 1
`)

// RedisStandingCache keeps one hash per auction
type RedisStandingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStandingCache connects to Redis and checks the connection
func NewRedisStandingCache(addr, password string, db int, ttl time.Duration) (*RedisStandingCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: failed to connect to Redis: %w", err)
	}

	return &RedisStandingCache{client: rdb, ttl: ttl}, nil
}

func standingKey(auctionID string) string {
	return fmt.Sprintf("auction:%s:standing", auctionID)
}

// Put stores the standing. An older standing never replaces a newer one.
func (c *RedisStandingCache) Put(ctx context.Context, auctionID string, standing models.Standing) error {
	args := []any{
		standing.BidCount,
		standing.LeadingBidder.String(),
		standing.CurrentPrice,
		string(standing.Status),
		strconv.FormatBool(standing.ReserveMet),
		int64(c.ttl / time.Second),
	}
	if err := putScript.Run(ctx, c.client, []string{standingKey(auctionID)}, args...).Err(); err != nil {
		return fmt.Errorf("cache: put standing for auction %s: %w", auctionID, err)
	}
	return nil
}

// Get reads a cached standing. The bool is false on a miss.
func (c *RedisStandingCache) Get(ctx context.Context, auctionID string) (models.Standing, bool, error) {
	fields, err := c.client.HGetAll(ctx, standingKey(auctionID)).Result()
	if err != nil {
		return models.Standing{}, false, fmt.Errorf("cache: get standing for auction %s: %w", auctionID, err)
	}
	if len(fields) == 0 {
		return models.Standing{}, false, nil
	}

	standing, err := parseStanding(fields)
	if err != nil {
		return models.Standing{}, false, fmt.Errorf("cache: auction %s: %w", auctionID, err)
	}
	return standing, true, nil
}

// Close releases the Redis connection pool
func (c *RedisStandingCache) Close() error {
	return c.client.Close()
}

func parseStanding(fields map[string]string) (models.Standing, error) {
	leader, err := uuid.Parse(fields["leader"])
	if err != nil {
		return models.Standing{}, fmt.Errorf("bad leader %q: %w", fields["leader"], err)
	}
	price, err := strconv.ParseInt(fields["price"], 10, 64)
	if err != nil {
		return models.Standing{}, fmt.Errorf("bad price %q: %w", fields["price"], err)
	}
	count, err := strconv.Atoi(fields["bid_count"])
	if err != nil {
		return models.Standing{}, fmt.Errorf("bad bid count %q: %w", fields["bid_count"], err)
	}
	reserveMet, err := strconv.ParseBool(fields["reserve_met"])
	if err != nil {
		return models.Standing{}, fmt.Errorf("bad reserve flag %q: %w", fields["reserve_met"], err)
	}

	return models.Standing{
		LeadingBidder: leader,
		CurrentPrice:  price,
		Status:        models.AuctionStatus(fields["status"]),
		BidCount:      count,
		ReserveMet:    reserveMet,
	}, nil
}

// NopCache drops writes and always misses. Used when no Redis address is configured.
type NopCache struct{}

func (NopCache) Put(context.Context, string, models.Standing) error { return nil }

func (NopCache) Get(context.Context, string) (models.Standing, bool, error) {
	return models.Standing{}, false, nil
}
