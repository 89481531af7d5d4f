package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	bidding "proxy-bidding/internal/biddingService"
	model "proxy-bidding/internal/models"
	repository "proxy-bidding/internal/repository"

	"github.com/google/uuid"
)

// LoadScenario is one traffic shape to replay against the service. ReadRatio is the
// number of reads out of every ten operations; a zero Pace runs as a burst.
type LoadScenario struct {
	Name        string
	NumBidders  int
	NumAuctions int
	ReadRatio   int
	MaxCeiling  int
	Pace        time.Duration
}

// OperationMetrics records per-operation latency from many goroutines
type OperationMetrics struct {
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(d time.Duration) {
	om.mu.Lock()
	om.latencies = append(om.latencies, d)
	om.mu.Unlock()
}

// Stats summarises the recorded latencies
func (om *OperationMetrics) Stats() LatencySummary {
	om.mu.Lock()
	sorted := append([]time.Duration(nil), om.latencies...)
	om.mu.Unlock()
	if len(sorted) == 0 {
		return LatencySummary{}
	}
	slices.Sort(sorted)

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	return LatencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / time.Duration(len(sorted)),
		P95: percentile(sorted, 0.95),
		P99: percentile(sorted, 0.99),
	}
}

type LatencySummary struct {
	Min, Max, Avg, P95, P99 time.Duration
}

func percentile(sorted []time.Duration, q float64) time.Duration {
	return sorted[int(q*float64(len(sorted)-1))]
}

func micros(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e3
}

// setupService creates the bidding service with open auctions and a bidder pool
func setupService(b *testing.B, s LoadScenario) (*bidding.BiddingService, []uuid.UUID) {
	b.Helper()
	svc := bidding.NewBiddingService(repository.NewMemoryRepo())
	for i := 0; i < s.NumAuctions; i++ {
		_, err := svc.CreateAuction(context.Background(), model.NewAuction{
			AuctionID:     fmt.Sprintf("auction_%d", i),
			Title:         fmt.Sprintf("title_%d", i),
			StartingPrice: 100,
			MinIncrement:  5,
		})
		if err != nil {
			b.Fatalf("failed to create auction: %v", err)
		}
	}

	bidders := make([]uuid.UUID, s.NumBidders)
	for i := range bidders {
		bidders[i] = uuid.New()
	}
	return svc, bidders
}

// Benchmark_Load_BiddingSystem replays each traffic shape against a fresh service
func Benchmark_Load_BiddingSystem(b *testing.B) {
	scenarios := []LoadScenario{
		{Name: "Low-Contention-WriteHeavy", NumBidders: 200, NumAuctions: 200, MaxCeiling: 500, Pace: time.Millisecond},
		{Name: "High-Contention-WriteHeavy", NumBidders: 500, NumAuctions: 10, MaxCeiling: 2000, Pace: time.Millisecond},
		{Name: "Mixed-Workload", NumBidders: 300, NumAuctions: 50, ReadRatio: 7, MaxCeiling: 1000, Pace: time.Millisecond},
		{Name: "ReadHeavy", NumBidders: 200, NumAuctions: 50, ReadRatio: 9, MaxCeiling: 1000, Pace: time.Millisecond},
		{Name: "SingleAuction-TieStorm", NumBidders: 100, NumAuctions: 1, ReadRatio: 5, MaxCeiling: 20, Pace: time.Millisecond},
		{Name: "Peak-Burst", NumBidders: 500, NumAuctions: 50, MaxCeiling: 2000},
	}

	for _, scenario := range scenarios {
		b.Run(scenario.Name, func(b *testing.B) { runParallelScenario(b, scenario) })
	}
}

func runParallelScenario(b *testing.B, s LoadScenario) {
	b.ReportAllocs()

	svc, bidders := setupService(b, s)
	ctx := context.Background()

	var totalOps, acceptedBids, outbidBids, rejectedBids, totalReads int64
	leaderChanges := make([]int64, s.NumAuctions)
	latency := &OperationMetrics{}

	began := time.Now()

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

		for pb.Next() {
			auctionIndex := rnd.Intn(s.NumAuctions)
			auctionID := fmt.Sprintf("auction_%d", auctionIndex)

			opBegan := time.Now()
			if rnd.Intn(10) < s.ReadRatio {
				if _, err := svc.GetStanding(ctx, auctionID); err != nil {
					b.Logf("ignored read error: %v", err)
				}
				atomic.AddInt64(&totalReads, 1)
			} else {
				bidder := bidders[rnd.Intn(len(bidders))]
				ceiling := int64(100 + rnd.Intn(s.MaxCeiling))
				res, err := svc.PlaceBid(ctx, auctionID, bidder, ceiling)
				switch {
				case err != nil:
					atomic.AddInt64(&rejectedBids, 1)
				case res.Outcome == model.OutcomeOutbid:
					atomic.AddInt64(&outbidBids, 1)
				default:
					atomic.AddInt64(&acceptedBids, 1)
				}
				if err == nil && res.LeaderChanged {
					atomic.AddInt64(&leaderChanges[auctionIndex], 1)
				}
			}

			latency.Record(time.Since(opBegan))
			atomic.AddInt64(&totalOps, 1)

			if s.Pace > 0 {
				time.Sleep(s.Pace)
			}
		}
	})

	wall := time.Since(began)
	summary := latency.Stats()

	var heap runtime.MemStats
	runtime.ReadMemStats(&heap)

	b.Logf(
		"Scenario: %s | Auctions: %d | Total Ops: %d | Leading: %d | Outbid: %d | Rejected: %d | Reads: %d | Elapsed: %s | Throughput: %.2f ops/sec | Latency(us) min: %.2f avg: %.2f max: %.2f p95: %.2f p99: %.2f | Memory Alloc: %.2f MB",
		s.Name, s.NumAuctions, totalOps, acceptedBids, outbidBids, rejectedBids, totalReads, wall,
		float64(totalOps)/wall.Seconds(),
		micros(summary.Min), micros(summary.Avg), micros(summary.Max), micros(summary.P95), micros(summary.P99),
		float64(heap.Alloc)/(1<<20),
	)

	for i, v := range leaderChanges {
		if v > 0 {
			b.Logf("Auction %d leader changes: %d", i, v)
		}
	}

	// every auction must still replay to the standing it reports
	for i := 0; i < s.NumAuctions; i++ {
		auctionID := fmt.Sprintf("auction_%d", i)
		if _, err := svc.GetStanding(ctx, auctionID); err != nil {
			b.Fatalf("auction %s unreadable after load: %v", auctionID, err)
		}
	}
}
