package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the auction metrics exported on /metrics
type Collector struct {
	gatherer prometheus.Gatherer

	submissions     *prometheus.CounterVec
	leaderChanges   prometheus.Counter
	openAuctions    prometheus.Gauge
	closedAuctions  *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	finalPrice      prometheus.Histogram
}

// NewCollector registers the auction metrics on reg. Pass prometheus.NewRegistry()
// in tests so collectors never collide.
func NewCollector(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		gatherer: reg,
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "proxybid",
				Subsystem: "engine",
				Name:      "submissions_total",
				Help:      "Bid submissions by result",
			},
			[]string{"result"},
		),
		leaderChanges: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "proxybid",
			Subsystem: "engine",
			Name:      "leader_changes_total",
			Help:      "Accepted bids that took the lead from another bidder",
		}),
		openAuctions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "proxybid",
			Subsystem: "auction",
			Name:      "open",
			Help:      "Number of auctions accepting bids",
		}),
		closedAuctions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "proxybid",
				Subsystem: "auction",
				Name:      "closed_total",
				Help:      "Closed auctions by sale result",
			},
			[]string{"result"},
		),
		resolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "proxybid",
			Subsystem: "engine",
			Name:      "resolve_duration_seconds",
			Help:      "Time spent resolving and journaling one submission",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 18), // 10µs to ~1.3s
		}),
		finalPrice: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "proxybid",
			Subsystem: "auction",
			Name:      "final_price",
			Help:      "Public price of auctions at close in minor units",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 12), // 100 to ~4.2e8 minor units
		}),
	}
}

// ObserveSubmission records one submission. result is an outcome ("accepted", "outbid")
// or an error class such as "too_low".
func (c *Collector) ObserveSubmission(result string, leaderChanged bool, elapsed time.Duration) {
	c.submissions.WithLabelValues(result).Inc()
	if leaderChanged {
		c.leaderChanges.Inc()
	}
	c.resolveDuration.Observe(elapsed.Seconds())
}

func (c *Collector) AuctionOpened() {
	c.openAuctions.Inc()
}

// AuctionClosed moves an auction out of the open gauge and records its final price.
// Prices are not labelled per auction so the series count stays fixed.
func (c *Collector) AuctionClosed(finalPrice int64, sold bool) {
	c.openAuctions.Dec()
	result := "unsold"
	if sold {
		result = "sold"
	}
	c.closedAuctions.WithLabelValues(result).Inc()
	c.finalPrice.Observe(float64(finalPrice))
}

// Handler serves the registered metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
