package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_Submissions(t *testing.T) {
	t.Parallel()

	c := NewCollector(prometheus.NewRegistry())

	c.ObserveSubmission("accepted", true, time.Millisecond)
	c.ObserveSubmission("outbid", false, time.Millisecond)
	c.ObserveSubmission("outbid", false, time.Millisecond)
	c.ObserveSubmission("too_low", false, time.Microsecond)

	require.Equal(t, 1.0, testutil.ToFloat64(c.submissions.WithLabelValues("accepted")))
	require.Equal(t, 2.0, testutil.ToFloat64(c.submissions.WithLabelValues("outbid")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.submissions.WithLabelValues("too_low")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.leaderChanges))
	require.Equal(t, 1, testutil.CollectAndCount(c.resolveDuration))
}

func TestCollector_AuctionLifecycle(t *testing.T) {
	t.Parallel()

	c := NewCollector(prometheus.NewRegistry())

	c.AuctionOpened()
	c.AuctionOpened()
	require.Equal(t, 2.0, testutil.ToFloat64(c.openAuctions))

	c.AuctionClosed(150, true)
	c.AuctionClosed(90, false)
	require.Equal(t, 0.0, testutil.ToFloat64(c.openAuctions))
	require.Equal(t, 1.0, testutil.ToFloat64(c.closedAuctions.WithLabelValues("sold")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.closedAuctions.WithLabelValues("unsold")))
	require.Equal(t, 1, testutil.CollectAndCount(c.finalPrice))
}

// Series count must not grow with the number of auctions
func TestCollector_SeriesBoundedByAuctionCount(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	for i := 0; i < 500; i++ {
		c.AuctionOpened()
		c.ObserveSubmission("accepted", true, time.Millisecond)
	}
	for i := 0; i < 100; i++ {
		c.AuctionClosed(int64(100+i), i%2 == 0)
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				require.NotEqual(t, "auction_id", l.GetName(), "metric %s is labelled per auction", mf.GetName())
			}
		}
	}
	require.Equal(t, 1, testutil.CollectAndCount(c.finalPrice))
	require.Equal(t, 2, testutil.CollectAndCount(c.closedAuctions))
}

func TestCollector_Handler(t *testing.T) {
	t.Parallel()

	c := NewCollector(prometheus.NewRegistry())
	c.ObserveSubmission("accepted", false, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `proxybid_engine_submissions_total{result="accepted"} 1`))
}
