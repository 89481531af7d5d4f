package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	bidding "proxy-bidding/internal/biddingService"
	"proxy-bidding/internal/repository"
	"proxy-bidding/internal/server"
	"proxy-bidding/services/bidding/helpers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// stepClock returns a clock that advances one second per call
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

// testAuth signs the bidder tokens used for owner-only requests
var testAuth = server.NewBidderAuth("integration-secret-0123456789abcdef", "proxy-bidding")

// SetupTestRouter initializes the router with in-memory repository for integration testing.
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	service := bidding.NewBiddingService(repo, bidding.WithClock(stepClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))))
	return server.SetupRouter(service, server.Options{Auth: testAuth})
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response.
// On 200/201 the returned map is the envelope's data when it is an object.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if w.Code == http.StatusCreated || w.Code == http.StatusOK {
			if data, ok := resp["data"].(map[string]any); ok {
				resp = data
			}
		}
	}

	return resp, w
}

// ExecuteListRequest executes a GET returning a list in the envelope's data
func ExecuteListRequest(t *testing.T, router *gin.Engine, url string) ([]any, *httptest.ResponseRecorder) {
	t.Helper()
	return ExecuteListRequestAs(t, router, url, "")
}

// ExecuteListRequestAs is ExecuteListRequest with a bearer token for bidder.
// An empty bidder sends no token.
func ExecuteListRequestAs(t *testing.T, router *gin.Engine, url, bidder string) ([]any, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if bidder != "" {
		token, err := testAuth.IssueToken(uuid.MustParse(bidder), time.Minute)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	list, _ := resp["data"].([]any)
	return list, w
}

// CreateAuction opens an auction through the API
func CreateAuction(t *testing.T, router *gin.Engine, req helpers.CreateAuctionRequest) {
	t.Helper()
	_, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions", req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create auction %s: status %d: %s", req.AuctionID, w.Code, w.Body.String())
	}
}

// Bid posts a maximum bid for bidder
func Bid(t *testing.T, router *gin.Engine, auctionID, bidder string, maximum int64) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	return ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/"+auctionID+"/bids",
		helpers.PlaceBidRequest{BidderID: bidder, MaximumBid: &maximum})
}
