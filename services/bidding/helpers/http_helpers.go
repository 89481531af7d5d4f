package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"proxy-bidding/internal/biddingerrors"
	"proxy-bidding/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, "invalid_payload", wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// HTTPError is the status, stable code and message a domain error maps to
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message.
// Empty results (ErrNoBids, ErrBidderNoBids) are handled by the handlers as empty lists.
func MapErrorToHTTP(err error) HTTPError {
	switch {
	case errors.Is(err, biddingerrors.ErrAuctionNotFound):
		return HTTPError{http.StatusNotFound, "auction_not_found", "auction not found"}
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return HTTPError{http.StatusBadRequest, "invalid_bid", "invalid bid details"}
	case errors.Is(err, biddingerrors.ErrInvalidAuction):
		return HTTPError{http.StatusBadRequest, "invalid_auction", "invalid auction details"}
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return HTTPError{http.StatusConflict, "bid_too_low", "bid amount too low"}
	case errors.Is(err, biddingerrors.ErrOutOfOrderSubmission):
		return HTTPError{http.StatusConflict, "out_of_order", "submission arrived out of order"}
	case errors.Is(err, biddingerrors.ErrStaleResolution):
		return HTTPError{http.StatusConflict, "stale_resolution", "auction changed during submission"}
	case errors.Is(err, biddingerrors.ErrAuctionExists):
		return HTTPError{http.StatusConflict, "auction_exists", "auction already exists"}
	case errors.Is(err, biddingerrors.ErrAuctionClosed):
		return HTTPError{http.StatusGone, "auction_closed", "auction is closed"}
	case errors.Is(err, biddingerrors.ErrUnauthenticated):
		return HTTPError{http.StatusUnauthorized, "unauthenticated", "authentication required"}
	case errors.Is(err, biddingerrors.ErrForbidden):
		return HTTPError{http.StatusForbidden, "forbidden", "access denied"}
	default:
		return HTTPError{http.StatusInternalServerError, "internal", "internal server error"}
	}
}

// WriteError maps err and writes the error envelope
func WriteError(c *gin.Context, err error) HTTPError {
	mapped := MapErrorToHTTP(err)
	utils.JSONError(c, mapped.Status, mapped.Code, fmt.Errorf("%s: %w", mapped.Message, err), mapped.Message)
	return mapped
}

// authenticatedBidderKey holds the bidder an auth middleware verified for this request
const authenticatedBidderKey = "authenticated_bidder"

// SetAuthenticatedBidder records the verified caller on the request context
func SetAuthenticatedBidder(c *gin.Context, bidder uuid.UUID) {
	c.Set(authenticatedBidderKey, bidder)
}

// AuthenticatedBidder returns the verified caller, if an auth middleware set one
func AuthenticatedBidder(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(authenticatedBidderKey)
	if !ok {
		return uuid.Nil, false
	}
	bidder, ok := v.(uuid.UUID)
	return bidder, ok && bidder != uuid.Nil
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
