package biddingerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrAuctionExists   = errors.New("auction already exists")
	ErrNoBids          = errors.New("no bids found for auction")
	ErrBidderNoBids    = errors.New("bidder has not placed any bids")
)

// Submission errors. None of them changes auction state.
var (
	ErrInvalidBid           = errors.New("invalid bid")
	ErrBidTooLow            = errors.New("bid amount too low")
	ErrOutOfOrderSubmission = errors.New("submission precedes last accepted bid")
	ErrAuctionClosed        = errors.New("auction closed")
	ErrStaleResolution      = errors.New("resolution evaluated against a different auction state")
)

// Access errors
var (
	ErrUnauthenticated = errors.New("caller is not authenticated")
	ErrForbidden       = errors.New("caller may not access another bidder's bids")
)

// business logic errors
var (
	ErrInvalidAuction = errors.New("invalid auction")
)
