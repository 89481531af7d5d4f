package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// ParseBidderID parses a bidder identifier. The nil UUID is rejected.
func ParseBidderID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid bidder id %q: %w", raw, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid bidder id %q: nil uuid", raw)
	}
	return id, nil
}
