package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"proxy-bidding/internal/biddingerrors"
	"proxy-bidding/services/bidding/helpers"
	"proxy-bidding/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BidderAuth verifies HS256 bearer tokens whose subject is a bidder ID
type BidderAuth struct {
	secret []byte
	issuer string
}

// NewBidderAuth creates the verifier. An empty issuer skips the issuer check.
func NewBidderAuth(secret, issuer string) *BidderAuth {
	return &BidderAuth{secret: []byte(secret), issuer: issuer}
}

// IssueToken signs a token for bidder that expires after ttl
func (a *BidderAuth) IssueToken(bidder uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.issuer,
		Subject:   bidder.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.New().String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Authenticate returns the bidder a bearer token was issued to
func (a *BidderAuth) Authenticate(header string) (uuid.UUID, error) {
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
		return uuid.Nil, errors.New("invalid authorization header format")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...); err != nil {
		return uuid.Nil, err
	}

	bidder, err := utils.ParseBidderID(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject: %w", err)
	}
	return bidder, nil
}

// RequireBidder admits only callers whose token subject equals the :param path
// segment. It answers 401 without a valid token and 403 for anyone else.
func (a *BidderAuth) RequireBidder(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := a.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			helpers.WriteError(c, fmt.Errorf("%w: %w", biddingerrors.ErrUnauthenticated, err))
			c.Abort()
			utils.Warn("RequireBidder: request rejected", map[string]any{"path": c.FullPath(), "error": err.Error()})
			return
		}

		if owner, err := uuid.Parse(c.Param(param)); err != nil || owner != caller {
			helpers.WriteError(c, biddingerrors.ErrForbidden)
			c.Abort()
			utils.Warn("RequireBidder: caller does not own the requested bidder", map[string]any{
				"path":      c.FullPath(),
				"caller_id": caller.String(),
			})
			return
		}

		helpers.SetAuthenticatedBidder(c, caller)
		c.Next()
	}
}
