// Package auth verifies owner identity tokens issued by the account service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/invsync/backend/internal/infrastructure/config"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingOwnerID   = errors.New("missing user_id in claims")
)

// OwnerClaims are the claims this service reads from an account token.
// Older account tokens carry the owner in "_id" instead of "user_id".
type OwnerClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id,omitempty"`
	LegacyID string `json:"_id,omitempty"`
}

// OwnerID returns the parsed owner claim
func (c *OwnerClaims) OwnerID() (uuid.UUID, error) {
	raw := c.UserID
	if raw == "" {
		raw = c.LegacyID
	}
	if raw == "" {
		return uuid.Nil, ErrMissingOwnerID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return id, nil
}

// OwnerTokenVerifier checks HS256 tokens signed with the shared account secret
type OwnerTokenVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewOwnerTokenVerifier creates a verifier from auth configuration
func NewOwnerTokenVerifier(cfg config.AuthConfig) *OwnerTokenVerifier {
	return &OwnerTokenVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		leeway: 30 * time.Second,
	}
}

// Verify parses the token, checks signature, expiry and issuer, and returns its claims
func (v *OwnerTokenVerifier) Verify(tokenString string) (*OwnerClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &OwnerClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	if _, err := claims.OwnerID(); err != nil {
		return nil, err
	}
	return claims, nil
}

// Issue signs a token for ownerID. The account service normally does this;
// it is kept here for local tooling and tests.
func (v *OwnerTokenVerifier) Issue(ownerID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &OwnerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    v.issuer,
			Subject:   ownerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: ownerID.String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
