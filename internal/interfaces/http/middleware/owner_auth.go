package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invsync/backend/internal/infrastructure/auth"
	"github.com/invsync/backend/internal/infrastructure/logger"
	"github.com/invsync/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Owner auth context keys
const (
	OwnerClaimsKey = "owner_claims"
	OwnerIDKey     = "owner_id"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
	// AccessTokenCookie is the cookie the account frontend stores its token in
	AccessTokenCookie = "accessToken"
)

// TokenVerifier verifies an account token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*auth.OwnerClaims, error)
}

// OwnerAuthConfig holds configuration for the owner auth middleware
type OwnerAuthConfig struct {
	// Verifier is required for token validation
	Verifier TokenVerifier
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// OwnerAuth requires a valid account token and stores the verified owner in the context.
// The token is read from the Authorization header, falling back to the accessToken cookie.
func OwnerAuth(cfg OwnerAuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		token, err := extractToken(c)
		if err != nil {
			abortUnauthorized(c, log, err)
			return
		}

		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			abortUnauthorized(c, log, err)
			return
		}
		ownerID, err := claims.OwnerID()
		if err != nil {
			abortUnauthorized(c, log, err)
			return
		}

		c.Set(OwnerClaimsKey, claims)
		c.Set(OwnerIDKey, ownerID)

		ctx, _ := logger.WithOwnerID(c.Request.Context(), logger.FromContext(c.Request.Context()), ownerID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

var errMissingToken = errors.New("missing authorization token")

func extractToken(c *gin.Context) (string, error) {
	if header := c.GetHeader(AuthHeaderKey); header != "" {
		if !strings.HasPrefix(header, BearerPrefix) {
			return "", auth.ErrInvalidToken
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			return "", errMissingToken
		}
		return token, nil
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", errMissingToken
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error) {
	log.Warn("Owner authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", logger.GetGinRequestID(c)),
	)

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingOwnerID):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, logger.GetGinRequestID(c)))
}

// GetAuthenticatedOwner returns the owner verified by OwnerAuth. ok is false when
// authentication is disabled for the request.
func GetAuthenticatedOwner(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(OwnerIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetOwnerClaims retrieves the verified token claims from gin.Context
func GetOwnerClaims(c *gin.Context) *auth.OwnerClaims {
	if v, exists := c.Get(OwnerClaimsKey); exists {
		if claims, ok := v.(*auth.OwnerClaims); ok {
			return claims
		}
	}
	return nil
}
