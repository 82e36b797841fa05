package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/invsync/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier() *OwnerTokenVerifier {
	return NewOwnerTokenVerifier(config.AuthConfig{
		Enabled: true,
		Secret:  "test-secret-that-is-long-enough-for-hs256",
		Issuer:  "invsync-accounts",
	})
}

func sign(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestOwnerTokenVerifier_RoundTrip(t *testing.T) {
	v := newTestVerifier()
	owner := uuid.New()

	token, err := v.Issue(owner, time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	id, err := claims.OwnerID()
	require.NoError(t, err)
	assert.Equal(t, owner, id)
	assert.Equal(t, "invsync-accounts", claims.Issuer)
}

func TestOwnerTokenVerifier_Rejects(t *testing.T) {
	v := newTestVerifier()
	secret := "test-secret-that-is-long-enough-for-hs256"
	owner := uuid.NewString()
	now := time.Now()

	valid := func() OwnerClaims {
		return OwnerClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "invsync-accounts",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			UserID: owner,
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))

	future := valid()
	future.NotBefore = jwt.NewNumericDate(now.Add(time.Hour))

	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"

	noOwner := valid()
	noOwner.UserID = ""

	badOwner := valid()
	badOwner.UserID = "not-a-uuid"

	validClaims := valid()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not.a.token", ErrInvalidToken},
		{"wrong secret", sign(t, "other-secret", jwt.SigningMethodHS256, &validClaims), ErrInvalidToken},
		{"wrong algorithm", sign(t, secret, jwt.SigningMethodHS512, &validClaims), ErrInvalidToken},
		{"expired", sign(t, secret, jwt.SigningMethodHS256, &expired), ErrExpiredToken},
		{"not yet valid", sign(t, secret, jwt.SigningMethodHS256, &future), ErrTokenNotYetValid},
		{"wrong issuer", sign(t, secret, jwt.SigningMethodHS256, &wrongIssuer), ErrInvalidToken},
		{"missing owner", sign(t, secret, jwt.SigningMethodHS256, &noOwner), ErrMissingOwnerID},
		{"malformed owner", sign(t, secret, jwt.SigningMethodHS256, &badOwner), ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOwnerTokenVerifier_LegacyOwnerClaim(t *testing.T) {
	v := NewOwnerTokenVerifier(config.AuthConfig{Secret: "s"})
	owner := uuid.New()
	claims := OwnerClaims{LegacyID: owner.String()}

	got, err := v.Verify(sign(t, "s", jwt.SigningMethodHS256, &claims))
	require.NoError(t, err)
	id, err := got.OwnerID()
	require.NoError(t, err)
	assert.Equal(t, owner, id)
}

func TestOwnerTokenVerifier_NoIssuerConfigured(t *testing.T) {
	v := NewOwnerTokenVerifier(config.AuthConfig{Secret: "s"})
	claims := OwnerClaims{UserID: uuid.NewString()}

	_, err := v.Verify(sign(t, "s", jwt.SigningMethodHS256, &claims))
	assert.NoError(t, err)
}
