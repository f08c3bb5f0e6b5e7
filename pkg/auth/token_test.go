package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/feedmill-backend/pkg/config"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                    "admin-secret",
		CustomerSecret:            "customer-secret",
		Issuer:                    "feedmill",
		ExpirationMinutes:         30,
		CustomerExpirationMinutes: 60,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	adminID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{AdminID: adminID, Role: enums.RoleAdmin, JTI: "jti-1"})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, adminID, claims.AdminID)
	assert.Equal(t, enums.RoleAdmin, claims.Role)
	assert.Equal(t, "jti-1", claims.ID)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)

	principal := claims.Principal()
	assert.True(t, principal.IsAdmin())
}

func TestMintAccessTokenRejectsCustomerRole(t *testing.T) {
	_, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{AdminID: uuid.New(), Role: enums.RoleCustomer})
	require.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{AdminID: uuid.New(), Role: enums.RoleAdmin})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{AdminID: uuid.New(), Role: enums.RoleAdmin})
	require.NoError(t, err)

	cfg.Issuer = "someone-else"
	_, err = ParseAccessToken(cfg, token)
	require.Error(t, err)
}

func TestCustomerTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	customerID := uuid.New()

	token, err := MintCustomerToken(cfg, time.Now(), customerID)
	require.NoError(t, err)

	claims, err := ParseCustomerToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, customerID, claims.CustomerID)

	principal := claims.Principal()
	assert.Equal(t, enums.RoleCustomer, principal.Role)
	assert.False(t, principal.IsAdmin())
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	cfg := testJWTConfig()

	customerToken, err := MintCustomerToken(cfg, time.Now(), uuid.New())
	require.NoError(t, err)
	_, err = ParseAccessToken(cfg, customerToken)
	assert.Error(t, err, "customer token must not pass as admin token")

	adminToken, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{AdminID: uuid.New(), Role: enums.RoleAdmin})
	require.NoError(t, err)
	_, err = ParseCustomerToken(cfg, adminToken)
	assert.Error(t, err, "admin token must not pass as customer token")
}

func TestParseRejectsGarbage(t *testing.T) {
	cfg := testJWTConfig()
	_, err := ParseAccessToken(cfg, "not-a-jwt")
	assert.Error(t, err)
	_, err = ParseCustomerToken(cfg, "")
	assert.Error(t, err)
}
