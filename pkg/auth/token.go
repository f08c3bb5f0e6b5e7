package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/feedmill-backend/pkg/config"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
)

const customerAudience = "feedmill-customer"

var jwtSigningMethod = jwt.SigningMethodHS256

// MintAccessToken issues a signed admin JWT for the provided payload using the configured TTL.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("jwt issuer is required")
	}
	ttl := cfg.AccessTTL()
	if ttl <= 0 {
		return "", fmt.Errorf("jwt expiration minutes must be positive")
	}
	if payload.AdminID == uuid.Nil {
		return "", fmt.Errorf("admin id is required")
	}
	if payload.Role != enums.RoleAdmin {
		return "", fmt.Errorf("invalid admin role %q", payload.Role)
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	claims := AccessTokenClaims{
		AdminID: payload.AdminID,
		Role:    payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   payload.AdminID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}
	return sign(claims, cfg.Secret)
}

// ParseAccessToken validates an admin JWT and returns typed claims.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &AccessTokenClaims{}
	if err := parse(tokenString, claims, cfg.Secret, jwt.WithIssuer(cfg.Issuer)); err != nil {
		return nil, err
	}
	if claims.AdminID == uuid.Nil || claims.Role != enums.RoleAdmin {
		return nil, fmt.Errorf("token does not carry an admin identity")
	}
	return claims, nil
}

// MintCustomerToken issues the token the order placement endpoint uses to
// identify the customer. It is signed with a secret distinct from admin tokens.
func MintCustomerToken(cfg config.JWTConfig, now time.Time, customerID uuid.UUID) (string, error) {
	if cfg.CustomerSecret == "" {
		return "", fmt.Errorf("customer jwt secret is required")
	}
	if customerID == uuid.Nil {
		return "", fmt.Errorf("customer id is required")
	}
	ttl := cfg.CustomerTTL()
	if ttl <= 0 {
		return "", fmt.Errorf("customer jwt expiration minutes must be positive")
	}

	claims := CustomerTokenClaims{
		CustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   customerID.String(),
			Audience:  jwt.ClaimStrings{customerAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return sign(claims, cfg.CustomerSecret)
}

// ParseCustomerToken validates a customer JWT.
func ParseCustomerToken(cfg config.JWTConfig, tokenString string) (*CustomerTokenClaims, error) {
	if cfg.CustomerSecret == "" {
		return nil, fmt.Errorf("customer jwt secret is required")
	}

	claims := &CustomerTokenClaims{}
	if err := parse(tokenString, claims, cfg.CustomerSecret, jwt.WithIssuer(cfg.Issuer), jwt.WithAudience(customerAudience)); err != nil {
		return nil, err
	}
	if claims.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("token does not carry a customer identity")
	}
	return claims, nil
}

func sign(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

func parse(tokenString string, claims jwt.Claims, secret string, opts ...jwt.ParserOption) error {
	opts = append(opts, jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}))
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		opts...,
	)
	return err
}
