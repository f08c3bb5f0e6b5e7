package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/feedmill-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting an admin JWT.
type AccessTokenPayload struct {
	AdminID uuid.UUID
	Role    enums.Role
	JTI     string
}

// AccessTokenClaims represents the typed admin JWT.
type AccessTokenClaims struct {
	AdminID uuid.UUID  `json:"admin_id"`
	Role    enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// CustomerTokenClaims identifies the customer an order is being placed for.
type CustomerTokenClaims struct {
	CustomerID uuid.UUID `json:"customer_id"`
	jwt.RegisteredClaims
}

// Principal is the verified identity behind a request.
type Principal struct {
	ID   uuid.UUID
	Role enums.Role
}

// IsAdmin reports whether the principal is an authenticated admin.
func (p Principal) IsAdmin() bool {
	return p.ID != uuid.Nil && p.Role == enums.RoleAdmin
}

// Principal converts verified admin claims into a Principal.
func (c *AccessTokenClaims) Principal() Principal {
	return Principal{ID: c.AdminID, Role: c.Role}
}

// Principal converts verified customer claims into a Principal.
func (c *CustomerTokenClaims) Principal() Principal {
	return Principal{ID: c.CustomerID, Role: enums.RoleCustomer}
}
