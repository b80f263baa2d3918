package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is the claim set carried by issued bearer tokens: the
// registered claims plus the username and role of the principal. The token
// id (jti) lives in RegisteredClaims.ID.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Name     string `json:"name,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// Username returns the name claim
func (c *IdentityClaims) Username() string {
	return c.Name
}

// Role returns the role claim
func (c *IdentityClaims) Role() string {
	return c.UserRole
}

// TokenID returns the unique token id (jti)
func (c *IdentityClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// Expires returns the expiration time
func (c *IdentityClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *IdentityClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
