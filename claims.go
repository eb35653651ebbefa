package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents structured JWT claims with role checking helpers
type AuthClaims interface {
	Subject() string
	UserID() string
	Kind() string
	Role() string
	HasRole(role string) bool
	Satisfies(roles ...string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID          string         `json:"uid,omitempty"`
	IdentityKind string         `json:"kind,omitempty"`
	UserRole     string         `json:"role,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"` // extension payload
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the identity ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Kind returns the identity kind, defaulting to user for older tokens.
func (c *JWTClaims) Kind() string {
	if c.IdentityKind == "" {
		return KindUser
	}
	return c.IdentityKind
}

// Role returns the global role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// HasRole checks if the identity has a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole == role
}

// Satisfies checks the role against an allowed set, admin passing any set.
func (c *JWTClaims) Satisfies(roles ...string) bool {
	allowed := make([]UserRole, 0, len(roles))
	for _, r := range roles {
		allowed = append(allowed, UserRole(r))
	}
	return RoleSatisfies(UserRole(c.UserRole), allowed, true)
}

// ClaimsMetadata exposes metadata extensions for optional context enrichment.
func (c *JWTClaims) ClaimsMetadata() map[string]any {
	return c.Metadata
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
