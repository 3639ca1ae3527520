package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose scopes a token to the operation it was minted for. Tokens are
// single-purpose: a password reset token cannot authenticate an API request
// and an access token cannot confirm a reset.
type TokenPurpose string

const (
	// PurposeAccess authenticates API requests
	PurposeAccess TokenPurpose = "access"
	// PurposePasswordReset authorizes a password reset confirmation
	PurposePasswordReset TokenPurpose = "password_reset"
	// PurposeEmailVerification authorizes an email verification
	PurposeEmailVerification TokenPurpose = "email_verification"
)

// IsValid checks the purpose is one of the predefined values
func (p TokenPurpose) IsValid() bool {
	switch p {
	case PurposeAccess, PurposePasswordReset, PurposeEmailVerification:
		return true
	default:
		return false
	}
}

// AuthClaims represents structured JWT claims
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	Purpose() TokenPurpose
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID          string         `json:"uid,omitempty"`
	UserRole     string         `json:"role,omitempty"`
	TokenPurpose TokenPurpose   `json:"purpose,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"` // extension payload
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the global role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// Purpose returns the purpose claim. Tokens minted before the purpose claim
// existed carry none; treat those as access tokens.
func (c *JWTClaims) Purpose() TokenPurpose {
	if c.TokenPurpose == "" {
		return PurposeAccess
	}
	return c.TokenPurpose
}

// ClaimsMetadata exposes metadata extensions for optional context enrichment.
func (c *JWTClaims) ClaimsMetadata() map[string]any {
	return c.Metadata
}

// HasRole checks if the user has a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole == role
}

// IsAtLeast checks if the user's role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(minRole string) bool {
	return RoleIsAtLeast(UserRole(c.UserRole), UserRole(minRole))
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
