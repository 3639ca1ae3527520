package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the persisted account record. The password hash never serializes:
// request state and API responses carry a Principal or a sanitized view of
// this struct, not the hash.
type User struct {
	bun.BaseModel   `bun:"table:users,alias:usr"`
	ID              uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role            UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Username        string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email           string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash    string     `bun:"password_hash,notnull" json:"-"`
	EmailVerified   bool       `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	TwoFactorSecret *string    `bun:"two_factor_secret,nullzero" json:"-"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt       *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Principal returns the request-scoped identity carrier for this record.
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Role: u.Role}
}

// Identity adapts the record for token issuance.
func (u *User) Identity() Identity {
	return &UserIdentity{user: u}
}

// Principal is what travels with a request once the bearer token checks out.
// It deliberately carries no credential material.
type Principal struct {
	ID   uuid.UUID
	Role UserRole
}

// IsAtLeast reports whether the principal's role meets the minimum level.
func (p *Principal) IsAtLeast(minRole UserRole) bool {
	if p == nil {
		return false
	}
	return RoleIsAtLeast(p.Role, minRole)
}

// UserIdentity exposes a User through the Identity interface.
type UserIdentity struct {
	user *User
}

// NewUserIdentity wraps a stored record for token issuance.
func NewUserIdentity(user *User) *UserIdentity {
	return &UserIdentity{user: user}
}

func (i *UserIdentity) ID() string {
	return i.user.ID.String()
}

func (i *UserIdentity) Username() string {
	return i.user.Username
}

func (i *UserIdentity) Email() string {
	return i.user.Email
}

func (i *UserIdentity) Role() string {
	return i.user.Role
}
