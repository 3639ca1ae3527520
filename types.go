package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// TokenService mints and verifies the bearer tokens that carry identity
// between requests.
type TokenService interface {
	Issue(identity Identity, purpose TokenPurpose) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
	ExtractSubject(tokenString string) (uuid.UUID, error)
	IsValid(tokenString string, expected uuid.UUID) bool
}

// IdentityStore is the persistence contract the library consumes but does
// not own. Implementations enforce username and email uniqueness and return
// errors satisfying goerrors.IsNotFound for missing records.
type IdentityStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) (*User, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Message is an outbound mail
type Message struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
}

// Mailer delivers account lifecycle mail. Implementations do not retry;
// delivery failures surface to the caller.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetContextKey() string
	GetTokenTTL() time.Duration
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetFrontendURL() string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// SimpleConfig is a literal Config, handy for wiring and tests.
type SimpleConfig struct {
	SigningKey  string
	ContextKey  string
	TokenTTL    time.Duration
	AuthScheme  string
	Issuer      string
	Audience    []string
	FrontendURL string
}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c SimpleConfig) GetTokenTTL() time.Duration {
	if c.TokenTTL == 0 {
		return 24 * time.Hour
	}
	return c.TokenTTL
}

func (c SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c SimpleConfig) GetIssuer() string { return c.Issuer }

func (c SimpleConfig) GetAudience() []string { return c.Audience }

func (c SimpleConfig) GetFrontendURL() string { return c.FrontendURL }

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
