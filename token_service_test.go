package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	auth "github.com/goliatone/go-authkit"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-signing-key-0123456789")

type testIdentity struct {
	id       string
	username string
	email    string
	role     string
}

func (t testIdentity) ID() string       { return t.id }
func (t testIdentity) Username() string { return t.username }
func (t testIdentity) Email() string    { return t.email }
func (t testIdentity) Role() string     { return t.role }

func newTestIdentity() testIdentity {
	return testIdentity{
		id:       uuid.NewString(),
		username: "peperone",
		email:    "pepe@example.com",
		role:     auth.RoleUser,
	}
}

func newTestTokenService(t *testing.T, ttl time.Duration) auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenService(testSigningKey, ttl, "test-issuer", nil, nil)
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRequiresSigningKey(t *testing.T) {
	svc, err := auth.NewTokenService(nil, time.Hour, "test-issuer", nil, nil)
	assert.Nil(t, svc)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrMissingSigningKey)

	svc, err = auth.NewTokenService([]byte{}, time.Hour, "", nil, nil)
	assert.Nil(t, svc)
	assert.Error(t, err)
}

func TestTokenServiceIssueAndValidate(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	identity := newTestIdentity()

	before := time.Now()
	token, err := svc.Issue(identity, auth.PurposeAccess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, identity.id, claims.Subject())
	assert.Equal(t, identity.id, claims.UserID())
	assert.Equal(t, auth.RoleUser, claims.Role())
	assert.Equal(t, auth.PurposeAccess, claims.Purpose())

	assert.WithinDuration(t, before, claims.IssuedAt(), 5*time.Second)
	assert.WithinDuration(t, before.Add(time.Hour), claims.Expires(), 5*time.Second)
}

func TestTokenServiceIssueRejectsUnknownPurpose(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, err := svc.Issue(newTestIdentity(), auth.TokenPurpose("refresh"))
	assert.Empty(t, token)
	assert.Error(t, err)
}

func TestTokenServicePurposeSurvivesRoundTrip(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	identity := newTestIdentity()

	tests := []auth.TokenPurpose{
		auth.PurposeAccess,
		auth.PurposePasswordReset,
		auth.PurposeEmailVerification,
	}

	for _, purpose := range tests {
		t.Run(string(purpose), func(t *testing.T) {
			token, err := svc.Issue(identity, purpose)
			require.NoError(t, err)

			claims, err := svc.Validate(token)
			require.NoError(t, err)
			assert.Equal(t, purpose, claims.Purpose())
		})
	}
}

func TestTokenServiceValidateExpired(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	past := time.Now().Add(-2 * time.Hour)
	token, err := svc.SignClaims(&auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
		TokenPurpose: auth.PurposeAccess,
	})
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestTokenServiceValidateBadSignature(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	other, err := auth.NewTokenService([]byte("a-completely-different-key"), time.Hour, "test-issuer", nil, nil)
	require.NoError(t, err)

	token, err := other.Issue(newTestIdentity(), auth.PurposeAccess)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	assert.Nil(t, claims)
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, auth.TextCodeTokenSignature, richErr.TextCode)
}

func TestTokenServiceValidateMalformed(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"garbage", "not-a-jwt"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Validate(tt.token)
			assert.Nil(t, claims)
			require.Error(t, err)
			assert.True(t, auth.IsMalformedError(err))
		})
	}
}

func TestTokenServiceExtractSubject(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	identity := newTestIdentity()

	token, err := svc.Issue(identity, auth.PurposeAccess)
	require.NoError(t, err)

	subject, err := svc.ExtractSubject(token)
	require.NoError(t, err)
	assert.Equal(t, identity.id, subject.String())
}

func TestTokenServiceExtractSubjectRejectsNonUUID(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	now := time.Now()
	token, err := svc.SignClaims(&auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   "not-a-uuid",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	subject, err := svc.ExtractSubject(token)
	assert.Equal(t, uuid.Nil, subject)
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}

func TestTokenServiceIsValid(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	identity := newTestIdentity()
	expected := uuid.MustParse(identity.id)

	token, err := svc.Issue(identity, auth.PurposeAccess)
	require.NoError(t, err)

	assert.True(t, svc.IsValid(token, expected))
	assert.False(t, svc.IsValid(token, uuid.New()), "different subject must not validate")
	assert.False(t, svc.IsValid(token+"x", expected), "tampered token must not validate")
	assert.False(t, svc.IsValid("", expected))
}

func TestTokenServiceSignClaimsNil(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, err := svc.SignClaims(nil)
	assert.Empty(t, token)
	assert.Error(t, err)
}
