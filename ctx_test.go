package auth_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-authkit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalContextRoundTrip(t *testing.T) {
	principal := &auth.Principal{ID: uuid.New(), Role: auth.RoleUser}

	ctx := auth.WithPrincipal(context.Background(), principal)

	got, ok := auth.PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, principal, got)
}

func TestPrincipalFromContextMissing(t *testing.T) {
	got, ok := auth.PrincipalFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &auth.JWTClaims{UserRole: auth.RoleAdmin}

	ctx := auth.WithClaimsContext(context.Background(), claims)

	got, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, got.Role())
}

func TestGetClaimsMissing(t *testing.T) {
	got, ok := auth.GetClaims(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRouterPrincipal(t *testing.T) {
	principal := &auth.Principal{ID: uuid.New(), Role: auth.RoleUser}

	mc := newMockContext()
	mc.SetContext(auth.WithPrincipal(mc.Context(), principal))

	got, ok := auth.RouterPrincipal(mc)
	require.True(t, ok)
	assert.Equal(t, principal, got)
}

func TestGetRouterClaims(t *testing.T) {
	claims := &auth.JWTClaims{UserRole: auth.RoleUser}

	mc := newMockContext()
	mc.On("Locals", "user").Return(claims)

	got, ok := auth.GetRouterClaims(mc, "")
	require.True(t, ok)
	assert.Equal(t, auth.RoleUser, got.Role())

	empty := newMockContext()
	empty.On("Locals", "user").Return(nil)
	_, ok = auth.GetRouterClaims(empty, "")
	assert.False(t, ok)
}
