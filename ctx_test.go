package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/goliatone/go-identity"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := &identity.User{Username: "pepe.rone"}

	ctx := identity.WithContext(context.Background(), user)

	found, ok := identity.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "pepe.rone", found.Username)
}

func TestFromContextMissingUser(t *testing.T) {
	_, ok := identity.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &identity.IdentityClaims{Name: "pepe.rone", UserRole: "customer"}

	ctx := identity.WithClaimsContext(context.Background(), claims)

	found, ok := identity.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "pepe.rone", found.Username())
	assert.Equal(t, "customer", found.Role())
}

func TestGetClaimsMissing(t *testing.T) {
	_, ok := identity.GetClaims(context.Background())
	assert.False(t, ok)
}
