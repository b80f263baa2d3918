package identity_test

import (
	"context"
	"testing"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/goliatone/go-identity"
	"github.com/goliatone/go-identity/repository"
)

func TestUsersGetByIdentifierResolution(t *testing.T) {
	repo, _, cleanup := setupIdentityDB(t)
	defer cleanup()

	ctx := context.Background()
	user := registerProviderUser(t, repo, "sup3r-secret")

	byID, err := repo.Users().GetByIdentifier(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.ID, byID.ID)

	byEmail, err := repo.Users().GetByIdentifier(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byUsername, err := repo.Users().GetByIdentifier(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	_, err = repo.Users().GetByIdentifier(ctx, "does-not-exist")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))

	_, err = repo.Users().GetByIdentifier(ctx, "   ")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersRegisterDerivesIDFromEmail(t *testing.T) {
	repo, _, cleanup := setupIdentityDB(t)
	defer cleanup()

	user := registerProviderUser(t, repo, "sup3r-secret")

	expected, err := hashid.NewUUID(user.Email)
	require.NoError(t, err)
	assert.Equal(t, expected, user.ID)
}

func TestUsersRegisterDefaultsRoleToGuest(t *testing.T) {
	repo, _, cleanup := setupIdentityDB(t)
	defer cleanup()

	user, err := repo.Users().Register(context.Background(), &identity.User{
		Username: "no.role",
		FullName: "No Role",
		Email:    "norole@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, identity.RoleGuest, user.Role)
}

func TestUsersResetPasswordUnknownID(t *testing.T) {
	repo, _, cleanup := setupIdentityDB(t)
	defer cleanup()

	err := repo.Users().ResetPassword(context.Background(), uuid.New(), "hash")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersTrackAttemptedLogin(t *testing.T) {
	repo, _, cleanup := setupIdentityDB(t)
	defer cleanup()

	ctx := context.Background()
	user := registerProviderUser(t, repo, "sup3r-secret")

	require.NoError(t, repo.Users().TrackAttemptedLogin(ctx, user))
	require.NoError(t, repo.Users().TrackAttemptedLogin(ctx, user))

	found, err := repo.Users().GetByIdentifier(ctx, user.Username)
	require.NoError(t, err)
	// the counter is derived from the stale in-memory record both times
	assert.Equal(t, 1, found.LoginAttempts)

	require.NoError(t, repo.Users().TrackAttemptedLogin(ctx, found))

	found, err = repo.Users().GetByIdentifier(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, 2, found.LoginAttempts)

	require.NoError(t, repo.Users().TrackSuccessfulLogin(ctx, found))

	found, err = repo.Users().GetByIdentifier(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, 0, found.LoginAttempts)
	assert.Nil(t, found.LoginAttemptAt)
	assert.NotNil(t, found.LoggedInAt)
}
