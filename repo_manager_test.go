package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	identity "github.com/goliatone/go-identity"
	"github.com/goliatone/go-identity/repository"
)

func TestRepositoryManagerValidate(t *testing.T) {
	repo, _, cleanup := setupIdentityDB(t)
	defer cleanup()

	assert.NoError(t, repo.Validate())
	assert.NotPanics(t, repo.MustValidate)
}

func TestRepositoryManagerRunInTx(t *testing.T) {
	repo, _, cleanup := setupIdentityDB(t)
	defer cleanup()

	err := repo.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, "SELECT 1")
		return err
	})
	assert.NoError(t, err)
}

func TestRepositoryManagerRunInTxCancelledContext(t *testing.T) {
	repo, _, cleanup := setupIdentityDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnsureRoleIsIdempotent(t *testing.T) {
	repo, _, cleanup := setupIdentityDB(t)
	defer cleanup()

	ctx := context.Background()

	first, err := repo.Roles().EnsureRole(ctx, identity.RoleAdmin)
	require.NoError(t, err)

	second, err := repo.Roles().EnsureRole(ctx, identity.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	exists, err := repo.Roles().RoleExists(ctx, identity.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Roles().RoleExists(ctx, identity.UserRole("superuser"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPasswordResetsGetByIDRejectsMalformedToken(t *testing.T) {
	repo, _, cleanup := setupIdentityDB(t)
	defer cleanup()

	_, err := repo.PasswordResets().GetByID(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}
