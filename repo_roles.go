package identity

import (
	"context"

	"github.com/goliatone/go-identity/repository"
	"github.com/uptrace/bun"
)

// RoleStore can check and create named roles. It is consulted at startup
// and on role assignment only.
type RoleStore interface {
	repository.Repository[*Role]

	EnsureRole(ctx context.Context, name UserRole) (*Role, error)
	RoleExists(ctx context.Context, name UserRole) (bool, error)
}

type roleStore struct {
	repository.Repository[*Role]
}

var _ RoleStore = (*roleStore)(nil)

// NewRoleStore builds the role store
func NewRoleStore(db *bun.DB) RoleStore {
	repo := repository.NewRepository(db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
	})

	return &roleStore{Repository: repo}
}

func (r *roleStore) RoleExists(ctx context.Context, name UserRole) (bool, error) {
	return r.Repository.CheckExists(ctx, repository.ByColumn("name", string(name)))
}

// EnsureRole returns the named role, creating it when missing.
func (r *roleStore) EnsureRole(ctx context.Context, name UserRole) (*Role, error) {
	record, err := r.Repository.GetDetail(ctx, repository.ByColumn("name", string(name)))
	if err == nil {
		return record, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	return r.Repository.Insert(ctx, &Role{Name: string(name)})
}

// EnsureDefaultRoles seeds the role table with every predefined role.
func EnsureDefaultRoles(ctx context.Context, store RoleStore) error {
	for _, role := range GetAllRoles() {
		if _, err := store.EnsureRole(ctx, role); err != nil {
			return err
		}
	}
	return nil
}
