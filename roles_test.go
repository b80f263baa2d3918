package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	identity "github.com/goliatone/go-identity"
)

func TestUserRoleIsValid(t *testing.T) {
	assert.True(t, identity.RoleGuest.IsValid())
	assert.True(t, identity.RoleCustomer.IsValid())
	assert.True(t, identity.RoleEmployee.IsValid())
	assert.True(t, identity.RoleAdmin.IsValid())
	assert.False(t, identity.UserRole("superuser").IsValid())
	assert.False(t, identity.UserRole("").IsValid())
}

func TestUserRoleIsAtLeast(t *testing.T) {
	assert.True(t, identity.RoleAdmin.IsAtLeast(identity.RoleEmployee))
	assert.True(t, identity.RoleEmployee.IsAtLeast(identity.RoleEmployee))
	assert.False(t, identity.RoleCustomer.IsAtLeast(identity.RoleEmployee))
	assert.False(t, identity.UserRole("superuser").IsAtLeast(identity.RoleGuest))
	assert.False(t, identity.RoleAdmin.IsAtLeast(identity.UserRole("superuser")))
}

func TestParseRole(t *testing.T) {
	role, ok := identity.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, identity.RoleAdmin, role)

	_, ok = identity.ParseRole("superuser")
	assert.False(t, ok)
}

func TestGetAllRolesOrder(t *testing.T) {
	roles := identity.GetAllRoles()
	assert.Equal(t, []identity.UserRole{
		identity.RoleGuest,
		identity.RoleCustomer,
		identity.RoleEmployee,
		identity.RoleAdmin,
	}, roles)
}
