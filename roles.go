package identity

import (
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleGuest is an unauthenticated or unassigned role
	RoleGuest UserRole = "guest"
	// RoleCustomer is a registered customer
	RoleCustomer UserRole = "customer"
	// RoleEmployee is a staff member
	RoleEmployee UserRole = "employee"
	// RoleAdmin is an administrator
	RoleAdmin UserRole = "admin"
)

// Role is the persisted role record backing the role store
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string `bun:"name,notnull,unique" json:"name,omitempty"`
	Audit
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleGuest, RoleCustomer, RoleEmployee, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

var roleHierarchy = map[UserRole]int{
	RoleGuest:    0,
	RoleCustomer: 1,
	RoleEmployee: 2,
	RoleAdmin:    3,
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleGuest,
		RoleCustomer,
		RoleEmployee,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
