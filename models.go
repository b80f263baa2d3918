package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Audit carries creation/update timestamps. Embed it in models that need
// them; Bun promotes the embedded fields into the parent table.
type Audit struct {
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EntityStatus is a coarse availability flag for tracked entities
type EntityStatus = string

const (
	// StatusAvailable marks a usable record
	StatusAvailable EntityStatus = "available"
	// StatusDisabled marks a soft-disabled record
	StatusDisabled EntityStatus = "disabled"
)

// Tracking carries an availability status. Embed alongside Audit as needed.
type Tracking struct {
	Status EntityStatus `bun:"status" json:"status,omitempty"`
}

// User is the principal model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	FullName       string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone          string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	LockoutEnabled bool       `bun:"lockout_enabled" json:"lockout_enabled,omitempty"`
	LockoutEnd     *time.Time `bun:"lockout_end,nullzero" json:"lockout_end,omitempty"`
	Customer       *Customer  `bun:"rel:has-one,join:id=user_id" json:"customer,omitempty"`
	Audit
	DeletedAt *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Locked reports whether the user is currently locked out
func (u *User) Locked(now time.Time) bool {
	if u == nil || !u.LockoutEnabled {
		return false
	}
	return u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

// Customer is the profile record owned by a customer principal
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:cst"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,nullzero,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Points        int        `bun:"points,notnull,default:0" json:"points"`
	FullAddress   string     `bun:"full_address" json:"full_address,omitempty"`
	DOB           time.Time  `bun:"dob" json:"dob,omitempty"`
	Audit
}

const (
	// ResetRequestedStatus is the requested status
	ResetRequestedStatus = "requested"
	// ResetExpiredStatus is the expired status
	ResetExpiredStatus = "expired"
	// ResetChangedStatus is the changed status
	ResetChangedStatus = "changed"
)

// PasswordReset tracks a pending password reset request. The generated
// record id doubles as the reset token; dispatching it to the user is an
// external collaborator's job.
type PasswordReset struct {
	bun.BaseModel `bun:"table:password_reset,alias:pwdr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,notnull" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	ResetedAt     *time.Time `bun:"reseted_at,nullzero" json:"reseted_at,omitempty"`
	Audit
}
