package identity

import (
	"context"

	"github.com/goliatone/go-identity/repository"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PasswordResets is the password reset request repository
type PasswordResets interface {
	repository.Repository[*PasswordReset]

	GetByID(ctx context.Context, id string) (*PasswordReset, error)
	Create(ctx context.Context, userID uuid.UUID, email string) (*PasswordReset, error)
}

type passwordResets struct {
	repository.Repository[*PasswordReset]
}

var _ PasswordResets = (*passwordResets)(nil)

// NewPasswordResetsRepository builds the PasswordResets repository
func NewPasswordResetsRepository(db *bun.DB) PasswordResets {
	repo := repository.NewRepository(db, repository.ModelHandlers[*PasswordReset]{
		NewRecord: func() *PasswordReset { return &PasswordReset{} },
	})

	return &passwordResets{Repository: repo}
}

func (p *passwordResets) GetByID(ctx context.Context, id string) (*PasswordReset, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id})
	}

	return p.Repository.GetDetail(ctx, repository.ByID(id))
}

// Create inserts a fresh reset request in the requested state. The record
// id is the reset token.
func (p *passwordResets) Create(ctx context.Context, userID uuid.UUID, email string) (*PasswordReset, error) {
	reset := &PasswordReset{
		ID:     uuid.New(),
		UserID: &userID,
		Email:  email,
		Status: ResetRequestedStatus,
	}

	return p.Repository.Insert(ctx, reset)
}
