package identity

import (
	"context"
	"time"

	"github.com/goliatone/go-identity/repository"
	"github.com/uptrace/bun"
)

// CustomerDetail is the read projection for customer profile lookups
type CustomerDetail struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	FullAddress string    `json:"full_address,omitempty"`
	DOB         time.Time `json:"dob,omitempty"`
	Points      int       `json:"points"`
}

// Customers is the customer profile repository
type Customers interface {
	repository.Repository[*Customer]

	GetByUsername(ctx context.Context, username string) (*Customer, error)
	GetDetailWithUser(ctx context.Context, criteria ...repository.SelectCriteria) (*CustomerDetail, error)
}

type customers struct {
	repository.Repository[*Customer]
	db *bun.DB
}

var _ Customers = (*customers)(nil)

// NewCustomersRepository builds the Customers repository
func NewCustomersRepository(db *bun.DB) Customers {
	repo := repository.NewRepository(db, repository.ModelHandlers[*Customer]{
		NewRecord: func() *Customer { return &Customer{} },
	})

	return &customers{
		Repository: repo,
		db:         db,
	}
}

func (c *customers) GetByUsername(ctx context.Context, username string) (*Customer, error) {
	return c.Repository.GetDetail(ctx,
		repository.Include("User"),
		repository.Where(
			"?TableAlias.user_id IN (SELECT id FROM users WHERE username = ? AND deleted_at IS NULL)",
			username,
		),
	)
}

// GetDetailWithUser loads the first matching profile with its user relation
// and flattens both into the detail projection.
func (c *customers) GetDetailWithUser(ctx context.Context, criteria ...repository.SelectCriteria) (*CustomerDetail, error) {
	lookup := append([]repository.SelectCriteria{
		repository.Include("User"),
	}, criteria...)

	record, err := c.Repository.GetDetail(ctx, lookup...)
	if err != nil {
		return nil, err
	}

	detail := &CustomerDetail{
		ID:          record.ID,
		FullAddress: record.FullAddress,
		DOB:         record.DOB,
		Points:      record.Points,
	}

	if record.UserID != nil {
		detail.UserID = record.UserID.String()
	}

	if record.User != nil {
		detail.Name = record.User.FullName
		detail.Phone = record.User.Phone
	}

	return detail, nil
}
