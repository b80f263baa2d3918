package identity

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-identity/repository"
)

// CustomerService drives customer profile reads and updates
type CustomerService struct {
	repo   RepositoryManager
	logger Logger
}

// NewCustomerService wires the customer service
func NewCustomerService(repo RepositoryManager) *CustomerService {
	return &CustomerService{
		repo:   repo,
		logger: defLogger{},
	}
}

func (s *CustomerService) WithLogger(l Logger) *CustomerService {
	if l != nil {
		s.logger = l
	}
	return s
}

// UpdateCustomer patches both the profile and its owning principal with any
// provided fields. Nil fields keep their current value.
func (s *CustomerService) UpdateCustomer(ctx context.Context, identifier string, msg UpdateCustomerMessage) (*Customer, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid customer update")
	}

	user, err := s.repo.Users().GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	applyUserPatch(user, msg.UpdateUserMessage)

	if _, err := s.repo.Users().Update(ctx, user); err != nil {
		return nil, err
	}

	customer, err := s.repo.Customers().GetDetail(ctx,
		repository.ByColumn("user_id", user.ID.String()),
	)
	if err != nil {
		return nil, err
	}

	if msg.DOB != nil {
		customer.DOB = *msg.DOB
	}

	if msg.FullAddress != nil {
		customer.FullAddress = *msg.FullAddress
	}

	return s.repo.Customers().Update(ctx, customer)
}

// GetDetail returns the flattened profile projection for the given username
func (s *CustomerService) GetDetail(ctx context.Context, username string) (*CustomerDetail, error) {
	return s.repo.Customers().GetDetailWithUser(ctx,
		repository.Where(
			"?TableAlias.user_id IN (SELECT id FROM users WHERE username = ? AND deleted_at IS NULL)",
			username,
		),
	)
}

// GetAll returns every customer profile with its principal loaded
func (s *CustomerService) GetAll(ctx context.Context) ([]*Customer, error) {
	return s.repo.Customers().GetAll(ctx, "User")
}

// AddPoints increments the loyalty balance for a profile
func (s *CustomerService) AddPoints(ctx context.Context, identifier string, points int) (*Customer, error) {
	if points < 0 {
		return nil, errors.New("points must not be negative", errors.CategoryValidation).
			WithTextCode("INVALID_POINTS")
	}

	user, err := s.repo.Users().GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	customer, err := s.repo.Customers().GetDetail(ctx,
		repository.ByColumn("user_id", user.ID.String()),
	)
	if err != nil {
		return nil, err
	}

	customer.Points += points

	return s.repo.Customers().Update(ctx, customer)
}
