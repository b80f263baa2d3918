package identity

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-identity/repository"
)

// ResetTokenTTL is how long a password reset token stays usable
var ResetTokenTTL = "24h"

// AccountService drives sign up, login, and account lifecycle operations
type AccountService struct {
	repo     RepositoryManager
	codec    *TokenCodec
	provider IdentityProvider
	minAge   int
	logger   Logger
	now      func() time.Time
}

// NewAccountService wires the account service with its collaborators
func NewAccountService(repo RepositoryManager, codec *TokenCodec, cfg Config) *AccountService {
	return &AccountService{
		repo:     repo,
		codec:    codec,
		provider: NewUserProvider(repo.Users()),
		minAge:   cfg.GetMinimumAge(),
		logger:   defLogger{},
		now:      time.Now,
	}
}

func (s *AccountService) WithLogger(l Logger) *AccountService {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithIdentityProvider overrides the credential verifier
func (s *AccountService) WithIdentityProvider(p IdentityProvider) *AccountService {
	if p != nil {
		s.provider = p
	}
	return s
}

// SignUpCustomer registers a customer principal and its profile. Applicants
// younger than the configured minimum age are rejected; an applicant whose
// birthday lands exactly on the cutoff is accepted.
func (s *AccountService) SignUpCustomer(ctx context.Context, msg SignUpCustomerMessage) (*User, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid sign up request")
	}

	if msg.DOB.AddDate(s.minAge, 0, 0).After(s.now()) {
		return nil, ErrBelowMinimumAge
	}

	user, err := s.registerUser(ctx, &User{
		Role:     RoleCustomer,
		Username: msg.Username,
		FullName: msg.FullName,
		Email:    msg.Email,
		Phone:    msg.Phone,
	}, msg.Password)
	if err != nil {
		return nil, err
	}

	// profile creation follows the principal insert; a failure here leaves
	// the principal usable and the profile can be attached later
	_, err = s.repo.Customers().Insert(ctx, &Customer{
		UserID:      &user.ID,
		FullAddress: msg.FullAddress,
		DOB:         msg.DOB,
	})
	if err != nil {
		s.logger.Error("sign up created user %s but profile insert failed", user.ID, "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create customer profile")
	}

	return user, nil
}

// SignUpAdmin registers an administrator principal
func (s *AccountService) SignUpAdmin(ctx context.Context, msg SignUpAdminMessage) (*User, error) {
	return s.signUpStaff(ctx, msg, RoleAdmin)
}

// SignUpEmployee registers an employee principal
func (s *AccountService) SignUpEmployee(ctx context.Context, msg SignUpAdminMessage) (*User, error) {
	return s.signUpStaff(ctx, msg, RoleEmployee)
}

func (s *AccountService) signUpStaff(ctx context.Context, msg SignUpAdminMessage, role UserRole) (*User, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid sign up request")
	}

	return s.registerUser(ctx, &User{
		Role:     role,
		Username: msg.Username,
		FullName: msg.FullName,
		Email:    msg.Email,
	}, msg.Password)
}

func (s *AccountService) registerUser(ctx context.Context, user *User, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}
	user.PasswordHash = hash

	if _, err := s.repo.Roles().EnsureRole(ctx, user.Role); err != nil {
		return nil, err
	}

	return s.repo.Users().Register(ctx, user)
}

// Login verifies credentials and returns a signed token for the session
func (s *AccountService) Login(ctx context.Context, msg LoginMessage) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", errors.Wrap(err, errors.CategoryValidation, "invalid login request")
	}

	identity, err := s.provider.VerifyIdentity(ctx, msg.Username, msg.Password)
	if err != nil {
		return "", err
	}

	return s.codec.Issue(identity.Username(), identity.Role())
}

// UserFromToken resolves the principal referenced by an Authorization header
// value. The token is read without verification; callers must have already
// run it through Validate or the auth middleware.
func (s *AccountService) UserFromToken(ctx context.Context, headerValue string) (*User, error) {
	username, ok := ExtractUsername(headerValue)
	if !ok {
		return nil, ErrTokenMalformed
	}

	return s.repo.Users().GetByIdentifier(ctx, username)
}

// GetUsers lists every principal
func (s *AccountService) GetUsers(ctx context.Context) ([]*User, error) {
	return s.repo.Users().GetAll(ctx)
}

// GetUser resolves a principal by id, email, or username
func (s *AccountService) GetUser(ctx context.Context, identifier string) (*User, error) {
	return s.repo.Users().GetByIdentifier(ctx, identifier)
}

// AssignRole moves the user to the given role, creating the role record
// when it does not exist yet.
func (s *AccountService) AssignRole(ctx context.Context, identifier string, role UserRole) (*User, error) {
	if !role.IsValid() {
		return nil, errors.New("unknown role", errors.CategoryValidation).
			WithTextCode("INVALID_ROLE").
			WithMetadata(map[string]any{"role": role})
	}

	if _, err := s.repo.Roles().EnsureRole(ctx, role); err != nil {
		return nil, err
	}

	user, err := s.repo.Users().GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	user.Role = role

	return s.repo.Users().Update(ctx, user)
}

// Deactivate locks the account out rather than deleting it
func (s *AccountService) Deactivate(ctx context.Context, identifier string) (*User, error) {
	user, err := s.repo.Users().GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return s.repo.Users().Deactivate(ctx, user)
}

// UpdateProfile patches the principal with any provided fields. Fields left
// nil in the message keep their current value.
func (s *AccountService) UpdateProfile(ctx context.Context, identifier string, msg UpdateUserMessage) (*User, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid profile update")
	}

	user, err := s.repo.Users().GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	applyUserPatch(user, msg)

	return s.repo.Users().Update(ctx, user)
}

// ResetPassword sets a new password for the given user
func (s *AccountService) ResetPassword(ctx context.Context, identifier string, msg ResetPasswordMessage) error {
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid password reset")
	}

	user, err := s.repo.Users().GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}

	hash, err := HashPassword(msg.NewPassword)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	return s.repo.Users().ResetPassword(ctx, user.ID, hash)
}

// ForgetPassword records a reset request for the account registered under
// the given email. The generated token is intentionally not returned:
// dispatching it to the user belongs to a delivery collaborator, and handing
// it back to the caller would let anyone reset anyone's password.
func (s *AccountService) ForgetPassword(ctx context.Context, msg ForgotPasswordMessage) error {
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid forgot password request")
	}

	user, err := s.repo.Users().GetByIdentifier(ctx, msg.Email)
	if err != nil {
		return err
	}

	if _, err := s.repo.PasswordResets().Create(ctx, user.ID, user.Email); err != nil {
		return err
	}

	return nil
}

// FinalizePasswordReset consumes a reset token and applies the new password.
// Tokens older than ResetTokenTTL are marked expired and rejected.
func (s *AccountService) FinalizePasswordReset(ctx context.Context, msg FinalizePasswordResetMessage) error {
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid password reset finalize request")
	}

	reset, err := s.repo.PasswordResets().GetByID(ctx, msg.Session)
	if err != nil {
		return err
	}

	if reset.Status != ResetRequestedStatus {
		return errors.New("password reset token already used", errors.CategoryConflict).
			WithTextCode("RESET_TOKEN_CONSUMED")
	}

	if reset.CreatedAt != nil {
		expired, err := IsOutsideThresholdPeriod(*reset.CreatedAt, ResetTokenTTL)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to compute reset token expiration")
		}

		if expired {
			reset.Status = ResetExpiredStatus
			if _, err := s.repo.PasswordResets().Update(ctx, reset); err != nil {
				s.logger.Error("failed to mark reset token %s as expired", reset.ID, "error", err)
			}
			return errors.New("password reset token has expired", errors.CategoryAuth).
				WithTextCode("RESET_TOKEN_EXPIRED")
		}
	}

	if reset.UserID == nil {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"session": msg.Session})
	}

	hash, err := HashPassword(msg.Password)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	if err := s.repo.Users().ResetPassword(ctx, *reset.UserID, hash); err != nil {
		return err
	}

	reset.Status = ResetChangedStatus
	resetedAt := s.now()
	reset.ResetedAt = &resetedAt

	if _, err := s.repo.PasswordResets().Update(ctx, reset); err != nil {
		s.logger.Error("failed to mark reset token %s as consumed", reset.ID, "error", err)
	}

	return nil
}

func applyUserPatch(user *User, msg UpdateUserMessage) {
	if msg.FullName != nil {
		user.FullName = *msg.FullName
	}

	if msg.Email != nil {
		user.Email = *msg.Email
	}

	if msg.Phone != nil {
		user.Phone = *msg.Phone
	}
}
