package identity

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is the region used to parse phone numbers without an
// international prefix.
var DefaultPhoneRegion = "US"

// SignUpCustomerMessage is the customer registration command
type SignUpCustomerMessage struct {
	Username    string    `json:"username"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	Phone       string    `json:"phone_number"`
	FullAddress string    `json:"full_address"`
	DOB         time.Time `json:"dob"`
}

func (m SignUpCustomerMessage) Type() string { return "account.sign_up_customer" }

// Validate will run validation rules
func (m SignUpCustomerMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&m.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&m.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&m.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&m.Phone, validation.Required, validation.By(ValidatePhoneNumber(DefaultPhoneRegion))),
		validation.Field(&m.DOB, validation.Required),
	)
}

// SignUpAdminMessage registers an admin or employee account
type SignUpAdminMessage struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (m SignUpAdminMessage) Type() string { return "account.sign_up_admin" }

// Validate will run validation rules
func (m SignUpAdminMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&m.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&m.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&m.Password, validation.Required, validation.Length(8, 100)),
	)
}

// LoginMessage is the credential verification command
type LoginMessage struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (m LoginMessage) Type() string { return "account.login" }

// Validate will run validation rules
func (m LoginMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Username, validation.Required),
		validation.Field(&m.Password, validation.Required),
	)
}

// UpdateUserMessage patches principal fields. Nil fields are left as is.
type UpdateUserMessage struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone_number"`
}

func (m UpdateUserMessage) Type() string { return "account.update_user" }

// Validate will run validation rules
func (m UpdateUserMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, is.Email),
		validation.Field(&m.Phone, validation.By(validateOptionalPhone)),
	)
}

// UpdateCustomerMessage patches the customer profile plus principal fields
type UpdateCustomerMessage struct {
	UpdateUserMessage
	DOB         *time.Time `json:"dob"`
	FullAddress *string    `json:"full_address"`
}

func (m UpdateCustomerMessage) Type() string { return "customer.update_profile" }

// ForgotPasswordMessage starts a password reset for the given email
type ForgotPasswordMessage struct {
	Email string `json:"email"`
}

func (m ForgotPasswordMessage) Type() string { return "account.forgot_password" }

// Validate will run validation rules
func (m ForgotPasswordMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, is.Email),
	)
}

// ResetPasswordMessage sets a new password for a user
type ResetPasswordMessage struct {
	NewPassword string `json:"new_password"`
}

func (m ResetPasswordMessage) Type() string { return "account.reset_password" }

// Validate will run validation rules
func (m ResetPasswordMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

// FinalizePasswordResetMessage consumes a reset token and sets the password
type FinalizePasswordResetMessage struct {
	Session  string `json:"session"`
	Password string `json:"password"`
}

func (m FinalizePasswordResetMessage) Type() string { return "account.finalize_password_reset" }

// Validate will run validation rules
func (m FinalizePasswordResetMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Session, validation.Required, is.UUID),
		validation.Field(&m.Password, validation.Required, validation.Length(8, 100)),
	)
}

// ValidatePhoneNumber builds a rule that parses and validates a phone
// number for the given region.
func ValidatePhoneNumber(region string) validation.RuleFunc {
	return func(value interface{}) error {
		raw, ok := value.(string)
		if !ok || raw == "" {
			return nil
		}

		number, err := phonenumbers.Parse(raw, region)
		if err != nil {
			return err
		}

		if !phonenumbers.IsValidNumber(number) {
			return fmt.Errorf("invalid phone number: %s", raw)
		}

		return nil
	}
}

func validateOptionalPhone(value interface{}) error {
	raw, ok := value.(*string)
	if !ok || raw == nil {
		return nil
	}
	return ValidatePhoneNumber(DefaultPhoneRegion)(*raw)
}
