package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// HTTPController exposes the identity operations as a JSON API
type HTTPController struct {
	Debug        bool
	Logger       Logger
	Accounts     *AccountService
	Customers    *CustomerService
	ErrorHandler func(router.Context, error) error
}

type HTTPControllerOption func(*HTTPController) *HTTPController

// WithControllerLogger sets the controller logger
func WithControllerLogger(l Logger) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

// WithControllerDebug toggles request/response debug printing
func WithControllerDebug(debug bool) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Debug = debug
		return c
	}
}

// NewHTTPController wires the JSON controller with its services
func NewHTTPController(accounts *AccountService, customers *CustomerService, opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Logger:    defLogger{},
		Accounts:  accounts,
		Customers: customers,
	}
	c.ErrorHandler = c.defaultErrHandler

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// RegisterIdentityRoutes mounts every identity route on the given router.
// The protected middleware must validate tokens (see middleware/guard); the
// staffOnly middleware enforces the employee-or-above role floor.
func RegisterIdentityRoutes[T any](app router.Router[T], controller *HTTPController, protected, staffOnly router.MiddlewareFunc) {
	app.Post("/auth/sign-up", controller.SignUp).SetName("auth.sign-up")
	app.Post("/auth/login", controller.Login).SetName("auth.login")
	app.Post("/auth/password/forgot", controller.ForgotPassword).SetName("auth.pwd-forgot")
	app.Post("/auth/password/reset", controller.FinalizePasswordReset).SetName("auth.pwd-reset")

	app.Get("/auth/me", controller.CurrentUser, protected).SetName("auth.me.get")
	app.Put("/auth/me", controller.UpdateProfile, protected).SetName("auth.me.put")

	app.Post("/auth/sign-up/admin", controller.SignUpAdmin, protected, staffOnly).SetName("auth.sign-up.admin")
	app.Post("/auth/sign-up/employee", controller.SignUpEmployee, protected, staffOnly).SetName("auth.sign-up.employee")

	app.Get("/users", controller.GetAllUsers, protected, staffOnly).SetName("users.list")
	app.Get("/users/:id", controller.GetUser, protected, staffOnly).SetName("users.get")
	app.Put("/users/:id/role", controller.AssignRole, protected, staffOnly).SetName("users.role")
	app.Post("/users/:id/deactivate", controller.DeactivateUser, protected, staffOnly).SetName("users.deactivate")
	app.Post("/users/:id/password", controller.ResetUserPassword, protected, staffOnly).SetName("users.password")

	app.Get("/customers", controller.GetAllCustomers, protected, staffOnly).SetName("customers.list")
	app.Get("/customers/:username", controller.GetCustomerDetail, protected).SetName("customers.get")
	app.Put("/customers/:username", controller.UpdateCustomer, protected).SetName("customers.put")
}

// SignUp registers a new customer account
func (c *HTTPController) SignUp(ctx router.Context) error {
	msg := SignUpCustomerMessage{}
	if err := ctx.Bind(&msg); err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse sign up payload"))
	}

	if c.Debug {
		fmt.Println(print.MaybePrettyJSON(msg))
	}

	user, err := c.Accounts.SignUpCustomer(ctx.Context(), msg)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, user)
}

// SignUpAdmin registers an administrator account
func (c *HTTPController) SignUpAdmin(ctx router.Context) error {
	return c.signUpStaff(ctx, c.Accounts.SignUpAdmin)
}

// SignUpEmployee registers an employee account
func (c *HTTPController) SignUpEmployee(ctx router.Context) error {
	return c.signUpStaff(ctx, c.Accounts.SignUpEmployee)
}

func (c *HTTPController) signUpStaff(ctx router.Context, register func(context.Context, SignUpAdminMessage) (*User, error)) error {
	msg := SignUpAdminMessage{}
	if err := ctx.Bind(&msg); err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse sign up payload"))
	}

	user, err := register(ctx.Context(), msg)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, user)
}

// Login verifies credentials and returns a bearer token
func (c *HTTPController) Login(ctx router.Context) error {
	msg := LoginMessage{}
	if err := ctx.Bind(&msg); err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse login payload"))
	}

	token, err := c.Accounts.Login(ctx.Context(), msg)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"token": token,
	})
}

// CurrentUser resolves the authenticated principal from the request token
func (c *HTTPController) CurrentUser(ctx router.Context) error {
	header := ctx.GetString(router.HeaderAuthorization, "")

	user, err := c.Accounts.UserFromToken(ctx.Context(), header)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, user)
}

// UpdateProfile patches the authenticated principal
func (c *HTTPController) UpdateProfile(ctx router.Context) error {
	claims, ok := GetClaims(ctx.Context())
	if !ok {
		return c.ErrorHandler(ctx, ErrTokenMalformed)
	}

	msg := UpdateUserMessage{}
	if err := ctx.Bind(&msg); err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse profile payload"))
	}

	user, err := c.Accounts.UpdateProfile(ctx.Context(), claims.Username(), msg)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, user)
}

// GetAllUsers lists every principal
func (c *HTTPController) GetAllUsers(ctx router.Context) error {
	records, err := c.Accounts.GetUsers(ctx.Context())
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, records)
}

// GetUser returns a single principal by id, email, or username
func (c *HTTPController) GetUser(ctx router.Context) error {
	record, err := c.Accounts.GetUser(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, record)
}

// AssignRole moves a principal to a new role
func (c *HTTPController) AssignRole(ctx router.Context) error {
	payload := struct {
		Role string `json:"role"`
	}{}
	if err := ctx.Bind(&payload); err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse role payload"))
	}

	role, ok := ParseRole(payload.Role)
	if !ok {
		return c.ErrorHandler(ctx, errors.New("unknown role", errors.CategoryValidation).
			WithTextCode("INVALID_ROLE"))
	}

	user, err := c.Accounts.AssignRole(ctx.Context(), ctx.Param("id"), role)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, user)
}

// DeactivateUser locks the account out
func (c *HTTPController) DeactivateUser(ctx router.Context) error {
	user, err := c.Accounts.Deactivate(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, user)
}

// ResetUserPassword sets a new password for the given principal
func (c *HTTPController) ResetUserPassword(ctx router.Context) error {
	msg := ResetPasswordMessage{}
	if err := ctx.Bind(&msg); err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse password payload"))
	}

	if err := c.Accounts.ResetPassword(ctx.Context(), ctx.Param("id"), msg); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.Status(http.StatusNoContent).SendString("")
}

// ForgotPassword records a reset request. The response is intentionally the
// same whether or not the email is registered.
func (c *HTTPController) ForgotPassword(ctx router.Context) error {
	msg := ForgotPasswordMessage{}
	if err := ctx.Bind(&msg); err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse payload"))
	}

	if err := c.Accounts.ForgetPassword(ctx.Context(), msg); err != nil {
		c.Logger.Info("forgot password request failed", "error", err)
	}

	return ctx.JSON(http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

// FinalizePasswordReset consumes a reset token and applies the new password
func (c *HTTPController) FinalizePasswordReset(ctx router.Context) error {
	msg := FinalizePasswordResetMessage{}
	if err := ctx.Bind(&msg); err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse payload"))
	}

	if err := c.Accounts.FinalizePasswordReset(ctx.Context(), msg); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.Status(http.StatusNoContent).SendString("")
}

// GetAllCustomers lists every customer profile
func (c *HTTPController) GetAllCustomers(ctx router.Context) error {
	records, err := c.Customers.GetAll(ctx.Context())
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, records)
}

// GetCustomerDetail returns the flattened profile projection. Customers can
// only read their own profile; staff can read anyone's.
func (c *HTTPController) GetCustomerDetail(ctx router.Context) error {
	username := ctx.Param("username")
	if err := c.authorizeProfileAccess(ctx, username); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	detail, err := c.Customers.GetDetail(ctx.Context(), username)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	if c.Debug {
		fmt.Println(print.MaybePrettyJSON(detail))
	}

	return ctx.JSON(router.StatusOK, detail)
}

// UpdateCustomer patches a customer profile and its principal
func (c *HTTPController) UpdateCustomer(ctx router.Context) error {
	username := ctx.Param("username")
	if err := c.authorizeProfileAccess(ctx, username); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	msg := UpdateCustomerMessage{}
	if err := ctx.Bind(&msg); err != nil {
		return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "could not parse customer payload"))
	}

	record, err := c.Customers.UpdateCustomer(ctx.Context(), username, msg)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, record)
}

// authorizeProfileAccess allows the owner or any staff principal
func (c *HTTPController) authorizeProfileAccess(ctx router.Context, username string) error {
	claims, ok := GetClaims(ctx.Context())
	if !ok {
		return ErrTokenMalformed
	}

	if claims.Username() == username {
		return nil
	}

	if role, ok := ParseRole(claims.Role()); ok && role.IsAtLeast(RoleEmployee) {
		return nil
	}

	return errors.New("cannot access another user's profile", errors.CategoryAuthz).
		WithCode(errors.CodeForbidden).
		WithTextCode("PROFILE_FORBIDDEN")
}

func (c *HTTPController) defaultErrHandler(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = mapSentinelError(err)
	}

	c.Logger.Info(
		"request error",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return ctx.JSON(statusForCategory(richErr), map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

func mapSentinelError(err error) *errors.Error {
	switch {
	case errors.Is(err, ErrMismatchedHashAndPassword),
		errors.Is(err, ErrTooManyLoginAttempts),
		errors.Is(err, ErrUserDeactivated),
		errors.Is(err, ErrIdentityNotFound):
		return errors.Wrap(err, errors.CategoryAuth, "authentication failed").
			WithCode(errors.CodeUnauthorized)
	default:
		return errors.Wrap(err, errors.CategoryInternal, "an unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}
}

func statusForCategory(richErr *errors.Error) int {
	switch richErr.Category {
	case errors.CategoryAuth:
		return router.StatusUnauthorized
	case errors.CategoryAuthz:
		return router.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryValidation:
		return http.StatusUnprocessableEntity
	case errors.CategoryBadInput:
		return router.StatusBadRequest
	default:
		if richErr.Code > 0 {
			return richErr.Code
		}
		return router.StatusInternalServerError
	}
}
