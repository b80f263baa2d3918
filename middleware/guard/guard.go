// Package guard provides route middleware that verifies bearer tokens and
// enforces role requirements before handlers run.
package guard

import (
	"strings"

	"github.com/goliatone/go-router"

	identity "github.com/goliatone/go-identity"
)

// TokenValidator verifies a raw token string and returns its claims
type TokenValidator interface {
	Validate(tokenString string) (*identity.IdentityClaims, error)
}

// Config configures the auth guard
type Config struct {
	// Validator is required; usually the identity.TokenCodec
	Validator TokenValidator

	// AuthScheme is the expected Authorization scheme prefix (default "Bearer")
	AuthScheme string

	// ContextKey is the locals key claims are stored under (default "user")
	ContextKey string

	// Filter skips the guard for matching requests
	Filter func(router.Context) bool

	// ErrorHandler handles validation failures
	ErrorHandler func(router.Context, error) error
}

// New builds the token verification middleware. On success the claims are
// stored in the router locals under ContextKey and in the request context,
// so handlers can use identity.GetClaims.
func New(config Config) router.MiddlewareFunc {
	cfg := withDefaults(config)

	if cfg.Validator == nil {
		panic("guard: middleware configuration requires a TokenValidator")
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := tokenFromHeader(ctx, cfg.AuthScheme)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.Validator.Validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)
			ctx.SetContext(identity.WithClaimsContext(ctx.Context(), claims))

			return ctx.Next()
		}
	}
}

// RequireRole builds middleware that rejects principals whose role is below
// the given minimum. It must run after New so the claims are in the locals.
func RequireRole(minimum identity.UserRole, config ...Config) router.MiddlewareFunc {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}
	cfg = withDefaults(cfg)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims := ClaimsFromLocals(ctx, cfg.ContextKey)
			if claims == nil {
				return cfg.ErrorHandler(ctx, identity.ErrTokenMalformed)
			}

			role, ok := identity.ParseRole(claims.Role())
			if !ok || !role.IsAtLeast(minimum) {
				return ctx.JSON(router.StatusForbidden, map[string]string{
					"error": "insufficient role",
				})
			}

			return ctx.Next()
		}
	}
}

// ClaimsFromLocals reads previously stored claims from the router locals
func ClaimsFromLocals(ctx router.Context, contextKey string) *identity.IdentityClaims {
	claims, _ := ctx.Locals(contextKey).(*identity.IdentityClaims)
	return claims
}

func withDefaults(cfg Config) Config {
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx router.Context, err error) error {
			if identity.IsTokenExpiredError(err) {
				return ctx.Status(router.StatusUnauthorized).SendString("token expired")
			}
			return ctx.Status(router.StatusUnauthorized).SendString("invalid authentication token")
		}
	}

	return cfg
}

func tokenFromHeader(ctx router.Context, authScheme string) (string, error) {
	header := ctx.GetString(router.HeaderAuthorization, "")
	if header == "" {
		return "", identity.ErrTokenMalformed
	}

	if authScheme != "" {
		prefix := authScheme + " "
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):]), nil
		}
		return "", identity.ErrTokenMalformed
	}

	return header, nil
}
