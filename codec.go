package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// minSigningKeyBytes is the recommended key entropy for HS256 (256 bits).
const minSigningKeyBytes = 32

// TokenCodec issues and validates bearer tokens. The signing key, issuer,
// audience, and expiration are captured once at construction and never
// mutated, so a single codec is safe to share across request goroutines.
type TokenCodec struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
}

// NewTokenCodec creates a codec from the given config
func NewTokenCodec(cfg Config) *TokenCodec {
	codec := &TokenCodec{
		signingKey:      []byte(cfg.GetSigningKey()),
		tokenExpiration: cfg.GetTokenExpiration(),
		issuer:          cfg.GetIssuer(),
		audience:        cfg.GetAudience(),
		logger:          defLogger{},
	}

	if len(codec.signingKey) > 0 && len(codec.signingKey) < minSigningKeyBytes {
		codec.logger.Warn("signing key is below the recommended %d bytes", minSigningKeyBytes)
	}

	return codec
}

func (c *TokenCodec) WithLogger(logger Logger) *TokenCodec {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Issue creates a signed token for the given username and role. Every call
// produces a distinct token: the jti is freshly generated and the issued-at
// timestamp moves.
func (c *TokenCodec) Issue(username, role string) (string, error) {
	now := time.Now()
	claims := &IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   username,
			Audience:  c.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(c.tokenExpiration) * time.Hour)),
		},
		Name:     username,
		UserRole: role,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return c.SignClaims(claims)
}

// SignClaims signs an arbitrary claim set using the configured signing key.
func (c *TokenCodec) SignClaims(claims *IdentityClaims) (string, error) {
	if len(c.signingKey) == 0 {
		return "", ErrSigningKeyMissing
	}

	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signedString, nil
}

// Validate parses and fully verifies a token string: signature, expiration,
// and, when configured, issuer and audience.
func (c *TokenCodec) Validate(tokenString string) (*IdentityClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if c.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(c.issuer))
	}
	if len(c.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(c.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			c.logger.Error("token validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*IdentityClaims); ok && token.Valid {
		return claims, nil
	}

	c.logger.Error("token validate could not decode claims")
	return nil, ErrTokenMalformed
}

// DecodeUnverified parses the token carried by an Authorization header value
// WITHOUT verifying its signature. The value may be a bare token or
// "<scheme> <token>"; the last whitespace-delimited segment is used and the
// scheme word itself is not validated. Only call this behind middleware that
// has already validated the token.
func DecodeUnverified(headerValue string) (*IdentityClaims, bool) {
	segments := strings.Fields(headerValue)
	if len(segments) == 0 {
		return nil, false
	}

	claims := &IdentityClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(segments[len(segments)-1], claims); err != nil {
		return nil, false
	}

	return claims, true
}

// ExtractUsername reads the name claim from an Authorization header value.
// Malformed input yields ("", false), never an error.
func ExtractUsername(headerValue string) (string, bool) {
	claims, ok := DecodeUnverified(headerValue)
	if !ok || claims.Name == "" {
		return "", false
	}
	return claims.Name, true
}

// ExtractRole reads the role claim from an Authorization header value.
func ExtractRole(headerValue string) (string, bool) {
	claims, ok := DecodeUnverified(headerValue)
	if !ok || claims.UserRole == "" {
		return "", false
	}
	return claims.UserRole, true
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.New().String()
	}
}
