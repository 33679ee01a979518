package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bcr/rental-system/internal/core/domain"
)

// tokenClaims is the wire shape of a session token.
type tokenClaims struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Image string      `json:"image,omitempty"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTCodec implements ports.TokenCodec with HS256-signed JWTs.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration // 0 = tokens carry no exp claim
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption customises a JWTCodec.
type CodecOption func(*JWTCodec)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) CodecOption {
	return func(c *JWTCodec) { c.now = now }
}

// NewJWTCodec builds a codec around an immutable signing secret. An empty
// secret is rejected.
func NewJWTCodec(secret string, ttl time.Duration, opts ...CodecOption) (*JWTCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt signing secret must be provided")
	}
	c := &JWTCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// Encode signs the identity of user under role. When role is nil the role
// attached to user is used.
func (c *JWTCodec) Encode(user *domain.User, role *domain.Role) (string, error) {
	if role == nil {
		role = user.Role
	}
	if role == nil {
		return "", errors.New("jwt: identity has no role")
	}

	issuedAt := c.now().UTC()
	claims := tokenClaims{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
		Role:  domain.Role{ID: role.ID, Name: role.Name},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(c.ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies token and returns its claims. Failures are *domain.Error
// values of kind ErrTokenMissing, ErrMalformedToken, ErrInvalidSignature or
// ErrTokenExpired.
func (c *JWTCodec) Decode(token string) (*domain.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.TokenMissing()
	}

	var claims tokenClaims
	_, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if claims.IssuedAt == nil {
		return nil, domain.MalformedToken("missing iat")
	}

	return &domain.Claims{
		ID:       claims.ID,
		Name:     claims.Name,
		Email:    claims.Email,
		Image:    claims.Image,
		Role:     claims.Role,
		IssuedAt: claims.IssuedAt.Time,
	}, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.TokenExpired()
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.InvalidSignature()
	default:
		return domain.MalformedToken(err.Error())
	}
}
