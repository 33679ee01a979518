package ports

import (
	"context"

	"github.com/bcr/rental-system/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, claims *domain.Claims) (*domain.User, error)
}

// PasswordHasher is a one-way, salted password digest.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenDecoder turns a session token back into the identity it was issued for.
type TokenDecoder interface {
	Decode(token string) (*domain.Claims, error)
}

// TokenCodec issues and verifies session tokens.
type TokenCodec interface {
	TokenDecoder
	Encode(user *domain.User, role *domain.Role) (string, error)
}
