package ports

import (
	"context"

	"github.com/bcr/rental-system/internal/core/domain"
)

// UserRepository defines persistence for registered identities.
// Lookups return domain.ErrNotFound when no identity matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create persists user and returns it with its ID set. A second identity
	// with the same email yields domain.ErrDuplicateKey.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// RoleRepository reads the fixed role table.
type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
}
