package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bcr/rental-system/internal/core/domain"
	"github.com/bcr/rental-system/internal/core/ports"
	"github.com/bcr/rental-system/internal/pkg/metrics"
)

// AuthService implements registration, login and profile lookup.
type AuthService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	hasher ports.PasswordHasher
	tokens ports.TokenCodec
	log    zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenCodec,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{users: users, roles: roles, hasher: hasher, tokens: tokens, log: log}
}

// Register creates a CUSTOMER identity and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		metrics.AuthRegistrationsTotal.WithLabelValues("email_taken").Inc()
		return "", domain.EmailAlreadyTaken(email)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return "", fmt.Errorf("register: find user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", fmt.Errorf("register: hash password: %w", err)
	}

	role, err := s.roles.FindByName(ctx, domain.DefaultRole)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.RecordNotFound(domain.DefaultRole)
		}
		return "", fmt.Errorf("register: find role: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, domain.ErrDuplicateKey) {
			metrics.AuthRegistrationsTotal.WithLabelValues("email_taken").Inc()
			return "", domain.EmailAlreadyTaken(email)
		}
		return "", fmt.Errorf("register: create user: %w", err)
	}

	token, err := s.tokens.Encode(created, role)
	if err != nil {
		return "", fmt.Errorf("register: issue token: %w", err)
	}

	metrics.AuthRegistrationsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", created.ID).Str("email", email).Msg("user registered")

	return token, nil
}

// Login verifies the credentials of a registered identity and returns a
// session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.AuthLoginsTotal.WithLabelValues("email_not_registered").Inc()
			return "", domain.EmailNotRegistered(email)
		}
		return "", fmt.Errorf("login: find user: %w", err)
	}

	role, err := s.roleOf(ctx, user)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.AuthLoginsTotal.WithLabelValues("wrong_password").Inc()
		s.log.Warn().Str("user_id", user.ID).Msg("login rejected: wrong password")
		return "", domain.WrongPassword()
	}

	token, err := s.tokens.Encode(user, role)
	if err != nil {
		return "", fmt.Errorf("login: issue token: %w", err)
	}

	metrics.AuthLoginsTotal.WithLabelValues("success").Inc()
	return token, nil
}

// GetProfile resolves the identity behind an already authorized request.
func (s *AuthService) GetProfile(ctx context.Context, claims *domain.Claims) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.RecordNotFound(claims.Name)
		}
		return nil, fmt.Errorf("get profile: find user: %w", err)
	}

	role, err := s.roles.FindByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.RecordNotFound(claims.Name)
		}
		return nil, fmt.Errorf("get profile: find role: %w", err)
	}

	user.Role = role
	return user, nil
}

// roleOf returns the role attached to user, loading it when the repository
// did not.
func (s *AuthService) roleOf(ctx context.Context, user *domain.User) (*domain.Role, error) {
	if user.Role != nil {
		return user.Role, nil
	}
	role, err := s.roles.FindByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.RecordNotFound(user.Name)
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	user.Role = role
	return role, nil
}
