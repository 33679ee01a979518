package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bcr/rental-system/internal/core/domain"
	"github.com/bcr/rental-system/internal/core/ports"
	"github.com/bcr/rental-system/internal/infrastructure/auth"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	findErr error // if set, every lookup returns this error
	seq     int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

// Create mirrors the unique email index of the real store.
func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateKey
		}
	}
	r.seq++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.seq)
	r.byID[created.ID] = cloneUser(created)
	return created, nil
}

type stubRoleRepo struct {
	roles []*domain.Role
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: []*domain.Role{
		{ID: "1", Name: domain.RoleCustomer},
		{ID: "2", Name: domain.RoleAdmin},
	}}
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.ID == id {
			clone := *role
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			clone := *role
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

// plainHasher is reversible so assertions can inspect what was stored.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }

func (plainHasher) Verify(plaintext, digest string) bool { return digest == "hashed:"+plaintext }

// stubCodec renders "<user id>|<role name>" so tests can read tokens back.
type stubCodec struct{}

func (stubCodec) Encode(user *domain.User, role *domain.Role) (string, error) {
	if role == nil {
		role = user.Role
	}
	return user.ID + "|" + role.Name, nil
}

func (stubCodec) Decode(token string) (*domain.Claims, error) {
	id, role, ok := strings.Cut(token, "|")
	if !ok {
		return nil, domain.MalformedToken("no separator")
	}
	return &domain.Claims{ID: id, Role: domain.Role{Name: role}}, nil
}

func newAuthSvc(users *stubUserRepo, roles *stubRoleRepo) *AuthService {
	return NewAuthService(users, roles, plainHasher{}, stubCodec{}, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	users := newStubUserRepo()
	svc := newAuthSvc(users, newStubRoleRepo())

	token, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "bochi",
		Email:    "Bochi@Mail.com ",
		Password: "12345",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if token != "user-1|"+domain.RoleCustomer {
		t.Fatalf("unexpected token %q", token)
	}

	stored, err := users.FindByEmail(context.Background(), "bochi@mail.com")
	if err != nil {
		t.Fatalf("expected user stored under normalised email: %v", err)
	}
	if stored.PasswordHash == "12345" {
		t.Fatal("expected password to be hashed")
	}
	if stored.RoleID != "1" {
		t.Errorf("expected CUSTOMER role id, got %q", stored.RoleID)
	}
}

func TestAuthService_Register_LongPassword(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), newStubRoleRepo(), auth.NewBcryptHasher(), stubCodec{}, zerolog.Nop())
	password := strings.Repeat("x", 73)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "bochi",
		Email:    "bochi@mail.com",
		Password: password,
	}); err != nil {
		t.Fatalf("Register returned error for a 73-byte password: %v", err)
	}

	if _, err := svc.Login(context.Background(), "bochi@mail.com", password); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	_, err := svc.Login(context.Background(), "bochi@mail.com", password[:72])
	if !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword for a truncated password, got %v", err)
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), newStubRoleRepo())
	in := ports.RegisterInput{Name: "bochi", Email: "bochi@mail.com", Password: "12345"}

	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrEmailAlreadyTaken) {
		t.Fatalf("expected ErrEmailAlreadyTaken, got %v", err)
	}

	var de *domain.Error
	if !errors.As(err, &de) || de.Name != "EmailAlreadyTakenError" {
		t.Errorf("expected EmailAlreadyTakenError, got %#v", err)
	}
}

func TestAuthService_Register_ConcurrentSameEmail(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), newStubRoleRepo())
	in := ports.RegisterInput{Name: "bochi", Email: "bochi@mail.com", Password: "12345"}

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), in)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, domain.ErrEmailAlreadyTaken):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one registration to succeed, got %d", ok)
	}
}

func TestAuthService_Register_MissingDefaultRole(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), &stubRoleRepo{})

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "a", Email: "a@mail.com", Password: "x"})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestAuthService_Register_RepoErrorPropagates(t *testing.T) {
	repoErr := errors.New("connection reset")
	users := newStubUserRepo()
	users.findErr = repoErr
	svc := newAuthSvc(users, newStubRoleRepo())

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "a", Email: "a@mail.com", Password: "x"})
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error to propagate, got %v", err)
	}
	var de *domain.Error
	if errors.As(err, &de) {
		t.Errorf("repository failure must not be reported as a domain error, got %s", de.Name)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func registered(t *testing.T) (*AuthService, *stubUserRepo) {
	t.Helper()
	users := newStubUserRepo()
	svc := newAuthSvc(users, newStubRoleRepo())
	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "bochi", Email: "bochi@mail.com", Password: "12345",
	}); err != nil {
		t.Fatalf("seed Register: %v", err)
	}
	return svc, users
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _ := registered(t)

	token, err := svc.Login(context.Background(), "BOCHI@mail.com", "12345")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token != "user-1|"+domain.RoleCustomer {
		t.Errorf("unexpected token %q", token)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := registered(t)

	_, err := svc.Login(context.Background(), "bochi@mail.com", "54321")
	if !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if errors.Is(err, domain.ErrEmailNotRegistered) {
		t.Error("wrong password must not be reported as an unknown email")
	}
}

func TestAuthService_Login_EmailNotRegistered(t *testing.T) {
	svc, _ := registered(t)

	_, err := svc.Login(context.Background(), "nobody@mail.com", "12345")
	if !errors.Is(err, domain.ErrEmailNotRegistered) {
		t.Fatalf("expected ErrEmailNotRegistered, got %v", err)
	}
}

func TestAuthService_Login_AdminKeepsRole(t *testing.T) {
	svc, users := registered(t)
	users.byID["user-1"].RoleID = "2"

	token, err := svc.Login(context.Background(), "bochi@mail.com", "12345")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token != "user-1|"+domain.RoleAdmin {
		t.Errorf("unexpected token %q", token)
	}
}

// ---------------------------------------------------------------------------
// GetProfile
// ---------------------------------------------------------------------------

func TestAuthService_GetProfile(t *testing.T) {
	svc, _ := registered(t)

	user, err := svc.GetProfile(context.Background(), &domain.Claims{ID: "user-1", Name: "bochi"})
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if user.Email != "bochi@mail.com" {
		t.Errorf("unexpected email %q", user.Email)
	}
	if user.Role == nil || user.Role.Name != domain.RoleCustomer {
		t.Errorf("expected CUSTOMER role attached, got %+v", user.Role)
	}
}

func TestAuthService_GetProfile_UserGone(t *testing.T) {
	svc, _ := registered(t)

	_, err := svc.GetProfile(context.Background(), &domain.Claims{ID: "user-9", Name: "ghost"})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestAuthService_GetProfile_RoleGone(t *testing.T) {
	svc, users := registered(t)
	users.byID["user-1"].RoleID = "42"

	_, err := svc.GetProfile(context.Background(), &domain.Claims{ID: "user-1", Name: "bochi"})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
