package app

import (
	"context"
	"errors"
	"strings"

	"github.com/stagedoor/api/internal/clock"
	"github.com/stagedoor/api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, userID string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, userID string) error
}

// PasswordHasher abstracts credential hashing so services stay free of
// crypto details.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenIssuer mints the opaque capability token handed back on login.
type TokenIssuer interface {
	Issue(user domain.User) (string, error)
}

const minPasswordLength = 8

// UserService is the identity collaborator: it issues identities the core
// trusts, but plays no part in capacity accounting.
type UserService struct {
	repo   UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	clock  clock.Clock
}

func NewUserService(repo UserRepository, hasher PasswordHasher, tokens TokenIssuer, clk clock.Clock) *UserService {
	return &UserService{repo: repo, hasher: hasher, tokens: tokens, clock: clk}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role // empty means RoleUser
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.User{}, domain.ErrNameRequired
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrEmailRequired
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, domain.ErrPasswordTooShort
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return domain.User{}, domain.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           newID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns a signed token plus the user.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.User{}, domain.ErrBadCredentials
		}
		return "", domain.User{}, err
	}
	if !s.hasher.Compare(user.PasswordHash, in.Password) {
		return "", domain.User{}, domain.ErrBadCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", domain.User{}, err
	}
	user.PasswordHash = ""
	return token, user, nil
}

func (s *UserService) Profile(ctx context.Context, caller domain.Identity, userID string) (domain.User, error) {
	if caller.UserID != userID && !caller.IsAdmin() {
		return domain.User{}, domain.ErrForbidden
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, caller domain.Identity) ([]domain.User, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *UserService) DeleteUser(ctx context.Context, caller domain.Identity, userID string) error {
	if caller.UserID != userID && !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, userID)
}
