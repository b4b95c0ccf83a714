package account

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/Domenick1991/domora/internal/auth"
	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/repository"
)

var logger = loggo.GetLogger("domora.account")

type AccountUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type Tokens interface {
	Issue(userID string) (string, error)
	Parse(token string) (string, error)
}

type RegisterInput struct {
	Email    string      `json:"email" binding:"required,email"`
	FullName string      `json:"full_name" binding:"required"`
	Role     domain.Role `json:"role" binding:"omitempty,role"`
	Password string      `json:"password" binding:"required,min=6"`
	Phone    *string     `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

type AccountService struct {
	users            repository.UserRepository
	tokens           Tokens
	clock            clock.Clock
	allowAdminSignup bool
}

type AccountServiceOption func(*AccountService)

func WithClock(clk clock.Clock) AccountServiceOption {
	return func(s *AccountService) {
		s.clock = clk
	}
}

// WithAdminSignup allows self-registration with the admin role.
func WithAdminSignup(allow bool) AccountServiceOption {
	return func(s *AccountService) {
		s.allowAdminSignup = allow
	}
}

func NewAccountService(users repository.UserRepository, tokens Tokens, opts ...AccountServiceOption) *AccountService {
	s := &AccountService{users: users, tokens: tokens, clock: clock.WallClock}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		return nil, errors.NotValidf("role %q", role)
	}
	if role == domain.RoleAdmin && !s.allowAdminSignup {
		return nil, errors.Forbiddenf("admin accounts cannot self-register")
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, errors.AlreadyExistsf("email %q", email)
	case !errors.Is(err, errors.NotFound):
		return nil, errors.Trace(err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, errors.Trace(err)
	}
	now := s.clock.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
		Phone:        input.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errors.Trace(err)
	}
	logger.Infof("registered %s user %s", user.Role, user.ID)
	return s.result(user)
}

func (s *AccountService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(input.Email))
	if errors.Is(err, errors.NotFound) {
		return nil, errors.Unauthorizedf("invalid email or password")
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, errors.Unauthorizedf("invalid email or password")
	}
	if !user.IsActive {
		return nil, errors.Unauthorizedf("account is deactivated")
	}
	return s.result(user)
}

// Authenticate resolves a bearer token to an active user.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, errors.NotFound) {
		return nil, errors.Unauthorizedf("invalid authentication credentials")
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !user.IsActive {
		return nil, errors.Unauthorizedf("account is deactivated")
	}
	return user, nil
}

func (s *AccountService) result(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &AuthResult{AccessToken: token, TokenType: "bearer", User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ AccountUseCase = (*AccountService)(nil)
