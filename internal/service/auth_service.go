package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gameforum/internal/domain"
	"gameforum/internal/security"
	"gameforum/internal/store"
)

// AuthService handles registration, login, and logout against the users
// collection.
type AuthService struct {
	users  *store.UserStore
	tokens *security.TokenService
	hash   *security.PasswordHasher
}

func NewAuthService(users *store.UserStore, tokens *security.TokenService, hash *security.PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hash:   hash,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Gender   string
	Avatar   *string
	About    string
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		Gender:       in.Gender,
		Avatar:       in.Avatar,
		About:        in.About,
	}
	user.Normalize()

	// Uniqueness of email and username is checked inside the same
	// collection rewrite that appends the record.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}
	if user.Status == domain.StatusSuspended {
		return nil, fmt.Errorf("%w: account suspended", domain.ErrUnauthorized)
	}
	if err := s.hash.Verify(in.Password, user.PasswordHash); err != nil {
		return nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}

	token, err := s.tokens.CreateForUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	// The session document lets the app restore the signed-in user without
	// a fresh login; mutators refresh it as the record changes.
	if err := s.users.SetCurrentUser(ctx, user); err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.users.SetCurrentUser(ctx, nil)
}
