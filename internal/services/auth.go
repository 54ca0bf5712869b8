package services

import (
	"context"
	"fmt"

	"booksummarizer/internal/models"
)

// AuthService composes the credential store and session manager into the
// register/login/logout flows exposed over HTTP.
type AuthService struct {
	credentials      *CredentialStore
	sessions         *SessionManager
	allowAdminSignup bool
}

func NewAuthService(credentials *CredentialStore, sessions *SessionManager, allowAdminSignup bool) *AuthService {
	return &AuthService{
		credentials:      credentials,
		sessions:         sessions,
		allowAdminSignup: allowAdminSignup,
	}
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if req.IsAdmin && !s.allowAdminSignup {
		return nil, &ForbiddenError{Message: "Administrator accounts cannot be self-registered"}
	}

	user, err := s.credentials.CreateUser(ctx, req.Username, req.Email, req.Password, req.IsAdmin)
	if err != nil {
		return nil, err
	}

	return s.signIn(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.credentials.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	return s.signIn(ctx, user)
}

// Logout revokes token. It succeeds for unknown or already revoked tokens.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

func (s *AuthService) signIn(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	user.PasswordHash = ""
	return &models.AuthResponse{Token: token, User: user}, nil
}
