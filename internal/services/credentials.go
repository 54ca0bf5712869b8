package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"booksummarizer/internal/database"
	"booksummarizer/internal/models"
)

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListNonAdmin(ctx context.Context) ([]*models.UserWithCount, error)
}

// CredentialStore owns user identities and their password hashes.
type CredentialStore struct {
	users     userRepository
	cost      int
	dummyHash []byte
}

func NewCredentialStore(users userRepository, bcryptCost int) (*CredentialStore, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	// Compared against when the username is unknown so both failure paths
	// spend one bcrypt verification.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare credential store: %w", err)
	}

	return &CredentialStore{users: users, cost: bcryptCost, dummyHash: dummy}, nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateRegistration(username, email, password string) error {
	fieldErrors := make(map[string]string)

	if strings.TrimSpace(username) == "" {
		fieldErrors["username"] = "Username is required"
	} else if len(username) > 64 {
		fieldErrors["username"] = "Username must be at most 64 characters"
	}
	if !emailRegex.MatchString(email) {
		fieldErrors["email"] = "Invalid email format"
	}
	if password == "" {
		fieldErrors["password"] = "Password is required"
	} else if len(password) > 72 {
		fieldErrors["password"] = "Password must be at most 72 bytes"
	}

	if len(fieldErrors) > 0 {
		return &ValidationError{Message: "Validation failed", Fields: fieldErrors}
	}
	return nil
}

// CreateUser registers a new identity. A username or email collision yields
// a *DuplicateError.
func (c *CredentialStore) CreateUser(ctx context.Context, username, email, password string, isAdmin bool) (*models.User, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}

	if err := c.users.Create(ctx, user); err != nil {
		if constraint, ok := database.UniqueViolation(err); ok {
			return nil, duplicateFor(constraint)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func duplicateFor(constraint string) *DuplicateError {
	switch constraint {
	case "users_email_key":
		return &DuplicateError{Field: "email", Message: "Email already registered"}
	default:
		return &DuplicateError{Field: "username", Message: "Username already taken"}
	}
}

// Authenticate checks a username/password pair and returns the public user
// record on success, ErrInvalidCredentials otherwise.
func (c *CredentialStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := c.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

func (c *CredentialStore) ListNonAdminUsers(ctx context.Context) ([]*models.UserWithCount, error) {
	users, err := c.users.ListNonAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser loads a user by id, mapping a missing row to *NotFoundError.
func (c *CredentialStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := c.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// EnsureAdmin creates the administrator account if it does not exist yet.
// It reports whether a new account was created.
func (c *CredentialStore) EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	existing, err := c.users.GetByUsername(ctx, username)
	if err == nil {
		if !existing.IsAdmin {
			return nil, false, &ConflictingAccountError{Username: username}
		}
		existing.PasswordHash = ""
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up admin: %w", err)
	}

	user, err := c.CreateUser(ctx, username, email, password, true)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// ConflictingAccountError is returned by EnsureAdmin when the requested admin
// username already belongs to a regular user.
type ConflictingAccountError struct{ Username string }

func (e *ConflictingAccountError) Error() string {
	return fmt.Sprintf("user %q exists and is not an administrator", e.Username)
}
