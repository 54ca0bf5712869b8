package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mr-tron/base58"

	"booksummarizer/internal/models"
)

const sessionTokenBytes = 32

type sessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, *models.User, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionManager issues and resolves opaque bearer tokens. The plaintext
// token is handed to the client once; only its SHA-256 digest is stored.
type SessionManager struct {
	sessions sessionRepository
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionManager(sessions sessionRepository, ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

// Issue creates a session for userID and returns the bearer token.
func (m *SessionManager) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &models.Session{
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: m.now().UTC().Add(m.ttl),
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Validate resolves a token to its user. Unknown, revoked and expired tokens
// all return ErrInvalidSession. Expired rows are left for the sweeper.
func (m *SessionManager) Validate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	session, user, err := m.sessions.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.IsExpiredAt(m.now()) {
		return nil, ErrInvalidSession
	}

	return user, nil
}

// Revoke deletes the session for token. Revoking an unknown token succeeds.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.sessions.DeleteByTokenHash(ctx, hashToken(token)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// PurgeExpired removes every session whose expiry has passed.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.sessions.DeleteExpired(ctx, m.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return n, nil
}
