package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login record. Only a digest of the bearer token
// is persisted.
type Session struct {
	ID        int64
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpiredAt reports whether the session is no longer valid at now.
// A session is valid only while now < ExpiresAt.
func (s *Session) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
