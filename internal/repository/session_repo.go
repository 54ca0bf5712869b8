package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"booksummarizer/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.Session) error {
	query := `INSERT INTO sessions (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3) RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		s.UserID, s.TokenHash, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByTokenHash loads the session for a token digest together with its
// owner. Expired sessions are returned as-is; callers decide validity.
func (r *SessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, *models.User, error) {
	s := &models.Session{}
	u := &models.User{}
	query := `SELECT s.id, s.user_id, s.token_hash, s.expires_at, s.created_at,
		u.id, u.username, u.email, u.is_admin, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1`

	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt,
		&u.ID, &u.Username, &u.Email, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		return nil, nil, err
	}
	return s, u, nil
}

// DeleteByTokenHash removes a session. Deleting an absent token is not an error.
func (r *SessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash)
	return err
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= $1", now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
