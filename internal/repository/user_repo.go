package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"booksummarizer/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a user. Username and email collisions surface as Postgres
// unique violations on users_username_key / users_email_key.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	user.ID = uuid.New()

	return r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsAdmin,
	).Scan(&user.CreatedAt)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, email, password_hash, is_admin, created_at
		FROM users WHERE username = $1`

	err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, email, password_hash, is_admin, created_at
		FROM users WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListNonAdmin returns every non-admin user with the number of summaries
// they own, newest account first.
func (r *UserRepo) ListNonAdmin(ctx context.Context) ([]*models.UserWithCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			u.id,
			u.username,
			u.email,
			u.is_admin,
			u.created_at,
			(SELECT COUNT(*) FROM summaries s WHERE s.user_id = u.id) AS summary_count
		FROM users u
		WHERE u.is_admin = FALSE
		ORDER BY u.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.UserWithCount, 0)
	for rows.Next() {
		u := &models.UserWithCount{}
		if err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.IsAdmin,
			&u.CreatedAt,
			&u.SummaryCount,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
