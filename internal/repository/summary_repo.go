package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"booksummarizer/internal/models"
)

type SummaryRepo struct {
	pool *pgxpool.Pool
}

func NewSummaryRepo(pool *pgxpool.Pool) *SummaryRepo {
	return &SummaryRepo{pool: pool}
}

const summaryWithOwnerColumns = `s.id, s.public_id, s.user_id, s.original_text, s.summary_text,
		s.summary_type, s.summary_length, s.word_count, s.created_at, u.username, u.email`

// Create persists a summary in a single insert and returns the internal id.
func (r *SummaryRepo) Create(ctx context.Context, s *models.Summary) (int64, error) {
	query := `INSERT INTO summaries (public_id, user_id, original_text, summary_text,
			summary_type, summary_length, word_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		s.PublicID, s.UserID, s.OriginalText, s.SummaryText,
		s.SummaryType, s.SummaryLength, s.WordCount,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return 0, err
	}
	return s.ID, nil
}

func (r *SummaryRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Summary, error) {
	query := `SELECT ` + summaryWithOwnerColumns + `
		FROM summaries s
		JOIN users u ON u.id = s.user_id
		WHERE s.public_id = $1`

	s := &models.Summary{}
	err := r.pool.QueryRow(ctx, query, publicID).Scan(
		&s.ID, &s.PublicID, &s.UserID, &s.OriginalText, &s.SummaryText,
		&s.SummaryType, &s.SummaryLength, &s.WordCount, &s.CreatedAt, &s.Username, &s.Email,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByUser returns the caller's summaries, newest first. The original
// input text is left out to keep list payloads small.
func (r *SummaryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Summary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, public_id, user_id, summary_text, summary_type, summary_length, word_count, created_at
		FROM summaries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]*models.Summary, 0)
	for rows.Next() {
		s := &models.Summary{}
		if err := rows.Scan(
			&s.ID, &s.PublicID, &s.UserID, &s.SummaryText,
			&s.SummaryType, &s.SummaryLength, &s.WordCount, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

func (r *SummaryRepo) ListAll(ctx context.Context) ([]*models.Summary, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+summaryWithOwnerColumns+`
		FROM summaries s
		JOIN users u ON u.id = s.user_id
		ORDER BY s.created_at DESC, s.id DESC`)
	if err != nil {
		return nil, err
	}
	return scanSummariesWithOwner(rows)
}

func (r *SummaryRepo) ListAllByUser(ctx context.Context, userID uuid.UUID) ([]*models.Summary, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+summaryWithOwnerColumns+`
		FROM summaries s
		JOIN users u ON u.id = s.user_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC, s.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanSummariesWithOwner(rows)
}

func scanSummariesWithOwner(rows pgx.Rows) ([]*models.Summary, error) {
	defer rows.Close()

	summaries := make([]*models.Summary, 0)
	for rows.Next() {
		s := &models.Summary{}
		if err := rows.Scan(
			&s.ID, &s.PublicID, &s.UserID, &s.OriginalText, &s.SummaryText,
			&s.SummaryType, &s.SummaryLength, &s.WordCount, &s.CreatedAt, &s.Username, &s.Email,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
