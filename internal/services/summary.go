package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"booksummarizer/internal/models"
)

type summaryRepository interface {
	Create(ctx context.Context, s *models.Summary) (int64, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Summary, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Summary, error)
	ListAll(ctx context.Context) ([]*models.Summary, error)
	ListAllByUser(ctx context.Context, userID uuid.UUID) ([]*models.Summary, error)
}

// UploadedFile is a document submitted for summarization.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SummaryInput carries the raw form values of a summarize request.
type SummaryInput struct {
	SummaryType   string
	SummaryLength string
	Text          string
	File          *UploadedFile
}

type SummaryService struct {
	repo       summaryRepository
	extractor  Extractor
	summarizer Summarizer
	exporter   *Exporter
}

func NewSummaryService(repo summaryRepository, extractor Extractor, summarizer Summarizer, exporter *Exporter) *SummaryService {
	return &SummaryService{
		repo:       repo,
		extractor:  extractor,
		summarizer: summarizer,
		exporter:   exporter,
	}
}

// CanAccess reports whether caller may read s: owners always, admins always.
func CanAccess(caller *models.User, s *models.Summary) bool {
	if caller == nil || s == nil {
		return false
	}
	return caller.IsAdmin || caller.ID == s.UserID
}

// DownloadLink is the API path serving summary publicID in format.
func DownloadLink(publicID uuid.UUID, format string) string {
	return fmt.Sprintf("/api/download/%s?format=%s", publicID, format)
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// maxSummaryLength caps the requested word budget.
const maxSummaryLength = 10000

func validateSummaryInput(in SummaryInput) (int, error) {
	fieldErrors := make(map[string]string)

	if !models.ValidSummaryType(in.SummaryType) {
		fieldErrors["summary_type"] = "Summary type must be bullet or paragraph"
	}

	length, err := strconv.Atoi(strings.TrimSpace(in.SummaryLength))
	switch {
	case err != nil || length <= 0:
		fieldErrors["summary_length"] = "Summary length must be a positive integer"
	case length > maxSummaryLength:
		fieldErrors["summary_length"] = fmt.Sprintf("Summary length must be at most %d", maxSummaryLength)
	}

	hasText := strings.TrimSpace(in.Text) != ""
	hasFile := in.File != nil
	switch {
	case hasText && hasFile:
		fieldErrors["input"] = "Provide either input text or a file, not both"
	case !hasText && !hasFile:
		fieldErrors["input"] = "No input provided"
	}

	if len(fieldErrors) > 0 {
		return 0, &ValidationError{Message: "Validation failed", Fields: fieldErrors}
	}
	return length, nil
}

// Summarize validates the request, cleans the input, asks the summarizer for
// a summary and stores it under caller.
func (s *SummaryService) Summarize(ctx context.Context, caller *models.User, in SummaryInput) (*models.SummarizeResponse, error) {
	length, err := validateSummaryInput(in)
	if err != nil {
		return nil, err
	}

	raw := in.Text
	if in.File != nil {
		raw, err = s.extractor.Extract(in.File.Filename, in.File.ContentType, in.File.Data)
		if err != nil {
			return nil, err
		}
	}

	text := CleanText(raw)
	if text == "" {
		return nil, &ValidationError{
			Message: "Validation failed",
			Fields:  map[string]string{"input": "Input contains no text"},
		}
	}

	summaryText, err := s.summarizer.Summarize(ctx, text, in.SummaryType, length)
	if err != nil {
		var upstream *UpstreamError
		if !errors.As(err, &upstream) {
			err = &UpstreamError{Err: err}
		}
		return nil, err
	}

	summary := &models.Summary{
		PublicID:      uuid.New(),
		UserID:        caller.ID,
		OriginalText:  text,
		SummaryText:   summaryText,
		SummaryType:   in.SummaryType,
		SummaryLength: length,
		WordCount:     WordCount(summaryText),
	}
	if _, err := s.repo.Create(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to save summary: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("summary_id", summary.PublicID.String()).
		Str("user_id", caller.ID.String()).
		Int("word_count", summary.WordCount).
		Msg("summary created")

	return &models.SummarizeResponse{
		SummaryID:     summary.PublicID,
		Summary:       summary.SummaryText,
		WordCount:     summary.WordCount,
		SummaryType:   summary.SummaryType,
		SummaryLength: summary.SummaryLength,
		CreatedAt:     summary.CreatedAt,
		DownloadLinks: models.DownloadLinks{
			TXT: DownloadLink(summary.PublicID, FormatTXT),
			PDF: DownloadLink(summary.PublicID, FormatPDF),
		},
	}, nil
}

// List returns the caller's own summaries, newest first.
func (s *SummaryService) List(ctx context.Context, caller *models.User) ([]*models.Summary, error) {
	summaries, err := s.repo.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}

// Get loads a summary the caller may read. Unknown ids yield *NotFoundError,
// summaries owned by someone else yield *ForbiddenError.
func (s *SummaryService) Get(ctx context.Context, caller *models.User, publicID string) (*models.Summary, error) {
	id, err := uuid.Parse(publicID)
	if err != nil {
		return nil, &NotFoundError{Message: "Summary not found"}
	}

	summary, err := s.repo.GetByPublicID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Summary not found"}
		}
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	if !CanAccess(caller, summary) {
		return nil, &ForbiddenError{Message: "You do not have access to this summary"}
	}

	return summary, nil
}

// Download renders a summary for export. Checks run in order: existence,
// ownership, then format.
func (s *SummaryService) Download(ctx context.Context, caller *models.User, publicID, format string) (*Export, error) {
	summary, err := s.Get(ctx, caller, publicID)
	if err != nil {
		return nil, err
	}

	return s.exporter.Render(summary.SummaryText, format, "summary_"+summary.PublicID.String())
}

func (s *SummaryService) ListAll(ctx context.Context) ([]*models.Summary, error) {
	summaries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}

func (s *SummaryService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Summary, error) {
	summaries, err := s.repo.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}
