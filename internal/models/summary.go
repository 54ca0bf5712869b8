package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SummaryTypeBullet    = "bullet"
	SummaryTypeParagraph = "paragraph"
)

type Summary struct {
	ID            int64     `json:"-"`
	PublicID      uuid.UUID `json:"summary_id"`
	UserID        uuid.UUID `json:"user_id"`
	OriginalText  string    `json:"original_text,omitempty"`
	SummaryText   string    `json:"summary_text"`
	SummaryType   string    `json:"summary_type"`
	SummaryLength int       `json:"summary_length"`
	WordCount     int       `json:"word_count"`
	CreatedAt     time.Time `json:"created_at"`

	// Owner display fields, populated by joined queries only.
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ValidSummaryType reports whether t is a supported summary mode.
func ValidSummaryType(t string) bool {
	return t == SummaryTypeBullet || t == SummaryTypeParagraph
}

type DownloadLinks struct {
	TXT string `json:"txt"`
	PDF string `json:"pdf"`
}

type SummarizeResponse struct {
	SummaryID     uuid.UUID     `json:"summary_id"`
	Summary       string        `json:"summary"`
	WordCount     int           `json:"word_count"`
	SummaryType   string        `json:"summary_type"`
	SummaryLength int           `json:"summary_length"`
	CreatedAt     time.Time     `json:"created_at"`
	DownloadLinks DownloadLinks `json:"download_links"`
}
