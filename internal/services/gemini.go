package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"booksummarizer/internal/models"
)

const summarySystemInstruction = "You are an accurate summarization assistant."

// Summarizer produces a summary of already cleaned text.
type Summarizer interface {
	Summarize(ctx context.Context, text, summaryType string, length int) (string, error)
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	Timeout        time.Duration
	ConcurrentReqs int
}

type GeminiSummarizer struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	timeout  time.Duration
	rateChan chan struct{} // Token bucket
}

func NewGeminiSummarizer(ctx context.Context, cfg GeminiConfig) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0.2)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(summarySystemInstruction)},
	}

	concurrent := cfg.ConcurrentReqs
	if concurrent <= 0 {
		concurrent = 1
	}
	rateChan := make(chan struct{}, concurrent)
	for i := 0; i < concurrent; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiSummarizer{
		client:   client,
		model:    model,
		timeout:  cfg.Timeout,
		rateChan: rateChan,
	}, nil
}

func (g *GeminiSummarizer) Close() {
	g.client.Close()
}

// acquireRate blocks until a rate slot is available
func (g *GeminiSummarizer) acquireRate(ctx context.Context) error {
	select {
	case <-g.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *GeminiSummarizer) releaseRate() {
	g.rateChan <- struct{}{}
}

// Summarize calls the model once. Every failure, including an empty
// response, is reported as *UpstreamError.
func (g *GeminiSummarizer) Summarize(ctx context.Context, text, summaryType string, length int) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := g.acquireRate(ctx); err != nil {
		return "", &UpstreamError{Err: err}
	}
	defer g.releaseRate()

	started := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildSummaryPrompt(text, summaryType, length)))
	if err != nil {
		return "", &UpstreamError{Err: fmt.Errorf("Gemini API error: %w", err)}
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Warn().Int("candidate", i).Str("finish_reason", cand.FinishReason.String()).
				Msg("gemini stopped early")
		}
	}

	summary := strings.TrimSpace(extractText(resp))
	if summary == "" {
		return "", &UpstreamError{Err: errors.New("empty response from Gemini")}
	}

	log.Debug().Dur("elapsed", time.Since(started)).Str("summary_type", summaryType).
		Int("summary_length", length).Msg("gemini summary generated")

	return summary, nil
}

func buildSummaryPrompt(text, summaryType string, length int) string {
	var instruction string
	if summaryType == models.SummaryTypeBullet {
		instruction = fmt.Sprintf("Summarize the following text into clear bullet points. "+
			"Use '-' for each bullet. Aim for around %d words. Do NOT write paragraphs.", length)
	} else {
		instruction = fmt.Sprintf("Summarize the following text into a concise paragraph of around %d words.", length)
	}
	return instruction + "\n\n" + text
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
