package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"booksummarizer/internal/middleware"
	"booksummarizer/internal/models"
	"booksummarizer/internal/services"
)

// Parts above this size spill to temporary files.
const multipartMemory = 8 << 20

type summaryService interface {
	Summarize(ctx context.Context, caller *models.User, in services.SummaryInput) (*models.SummarizeResponse, error)
	List(ctx context.Context, caller *models.User) ([]*models.Summary, error)
	Download(ctx context.Context, caller *models.User, publicID, format string) (*services.Export, error)
}

type SummaryHandler struct {
	summaries      summaryService
	maxUploadBytes int64
}

func NewSummaryHandler(summaries summaryService, maxUploadBytes int64) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, maxUploadBytes: maxUploadBytes}
}

// Summarize accepts a multipart (or urlencoded) form with summary_type,
// summary_length and either input_text or a file part.
func (h *SummaryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Upload too large",
				map[string]string{"file": fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit)}, r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid form body", r))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	in := services.SummaryInput{
		SummaryType:   r.FormValue("summary_type"),
		SummaryLength: r.FormValue("summary_length"),
		Text:          r.FormValue("input_text"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		// Browsers submit an empty nameless part when no file was chosen.
		if header.Filename != "" || header.Size > 0 {
			data, err := io.ReadAll(file)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read uploaded file", r))
				return
			}
			in.File = &services.UploadedFile{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			}
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid file upload", r))
		return
	}

	resp, err := h.summaries.Summarize(r.Context(), middleware.GetUser(r.Context()), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *SummaryHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.summaries.List(r.Context(), middleware.GetUser(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summaries": summaries,
	})
}

func (h *SummaryHandler) Download(w http.ResponseWriter, r *http.Request) {
	export, err := h.summaries.Download(
		r.Context(),
		middleware.GetUser(r.Context()),
		chi.URLParam(r, "summaryID"),
		r.URL.Query().Get("format"),
	)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": export.Filename,
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(export.Data)
}
