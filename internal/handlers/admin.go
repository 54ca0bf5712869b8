package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"booksummarizer/internal/models"
)

type userLister interface {
	ListNonAdminUsers(ctx context.Context) ([]*models.UserWithCount, error)
}

type summaryLister interface {
	ListAll(ctx context.Context) ([]*models.Summary, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Summary, error)
}

// AdminHandler serves the admin-only views. Routes must sit behind
// SessionAuth and RequireAdmin.
type AdminHandler struct {
	users     userLister
	summaries summaryLister
}

func NewAdminHandler(users userLister, summaries summaryLister) *AdminHandler {
	return &AdminHandler{users: users, summaries: summaries}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListNonAdminUsers(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *AdminHandler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.summaries.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"summaries": summaries})
}

func (h *AdminHandler) ListUserSummaries(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid user ID", r))
		return
	}

	summaries, err := h.summaries.ListForUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"summaries": summaries})
}
