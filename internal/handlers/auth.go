package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"booksummarizer/internal/middleware"
	"booksummarizer/internal/models"
	"booksummarizer/internal/services"
)

type authService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	authService authService
}

func NewAuthHandler(authService authService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Str("user_id", resp.User.ID.String()).Msg("user registered")
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Logout revokes the presented bearer token. It is not behind the session
// guard so that repeating it with a revoked token still succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.BearerToken(r); ok {
		if err := h.authService.Logout(r.Context(), token); err != nil {
			handleServiceError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": middleware.GetUser(r.Context()),
	})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *services.ValidationError
		extractionErr *services.ExtractionError
		duplicateErr  *services.DuplicateError
		notFoundErr   *services.NotFoundError
		unauthErr     *services.UnauthorizedError
		forbiddenErr  *services.ForbiddenError
		rateLimitErr  *services.RateLimitError
		upstreamErr   *services.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", validationErr.Error(), validationErr.Fields, r))
	case errors.As(err, &extractionErr):
		writeJSON(w, http.StatusBadRequest, errorResp("EXTRACTION_ERROR", extractionErr.Error(), r))
	case errors.As(err, &duplicateErr):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("DUPLICATE", duplicateErr.Message,
			map[string]string{duplicateErr.Field: duplicateErr.Message}, r))
	case errors.Is(err, services.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid username or password", r))
	case errors.Is(err, services.ErrInvalidSession):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Invalid or expired session", r))
	case errors.As(err, &unauthErr):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", unauthErr.Message, r))
	case errors.As(err, &forbiddenErr):
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", forbiddenErr.Message, r))
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFoundErr.Message, r))
	case errors.As(err, &rateLimitErr):
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", rateLimitErr.Message, r))
	case errors.As(err, &upstreamErr):
		hlog.FromRequest(r).Error().Err(err).Msg("summary generator failed")
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", "The summary service is unavailable. Please try again later.", r))
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("unhandled error")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
