package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"booksummarizer/internal/models"
	"booksummarizer/internal/services"
)

type contextKey string

const UserKey contextKey = "user"

// SessionValidator resolves a bearer token to the user it was issued for.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.User, error)
}

type SessionAuth struct {
	sessions SessionValidator
}

func NewSessionAuth(sessions SessionValidator) *SessionAuth {
	return &SessionAuth{sessions: sessions}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Middleware validates the bearer token and attaches the user to the context.
func (a *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header", r)
			return
		}

		token, ok := BearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format", r)
			return
		}

		user, err := a.sessions.Validate(r.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrInvalidSession) {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session", r)
				return
			}
			hlog.FromRequest(r).Error().Err(err).Msg("session lookup failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", r)
			return
		}

		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("user_id", user.ID.String())
		})

		ctx := context.WithValue(r.Context(), UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated callers without the admin flag. It must
// run after SessionAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", r)
			return
		}
		if !user.IsAdmin {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Administrator access required", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser returns the authenticated user, or nil outside SessionAuth.
func GetUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get(RequestIDHeader)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	})
}
