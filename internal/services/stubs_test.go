package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"booksummarizer/internal/models"
)

// memUserRepo mimics the users table, including its unique constraints.
type memUserRepo struct {
	mu    sync.Mutex
	users []*models.User
	store *memSummaryRepo
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"}
		}
		if u.Email == user.Email {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	cp := *user
	r.users = append(r.users, &cp)
	return nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListNonAdmin(ctx context.Context) ([]*models.UserWithCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.UserWithCount, 0)
	for i := len(r.users) - 1; i >= 0; i-- {
		u := r.users[i]
		if u.IsAdmin {
			continue
		}
		row := &models.UserWithCount{User: *u}
		row.PasswordHash = ""
		if r.store != nil {
			owned, _ := r.store.ListByUser(ctx, u.ID)
			row.SummaryCount = len(owned)
		}
		out = append(out, row)
	}
	return out, nil
}

type memSession struct {
	session models.Session
	userID  uuid.UUID
}

type memSessionRepo struct {
	mu       sync.Mutex
	users    *memUserRepo
	sessions map[string]*memSession
	failGet  error
}

func newMemSessionRepo(users *memUserRepo) *memSessionRepo {
	return &memSessionRepo{users: users, sessions: make(map[string]*memSession)}
}

func (r *memSessionRepo) Create(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.TokenHash]; exists {
		return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "sessions_token_hash_key"}
	}
	s.ID = int64(len(r.sessions) + 1)
	s.CreatedAt = time.Now()
	r.sessions[s.TokenHash] = &memSession{session: *s, userID: s.UserID}
	return nil
}

func (r *memSessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, *models.User, error) {
	if r.failGet != nil {
		return nil, nil, r.failGet
	}
	r.mu.Lock()
	entry, ok := r.sessions[tokenHash]
	r.mu.Unlock()
	if !ok {
		return nil, nil, pgx.ErrNoRows
	}
	user, err := r.users.GetByID(ctx, entry.userID)
	if err != nil {
		return nil, nil, err
	}
	user.PasswordHash = ""
	s := entry.session
	return &s, user, nil
}

func (r *memSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, tokenHash)
	return nil
}

func (r *memSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, entry := range r.sessions {
		if entry.session.IsExpiredAt(now) {
			delete(r.sessions, hash)
			n++
		}
	}
	return n, nil
}

func (r *memSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type memSummaryRepo struct {
	mu        sync.Mutex
	summaries []*models.Summary
	users     *memUserRepo
	failWith  error
}

func (r *memSummaryRepo) Create(ctx context.Context, s *models.Summary) (int64, error) {
	if r.failWith != nil {
		return 0, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = int64(len(r.summaries) + 1)
	// Strictly increasing timestamps keep ordering deterministic.
	s.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.ID) * time.Second)
	cp := *s
	r.summaries = append(r.summaries, &cp)
	return s.ID, nil
}

func (r *memSummaryRepo) withOwner(s *models.Summary) *models.Summary {
	cp := *s
	if r.users != nil {
		if u, err := r.users.GetByID(context.Background(), s.UserID); err == nil {
			cp.Username = u.Username
			cp.Email = u.Email
		}
	}
	return &cp
}

func (r *memSummaryRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.summaries {
		if s.PublicID == publicID {
			return r.withOwner(s), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memSummaryRepo) filter(keep func(*models.Summary) bool, withOwner bool) []*models.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Summary, 0)
	for _, s := range r.summaries {
		if !keep(s) {
			continue
		}
		if withOwner {
			out = append(out, r.withOwner(s))
		} else {
			cp := *s
			cp.OriginalText = ""
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memSummaryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Summary, error) {
	return r.filter(func(s *models.Summary) bool { return s.UserID == userID }, false), nil
}

func (r *memSummaryRepo) ListAll(ctx context.Context) ([]*models.Summary, error) {
	return r.filter(func(*models.Summary) bool { return true }, true), nil
}

func (r *memSummaryRepo) ListAllByUser(ctx context.Context, userID uuid.UUID) ([]*models.Summary, error) {
	return r.filter(func(s *models.Summary) bool { return s.UserID == userID }, true), nil
}

// stubSummarizer returns a canned summary shaped like the requested mode.
type stubSummarizer struct {
	err      error
	lastText string
	calls    int
}

func (s *stubSummarizer) Summarize(ctx context.Context, text, summaryType string, length int) (string, error) {
	s.calls++
	s.lastText = text
	if s.err != nil {
		return "", s.err
	}
	if summaryType == models.SummaryTypeBullet {
		return "- first key point\n- second key point\n- third key point", nil
	}
	return fmt.Sprintf("A short paragraph of roughly %d words.", length), nil
}

type stubExtractor struct {
	text string
	err  error
}

func (e *stubExtractor) Extract(filename, contentType string, data []byte) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	if e.text != "" {
		return e.text, nil
	}
	return string(data), nil
}

var errStorageDown = errors.New("storage unavailable")

func isDashList(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "-") {
			return false
		}
	}
	return true
}
