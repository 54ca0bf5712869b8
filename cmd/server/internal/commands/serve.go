package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"booksummarizer/internal/database"
	"booksummarizer/internal/handlers"
	"booksummarizer/internal/middleware"
	"booksummarizer/internal/repository"
	"booksummarizer/internal/router"
	"booksummarizer/internal/services"
)

const shutdownTimeout = 30 * time.Second

type ServeCmd struct {
	SkipMigrations bool `help:"Do not apply pending migrations on startup."`
}

func (s *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, logger := setup(globals)

	log.Info().Str("version", globals.Version).Str("env", cfg.Env).Msg("Starting book summarizer")

	if cfg.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required to serve")
	}

	// ──── PostgreSQL ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	if !s.SkipMigrations {
		if err := database.RunMigrations(ctx, pool); err != nil {
			return err
		}
	}

	// ──── Redis (optional) ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	var counter middleware.Counter
	if redisClient != nil {
		defer redisClient.Close()
		counter = middleware.NewRedisCounter(redisClient)
		log.Info().Msg("Redis connected, rate limits are shared")
	} else {
		memCounter := middleware.NewMemoryCounter(cfg.AuthRateWindow)
		defer memCounter.Close()
		counter = memCounter
		log.Warn().Msg("REDIS_URL not set, rate limits are per instance")
	}

	// ──── Repositories & services ────
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	summaryRepo := repository.NewSummaryRepo(pool)

	credentials, err := services.NewCredentialStore(userRepo, cfg.BcryptCost)
	if err != nil {
		return err
	}
	sessions := services.NewSessionManager(sessionRepo, cfg.SessionTTL)

	if cfg.HasAdminBootstrap() {
		if err := ensureAdmin(ctx, credentials, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	summarizer, err := services.NewGeminiSummarizer(ctx, services.GeminiConfig{
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		Timeout:        cfg.GeminiTimeout,
		ConcurrentReqs: cfg.GeminiConcurrentReqs,
	})
	if err != nil {
		return err
	}
	defer summarizer.Close()
	log.Info().Str("model", cfg.GeminiModel).Msg("Gemini client initialized")

	authService := services.NewAuthService(credentials, sessions, cfg.AllowAdminSignup)
	summaryService := services.NewSummaryService(
		summaryRepo,
		services.NewFileExtractService(),
		summarizer,
		services.NewExporter(),
	)

	sweeper := services.NewSessionSweeper(sessions, cfg.SessionSweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// ──── HTTP ────
	handler := router.New(
		logger,
		middleware.NewSessionAuth(sessions),
		middleware.NewRateLimiter(counter, "auth", cfg.AuthRateLimit, cfg.AuthRateWindow),
		handlers.NewAuthHandler(authService),
		handlers.NewSummaryHandler(summaryService, cfg.MaxUploadBytes),
		handlers.NewAdminHandler(credentials, summaryService),
		handlers.NewHealthHandler(pool),
		cfg.AllowedOrigins(),
		cfg.TrustProxy,
	)

	// Summaries wait on the model, so writes may take up to its timeout.
	server := configureHTTPServer(":"+cfg.Port, handler, cfg.GeminiTimeout+30*time.Second)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("API listening on /api")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down...")
	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
