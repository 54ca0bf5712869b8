package commands

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"booksummarizer/internal/config"
	"booksummarizer/internal/logger"
)

type Globals struct {
	Dev     bool
	Version string
}

// setup loads configuration and installs the process-wide logger.
func setup(globals *Globals) (*config.Config, zerolog.Logger) {
	cfg := config.Load()
	l := logger.Setup(globals.Dev || cfg.IsDevelopment(), cfg.LogLevel)
	log.Logger = l
	zerolog.DefaultContextLogger = &l
	return cfg, l
}

func configureHTTPServer(addr string, handler http.Handler, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
