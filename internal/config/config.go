package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis (optional, rate limiting falls back to in-process counters)
	RedisURL string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiTimeout        time.Duration
	GeminiConcurrentReqs int

	// Sessions & credentials
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	BcryptCost           int
	AllowAdminSignup     bool

	// Optional administrator bootstrap
	AdminUsername string
	AdminEmail    string
	AdminPassword string

	// Requests
	MaxUploadBytes int64
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Frontend
	FrontendURL string

	// Honor X-Forwarded-For / X-Real-IP (only behind a proxy that sets them)
	TrustProxy bool
}

// LoadDotEnv copies .env into the environment if the file exists. Variables
// already set keep their values.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func Load() *Config {
	LoadDotEnv()

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Env:      getEnvOrDefault("ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		DatabaseURL: mustGetEnv("DATABASE_URL"),
		RedisURL:    getEnvOrDefault("REDIS_URL", ""),

		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-flash-latest"),
		GeminiTimeout:        getEnvAsDurationOrDefault("GEMINI_TIMEOUT", 60*time.Second),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),

		SessionTTL:           getEnvAsDurationOrDefault("SESSION_TTL", 24*time.Hour),
		SessionSweepInterval: getEnvAsDurationOrDefault("SESSION_SWEEP_INTERVAL", time.Hour),
		BcryptCost:           getEnvAsIntOrDefault("BCRYPT_COST", 12),
		AllowAdminSignup:     getEnvAsBoolOrDefault("ALLOW_ADMIN_SIGNUP", true),

		AdminUsername: getEnvOrDefault("ADMIN_USERNAME", ""),
		AdminEmail:    getEnvOrDefault("ADMIN_EMAIL", ""),
		AdminPassword: getEnvOrDefault("ADMIN_PASSWORD", ""),

		MaxUploadBytes: int64(getEnvAsIntOrDefault("MAX_UPLOAD_BYTES", 10*1024*1024)),
		AuthRateLimit:  getEnvAsIntOrDefault("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: getEnvAsDurationOrDefault("AUTH_RATE_WINDOW", time.Minute),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		TrustProxy:  getEnvAsBoolOrDefault("TRUST_PROXY", false),
	}

	return cfg
}

// IsDevelopment reports whether the service runs with developer defaults
// (console logging, verbose output).
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// HasAdminBootstrap reports whether an administrator should be ensured at startup.
func (c *Config) HasAdminBootstrap() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}

// AllowedOrigins splits FRONTEND_URL on commas for the CORS allow list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
