package config

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	Debug      bool
	AppName    string
	AppVersion string

	Port       int
	SitePort   int
	WorkerPort int

	// "postgres" or "memory"
	Storage string
	DBURL   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins        []string
	RateLimitEnabled   bool
	RateLimitPerMinute int
	// Peers whose X-Forwarded-For is believed when resolving the client IP.
	TrustedProxies []string

	JWTSecret           string
	JWTAccessTTLMinutes int

	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminRole     string

	BackendURL     string
	BackendTimeout time.Duration

	OTELEndpoint     string
	SettingsCacheTTL time.Duration

	WorkerConcurrency int
}

func Load() Config {
	// .env is optional; real environment always wins.
	if err := loadDotEnv(); err != nil {
		slog.Warn("ignoring unreadable .env", "err", err)
	}

	env := getEnv("APP_ENV", "dev")

	return Config{
		Env:        env,
		Debug:      getEnvBool("DEBUG", env == "dev"),
		AppName:    getEnv("APP_NAME", "Tournament Registration API"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),

		Port:       getEnvInt("PORT", 8000),
		SitePort:   getEnvInt("SITE_PORT", 8080),
		WorkerPort: getEnvInt("WORKER_PORT", 8090),

		Storage: strings.ToLower(getEnv("STORAGE", "postgres")),
		DBURL:   getEnv("DATABASE_URL", buildDBURL()),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "https://rahulj-crypto.github.io")),
		RateLimitEnabled:   getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "127.0.0.1,::1")),

		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 60),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminRole:     "admin",

		BackendURL:     strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8000"), "/"),
		BackendTimeout: time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 15)) * time.Second,

		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		SettingsCacheTTL: time.Duration(getEnvInt("SETTINGS_CACHE_TTL_SECONDS", 10)) * time.Second,

		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
	}
}

func (c Config) JWTAccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "tournament")
	pass := getEnv("DB_PASSWORD", "tournament")
	name := getEnv("DB_NAME", "tournament")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// loadDotEnv loads files (default .env) into the environment. A missing
// file is not an error.
func loadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean in environment, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return b
	}
	return fallback
}

// splitList parses a comma separated list, dropping blanks.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
