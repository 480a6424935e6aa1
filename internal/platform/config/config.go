package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddr       = ":3001"
	defaultAPIBaseURL = "http://localhost:8181/api"
	// development only; FromEnv refuses it in production
	devSessionSecret = "dev-session-secret-change-in-production-please"
	minSecretLength  = 32
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string
}

// Backend describes the project-management API the portal fronts.
type Backend struct {
	BaseURL        string
	HealthURL      string
	RequestTimeout time.Duration
}

// Session configures the cookie-backed operator session.
type Session struct {
	Secret       []byte
	MaxAge       time.Duration
	SecureCookie bool
}

// RedisConfig is optional; an empty URL keeps cooldowns in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuditConfig enables the Kafka audit publisher when Brokers is non-empty.
type AuditConfig struct {
	Brokers []string
	Topic   string
}

// Broadcaster is the realtime WebSocket broadcaster shown on the docs page.
type Broadcaster struct {
	Host   string
	Port   int
	Scheme string
	Key    string
}

// Config is the full portal configuration.
type Config struct {
	Server      Server
	Backend     Backend
	Session     Session
	Redis       RedisConfig
	Audit       AuditConfig
	Broadcaster Broadcaster
}

// IsProduction reports whether secure-only defaults apply.
func (c Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// FromEnv loads an optional .env file and builds the Config from environment
// variables so main stays lean.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	env := getEnv("ENVIRONMENT", "development")
	cfg := Config{
		Server: Server{
			Addr:        getEnv("PORTAL_ADDR", defaultAddr),
			Environment: env,
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Audit: AuditConfig{
			Brokers: splitList(os.Getenv("AUDIT_KAFKA_BROKERS")),
			Topic:   getEnv("AUDIT_KAFKA_TOPIC", "superadmin.audit"),
		},
	}

	baseURL := strings.TrimRight(getEnv("API_BASE_URL", defaultAPIBaseURL), "/")
	timeout, err := parseDuration("REQUEST_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	cfg.Backend = Backend{
		BaseURL:        baseURL,
		HealthURL:      getEnv("HEALTH_URL", HealthURLFromBase(baseURL)),
		RequestTimeout: timeout,
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		if env == "production" {
			return Config{}, fmt.Errorf("SESSION_SECRET environment variable is required")
		}
		secret = devSessionSecret
	}
	if len(secret) < minSecretLength {
		return Config{}, fmt.Errorf("SESSION_SECRET must be at least %d characters long", minSecretLength)
	}
	maxAgeSeconds, err := strconv.Atoi(getEnv("SESSION_MAX_AGE", "1800"))
	if err != nil || maxAgeSeconds <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_MAX_AGE %q", os.Getenv("SESSION_MAX_AGE"))
	}
	cfg.Session = Session{
		Secret:       []byte(secret),
		MaxAge:       time.Duration(maxAgeSeconds) * time.Second,
		SecureCookie: env == "production",
	}

	port, err := strconv.Atoi(getEnv("WS_PORT", "8080"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid WS_PORT: %w", err)
	}
	cfg.Broadcaster = Broadcaster{
		Host:   getEnv("WS_HOST", "localhost"),
		Port:   port,
		Scheme: getEnv("WS_SCHEME", "http"),
		Key:    os.Getenv("WS_KEY"),
	}

	return cfg, nil
}

// HealthURLFromBase strips a trailing /api segment and appends /health/json;
// the health endpoint lives at the backend root.
func HealthURLFromBase(baseURL string) string {
	root := strings.TrimRight(baseURL, "/")
	root = strings.TrimSuffix(root, "/api")
	return root + "/health/json"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, os.Getenv(key))
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
