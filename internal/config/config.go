package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the production backend used when BROTHERHOOD_API_URL is unset.
const DefaultAPIURL = "https://brotherhood-backend-1.onrender.com/api"

// Session store kinds.
const (
	SessionStoreFile  = "file"
	SessionStoreRedis = "redis"
)

// Config holds the console configuration loaded from the environment.
type Config struct {
	APIURL       string
	HTTPTimeout  time.Duration
	APIRateLimit RateLimitConfig
	SessionStore string
	SessionFile  string
	Profile      string
	RedisURL     string
	LogLevel     string
}

// ServerConfig holds the development API configuration.
type ServerConfig struct {
	Port              int
	JWTSecret         string
	JWTAccessTTL      time.Duration
	AllowOrigins      []string
	RateLimitPublic   RateLimitConfig
	RateLimitAuth     RateLimitConfig
	SeedAdminEmail    string
	SeedAdminPassword string
	LogLevel          string
}

// RateLimitConfig is a token bucket: sustained rate and burst.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load reads the console configuration and applies defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(getEnv("BROTHERHOOD_API_URL", DefaultAPIURL)), "/")
	if cfg.APIURL == "" {
		return nil, errors.New("BROTHERHOOD_API_URL is empty")
	}

	timeout, err := parseDurationEnv("HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	rps, err := parseFloatEnv("API_RATE_LIMIT_RPS", 5)
	if err != nil {
		return nil, err
	}
	burst, err := parseIntEnv("API_RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, err
	}
	cfg.APIRateLimit = RateLimitConfig{RequestsPerSecond: rps, Burst: burst}

	cfg.SessionStore = strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", SessionStoreFile)))
	switch cfg.SessionStore {
	case SessionStoreFile:
	case SessionStoreRedis:
		cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required when SESSION_STORE=redis")
		}
	default:
		return nil, errors.New("SESSION_STORE must be file or redis")
	}

	cfg.SessionFile = strings.TrimSpace(getEnv("SESSION_FILE", ""))
	if cfg.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.SessionFile = filepath.Join(home, ".brotherhood", "session.json")
	}

	cfg.Profile = strings.TrimSpace(getEnv("SESSION_PROFILE", "default"))
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}

	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", "info"))

	return cfg, nil
}

// LoadServer reads the development API configuration.
func LoadServer() (*ServerConfig, error) {
	_ = godotenv.Load()

	cfg := &ServerConfig{}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 {
		return nil, errors.New("invalid PORT")
	}
	cfg.Port = port

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 5, Burst: 10}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 20, Burst: 40}

	cfg.SeedAdminEmail = strings.TrimSpace(getEnv("SEED_ADMIN_EMAIL", "admin@brotherhood.local"))
	cfg.SeedAdminPassword = getEnv("SEED_ADMIN_PASSWORD", "")
	if cfg.SeedAdminPassword == "" {
		return nil, errors.New("SEED_ADMIN_PASSWORD is required")
	}

	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", "info"))

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " is invalid")
	}
	return dur, nil
}

func parseIntEnv(key string, def int) (int, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, errors.New(key + " is invalid")
	}
	return n, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f <= 0 {
		return 0, errors.New(key + " is invalid")
	}
	return f, nil
}
