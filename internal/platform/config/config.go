package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// StoreBackend names the persistent key-value backend.
type StoreBackend string

const (
	StoreFile   StoreBackend = "file"
	StoreMemory StoreBackend = "memory"
	StoreRedis  StoreBackend = "redis"
)

// DefaultAPIBaseURL is the EduRider backend the guardian app talks to.
const DefaultAPIBaseURL = "https://edurider.radr.in"

// Config captures everything the guardian client reads from its environment.
type Config struct {
	API      APIConfig
	Store    StoreConfig
	Redis    RedisConfig
	Session  SessionConfig
	HTTPAddr string
	Log      LogConfig
}

// APIConfig configures the remote API client.
type APIConfig struct {
	BaseURL     string
	Timeout     time.Duration
	RedirectURI string
}

// StoreConfig selects and locates the persistent store.
type StoreConfig struct {
	Backend StoreBackend
	Path    string
}

// RedisConfig holds connection settings for the Redis store backend.
type RedisConfig struct {
	URL          string
	KeyPrefix    string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SessionConfig tunes the session store.
type SessionConfig struct {
	ClearAttempts int
}

// LogConfig selects log level and handler format ("text" or "json").
type LogConfig struct {
	Level  string
	Format string
}

// FromEnv loads an optional .env file from the working directory and then
// builds a Config from environment variables, falling back to defaults.
func FromEnv() Config {
	// A missing .env file is the normal case.
	_ = godotenv.Load()

	backend := StoreBackend(strings.ToLower(getenv("GUARDIAN_STORE", string(StoreFile))))
	switch backend {
	case StoreFile, StoreMemory, StoreRedis:
	default:
		backend = StoreFile
	}

	clearAttempts := getenvInt("GUARDIAN_CLEAR_ATTEMPTS", 2)
	if clearAttempts < 1 {
		clearAttempts = 1
	}

	return Config{
		API: APIConfig{
			BaseURL:     strings.TrimRight(getenv("GUARDIAN_API_BASE_URL", DefaultAPIBaseURL), "/"),
			Timeout:     getenvDuration("GUARDIAN_API_TIMEOUT", 15*time.Second),
			RedirectURI: getenv("GUARDIAN_REDIRECT_URI", "guardianapp://"),
		},
		Store: StoreConfig{
			Backend: backend,
			Path:    getenv("GUARDIAN_STORE_PATH", defaultStorePath()),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("GUARDIAN_REDIS_URL"),
			KeyPrefix:    getenv("GUARDIAN_REDIS_KEY_PREFIX", "guardian:"),
			PoolSize:     getenvInt("GUARDIAN_REDIS_POOL_SIZE", 4),
			MinIdleConns: getenvInt("GUARDIAN_REDIS_MIN_IDLE_CONNS", 0),
			DialTimeout:  getenvDuration("GUARDIAN_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("GUARDIAN_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("GUARDIAN_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Session: SessionConfig{
			ClearAttempts: clearAttempts,
		},
		HTTPAddr: getenv("GUARDIAN_HTTP_ADDR", "127.0.0.1:8765"),
		Log: LogConfig{
			Level:  strings.ToLower(getenv("GUARDIAN_LOG_LEVEL", "info")),
			Format: strings.ToLower(getenv("GUARDIAN_LOG_FORMAT", "text")),
		},
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".guardian", "store.json")
	}
	return filepath.Join(home, ".guardian", "store.json")
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
