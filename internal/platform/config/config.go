package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendBolt     = "bolt"
)

// Config is the full process configuration.
type Config struct {
	Server Server
	Log    Log
	Auth   Auth
	Store  Store
	Redis  RedisConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	OpsAddr         string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type Log struct {
	Level  string
	Format string
}

// Auth is the single shared credential. PasswordHash, when set, wins over
// Password.
type Auth struct {
	Username     string
	Password     string
	PasswordHash string
}

// Store selects and locates the document store.
type Store struct {
	Backend     string
	Container   string
	DatabaseURL string
	BoltPath    string
}

// RedisConfig holds the connection settings used by the redis backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load reads the given .env files (default ".env") into the environment,
// skipping missing files, and then builds the configuration. Variables already
// set in the environment are not overridden.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return d
	}
	integer := func(key string, def int) int {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return n
	}

	cfg := Config{
		Server: Server{
			Addr:            getenv("EXPENSES_ADDR", ":8080"),
			OpsAddr:         getenv("OPS_ADDR", ":9090"),
			RequestTimeout:  duration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: Log{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
		Auth: Auth{
			Username:     os.Getenv("AUTH_USERNAME"),
			Password:     os.Getenv("AUTH_PASSWORD"),
			PasswordHash: os.Getenv("AUTH_PASSWORD_HASH"),
		},
		Store: Store{
			Backend:     getenv("STORE_BACKEND", BackendMemory),
			Container:   getenv("STORE_CONTAINER", "expenses"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			BoltPath:    getenv("BOLT_PATH", "expenses.db"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Auth.Username == "" {
		errs = append(errs, errors.New("AUTH_USERNAME is required"))
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		errs = append(errs, errors.New("AUTH_PASSWORD or AUTH_PASSWORD_HASH is required"))
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis backend"))
		}
	case BackendBolt:
		if c.Store.BoltPath == "" {
			errs = append(errs, errors.New("BOLT_PATH is required for the bolt backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND: unknown backend %q", c.Store.Backend))
	}
	if c.Store.Container == "" {
		errs = append(errs, errors.New("STORE_CONTAINER must not be empty"))
	}
	return errors.Join(errs...)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
