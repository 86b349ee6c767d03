package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type StoreConfig struct {
	Backend     string
	DatabaseURL string
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the Kafka event sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// EngineConfig carries the identifiers bound into every signed attestation.
type EngineConfig struct {
	ProgramID  domain.Identity
	RegistryID domain.Identity
}

type AuthConfig struct {
	Audience    string
	MaxTokenTTL time.Duration
}

type EventsConfig struct {
	BufferSize    int
	FlushInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	Server Server
	Store  StoreConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Engine EngineConfig
	Auth   AuthConfig
	Events EventsConfig
	Log    LogConfig
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	cfg := Config{
		Server: Server{
			Addr:            getenv("TRUSTSCORE_ADDR", ":8080"),
			ShutdownTimeout: durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second, fail),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(getenv("TRUSTSCORE_STORE", StoreMemory)),
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intEnv("REDIS_POOL_SIZE", 10, fail),
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getenv("KAFKA_TOPIC", "trustscore.events"),
		},
		Engine: EngineConfig{
			ProgramID:  identityEnv("PROGRAM_ID", "trustscore-dev-program", fail),
			RegistryID: identityEnv("REGISTRY_ID", "trustscore-dev-registry", fail),
		},
		Auth: AuthConfig{
			Audience:    getenv("AUTH_AUDIENCE", "trustscore"),
			MaxTokenTTL: durationEnv("AUTH_MAX_TOKEN_TTL", 15*time.Minute, fail),
		},
		Events: EventsConfig{
			BufferSize:    intEnv("EVENT_BUFFER_SIZE", 1024, fail),
			FlushInterval: durationEnv("EVENT_FLUSH_INTERVAL", time.Second, fail),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getenv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getenv("LOG_FORMAT", "json")),
		},
	}

	switch cfg.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		if cfg.Store.DatabaseURL == "" {
			fail("DATABASE_URL is required for the postgres store")
		}
	case StoreRedis:
		if cfg.Redis.URL == "" {
			fail("REDIS_URL is required for the redis store")
		}
	default:
		fail("TRUSTSCORE_STORE must be memory, postgres or redis, got %q", cfg.Store.Backend)
	}
	if cfg.Engine.ProgramID == cfg.Engine.RegistryID {
		fail("PROGRAM_ID and REGISTRY_ID must differ")
	}
	if cfg.Auth.MaxTokenTTL <= 0 {
		fail("AUTH_MAX_TOKEN_TTL must be positive")
	}
	if cfg.Events.BufferSize <= 0 {
		fail("EVENT_BUFFER_SIZE must be positive")
	}
	if cfg.Redis.PoolSize <= 0 {
		fail("REDIS_POOL_SIZE must be positive")
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		fail("LOG_FORMAT must be json or text")
	}

	if len(errs) > 0 {
		return Config{}, dErrors.New(dErrors.CodeInvalidConfig, strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func intEnv(key string, fallback int, fail func(string, ...any)) int {
	v := getenv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fail("%s must be an integer", key)
		return fallback
	}
	return n
}

func durationEnv(key string, fallback time.Duration, fail func(string, ...any)) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fail("%s must be a duration", key)
		return fallback
	}
	return d
}

// identityEnv parses a base58 identity. Unset values fall back to a
// deterministic development identifier derived from seed.
func identityEnv(key, seed string, fail func(string, ...any)) domain.Identity {
	v := getenv(key, "")
	if v == "" {
		return domain.Identity(sha256.Sum256([]byte(seed)))
	}
	id, err := domain.ParseIdentity(v)
	if err != nil {
		fail("%s: %s", key, dErrors.MessageOf(err))
	}
	return id
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
