// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/war/internal/game"
	"github.com/sirupsen/logrus"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config is the service configuration read from the environment.
type Config struct {
	Port     string
	Env      string // dev or production
	LogLevel string

	Store       string
	DatabaseURL string

	RedisAddr       string // empty disables Redis
	RedisDB         int
	QueueName       string
	RankingCacheTTL time.Duration

	Rules game.Rules

	AllowedOrigins []string

	HistorianBatchSize int
	HistorianFlush     time.Duration

	ReminderFrom string
}

// Load reads the configuration. Binaries load .env beforehand through godotenv.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("WAR_ENV", "dev"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Store:              getEnv("STORE", StoreMemory),
		DatabaseURL:        databaseURL(),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		QueueName:          getEnv("HISTORIAN_QUEUE_NAME", "war_battles"),
		RankingCacheTTL:    getEnvDuration("RANKING_CACHE_TTL", 30*time.Second),
		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlush:     time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		ReminderFrom:       getEnv("REMINDER_FROM", "noreply@war.local"),
		Rules: game.Rules{
			DeckSize:     getEnvInt("DECK_SIZE", game.ShortDeckSize),
			TrackHistory: getEnvBool("TRACK_HISTORY", true),
		},
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	if err := cfg.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("DECK_SIZE: %w", err)
	}
	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORE=postgres requires DATABASE_URL or PG_HOST")
		}
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}
	if cfg.HistorianBatchSize <= 0 {
		return nil, fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive")
	}
	return cfg, nil
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool {
	return c.Env == "production" || c.Env == "prod"
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from the
// individual POSTGRES_*/PG_* variables.
func databaseURL() string {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u
	}
	host := os.Getenv("PG_HOST")
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD")),
		Host:   host + ":" + getEnv("PG_PORT", "5432"),
		Path:   "/" + os.Getenv("PG_DATABASE"),
	}
	return u.String()
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return d
}

// NewLogger builds the service logger: JSON in production, text otherwise.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.Production() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
