package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/game/constants"
	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/joho/godotenv"
)

const (
	DefaultDatabaseURL         = "sqlite://cookiemaze.db"
	DefaultSQLiteMigrations    = "migrations/sqlite"
	DefaultPostgresMigrations  = "migrations/postgres"
	DefaultPublicURL           = "http://localhost:9090"
	DefaultCreateRatePerMinute = 10
)

// Config holds the server configuration read from the environment.
type Config struct {
	DatabaseURL        string
	SQLiteMigrations   string
	PostgresMigrations string

	GameTTL           time.Duration
	GracePeriod       time.Duration
	BroadcastInterval time.Duration
	SnapshotInterval  time.Duration
	CleanupInterval   time.Duration

	PublicURL           string
	CreateRatePerMinute int

	TLSCertFile string
	TLSKeyFile  string
}

// TLSEnabled is true when both a certificate and a key are configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// Load reads a .env file if there is one and then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not loaded: %v", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup. Missing or invalid values fall back
// to their defaults.
func FromLookup(lookup func(key string) (string, bool)) *Config {
	env := &environment{lookup: lookup}
	return &Config{
		DatabaseURL:        env.String("COOKIEMAZE_DATABASE_URL", DefaultDatabaseURL),
		SQLiteMigrations:   env.String("COOKIEMAZE_SQLITE_MIGRATIONS", DefaultSQLiteMigrations),
		PostgresMigrations: env.String("COOKIEMAZE_POSTGRES_MIGRATIONS", DefaultPostgresMigrations),

		GameTTL:           env.Duration("COOKIEMAZE_GAME_TTL", constants.GameTTL),
		GracePeriod:       env.Duration("COOKIEMAZE_GRACE_PERIOD", constants.ReconnectGracePeriod),
		BroadcastInterval: env.Duration("COOKIEMAZE_BROADCAST_INTERVAL", constants.BroadcastInterval),
		SnapshotInterval:  env.Duration("COOKIEMAZE_SNAPSHOT_INTERVAL", constants.SnapshotInterval),
		CleanupInterval:   env.Duration("COOKIEMAZE_CLEANUP_INTERVAL", constants.CleanupInterval),

		PublicURL:           env.String("COOKIEMAZE_PUBLIC_URL", DefaultPublicURL),
		CreateRatePerMinute: env.Int("COOKIEMAZE_CREATE_RATE", DefaultCreateRatePerMinute),

		TLSCertFile: env.String("COOKIEMAZE_TLS_CERT", ""),
		TLSKeyFile:  env.String("COOKIEMAZE_TLS_KEY", ""),
	}
}

type environment struct {
	lookup func(key string) (string, bool)
}

func (e *environment) String(key, fallback string) string {
	if value, ok := e.lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func (e *environment) Int(key string, fallback int) int {
	raw, ok := e.lookup(key)
	if !ok || raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		log.Warn("Invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}

func (e *environment) Duration(key string, fallback time.Duration) time.Duration {
	raw, ok := e.lookup(key)
	if !ok || raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		log.Warn("Invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return value
}
