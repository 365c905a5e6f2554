package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the client and the reference authority.
type Config struct {
	Store  StoreConfig
	Sync   SyncConfig
	Log    LogConfig
	Remote RemoteConfig
}

// StoreConfig holds the local store configuration
type StoreConfig struct {
	Path string
}

// SyncConfig holds the outbox sync configuration.
// An empty APIURL runs the client local-only.
type SyncConfig struct {
	APIURL        string
	APIToken      string
	Interval      time.Duration
	ProbeInterval time.Duration
	HTTPTimeout   time.Duration
}

// LocalOnly reports whether no remote authority is configured.
func (c SyncConfig) LocalOnly() bool {
	return c.APIURL == ""
}

type LogConfig struct {
	Level  string
	Format string
}

// RemoteConfig holds the reference authority configuration.
// DSN selects the database: a postgres:// URL uses lib/pq, anything else is
// treated as a SQLite path.
type RemoteConfig struct {
	Addr      string
	DSN       string
	JWTSecret string
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists. Variables already set in the
// environment win over the file.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// LoadFile is Load with an explicit env file. A missing file is an error.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, err
	}
	return FromEnv(), nil
}

// FromEnv reads configuration from the environment only.
func FromEnv() *Config {
	return &Config{
		Store: StoreConfig{
			Path: getEnv("PROCOUNT_DB_PATH", "procount.db"),
		},
		Sync: SyncConfig{
			APIURL:        getEnv("PROCOUNT_API_URL", ""),
			APIToken:      getEnv("PROCOUNT_API_TOKEN", ""),
			Interval:      getEnvAsDuration("PROCOUNT_SYNC_INTERVAL", 60*time.Second),
			ProbeInterval: getEnvAsDuration("PROCOUNT_PROBE_INTERVAL", 10*time.Second),
			HTTPTimeout:   getEnvAsDuration("PROCOUNT_HTTP_TIMEOUT", 15*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("PROCOUNT_LOG_LEVEL", "info"),
			Format: getEnv("PROCOUNT_LOG_FORMAT", "text"),
		},
		Remote: RemoteConfig{
			Addr:      getEnv("PROCOUNT_REMOTE_ADDR", ":8080"),
			DSN:       getEnv("PROCOUNT_REMOTE_DSN", "authority.db"),
			JWTSecret: getEnv("PROCOUNT_JWT_SECRET", ""),
		},
	}
}

// Helper functions to read environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if d, err := time.ParseDuration(valueStr); err == nil && d > 0 {
		return d
	}
	if secs := getEnvAsInt(key, 0); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
