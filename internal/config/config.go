package config

import (
	"errors"
	"sync"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	AppPort               int    `mapstructure:"APP_PORT"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	LogFormat             string `mapstructure:"LOG_FORMAT"`
	MongoURI              string `mapstructure:"MONGO_URI"`
	MongoDBName           string `mapstructure:"MONGO_DB_NAME"`
	RedisAddr             string `mapstructure:"REDIS_ADDR"`
	JWTSecret             string `mapstructure:"JWT_SECRET"`
	IdentityTokenHours    int    `mapstructure:"IDENTITY_TOKEN_HOURS"`
	IdentityRatePerMin    int    `mapstructure:"IDENTITY_RATE_PER_MIN"`
	LockTTLMinutes        int    `mapstructure:"LOCK_TTL_MINUTES"`
	LockHeartbeatSec      int    `mapstructure:"LOCK_HEARTBEAT_SEC"`
	RosterFile            string `mapstructure:"ROSTER_FILE"`
	PendingQueueFile      string `mapstructure:"PENDING_QUEUE_FILE"`
	ReplayIntervalSec     int    `mapstructure:"REPLAY_INTERVAL_SEC"`
	MinioEndpoint         string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey        string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey        string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket           string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL           bool   `mapstructure:"MINIO_USE_SSL"`
	WSOutboxBuffer        int    `mapstructure:"WS_OUTBOX_BUFFER"`
	WSMaxSessionSec       int    `mapstructure:"WS_MAX_SESSION_SEC"`
	RouteMetricsEnabled   bool   `mapstructure:"ROUTE_METRICS_ENABLED"`
	RequestLoggingEnabled bool   `mapstructure:"REQUEST_LOGGING_ENABLED"`
}

var (
	cachedConfig *Config
	configMutex  sync.RWMutex
)

// Load loads configuration from environment variables and .env file
// It caches the result for subsequent calls
func Load() (Config, error) {
	configMutex.RLock()
	if cachedConfig != nil {
		defer configMutex.RUnlock()
		return *cachedConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	// Double-check in case another goroutine loaded it while we waited for the lock
	if cachedConfig != nil {
		return *cachedConfig, nil
	}

	v := viper.New()

	// Set defaults
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB_NAME", "rosterpulse")
	v.SetDefault("REDIS_ADDR", "redis://redis:6379")
	v.SetDefault("JWT_SECRET", "this-is-a-default-jwt-secret-key-with-32-plus-characters")
	v.SetDefault("IDENTITY_TOKEN_HOURS", 12)
	v.SetDefault("IDENTITY_RATE_PER_MIN", 10)
	v.SetDefault("LOCK_TTL_MINUTES", 5)
	v.SetDefault("LOCK_HEARTBEAT_SEC", 30)
	v.SetDefault("ROSTER_FILE", "./roster.txt")
	v.SetDefault("PENDING_QUEUE_FILE", "./pending-notes.json")
	v.SetDefault("REPLAY_INTERVAL_SEC", 60)
	v.SetDefault("MINIO_ENDPOINT", "minio:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "player-photos")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("WS_OUTBOX_BUFFER", 256) // WebSocket channel buffer size
	v.SetDefault("WS_MAX_SESSION_SEC", 900)
	v.SetDefault("ROUTE_METRICS_ENABLED", true)
	v.SetDefault("REQUEST_LOGGING_ENABLED", false)

	// Configure Viper to read from .env file (if present)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// Try to read .env file (it's okay if it doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	// Override with OS environment variables
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	// Cache the configuration
	cachedConfig = &cfg

	return cfg, nil
}

// ResetCache clears the cached configuration (for testing purposes)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	cachedConfig = nil
}

// Validate checks if required configuration fields are properly set
func (c Config) Validate() error {
	if c.AppPort <= 0 {
		return errors.New("APP_PORT must be greater than 0")
	}
	if c.LogLevel == "" {
		return errors.New("LOG_LEVEL cannot be empty")
	}
	if c.LogFormat == "" {
		return errors.New("LOG_FORMAT cannot be empty")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI cannot be empty")
	}
	if c.MongoDBName == "" {
		return errors.New("MONGO_DB_NAME cannot be empty")
	}
	if c.RedisAddr == "" {
		return errors.New("REDIS_ADDR cannot be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET cannot be empty")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters for HS256")
	}
	if c.IdentityTokenHours <= 0 {
		return errors.New("IDENTITY_TOKEN_HOURS must be greater than 0")
	}
	if c.LockTTLMinutes <= 0 {
		return errors.New("LOCK_TTL_MINUTES must be greater than 0")
	}
	if c.LockHeartbeatSec <= 0 {
		return errors.New("LOCK_HEARTBEAT_SEC must be greater than 0")
	}
	if c.LockHeartbeatSec*2 > c.LockTTLMinutes*60 {
		return errors.New("LOCK_HEARTBEAT_SEC must be at most half of the lock TTL")
	}
	if c.RosterFile == "" {
		return errors.New("ROSTER_FILE cannot be empty")
	}
	if c.PendingQueueFile == "" {
		return errors.New("PENDING_QUEUE_FILE cannot be empty")
	}
	if c.ReplayIntervalSec <= 0 {
		return errors.New("REPLAY_INTERVAL_SEC must be greater than 0")
	}
	if c.WSOutboxBuffer <= 0 {
		return errors.New("WS_OUTBOX_BUFFER must be greater than 0")
	}
	if c.WSMaxSessionSec <= 0 {
		return errors.New("WS_MAX_SESSION_SEC must be greater than 0")
	}
	return nil
}
