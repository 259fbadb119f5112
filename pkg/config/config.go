package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Distributor settings storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	CORS         CORSConfig
	Log          LogConfig
	PriceSync    PriceSyncConfig
	Distributors DistributorsConfig
	Audit        AuditConfig
	Realtime     RealtimeConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PriceSyncConfig tunes the distributor price review workflow.
type PriceSyncConfig struct {
	Enabled         bool
	ResolveDelay    time.Duration
	PageSize        int
	DefaultOperator string
	SeedFile        string
	Workers         int
}

// DistributorsConfig selects where configured flags live and the simulated latencies.
type DistributorsConfig struct {
	SettingsBackend string
	SettingsKey     string
	TestDelay       time.Duration
	RedirectDelay   time.Duration
}

// AuditConfig toggles the Postgres audit sink.
type AuditConfig struct {
	Enabled bool
}

// RealtimeConfig toggles the websocket event feed.
type RealtimeConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	pageSize := v.GetInt("PRICE_SYNC_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 10
	}
	cfg.PriceSync = PriceSyncConfig{
		Enabled:         v.GetBool("ENABLE_PRICE_SYNC"),
		ResolveDelay:    parseDuration(v.GetString("PRICE_SYNC_RESOLVE_DELAY"), 1500*time.Millisecond),
		PageSize:        pageSize,
		DefaultOperator: strings.TrimSpace(v.GetString("PRICE_SYNC_DEFAULT_OPERATOR")),
		SeedFile:        strings.TrimSpace(v.GetString("PRICE_SYNC_SEED_FILE")),
		Workers:         v.GetInt("PRICE_SYNC_WORKERS"),
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("DISTRIBUTOR_SETTINGS_BACKEND")))
	if backend != BackendRedis {
		backend = BackendMemory
	}
	cfg.Distributors = DistributorsConfig{
		SettingsBackend: backend,
		SettingsKey:     v.GetString("DISTRIBUTOR_SETTINGS_KEY"),
		TestDelay:       parseDuration(v.GetString("DISTRIBUTOR_TEST_DELAY"), 800*time.Millisecond),
		RedirectDelay:   parseDuration(v.GetString("DISTRIBUTOR_REDIRECT_DELAY"), 2*time.Second),
	}

	cfg.Audit = AuditConfig{Enabled: v.GetBool("ENABLE_AUDIT_DB")}
	cfg.Realtime = RealtimeConfig{Enabled: v.GetBool("ENABLE_REALTIME")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "marketplace_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_PRICE_SYNC", true)
	v.SetDefault("PRICE_SYNC_RESOLVE_DELAY", "1500ms")
	v.SetDefault("PRICE_SYNC_PAGE_SIZE", 10)
	v.SetDefault("PRICE_SYNC_DEFAULT_OPERATOR", "admin@marketplace.local")
	v.SetDefault("PRICE_SYNC_SEED_FILE", "")
	v.SetDefault("PRICE_SYNC_WORKERS", 1)

	v.SetDefault("DISTRIBUTOR_SETTINGS_BACKEND", BackendMemory)
	v.SetDefault("DISTRIBUTOR_SETTINGS_KEY", "marketplace:distributor_settings")
	v.SetDefault("DISTRIBUTOR_TEST_DELAY", "800ms")
	v.SetDefault("DISTRIBUTOR_REDIRECT_DELAY", "2s")

	v.SetDefault("ENABLE_AUDIT_DB", false)
	v.SetDefault("ENABLE_REALTIME", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
