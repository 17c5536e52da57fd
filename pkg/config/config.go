package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	SOL       SOLConfig
	Scheduler SchedulerConfig
	Events    EventsConfig
	Alerts    AlertsConfig
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

// SOLConfig tunes statute-of-limitations calculation behaviour.
type SOLConfig struct {
	DefaultStatutoryYears int
	JurisdictionCacheTTL  time.Duration
}

// SchedulerConfig controls the daily SOL batch runner.
type SchedulerConfig struct {
	Enabled       bool
	DailyHourUTC  int
	BatchSize     int
	RetryAttempts int
	RetryDelay    time.Duration
}

// EventsConfig sizes the asynchronous recalculation queue.
type EventsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// AlertsConfig holds expiration alert thresholds in days.
type AlertsConfig struct {
	CriticalDays int
	HighDays     int
	MediumDays   int
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

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

	cfg.SOL = SOLConfig{
		DefaultStatutoryYears: v.GetInt("SOL_DEFAULT_STATUTORY_YEARS"),
		JurisdictionCacheTTL:  parseDuration(v.GetString("SOL_JURISDICTION_CACHE_TTL"), time.Hour),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:       v.GetBool("SOL_SCHEDULER_ENABLED"),
		DailyHourUTC:  v.GetInt("SOL_SCHEDULER_HOUR_UTC"),
		BatchSize:     v.GetInt("SOL_SCHEDULER_BATCH_SIZE"),
		RetryAttempts: v.GetInt("SOL_SCHEDULER_RETRY_ATTEMPTS"),
		RetryDelay:    parseDuration(v.GetString("SOL_SCHEDULER_RETRY_DELAY"), 5*time.Minute),
	}

	cfg.Events = EventsConfig{
		Workers:    v.GetInt("SOL_EVENT_WORKERS"),
		BufferSize: v.GetInt("SOL_EVENT_BUFFER_SIZE"),
		MaxRetries: v.GetInt("SOL_EVENT_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("SOL_EVENT_RETRY_DELAY"), 2*time.Second),
	}

	cfg.Alerts = AlertsConfig{
		CriticalDays: v.GetInt("SOL_ALERT_CRITICAL_DAYS"),
		HighDays:     v.GetInt("SOL_ALERT_HIGH_DAYS"),
		MediumDays:   v.GetInt("SOL_ALERT_MEDIUM_DAYS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "nplvision")
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

	v.SetDefault("SOL_DEFAULT_STATUTORY_YEARS", 6)
	v.SetDefault("SOL_JURISDICTION_CACHE_TTL", "1h")

	v.SetDefault("SOL_SCHEDULER_ENABLED", true)
	v.SetDefault("SOL_SCHEDULER_HOUR_UTC", 2)
	v.SetDefault("SOL_SCHEDULER_BATCH_SIZE", 100)
	v.SetDefault("SOL_SCHEDULER_RETRY_ATTEMPTS", 3)
	v.SetDefault("SOL_SCHEDULER_RETRY_DELAY", "5m")

	v.SetDefault("SOL_EVENT_WORKERS", 2)
	v.SetDefault("SOL_EVENT_BUFFER_SIZE", 64)
	v.SetDefault("SOL_EVENT_MAX_RETRIES", 3)
	v.SetDefault("SOL_EVENT_RETRY_DELAY", "2s")

	v.SetDefault("SOL_ALERT_CRITICAL_DAYS", 30)
	v.SetDefault("SOL_ALERT_HIGH_DAYS", 60)
	v.SetDefault("SOL_ALERT_MEDIUM_DAYS", 90)
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
