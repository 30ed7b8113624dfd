package config

import (
	"fmt"
	"strings"
	"time"

	"folio-backend/internal/domain"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	HealthAdminKey      string
	LogLevel            string
	SessionCookie       string
	DevPassword         string

	// Timezone decides which calendar day a snapshot belongs to.
	Timezone  string
	DailyCron string

	FetchWorkers  int
	ItemTimeout   time.Duration
	BatchTimeout  time.Duration
	HTTPTimeout   time.Duration
	DefaultFXRate float64

	MinRequestDelay   time.Duration
	MaxRequestDelay   time.Duration
	RequestsPerSecond float64
	UserAgents        []string // FETCH_USER_AGENTS, "|" separated
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8888")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_COOKIE", "folio.sid")
	v.SetDefault("TZ_NAME", "Asia/Tokyo")
	v.SetDefault("DAILY_CRON", "58 23 * * *")
	v.SetDefault("FETCH_WORKERS", 5)
	v.SetDefault("FETCH_ITEM_TIMEOUT", "12s")
	v.SetDefault("FETCH_BATCH_TIMEOUT", "3m")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("DEFAULT_FX_RATE", 150.0)
	v.SetDefault("FETCH_MIN_DELAY", "500ms")
	v.SetDefault("FETCH_MAX_DELAY", "1500ms")
	v.SetDefault("FETCH_RPS", 2.0)

	cfg := &Config{
		Env:                 v.GetString("APP_ENV"),
		Port:                v.GetString("PORT"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		SessionCookie:       v.GetString("SESSION_COOKIE"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		Timezone:            v.GetString("TZ_NAME"),
		DailyCron:           v.GetString("DAILY_CRON"),
		FetchWorkers:        v.GetInt("FETCH_WORKERS"),
		ItemTimeout:         v.GetDuration("FETCH_ITEM_TIMEOUT"),
		BatchTimeout:        v.GetDuration("FETCH_BATCH_TIMEOUT"),
		HTTPTimeout:         v.GetDuration("HTTP_TIMEOUT"),
		DefaultFXRate:       v.GetFloat64("DEFAULT_FX_RATE"),
		MinRequestDelay:     v.GetDuration("FETCH_MIN_DELAY"),
		MaxRequestDelay:     v.GetDuration("FETCH_MAX_DELAY"),
		RequestsPerSecond:   v.GetFloat64("FETCH_RPS"),
		UserAgents:          splitList(v.GetString("FETCH_USER_AGENTS")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := domain.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TZ_NAME %q: %w", c.Timezone, err)
	}
	if c.FetchWorkers <= 0 {
		return fmt.Errorf("FETCH_WORKERS must be positive, got %d", c.FetchWorkers)
	}
	if c.ItemTimeout <= 0 || c.BatchTimeout <= 0 {
		return fmt.Errorf("fetch timeouts must be positive")
	}
	if c.MaxRequestDelay < c.MinRequestDelay {
		return fmt.Errorf("FETCH_MAX_DELAY (%s) is below FETCH_MIN_DELAY (%s)", c.MaxRequestDelay, c.MinRequestDelay)
	}
	if c.DefaultFXRate <= 0 {
		return fmt.Errorf("DEFAULT_FX_RATE must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location returns the snapshot timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := domain.LoadLocation(c.Timezone)
	if err != nil {
		return domain.Tokyo
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
