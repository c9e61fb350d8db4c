package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultDatabaseURL = "task_manager.db"
	insecureSecret     = "insecure-development-secret"
)

// Config keeps runtime settings for the web app and its maintenance commands.
type Config struct {
	Env              string
	Addr             string
	DatabaseURL      string
	SecretKey        string
	StoreTimeout     time.Duration
	SessionTTL       time.Duration
	TelegramToken    string
	ReminderTime     string
	BackfillInterval time.Duration
}

// Production reports whether hardened settings are required.
func (c Config) Production() bool {
	return c.Env == EnvProduction
}

// Load reads an optional dotenv file, then environment variables on top of it.
// Outside production a missing DATABASE_URL or SECRET_KEY falls back to a local
// default with a warning; in production both are required.
func Load(envFile string) (Config, error) {
	v := viper.New()
	v.SetDefault("app_env", EnvDevelopment)
	v.SetDefault("addr", ":8080")
	v.SetDefault("store_timeout_seconds", 5)
	v.SetDefault("session_ttl_hours", 24*7)
	v.SetDefault("reminder_time", "09:00")
	v.SetDefault("backfill_interval_hours", 0)
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	cfg := Config{
		Env:              strings.ToLower(strings.TrimSpace(v.GetString("app_env"))),
		Addr:             strings.TrimSpace(v.GetString("addr")),
		DatabaseURL:      strings.TrimSpace(v.GetString("database_url")),
		SecretKey:        strings.TrimSpace(v.GetString("secret_key")),
		StoreTimeout:     seconds(v.GetInt("store_timeout_seconds")),
		SessionTTL:       hours(v.GetInt("session_ttl_hours")),
		TelegramToken:    strings.TrimSpace(v.GetString("telegram_token")),
		ReminderTime:     strings.TrimSpace(v.GetString("reminder_time")),
		BackfillInterval: hours(v.GetInt("backfill_interval_hours")),
	}

	if cfg.Env == "" {
		cfg.Env = EnvDevelopment
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.StoreTimeout == 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}

	if cfg.Production() {
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required in production")
		}
		if cfg.SecretKey == "" {
			return cfg, fmt.Errorf("SECRET_KEY is required in production")
		}
		return cfg, nil
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
		log.Printf("[warn] DATABASE_URL not set, using %s", defaultDatabaseURL)
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = insecureSecret
		log.Printf("[warn] SECRET_KEY not set, sessions are signed with an insecure default")
	}

	return cfg, nil
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func hours(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Hour
}
