package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// App
	Env string // dev / staging / prod
	// HTTP
	HTTPAddr string
	// Auth / Security
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration

	// Infrastructure
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// One-time token flows (registration confirm / password reset)
	RegistrationTokenTTL  time.Duration
	PasswordResetTokenTTL time.Duration

	// Notification dispatch
	NotifyMode            string // http / amqp / noop
	NotifyRegistrationURL string
	NotifyPasswordURL     string
	RabbitURL             string
	RabbitExchange        string
}

func Load() (*Config, error) {
	// .env is optional; system environment always wins.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "account-service")

	att, err := getDuration("ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = att

	// One-time token TTLs
	rtt, err := getDuration("REGISTRATION_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.RegistrationTokenTTL = rtt

	prt, err := getDuration("PASSWORD_RESET_TOKEN_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.PasswordResetTokenTTL = prt

	// Infrastructure dependencies.
	// The service cannot operate without its backing stores, so fail fast
	// instead of starting in a partially-initialized state.
	cfg.MongoURI = os.Getenv("MONGO_URI")
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("missing required env var: MONGO_URI")
	}
	cfg.MongoDatabase = getEnv("MONGO_DATABASE", "accounts")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("missing required env var: REDIS_ADDR")
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB, err = getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	// Notification dispatch
	cfg.NotifyMode = getEnv("NOTIFY_MODE", "http")
	switch cfg.NotifyMode {
	case "http":
		cfg.NotifyRegistrationURL = os.Getenv("NOTIFY_REGISTRATION_URL")
		if cfg.NotifyRegistrationURL == "" {
			return nil, fmt.Errorf("missing required env var: NOTIFY_REGISTRATION_URL")
		}
		cfg.NotifyPasswordURL = os.Getenv("NOTIFY_PASSWORD_RESET_URL")
		if cfg.NotifyPasswordURL == "" {
			return nil, fmt.Errorf("missing required env var: NOTIFY_PASSWORD_RESET_URL")
		}
	case "amqp":
		cfg.RabbitURL = os.Getenv("RABBIT_URL")
		if cfg.RabbitURL == "" {
			return nil, fmt.Errorf("missing required env var: RABBIT_URL")
		}
		cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "account.events")
	case "noop":
		// nothing to configure
	default:
		return nil, fmt.Errorf("invalid NOTIFY_MODE: %q", cfg.NotifyMode)
	}

	// Timeout values are optional and have defaults.
	rt, err := getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPReadTimeout = rt

	wt, err := getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPWriteTimeout = wt

	it, err := getDuration("HTTP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.HTTPIdleTimeout = it

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q: %w", key, v, err)
	}
	return n, nil
}
