package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Momo     MomoConfig
	Sweep    SweepConfig
	Queue    QueueConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// AdminConfig seeds the back-office user on first start.
type AdminConfig struct {
	Email    string
	Password string
}

// MomoConfig is the per-merchant MTN MoMo configuration. The disbursement
// key may be empty; refunds are disabled without it.
type MomoConfig struct {
	BaseURL         string
	Environment     string
	APIUserID       string
	APISecret       string
	CollectionKey   string
	DisbursementKey string
	// SiteURL is the public base URL the provider calls back on.
	SiteURL string
}

type SweepConfig struct {
	Interval time.Duration
	Window   time.Duration
}

type QueueConfig struct {
	Workers int
	Buffer  int
}

// KafkaConfig enables publishing payment lifecycle events. Disabled unless
// brokers are set.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envStr("PORT", "8080"),
			Env:          envStr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envStr("DB_DSN", "tikiti:tikiti@tcp(localhost:3306)/tikiti?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: envStr("JWT_SECRET", "change-me-in-production"),
			AccessExpiry: envDur("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:       "tikiti",
		},
		Admin: AdminConfig{
			Email:    envStr("ADMIN_EMAIL", "admin@example.com"),
			Password: envStr("ADMIN_PASSWORD", ""),
		},
		Momo: MomoConfig{
			BaseURL:         envStr("MOMO_BASE_URL", "https://sandbox.momodeveloper.mtn.com/"),
			Environment:     envStr("MOMO_ENVIRONMENT", "sandbox"),
			APIUserID:       envStr("MOMO_API_USER_ID", ""),
			APISecret:       envStr("MOMO_API_SECRET", ""),
			CollectionKey:   envStr("MOMO_COLLECTION_KEY", ""),
			DisbursementKey: envStr("MOMO_DISBURSEMENT_KEY", ""),
			SiteURL:         envStr("SITE_URL", "http://localhost:8080"),
		},
		Sweep: SweepConfig{
			Interval: envDur("SWEEP_INTERVAL", 5*time.Minute),
			Window:   envDur("SWEEP_WINDOW", 24*time.Hour),
		},
		Queue: QueueConfig{
			Workers: envInt("QUEUE_WORKERS", 4),
			Buffer:  envInt("QUEUE_BUFFER", 64),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envStr("KAFKA_TOPIC", "payment_events"),
		},
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
