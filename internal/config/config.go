package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	PostgresDSN     string
	RedisAddr       string
	KafkaBrokers    []string
	LedgerTopic     string
	JWTSecret       string
	ListenAddr      string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using default values", "error", err)
	}

	cfg := &Config{
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaBrokers:    []string{os.Getenv("KAFKA_BROKER")},
		LedgerTopic:     os.Getenv("LEDGER_TOPIC"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ListenAddr:      os.Getenv("LISTEN_ADDR"),
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}

	if cfg.PostgresDSN == "" {
		cfg.PostgresDSN = "host=localhost user=postgres password=postgres dbname=growsafe sslmode=disable"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if len(cfg.KafkaBrokers) == 1 && cfg.KafkaBrokers[0] == "" {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	}
	if cfg.LedgerTopic == "" {
		cfg.LedgerTopic = "ledger-events"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "supersecret"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8000"
	}
	if ttl, err := time.ParseDuration(os.Getenv("ACCESS_TOKEN_TTL")); err == nil && ttl > 0 {
		cfg.AccessTokenTTL = ttl
	}
	if ttl, err := time.ParseDuration(os.Getenv("REFRESH_TOKEN_TTL")); err == nil && ttl > 0 {
		cfg.RefreshTokenTTL = ttl
	}

	slog.Info("config loaded", "postgres_dsn", cfg.PostgresDSN, "redis_addr", cfg.RedisAddr, "kafka_brokers", cfg.KafkaBrokers, "listen_addr", cfg.ListenAddr)
	return cfg
}
