package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr      string
	MetricsAddr   string
	DatabaseURL   string
	KafkaBrokers  []string
	EventWorkers  int
	SigningSecret string
}

// Load reads configuration from the environment. A .env file is applied
// first when present; it never overrides variables already set.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		EventWorkers:  getEnvInt("EVENT_WORKERS", 3),
		SigningSecret: os.Getenv("SIGNING_SECRET"),
	}

	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, broker := range strings.Split(raw, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
