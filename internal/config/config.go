package config

import (
	"os"
	"strings"
	"time"
)

// Config holds all runtime settings, loaded from the environment.
// Every field has a development-friendly default so the server can start
// against a local stack without a .env file.
type Config struct {
	ServerPort     string
	DatabaseURL    string
	RedisAddr      string
	KafkaBrokers   []string
	KafkaTopic     string
	GatewayBaseURL string
	MerchantID     string
	GatewayToken   string
	GatewayTimeout time.Duration
	JWTSecret      string
	AllowedOrigins string
}

func Load() Config {
	return Config{
		ServerPort:     getenv("SERVER_PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		KafkaBrokers:   splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     getenv("KAFKA_TOPIC", "pos.activity"),
		GatewayBaseURL: os.Getenv("GATEWAY_BASE_URL"),
		MerchantID:     os.Getenv("GATEWAY_MERCHANT_ID"),
		GatewayToken:   os.Getenv("GATEWAY_TOKEN"),
		GatewayTimeout: getenvDuration("GATEWAY_TIMEOUT", 10*time.Second),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
