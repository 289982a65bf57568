// Package config builds runtime configuration from environment variables so
// main stays lean and services never read the environment themselves.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures the full service configuration.
type Server struct {
	Addr          string
	AdminToken    string
	JWTSigningKey string

	Registry  Registry
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	Screening Screening
}

// Registry configures the Enlite company-registry client.
type Registry struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// RedisConfig configures the shared Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the run store. An empty DSN selects the in-memory
// store.
type PostgresConfig struct {
	DSN string
}

// KafkaConfig configures the audit event publisher. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Screening holds the traversal defaults applied when a request does not
// override them.
type Screening struct {
	MaxDepth     int
	Threshold    float64
	LookupBudget int
	Concurrency  int
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:          getString("UBO_ADDR", ":8080"),
		AdminToken:    os.Getenv("UBO_ADMIN_TOKEN"),
		JWTSigningKey: os.Getenv("UBO_JWT_SIGNING_KEY"),
		Registry: Registry{
			BaseURL:  getString("ENLITE_API_URL", "https://enlite.lhb.co.th"),
			APIKey:   os.Getenv("ENLITE_API_KEY"),
			Language: getString("ENLITE_API_LANGUAGE", "EN"),
			Timeout:  getDuration("ENLITE_API_TIMEOUT", 60*time.Second),
			CacheTTL: getDuration("UBO_REGISTRY_CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("UBO_REDIS_URL"),
			PoolSize:     getInt("UBO_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("UBO_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("UBO_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("UBO_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("UBO_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("UBO_POSTGRES_DSN"),
		},
		Kafka: KafkaConfig{
			Brokers: getList("UBO_KAFKA_BROKERS"),
			Topic:   getString("UBO_KAFKA_AUDIT_TOPIC", "ubo.audit"),
		},
		Screening: Screening{
			MaxDepth:     getInt("UBO_MAX_DEPTH", 4),
			Threshold:    getFloat("UBO_THRESHOLD_PERCENT", 15.0),
			LookupBudget: getInt("UBO_LOOKUP_BUDGET", 200),
			Concurrency:  getInt("UBO_LOOKUP_CONCURRENCY", 1),
		},
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getDuration accepts Go duration strings and, for compatibility with older
// deployments, bare integers interpreted as seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
