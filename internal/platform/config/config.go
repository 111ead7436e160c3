package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration for the HTTP API.
type Server struct {
	Addr          string
	DatabaseURL   string
	Redis         Redis
	JWTSigningKey string
	SessionTTL    time.Duration
	RecentLimit   int
	AdminUsername string
	AdminPassword string
}

// Redis holds session store settings. An empty URL disables Redis and the
// in-memory session store is used instead.
type Redis struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Watcher captures configuration for the notification watcher process.
type Watcher struct {
	DatabaseURL  string
	TargetStatus string
	Interval     time.Duration
	WebhookURL   string
	KafkaBrokers string
	KafkaTopic   string
	MetricsAddr  string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CARDTRACK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis:         redisFromEnv(),
		JWTSigningKey: jwtSigningKey,
		SessionTTL:    durationEnv("SESSION_TTL", 12*time.Hour),
		RecentLimit:   intEnv("RECENT_OPERATIONS_LIMIT", 50),
		AdminUsername: stringEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// WatcherFromEnv builds the watcher config. The target status mirrors the
// offload stage the production floor wants alerts for.
func WatcherFromEnv() Watcher {
	target := os.Getenv("WATCH_TARGET_STATUS")
	if target == "" {
		target = "TO BACKUP"
	}
	metricsAddr := os.Getenv("WATCH_METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":9091"
	}
	return Watcher{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		TargetStatus: target,
		Interval:     durationEnv("WATCH_INTERVAL", 10*time.Second),
		WebhookURL:   os.Getenv("WATCH_WEBHOOK_URL"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   os.Getenv("KAFKA_TOPIC"),
		MetricsAddr:  metricsAddr,
	}
}

func redisFromEnv() Redis {
	return Redis{
		URL:          os.Getenv("REDIS_URL"),
		DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
