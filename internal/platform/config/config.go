package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"vcc/pkg/platform/middleware/metadata"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	BaseURL         string
	Environment     string
	ShutdownTimeout time.Duration
	// GlobalRPS and GlobalBurst bound per-client request volume before any
	// route-specific limit applies.
	GlobalRPS   float64
	GlobalBurst int
	// TrustedProxies lists the CIDRs whose forwarding headers name the
	// client. Empty means the TCP peer is the client.
	TrustedProxies []string
}

// TrustedProxyPrefixes parses TrustedProxies.
func (s Server) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	return metadata.ParseTrustedProxies(s.TrustedProxies)
}

// IsProduction enables Secure cookies.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// Database is empty when the service runs on in-memory stores.
type Database struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the distributed rate-limit backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Email configures the transactional mail transport.
type Email struct {
	APIKey   string
	From     string
	Endpoint string
	Timeout  time.Duration
	Workers  int
	Queue    int
}

// Admin holds operator credentials. BootstrapEmail/BootstrapPassword seed an
// ADMIN account at startup; Token guards the bootstrap endpoint.
type Admin struct {
	Token             string
	BootstrapEmail    string
	BootstrapPassword string
}

// RateLimit configures the action limiter.
type RateLimit struct {
	Disabled       bool
	BackendTimeout time.Duration
	KeyPrefix      string
}

// Kafka enables the transition event stream when Brokers is non-empty.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Logging selects slog handler and level.
type Logging struct {
	Level  string
	Format string
}

// Config is the complete process configuration.
type Config struct {
	Server    Server
	Database  Database
	Redis     RedisConfig
	Email     Email
	Admin     Admin
	RateLimit RateLimit
	Kafka     Kafka
	Logging   Logging
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getEnv("VCC_ADDR", ":8080"),
			BaseURL:         strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
			Environment:     getEnv("VCC_ENV", "development"),
			ShutdownTimeout: getDuration("VCC_SHUTDOWN_TIMEOUT", 15*time.Second),
			GlobalRPS:       getFloat("VCC_GLOBAL_RPS", 20),
			GlobalBurst:     getInt("VCC_GLOBAL_BURST", 40),
			TrustedProxies:  splitList(os.Getenv("TRUSTED_PROXIES")),
		},
		Database: Database{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 500*time.Millisecond),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond),
		},
		Email: Email{
			APIKey:   os.Getenv("RESEND_API_KEY"),
			From:     getEnv("EMAIL_FROM", "VCC <no-reply@example.com>"),
			Endpoint: getEnv("RESEND_ENDPOINT", "https://api.resend.com/emails"),
			Timeout:  getDuration("EMAIL_TIMEOUT", 10*time.Second),
			Workers:  getInt("EMAIL_WORKERS", 2),
			Queue:    getInt("EMAIL_QUEUE_SIZE", 256),
		},
		Admin: Admin{
			Token:             os.Getenv("ADMIN_TOKEN"),
			BootstrapEmail:    os.Getenv("ADMIN_EMAIL"),
			BootstrapPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		RateLimit: RateLimit{
			Disabled:       os.Getenv("RATE_LIMIT_DISABLED") == "true",
			BackendTimeout: getDuration("RATE_LIMIT_BACKEND_TIMEOUT", 250*time.Millisecond),
			KeyPrefix:      getEnv("RATE_LIMIT_PREFIX", "vcc"),
		},
		Kafka: Kafka{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "vcc.application-transitions"),
		},
		Logging: Logging{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Validate rejects inconsistent settings.
func (c Config) Validate() error {
	var errs []error
	if (c.Admin.BootstrapEmail == "") != (c.Admin.BootstrapPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if c.Admin.BootstrapPassword != "" && len(c.Admin.BootstrapPassword) < 8 {
		errs = append(errs, errors.New("ADMIN_PASSWORD must be at least 8 characters"))
	}
	if c.Server.GlobalRPS <= 0 || c.Server.GlobalBurst <= 0 {
		errs = append(errs, errors.New("VCC_GLOBAL_RPS and VCC_GLOBAL_BURST must be positive"))
	}
	if _, err := c.Server.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}
	if c.Email.Workers <= 0 || c.Email.Queue <= 0 {
		errs = append(errs, errors.New("EMAIL_WORKERS and EMAIL_QUEUE_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
