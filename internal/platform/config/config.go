// Package config loads process configuration from the environment.
//
// Variables are parsed with github.com/caarlos0/env. A .env file in the
// working directory is loaded first when present, without overriding
// variables that are already set.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DevJWTSecret is used when JWT_SECRET is unset. Tokens signed with it are
// forgeable by anyone who knows the default, so Load reports its use.
const DevJWTSecret = "dev-secret"

// Config is the root configuration of the portal backend.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"   envDefault:"info"`

	Server   Server
	Auth     Auth
	Database Database
	Upstream Upstream
	Frontend Frontend
	Tracing  Tracing

	// UsingDevSecret is set by Sanitize when the JWT secret fell back to DevJWTSecret.
	UsingDevSecret bool `env:"-"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"PORTAL_ADDR"      envDefault:":3007"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    envDefault:"90s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT"     envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	TrustedProxies  []string      `env:"TRUSTED_PROXIES"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// Auth configures assertion signing and the login limiter.
type Auth struct {
	JWTSecret      string        `env:"JWT_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL"      envDefault:"24h"`
	LoginRateLimit int           `env:"LOGIN_RATE_LIMIT" envDefault:"20"`
}

// Database configures the PostgreSQL connection. An empty URL selects the
// in-memory stores seeded with demo data.
type Database struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS"    envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	SeedDemoData    bool          `env:"SEED_DEMO_DATA"       envDefault:"false"`
}

// Upstream configures the per-tenant conversion services.
type Upstream struct {
	// Raw is "slug=url" pairs separated by commas, e.g.
	// "oguz=http://127.0.0.1:5007,klees=http://127.0.0.1:5009".
	Raw           string        `env:"UPSTREAMS"               envDefault:"oguz=http://127.0.0.1:5007"`
	Timeout       time.Duration `env:"UPSTREAM_TIMEOUT"        envDefault:"60s"`
	HealthTimeout time.Duration `env:"UPSTREAM_HEALTH_TIMEOUT" envDefault:"10s"`
	FileField     string        `env:"UPSTREAM_FILE_FIELD"     envDefault:"excel"`

	// Targets is parsed from Raw by Sanitize.
	Targets map[string]string `env:"-"`
}

// Frontend configures the guarded portal shell.
type Frontend struct {
	Dir string `env:"FRONTEND_DIR"`
}

// Tracing configures OpenTelemetry export of upstream call spans.
type Tracing struct {
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
}

// Load reads .env (if present) and the environment, then sanitizes the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Sanitize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Sanitize applies defaults and guardrails after parsing.
func (c *Config) Sanitize() error {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		c.Auth.JWTSecret = DevJWTSecret
		c.UsingDevSecret = true
	}
	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = 24 * time.Hour
	}
	if c.Auth.LoginRateLimit <= 0 {
		c.Auth.LoginRateLimit = 20
	}
	if c.Upstream.FileField == "" {
		c.Upstream.FileField = "excel"
	}

	targets, err := ParseUpstreams(c.Upstream.Raw)
	if err != nil {
		return err
	}
	c.Upstream.Targets = targets
	return nil
}

// IsProduction reports whether the process runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// ParseUpstreams parses "slug=url,slug=url". Trailing slashes on the URLs are
// removed. An empty string yields an empty map.
func ParseUpstreams(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for pair := range strings.SplitSeq(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		slug, base, ok := strings.Cut(pair, "=")
		slug = strings.ToLower(strings.TrimSpace(slug))
		base = strings.TrimRight(strings.TrimSpace(base), "/")
		if !ok || slug == "" || base == "" {
			return nil, fmt.Errorf("invalid upstream %q: want slug=url", pair)
		}
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid upstream url for %q: %s", slug, base)
		}
		out[slug] = base
	}
	return out, nil
}
