// Package config loads catalogd's settings from the environment.
//
// Every variable is prefixed with CATALOGD_. Secret-bearing values
// (CATALOGD_JWT_SECRET, CATALOGD_JWT_PREVIOUS_KEYS secrets and
// CATALOGD_DATABASE_PASSWORD) may be given as secretref: references,
// which Load resolves before validation.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/jonwraymond/catalogd/credential"
	"github.com/jonwraymond/catalogd/observe"
	"github.com/jonwraymond/catalogd/secret"
	"github.com/jonwraymond/catalogd/store/gormstore"
	"github.com/jonwraymond/catalogd/token"
)

// Prefix is prepended to every environment variable name.
const Prefix = "catalogd"

// ErrInvalid indicates a configuration value failed validation.
var ErrInvalid = errors.New("config: invalid")

// Config is the immutable process configuration.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	BcryptCost      int           `envconfig:"BCRYPT_COST" default:"0"`

	JWT       JWTConfig       `envconfig:"JWT"`
	Database  DatabaseConfig  `envconfig:"DATABASE"`
	Telemetry TelemetryConfig `envconfig:"TELEMETRY"`
}

// JWTConfig configures session token signing.
//
// Untagged fields are named after the field itself; an envconfig tag
// would also make envconfig fall back to the unprefixed variable.
type JWTConfig struct {
	Secret string        `required:"true"`
	TTL    time.Duration `required:"true"`
	KeyID  string        `envconfig:"KEY_ID" default:"v1"`
	Issuer string        `default:"catalogd"`

	// PreviousKeys lists retired keys as "kid=secret" entries. Tokens
	// signed with them still verify. The secret may be a secretref.
	PreviousKeys []string `envconfig:"PREVIOUS_KEYS"`

	// PreviousSecrets is PreviousKeys parsed and resolved by Load.
	PreviousSecrets map[string]string `ignored:"true"`
}

// DatabaseConfig selects the account store.
type DatabaseConfig struct {
	Driver   string `default:"postgres"`
	Host     string `default:"localhost"`
	Port     int    `default:"5432"`
	User     string
	Password string
	Name     string
	SSLMode  string `default:"disable"`

	SQLitePath   string `envconfig:"SQLITE_PATH" default:"./data/catalogd.db"`
	MaxOpenConns int    `envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns int    `envconfig:"MAX_IDLE_CONNS" default:"5"`
}

// TelemetryConfig configures logging, tracing and metrics.
type TelemetryConfig struct {
	ServiceName     string  `envconfig:"SERVICE_NAME" default:"catalogd"`
	LogLevel        string  `envconfig:"LOG_LEVEL" default:"info"`
	TracingExporter string  `envconfig:"TRACING_EXPORTER" default:"none"`
	TraceSamplePct  float64 `envconfig:"TRACE_SAMPLE_PCT" default:"1"`
	MetricsExporter string  `envconfig:"METRICS_EXPORTER" default:"prometheus"`
}

// Load reads the environment, resolves secret references and validates
// the result.
func Load(ctx context.Context) (Config, error) {
	return LoadWith(ctx, secret.NewResolver())
}

// LoadWith is Load with a caller-supplied resolver.
func LoadWith(ctx context.Context, r *secret.Resolver) (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: process env: %w", err)
	}

	if err := r.ResolveAll(ctx, &cfg.JWT.Secret, &cfg.Database.Password); err != nil {
		return Config{}, fmt.Errorf("config: resolve secrets: %w", err)
	}
	if len(cfg.JWT.PreviousKeys) > 0 {
		cfg.JWT.PreviousSecrets = make(map[string]string, len(cfg.JWT.PreviousKeys))
	}
	for _, entry := range cfg.JWT.PreviousKeys {
		kid, v, ok := strings.Cut(entry, "=")
		if !ok || kid == "" {
			return Config{}, fmt.Errorf("%w: JWT_PREVIOUS_KEYS entry must be kid=secret", ErrInvalid)
		}
		out, err := r.Resolve(ctx, v)
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve previous key %q: %w", kid, err)
		}
		cfg.JWT.PreviousSecrets[kid] = out
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: HTTP_ADDR is empty", ErrInvalid)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: SHUTDOWN_TIMEOUT must be positive", ErrInvalid)
	}
	if err := credential.ValidateCost(c.BcryptCost); err != nil {
		return fmt.Errorf("%w: BCRYPT_COST: %w", ErrInvalid, err)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("%w: JWT_SECRET is empty", ErrInvalid)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("%w: JWT_TTL must be positive", ErrInvalid)
	}
	if c.JWT.KeyID == "" {
		return fmt.Errorf("%w: JWT_KEY_ID is empty", ErrInvalid)
	}
	for kid, v := range c.JWT.PreviousSecrets {
		if kid == c.JWT.KeyID {
			return fmt.Errorf("%w: JWT_PREVIOUS_KEYS reuses current key id %q", ErrInvalid, kid)
		}
		if v == "" {
			return fmt.Errorf("%w: JWT_PREVIOUS_KEYS entry %q is empty", ErrInvalid, kid)
		}
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("%w: postgres requires DATABASE_HOST, DATABASE_USER and DATABASE_NAME", ErrInvalid)
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("%w: DATABASE_PORT %d out of range", ErrInvalid, c.Database.Port)
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("%w: DATABASE_SQLITE_PATH is empty", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: DATABASE_DRIVER %q", ErrInvalid, c.Database.Driver)
	}

	obs := c.Observe()
	if err := obs.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Observe returns the telemetry settings in observe form.
func (c Config) Observe() observe.Config {
	t := c.Telemetry
	return observe.Config{
		ServiceName: t.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   t.TracingExporter != "" && t.TracingExporter != "none",
			Exporter:  t.TracingExporter,
			SamplePct: t.TraceSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  t.MetricsExporter != "" && t.MetricsExporter != "none",
			Exporter: t.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   t.LogLevel,
		},
	}
}

// Store returns the account store settings.
func (c Config) Store() gormstore.Config {
	d := c.Database
	return gormstore.Config{
		Driver:       d.Driver,
		Host:         d.Host,
		Port:         d.Port,
		User:         d.User,
		Password:     d.Password,
		Name:         d.Name,
		SSLMode:      d.SSLMode,
		Path:         d.SQLitePath,
		MaxOpenConns: d.MaxOpenConns,
		MaxIdleConns: d.MaxIdleConns,
	}
}

// Keys returns the signing key set: the current key under KeyID plus
// every previous key.
func (c Config) Keys() *token.KeySet {
	ks := token.NewKeySet(c.JWT.KeyID, map[string][]byte{c.JWT.KeyID: []byte(c.JWT.Secret)})
	for kid, v := range c.JWT.PreviousSecrets {
		ks.Add(kid, []byte(v))
	}
	return ks
}
