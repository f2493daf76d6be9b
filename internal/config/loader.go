package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "lightlogger.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML path can be overridden with LIGHTLOGGER_CONFIG; a missing file is
// not an error.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if p := os.Getenv("LIGHTLOGGER_CONFIG"); p != "" {
		path = p
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "LIGHTLOGGER_PORT")
	setString(&cfg.Server.CORSOrigin, "LIGHTLOGGER_CORS_ORIGIN")
	setInt(&cfg.Server.Workers, "LIGHTLOGGER_WORKERS")
	setDuration(&cfg.Server.RequestTimeout, "LIGHTLOGGER_REQUEST_TIMEOUT")
	setInt64(&cfg.Server.BodyLimit, "LIGHTLOGGER_BODY_LIMIT")
	setBool(&cfg.Server.TrustProxy, "LIGHTLOGGER_TRUST_PROXY")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "LIGHTLOGGER_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "LIGHTLOGGER_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "LIGHTLOGGER_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "LIGHTLOGGER_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "LIGHTLOGGER_PG_HEALTH_CHECK")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.Stream, "LIGHTLOGGER_NATS_STREAM")
	setString(&cfg.NATS.SubjectPrefix, "LIGHTLOGGER_NATS_SUBJECT_PREFIX")

	// Cache
	setInt64(&cfg.Cache.L1MaxSizeMB, "LIGHTLOGGER_CACHE_L1_SIZE_MB")
	setString(&cfg.Cache.L2Bucket, "LIGHTLOGGER_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.L2TTL, "LIGHTLOGGER_CACHE_L2_TTL")
	setDuration(&cfg.Cache.ProjectTTL, "LIGHTLOGGER_CACHE_PROJECT_TTL")

	setString(&cfg.Logging.Level, "LIGHTLOGGER_LOG_LEVEL")
	setString(&cfg.Logging.Service, "LIGHTLOGGER_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "LIGHTLOGGER_LOG_ASYNC")

	setInt(&cfg.Auth.BcryptCost, "LIGHTLOGGER_BCRYPT_COST")
	setDuration(&cfg.Auth.SessionLifetime, "LIGHTLOGGER_SESSION_LIFETIME")

	setInt(&cfg.Breaker.MaxFailures, "LIGHTLOGGER_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "LIGHTLOGGER_BREAKER_TIMEOUT")

	setFloat64(&cfg.Rate.RequestsPerSecond, "LIGHTLOGGER_RATE_RPS")
	setInt(&cfg.Rate.Burst, "LIGHTLOGGER_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "LIGHTLOGGER_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "LIGHTLOGGER_RATE_MAX_IDLE_TIME")

	// OpenTelemetry
	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.OTEL.ServiceName, "OTEL_SERVICE_NAME")
	setBool(&cfg.OTEL.Insecure, "LIGHTLOGGER_OTEL_INSECURE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Server.Workers < 1 {
		return errors.New("server.workers must be >= 1")
	}
	if cfg.Server.BodyLimit < 1 {
		return errors.New("server.body_limit must be >= 1")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		return errors.New("auth.bcrypt_cost must be between 4 and 31")
	}
	if cfg.Auth.SessionLifetime <= 0 {
		return errors.New("auth.session_lifetime must be positive")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	if cfg.Rate.RequestsPerSecond <= 0 {
		return errors.New("rate.requests_per_second must be positive")
	}
	if cfg.NATS.URL != "" && cfg.NATS.SubjectPrefix == "" {
		return errors.New("nats.subject_prefix is required when nats.url is set")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
