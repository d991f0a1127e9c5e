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
const DefaultConfigFile = "adforge.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
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
	data, err := os.ReadFile(path)
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
	setString(&cfg.Server.Port, "ADFORGE_PORT")
	setString(&cfg.Server.CORSOrigin, "ADFORGE_CORS_ORIGIN")
	setString(&cfg.Logging.Level, "ADFORGE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "ADFORGE_LOG_SERVICE")
	setString(&cfg.Auth.APIKeyHash, "ADFORGE_API_KEY_HASH")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "ADFORGE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "ADFORGE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "ADFORGE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "ADFORGE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "ADFORGE_PG_HEALTH_CHECK")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.Bucket, "ADFORGE_NATS_BUCKET")
	setInt64(&cfg.Cache.L1MaxSizeMB, "ADFORGE_CACHE_L1_SIZE_MB")
	setDuration(&cfg.Cache.L1TTL, "ADFORGE_CACHE_L1_TTL")
	setDuration(&cfg.Cache.L2TTL, "ADFORGE_CACHE_L2_TTL")

	setString(&cfg.Scorer.URL, "ADFORGE_SCORER_URL")
	setString(&cfg.Scorer.APIKey, "ADFORGE_SCORER_API_KEY")
	setString(&cfg.Scorer.APIKeyFile, "ADFORGE_SCORER_API_KEY_FILE")
	setString(&cfg.Scorer.Model, "ADFORGE_SCORER_MODEL")
	setDuration(&cfg.Scorer.Timeout, "ADFORGE_SCORER_TIMEOUT")

	setInt(&cfg.Retry.MaxAttempts, "ADFORGE_RETRY_MAX_ATTEMPTS")
	setDuration(&cfg.Retry.Cooldown, "ADFORGE_RETRY_COOLDOWN")
	setInt(&cfg.Breaker.MaxFailures, "ADFORGE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Cooloff, "ADFORGE_BREAKER_COOLOFF")

	setInt(&cfg.Scheduler.WorkerBudget, "ADFORGE_WORKER_BUDGET")
	setDuration(&cfg.Scheduler.RunTimeout, "ADFORGE_RUN_TIMEOUT")

	setString(&cfg.Topology.GraphFile, "ADFORGE_GRAPH_FILE")
	setString(&cfg.Topology.PersonasFile, "ADFORGE_PERSONAS_FILE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Scorer.URL == "" {
		return errors.New("scorer.url is required")
	}
	if cfg.Retry.MaxAttempts < 1 {
		return errors.New("retry.max_attempts must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Scheduler.WorkerBudget < 1 {
		return errors.New("scheduler.worker_budget must be >= 1")
	}
	if cfg.Scheduler.RunTimeout <= 0 {
		return errors.New("scheduler.run_timeout must be > 0")
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

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
