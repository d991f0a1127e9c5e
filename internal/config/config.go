// Package config provides hierarchical configuration loading for AdForge.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the AdForge core service.
type Config struct {
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
	Auth      Auth      `yaml:"auth"`
	Postgres  Postgres  `yaml:"postgres"`
	NATS      NATS      `yaml:"nats"`
	Cache     Cache     `yaml:"cache"`
	Scorer    Scorer    `yaml:"scorer"`
	Retry     Retry     `yaml:"retry"`
	Breaker   Breaker   `yaml:"breaker"`
	Scheduler Scheduler `yaml:"scheduler"`
	Topology  Topology  `yaml:"topology"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Auth guards mutating API routes with a single API key.
// APIKeyHash is a bcrypt hash of the key; empty disables the guard.
type Auth struct {
	APIKeyHash string `yaml:"api_key_hash"`
}

// Postgres holds the analytics archive connection configuration.
// An empty DSN disables the archive.
type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	HealthCheck     time.Duration `yaml:"health_check"`
}

// NATS holds the JetStream KV configuration for the L2 report cache.
// An empty URL disables L2.
type NATS struct {
	URL    string `yaml:"url"`
	Bucket string `yaml:"bucket"`
}

// Cache holds report cache sizing.
type Cache struct {
	L1MaxSizeMB int64         `yaml:"l1_max_size_mb"`
	L1TTL       time.Duration `yaml:"l1_ttl"`
	L2TTL       time.Duration `yaml:"l2_ttl"`
}

// Scorer holds the scoring backend configuration.
type Scorer struct {
	URL        string        `yaml:"url"`
	APIKey     string        `yaml:"api_key"`
	APIKeyFile string        `yaml:"api_key_file"` // re-read on credential refresh
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Retry bounds the resilient invocation wrapper.
type Retry struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Cooldown    time.Duration `yaml:"cooldown"`
}

// Breaker holds circuit breaker configuration for the scoring backend.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Cooloff     time.Duration `yaml:"cooloff"`
}

// Scheduler holds evaluation run configuration.
type Scheduler struct {
	WorkerBudget int           `yaml:"worker_budget"` // max concurrent tasks within a stage
	RunTimeout   time.Duration `yaml:"run_timeout"`   // wall-clock budget per run
}

// Topology points at the static graph and persona sources. Empty paths fall
// back to the embedded prefecture defaults.
type Topology struct {
	GraphFile    string `yaml:"graph_file"`
	PersonasFile string `yaml:"personas_file"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:3000",
		},
		Logging: Logging{
			Level:   "info",
			Service: "adforge-core",
		},
		Postgres: Postgres{
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 10 * time.Minute,
			HealthCheck:     time.Minute,
		},
		NATS: NATS{
			Bucket: "adforge-reports",
		},
		Cache: Cache{
			L1MaxSizeMB: 32,
			L1TTL:       5 * time.Minute,
			L2TTL:       24 * time.Hour,
		},
		Scorer: Scorer{
			URL:     "http://localhost:4000",
			Model:   "openai/gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		Retry: Retry{
			MaxAttempts: 10,
			Cooldown:    2 * time.Second,
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Cooloff:     30 * time.Second,
		},
		Scheduler: Scheduler{
			WorkerBudget: 4,
			RunTimeout:   15 * time.Minute,
		},
	}
}
