// Package config loads the kernel configuration from an optional YAML file and
// GAMBIT_* environment variables, in that order.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "GAMBIT_"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the full configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Session SessionConfig `yaml:"session" envPrefix:"SESSION_"`
	Store   StoreConfig   `yaml:"store" envPrefix:"STORE_"`
	Redis   RedisConfig   `yaml:"redis" envPrefix:"REDIS_"`
	SQLite  SQLiteConfig  `yaml:"sqlite" envPrefix:"SQLITE_"`
	HTTP    HTTPConfig    `yaml:"http" envPrefix:"HTTP_"`
	Dice    DiceConfig    `yaml:"dice" envPrefix:"DICE_"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // text or json
}

type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl" env:"TTL"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
	LockTTL       time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`

	// EncryptionKey is a base64 AES-256 key. When set, session variables are
	// encrypted at rest.
	EncryptionKey string `yaml:"encryption_key" env:"ENCRYPTION_KEY"`
	// FallbackKeys are older keys still accepted for decryption.
	FallbackKeys []string `yaml:"fallback_keys" env:"FALLBACK_KEYS"`
	// RedactPatterns are regular expressions of variable names masked by
	// read-only views such as "session inspect".
	RedactPatterns []string `yaml:"redact_patterns" env:"REDACT_PATTERNS"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" env:"BACKEND"`
	// Dir is the directory of the file backend.
	Dir string `yaml:"dir" env:"DIR"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"PATH"`
	// Keep is how many State snapshots survive a prune. Zero keeps all.
	Keep int `yaml:"keep" env:"KEEP"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

type DiceConfig struct {
	// Seed makes rolls reproducible. Zero seeds from crypto/rand.
	Seed int64 `yaml:"seed" env:"SEED"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:     LogConfig{Level: "warn", Format: "text"},
		Session: SessionConfig{
			TTL:            15 * time.Minute,
			SweepInterval:  time.Minute,
			LockTTL:        30 * time.Second,
			RedactPatterns: []string{"(?i)password", "(?i)secret", "(?i)token"},
		},
		Store:   StoreConfig{Backend: BackendFile, Dir: ".gambit"},
		Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "gambit:"},
		SQLite:  SQLiteConfig{Path: ".gambit/gambit.db"},
		HTTP:    HTTPConfig{Addr: ":8080"},
	}
}

// Load starts from Default, applies the YAML file at path (skipped when path
// is empty) and then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendSQLite, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: must be text or json, got %q", c.Log.Format))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl: must be positive"))
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, errors.New("session.sweep_interval: must be positive"))
	}
	if c.Session.LockTTL <= 0 {
		errs = append(errs, errors.New("session.lock_ttl: must be positive"))
	}
	for i, k := range append([]string{c.Session.EncryptionKey}, c.Session.FallbackKeys...) {
		if k == "" && i == 0 {
			continue
		}
		if _, err := DecodeKey(k); err != nil {
			errs = append(errs, fmt.Errorf("session keys: %w", err))
		}
	}
	if c.SQLite.Keep < 0 {
		errs = append(errs, errors.New("sqlite.keep: must not be negative"))
	}
	if c.Store.Backend == BackendRedis && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr: required by the redis backend"))
	}
	return errors.Join(errs...)
}

// DecodeKey decodes a base64 AES-256 key.
func DecodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
