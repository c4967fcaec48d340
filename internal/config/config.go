// Package config loads Waypoint settings from an optional YAML file overlaid with
// WAYPOINT_* environment variables. A double underscore separates nested keys, so
// WAYPOINT_STORE__REDIS__ADDR sets store.redis.addr and WAYPOINT_LOG_LEVEL sets log_level.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix   = "WAYPOINT_"
	DefaultPath = "waypoint.yaml"
)

// Config is the full application configuration.
type Config struct {
	LogLevel         string           `koanf:"log_level" yaml:"log_level"`
	Mode             string           `koanf:"mode" yaml:"mode"`
	Domain           string           `koanf:"domain" yaml:"domain,omitempty"`
	ClarifyTolerance int              `koanf:"clarify_tolerance" yaml:"clarify_tolerance"`
	Store            StoreConfig      `koanf:"store" yaml:"store"`
	Activities       ActivitiesConfig `koanf:"activities" yaml:"activities"`
	HTTP             HTTPConfig       `koanf:"http" yaml:"http"`
	OpenAI           OpenAIConfig     `koanf:"openai" yaml:"openai"`
	Input            InputConfig      `koanf:"input" yaml:"input"`
}

// StoreConfig selects the conversation store.
type StoreConfig struct {
	Backend string      `koanf:"backend" yaml:"backend"`
	Path    string      `koanf:"path" yaml:"path"`
	Redis   RedisConfig `koanf:"redis" yaml:"redis"`
	// EncryptionKey is a base64 AES-256 key. Empty disables encryption.
	EncryptionKey string `koanf:"encryption_key" yaml:"encryption_key,omitempty"`
	MaskPII       bool   `koanf:"mask_pii" yaml:"mask_pii"`
}

type RedisConfig struct {
	Addr     string        `koanf:"addr" yaml:"addr"`
	Password string        `koanf:"password" yaml:"password,omitempty"`
	DB       int           `koanf:"db" yaml:"db"`
	Prefix   string        `koanf:"prefix" yaml:"prefix"`
	TTL      time.Duration `koanf:"ttl" yaml:"ttl"`
}

// ActivitiesConfig selects where confirmed plans are written.
type ActivitiesConfig struct {
	Backend string `koanf:"backend" yaml:"backend"`
	DSN     string `koanf:"dsn" yaml:"dsn"`
}

type HTTPConfig struct {
	Port           int      `koanf:"port" yaml:"port"`
	AllowedOrigins []string `koanf:"allowed_origins" yaml:"allowed_origins"`
}

type OpenAIConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	APIKey  string `koanf:"api_key" yaml:"api_key,omitempty"`
	Model   string `koanf:"model" yaml:"model"`
	BaseURL string `koanf:"base_url" yaml:"base_url,omitempty"`
}

type InputConfig struct {
	MaxSize int `koanf:"max_size" yaml:"max_size"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogLevel:         "info",
		Mode:             string(domain.ModeQuick),
		ClarifyTolerance: 2,
		Store: StoreConfig{
			Backend: "file",
			Path:    ".waypoint/conversations",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "waypoint:conversation:",
			},
		},
		Activities: ActivitiesConfig{
			Backend: "sqlite",
			DSN:     ".waypoint/activities.db",
		},
		HTTP: HTTPConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		OpenAI: OpenAIConfig{Model: "gpt-4o-mini"},
		Input:  InputConfig{MaxSize: 4096},
	}
}

// Load reads path (skipped when empty or missing), then overlays the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

var (
	validStores     = []string{"memory", "file", "redis"}
	validActivities = []string{"memory", "sqlite", "postgres"}
)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := domain.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.ClarifyTolerance < 1 {
		return fmt.Errorf("clarify_tolerance must be at least 1")
	}
	if !slices.Contains(validStores, c.Store.Backend) {
		return fmt.Errorf("invalid store.backend %q: must be one of %s", c.Store.Backend, strings.Join(validStores, ", "))
	}
	if c.Store.Backend == "redis" && c.Store.Redis.Addr == "" {
		return fmt.Errorf("store.redis.addr is required for the redis backend")
	}
	if c.Store.Redis.TTL < 0 {
		return fmt.Errorf("store.redis.ttl must be non-negative")
	}
	if !slices.Contains(validActivities, c.Activities.Backend) {
		return fmt.Errorf("invalid activities.backend %q: must be one of %s", c.Activities.Backend, strings.Join(validActivities, ", "))
	}
	if c.Activities.Backend != "memory" && c.Activities.DSN == "" {
		return fmt.Errorf("activities.dsn is required for the %s backend", c.Activities.Backend)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http.port %d", c.HTTP.Port)
	}
	if c.OpenAI.Enabled && c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key (or OPENAI_API_KEY) is required when openai.enabled is set")
	}
	if c.Input.MaxSize < 0 {
		return fmt.Errorf("input.max_size must be non-negative")
	}
	return nil
}
