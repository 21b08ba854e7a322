// Package config loads and validates the navlane-groundlink configuration:
// listener port, ingest authentication, lane report retention, console
// broadcast cadence and alerting rules.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the groundlink configuration.
const (
	DefaultHTTPPort          = 8080
	DefaultLaneTTL           = 10 * time.Second
	DefaultBroadcastInterval = 1 * time.Second
)

// Config holds the groundlink configuration parsed from the `groundlink:`
// section of config.yaml. A `monitor:` key in the same file is ignored, so
// one file can configure both binaries during bench testing.
type Config struct {
	Groundlink GroundlinkConfig `yaml:"groundlink"`
}

// GroundlinkConfig holds all groundlink settings.
type GroundlinkConfig struct {
	// HTTPPort is the port serving ingest, REST API and WebSocket (default 8080).
	HTTPPort int `yaml:"http_port"`

	// Auth configures how incoming monitors authenticate.
	Auth AuthConfig `yaml:"auth"`

	// Lanes controls in-memory lane report retention.
	Lanes LanesConfig `yaml:"lanes"`

	// BroadcastInterval is the WebSocket snapshot cadence (default 1s).
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// Alerts holds rule definitions and webhook delivery targets.
	Alerts AlertsConfig `yaml:"alerts"`
}

// AuthConfig controls monitor authentication on the groundlink side.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected
	// API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header name to read the key from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// LanesConfig controls in-memory lane report retention.
type LanesConfig struct {
	// TTL is how long a lane's report remains in the store after its last
	// update. When TTL elapses without a new report, the entry is evicted
	// and the lane disappears from the console. Default: 10s.
	TTL time.Duration `yaml:"ttl"`
}

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based alert condition.
type AlertRule struct {
	// Name is the human-readable alert identifier, used as the deduplication key.
	Name string `yaml:"name"`

	// Condition is a simple expression: "error_score > 1", "healthy == false",
	// "faults != 0", "mag_var > 1".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Defaults to 1 minute if zero.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | pagerduty | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the config file at path.
// Missing fields are filled with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("groundlink config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("groundlink config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("groundlink config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Groundlink: GroundlinkConfig{
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
			Lanes: LanesConfig{
				TTL: DefaultLaneTTL,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Groundlink.HTTPPort <= 0 || cfg.Groundlink.HTTPPort > 65535 {
		return fmt.Errorf("groundlink.http_port %d is out of range [1, 65535]", cfg.Groundlink.HTTPPort)
	}
	switch cfg.Groundlink.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("groundlink.auth.mode %q unknown: want apikey|none", cfg.Groundlink.Auth.Mode)
	}
	if cfg.Groundlink.Lanes.TTL < 0 {
		return fmt.Errorf("groundlink.lanes.ttl must not be negative")
	}
	if cfg.Groundlink.BroadcastInterval <= 0 {
		return fmt.Errorf("groundlink.broadcast_interval must be positive")
	}
	return nil
}
