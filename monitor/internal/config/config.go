package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPollInterval   = 200 * time.Millisecond
	DefaultReportInterval = 1 * time.Second
	DefaultBufferSize     = 1000
	DefaultSwitchMargin   = 0.3
	DefaultSwitchCooldown = 10 * time.Second
	DefaultStaleAfter     = 2 * time.Second
)

// Config is the top-level navlane-monitor configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
}

// MonitorConfig holds all monitor-side settings.
type MonitorConfig struct {
	// GroundlinkEndpoint is the base URL of navlane-groundlink
	// (e.g. https://gcs.local:8443).
	GroundlinkEndpoint string `yaml:"groundlink_endpoint"`

	// PollInterval controls how often each lane's state endpoint is fetched.
	PollInterval time.Duration `yaml:"poll_interval"`

	// ReportInterval controls how often status reports are built and queued
	// for the uplink.
	ReportInterval time.Duration `yaml:"report_interval"`

	// BufferSize is the maximum number of reports held in memory while
	// groundlink is unreachable.
	BufferSize int `yaml:"buffer_size"`

	// GroundlinkAuth configures how the monitor authenticates to groundlink.
	GroundlinkAuth AuthConfig `yaml:"groundlink_auth"`

	// Lanes is the list of redundant filter lanes to poll and arbitrate.
	Lanes []Lane `yaml:"lanes"`

	// Vehicle describes the airframe-level sensor inventory shared by all lanes.
	Vehicle VehicleConfig `yaml:"vehicle"`

	// Arbiter tunes the primary-lane selection behaviour.
	Arbiter ArbiterConfig `yaml:"arbiter"`
}

// Lane describes one redundant filter instance.
type Lane struct {
	// ID is a unique, human-readable lane identifier.
	ID string `yaml:"id"`

	// Source is the estimator state endpoint for this lane.
	Source Source `yaml:"source"`

	// Affinity binds sensor modalities to this lane, overriding default
	// sensor-selection logic for redundancy voting.
	Affinity AffinityConfig `yaml:"affinity"`
}

// Source describes where and how a lane's state is published.
type Source struct {
	// Type is the state encoding: json | promtext.
	Type string `yaml:"type"`

	// Endpoint is the full URL of the lane's state endpoint.
	Endpoint string `yaml:"endpoint"`

	// Auth configures how the monitor authenticates to this endpoint.
	Auth AuthConfig `yaml:"auth"`

	// TLS holds optional TLS dial options.
	TLS TLSConfig `yaml:"tls"`
}

// AffinityConfig enables per-modality lane affinity.
type AffinityConfig struct {
	Mag      bool `yaml:"mag"`
	Airspeed bool `yaml:"airspeed"`
}

// VehicleConfig is the airframe-level inventory used by the error scorer.
type VehicleConfig struct {
	// AirspeedSensors is the number of independent airspeed sensors fitted.
	AirspeedSensors int `yaml:"airspeed_sensors"`

	// AssumeZeroSideslip marks a forward-flight vehicle model.
	AssumeZeroSideslip bool `yaml:"assume_zero_sideslip"`
}

// ArbiterConfig tunes primary-lane selection.
type ArbiterConfig struct {
	// SwitchMargin is the error-score advantage a challenger must hold over
	// a healthy primary before a voluntary switch happens.
	SwitchMargin float64 `yaml:"switch_margin"`

	// SwitchCooldown suppresses voluntary switches for this duration after
	// any switch. Failovers from an unhealthy primary are never delayed.
	SwitchCooldown time.Duration `yaml:"switch_cooldown"`

	// StaleAfter marks a lane unusable when no state sample has been applied
	// within this duration.
	StaleAfter time.Duration `yaml:"stale_after"`
}

// AuthConfig specifies the authentication mode for an endpoint.
type AuthConfig struct {
	// Mode is one of: mtls | apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// mTLS fields, used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`

	// API key fields, used when Mode == "apikey".
	// Header is the HTTP header name to send the key in.
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`

	// Bearer token fields, used when Mode == "bearer".
	TokenEnv string `yaml:"token_env"`

	// Basic auth fields, used when Mode == "basic".
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// TLSConfig holds per-endpoint TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this on closed vehicle networks during bring-up.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Monitor: MonitorConfig{
			PollInterval:   DefaultPollInterval,
			ReportInterval: DefaultReportInterval,
			BufferSize:     DefaultBufferSize,
			Arbiter: ArbiterConfig{
				SwitchMargin:   DefaultSwitchMargin,
				SwitchCooldown: DefaultSwitchCooldown,
				StaleAfter:     DefaultStaleAfter,
			},
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	m := &cfg.Monitor
	if m.GroundlinkEndpoint == "" {
		return fmt.Errorf("monitor.groundlink_endpoint is required")
	}
	if m.PollInterval <= 0 {
		return fmt.Errorf("monitor.poll_interval must be positive")
	}
	if m.ReportInterval <= 0 {
		return fmt.Errorf("monitor.report_interval must be positive")
	}
	if m.BufferSize <= 0 {
		return fmt.Errorf("monitor.buffer_size must be positive")
	}
	if m.Vehicle.AirspeedSensors < 0 {
		return fmt.Errorf("monitor.vehicle.airspeed_sensors must not be negative")
	}
	if m.Arbiter.SwitchMargin < 0 {
		return fmt.Errorf("monitor.arbiter.switch_margin must not be negative")
	}
	if m.Arbiter.StaleAfter <= 0 {
		return fmt.Errorf("monitor.arbiter.stale_after must be positive")
	}
	seen := make(map[string]bool, len(m.Lanes))
	for i, lane := range m.Lanes {
		if lane.ID == "" {
			return fmt.Errorf("lanes[%d]: id is required", i)
		}
		if seen[lane.ID] {
			return fmt.Errorf("lanes[%d]: duplicate id %q", i, lane.ID)
		}
		seen[lane.ID] = true
		if lane.Source.Endpoint == "" {
			return fmt.Errorf("lanes[%d] %q: source.endpoint is required", i, lane.ID)
		}
		switch lane.Source.Type {
		case "json", "promtext":
		default:
			return fmt.Errorf("lanes[%d] %q: unknown source type %q", i, lane.ID, lane.Source.Type)
		}
		switch lane.Source.Auth.Mode {
		case "mtls", "apikey", "bearer", "basic", "none", "":
		default:
			return fmt.Errorf("lanes[%d] %q: unknown auth mode %q", i, lane.ID, lane.Source.Auth.Mode)
		}
	}
	return nil
}
