package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gazestack/gazestack/internal/compute"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort          = 8080
	DefaultSnapshotTTL       = 2 * time.Minute
	DefaultBroadcastInterval = 1 * time.Second
)

// Config is the top-level configuration tree.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Engine EngineConfig `yaml:"engine"`
	Alerts AlertsConfig `yaml:"alerts"`
}

// ServerConfig holds transport-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, ingest, and stream endpoints
	// listen on.
	HTTPPort int `yaml:"http_port"`

	// SnapshotTTL is how long a session's last metrics stay visible after
	// its detector goes quiet.
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`

	// BroadcastInterval controls how often the dashboard hub pushes the
	// full session snapshot to connected clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// Auth configures REST API authentication.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig configures API authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header carrying the key. Defaults to X-API-Key.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable holding the expected key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name or the default.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header == "" {
		return "X-API-Key"
	}
	return a.Header
}

// EngineConfig holds the tracker tuning applied to every session. All fields
// are runtime-adjustable via hot-reload or the tuning API.
type EngineConfig struct {
	// FrameRate the host loop is expected to gate frames to.
	FrameRate float64 `yaml:"frame_rate"`

	// SmoothingFactor is the EMA weight kept from the previous level, in (0,1).
	SmoothingFactor float64 `yaml:"smoothing_factor"`

	// Sensitivity scales the variability penalty.
	Sensitivity float64 `yaml:"sensitivity"`

	// CalibrationFrames is the size of the baseline learning window.
	CalibrationFrames int `yaml:"calibration_frames"`

	// MaxHistorySize bounds the rolling sample history.
	MaxHistorySize int `yaml:"max_history_size"`

	// MinPupilDiameterPx / MaxPupilDiameterPx bound valid samples.
	MinPupilDiameterPx float64 `yaml:"min_pupil_diameter_px"`
	MaxPupilDiameterPx float64 `yaml:"max_pupil_diameter_px"`

	// StabilityWeight / FocusWeight cap the two stability score terms.
	StabilityWeight float64 `yaml:"stability_weight"`
	FocusWeight     float64 `yaml:"focus_weight"`
}

// Tuning converts the engine section to a clamped compute.Tuning.
func (e EngineConfig) Tuning() compute.Tuning {
	return compute.Tuning{
		FrameRate:         e.FrameRate,
		SmoothingFactor:   e.SmoothingFactor,
		Sensitivity:       e.Sensitivity,
		CalibrationFrames: e.CalibrationFrames,
		MaxHistorySize:    e.MaxHistorySize,
		MinPupilDiameter:  e.MinPupilDiameterPx,
		MaxPupilDiameter:  e.MaxPupilDiameterPx,
		StabilityWeight:   e.StabilityWeight,
		FocusWeight:       e.FocusWeight,
	}.Normalize()
}

// AlertsConfig holds all alerting rules and webhook targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines a threshold-based alert condition.
type AlertRule struct {
	// Name is the human-readable alert identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "concentration_level < 30" or
	// "state == calibrating".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
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

// defaults returns a Config pre-populated with default values. Engine
// defaults come from the compute package so the two never drift apart.
func defaults() *Config {
	t := compute.DefaultTuning()
	return &Config{
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			SnapshotTTL:       DefaultSnapshotTTL,
			BroadcastInterval: DefaultBroadcastInterval,
		},
		Engine: EngineConfig{
			FrameRate:          t.FrameRate,
			SmoothingFactor:    t.SmoothingFactor,
			Sensitivity:        t.Sensitivity,
			CalibrationFrames:  t.CalibrationFrames,
			MaxHistorySize:     t.MaxHistorySize,
			MinPupilDiameterPx: t.MinPupilDiameter,
			MaxPupilDiameterPx: t.MaxPupilDiameter,
			StabilityWeight:    t.StabilityWeight,
			FocusWeight:        t.FocusWeight,
		},
	}
}

// validate checks required fields and structural constraints. Engine values
// are clamped elsewhere, not rejected here.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d out of range", cfg.Server.HTTPPort)
	}
	if cfg.Server.SnapshotTTL <= 0 {
		return fmt.Errorf("server.snapshot_ttl must be positive")
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth: unknown mode %q", cfg.Server.Auth.Mode)
	}
	for i, rule := range cfg.Alerts.Rules {
		if rule.Name == "" {
			return fmt.Errorf("alerts.rules[%d]: name is required", i)
		}
		if rule.Condition == "" {
			return fmt.Errorf("alerts.rules[%d] %q: condition is required", i, rule.Name)
		}
		switch rule.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("alerts.rules[%d] %q: unknown severity %q", i, rule.Name, rule.Severity)
		}
	}
	for i, wh := range cfg.Alerts.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("alerts.webhooks[%d]: unknown type %q", i, wh.Type)
		}
	}
	return nil
}
