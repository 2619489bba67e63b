// Package config handles bridge configuration loading and validation.
//
// Configuration is read from a YAML file, overridden by environment
// variables, and validated using struct tags. Every field has a
// working default so the bridge runs with no config file at all.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file or a field is absent.
const (
	DefaultName      = "vrbridge"
	DefaultPeriodMS  = 10
	DefaultBaseFrame = "openVR_origin"
	DefaultOrigin    = "seated"
	DefaultLogLevel  = "info"
	DefaultWebPort   = 8080
)

// WebConfig configures the HTTP/websocket surface.
type WebConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

// SinkConfig configures where transforms are published to. Endpoints
// left empty disable the corresponding sink; the in-process cache and
// the dashboard stream are always active.
type SinkConfig struct {
	// ZMQEndpoint is the PUB bind address, e.g. "tcp://*:5556".
	ZMQEndpoint string `yaml:"zmqEndpoint"`

	// RemoteURL is the websocket address of a remote transform
	// server, e.g. "ws://host:8443/ws/transforms".
	RemoteURL string `yaml:"remoteURL" validate:"omitempty,url"`
}

// CameraConfig configures the tracked-camera device.
type CameraConfig struct {
	DeviceIndex int `yaml:"deviceIndex" validate:"gte=0"`
	Quality     int `yaml:"quality" validate:"gte=1,lte=100"`
	PollRate    int `yaml:"pollRate" validate:"gte=1,lte=120"`
}

// Config is the root bridge configuration.
type Config struct {
	// Name identifies this bridge instance in logs and status.
	Name string `yaml:"name"`

	// PeriodMS is the pose broadcast period in milliseconds.
	PeriodMS int `yaml:"periodMS" validate:"gt=0"`

	// BaseFrame is the parent frame transforms are published against.
	BaseFrame string `yaml:"baseFrame" validate:"required"`

	// Origin is the tracking origin mode: seated, standing or raw.
	// Unknown values fall back to seated with a warning at startup.
	Origin string `yaml:"origin"`

	LogLevel string       `yaml:"logLevel"`
	Web      WebConfig    `yaml:"web"`
	Sink     SinkConfig   `yaml:"sink"`
	Camera   CameraConfig `yaml:"camera"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Name:      DefaultName,
		PeriodMS:  DefaultPeriodMS,
		BaseFrame: DefaultBaseFrame,
		Origin:    DefaultOrigin,
		LogLevel:  DefaultLogLevel,
		Web:       WebConfig{Port: DefaultWebPort},
		Camera: CameraConfig{
			DeviceIndex: 0,
			Quality:     85,
			PollRate:    30,
		},
	}
}

// Load reads the configuration from path (optional), applies
// environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides config fields from VRBRIDGE_* environment
// variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("VRBRIDGE_NAME"); v != "" {
		cfg.Name = v
	}
	if v := os.Getenv("VRBRIDGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("VRBRIDGE_BASE_FRAME"); v != "" {
		cfg.BaseFrame = v
	}
	if v := os.Getenv("VRBRIDGE_ORIGIN"); v != "" {
		cfg.Origin = v
	}
	if v := os.Getenv("VRBRIDGE_ZMQ_ENDPOINT"); v != "" {
		cfg.Sink.ZMQEndpoint = v
	}
	if v := os.Getenv("VRBRIDGE_REMOTE_URL"); v != "" {
		cfg.Sink.RemoteURL = v
	}
	if v, ok := envInt("VRBRIDGE_PERIOD_MS"); ok {
		cfg.PeriodMS = v
	}
	if v, ok := envInt("VRBRIDGE_WEB_PORT"); ok {
		cfg.Web.Port = v
	}
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
