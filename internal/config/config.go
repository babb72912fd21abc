// Package config loads and validates the multiplexer configuration from
// YAML, with ${VAR} environment expansion and code-level defaults.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a muxd instance.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the local endpoint clients attach to.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	WSPath     string `yaml:"ws_path"`
	SendBuffer int    `yaml:"send_buffer"` // per-client notice buffer
}

// UpstreamConfig holds upstream transport settings.
type UpstreamConfig struct {
	BackoffBase       Duration `yaml:"backoff_base"`
	BackoffCap        Duration `yaml:"backoff_cap"`
	TokenFallback     Duration `yaml:"token_fallback"` // credential re-request interval
	HeartbeatInterval Duration `yaml:"heartbeat_interval"`
	HandshakeTimeout  Duration `yaml:"handshake_timeout"`
	WriteTimeout      Duration `yaml:"write_timeout"`
	ReadBuffer        int      `yaml:"read_buffer"` // inbound message channel size
}

// SweeperConfig holds liveness sweeper settings.
type SweeperConfig struct {
	Interval Duration `yaml:"interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
