package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.WSPath == "" || c.Server.WSPath[0] != '/' {
		return fmt.Errorf("server.ws_path must start with '/', got %q", c.Server.WSPath)
	}
	if c.Server.SendBuffer < 1 {
		return errors.New("server.send_buffer must be >= 1")
	}

	if c.Upstream.BackoffBase <= 0 {
		return errors.New("upstream.backoff_base must be > 0")
	}
	if c.Upstream.BackoffCap < c.Upstream.BackoffBase {
		return fmt.Errorf("upstream.backoff_cap (%s) cannot be below backoff_base (%s)",
			c.Upstream.BackoffCap.Std(), c.Upstream.BackoffBase.Std())
	}
	if c.Upstream.TokenFallback <= 0 {
		return errors.New("upstream.token_fallback must be > 0")
	}
	if c.Upstream.HeartbeatInterval <= 0 {
		return errors.New("upstream.heartbeat_interval must be > 0")
	}
	if c.Upstream.ReadBuffer < 1 {
		return errors.New("upstream.read_buffer must be >= 1")
	}

	if c.Sweeper.Interval <= 0 {
		return errors.New("sweeper.interval must be > 0")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}

	return nil
}
