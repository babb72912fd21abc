package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAddr              = "127.0.0.1:9480"
	DefaultWSPath            = "/ws"
	DefaultSendBuffer        = 256
	DefaultBackoffBase       = 1 * time.Second
	DefaultBackoffCap        = 30 * time.Second
	DefaultTokenFallback     = 60 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultReadBuffer        = 1000
	DefaultSweepInterval     = 30 * time.Second
	DefaultLogLevel          = "info"
)

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.WSPath == "" {
		c.Server.WSPath = DefaultWSPath
	}
	if c.Server.SendBuffer == 0 {
		c.Server.SendBuffer = DefaultSendBuffer
	}

	if c.Upstream.BackoffBase == 0 {
		c.Upstream.BackoffBase = Duration(DefaultBackoffBase)
	}
	if c.Upstream.BackoffCap == 0 {
		c.Upstream.BackoffCap = Duration(DefaultBackoffCap)
	}
	if c.Upstream.TokenFallback == 0 {
		c.Upstream.TokenFallback = Duration(DefaultTokenFallback)
	}
	if c.Upstream.HeartbeatInterval == 0 {
		c.Upstream.HeartbeatInterval = Duration(DefaultHeartbeatInterval)
	}
	if c.Upstream.HandshakeTimeout == 0 {
		c.Upstream.HandshakeTimeout = Duration(DefaultHandshakeTimeout)
	}
	if c.Upstream.WriteTimeout == 0 {
		c.Upstream.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if c.Upstream.ReadBuffer == 0 {
		c.Upstream.ReadBuffer = DefaultReadBuffer
	}

	if c.Sweeper.Interval == 0 {
		c.Sweeper.Interval = Duration(DefaultSweepInterval)
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
