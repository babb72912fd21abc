package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "muxd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
server:
  addr: 127.0.0.1:9999
  ws_path: /mux
  send_buffer: 64
upstream:
  backoff_base: 2s
  backoff_cap: 45s
  token_fallback: 90s
  heartbeat_interval: 15s
sweeper:
  interval: 10s
log:
  level: debug
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:9999")
	}
	if cfg.Server.WSPath != "/mux" {
		t.Errorf("Server.WSPath = %q, want %q", cfg.Server.WSPath, "/mux")
	}
	if cfg.Upstream.BackoffBase.Std() != 2*time.Second {
		t.Errorf("Upstream.BackoffBase = %s, want 2s", cfg.Upstream.BackoffBase.Std())
	}
	if cfg.Upstream.TokenFallback.Std() != 90*time.Second {
		t.Errorf("Upstream.TokenFallback = %s, want 90s", cfg.Upstream.TokenFallback.Std())
	}
	if cfg.Sweeper.Interval.Std() != 10*time.Second {
		t.Errorf("Sweeper.Interval = %s, want 10s", cfg.Sweeper.Interval.Std())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_MUX_ADDR", "127.0.0.1:7777")

	yaml := `
server:
  addr: ${TEST_MUX_ADDR}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:7777" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:7777")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "server:\n  addr: 127.0.0.1:9999\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("explicit value overridden: %q", cfg.Server.Addr)
	}
	if cfg.Server.WSPath != DefaultWSPath {
		t.Errorf("Server.WSPath = %q, want default %q", cfg.Server.WSPath, DefaultWSPath)
	}
	if cfg.Upstream.BackoffBase.Std() != DefaultBackoffBase {
		t.Errorf("Upstream.BackoffBase = %s, want default %s", cfg.Upstream.BackoffBase.Std(), DefaultBackoffBase)
	}
	if cfg.Upstream.HeartbeatInterval.Std() != DefaultHeartbeatInterval {
		t.Errorf("Upstream.HeartbeatInterval = %s, want default %s", cfg.Upstream.HeartbeatInterval.Std(), DefaultHeartbeatInterval)
	}
	if cfg.Sweeper.Interval.Std() != DefaultSweepInterval {
		t.Errorf("Sweeper.Interval = %s, want default %s", cfg.Sweeper.Interval.Std(), DefaultSweepInterval)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want default %q", cfg.Log.Level, DefaultLogLevel)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeTempFile(t, "upstream:\n  backoff_base: fast\n")

	if _, err := Load(path); err == nil {
		t.Error("expected error for unparseable duration")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"ws path without slash", func(c *Config) { c.Server.WSPath = "ws" }, true},
		{"zero send buffer", func(c *Config) { c.Server.SendBuffer = -1 }, true},
		{"cap below base", func(c *Config) {
			c.Upstream.BackoffBase = Duration(10 * time.Second)
			c.Upstream.BackoffCap = Duration(time.Second)
		}, true},
		{"negative token fallback", func(c *Config) { c.Upstream.TokenFallback = Duration(-time.Second) }, true},
		{"zero sweep interval", func(c *Config) { c.Sweeper.Interval = Duration(-1) }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
