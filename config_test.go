package cathy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Address != "127.0.0.1:8099" {
		t.Errorf("Address = %q", cfg.Address)
	}
	if cfg.Idle.Reader != 60*time.Second || cfg.Idle.Writer != 30*time.Second {
		t.Errorf("Idle = %+v", cfg.Idle)
	}
	if cfg.Timer.Tick != 100*time.Millisecond || cfg.Timer.Slots != 12 {
		t.Errorf("Timer = %+v", cfg.Timer)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v", cfg.WriteTimeout)
	}
	if cfg.RateLimit.Enabled || cfg.RateLimit.NewLimiter() != nil {
		t.Errorf("RateLimit = %+v, want disabled by default", cfg.RateLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty address", func(c *Config) { c.Address = "" }},
		{"zero tick", func(c *Config) { c.Timer.Tick = 0 }},
		{"zero slots", func(c *Config) { c.Timer.Slots = 0 }},
		{"negative reader idle", func(c *Config) { c.Idle.Reader = -time.Second }},
		{"zero write timeout", func(c *Config) { c.WriteTimeout = 0 }},
		{"enabled with zero burst", func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.Burst = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Validate() error = %v, want ErrInvalidArgument", err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.RateLimit = RateLimitConfig{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled rate limit: Validate() error = %v", err)
	}
	if cfg.RateLimit.NewLimiter() != nil {
		t.Error("NewLimiter() on disabled config returned non-nil")
	}
}

// 环境变量为进程级状态，以下用例不并行
func TestLoadConfigLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cathy.yaml")
	yaml := []byte(`
address: 0.0.0.0:9000
idle:
  reader: 90s
timer:
  tick: 50ms
  slots: 20
rate_limit:
  enabled: true
  messages_per_second: 10
  burst: 5
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CATHY_IDLE_WRITER", "15s")
	t.Setenv("CATHY_ADDRESS", "0.0.0.0:9001")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	if err := flags.Parse([]string{"--log-level=debug"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, flags)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Address != "0.0.0.0:9001" {
		t.Errorf("Address = %q, env should override file", cfg.Address)
	}
	if cfg.Idle.Reader != 90*time.Second {
		t.Errorf("Idle.Reader = %v, want 90s from file", cfg.Idle.Reader)
	}
	if cfg.Idle.Writer != 15*time.Second {
		t.Errorf("Idle.Writer = %v, want 15s from env", cfg.Idle.Writer)
	}
	if cfg.Timer.Tick != 50*time.Millisecond || cfg.Timer.Slots != 20 {
		t.Errorf("Timer = %+v", cfg.Timer)
	}
	if cfg.RateLimit.MessagesPerSecond != 10 || cfg.RateLimit.Burst != 5 || !cfg.RateLimit.Enabled {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug from flag", cfg.LogLevel)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want default", cfg.WriteTimeout)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("LoadConfig() with missing file returned nil error")
	}
}
