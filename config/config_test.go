package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"framematch/config"
)

func validConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.InDir = t.TempDir()
	cfg.PoolDir = t.TempDir()
	cfg.OutDir = t.TempDir()
	return cfg
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected no config file in temp HOME")
	}
	if !strings.HasSuffix(resolved, filepath.Join(".config", "framematch", "config.toml")) {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if *cfg != config.Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadReadsAndNormalizesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "framematch.toml")
	content := `
in_dir = "~/frames"
pool_dir = "/data/pool/"
metric = " RMS "
comparator = "AbsMax"
workers = 3
timeout = "90s"

[logging]
level = "DEBUG"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %s to be read, got %q exists=%v", path, resolved, exists)
	}
	if cfg.InDir != filepath.Join(home, "frames") {
		t.Fatalf("in_dir not expanded: %q", cfg.InDir)
	}
	if cfg.PoolDir != "/data/pool" {
		t.Fatalf("pool_dir not cleaned: %q", cfg.PoolDir)
	}
	if cfg.Metric != "rms" || cfg.Comparator != "absmax" || cfg.Logging.Level != "debug" {
		t.Fatalf("enums not normalized: %+v", cfg)
	}
	if cfg.Mode != config.ModeCopy || cfg.DecodeFailures != config.DecodeFailuresSkip {
		t.Fatalf("defaults lost for unset keys: %+v", cfg)
	}
	if d, err := cfg.TimeoutDuration(); err != nil || d != 90*time.Second {
		t.Fatalf("TimeoutDuration = %v, %v", d, err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("pool_directory = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing in dir", func(c *config.Config) { c.InDir = "" }},
		{"missing pool dir", func(c *config.Config) { c.PoolDir = "" }},
		{"missing out dir in copy mode", func(c *config.Config) { c.OutDir = "" }},
		{"unknown mode", func(c *config.Config) { c.Mode = "move" }},
		{"unknown metric", func(c *config.Config) { c.Metric = "psnr" }},
		{"unknown comparator", func(c *config.Config) { c.Comparator = "min" }},
		{"unknown decoder", func(c *config.Config) { c.Decoder = "vips" }},
		{"unknown decode policy", func(c *config.Config) { c.DecodeFailures = "retry" }},
		{"negative workers", func(c *config.Config) { c.Workers = -1 }},
		{"bad timeout", func(c *config.Config) { c.Timeout = "soon" }},
		{"negative timeout", func(c *config.Config) { c.Timeout = "-1s" }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}

	cfg := validConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.Mode = config.ModeReport
	cfg.OutDir = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("report mode should not need out_dir: %v", err)
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg != config.Default() {
		t.Fatalf("sample config drifted from defaults:\n got %+v\nwant %+v", cfg, config.Default())
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.WriteSample(path, false); err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	if err := config.WriteSample(path, false); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if err := config.WriteSample(path, true); err != nil {
		t.Fatalf("forced WriteSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != config.SampleConfig() {
		t.Fatalf("unexpected written sample: %v", err)
	}
}
