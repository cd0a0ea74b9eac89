// Package config loads framematch settings from an optional TOML file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"framematch/utils"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Modes and policies accepted in the config file
const (
	ModeCopy   = "copy"
	ModeReport = "report"

	DecoderNative = "native"
	DecoderOpenCV = "opencv"

	DecodeFailuresSkip  = "skip"
	DecodeFailuresAbort = "abort"
)

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Config holds everything a matching run needs
type Config struct {
	InDir          string  `toml:"in_dir"`
	PoolDir        string  `toml:"pool_dir"`
	OutDir         string  `toml:"out_dir"`
	Metric         string  `toml:"metric"`
	Comparator     string  `toml:"comparator"`
	Mode           string  `toml:"mode"`
	Workers        int     `toml:"workers"`
	Decoder        string  `toml:"decoder"`
	DecodeFailures string  `toml:"decode_failures"`
	Timeout        string  `toml:"timeout"`
	Logging        Logging `toml:"logging"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Metric:         "ssim",
		Comparator:     "max",
		Mode:           ModeCopy,
		Decoder:        DecoderNative,
		DecodeFailures: DecodeFailuresSkip,
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// SampleConfig returns the commented sample written by "config init"
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return utils.ExpandPath("~/.config/framematch/config.toml")
}

// Load reads path over the defaults. An empty path means the default location.
// A missing file is not an error; exists reports whether one was read.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	c := Default()

	resolved, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&c); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := c.Normalize(); err != nil {
		return nil, "", false, err
	}
	return &c, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}
	expanded, err := utils.ExpandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// Normalize expands paths and canonicalizes the enum values
func (c *Config) Normalize() error {
	for _, p := range []*string{&c.InDir, &c.PoolDir, &c.OutDir, &c.Logging.File} {
		expanded, err := utils.ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	for _, v := range []*string{&c.Metric, &c.Comparator, &c.Mode, &c.Decoder, &c.DecodeFailures, &c.Logging.Level, &c.Logging.Format} {
		*v = strings.ToLower(strings.TrimSpace(*v))
	}
	c.Timeout = strings.TrimSpace(c.Timeout)
	return nil
}

// TimeoutDuration parses Timeout; empty means no deadline
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout %q: %v", ErrInvalid, c.Timeout, err)
	}
	return d, nil
}

// WriteSample writes the sample config to path, refusing to overwrite unless force is set
func WriteSample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
