package config

import (
	"fmt"

	"framematch/imageprocessor"
	"framematch/matcher"
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate ensures the configuration is usable for a run
func (c *Config) Validate() error {
	if c.InDir == "" {
		return invalid("in_dir must be set (--in-dir)")
	}
	if c.PoolDir == "" {
		return invalid("pool_dir must be set (--frame-pool-dir)")
	}

	switch c.Mode {
	case ModeCopy:
		if c.OutDir == "" {
			return invalid("out_dir must be set in copy mode (--out-dir)")
		}
	case ModeReport:
	default:
		return invalid("mode must be copy or report, got %q", c.Mode)
	}

	if _, err := imageprocessor.ParseMetric(c.Metric); err != nil {
		return invalid("%v", err)
	}
	if _, err := matcher.ParseComparator(c.Comparator); err != nil {
		return invalid("%v", err)
	}

	switch c.Decoder {
	case DecoderNative, DecoderOpenCV:
	default:
		return invalid("decoder must be native or opencv, got %q", c.Decoder)
	}
	switch c.DecodeFailures {
	case DecodeFailuresSkip, DecodeFailuresAbort:
	default:
		return invalid("decode_failures must be skip or abort, got %q", c.DecodeFailures)
	}

	if c.Workers < 0 {
		return invalid("workers must not be negative")
	}
	if d, err := c.TimeoutDuration(); err != nil {
		return err
	} else if d < 0 {
		return invalid("timeout must not be negative")
	}

	switch c.Logging.Format {
	case "", "console", "text", "json":
	default:
		return invalid("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return invalid("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
