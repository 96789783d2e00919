package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateFingerprint(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	if err := ensurePositiveMap(map[string]int{
		"matching.radius1": m.Radius1,
		"matching.radius2": m.Radius2,
	}); err != nil {
		return err
	}
	if m.Radius1 > m.Radius2 {
		return errors.New("matching.radius1 must not exceed matching.radius2")
	}
	if m.CoarseRejectBitsPerCode < 0 || m.CoarseRejectBitsPerCode > 32 {
		return errors.New("matching.coarse_reject_bits_per_code must be between 0 and 32")
	}
	if m.DurationSkipSeconds < 0 {
		return errors.New("matching.duration_skip_seconds must not be negative")
	}
	if m.WeakMatchThreshold > m.MatchThreshold {
		return errors.New("matching.weak_match_threshold must not exceed matching.match_threshold")
	}
	if m.MatchThreshold > m.StrongMatchThreshold {
		return errors.New("matching.match_threshold must not exceed matching.strong_match_threshold")
	}
	if m.Workers < 0 {
		return errors.New("matching.workers must not be negative")
	}
	return nil
}

func (c *Config) validateFingerprint() error {
	f := c.Fingerprint
	if f.LengthSeconds < 0 {
		return errors.New("fingerprint.length_seconds must not be negative")
	}
	if f.Workers < 0 {
		return errors.New("fingerprint.workers must not be negative")
	}
	if f.TimeoutSeconds <= 0 {
		return errors.New("fingerprint.timeout_seconds must be positive")
	}
	if f.TrimSilence {
		if f.SilenceThresholdDB >= 0 {
			return errors.New("fingerprint.silence_threshold_db must be negative when trim_silence is enabled")
		}
		if f.SilenceMinSeconds <= 0 {
			return errors.New("fingerprint.silence_min_seconds must be positive when trim_silence is enabled")
		}
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Colour {
	case ColourAuto, ColourYes, ColourNo:
	default:
		return fmt.Errorf("output.colour: unsupported value %q (want auto, yes, or no)", c.Output.Colour)
	}
	switch c.Output.Format {
	case FormatText, FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("output.format: unsupported value %q", c.Output.Format)
	}
	switch c.Output.Progress {
	case ProgressMarks, ProgressBar:
	default:
		return fmt.Errorf("output.progress: unsupported value %q (want marks or bar)", c.Output.Progress)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
