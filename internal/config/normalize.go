package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFingerprint()
	c.normalizeMatching()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = filepath.Join(c.Paths.CacheDir, defaultCacheFile)
	}
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeFingerprint() {
	if value, ok := os.LookupEnv("AUDIODUPES_FPCALC"); ok && strings.TrimSpace(value) != "" {
		c.Fingerprint.FpcalcBinary = value
	}
	c.Fingerprint.FpcalcBinary = defaultString(c.Fingerprint.FpcalcBinary, defaultFpcalcBinary)
	c.Fingerprint.FFmpegBinary = defaultString(c.Fingerprint.FFmpegBinary, defaultFFmpegBinary)
	c.Fingerprint.FFprobeBinary = defaultString(c.Fingerprint.FFprobeBinary, defaultFFprobeBinary)
	if c.Fingerprint.Workers == 0 {
		c.Fingerprint.Workers = runtime.NumCPU()
	}
}

func (c *Config) normalizeMatching() {
	if c.Matching.Workers == 0 {
		c.Matching.Workers = runtime.NumCPU()
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Colour = strings.ToLower(strings.TrimSpace(c.Output.Colour))
	switch c.Output.Colour {
	case "":
		c.Output.Colour = defaultColour
	case "always", "true", "on":
		c.Output.Colour = ColourYes
	case "never", "false", "off":
		c.Output.Colour = ColourNo
	}
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	c.Output.Progress = strings.ToLower(strings.TrimSpace(c.Output.Progress))
	if c.Output.Progress == "" {
		c.Output.Progress = defaultProgress
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
