package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
}

// Matching contains the fingerprint comparison and clustering tunables.
type Matching struct {
	Radius1                 int     `toml:"radius1"`
	Radius2                 int     `toml:"radius2"`
	CoarseRejectBitsPerCode int     `toml:"coarse_reject_bits_per_code"`
	DurationSkipSeconds     int     `toml:"duration_skip_seconds"`
	MatchThreshold          float64 `toml:"match_threshold"`
	StrongMatchThreshold    float64 `toml:"strong_match_threshold"`
	WeakMatchThreshold      float64 `toml:"weak_match_threshold"`
	// Workers bounds concurrent pair comparisons. 0 uses all CPUs.
	Workers int `toml:"workers"`
}

// Fingerprint contains settings for the external extraction tools.
type Fingerprint struct {
	FpcalcBinary  string `toml:"fpcalc_binary"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	// LengthSeconds limits how much audio fpcalc reads. 0 reads the whole file.
	LengthSeconds int `toml:"length_seconds"`
	// ProbeMedia rejects files without audio streams via ffprobe before
	// fingerprinting.
	ProbeMedia         bool    `toml:"probe_media"`
	TrimSilence        bool    `toml:"trim_silence"`
	SilenceThresholdDB float64 `toml:"silence_threshold_db"`
	SilenceMinSeconds  float64 `toml:"silence_min_seconds"`
	// Workers bounds concurrent extraction. 0 uses all CPUs.
	Workers        int `toml:"workers"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Cache contains configuration for the fingerprint cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Output contains report rendering settings.
type Output struct {
	Colour   string `toml:"colour"`
	Format   string `toml:"format"`
	Progress string `toml:"progress"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// ToFile mirrors log output into paths.log_dir/audiodupes.log.
	ToFile bool `toml:"to_file"`
}

// Config encapsulates all configuration values for audiodupes.
//
// Configuration sections by subsystem:
//   - Paths: cache and log directories
//   - Matching: comparison radii, duration gate, and score thresholds
//   - Fingerprint: fpcalc/ffmpeg/ffprobe invocation and silence trimming
//   - Cache: SQLite fingerprint cache
//   - Output: report colour and format
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Matching    Matching    `toml:"matching"`
	Fingerprint Fingerprint `toml:"fingerprint"`
	Cache       Cache       `toml:"cache"`
	Output      Output      `toml:"output"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/audiodupes/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("audiodupes.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the enabled features write to.
func (c *Config) EnsureDirectories() error {
	dirs := make([]string, 0, 2)
	if c.Cache.Enabled {
		dirs = append(dirs, filepath.Dir(c.Cache.Path))
	}
	if c.Logging.ToFile {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogFilePath returns the log file used when logging.to_file is set.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "audiodupes.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "audiodupes")
	}
	return "~/.cache/audiodupes"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
