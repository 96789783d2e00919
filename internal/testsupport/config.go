package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"audiodupes/internal/config"
)

// FpcalcStub echoes its input when the file already holds fpcalc JSON and
// fails with fpcalc's decode exit status on anything else. Paired with
// WriteFingerprintFile it stands in for real audio.
const FpcalcStub = `#!/bin/sh
for last; do :; done
case "$(head -c 1 "$last")" in
  "{") cat "$last" ;;
  *) echo "ERROR: Could not open the input file" >&2; exit 2 ;;
esac
`

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Media probing is off so tests only need an fpcalc stand-in.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Cache.Path = filepath.Join(cfgVal.Paths.CacheDir, "fingerprints.db")
	cfgVal.Fingerprint.ProbeMedia = false
	cfgVal.Fingerprint.Workers = 2
	cfgVal.Matching.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStubbedFpcalc installs FpcalcStub and points the config at it.
func WithStubbedFpcalc() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Fingerprint.FpcalcBinary = WriteScript(b.t, filepath.Join(b.baseDir, "bin"), "fpcalc", FpcalcStub)
	}
}

// WithCacheDisabled turns the fingerprint cache off.
func WithCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}

// WriteConfigFile serializes cfg as TOML so it can be loaded with config.Load.
func WriteConfigFile(t testing.TB, cfg *config.Config, path string) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
