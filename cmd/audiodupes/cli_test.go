package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audiodupes/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	musicDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedFpcalc())
	base := testsupport.BaseDir(cfg)
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("AUDIODUPES_FPCALC", "")

	configPath := filepath.Join(base, "config.toml")
	testsupport.WriteConfigFile(t, cfg, configPath)

	music := filepath.Join(base, "music")
	ascending := testsupport.AscendingCodes(300)
	testsupport.WriteFingerprintFile(t, filepath.Join(music, "maple-leaf-rag-4.opus"), ascending, 37.5)
	testsupport.WriteFingerprintFile(t, filepath.Join(music, "maple-leaf-rag-8k-2.opus"), ascending, 37.5)
	testsupport.WriteFingerprintFile(t, filepath.Join(music, "entertainer.opus"), testsupport.ScrambledCodes(300, 0), 37.5)
	testsupport.WriteFile(t, filepath.Join(music, "README"), 64)

	return &cliTestEnv{baseDir: base, configPath: configPath, musicDir: music}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}

func TestScanFindsCluster(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "scan", env.musicDir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "fingerprinting 4 files\n")
	requireContains(t, out, "comparing 3 pairs\n")
	requireContains(t, out, "found one cluster in: \n   "+env.musicDir+"\n")
	requireContains(t, out, "--- 2 duplicates ---")
	requireContains(t, out, filepath.Join(env.musicDir, "maple-leaf-rag-4.opus"))
	requireContains(t, out, filepath.Join(env.musicDir, "maple-leaf-rag-8k-2.opus"))
	if strings.Contains(out, "is not audio") {
		t.Fatalf("failures should only be listed in verbose mode:\n%s", out)
	}

	lines := strings.Split(out, "\n")
	if len(lines) < 2 || len(lines[1]) != 4 || strings.Count(lines[1], "2") != 1 {
		t.Fatalf("unexpected progress line %q", lines[1])
	}
}

func TestScanProgressBarLeavesStdoutClean(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "scan", "--progress", "bar", env.musicDir)
	if err != nil {
		t.Fatalf("scan --progress bar: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[1], "fingerprinting took ") {
		t.Fatalf("expected no progress marks on stdout, got %q", out)
	}
	requireContains(t, out, "found one cluster in: ")

	if _, _, err := runCLI(t, env, "scan", "--progress", "spinner", env.musicDir); err == nil {
		t.Fatal("expected unknown progress style to be rejected")
	}
}

func TestScanVerboseShowsDiagnostics(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "scan", "-v", env.musicDir)
	if err != nil {
		t.Fatalf("scan -v: %v", err)
	}
	requireContains(t, out, "ERROR 2  "+filepath.Join(env.musicDir, "README")+" is not audio")
	requireContains(t, out, "possible match: 0 / 640\n1.0\n")
}

func TestScanLineCounts(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.Remove(filepath.Join(env.musicDir, "README")); err != nil {
		t.Fatalf("remove README: %v", err)
	}

	out, _, err := runCLI(t, env, "scan", env.musicDir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n := strings.Count(out, "\n"); n != 16 {
		t.Fatalf("expected 16 lines, got %d:\n%s", n, out)
	}
	requireContains(t, out, "comparing 3 pairs\n1.0\n   ")
	if strings.Contains(out, "possible match") {
		t.Fatalf("coarse distances are verbose-only:\n%s", out)
	}

	verbose, _, err := runCLI(t, env, "scan", "-v", env.musicDir)
	if err != nil {
		t.Fatalf("scan -v: %v", err)
	}
	if n := strings.Count(verbose, "\n"); n != 17 {
		t.Fatalf("expected 17 verbose lines, got %d:\n%s", n, verbose)
	}
	requireContains(t, verbose, "possible match: 0 / 640\n")
}

func TestScanWritesReportFile(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "report.txt")

	if _, _, err := runCLI(t, env, "scan", "--colour", "yes", "-o", target, env.musicDir); err != nil {
		t.Fatalf("scan -o: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	report := string(data)
	requireContains(t, report, "--- 2 duplicates ---")
	if strings.Contains(report, "\x1b[") {
		t.Fatal("report file must never be coloured")
	}
	if strings.Contains(report, "fingerprinting") {
		t.Fatal("report file should only hold the report")
	}
}

func TestScanUnreadablePathFailsBeforeOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.musicDir, "sdfo apo ss")
	target := filepath.Join(env.baseDir, "report.txt")

	_, _, err := runCLI(t, env, "scan", env.musicDir, missing, "-o", target)
	if err == nil {
		t.Fatal("expected error for missing path")
	}
	if err.Error() != "can't read "+missing {
		t.Fatalf("unexpected error %q", err)
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Fatalf("report file should not exist, stat err=%v", statErr)
	}
}

func TestScanJSONKeepsStdoutParseable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, stderr, err := runCLI(t, env, "scan", "--format", "json", env.musicDir)
	if err != nil {
		t.Fatalf("scan --format json: %v", err)
	}
	var doc struct {
		RunID    string `json:"run_id"`
		Files    int    `json:"files"`
		Clusters []struct {
			Files []struct {
				Path string `json:"path"`
			} `json:"files"`
		} `json:"clusters"`
		Failures []struct {
			Code int `json:"code"`
		} `json:"failures"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("stdout is not json: %v\n%s", err, out)
	}
	if doc.RunID == "" || doc.Files != 4 || len(doc.Clusters) != 1 || len(doc.Failures) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	requireContains(t, stderr, "fingerprinting 4 files")
}

func TestScanRejectsBadColour(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "scan", "--colour", "purple", env.musicDir); err == nil {
		t.Fatal("expected error for unsupported colour")
	}
}

func TestScanPopulatesCache(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "scan", env.musicDir); err != nil {
		t.Fatalf("scan: %v", err)
	}

	out, _, err := runCLI(t, env, "cache", "stats", "--json")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	var stats struct {
		Entries int `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, out)
	}
	if stats.Entries != 3 {
		t.Fatalf("expected 3 cached fingerprints, got %d", stats.Entries)
	}

	out, _, err = runCLI(t, env, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 3 cached fingerprints")
}

func TestCompareExplainsScore(t *testing.T) {
	env := setupCLITestEnv(t)
	a := filepath.Join(env.musicDir, "maple-leaf-rag-4.opus")
	b := filepath.Join(env.musicDir, "entertainer.opus")

	out, _, err := runCLI(t, env, "compare", "--json", a, b)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	var result compareOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode compare output: %v\n%s", err, out)
	}
	if result.Stage != "coarse_rejected" || result.Score != 0 || result.CoarseBits != 640 {
		t.Fatalf("unexpected comparison: %+v", result)
	}

	out, _, err = runCLI(t, env, "compare", a, filepath.Join(env.musicDir, "maple-leaf-rag-8k-2.opus"))
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, out, "1.0000")
	requireContains(t, out, "strong")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestDepsReportsStub(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, "deps")
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	requireContains(t, out, "fpcalc")
	requireContains(t, out, "ok")
}
