package fpcalc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audiodupes/internal/testsupport"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	return testsupport.WriteScript(t, dir, name, "#!/bin/sh\n"+body)
}

func TestFingerprintDecodesRawOutput(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	stub := writeScript(t, dir, "fpcalc", `printf '%s\n' "$@" > `+argsFile+`
echo '{"duration": 292.58, "fingerprint": [1, 2, 4294967295]}'
`)

	runner := New(Options{Binary: stub, LengthSeconds: 120}, nil)
	result, err := runner.Fingerprint(context.Background(), "song.opus")
	if err != nil {
		t.Fatalf("Fingerprint returned error: %v", err)
	}
	if result.DurationSeconds != 292 {
		t.Fatalf("expected duration rounded down to 292, got %d", result.DurationSeconds)
	}
	if len(result.Fingerprint) != 3 || uint32(result.Fingerprint[2]) != 4294967295 {
		t.Fatalf("unexpected fingerprint: %v", result.Fingerprint)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	args := strings.Fields(string(data))
	want := []string{"-raw", "-json", "-length", "120", "song.opus"}
	if strings.Join(args, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected fpcalc args %v, want %v", args, want)
	}
}

func TestFingerprintOmitsLengthWhenZero(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	stub := writeScript(t, dir, "fpcalc", `printf '%s\n' "$@" > `+argsFile+`
echo '{"duration": 1, "fingerprint": [7]}'
`)
	if _, err := New(Options{Binary: stub}, nil).Fingerprint(context.Background(), "x.flac"); err != nil {
		t.Fatalf("Fingerprint returned error: %v", err)
	}
	data, _ := os.ReadFile(argsFile)
	if strings.Contains(string(data), "-length") {
		t.Fatalf("did not expect -length in %q", data)
	}
}

func TestFingerprintExitFailureIsNotAudio(t *testing.T) {
	dir := t.TempDir()
	stub := writeScript(t, dir, "fpcalc", "echo 'ERROR: Could not open the input file' >&2\nexit 2\n")

	_, err := New(Options{Binary: stub}, nil).Fingerprint(context.Background(), "/music/README")
	if !errors.Is(err, ErrNotAudio) {
		t.Fatalf("expected ErrNotAudio, got %v", err)
	}
	var notAudio *NotAudioError
	if !errors.As(err, &notAudio) {
		t.Fatalf("expected *NotAudioError, got %T", err)
	}
	if notAudio.Code != 2 {
		t.Fatalf("expected exit code 2, got %d", notAudio.Code)
	}
	if notAudio.Error() != "ERROR 2  /music/README is not audio" {
		t.Fatalf("unexpected message %q", notAudio.Error())
	}
	if !strings.Contains(notAudio.Detail, "Could not open") {
		t.Fatalf("expected stderr detail, got %q", notAudio.Detail)
	}
}

func TestFingerprintEmptyOutputIsNotAudio(t *testing.T) {
	dir := t.TempDir()
	stub := writeScript(t, dir, "fpcalc", "echo '{\"duration\": 0, \"fingerprint\": []}'\n")
	_, err := New(Options{Binary: stub}, nil).Fingerprint(context.Background(), "silence.wav")
	if !errors.Is(err, ErrNotAudio) {
		t.Fatalf("expected ErrNotAudio for empty fingerprint, got %v", err)
	}
}

func TestFingerprintMissingBinaryIsFatal(t *testing.T) {
	_, err := New(Options{Binary: filepath.Join(t.TempDir(), "no-such-fpcalc")}, nil).
		Fingerprint(context.Background(), "x.mp3")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if errors.Is(err, ErrNotAudio) {
		t.Fatalf("missing binary must not be reported as a per-file failure: %v", err)
	}
}

func TestFingerprintTrimsSilenceFirst(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeScript(t, dir, "ffmpeg", `for last; do :; done
head -c 4096 /dev/zero > "$last"
`)
	inputFile := filepath.Join(dir, "input")
	fpcalc := writeScript(t, dir, "fpcalc", `for last; do :; done
echo "$last" > `+inputFile+`
echo '{"duration": 10.9, "fingerprint": [5, 6]}'
`)

	runner := New(Options{Binary: fpcalc, FFmpegBinary: ffmpeg, TrimSilence: true, SilenceThresholdDB: -50, SilenceMinSeconds: 0.5}, nil)
	result, err := runner.Fingerprint(context.Background(), "/music/track.mp3")
	if err != nil {
		t.Fatalf("Fingerprint returned error: %v", err)
	}
	if result.DurationSeconds != 10 {
		t.Fatalf("unexpected duration %d", result.DurationSeconds)
	}
	data, err := os.ReadFile(inputFile)
	if err != nil {
		t.Fatalf("read fpcalc input: %v", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasSuffix(trimmed, ".wav") || trimmed == "/music/track.mp3" {
		t.Fatalf("expected fpcalc to read the trimmed wav, got %q", trimmed)
	}
	if _, err := os.Stat(trimmed); !os.IsNotExist(err) {
		t.Fatalf("expected trimmed file %q to be removed, stat err=%v", trimmed, err)
	}
}

func TestFingerprintTrimmedToNothingIsNotAudio(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeScript(t, dir, "ffmpeg", `for last; do :; done
head -c 44 /dev/zero > "$last"
`)
	fpcalc := writeScript(t, dir, "fpcalc", "echo should-not-run\nexit 1\n")

	runner := New(Options{Binary: fpcalc, FFmpegBinary: ffmpeg, TrimSilence: true}, nil)
	_, err := runner.Fingerprint(context.Background(), "/music/120s-silence.ogg")
	var notAudio *NotAudioError
	if !errors.As(err, &notAudio) {
		t.Fatalf("expected *NotAudioError, got %v", err)
	}
	if notAudio.Code != 2 {
		t.Fatalf("expected code 2, got %d", notAudio.Code)
	}
}

func TestSilenceFilter(t *testing.T) {
	runner := New(Options{SilenceThresholdDB: -50, SilenceMinSeconds: 0.5}, nil)
	got := runner.silenceFilter()
	want := "silenceremove=start_periods=1:start_duration=0.5:start_threshold=-50dB,areverse," +
		"silenceremove=start_periods=1:start_duration=0.5:start_threshold=-50dB,areverse"
	if got != want {
		t.Fatalf("unexpected filter\n got: %s\nwant: %s", got, want)
	}
}

func TestNewDefaultsBinaries(t *testing.T) {
	opts := New(Options{Binary: "  "}, nil).opts
	if opts.Binary != "fpcalc" || opts.FFmpegBinary != "ffmpeg" {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}
