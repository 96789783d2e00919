package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "AUDIO"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
		},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if !result.HasAudio() {
		t.Fatal("expected HasAudio")
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.HasAudio() {
		t.Fatal("expected no audio for empty stream list")
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestInspectDecodesOutput(t *testing.T) {
	stub := writeStub(t, `cat <<'JSON'
{"streams":[{"index":0,"codec_name":"opus","codec_type":"audio","sample_rate":"48000","channels":2}],
 "format":{"filename":"x.opus","duration":"292.58","size":"171483","format_name":"ogg"}}
JSON
`)
	result, err := Inspect(context.Background(), stub, "x.opus")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if !result.HasAudio() || result.Streams[0].CodecName != "opus" {
		t.Fatalf("unexpected streams: %+v", result.Streams)
	}
	if result.DurationSeconds() != 292.58 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestInspectReportsFailure(t *testing.T) {
	stub := writeStub(t, "echo 'Invalid data found when processing input' >&2\nexit 1\n")
	if _, err := Inspect(context.Background(), stub, "README"); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
	if _, err := Inspect(context.Background(), stub, "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
