package fpcalc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strings"
	"time"

	"audiodupes/internal/chromaprint"
	"audiodupes/internal/logging"
)

// ErrNotAudio marks inputs fpcalc could not fingerprint.
var ErrNotAudio = errors.New("not audio")

// notAudioCode is reported when the input decoded but produced no
// fingerprint. It matches fpcalc's own exit status for decode failures.
const notAudioCode = 2

// minTrimmedWAVBytes is a canonical WAV header with no samples.
const minTrimmedWAVBytes = 44

// NotAudioError describes a single file that could not be fingerprinted.
type NotAudioError struct {
	Path   string
	Code   int
	Detail string
}

// Error renders the line shown in verbose scan output. Detail is kept out
// of it and logged instead.
func (e *NotAudioError) Error() string {
	return fmt.Sprintf("ERROR %d  %s is not audio", e.Code, e.Path)
}

// Is reports ErrNotAudio equivalence.
func (e *NotAudioError) Is(target error) bool {
	return target == ErrNotAudio
}

// Options configures how fingerprints are extracted.
type Options struct {
	Binary        string
	FFmpegBinary  string
	LengthSeconds int
	TrimSilence   bool
	// SilenceThresholdDB is the level below which audio counts as silence.
	SilenceThresholdDB float64
	SilenceMinSeconds  float64
	Timeout            time.Duration
}

// Result is the decoded fingerprint of one file.
type Result struct {
	Fingerprint chromaprint.Fingerprint
	// DurationSeconds is fpcalc's reported duration rounded down.
	DurationSeconds int
}

// Runner executes fpcalc.
type Runner struct {
	opts   Options
	logger *slog.Logger
}

// New constructs a Runner, filling in default binary names.
func New(opts Options, logger *slog.Logger) *Runner {
	opts.Binary = strings.TrimSpace(opts.Binary)
	if opts.Binary == "" {
		opts.Binary = "fpcalc"
	}
	opts.FFmpegBinary = strings.TrimSpace(opts.FFmpegBinary)
	if opts.FFmpegBinary == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{opts: opts, logger: logging.NewComponentLogger(logger, "fpcalc")}
}

// Fingerprint extracts the fingerprint of path.
func (r *Runner) Fingerprint(ctx context.Context, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("fpcalc: empty path")
	}
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	input := path
	if r.opts.TrimSilence {
		trimmed, cleanup, err := r.trimSilence(ctx, path)
		if err != nil {
			return Result{}, err
		}
		defer cleanup()
		input = trimmed
	}

	result, err := r.run(ctx, path, input)
	if err != nil {
		return Result{}, err
	}
	r.logger.Debug("fingerprint extracted",
		logging.String(logging.FieldPath, path),
		logging.Int("codes", len(result.Fingerprint)),
		logging.Int("duration_seconds", result.DurationSeconds),
		logging.Duration("extract_duration", time.Since(start)),
	)
	return result, nil
}

type rawOutput struct {
	Duration    float64  `json:"duration"`
	Fingerprint []uint32 `json:"fingerprint"`
}

func (r *Runner) run(ctx context.Context, path, input string) (Result, error) {
	args := []string{"-raw", "-json"}
	if r.opts.LengthSeconds > 0 {
		args = append(args, "-length", fmt.Sprintf("%d", r.opts.LengthSeconds))
	}
	args = append(args, input)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.opts.Binary, args...)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("fpcalc %s: %w", path, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, &NotAudioError{
				Path:   path,
				Code:   exitErr.ExitCode(),
				Detail: strings.TrimSpace(stderr.String()),
			}
		}
		return Result{}, fmt.Errorf("run fpcalc: %w", err)
	}

	var raw rawOutput
	if err := json.Unmarshal(output, &raw); err != nil {
		return Result{}, &NotAudioError{Path: path, Code: notAudioCode, Detail: "unparsable fpcalc output"}
	}
	if len(raw.Fingerprint) == 0 {
		return Result{}, &NotAudioError{Path: path, Code: notAudioCode, Detail: "empty fingerprint"}
	}
	duration := 0
	if raw.Duration > 0 && !math.IsInf(raw.Duration, 0) {
		duration = int(math.Floor(raw.Duration))
	}
	return Result{
		Fingerprint:     chromaprint.FromUint32(raw.Fingerprint),
		DurationSeconds: duration,
	}, nil
}

// silenceFilter trims leading silence, reverses, trims again, and restores
// the original order.
func (r *Runner) silenceFilter() string {
	threshold := fmt.Sprintf("%gdB", r.opts.SilenceThresholdDB)
	trim := fmt.Sprintf("silenceremove=start_periods=1:start_duration=%g:start_threshold=%s",
		r.opts.SilenceMinSeconds, threshold)
	return strings.Join([]string{trim, "areverse", trim, "areverse"}, ",")
}

func (r *Runner) trimSilence(ctx context.Context, path string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "audiodupes-trim-*.wav")
	if err != nil {
		return "", nil, fmt.Errorf("create trim file: %w", err)
	}
	name := tmp.Name()
	_ = tmp.Close()
	cleanup := func() { _ = os.Remove(name) }

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.opts.FFmpegBinary,
		"-v", "error", "-nostdin", "-y",
		"-i", path,
		"-vn", "-af", r.silenceFilter(),
		"-f", "wav", name,
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		cleanup()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", nil, fmt.Errorf("trim silence %s: %w", path, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", nil, &NotAudioError{
				Path:   path,
				Code:   notAudioCode,
				Detail: strings.TrimSpace(stderr.String()),
			}
		}
		return "", nil, fmt.Errorf("run ffmpeg: %w", err)
	}

	info, err := os.Stat(name)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("stat trimmed audio: %w", err)
	}
	if info.Size() <= minTrimmedWAVBytes {
		cleanup()
		return "", nil, &NotAudioError{Path: path, Code: notAudioCode, Detail: "nothing left after trimming silence"}
	}
	return name, cleanup, nil
}
