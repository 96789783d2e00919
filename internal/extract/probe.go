package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"audiodupes/internal/media/ffprobe"
)

var errProberUnavailable = errors.New("ffprobe unavailable")

// FFprobe counts audio streams with the ffprobe binary.
type FFprobe struct {
	Binary string
}

// Probe implements Prober. Failing to start ffprobe at all is reported as
// fatal; ffprobe rejecting the file is not.
func (p FFprobe) Probe(ctx context.Context, path string) (Probe, error) {
	result, err := ffprobe.Inspect(ctx, p.Binary, path)
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
			return Probe{}, fmt.Errorf("%w: %w", errProberUnavailable, err)
		}
		return Probe{}, err
	}
	return Probe{HasAudio: result.HasAudio(), DurationSeconds: result.DurationSeconds()}, nil
}
