package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"audiodupes/internal/config"
	"audiodupes/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckReadable verifies that a scan input can be read. Directories must
// also be traversable.
func CheckReadable(path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: path, Detail: fmt.Sprintf("stat: %v", err)}
	}
	mode := uint32(unix.R_OK)
	if info.IsDir() {
		mode |= unix.X_OK
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: path, Detail: fmt.Sprintf("insufficient permissions: %v", err)}
	}
	return Result{Name: path, Passed: true, Detail: "readable"}
}

// CheckSystemDeps evaluates the external binaries the configured pipeline
// needs. ffmpeg and ffprobe are optional unless the feature using them is on.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	if cfg == nil {
		return nil
	}
	fp := cfg.Fingerprint
	requirements := []deps.Requirement{
		{
			Name:        "fpcalc",
			Command:     fp.FpcalcBinary,
			Description: "Required for Chromaprint fingerprinting",
		},
		{
			Name:        "FFmpeg",
			Command:     fp.FFmpegBinary,
			Description: "Required for silence trimming",
			Optional:    !fp.TrimSilence,
		},
		{
			Name:        "FFprobe",
			Command:     fp.FFprobeBinary,
			Description: "Required for audio stream detection",
			Optional:    !fp.ProbeMedia,
		},
	}
	return deps.CheckBinaries(requirements)
}
