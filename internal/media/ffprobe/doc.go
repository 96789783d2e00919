// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Only the fields needed to decide whether a file carries audio are decoded:
// stream codec types and container duration/size. Inspect runs ffprobe with
// the supplied context so callers can bound slow or hung probes.
package ffprobe
