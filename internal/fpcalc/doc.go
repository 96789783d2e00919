// Package fpcalc runs Chromaprint's fpcalc tool and decodes its raw output.
//
// Runner.Fingerprint shells out to `fpcalc -raw -json`, optionally after
// decoding the input through ffmpeg's silenceremove filter so that leading
// and trailing silence does not dominate the fingerprint. Any failure of the
// tool on a given file (undecodable input, nothing left after trimming) is
// reported as a *NotAudioError that matches ErrNotAudio via errors.Is.
// Failures to start the tool at all are returned as ordinary errors so that
// callers can abort instead of marking every file as bad.
package fpcalc
