// Package extract turns a list of files into fingerprint records.
//
// Files are fingerprinted on a bounded worker pool. Each file is first looked
// up in the optional cache, then optionally probed for audio streams, then
// handed to fpcalc. Files that turn out not to be audio are collected as
// failures and never abort the run; only infrastructure errors (a missing
// binary, a cancelled context) do. Records are returned in input order
// regardless of completion order.
//
// Progress marks are delivered serially: '.' per fingerprinted file, ':' in
// place of every tenth mark, and the failure's exit code digit for files
// that could not be fingerprinted.
package extract
