// Package fpcache persists extracted fingerprints in SQLite so repeated scans
// of the same library skip fpcalc.
//
// Rows are keyed by path, silence trimming and extraction length; the file's
// size and modification time are stored alongside and must match on lookup,
// so an edited file is re-fingerprinted. Fingerprints are stored as
// little-endian uint32 blobs.
//
// A Store holds an exclusive flock on "<db>.lock" for its lifetime. A second
// process opening the same cache gets ErrLocked and is expected to carry on
// uncached.
package fpcache
