// Package cluster groups audio files whose fingerprints match.
//
// Builder scores every unordered pair of records (skipping pairs whose
// durations differ by more than the configured gap), links pairs scoring above
// the match threshold, and returns the connected components. Grouping is
// transitive: if A matches B and B matches C, all three share a cluster even
// when A and C do not match each other.
//
// Pair scoring may run on several goroutines. Merges and pair events are
// applied on the calling goroutine in combination order, so results and
// diagnostics are reproducible for a given input order.
package cluster
