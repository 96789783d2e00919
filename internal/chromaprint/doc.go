// Package chromaprint scores the similarity of two Chromaprint acoustic
// fingerprints.
//
// A fingerprint is an ordered sequence of 32-bit codes, one per ~1/8 second
// of audio, as produced by fpcalc -raw. Comparison slides a window taken from
// the middle of the shorter fingerprint across the longer one and keeps the
// offset with the smallest Hamming distance. A small coarse window is tried
// first; only pairs that align well there pay for the large fine window.
//
// Scores are 1.0 for identical alignment and fall to 0.0 when half of the
// fine window's bits differ. They are not clamped and go negative for
// anti-correlated input.
package chromaprint
