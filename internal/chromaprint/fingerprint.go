package chromaprint

import "errors"

// Code is a single fingerprint frame.
type Code uint32

// Fingerprint is the ordered code sequence for one audio file.
type Fingerprint []Code

var (
	// ErrEmptyFingerprint reports a fingerprint or needle with no codes.
	ErrEmptyFingerprint = errors.New("chromaprint: empty fingerprint")
	// ErrLengthMismatch reports code sequences whose lengths cannot be compared.
	ErrLengthMismatch = errors.New("chromaprint: length mismatch")
)

// FromUint32 converts raw fpcalc output into a Fingerprint.
func FromUint32(raw []uint32) Fingerprint {
	fp := make(Fingerprint, len(raw))
	for i, v := range raw {
		fp[i] = Code(v)
	}
	return fp
}

// Validate rejects fingerprints that cannot take part in a comparison.
func (f Fingerprint) Validate() error {
	if len(f) == 0 {
		return ErrEmptyFingerprint
	}
	return nil
}

// centered returns the 2*radius codes around the midpoint of f. The caller
// guarantees len(f) > 2*radius.
func (f Fingerprint) centered(radius int) Fingerprint {
	mid := len(f) / 2
	return f[mid-radius : mid+radius]
}
