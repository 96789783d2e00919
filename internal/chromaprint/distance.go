package chromaprint

import (
	"fmt"

	"github.com/steakknife/hamming"
)

// BitsPerCode is the width of a single Code.
const BitsPerCode = 32

// BitDistance counts the differing bits between two equal-length code
// sequences, treating each as one flat bit vector.
func BitDistance(a, b Fingerprint) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: bit distance over %d and %d codes", ErrLengthMismatch, len(a), len(b))
	}
	return bitDistance(a, b), nil
}

func bitDistance(a, b Fingerprint) int {
	total := 0
	for i := range a {
		total += hamming.Uint32(uint32(a[i]), uint32(b[i]))
	}
	return total
}

// WindowSearch returns the smallest BitDistance between needle and any
// contiguous window of haystack with the same length. Every offset from 0 to
// len(haystack)-len(needle) inclusive is evaluated.
func WindowSearch(needle, haystack Fingerprint) (int, error) {
	if len(needle) == 0 {
		return 0, ErrEmptyFingerprint
	}
	if len(haystack) < len(needle) {
		return 0, fmt.Errorf("%w: needle of %d codes exceeds haystack of %d", ErrLengthMismatch, len(needle), len(haystack))
	}
	return windowSearch(needle, haystack), nil
}

func windowSearch(needle, haystack Fingerprint) int {
	k := len(needle)
	best := BitsPerCode*k + 1
	for offset := 0; offset+k <= len(haystack); offset++ {
		if d := bitDistance(needle, haystack[offset:offset+k]); d < best {
			best = d
		}
	}
	return best
}
