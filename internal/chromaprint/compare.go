package chromaprint

import (
	"errors"
	"fmt"
	"slices"
)

// Params tunes the two-pass comparison.
type Params struct {
	// Radius1 is the half-width, in codes, of the coarse needle.
	Radius1 int
	// Radius2 is the half-width, in codes, of the fine needle. Fingerprints
	// shorter than 2*Radius2+1 never match.
	Radius2 int
	// CoarseRejectBitsPerCode is the mean per-code bit error above which the
	// coarse pass rejects a pair outright.
	CoarseRejectBitsPerCode int
}

// DefaultParams returns the stock comparison tuning.
func DefaultParams() Params {
	return Params{
		Radius1:                 10,
		Radius2:                 100,
		CoarseRejectBitsPerCode: 8,
	}
}

// Validate ensures the parameters describe a usable comparison.
func (p Params) Validate() error {
	if p.Radius1 <= 0 {
		return errors.New("radius1 must be positive")
	}
	if p.Radius2 <= 0 {
		return errors.New("radius2 must be positive")
	}
	if p.Radius1 > p.Radius2 {
		return fmt.Errorf("radius1 (%d) must not exceed radius2 (%d)", p.Radius1, p.Radius2)
	}
	if p.CoarseRejectBitsPerCode < 0 || p.CoarseRejectBitsPerCode > BitsPerCode {
		return fmt.Errorf("coarse_reject_bits_per_code must be between 0 and %d", BitsPerCode)
	}
	return nil
}

// MinLength is the shortest fingerprint that can score above zero.
func (p Params) MinLength() int {
	return 2*p.Radius2 + 1
}

// CoarseBits is the bit count of the coarse needle.
func (p Params) CoarseBits() int {
	return 2 * p.Radius1 * BitsPerCode
}

// Stage records how far a comparison progressed.
type Stage int

const (
	// StageTooShort means the shorter fingerprint lacked enough context.
	StageTooShort Stage = iota
	// StageCoarseRejected means the coarse pass ruled the pair out.
	StageCoarseRejected
	// StageScored means the fine pass produced the score.
	StageScored
)

func (s Stage) String() string {
	switch s {
	case StageTooShort:
		return "too_short"
	case StageCoarseRejected:
		return "coarse_rejected"
	case StageScored:
		return "scored"
	default:
		return "unknown"
	}
}

// Result carries a score together with the coarse-pass diagnostics.
type Result struct {
	Score          float64
	Stage          Stage
	CoarseDistance int
	CoarseBits     int
	FineDistance   int
}

// Comparator scores fingerprint pairs. The zero value is not usable; build
// one with NewComparator.
type Comparator struct {
	params Params
}

// NewComparator validates params and returns a Comparator.
func NewComparator(params Params) (*Comparator, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("comparator params: %w", err)
	}
	return &Comparator{params: params}, nil
}

// Compare returns the similarity of a and b. The result is symmetric.
func (c *Comparator) Compare(a, b Fingerprint) (float64, error) {
	res, err := c.CompareDetailed(a, b)
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}

// CompareDetailed is Compare with the intermediate distances exposed.
func (c *Comparator) CompareDetailed(a, b Fingerprint) (Result, error) {
	if err := a.Validate(); err != nil {
		return Result{}, err
	}
	if err := b.Validate(); err != nil {
		return Result{}, err
	}
	short, long := orderPair(a, b)

	p := c.params
	res := Result{CoarseBits: p.CoarseBits()}
	if len(short) < p.MinLength() {
		res.Stage = StageTooShort
		return res, nil
	}

	coarse := short.centered(p.Radius1)
	res.CoarseDistance = windowSearch(coarse, long)
	if res.CoarseDistance > len(coarse)*p.CoarseRejectBitsPerCode {
		res.Stage = StageCoarseRejected
		return res, nil
	}

	fine := short.centered(p.Radius2)
	res.FineDistance = windowSearch(fine, long)
	res.Stage = StageScored
	res.Score = 1.0 - float64(res.FineDistance)/(float64(len(fine))*16.0)
	return res, nil
}

// orderPair returns the shorter fingerprint first. Equal lengths are ordered
// by code value so that the needle is taken from the same side regardless of
// argument order.
func orderPair(a, b Fingerprint) (Fingerprint, Fingerprint) {
	switch {
	case len(a) < len(b):
		return a, b
	case len(a) > len(b):
		return b, a
	case slices.Compare(a, b) <= 0:
		return a, b
	default:
		return b, a
	}
}
