package cluster

// Class labels a scored pair for display. It never affects grouping.
type Class int

const (
	// ClassNone is a pair that reached the fine pass but scored at or below
	// the weak threshold.
	ClassNone Class = iota
	// ClassWeak is a near miss in (weak, match].
	ClassWeak
	// ClassMatch is a merged pair.
	ClassMatch
	// ClassStrong is a merged pair above the strong threshold.
	ClassStrong
)

func (c Class) String() string {
	switch c {
	case ClassWeak:
		return "weak"
	case ClassMatch:
		return "match"
	case ClassStrong:
		return "strong"
	default:
		return "none"
	}
}

// IsMatch reports whether the pair contributed to a cluster.
func (c Class) IsMatch() bool {
	return c == ClassMatch || c == ClassStrong
}

// PairEvent describes one pair that passed the coarse filter.
type PairEvent struct {
	PathA          string
	PathB          string
	Score          float64
	CoarseDistance int
	CoarseBits     int
	Class          Class
}

// Classify labels score against the thresholds in o.
func (o Options) Classify(score float64) Class {
	switch {
	case score > o.StrongMatchThreshold:
		return ClassStrong
	case score > o.MatchThreshold:
		return ClassMatch
	case score > o.WeakMatchThreshold:
		return ClassWeak
	default:
		return ClassNone
	}
}
