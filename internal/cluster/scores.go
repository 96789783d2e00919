package cluster

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ScoreSummary describes the distribution of fine-pass scores in one Build.
type ScoreSummary struct {
	Count  int
	Mean   float64
	StdDev float64
	P95    float64
	Max    float64
}

func summarizeScores(scores []float64) ScoreSummary {
	if len(scores) == 0 {
		return ScoreSummary{}
	}
	sorted := slices.Clone(scores)
	slices.Sort(sorted)
	summary := ScoreSummary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Max:   sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		summary.StdDev = math.Sqrt(stat.Variance(sorted, nil))
	}
	return summary
}
