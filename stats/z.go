package stats

import "gonum.org/v1/gonum/stat/distuv"

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	return dist.Quantile((1 + (confidenceInterval / 100)) / 2)
}

// ConfidenceInterval returns the bounds of the given confidence interval
// (0 to 100 percent) around the mean of s.
func (s *Statistic) ConfidenceInterval(pct float64) (lo, hi float64) {
	margin := ZVal(pct) * s.StandardError()
	return s.Mean() - margin, s.Mean() + margin
}
