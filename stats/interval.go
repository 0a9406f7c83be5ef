package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var unitNormal = distuv.Normal{Mu: 0, Sigma: 1}

// ZVal is the two-tailed z-value for a confidence level given in percent
// (95 means 95%).
func ZVal(confidence float64) float64 {
	return unitNormal.Quantile((1 + confidence/100) / 2)
}

// ConfidenceInterval returns the bounds of the mean at the given
// confidence level, in percent.
func (s *Statistic) ConfidenceInterval(confidence float64) (lo, hi float64) {
	half := ZVal(confidence) * s.StandardError()
	return s.mean - half, s.mean + half
}

// Rate is a success fraction over a number of trials.
type Rate struct {
	Hits   int
	Trials int
}

func (r *Rate) Add(hit bool) {
	r.Trials++
	if hit {
		r.Hits++
	}
}

func (r Rate) Value() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Trials)
}

// Interval is the normal-approximation interval of the rate, clamped to
// [0, 1].
func (r Rate) Interval(confidence float64) (lo, hi float64) {
	if r.Trials == 0 {
		return 0, 0
	}
	p := r.Value()
	se := ZVal(confidence) * math.Sqrt(p*(1-p)/float64(r.Trials))
	return max(0, p-se), min(1, p+se)
}
