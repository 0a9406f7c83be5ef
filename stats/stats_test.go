package stats

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func fuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores   []int
		mean     float64
		stdev    float64
		min, max float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638, 10, 23},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891, 10, 124},
		{[]int{1}, 1, 0, 1, 1},
		{[]int{}, 0, 0, 0, 0},
		{[]int{1, 1}, 1, 0, 1, 1},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(fuzzyEqual(s.Mean(), c.mean))
		is.True(fuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Min(), c.min)
		is.Equal(s.Max(), c.max)
		is.Equal(s.Iterations(), len(c.scores))
	}
}

func TestMerge(t *testing.T) {
	is := is.New(t)
	scores := []float64{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}
	whole := &Statistic{}
	for _, v := range scores {
		whole.Push(v)
	}
	for split := 0; split <= len(scores); split++ {
		a, b := &Statistic{}, &Statistic{}
		for _, v := range scores[:split] {
			a.Push(v)
		}
		for _, v := range scores[split:] {
			b.Push(v)
		}
		a.Merge(b)
		is.Equal(a.Iterations(), whole.Iterations())
		is.True(fuzzyEqual(a.Mean(), whole.Mean()))
		is.True(fuzzyEqual(a.Variance(), whole.Variance()))
		is.Equal(a.Min(), whole.Min())
		is.Equal(a.Max(), whole.Max())
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(fuzzyEqual(ZVal(95), 1.959963984540054))
	is.True(fuzzyEqual(ZVal(99), 2.5758293035489004))
	is.True(fuzzyEqual(ZVal(0), 0))
}

func TestConfidenceInterval(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for _, v := range []float64{10, 12, 23, 23, 16, 23, 21, 16} {
		s.Push(v)
	}
	lo, hi := s.ConfidenceInterval(95)
	is.True(lo < s.Mean() && s.Mean() < hi)
	is.True(fuzzyEqual(hi-s.Mean(), s.Mean()-lo))
	is.True(fuzzyEqual(hi-lo, 2*1.959963984540054*s.StandardError()))

	empty := &Statistic{}
	lo, hi = empty.ConfidenceInterval(95)
	is.Equal(lo, 0.0)
	is.Equal(hi, 0.0)
}

func TestRate(t *testing.T) {
	is := is.New(t)
	var r Rate
	is.Equal(r.Value(), 0.0)
	for i := 0; i < 10; i++ {
		r.Add(i < 3)
	}
	is.True(fuzzyEqual(r.Value(), 0.3))
	lo, hi := r.Interval(95)
	is.True(lo < 0.3 && hi > 0.3)

	all := Rate{Hits: 5, Trials: 5}
	lo, hi = all.Interval(95)
	is.Equal(lo, 1.0)
	is.Equal(hi, 1.0)
}
