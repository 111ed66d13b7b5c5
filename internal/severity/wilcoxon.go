package severity

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Wilcoxon runs the paired signed-rank test on two label sequences and
// returns the two-sided p-value under the normal approximation with
// tie correction. Pairs with zero difference are discarded first; when
// every pair is tied the statistic is undefined and NaN is returned.
func Wilcoxon(x, y []Label) float64 {
	var diffs []float64
	for i := range x {
		if d := float64(x[i]) - float64(y[i]); d != 0 {
			diffs = append(diffs, d)
		}
	}
	n := len(diffs)
	if n == 0 {
		return math.NaN()
	}

	ranks, tieSum := midranks(diffs)
	var wPlus, wMinus float64
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}
	w := math.Min(wPlus, wMinus)

	fn := float64(n)
	mean := fn * (fn + 1) / 4
	variance := fn*(fn+1)*(2*fn+1)/24 - tieSum/48
	if variance <= 0 {
		return math.NaN()
	}
	z := (w - mean) / math.Sqrt(variance)

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	p := 2 * norm.CDF(-math.Abs(z))
	if p > 1 {
		p = 1
	}
	return p
}

// midranks assigns ranks to the absolute differences, averaging the
// ranks of ties. It also returns the tie-correction term
// sum(t^3 - t) over tie groups of size t.
func midranks(diffs []float64) (ranks []float64, tieSum float64) {
	n := len(diffs)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return math.Abs(diffs[order[a]]) < math.Abs(diffs[order[b]])
	})

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && math.Abs(diffs[order[j]]) == math.Abs(diffs[order[i]]) {
			j++
		}
		// Positions i..j-1 share one absolute value; their rank is the
		// average of positions i+1..j.
		mid := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = mid
		}
		if t := float64(j - i); t > 1 {
			tieSum += t*t*t - t
		}
		i = j
	}
	return ranks, tieSum
}
