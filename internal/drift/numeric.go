package drift

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// defaultBins is the bin count for the PSI histogram comparison.
	defaultBins = 10

	// psiEpsilon floors bin proportions so empty bins never produce
	// log(0) or a division by zero.
	psiEpsilon = 1e-4
)

// maxPSI bounds any PSI computable under the epsilon floor: at most two
// bins can hold a side's full mass against the opposing floor.
var maxPSI = 2 * (1 - psiEpsilon) * math.Log((1-psiEpsilon)/psiEpsilon)

// psi computes the population stability index between two samples over
// equal-width bins spanning the pooled min/max of both.
func psi(ref, win []float64, bins int) float64 {
	lo := math.Min(minOf(ref), minOf(win))
	hi := math.Max(maxOf(ref), maxOf(win))
	width := (hi - lo) / float64(bins)
	if width == 0 {
		return 0
	}

	refCounts := binCounts(ref, lo, width, bins)
	winCounts := binCounts(win, lo, width, bins)

	score := 0.0
	for i := 0; i < bins; i++ {
		p := float64(refCounts[i]) / float64(len(ref))
		q := float64(winCounts[i]) / float64(len(win))
		if p < psiEpsilon {
			p = psiEpsilon
		}
		if q < psiEpsilon {
			q = psiEpsilon
		}
		score += (q - p) * math.Log(q/p)
	}
	return score
}

func binCounts(v []float64, lo, width float64, bins int) []int {
	counts := make([]int, bins)
	for _, x := range v {
		b := int((x - lo) / width)
		if b < 0 {
			b = 0
		}
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}
	return counts
}

// ksStatistic computes D = max |F1(x) - F2(x)| over the empirical CDFs of
// the two samples. Inputs are copied and sorted; the originals are never
// mutated.
func ksStatistic(ref, win []float64) float64 {
	r := make([]float64, len(ref))
	w := make([]float64, len(win))
	copy(r, ref)
	copy(w, win)
	sort.Float64s(r)
	sort.Float64s(w)
	return stat.KolmogorovSmirnov(r, nil, w, nil)
}

func minOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
