package drift

import "math"

// scoreCategorical computes the total variation distance between the
// normalized category-frequency vectors of the two samples:
// 0.5 * sum |p_c - q_c| over the union of categories. A category present
// only in the window contributes its full window mass, so novel categories
// register as divergence instead of being silently ignored. The score is
// in [0, 1]; fully disjoint category sets score 1.
func scoreCategorical(name string, ref, win []string) (float64, error) {
	if len(ref) == 0 || len(win) == 0 {
		return 0, &ComputationError{Column: name, Reason: "empty value slice"}
	}

	// Zero-variance policy, mirroring the numeric branch: a reference
	// with a single category scores 0 against an identical constant
	// window and maximal against anything else.
	if refConst, winConst := isConstantStr(ref), isConstantStr(win); refConst {
		if winConst && ref[0] == win[0] {
			return 0, nil
		}
		return 1.0, nil
	}

	refFreq := frequencies(ref)
	winFreq := frequencies(win)

	dist := 0.0
	for c, p := range refFreq {
		dist += math.Abs(p - winFreq[c])
	}
	for c, q := range winFreq {
		if _, seen := refFreq[c]; !seen {
			dist += q
		}
	}
	return dist / 2, nil
}

func isConstantStr(v []string) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

func frequencies(v []string) map[string]float64 {
	freq := make(map[string]float64, 16)
	for _, c := range v {
		freq[c]++
	}
	n := float64(len(v))
	for c := range freq {
		freq[c] /= n
	}
	return freq
}
