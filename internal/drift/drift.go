// Package drift scores distributional shift per column between the
// reference baseline and a window.
//
// Numeric columns are scored with the population stability index over a
// fixed number of equal-width bins spanning the pooled value range, or with
// the two-sample Kolmogorov-Smirnov statistic when configured. Categorical
// columns are scored with the total variation distance over normalized
// category frequencies. All metrics are deterministic: identical
// (reference, window) pairs always yield identical scores.
package drift

import (
	"fmt"

	"github.com/nagare-ml/nagare/internal/model"
)

// ComputationError reports a column whose score could not be computed.
// It is handled locally: the column's record is marked unscored and the
// window's report stays valid.
type ComputationError struct {
	Column string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("drift: column %s: %s", e.Column, e.Reason)
}

// Scorer computes per-column drift records.
type Scorer struct {
	metric    model.MetricKind
	threshold float64
	bins      int
}

// NewScorer builds a scorer from the run thresholds.
func NewScorer(t model.Thresholds) *Scorer {
	return &Scorer{
		metric:    t.NumericMetric,
		threshold: t.FeatureDrift,
		bins:      defaultBins,
	}
}

// Score computes the drift record for one validated column. Computation
// failures are folded into the record as unscored rather than returned.
func (s *Scorer) Score(col model.Column, ref, win *model.Dataset) model.FeatureDrift {
	rec := model.FeatureDrift{
		Feature:   col.Name,
		Threshold: s.threshold,
	}

	score, metric, err := s.score(col, ref, win)
	if err != nil {
		rec.Metric = metric
		rec.Unscored = true
		rec.Reason = err.Error()
		return rec
	}

	rec.Metric = metric
	rec.Score = score
	rec.Drifted = score > s.threshold
	return rec
}

func (s *Scorer) score(col model.Column, ref, win *model.Dataset) (float64, model.MetricKind, error) {
	switch col.Type {
	case model.ColumnNumeric:
		rv, err := ref.NumericColumn(col.Name)
		if err != nil {
			return 0, s.metric, &ComputationError{Column: col.Name, Reason: err.Error()}
		}
		wv, err := win.NumericColumn(col.Name)
		if err != nil {
			return 0, s.metric, &ComputationError{Column: col.Name, Reason: err.Error()}
		}
		score, err := s.scoreNumeric(col.Name, rv, wv)
		return score, s.metric, err
	case model.ColumnCategorical:
		rv, err := ref.CategoricalColumn(col.Name)
		if err != nil {
			return 0, model.MetricTVD, &ComputationError{Column: col.Name, Reason: err.Error()}
		}
		wv, err := win.CategoricalColumn(col.Name)
		if err != nil {
			return 0, model.MetricTVD, &ComputationError{Column: col.Name, Reason: err.Error()}
		}
		score, err := scoreCategorical(col.Name, rv, wv)
		return score, model.MetricTVD, err
	default:
		return 0, "", &ComputationError{Column: col.Name, Reason: fmt.Sprintf("unscoreable column type %q", col.Type)}
	}
}

// scoreNumeric applies the zero-variance policy before dispatching to the
// configured metric: a column constant on both sides with the same value
// scores 0; a column constant in the reference but not in the window (or
// constant at a different value) scores the metric's maximal value.
func (s *Scorer) scoreNumeric(name string, ref, win []float64) (float64, error) {
	if len(ref) == 0 || len(win) == 0 {
		return 0, &ComputationError{Column: name, Reason: "empty value slice"}
	}

	refConst := isConstant(ref)
	winConst := isConstant(win)
	switch {
	case refConst && winConst && ref[0] == win[0]:
		return 0, nil
	case refConst:
		return s.maxNumericScore(), nil
	}

	switch s.metric {
	case model.MetricKS:
		return ksStatistic(ref, win), nil
	default:
		return psi(ref, win, s.bins), nil
	}
}

func (s *Scorer) maxNumericScore() float64 {
	if s.metric == model.MetricKS {
		return 1.0
	}
	return maxPSI
}

func isConstant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}
