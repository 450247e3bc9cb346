// Package perf evaluates regression accuracy of the frozen model on a
// window and compares it against the reference-measured accuracy.
package perf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/nagare-ml/nagare/internal/model"
)

// Summary holds the three regression metrics for one side of a comparison.
type Summary struct {
	MAE  float64
	RMSE float64
	R2   float64
}

// Evaluator compares window accuracy against the reference.
type Evaluator struct {
	r2Drop     float64
	rmseGrowth float64
}

// NewEvaluator builds an evaluator from the run thresholds.
func NewEvaluator(t model.Thresholds) *Evaluator {
	return &Evaluator{r2Drop: t.R2Drop, rmseGrowth: t.RMSEGrowth}
}

// Metrics computes MAE, RMSE and R2 for paired truth/prediction vectors.
// R2 is signed: a model doing worse than predicting the mean goes negative,
// which is exactly the degenerate case the monitoring exists to catch.
func Metrics(truth, predicted []float64) (Summary, error) {
	if len(truth) == 0 {
		return Summary{}, fmt.Errorf("perf: empty truth vector")
	}
	if len(truth) != len(predicted) {
		return Summary{}, fmt.Errorf("perf: truth/prediction length mismatch: %d != %d", len(truth), len(predicted))
	}

	n := float64(len(truth))
	mean := stat.Mean(truth, nil)

	var absSum, sqSum, ssTot float64
	for i := range truth {
		d := truth[i] - predicted[i]
		absSum += math.Abs(d)
		sqSum += d * d
		m := truth[i] - mean
		ssTot += m * m
	}

	s := Summary{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
	}
	switch {
	case ssTot == 0 && sqSum == 0:
		// Constant truth, perfectly predicted.
		s.R2 = 0
	case ssTot == 0:
		// Constant truth, missed: worse than the mean by definition.
		s.R2 = -1
	default:
		s.R2 = 1 - sqSum/ssTot
	}
	return s, nil
}

// Compare derives the per-metric records with signed deltas and degradation
// flags. Degradation fires when R2 drops by more than the configured
// absolute amount, or when RMSE grows past the configured ratio of the
// reference value. MAE is reported for context and never flags on its own.
func (e *Evaluator) Compare(ref, win Summary) []model.Performance {
	r2Degraded := ref.R2-win.R2 > e.r2Drop
	rmseDegraded := win.RMSE > ref.RMSE*e.rmseGrowth
	if ref.RMSE == 0 {
		rmseDegraded = win.RMSE > 0
	}

	return []model.Performance{
		{
			Metric:         model.PerfMAE,
			ReferenceValue: ref.MAE,
			WindowValue:    win.MAE,
			Delta:          win.MAE - ref.MAE,
		},
		{
			Metric:         model.PerfRMSE,
			ReferenceValue: ref.RMSE,
			WindowValue:    win.RMSE,
			Delta:          win.RMSE - ref.RMSE,
			Degraded:       rmseDegraded,
		},
		{
			Metric:         model.PerfR2,
			ReferenceValue: ref.R2,
			WindowValue:    win.R2,
			Delta:          win.R2 - ref.R2,
			Degraded:       r2Degraded,
		},
	}
}

// Evaluate computes both summaries and compares them in one call.
func (e *Evaluator) Evaluate(refTruth, refPred, winTruth, winPred []float64) ([]model.Performance, error) {
	ref, err := Metrics(refTruth, refPred)
	if err != nil {
		return nil, fmt.Errorf("perf: reference: %w", err)
	}
	win, err := Metrics(winTruth, winPred)
	if err != nil {
		return nil, fmt.Errorf("perf: window: %w", err)
	}
	return e.Compare(ref, win), nil
}
