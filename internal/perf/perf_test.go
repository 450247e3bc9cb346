package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagare-ml/nagare/internal/model"
)

func TestMetricsPerfectPredictions(t *testing.T) {
	truth := []float64{10, 20, 30, 40}
	s, err := Metrics(truth, truth)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.MAE)
	assert.Equal(t, 0.0, s.RMSE)
	assert.Equal(t, 1.0, s.R2)
}

func TestMetricsKnownValues(t *testing.T) {
	truth := []float64{1, 2, 3, 4}
	pred := []float64{2, 2, 2, 2}
	s, err := Metrics(truth, pred)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.MAE, 1e-9)               // |1|+|0|+|1|+|2| / 4
	assert.InDelta(t, 1.224744871, s.RMSE, 1e-6)      // sqrt(6/4)
	assert.InDelta(t, 1.0-6.0/5.0, s.R2, 1e-9)        // negative: worse than the mean
	assert.Less(t, s.R2, 0.0, "R2 must stay signed")
}

func TestMetricsInputErrors(t *testing.T) {
	_, err := Metrics(nil, nil)
	assert.Error(t, err)
	_, err = Metrics([]float64{1, 2}, []float64{1})
	assert.Error(t, err)
}

func TestMetricsConstantTruth(t *testing.T) {
	s, err := Metrics([]float64{5, 5, 5}, []float64{5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.R2)

	s, err = Metrics([]float64{5, 5, 5}, []float64{6, 6, 6})
	require.NoError(t, err)
	assert.Equal(t, -1.0, s.R2)
}

// TestCompareWeeklyDegradationScenario replays the bike-sharing fixture:
// reference R2 0.36 decaying to -0.33 and -0.91 across three weeks while
// RMSE rises 41.6 -> 72.7 -> 90.9, under an R2-drop threshold of 0.2.
// Weeks two and three must come out degraded.
func TestCompareWeeklyDegradationScenario(t *testing.T) {
	th := model.DefaultThresholds()
	th.R2Drop = 0.2
	e := NewEvaluator(th)

	ref := Summary{MAE: 30.1, RMSE: 41.6, R2: 0.36}
	weeks := []struct {
		name         string
		win          Summary
		wantDegraded bool
	}{
		{"week1", Summary{MAE: 30.9, RMSE: 41.6, R2: 0.31}, false},
		{"week2", Summary{MAE: 55.4, RMSE: 72.7, R2: -0.33}, true},
		{"week3", Summary{MAE: 70.2, RMSE: 90.9, R2: -0.91}, true},
	}

	for _, wk := range weeks {
		t.Run(wk.name, func(t *testing.T) {
			records := e.Compare(ref, wk.win)
			require.Len(t, records, 3)

			byMetric := map[model.PerfMetric]model.Performance{}
			for _, r := range records {
				byMetric[r.Metric] = r
			}

			degraded := false
			for _, r := range records {
				degraded = degraded || r.Degraded
			}
			assert.Equal(t, wk.wantDegraded, degraded)

			r2 := byMetric[model.PerfR2]
			assert.InDelta(t, wk.win.R2-ref.R2, r2.Delta, 1e-9)
			assert.Equal(t, wk.wantDegraded, r2.Degraded)

			mae := byMetric[model.PerfMAE]
			assert.False(t, mae.Degraded, "MAE never flags on its own")
		})
	}
}

func TestCompareRMSEGrowthAlone(t *testing.T) {
	e := NewEvaluator(model.DefaultThresholds()) // growth ratio 1.25

	ref := Summary{RMSE: 40, R2: 0.5}
	records := e.Compare(ref, Summary{RMSE: 60, R2: 0.45})

	var rmse model.Performance
	for _, r := range records {
		if r.Metric == model.PerfRMSE {
			rmse = r
		}
	}
	assert.True(t, rmse.Degraded)
	assert.InDelta(t, 20, rmse.Delta, 1e-9)
}

func TestCompareZeroReferenceRMSE(t *testing.T) {
	e := NewEvaluator(model.DefaultThresholds())
	records := e.Compare(Summary{RMSE: 0, R2: 1}, Summary{RMSE: 0.1, R2: 0.99})
	for _, r := range records {
		if r.Metric == model.PerfRMSE {
			assert.True(t, r.Degraded)
		}
	}
}

func TestEvaluateEndToEnd(t *testing.T) {
	e := NewEvaluator(model.DefaultThresholds())
	truth := []float64{10, 12, 14, 16, 18}
	good := []float64{10.5, 11.5, 14.2, 15.8, 18.1}
	bad := []float64{18, 10, 17, 11, 15}

	records, err := e.Evaluate(truth, good, truth, bad)
	require.NoError(t, err)
	degraded := false
	for _, r := range records {
		degraded = degraded || r.Degraded
	}
	assert.True(t, degraded)
}
