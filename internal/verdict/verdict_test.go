package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagare-ml/nagare/internal/model"
)

func feature(name string, score float64, drifted bool) model.FeatureDrift {
	return model.FeatureDrift{Feature: name, Metric: model.MetricPSI, Score: score, Threshold: 0.2, Drifted: drifted}
}

func TestAggregateStable(t *testing.T) {
	a := NewAggregator(model.DefaultThresholds())

	features := []model.FeatureDrift{
		feature("temp", 0.01, false),
		feature("hum", 0.05, false),
	}
	target := &model.TargetDrift{FeatureDrift: feature("cnt", 0.02, false)}
	perf := []model.Performance{{Metric: model.PerfR2, Degraded: false}}

	v, causes := a.Aggregate(features, target, perf)
	assert.Equal(t, model.VerdictStable, v)
	assert.Empty(t, causes)
}

func TestAggregateDegradedWinsOverDrift(t *testing.T) {
	a := NewAggregator(model.DefaultThresholds())

	features := []model.FeatureDrift{
		feature("temp", 0.9, true),
		feature("hum", 0.7, true),
	}
	target := &model.TargetDrift{FeatureDrift: feature("cnt", 0.8, true)}
	perf := []model.Performance{
		{Metric: model.PerfR2, Delta: -0.69, Degraded: true},
		{Metric: model.PerfRMSE, Delta: 31.1, Degraded: true},
	}

	v, causes := a.Aggregate(features, target, perf)
	assert.Equal(t, model.VerdictDegraded, v)

	require.NotEmpty(t, causes)
	// Performance causes first (largest |delta| first), then target,
	// then features by descending score.
	assert.Equal(t, model.CausePerformance, causes[0].Kind)
	assert.Equal(t, "rmse", causes[0].Name)
	assert.Equal(t, model.CausePerformance, causes[1].Kind)
	assert.Equal(t, model.CauseTarget, causes[2].Kind)
	assert.Equal(t, model.CauseFeature, causes[3].Kind)
	assert.Equal(t, "temp", causes[3].Name)
	assert.Equal(t, "hum", causes[4].Name)
}

func TestAggregateTargetDriftAlone(t *testing.T) {
	a := NewAggregator(model.DefaultThresholds())

	features := []model.FeatureDrift{feature("temp", 0.01, false)}
	target := &model.TargetDrift{FeatureDrift: feature("cnt", 0.5, true)}

	v, causes := a.Aggregate(features, target, nil)
	assert.Equal(t, model.VerdictDrifted, v)
	require.Len(t, causes, 1)
	assert.Equal(t, model.CauseTarget, causes[0].Kind)
}

func TestAggregateFeatureShareThreshold(t *testing.T) {
	a := NewAggregator(model.DefaultThresholds()) // share threshold 0.5

	tests := []struct {
		name    string
		drifted int
		total   int
		want    model.Verdict
	}{
		{"exactly half is not over the threshold", 2, 4, model.VerdictStable},
		{"over half drifts", 3, 4, model.VerdictDrifted},
		{"all drift", 4, 4, model.VerdictDrifted},
		{"none drift", 0, 4, model.VerdictStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var features []model.FeatureDrift
			for i := 0; i < tt.total; i++ {
				features = append(features, feature(string(rune('a'+i)), 0.3, i < tt.drifted))
			}
			v, _ := a.Aggregate(features, nil, nil)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestAggregateUnscoredExcludedFromShare(t *testing.T) {
	a := NewAggregator(model.DefaultThresholds())

	features := []model.FeatureDrift{
		feature("temp", 0.9, true),
		{Feature: "hum", Unscored: true},
		{Feature: "wind", Unscored: true},
	}
	// One drifted out of one scored: share 1.0, over the half threshold.
	v, _ := a.Aggregate(features, nil, nil)
	assert.Equal(t, model.VerdictDrifted, v)
}

func TestAggregateIdempotent(t *testing.T) {
	a := NewAggregator(model.DefaultThresholds())

	features := []model.FeatureDrift{
		feature("temp", 0.9, true),
		feature("hum", 0.9, true), // same score: tie broken by name
		feature("wind", 0.3, true),
	}
	target := &model.TargetDrift{FeatureDrift: feature("cnt", 0.6, true)}
	perf := []model.Performance{{Metric: model.PerfR2, Delta: -0.5, Degraded: true}}

	v1, c1 := a.Aggregate(features, target, perf)
	for i := 0; i < 10; i++ {
		v2, c2 := a.Aggregate(features, target, perf)
		assert.Equal(t, v1, v2)
		assert.Equal(t, c1, c2)
	}
	assert.Equal(t, "hum", c1[2].Name)
	assert.Equal(t, "temp", c1[3].Name)
}

func TestAggregateNoRecords(t *testing.T) {
	a := NewAggregator(model.DefaultThresholds())
	v, causes := a.Aggregate(nil, nil, nil)
	assert.Equal(t, model.VerdictStable, v)
	assert.Empty(t, causes)
}
