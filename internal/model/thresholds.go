package model

// Thresholds is the full set of named decision thresholds for a monitoring
// run. It is passed explicitly into the orchestrator; the engine never
// reads ambient process state.
type Thresholds struct {
	// FeatureDrift is the score above which a column counts as drifted.
	// Applies to the target column as well. Default 0.2 (the conventional
	// PSI cut for significant shift).
	FeatureDrift float64

	// NumericMetric selects the metric for numeric columns: MetricPSI
	// (default) or MetricKS. Categorical columns always use MetricTVD.
	NumericMetric MetricKind

	// CorrelationDelta is the absolute change in feature-target Pearson r
	// above which the weakened-relationship flag fires. Default 0.1.
	CorrelationDelta float64

	// R2Drop flags degradation when window R2 falls more than this
	// absolute amount below the reference R2. Default 0.2.
	R2Drop float64

	// RMSEGrowth flags degradation when window RMSE exceeds reference
	// RMSE times this ratio. Default 1.25.
	RMSEGrowth float64

	// DriftedShare is the fraction of scored features that must be
	// flagged for the window verdict to become drifted. Default 0.5.
	DriftedShare float64

	// Workers bounds window-level parallelism. Default 1 (sequential);
	// windows are independent against the fixed reference, so any value
	// is safe.
	Workers int
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FeatureDrift:     0.2,
		NumericMetric:    MetricPSI,
		CorrelationDelta: 0.1,
		R2Drop:           0.2,
		RMSEGrowth:       1.25,
		DriftedShare:     0.5,
		Workers:          1,
	}
}

// WithDefaults fills any zero-valued threshold with its default so partial
// configurations stay usable.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.FeatureDrift <= 0 {
		t.FeatureDrift = d.FeatureDrift
	}
	if t.NumericMetric == "" {
		t.NumericMetric = d.NumericMetric
	}
	if t.CorrelationDelta <= 0 {
		t.CorrelationDelta = d.CorrelationDelta
	}
	if t.R2Drop <= 0 {
		t.R2Drop = d.R2Drop
	}
	if t.RMSEGrowth <= 0 {
		t.RMSEGrowth = d.RMSEGrowth
	}
	if t.DriftedShare <= 0 {
		t.DriftedShare = d.DriftedShare
	}
	if t.Workers <= 0 {
		t.Workers = d.Workers
	}
	return t
}
