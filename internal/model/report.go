package model

import (
	"time"

	"github.com/google/uuid"
)

// MetricKind identifies the distance metric used to score a column.
type MetricKind string

const (
	// MetricPSI is the population stability index over binned numeric values.
	MetricPSI MetricKind = "psi"
	// MetricKS is the two-sample Kolmogorov-Smirnov statistic.
	MetricKS MetricKind = "ks"
	// MetricTVD is the total variation distance over category frequencies.
	MetricTVD MetricKind = "tvd"
)

// FeatureDrift is the drift score of one feature between the reference
// baseline and a window. The threshold in force at scoring time is part of
// the record so reports stay self-describing if configuration changes.
type FeatureDrift struct {
	Feature   string     `json:"name"`
	Metric    MetricKind `json:"metric"`
	Score     float64    `json:"score"`
	Threshold float64    `json:"threshold"`
	Drifted   bool       `json:"drifted"`

	// Unscored marks a column whose score could not be computed; the
	// failure is local and does not invalidate the window's report.
	Unscored bool   `json:"unscored,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// WeakenedRelation tracks the stability of one feature's linear
// relationship with the target between reference and window.
type WeakenedRelation struct {
	Feature    string  `json:"feature"`
	ReferenceR float64 `json:"reference_r"`
	WindowR    float64 `json:"window_r"`
	Delta      float64 `json:"delta"`
	Flagged    bool    `json:"flagged"`
}

// TargetDrift is the drift record for the label column, with per-feature
// correlation stability attached. A feature can be distributionally stable
// while its predictive relationship with the target collapses; both signals
// are tracked separately.
type TargetDrift struct {
	FeatureDrift
	WeakenedRelations []WeakenedRelation `json:"weakened_relations"`
}

// PerfMetric identifies a regression accuracy metric.
type PerfMetric string

const (
	PerfMAE  PerfMetric = "mae"
	PerfRMSE PerfMetric = "rmse"
	PerfR2   PerfMetric = "r2"
)

// Performance compares one accuracy metric between reference and window.
// R2 is a signed real and may be negative (model worse than predicting the
// mean); it is never clamped to zero.
type Performance struct {
	Metric         PerfMetric `json:"metric"`
	ReferenceValue float64    `json:"reference_value"`
	WindowValue    float64    `json:"window_value"`
	Delta          float64    `json:"delta"`
	Degraded       bool       `json:"degraded"`
}

// Verdict is the single categorical outcome of a window's report.
type Verdict string

const (
	VerdictStable   Verdict = "stable"
	VerdictDrifted  Verdict = "drifted"
	VerdictDegraded Verdict = "degraded"
	VerdictErrored  Verdict = "errored"
)

// Stage is a state in the per-window monitoring state machine.
type Stage string

const (
	StageLoaded            Stage = "Loaded"
	StageSchemaValidated   Stage = "SchemaValidated"
	StageFeatureScored     Stage = "FeatureScored"
	StageTargetScored      Stage = "TargetScored"
	StagePerformanceScored Stage = "PerformanceScored"
	StageAggregated        Stage = "Aggregated"
	StageReported          Stage = "Reported"
)

// CauseKind classifies a contributing cause in a report.
type CauseKind string

const (
	CausePerformance CauseKind = "performance"
	CauseTarget      CauseKind = "target"
	CauseFeature     CauseKind = "feature"
)

// Cause is one contributing signal behind a non-stable verdict. Causes are
// severity-ordered for root-cause narratives; the ordering never changes
// the verdict itself.
type Cause struct {
	Kind  CauseKind `json:"kind"`
	Name  string    `json:"name"`
	Score float64   `json:"score"`
}

// Report is the terminal output for one window. Emitted once, never
// updated in place.
type Report struct {
	ID          uuid.UUID `json:"id"`
	WindowID    string    `json:"window_id"`
	GeneratedAt time.Time `json:"generated_at"`

	FeatureDrift []FeatureDrift `json:"feature_drift"`
	TargetDrift  *TargetDrift   `json:"target_drift,omitempty"`
	Performance  []Performance  `json:"performance,omitempty"`

	// UnscoredColumns lists window columns absent from the reference
	// schema; they are ignored by scoring but reported for transparency.
	UnscoredColumns []string `json:"unscored_columns,omitempty"`

	Verdict Verdict `json:"overall_verdict"`
	Causes  []Cause `json:"causes,omitempty"`

	// Set only when Verdict is errored.
	FailedStage Stage  `json:"failed_stage,omitempty"`
	Message     string `json:"message,omitempty"`
}
