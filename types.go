package nagare

import (
	"time"

	"github.com/google/uuid"

	"github.com/nagare-ml/nagare/internal/model"
)

// ColumnType distinguishes numeric from categorical columns.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
)

// Column is one named, typed column in a dataset schema.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Dataset is a named batch of rows: the reference baseline or one window.
// Numeric and Categorical hold column values keyed by column name; every
// column listed in Columns must appear in exactly one of the two maps.
type Dataset struct {
	ID      string   `json:"id"`
	Columns []Column `json:"columns"`

	Numeric     map[string][]float64 `json:"numeric,omitempty"`
	Categorical map[string][]string  `json:"categorical,omitempty"`

	// Target names the label column; empty disables target and
	// performance analysis. Predictions, when present, must align
	// row-for-row with the target column.
	Target      string    `json:"target,omitempty"`
	Predictions []float64 `json:"predictions,omitempty"`
}

// MetricKind identifies the distance metric used to score a column.
type MetricKind string

const (
	MetricPSI MetricKind = "psi"
	MetricKS  MetricKind = "ks"
	MetricTVD MetricKind = "tvd"
)

// Thresholds is the set of named decision thresholds for a monitoring run.
// Zero values fall back to the documented defaults.
type Thresholds struct {
	FeatureDrift     float64
	NumericMetric    MetricKind
	CorrelationDelta float64
	R2Drop           float64
	RMSEGrowth       float64
	DriftedShare     float64
	Workers          int
}

// Verdict is the single categorical outcome of a window's report.
type Verdict string

const (
	VerdictStable   Verdict = "stable"
	VerdictDrifted  Verdict = "drifted"
	VerdictDegraded Verdict = "degraded"
	VerdictErrored  Verdict = "errored"
)

// FeatureDrift is the drift score of one feature between the reference
// baseline and a window.
type FeatureDrift struct {
	Feature   string     `json:"name"`
	Metric    MetricKind `json:"metric"`
	Score     float64    `json:"score"`
	Threshold float64    `json:"threshold"`
	Drifted   bool       `json:"drifted"`
	Unscored  bool       `json:"unscored,omitempty"`
	Reason    string     `json:"reason,omitempty"`
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

// TargetDrift is the drift record for the label column with per-feature
// correlation stability attached.
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
type Performance struct {
	Metric         PerfMetric `json:"metric"`
	ReferenceValue float64    `json:"reference_value"`
	WindowValue    float64    `json:"window_value"`
	Delta          float64    `json:"delta"`
	Degraded       bool       `json:"degraded"`
}

// CauseKind classifies a contributing cause in a report.
type CauseKind string

const (
	CausePerformance CauseKind = "performance"
	CauseTarget      CauseKind = "target"
	CauseFeature     CauseKind = "feature"
)

// Cause is one contributing signal behind a non-stable verdict.
type Cause struct {
	Kind  CauseKind `json:"kind"`
	Name  string    `json:"name"`
	Score float64   `json:"score"`
}

// Report is the outcome of monitoring one window against the reference.
type Report struct {
	ID          uuid.UUID `json:"id"`
	WindowID    string    `json:"window_id"`
	GeneratedAt time.Time `json:"generated_at"`

	FeatureDrift []FeatureDrift `json:"feature_drift"`
	TargetDrift  *TargetDrift   `json:"target_drift,omitempty"`
	Performance  []Performance  `json:"performance,omitempty"`

	UnscoredColumns []string `json:"unscored_columns,omitempty"`

	Verdict Verdict `json:"overall_verdict"`
	Causes  []Cause `json:"causes,omitempty"`

	FailedStage string `json:"failed_stage,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Conversion helpers live here because this is the only package that sees
// both sides of the internal boundary.

func toInternalDataset(d Dataset) *model.Dataset {
	cols := make([]model.Column, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = model.Column{Name: c.Name, Type: model.ColumnType(c.Type)}
	}
	return &model.Dataset{
		ID:          d.ID,
		Schema:      model.Schema{Columns: cols},
		Numeric:     d.Numeric,
		Categorical: d.Categorical,
		Target:      d.Target,
		Predictions: d.Predictions,
	}
}

func toInternalThresholds(t Thresholds) model.Thresholds {
	return model.Thresholds{
		FeatureDrift:     t.FeatureDrift,
		NumericMetric:    model.MetricKind(t.NumericMetric),
		CorrelationDelta: t.CorrelationDelta,
		R2Drop:           t.R2Drop,
		RMSEGrowth:       t.RMSEGrowth,
		DriftedShare:     t.DriftedShare,
		Workers:          t.Workers,
	}
}

func toPublicFeatureDrift(fd model.FeatureDrift) FeatureDrift {
	return FeatureDrift{
		Feature:   fd.Feature,
		Metric:    MetricKind(fd.Metric),
		Score:     fd.Score,
		Threshold: fd.Threshold,
		Drifted:   fd.Drifted,
		Unscored:  fd.Unscored,
		Reason:    fd.Reason,
	}
}

func toPublicReport(r model.Report) Report {
	out := Report{
		ID:              r.ID,
		WindowID:        r.WindowID,
		GeneratedAt:     r.GeneratedAt,
		UnscoredColumns: r.UnscoredColumns,
		Verdict:         Verdict(r.Verdict),
		FailedStage:     string(r.FailedStage),
		Message:         r.Message,
	}
	for _, fd := range r.FeatureDrift {
		out.FeatureDrift = append(out.FeatureDrift, toPublicFeatureDrift(fd))
	}
	if r.TargetDrift != nil {
		td := TargetDrift{FeatureDrift: toPublicFeatureDrift(r.TargetDrift.FeatureDrift)}
		for _, wr := range r.TargetDrift.WeakenedRelations {
			td.WeakenedRelations = append(td.WeakenedRelations, WeakenedRelation(wr))
		}
		out.TargetDrift = &td
	}
	for _, p := range r.Performance {
		out.Performance = append(out.Performance, Performance{
			Metric:         PerfMetric(p.Metric),
			ReferenceValue: p.ReferenceValue,
			WindowValue:    p.WindowValue,
			Delta:          p.Delta,
			Degraded:       p.Degraded,
		})
	}
	for _, c := range r.Causes {
		out.Causes = append(out.Causes, Cause{Kind: CauseKind(c.Kind), Name: c.Name, Score: c.Score})
	}
	return out
}
