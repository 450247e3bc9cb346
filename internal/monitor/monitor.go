// Package monitor orchestrates a monitoring run: each window is taken
// through schema validation, feature scoring, target analysis, performance
// evaluation and verdict aggregation against a fixed reference baseline.
//
// The per-window pipeline is a pure function of (reference, window), so
// windows may be processed in parallel; the returned report sequence
// always matches the input window order regardless of completion order.
// A failure inside one window's pipeline terminates that window at the
// errored state and never affects sibling windows.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/nagare-ml/nagare/internal/drift"
	"github.com/nagare-ml/nagare/internal/model"
	"github.com/nagare-ml/nagare/internal/perf"
	"github.com/nagare-ml/nagare/internal/schema"
	"github.com/nagare-ml/nagare/internal/target"
	"github.com/nagare-ml/nagare/internal/telemetry"
	"github.com/nagare-ml/nagare/internal/verdict"
)

// ErrMissingReference is returned when no usable reference baseline is
// supplied. It is fatal to the entire run and raised before any window is
// processed.
var ErrMissingReference = errors.New("monitor: missing reference baseline")

var tracer = otel.Tracer("nagare/monitor")

// Monitor runs windows against a fixed reference baseline.
type Monitor struct {
	logger     *slog.Logger
	thresholds model.Thresholds

	scorer     *drift.Scorer
	analyzer   *target.Analyzer
	evaluator  *perf.Evaluator
	aggregator *verdict.Aggregator

	now func() time.Time
}

// New builds a monitor. Zero-valued thresholds are filled with the
// documented defaults.
func New(logger *slog.Logger, thresholds model.Thresholds) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	t := thresholds.WithDefaults()
	scorer := drift.NewScorer(t)
	return &Monitor{
		logger:     logger,
		thresholds: t,
		scorer:     scorer,
		analyzer:   target.NewAnalyzer(scorer, t),
		evaluator:  perf.NewEvaluator(t),
		aggregator: verdict.NewAggregator(t),
		now:        time.Now,
	}
}

// Run processes every window independently against the reference and
// returns exactly one report per window, in input order. Individual window
// failures are recorded in their reports; only a missing reference or a
// cancelled context fails the run as a whole.
func (m *Monitor) Run(ctx context.Context, reference *model.Dataset, windows []*model.Dataset) ([]model.Report, error) {
	if reference == nil || reference.Rows() == 0 {
		return nil, ErrMissingReference
	}

	runStart := time.Now()
	reports := make([]model.Report, len(windows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.thresholds.Workers)

	for i, win := range windows {
		g.Go(func() error {
			// Abandon windows not yet started once the run is cancelled;
			// partial reports are discarded by the error return below.
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = m.processWindow(gctx, reference, win)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("monitor: run aborted: %w", err)
	}
	telemetry.Monitor().RecordRunDuration(ctx, time.Since(runStart))
	return reports, nil
}

// processWindow drives one window through the stage machine. Any error or
// panic terminates the window at errored with the stage it failed in.
func (m *Monitor) processWindow(ctx context.Context, reference, win *model.Dataset) (report model.Report) {
	ctx, span := tracer.Start(ctx, "monitor.window")
	defer span.End()
	span.SetAttributes(attribute.String("window.id", win.ID))

	report = model.Report{
		ID:          uuid.New(),
		WindowID:    win.ID,
		GeneratedAt: m.now().UTC(),
	}

	stage := model.StageLoaded
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("window pipeline panic", "window_id", win.ID, "stage", string(stage), "panic", r)
			report = m.erroredReport(report, stage, fmt.Sprintf("panic: %v", r))
		}
	}()

	start := time.Now()

	stage = model.StageSchemaValidated
	cols, extra, err := schema.Validate(reference.Schema, win)
	if err != nil {
		m.logger.Warn("schema validation failed", "window_id", win.ID, "error", err)
		return m.erroredReport(report, stage, err.Error())
	}
	report.UnscoredColumns = extra

	stage = model.StageFeatureScored
	targetCol, hasTarget := m.targetColumn(reference, cols)
	for _, col := range cols {
		if hasTarget && col.Name == targetCol.Name {
			continue
		}
		fd := m.scorer.Score(col, reference, win)
		if !fd.Unscored {
			telemetry.Monitor().RecordDriftScore(ctx, string(fd.Metric), fd.Score)
		}
		report.FeatureDrift = append(report.FeatureDrift, fd)
	}

	stage = model.StageTargetScored
	if hasTarget {
		td := m.analyzer.Analyze(cols, targetCol, reference, win)
		report.TargetDrift = &td
	}

	stage = model.StagePerformanceScored
	if perfRecords, perfErr := m.evaluatePerformance(reference, win); perfErr != nil {
		m.logger.Warn("performance evaluation failed", "window_id", win.ID, "error", perfErr)
		return m.erroredReport(report, stage, perfErr.Error())
	} else {
		report.Performance = perfRecords
	}

	stage = model.StageAggregated
	report.Verdict, report.Causes = m.aggregator.Aggregate(report.FeatureDrift, report.TargetDrift, report.Performance)

	stage = model.StageReported
	span.SetAttributes(attribute.String("window.verdict", string(report.Verdict)))
	telemetry.Monitor().RecordWindow(ctx, string(report.Verdict))
	m.logger.Info("window scored",
		"window_id", win.ID,
		"verdict", string(report.Verdict),
		"features", len(report.FeatureDrift),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report
}

// targetColumn resolves the reference's label column inside the validated
// column list. Windows without a declared target simply skip target and
// performance analysis.
func (m *Monitor) targetColumn(reference *model.Dataset, cols []model.Column) (model.Column, bool) {
	if reference.Target == "" {
		return model.Column{}, false
	}
	for _, c := range cols {
		if c.Name == reference.Target {
			return c, true
		}
	}
	return model.Column{}, false
}

// evaluatePerformance runs the regression comparison when both sides carry
// predictions. Datasets without predictions are drift-only and produce no
// performance records.
func (m *Monitor) evaluatePerformance(reference, win *model.Dataset) ([]model.Performance, error) {
	if reference.Target == "" || len(reference.Predictions) == 0 || len(win.Predictions) == 0 {
		return nil, nil
	}
	refTruth, err := reference.TargetValues()
	if err != nil {
		return nil, err
	}
	winTruth, err := win.TargetValues()
	if err != nil {
		return nil, err
	}
	return m.evaluator.Evaluate(refTruth, reference.Predictions, winTruth, win.Predictions)
}

func (m *Monitor) erroredReport(report model.Report, stage model.Stage, msg string) model.Report {
	report.Verdict = model.VerdictErrored
	report.FailedStage = stage
	report.Message = msg
	return report
}
