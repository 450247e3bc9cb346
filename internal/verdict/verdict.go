// Package verdict combines the per-window analysis records into the
// overall verdict and a severity-ordered list of contributing causes.
//
// The verdict is a pure function of the records it aggregates: no clock,
// no randomness, no ordering dependency beyond the deterministic sort of
// the cause list. Re-running aggregation on identical records always
// yields the identical verdict and cause ordering.
package verdict

import (
	"math"
	"sort"

	"github.com/nagare-ml/nagare/internal/model"
)

// Aggregator applies the verdict precedence rules.
type Aggregator struct {
	driftedShare float64
}

// NewAggregator builds an aggregator from the run thresholds.
func NewAggregator(t model.Thresholds) *Aggregator {
	return &Aggregator{driftedShare: t.DriftedShare}
}

// Aggregate evaluates the precedence rules in order, first match wins:
// performance degradation wins over drift, target drift or a flagged
// feature share above the configured fraction wins over stable. The
// errored rule (rule one) is applied by the orchestrator before records
// exist, so it never reaches the aggregator.
func (a *Aggregator) Aggregate(features []model.FeatureDrift, target *model.TargetDrift, performance []model.Performance) (model.Verdict, []model.Cause) {
	causes := a.causes(features, target, performance)

	for _, p := range performance {
		if p.Degraded {
			return model.VerdictDegraded, causes
		}
	}

	if target != nil && target.Drifted {
		return model.VerdictDrifted, causes
	}
	if share := flaggedShare(features); share > a.driftedShare {
		return model.VerdictDrifted, causes
	}
	return model.VerdictStable, causes
}

// flaggedShare is the fraction of drifted records among scored ones.
// Unscored columns are excluded from both sides of the ratio.
func flaggedShare(features []model.FeatureDrift) float64 {
	scored, flagged := 0, 0
	for _, f := range features {
		if f.Unscored {
			continue
		}
		scored++
		if f.Drifted {
			flagged++
		}
	}
	if scored == 0 {
		return 0
	}
	return float64(flagged) / float64(scored)
}

// causes orders contributing signals by severity: degraded performance
// metrics first (largest absolute delta first), then the target drift
// flag, then drifted features by descending score. Ties break on name so
// the ordering is total. The ordering supports root-cause narratives and
// never changes the verdict.
func (a *Aggregator) causes(features []model.FeatureDrift, target *model.TargetDrift, performance []model.Performance) []model.Cause {
	var causes []model.Cause

	var degraded []model.Performance
	for _, p := range performance {
		if p.Degraded {
			degraded = append(degraded, p)
		}
	}
	sort.Slice(degraded, func(i, j int) bool {
		di, dj := math.Abs(degraded[i].Delta), math.Abs(degraded[j].Delta)
		if di != dj {
			return di > dj
		}
		return degraded[i].Metric < degraded[j].Metric
	})
	for _, p := range degraded {
		causes = append(causes, model.Cause{Kind: model.CausePerformance, Name: string(p.Metric), Score: p.Delta})
	}

	if target != nil && target.Drifted {
		causes = append(causes, model.Cause{Kind: model.CauseTarget, Name: target.Feature, Score: target.Score})
	}

	var drifted []model.FeatureDrift
	for _, f := range features {
		if f.Drifted {
			drifted = append(drifted, f)
		}
	}
	sort.Slice(drifted, func(i, j int) bool {
		if drifted[i].Score != drifted[j].Score {
			return drifted[i].Score > drifted[j].Score
		}
		return drifted[i].Feature < drifted[j].Feature
	})
	for _, f := range drifted {
		causes = append(causes, model.Cause{Kind: model.CauseFeature, Name: f.Feature, Score: f.Score})
	}

	return causes
}
