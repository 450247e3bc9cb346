// Package target analyzes drift of the label column and the stability of
// each feature's relationship with it.
//
// The label's own distributional drift reuses the feature scorer. On top
// of that, the analyzer computes the Pearson correlation between every
// numeric feature and the target, independently inside the reference and
// inside the window; a feature whose coefficient moves by more than the
// configured delta is flagged as a weakened relationship. Distributional
// drift and relationship decay are tracked separately because they have
// different failure semantics for a deployed model.
package target

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/nagare-ml/nagare/internal/drift"
	"github.com/nagare-ml/nagare/internal/model"
)

// Analyzer computes the target drift record for a window.
type Analyzer struct {
	scorer *drift.Scorer
	delta  float64
}

// NewAnalyzer builds an analyzer sharing the feature scorer's metric
// configuration. The correlation delta is independent of the drift
// threshold.
func NewAnalyzer(scorer *drift.Scorer, t model.Thresholds) *Analyzer {
	return &Analyzer{scorer: scorer, delta: t.CorrelationDelta}
}

// Analyze scores the target column and evaluates correlation stability for
// every other validated numeric feature. Categorical features carry no
// linear correlation with the target and get no relation entry.
func (a *Analyzer) Analyze(cols []model.Column, targetCol model.Column, ref, win *model.Dataset) model.TargetDrift {
	td := model.TargetDrift{
		FeatureDrift: a.scorer.Score(targetCol, ref, win),
	}

	refTarget, err := ref.TargetValues()
	if err != nil {
		return td
	}
	winTarget, err := win.TargetValues()
	if err != nil {
		return td
	}

	for _, col := range cols {
		if col.Name == targetCol.Name || col.Type != model.ColumnNumeric {
			continue
		}
		refFeat, err := ref.NumericColumn(col.Name)
		if err != nil {
			continue
		}
		winFeat, err := win.NumericColumn(col.Name)
		if err != nil {
			continue
		}
		td.WeakenedRelations = append(td.WeakenedRelations, a.relation(
			col.Name,
			correlation(refFeat, refTarget),
			correlation(winFeat, winTarget),
		))
	}
	return td
}

func (a *Analyzer) relation(feature string, refR, winR float64) model.WeakenedRelation {
	delta := math.Abs(refR - winR)
	return model.WeakenedRelation{
		Feature:    feature,
		ReferenceR: refR,
		WindowR:    winR,
		Delta:      delta,
		Flagged:    delta > a.delta,
	}
}

// correlation is the sample Pearson coefficient; degenerate inputs
// (mismatched lengths, zero variance on either side) yield 0 rather than
// NaN so a flat column reads as "no linear relationship".
func correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}
