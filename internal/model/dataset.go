// Package model defines the core domain types for Nagare.
//
// Datasets are produced by an external loader and consumed read-only by
// the analysis pipeline. Records and reports are created by the analysis
// components and never mutated after creation. Types use strong typing
// (enums, time.Time) and avoid interface{} wherever possible.
package model

import (
	"fmt"
	"time"
)

// ColumnType is the declared type of a dataset column.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
)

// Column is a named, typed dataset column.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Schema is the ordered column layout of a dataset. Column order is
// preserved from the source; report records follow it.
type Schema struct {
	Columns []Column `json:"columns"`
}

// Type returns the declared type of the named column.
func (s Schema) Type(name string) (ColumnType, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Type, true
		}
	}
	return "", false
}

// Has reports whether the schema contains the named column.
func (s Schema) Has(name string) bool {
	_, ok := s.Type(name)
	return ok
}

// Dataset is a time-bounded batch of column-typed tabular observations.
// The reference baseline and every monitored window are Datasets.
// Immutable once loaded.
type Dataset struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Schema Schema `json:"schema"`

	// Column values, keyed by column name. Every column in Schema has an
	// entry in exactly one of these maps, matching its declared type.
	Numeric     map[string][]float64 `json:"numeric,omitempty"`
	Categorical map[string][]string  `json:"categorical,omitempty"`

	// Times holds the per-row observation timestamp when the source
	// carries one; used only for window slicing, never for scoring.
	Times []time.Time `json:"-"`

	// Target names the label column inside Schema.
	Target string `json:"target,omitempty"`

	// Predictions are the frozen model's outputs aligned row-for-row with
	// the target column. Empty when the dataset carries no predictions.
	Predictions []float64 `json:"predictions,omitempty"`
}

// Rows returns the number of observations in the dataset.
func (d *Dataset) Rows() int {
	for _, c := range d.Schema.Columns {
		switch c.Type {
		case ColumnNumeric:
			return len(d.Numeric[c.Name])
		case ColumnCategorical:
			return len(d.Categorical[c.Name])
		}
	}
	return 0
}

// NumericColumn returns the values of a numeric column.
func (d *Dataset) NumericColumn(name string) ([]float64, error) {
	v, ok := d.Numeric[name]
	if !ok {
		return nil, fmt.Errorf("model: numeric column %q not present in dataset %s", name, d.ID)
	}
	return v, nil
}

// CategoricalColumn returns the values of a categorical column.
func (d *Dataset) CategoricalColumn(name string) ([]string, error) {
	v, ok := d.Categorical[name]
	if !ok {
		return nil, fmt.Errorf("model: categorical column %q not present in dataset %s", name, d.ID)
	}
	return v, nil
}

// TargetValues returns the numeric values of the target column.
func (d *Dataset) TargetValues() ([]float64, error) {
	if d.Target == "" {
		return nil, fmt.Errorf("model: dataset %s has no target column", d.ID)
	}
	return d.NumericColumn(d.Target)
}
