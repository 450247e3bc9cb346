// Package dataset loads CSV data into typed Datasets and slices them into
// time-bounded windows. It is the in-repo data-loading collaborator; the
// analysis engine itself never performs I/O.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/nagare-ml/nagare/internal/model"
)

// LoadOptions controls CSV interpretation.
type LoadOptions struct {
	// ID names the resulting dataset.
	ID string

	// Target names the label column. Optional; drift-only datasets have
	// no target.
	Target string

	// Prediction names the column holding the frozen model's outputs.
	// The column is pulled out of the schema into Dataset.Predictions.
	// Optional.
	Prediction string

	// Time names the per-row timestamp column used for window slicing,
	// parsed with TimeLayout. The column is excluded from the schema.
	// Optional.
	Time       string
	TimeLayout string

	// Categorical forces the named columns to categorical regardless of
	// whether their values parse as numbers. Integer-coded categories
	// (season 1-4, holiday 0/1) need this.
	Categorical []string
}

// LoadCSV reads a header-bearing CSV stream into a Dataset. Column types
// are inferred: a column whose values all parse as floats is numeric,
// anything else is categorical; the Categorical option overrides
// inference.
func LoadCSV(r io.Reader, opts LoadOptions) (*model.Dataset, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: read header: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset: %s: no data rows", opts.ID)
	}

	forced := make(map[string]bool, len(opts.Categorical))
	for _, c := range opts.Categorical {
		forced[c] = true
	}

	d := &model.Dataset{
		ID:          opts.ID,
		Target:      opts.Target,
		Numeric:     map[string][]float64{},
		Categorical: map[string][]string{},
	}

	for col, name := range header {
		raw := make([]string, len(rows))
		for i, row := range rows {
			if col >= len(row) {
				return nil, fmt.Errorf("dataset: %s: row %d has %d columns, header has %d", opts.ID, i+1, len(row), len(header))
			}
			raw[i] = row[col]
		}

		switch name {
		case opts.Time:
			if err := parseTimes(d, raw, opts.TimeLayout); err != nil {
				return nil, err
			}
		case opts.Prediction:
			values, ok := parseNumeric(raw)
			if !ok {
				return nil, fmt.Errorf("dataset: %s: prediction column %q is not numeric", opts.ID, name)
			}
			d.Predictions = values
		default:
			if values, ok := parseNumeric(raw); ok && !forced[name] {
				d.Numeric[name] = values
				d.Schema.Columns = append(d.Schema.Columns, model.Column{Name: name, Type: model.ColumnNumeric})
			} else {
				d.Categorical[name] = raw
				d.Schema.Columns = append(d.Schema.Columns, model.Column{Name: name, Type: model.ColumnCategorical})
			}
		}
	}

	if opts.Target != "" && !d.Schema.Has(opts.Target) {
		return nil, fmt.Errorf("dataset: %s: target column %q not found", opts.ID, opts.Target)
	}
	if len(d.Times) > 0 {
		d.Start, d.End = timeRange(d.Times)
	}
	return d, nil
}

// LoadCSVFile opens and loads a CSV file.
func LoadCSVFile(path string, opts LoadOptions) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadCSV(f, opts)
}

// Slice returns a new dataset containing the rows whose timestamp falls in
// [start, end]. The source dataset is not modified.
func Slice(d *model.Dataset, id string, start, end time.Time) (*model.Dataset, error) {
	if len(d.Times) == 0 {
		return nil, fmt.Errorf("dataset: %s has no row timestamps to slice on", d.ID)
	}

	var keep []int
	for i, ts := range d.Times {
		if !ts.Before(start) && !ts.After(end) {
			keep = append(keep, i)
		}
	}

	out := &model.Dataset{
		ID:          id,
		Start:       start,
		End:         end,
		Schema:      d.Schema,
		Target:      d.Target,
		Numeric:     map[string][]float64{},
		Categorical: map[string][]string{},
		Times:       make([]time.Time, len(keep)),
	}
	for i, idx := range keep {
		out.Times[i] = d.Times[idx]
	}
	for name, values := range d.Numeric {
		sliced := make([]float64, len(keep))
		for i, idx := range keep {
			sliced[i] = values[idx]
		}
		out.Numeric[name] = sliced
	}
	for name, values := range d.Categorical {
		sliced := make([]string, len(keep))
		for i, idx := range keep {
			sliced[i] = values[idx]
		}
		out.Categorical[name] = sliced
	}
	if len(d.Predictions) > 0 {
		out.Predictions = make([]float64, len(keep))
		for i, idx := range keep {
			out.Predictions[i] = d.Predictions[idx]
		}
	}
	return out, nil
}

func parseNumeric(raw []string) ([]float64, bool) {
	values := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

func parseTimes(d *model.Dataset, raw []string, layout string) error {
	if layout == "" {
		layout = time.RFC3339
	}
	d.Times = make([]time.Time, len(raw))
	for i, s := range raw {
		ts, err := time.Parse(layout, s)
		if err != nil {
			return fmt.Errorf("dataset: %s: parse time row %d: %w", d.ID, i+1, err)
		}
		d.Times[i] = ts
	}
	return nil
}

func timeRange(ts []time.Time) (time.Time, time.Time) {
	start, end := ts[0], ts[0]
	for _, t := range ts[1:] {
		if t.Before(start) {
			start = t
		}
		if t.After(end) {
			end = t
		}
	}
	return start, end
}
