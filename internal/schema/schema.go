// Package schema validates a window's column layout against the reference
// baseline before any scoring runs. Catching mismatches up front avoids
// partial, meaningless drift numbers.
package schema

import (
	"fmt"
	"strings"

	"github.com/nagare-ml/nagare/internal/model"
)

// MismatchError reports a window whose schema diverges from the reference.
// The affected window is marked errored; the run is not aborted.
type MismatchError struct {
	WindowID  string
	Missing   []string // reference columns absent from the window
	Conflicts []string // columns whose declared type differs
	Empty     bool     // the window has no rows
}

func (e *MismatchError) Error() string {
	var parts []string
	if e.Empty {
		parts = append(parts, "window is empty")
	}
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing columns %v", e.Missing))
	}
	if len(e.Conflicts) > 0 {
		parts = append(parts, fmt.Sprintf("type conflicts %v", e.Conflicts))
	}
	return fmt.Sprintf("schema: window %s: %s", e.WindowID, strings.Join(parts, "; "))
}

// Validate checks the window against the reference schema. On success it
// returns the intersected, type-checked column list in reference schema
// order, plus the names of window-only columns. Extra columns are not an
// error; they are reported back so the caller can surface them as unscored.
func Validate(ref model.Schema, win *model.Dataset) ([]model.Column, []string, error) {
	mismatch := &MismatchError{WindowID: win.ID}

	if win.Rows() == 0 {
		mismatch.Empty = true
	}

	var cols []model.Column
	for _, rc := range ref.Columns {
		wt, ok := win.Schema.Type(rc.Name)
		if !ok {
			mismatch.Missing = append(mismatch.Missing, rc.Name)
			continue
		}
		if wt != rc.Type {
			mismatch.Conflicts = append(mismatch.Conflicts, rc.Name)
			continue
		}
		cols = append(cols, rc)
	}

	var extra []string
	for _, wc := range win.Schema.Columns {
		if !ref.Has(wc.Name) {
			extra = append(extra, wc.Name)
		}
	}

	if mismatch.Empty || len(mismatch.Missing) > 0 || len(mismatch.Conflicts) > 0 {
		return nil, nil, mismatch
	}
	return cols, extra, nil
}
