// Package storage persists drift reports so they can be queried after a
// monitoring run completes.
//
// Two implementations are provided: an embedded SQLite store for single-node
// deployments and development, and a PostgreSQL store (via pgxpool) for
// shared deployments. Both store the full report as a JSON payload alongside
// indexed columns for the common query axes.
package storage

import (
	"context"
	"errors"

	"github.com/nagare-ml/nagare/internal/model"
)

// ErrNotFound is returned when a requested report does not exist.
var ErrNotFound = errors.New("storage: not found")

// ReportStore persists and retrieves drift reports.
type ReportStore interface {
	// SaveReport inserts a report. Reports are append-only: re-running a
	// window produces a new report with a new ID.
	SaveReport(ctx context.Context, report model.Report) error

	// GetReport returns the most recent report for a window ID.
	// Returns ErrNotFound if no report exists for the window.
	GetReport(ctx context.Context, windowID string) (model.Report, error)

	// ListReports returns recent reports ordered by generation time
	// descending. limit <= 0 uses a default of 50.
	ListReports(ctx context.Context, limit int) ([]model.Report, error)

	// Ping checks connectivity to the backing store.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

const defaultListLimit = 50
