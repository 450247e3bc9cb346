package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/nagare-ml/nagare/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	window_id    TEXT NOT NULL,
	generated_at TIMESTAMP NOT NULL,
	verdict      TEXT NOT NULL,
	payload      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_window_id ON reports (window_id, generated_at DESC);
CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports (generated_at DESC);
`

// SQLiteStore is a ReportStore backed by an embedded SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLite opens (or creates) a SQLite database at path and ensures the
// reports schema exists. Use ":memory:" for an ephemeral store.
func NewSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}

	// modernc.org/sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY under concurrent report saves.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: create sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// SaveReport inserts a report.
func (s *SQLiteStore) SaveReport(ctx context.Context, report model.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("storage: marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, window_id, generated_at, verdict, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		report.ID.String(), report.WindowID, report.GeneratedAt, string(report.Verdict), string(payload),
	)
	if err != nil {
		return fmt.Errorf("storage: save report: %w", err)
	}
	return nil
}

// GetReport returns the most recent report for a window ID.
func (s *SQLiteStore) GetReport(ctx context.Context, windowID string) (model.Report, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE window_id = ?
		 ORDER BY generated_at DESC LIMIT 1`, windowID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Report{}, ErrNotFound
		}
		return model.Report{}, fmt.Errorf("storage: get report: %w", err)
	}
	return unmarshalReport(payload)
}

// ListReports returns recent reports ordered by generation time descending.
func (s *SQLiteStore) ListReports(ctx context.Context, limit int) ([]model.Report, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM reports ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: list reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("storage: scan report: %w", err)
		}
		report, err := unmarshalReport(payload)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list reports: %w", err)
	}
	return reports, nil
}

// Ping checks connectivity to the database.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close shuts down the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func unmarshalReport(payload []byte) (model.Report, error) {
	var report model.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return model.Report{}, fmt.Errorf("storage: unmarshal report: %w", err)
	}
	return report, nil
}
