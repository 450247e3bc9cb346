package storage_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagare-ml/nagare/internal/model"
	"github.com/nagare-ml/nagare/internal/storage"
)

func newSQLiteStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "nagare.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(windowID string, generatedAt time.Time, verdict model.Verdict) model.Report {
	return model.Report{
		ID:          uuid.New(),
		WindowID:    windowID,
		GeneratedAt: generatedAt,
		FeatureDrift: []model.FeatureDrift{
			{Feature: "temp", Metric: model.MetricPSI, Score: 0.31, Threshold: 0.2, Drifted: true},
			{Feature: "hum", Metric: model.MetricPSI, Score: 0.05, Threshold: 0.2},
		},
		Performance: []model.Performance{
			{Metric: model.PerfMAE, ReferenceValue: 30.1, WindowValue: 41.6, Delta: 11.5},
		},
		Verdict: verdict,
		Causes: []model.Cause{
			{Kind: model.CauseFeature, Name: "temp", Score: 0.31},
		},
	}
}

func TestSQLiteSaveAndGetReport(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	want := sampleReport("week1", time.Date(2011, 2, 1, 0, 0, 0, 0, time.UTC), model.VerdictDrifted)
	require.NoError(t, store.SaveReport(ctx, want))

	got, err := store.GetReport(ctx, "week1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.WindowID, got.WindowID)
	assert.Equal(t, want.Verdict, got.Verdict)
	require.Len(t, got.FeatureDrift, 2)
	assert.Equal(t, "temp", got.FeatureDrift[0].Feature)
	assert.True(t, got.FeatureDrift[0].Drifted)
	require.Len(t, got.Causes, 1)
	assert.Equal(t, model.CauseFeature, got.Causes[0].Kind)
}

func TestSQLiteGetReportNotFound(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.GetReport(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLiteGetReportReturnsLatest(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	base := time.Date(2011, 2, 1, 0, 0, 0, 0, time.UTC)
	older := sampleReport("week1", base, model.VerdictStable)
	newer := sampleReport("week1", base.Add(time.Hour), model.VerdictDrifted)
	require.NoError(t, store.SaveReport(ctx, older))
	require.NoError(t, store.SaveReport(ctx, newer))

	got, err := store.GetReport(ctx, "week1")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
	assert.Equal(t, model.VerdictDrifted, got.Verdict)
}

func TestSQLiteListReportsOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	base := time.Date(2011, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"week1", "week2", "week3"} {
		report := sampleReport(id, base.Add(time.Duration(i)*24*time.Hour), model.VerdictStable)
		require.NoError(t, store.SaveReport(ctx, report))
	}

	reports, err := store.ListReports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "week3", reports[0].WindowID)
	assert.Equal(t, "week1", reports[2].WindowID)

	limited, err := store.ListReports(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "week3", limited[0].WindowID)
	assert.Equal(t, "week2", limited[1].WindowID)
}

func TestSQLiteListReportsEmpty(t *testing.T) {
	store := newSQLiteStore(t)

	reports, err := store.ListReports(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
