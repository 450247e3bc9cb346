package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagare-ml/nagare/internal/model"
	"github.com/nagare-ml/nagare/internal/server"
	"github.com/nagare-ml/nagare/internal/storage"
)

func newTestServer(t *testing.T) (*server.Server, storage.ReportStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := server.New(server.Config{
		Store:     store,
		Logger:    logger,
		Port:      0,
		Version:   "test",
		StoreName: "sqlite",
	})
	return srv, store
}

func seedReport(t *testing.T, store storage.ReportStore, windowID string, generatedAt time.Time, verdict model.Verdict) model.Report {
	t.Helper()
	report := model.Report{
		ID:          uuid.New(),
		WindowID:    windowID,
		GeneratedAt: generatedAt,
		FeatureDrift: []model.FeatureDrift{
			{Feature: "temp", Metric: model.MetricPSI, Score: 0.31, Threshold: 0.2, Drifted: true},
		},
		Verdict: verdict,
	}
	require.NoError(t, store.SaveReport(context.Background(), report))
	return report
}

func doRequest(t *testing.T, srv *server.Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data model.HealthResponse `json:"data"`
		Meta model.ResponseMeta   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Data.Status)
	assert.Equal(t, "sqlite", resp.Data.Store)
	assert.Equal(t, "connected", resp.Data.StoreStatus)
	assert.NotEmpty(t, resp.Meta.RequestID)
}

func TestGetReport(t *testing.T) {
	srv, store := newTestServer(t)
	want := seedReport(t, store, "week1", time.Date(2011, 2, 1, 0, 0, 0, 0, time.UTC), model.VerdictDrifted)

	rec := doRequest(t, srv, http.MethodGet, "/v1/reports/week1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data model.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, want.ID, resp.Data.ID)
	assert.Equal(t, model.VerdictDrifted, resp.Data.Verdict)
	require.Len(t, resp.Data.FeatureDrift, 1)
	assert.Equal(t, "temp", resp.Data.FeatureDrift[0].Feature)
}

func TestGetReportNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/v1/reports/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp model.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeNotFound, resp.Error.Code)
}

func TestListReports(t *testing.T) {
	srv, store := newTestServer(t)
	base := time.Date(2011, 2, 1, 0, 0, 0, 0, time.UTC)
	seedReport(t, store, "week1", base, model.VerdictStable)
	seedReport(t, store, "week2", base.Add(24*time.Hour), model.VerdictDrifted)
	seedReport(t, store, "week3", base.Add(48*time.Hour), model.VerdictDegraded)

	rec := doRequest(t, srv, http.MethodGet, "/v1/reports?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []model.Report `json:"data"`
		Count int            `json:"count"`
		Limit int            `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 2, resp.Limit)
	assert.Equal(t, "week3", resp.Data[0].WindowID)
	assert.Equal(t, "week2", resp.Data[1].WindowID)
}

func TestListReportsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/v1/reports")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []model.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
}

func TestListReportsInvalidLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, limit := range []string{"abc", "-1", "0"} {
		rec := doRequest(t, srv, http.MethodGet, "/v1/reports?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))

	var resp struct {
		Meta model.ResponseMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fixed-id", resp.Meta.RequestID)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/reports")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
