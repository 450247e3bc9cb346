package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nagare-ml/nagare/internal/model"
	"github.com/nagare-ml/nagare/internal/storage"
)

const maxListLimit = 500

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	store     storage.ReportStore
	logger    *slog.Logger
	startedAt time.Time
	version   string
	storeName string
}

// NewHandlers creates a new Handlers.
func NewHandlers(store storage.ReportStore, logger *slog.Logger, version, storeName string) *Handlers {
	return &Handlers{
		store:     store,
		logger:    logger,
		startedAt: time.Now(),
		version:   version,
		storeName: storeName,
	}
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	storeStatus := "connected"
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.store.Ping(r.Context()); err != nil {
		storeStatus = "disconnected"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, r, httpStatus, model.HealthResponse{
		Status:      status,
		Version:     h.version,
		Store:       h.storeName,
		StoreStatus: storeStatus,
		Uptime:      int64(time.Since(h.startedAt).Seconds()),
	})
}

// HandleListReports handles GET /v1/reports.
// Supports ?limit=N (default 50, capped at 500).
func (h *Handlers) HandleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	reports, err := h.store.ListReports(r.Context(), limit)
	if err != nil {
		h.logger.Error("list reports failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}
	writeList(w, r, reports, len(reports), limit)
}

// HandleGetReport handles GET /v1/reports/{window_id}.
// Returns the most recent report for the window.
func (h *Handlers) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	windowID := r.PathValue("window_id")
	if windowID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "window_id is required")
		return
	}

	report, err := h.store.GetReport(r.Context(), windowID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "no report for window "+windowID)
			return
		}
		h.logger.Error("get report failed", "error", err, "window_id", windowID, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to get report")
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
