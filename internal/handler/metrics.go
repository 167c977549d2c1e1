package handler

import (
	"encoding/json"
	"net/http"

	"github.com/workdesk/internal/logger"
	"github.com/workdesk/internal/model"
	"github.com/workdesk/internal/repository"
)

type MetricsHandler struct {
	metrics *repository.MetricsRepository
}

func NewMetricsHandler(metrics *repository.MetricsRepository) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

type SaveSeriesConfigRequest struct {
	UserID string                     `json:"user_id"`
	Config []model.MetricSeriesConfig `json:"config"`
}

func (h *MetricsHandler) GetSeriesConfig(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	cfg, err := h.metrics.SeriesConfig(r.Context(), userID)
	if err != nil {
		logger.Errorf("get series config: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get series config")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *MetricsHandler) SaveSeriesConfig(w http.ResponseWriter, r *http.Request) {
	var req SaveSeriesConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if err := h.metrics.SaveSeriesConfig(r.Context(), req.UserID, req.Config); err != nil {
		logger.Errorf("save series config: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save series config")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *MetricsHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	metric := r.URL.Query().Get("metric")
	if userID == "" || metric == "" {
		writeError(w, http.StatusBadRequest, "user_id and metric are required")
		return
	}
	days := queryInt(r, "days", 14)
	series, err := h.metrics.Series(r.Context(), userID, model.Metric(metric), days)
	if err != nil {
		logger.Errorf("get series: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get series")
		return
	}
	writeJSON(w, http.StatusOK, series)
}
