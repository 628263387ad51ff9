package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/service"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetConfig returns the session configuration.
func (h *AnalyticsHandler) GetConfig(c *gin.Context) {
	cfg, err := h.analytics.Config(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// SetConfig validates and stores a configuration.
func (h *AnalyticsHandler) SetConfig(c *gin.Context) {
	var cfg domain.CalculationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	saved, err := h.analytics.SetConfig(c.Request.Context(), sessionID(c), cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Configuration saved successfully", "config": saved})
}

// GetAnalytics computes the report for the session dataset.
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	report, err := h.analytics.Report(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ReplaceAnalytics replaces the configuration and/or dataset of the session.
func (h *AnalyticsHandler) ReplaceAnalytics(c *gin.Context) {
	var req service.ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := h.analytics.Replace(c.Request.Context(), sessionID(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Analytics data updated successfully"})
}

// CreateRun computes and persists a run.
func (h *AnalyticsHandler) CreateRun(c *gin.Context) {
	run, err := h.analytics.SaveRun(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, run)
}

// ListRuns returns the most recent runs.
func (h *AnalyticsHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	runs, err := h.analytics.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRunResults returns the stored per-item results of a run.
func (h *AnalyticsHandler) GetRunResults(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	results, err := h.analytics.RunResults(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runId": id, "results": results})
}
