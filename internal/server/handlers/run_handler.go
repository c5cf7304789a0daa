package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Reinvik/nexus-jarvis-suite/internal/service/runner"
)

// RunHandler exposes the reconciliation pipeline over HTTP.
type RunHandler struct {
	runner *runner.Runner
	logger *zap.Logger
}

// NewRunHandler constructs the HTTP handler adapter.
func NewRunHandler(run *runner.Runner, logger *zap.Logger) *RunHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunHandler{runner: run, logger: logger}
}

// Execute triggers a reconciliation run and blocks until it finishes.
func (h *RunHandler) Execute(c *gin.Context) {
	report, err := h.runner.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, runner.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "a run is already in progress"})
			return
		}
		h.logger.Error("run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "run failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// Status reports whether a run is in flight and the last finished run.
func (h *RunHandler) Status(c *gin.Context) {
	resp := gin.H{"running": h.runner.Running()}
	if last, ok := h.runner.LastRun(); ok {
		resp["last_run"] = last
	}
	c.JSON(http.StatusOK, resp)
}

// Summary returns the per-shipment summary of the last analysis.
func (h *RunHandler) Summary(c *gin.Context) {
	analysis, ok := h.runner.LastAnalysis()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis available yet"})
		return
	}
	c.JSON(http.StatusOK, analysis.Summary)
}

// Discrepancies returns the unified discrepancy table of the last analysis.
func (h *RunHandler) Discrepancies(c *gin.Context) {
	analysis, ok := h.runner.LastAnalysis()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis available yet"})
		return
	}
	c.JSON(http.StatusOK, analysis.Discrepancies)
}

// Swaps returns the swap detail table of the last analysis.
func (h *RunHandler) Swaps(c *gin.Context) {
	analysis, ok := h.runner.LastAnalysis()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis available yet"})
		return
	}
	c.JSON(http.StatusOK, analysis.Swaps)
}
