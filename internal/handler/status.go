package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoPolymarket/xterio-checker/internal/middleware"
	"github.com/GoPolymarket/xterio-checker/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ProgressSource interface {
	Progress() model.Progress
}

type StatusHandler struct {
	runID    string
	progress ProgressSource
}

func NewStatusHandler(runID string, progress ProgressSource) *StatusHandler {
	return &StatusHandler{runID: runID, progress: progress}
}

func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "xterio-checker", "run_id": h.runID})
}

func (h *StatusHandler) Progress(c *gin.Context) {
	p := h.progress.Progress()
	c.JSON(http.StatusOK, gin.H{
		"run_id":   h.runID,
		"progress": p,
		"pending":  p.Queued - p.Processed,
	})
}

// NewRouter builds the read-only status surface served while a batch runs.
func NewRouter(h *StatusHandler, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.ErrorHandler(log))
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/progress", h.Progress)
	}
	return r
}
