package handler

import (
	"io"
	"net/http"

	"chart-oracle/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Image uploads over HTTP are capped; Telegram photos are far below this.
const maxAnalyzeBodyBytes = 10 << 20

type ChartAnalyzer interface {
	Analyze(imageBytes []byte) (domain.AnalysisResult, error)
}

type Handler struct {
	tracer   trace.Tracer
	analyzer ChartAnalyzer
}

func New(tracer trace.Tracer, analyzer ChartAnalyzer) *Handler {
	return &Handler{
		tracer:   tracer,
		analyzer: analyzer,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.POST("/api/analyze", h.Analyze)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Analyze runs the same trend heuristic the bot uses against a raw image body.
// Intended for diagnostics: it lets the heuristic be exercised without a chat.
func (h *Handler) Analyze(c *gin.Context) {
	if h.analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analyzer unavailable"})
		return
	}

	_, span := h.tracer.Start(c.Request.Context(), "handler.analyze")
	defer span.End()

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAnalyzeBodyBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must contain image bytes"})
		return
	}
	if len(body) > maxAnalyzeBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	result, err := h.analyzer.Analyze(body)
	if err != nil {
		span.SetAttributes(attribute.String("analyze.error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
