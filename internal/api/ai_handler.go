package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kemalcalak/Resume-Builder/internal/ai"
	"github.com/kemalcalak/Resume-Builder/internal/api/middleware"
	"github.com/kemalcalak/Resume-Builder/internal/errcode"
)

// SuggestionWriter is satisfied by *ai.Assistant.
type SuggestionWriter interface {
	Summaries(ctx context.Context, jobTitle string) (ai.Summaries, error)
	BulletPoints(ctx context.Context, kind ai.BulletKind, subject string) (string, error)
}

// AIHandler serves writing suggestions. A nil writer means no provider is configured.
type AIHandler struct {
	writer       SuggestionWriter
	redis        redisRateCounter
	limitPerHour int
}

func NewAIHandler(writer SuggestionWriter, redis redisRateCounter, limitPerHour int) *AIHandler {
	useJSONFieldNames()
	return &AIHandler{writer: writer, redis: redis, limitPerHour: limitPerHour}
}

type summaryRequest struct {
	JobTitle string `json:"jobTitle" binding:"required,max=255"`
}

type bulletPointsRequest struct {
	Kind    string `json:"kind" binding:"required,oneof=experience education project"`
	Subject string `json:"subject" binding:"required,max=255"`
}

// GenerateSummary returns junior, mid and senior summary suggestions.
func (h *AIHandler) GenerateSummary(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationFailed(c, bindingFields(err))
		return
	}
	if !h.admit(c) {
		return
	}

	out, err := h.writer.Summaries(c.Request.Context(), req.JobTitle)
	if err != nil {
		RespondError(c, err, "failed to generate summary")
		return
	}
	Success(c, http.StatusOK, out)
}

// GenerateBulletPoints returns an HTML bullet list for an editor section.
func (h *AIHandler) GenerateBulletPoints(c *gin.Context) {
	var req bulletPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationFailed(c, bindingFields(err))
		return
	}
	if !h.admit(c) {
		return
	}

	out, err := h.writer.BulletPoints(c.Request.Context(), ai.BulletKind(req.Kind), req.Subject)
	if err != nil {
		RespondError(c, err, "failed to generate bullet points")
		return
	}
	Success(c, http.StatusOK, gin.H{"bulletPoints": out})
}

// admit checks provider availability and the per-owner hourly quota.
func (h *AIHandler) admit(c *gin.Context) bool {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		AbortUnauthorized(c)
		return false
	}
	if h.writer == nil {
		Error(c, http.StatusServiceUnavailable, errcode.Unavailable, "ai suggestions are not configured", nil)
		return false
	}
	if h.redis == nil || h.limitPerHour <= 0 {
		return true
	}

	key := "rate:ai:" + ownerID + ":" + time.Now().UTC().Format("2006010215")
	count, err := incrWithTTL(c.Request.Context(), h.redis, key, time.Hour)
	if err != nil {
		// Redis outages do not block suggestions.
		middleware.LoggerFromContext(c).Warn("ai rate counter", slog.String("error", err.Error()))
		count = 0
	}
	if count > int64(h.limitPerHour) {
		Error(c, http.StatusTooManyRequests, errcode.RateLimited, "rate limit exceeded", nil)
		return false
	}
	return true
}
