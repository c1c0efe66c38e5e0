package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	services := map[string]string{
		"api":      "healthy",
		"database": "not_configured",
		"redis":    "not_configured",
	}

	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			services["redis"] = "unhealthy"
		} else {
			services["redis"] = "healthy"
		}
	}

	if h.mongoClient != nil {
		if err := h.mongoClient.Ping(ctx); err != nil {
			services["database"] = "unhealthy"
		} else {
			services["database"] = "healthy"
		}
	}

	// Missing LLM or TTS credentials degrade replies and audio but never fail a turn
	services["llm"] = "fallback_only"
	if h.aiManager != nil {
		if provider := h.aiManager.GetAvailableProvider(); provider != nil {
			services["llm"] = provider.Name()
		}
	}

	services["tts_google"] = availability(h.googleTTS != nil && h.googleTTS.IsAvailable())
	services["tts_elevenlabs"] = availability(h.voices != nil && h.voices.IsAvailable())

	overallStatus := "healthy"
	for _, status := range services {
		if status == "unhealthy" {
			overallStatus = "degraded"
			break
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  services,
	})
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}
