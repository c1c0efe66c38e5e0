package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/internal/api/handlers"
	"github.com/troikatech/voice-assistant/pkg/auth"
	"github.com/troikatech/voice-assistant/pkg/env"
	"github.com/troikatech/voice-assistant/pkg/middleware"
	"github.com/troikatech/voice-assistant/pkg/otel"
)

// NewRouter registers every route of the voice service. redisClient may be
// nil, in which case rate limiting and idempotent replays are off.
func NewRouter(cfg *env.Config, h *handlers.Handler, redisClient *redis.Client, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.OTELEnabled {
		router.Use(otel.GinMiddleware())
	}
	router.Use(middleware.TraceMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(1 << 20))

	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] %s %s %d %s\n",
			param.TimeStamp.Format(time.RFC3339),
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency,
		)
	}))
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", h.GetMetrics)
	router.GET("/metrics/prometheus", h.GetPrometheusMetrics)

	voiceGroup := router.Group("/voice")
	{
		turn := []gin.HandlerFunc{middleware.WebhookSignature(cfg.WebhookSecret, logger)}
		if redisClient != nil {
			turn = append(turn, middleware.IdempotencyMiddleware(redisClient, logger))
		}
		turn = append(turn, h.ProcessVoiceTurn)
		voiceGroup.POST("/turn", turn...)
		voiceGroup.GET("/audio/:turn_id", middleware.ValidateUUIDParam("turn_id"), h.GetTurnAudio)
	}

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	if redisClient != nil {
		api.Use(middleware.NewRateLimiter(redisClient, cfg.APIRateLimitRPM).Middleware())
	}
	{
		api.GET("/calls/:call_sid/turns",
			middleware.ValidateCallSIDParam("call_sid"),
			middleware.RoleMiddleware(auth.RoleAdmin, auth.RoleOperator),
			h.ListCallTurns,
		)
		api.GET("/voice/voices", middleware.RoleMiddleware(auth.RoleAdmin), h.ListVoices)
	}

	return router
}

func corsConfig(allowedOrigins string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Signature", "X-Trace-ID"}
	config.ExposeHeaders = []string{"X-Trace-ID", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}

	if allowedOrigins == "" || allowedOrigins == "*" {
		config.AllowAllOrigins = true
		return config
	}

	for _, origin := range strings.Split(allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			config.AllowOrigins = append(config.AllowOrigins, origin)
		}
	}
	config.AllowCredentials = true
	return config
}
