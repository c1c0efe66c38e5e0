package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/internal/api"
	"github.com/troikatech/voice-assistant/internal/api/handlers"
	"github.com/troikatech/voice-assistant/internal/bootstrap"
	"github.com/troikatech/voice-assistant/pkg/env"
	"github.com/troikatech/voice-assistant/pkg/logger"
	"github.com/troikatech/voice-assistant/pkg/mongo"
	"github.com/troikatech/voice-assistant/pkg/otel"
	"github.com/troikatech/voice-assistant/pkg/retry"
	"github.com/troikatech/voice-assistant/pkg/storage"
	"github.com/troikatech/voice-assistant/pkg/transcript"
)

func main() {
	cfg, err := env.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.OTELEnabled {
		shutdown, err := otel.InitTracing("voice-assistant", "1.0.0", cfg.OTELEndpoint)
		if err != nil {
			logger.Log.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
		} else {
			defer shutdown()
			logger.Log.Info("OpenTelemetry tracing enabled", zap.String("endpoint", cfg.OTELEndpoint))
		}
	}

	logger.Log.Info("Starting voice assistant",
		zap.String("env", cfg.AppEnv),
		zap.String("port", cfg.AppPort),
	)

	// Redis holds turn audio, the synthesis cache, rate limits and idempotent replays
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(opt)
	defer redisClient.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = retry.Do(startupCtx, retry.DefaultConfig(), func() error {
		ctx, cancel := context.WithTimeout(startupCtx, 5*time.Second)
		defer cancel()
		return redisClient.Ping(ctx).Err()
	})
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	var mongoClient *mongo.Client
	err = retry.Do(startupCtx, retry.DefaultConfig(), func() error {
		var err error
		mongoClient, err = mongo.NewClient(startupCtx, cfg.MongoURI, cfg.DBName, logger.Named("mongo"))
		return err
	})
	if err != nil {
		logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Log.Warn("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()

	cacheTTL := time.Duration(cfg.AudioCacheTTLMin) * time.Minute
	audioStore, err := storage.NewDriver("redis", redisClient, cacheTTL, "")
	if err != nil {
		logger.Log.Fatal("Failed to create audio store", zap.Error(err))
	}

	providers := bootstrap.NewProviders(cfg, logger.Named("providers"))
	voiceLog := logger.Named("voice")
	pipeline := bootstrap.NewPipeline(cfg, providers, storage.NewRedisAudioCache(redisClient, cacheTTL, voiceLog), voiceLog)

	transcripts := transcript.NewMongoStore(mongoClient)
	if err := transcripts.EnsureIndexes(startupCtx); err != nil {
		logger.Log.Warn("Failed to ensure transcript indexes", zap.Error(err))
	}

	h := handlers.NewHandler(
		cfg,
		redisClient,
		mongoClient,
		providers.LLM,
		providers.GoogleTTS,
		providers.ElevenLabs,
		pipeline,
		audioStore,
		transcripts,
	)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(cfg, h, redisClient, logger.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
