package handlers

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/ai"
	"github.com/troikatech/voice-assistant/pkg/env"
	"github.com/troikatech/voice-assistant/pkg/logger"
	"github.com/troikatech/voice-assistant/pkg/mongo"
	"github.com/troikatech/voice-assistant/pkg/storage"
	"github.com/troikatech/voice-assistant/pkg/transcript"
	"github.com/troikatech/voice-assistant/pkg/voice"
)

// VoiceLister lists the voices a TTS account can use
type VoiceLister interface {
	IsAvailable() bool
	GetAvailableVoices(ctx context.Context) ([]ai.Voice, error)
}

type Handler struct {
	cfg         *env.Config
	redisClient *redis.Client
	mongoClient *mongo.Client
	logger      *zap.Logger
	aiManager   *ai.Manager
	googleTTS   voice.GoogleTTS
	voices      VoiceLister
	pipeline    *voice.Pipeline
	audioStore  storage.AudioStore
	transcripts transcript.Store
}

func NewHandler(
	cfg *env.Config,
	redisClient *redis.Client,
	mongoClient *mongo.Client,
	aiManager *ai.Manager,
	googleTTS voice.GoogleTTS,
	voices VoiceLister,
	pipeline *voice.Pipeline,
	audioStore storage.AudioStore,
	transcripts transcript.Store,
) *Handler {
	log := logger.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		cfg:         cfg,
		redisClient: redisClient,
		mongoClient: mongoClient,
		logger:      log,
		aiManager:   aiManager,
		googleTTS:   googleTTS,
		voices:      voices,
		pipeline:    pipeline,
		audioStore:  audioStore,
		transcripts: transcripts,
	}
}
