package bootstrap

import (
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/ai"
	"github.com/troikatech/voice-assistant/pkg/env"
	"github.com/troikatech/voice-assistant/pkg/voice"
)

// Providers holds the external collaborators of the voice pipeline. Clients
// without credentials are still constructed and report IsAvailable() false.
type Providers struct {
	LLM        *ai.Manager
	GoogleTTS  *ai.GoogleTTSService
	ElevenLabs *ai.TTSService
}

// NewProviders builds the LLM chain (OpenAI, Anthropic, Gemini in that order)
// and both TTS clients from configuration
func NewProviders(cfg *env.Config, logger *zap.Logger) *Providers {
	timeout := time.Duration(cfg.ProviderTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 12 * time.Second
	}

	candidates := []ai.Provider{
		ai.NewOpenAIProvider(cfg.OpenAIApiKey, cfg.OpenAIModel, timeout, logger),
		ai.NewAnthropicProvider(cfg.AnthropicApiKey, cfg.AnthropicModel, timeout, logger),
		ai.NewGeminiProvider(cfg.GeminiApiKey, cfg.GeminiModel, timeout, logger),
	}

	var providers []ai.Provider
	for _, p := range candidates {
		if p.IsAvailable() {
			providers = append(providers, p)
			logger.Info("LLM provider initialized", zap.String("provider", p.Name()))
		}
	}
	if len(providers) == 0 {
		logger.Warn("No LLM providers configured, replies will use fallback text")
	}

	googleTTS := ai.NewGoogleTTSService(cfg.GoogleTTSApiKey, cfg.GoogleTTSLanguage, cfg.GoogleTTSEncoding, timeout, logger)
	elevenLabs := ai.NewTTSService(cfg.ElevenLabsApiKey, cfg.ElevenLabsModel, cfg.ElevenLabsOutputFormat, timeout, logger)

	logger.Info("TTS providers initialized",
		zap.Bool("google", googleTTS.IsAvailable()),
		zap.Bool("elevenlabs", elevenLabs.IsAvailable()),
		zap.String("primary", cfg.TTSPrimaryProvider),
	)

	return &Providers{
		LLM:        ai.NewManager(providers, logger),
		GoogleTTS:  googleTTS,
		ElevenLabs: elevenLabs,
	}
}

// NewPipeline assembles the turn pipeline. cache may be nil.
func NewPipeline(cfg *env.Config, p *Providers, cache voice.AudioCache, logger *zap.Logger) *voice.Pipeline {
	vcfg := voice.ConfigFromEnv(cfg)

	synth := voice.NewSynthesizer(p.GoogleTTS, p.ElevenLabs, vcfg, logger)
	if cache != nil {
		synth = synth.WithCache(cache)
	}

	return voice.NewPipeline(voice.NewReplyGenerator(p.LLM, vcfg, logger), synth, logger)
}
