package voice

import (
	"time"

	"github.com/troikatech/voice-assistant/pkg/env"
)

// Config is the read-only configuration shared by every stage of a turn
type Config struct {
	PrimaryProvider Provider
	ProviderTimeout time.Duration

	MaxWords           int
	TruncateWords      int
	PauseCharThreshold int

	BusinessName string

	Prompts   map[ContextTag]PromptTemplate
	Fallbacks map[ContextTag]string
	Voices    VoiceProfile
}

// DefaultConfig returns the built-in tables and thresholds
func DefaultConfig() Config {
	return Config{
		PrimaryProvider:    ProviderGoogle,
		ProviderTimeout:    12 * time.Second,
		MaxWords:           70,
		TruncateWords:      65,
		PauseCharThreshold: 120,
		BusinessName:       "our team",
		Prompts:            DefaultPromptTemplates(),
		Fallbacks:          DefaultFallbacks(),
		Voices:             DefaultVoiceProfile(),
	}
}

// ConfigFromEnv overlays the environment thresholds on the defaults
func ConfigFromEnv(cfg *env.Config) Config {
	c := DefaultConfig()

	if p := ParseProvider(cfg.TTSPrimaryProvider); p != ProviderNone {
		c.PrimaryProvider = p
	}
	if cfg.ProviderTimeoutMs > 0 {
		c.ProviderTimeout = time.Duration(cfg.ProviderTimeoutMs) * time.Millisecond
	}
	if cfg.ReplyMaxWords > 0 {
		c.MaxWords = cfg.ReplyMaxWords
	}
	if cfg.ReplyTruncateWords > 0 {
		c.TruncateWords = cfg.ReplyTruncateWords
	}
	c.TruncateWords = truncateBudget(c.MaxWords, c.TruncateWords)
	if cfg.SpeechPauseChars > 0 {
		c.PauseCharThreshold = cfg.SpeechPauseChars
	}
	if cfg.BusinessName != "" {
		c.BusinessName = cfg.BusinessName
	}

	return c
}
