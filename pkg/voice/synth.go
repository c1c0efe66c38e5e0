package voice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/ai"
)

// Provider identifies a text-to-speech backend
type Provider string

const (
	ProviderGoogle     Provider = "google"
	ProviderElevenLabs Provider = "elevenlabs"
	ProviderNone       Provider = "none"
)

// ParseProvider maps a configuration or request value onto a provider.
// Unknown values mean "no preference".
func ParseProvider(s string) Provider {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "google", "google-tts", "providera", "a":
		return ProviderGoogle
	case "elevenlabs", "eleven_labs", "11labs", "providerb", "b":
		return ProviderElevenLabs
	default:
		return ProviderNone
	}
}

func (p Provider) String() string {
	return string(p)
}

var errProviderUnavailable = errors.New("provider not configured")

// GoogleTTS is the providerA collaborator. *ai.GoogleTTSService satisfies it.
type GoogleTTS interface {
	IsAvailable() bool
	Synthesize(ctx context.Context, req *ai.GoogleTTSRequest) ([]byte, error)
}

// ElevenLabsTTS is the providerB collaborator. *ai.TTSService satisfies it.
type ElevenLabsTTS interface {
	IsAvailable() bool
	TextToSpeech(ctx context.Context, req *ai.TTSRequest) ([]byte, error)
}

// AudioCache stores synthesized audio keyed by provider, voice and text
type AudioCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, audio []byte)
}

// SynthesisResult is the outcome of one synthesis. Audio is nil exactly when
// Provider is ProviderNone, in which case the caller's device should speak SpokenText.
type SynthesisResult struct {
	Audio      []byte
	Provider   Provider
	Tag        ContextTag
	SpokenText string
}

// Synthesizer turns final reply text into audio with ordered provider fallback
type Synthesizer struct {
	google     GoogleTTS
	elevenlabs ElevenLabsTTS
	normalizer *Normalizer
	cfg        Config
	cache      AudioCache
	logger     *zap.Logger
}

// NewSynthesizer creates a synthesizer. Either provider may be nil.
func NewSynthesizer(google GoogleTTS, elevenlabs ElevenLabsTTS, cfg Config, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		google:     google,
		elevenlabs: elevenlabs,
		normalizer: NewNormalizer(cfg.PauseCharThreshold),
		cfg:        cfg,
		logger:     logger,
	}
}

// WithCache enables the audio cache
func (s *Synthesizer) WithCache(cache AudioCache) *Synthesizer {
	s.cache = cache
	return s
}

// Synthesize normalizes text for speech and tries the preferred provider, then
// the other one. Provider failures are logged and never returned.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, tag ContextTag, preferred Provider) SynthesisResult {
	return s.SynthesizeInLanguage(ctx, text, tag, preferred, "")
}

// SynthesizeInLanguage is Synthesize with Google voices chosen for the reply language
func (s *Synthesizer) SynthesizeInLanguage(ctx context.Context, text string, tag ContextTag, preferred Provider, language string) SynthesisResult {
	spoken := s.normalizer.OptimizeForSpeech(text, tag)
	result := SynthesisResult{Provider: ProviderNone, Tag: tag, SpokenText: spoken}

	if strings.TrimSpace(spoken) == "" {
		return result
	}

	for _, provider := range s.order(preferred) {
		audio, err := s.attempt(ctx, provider, spoken, tag, language)
		if err != nil {
			s.logger.Warn("TTS provider failed",
				zap.String("provider", provider.String()),
				zap.String("context", tag.String()),
				zap.Error(err),
			)
			continue
		}

		result.Audio = audio
		result.Provider = provider
		return result
	}

	s.logger.Warn("No TTS provider produced audio, caller device will speak the reply",
		zap.String("context", tag.String()),
	)
	return result
}

func (s *Synthesizer) order(preferred Provider) []Provider {
	first := preferred
	if first == ProviderNone || first == "" {
		first = s.cfg.PrimaryProvider
	}
	if first == ProviderElevenLabs {
		return []Provider{ProviderElevenLabs, ProviderGoogle}
	}
	return []Provider{ProviderGoogle, ProviderElevenLabs}
}

func (s *Synthesizer) attempt(ctx context.Context, provider Provider, text string, tag ContextTag, language string) ([]byte, error) {
	var (
		key   string
		synth func(context.Context) ([]byte, error)
	)

	switch provider {
	case ProviderGoogle:
		if s.google == nil || !s.google.IsAvailable() {
			return nil, errProviderUnavailable
		}
		v := s.cfg.Voices.GoogleForLanguage(tag, language)
		key = AudioCacheKey(provider, fmt.Sprintf("%s@%.2f", v.Name, v.SpeakingRate), text)
		synth = func(ctx context.Context) ([]byte, error) {
			return s.google.Synthesize(ctx, &ai.GoogleTTSRequest{
				Text:         text,
				VoiceName:    v.Name,
				SpeakingRate: v.SpeakingRate,
				LanguageCode: v.LanguageCode,
			})
		}
	case ProviderElevenLabs:
		if s.elevenlabs == nil || !s.elevenlabs.IsAvailable() {
			return nil, errProviderUnavailable
		}
		v := s.cfg.Voices.ElevenLabsFor(tag)
		key = AudioCacheKey(provider, fmt.Sprintf("%s@%.2f/%.2f/%.2f/%t", v.VoiceID, v.Stability, v.SimilarityBoost, v.Style, v.SpeakerBoost), text)
		synth = func(ctx context.Context) ([]byte, error) {
			return s.elevenlabs.TextToSpeech(ctx, &ai.TTSRequest{
				Text:            text,
				VoiceID:         v.VoiceID,
				Stability:       v.Stability,
				SimilarityBoost: v.SimilarityBoost,
				Style:           v.Style,
				UseSpeakerBoost: v.SpeakerBoost,
			})
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	if s.cache != nil {
		if audio, ok := s.cache.Get(ctx, key); ok && len(audio) > 0 {
			return audio, nil
		}
	}

	callCtx := ctx
	if s.cfg.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.ProviderTimeout)
		defer cancel()
	}

	audio, err := synth(callCtx)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, errors.New("provider returned no audio")
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, audio)
	}
	return audio, nil
}

// AudioCacheKey derives a stable cache key for one synthesis
func AudioCacheKey(provider Provider, voice, text string) string {
	sum := sha256.Sum256([]byte(provider.String() + "|" + voice + "|" + text))
	return provider.String() + ":" + hex.EncodeToString(sum[:16])
}
