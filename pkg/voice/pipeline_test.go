package voice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/env"
)

func newTestPipeline(llm Completer, google GoogleTTS, eleven ElevenLabsTTS) *Pipeline {
	cfg := DefaultConfig()
	logger := zap.NewNop()
	return NewPipeline(
		NewReplyGenerator(llm, cfg, logger),
		NewSynthesizer(google, eleven, cfg, logger),
		logger,
	)
}

func TestPipeline_ProcessTurn_FrustratedCaller(t *testing.T) {
	llm := &mockCompleter{reply: "That is unfortunate. I will fix it."}
	google := &mockGoogleTTS{available: true}
	p := newTestPipeline(llm, google, &mockElevenLabsTTS{available: true})

	got := p.ProcessTurn(context.Background(), TurnRequest{
		Utterance: "I'm confused and this isn't working",
		Language:  "english",
	})

	if got.ContextTag != ContextEmpathetic {
		t.Fatalf("ContextTag = %v, want empathetic", got.ContextTag)
	}

	want := "I understand, that's unfortunate... I'll fix it... I'm here to help you with this."
	if got.ReplyText != want {
		t.Errorf("ReplyText = %q, want %q", got.ReplyText, want)
	}
	if !strings.HasPrefix(got.ReplyText, contextOpeners[ContextEmpathetic]) {
		t.Errorf("ReplyText missing opener: %q", got.ReplyText)
	}
	if got.ProviderUsed != ProviderGoogle || string(got.Audio) != "google-audio" {
		t.Errorf("ProviderUsed = %v, Audio = %q", got.ProviderUsed, got.Audio)
	}
	if google.lastReq.SpeakingRate != 0.9 {
		t.Errorf("speaking rate = %v, want empathetic 0.9", google.lastReq.SpeakingRate)
	}
}

func TestPipeline_ProcessTurn_DegradedMode(t *testing.T) {
	failure := errors.New("down")
	p := newTestPipeline(
		&mockCompleter{err: failure},
		&mockGoogleTTS{available: true, err: failure},
		&mockElevenLabsTTS{available: true, err: failure},
	)

	got := p.ProcessTurn(context.Background(), TurnRequest{
		Utterance:         "hello",
		PreferredProvider: ProviderElevenLabs,
	})

	if got.ProviderUsed != ProviderNone || got.Audio != nil {
		t.Errorf("ProcessTurn() = %+v, want no audio", got)
	}
	if got.ReplyText == "" {
		t.Error("ReplyText empty in degraded mode, device has nothing to speak")
	}
	if got.ContextTag != ContextNeutral {
		t.Errorf("ContextTag = %v, want neutral", got.ContextTag)
	}
}

func TestPipeline_ProcessTurn_UsesPriorReplyForClassification(t *testing.T) {
	p := newTestPipeline(&mockCompleter{reply: "Thursday at ten works."}, &mockGoogleTTS{available: true}, nil)

	got := p.ProcessTurn(context.Background(), TurnRequest{
		Utterance:  "Thursday morning",
		PriorReply: "When would you like to schedule the appointment?",
	})

	if got.ContextTag != ContextProfessional {
		t.Errorf("ContextTag = %v, want professional", got.ContextTag)
	}
}

func TestConfigFromEnv(t *testing.T) {
	cfg := ConfigFromEnv(&env.Config{
		TTSPrimaryProvider: "elevenlabs",
		ProviderTimeoutMs:  5000,
		ReplyMaxWords:      50,
		ReplyTruncateWords: 45,
		SpeechPauseChars:   200,
		BusinessName:       "Acme",
	})

	if cfg.PrimaryProvider != ProviderElevenLabs {
		t.Errorf("PrimaryProvider = %v", cfg.PrimaryProvider)
	}
	if cfg.ProviderTimeout != 5*time.Second {
		t.Errorf("ProviderTimeout = %v", cfg.ProviderTimeout)
	}
	if cfg.MaxWords != 50 || cfg.TruncateWords != 45 || cfg.PauseCharThreshold != 200 {
		t.Errorf("thresholds = %d/%d/%d", cfg.MaxWords, cfg.TruncateWords, cfg.PauseCharThreshold)
	}
	if cfg.BusinessName != "Acme" {
		t.Errorf("BusinessName = %q", cfg.BusinessName)
	}

	small := ConfigFromEnv(&env.Config{ReplyMaxWords: 4})
	if small.MaxWords != 4 || small.TruncateWords < 1 || small.TruncateWords > small.MaxWords {
		t.Errorf("small budget = %d/%d, want truncate within [1, 4]", small.MaxWords, small.TruncateWords)
	}

	defaults := ConfigFromEnv(&env.Config{TTSPrimaryProvider: "unknown"})
	if defaults.PrimaryProvider != ProviderGoogle || defaults.MaxWords != 70 {
		t.Errorf("defaults not kept: %+v", defaults)
	}
}
