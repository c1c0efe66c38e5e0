package voice

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/metrics"
	"github.com/troikatech/voice-assistant/pkg/otel"
)

// TurnRequest is one caller utterance
type TurnRequest struct {
	Utterance         string
	Language          string
	PreferredProvider Provider
	// PriorReply is the assistant's previous reply, used as reply text when classifying
	PriorReply string
}

// TurnResult is what the caller-facing layer needs to answer the caller.
// Audio is nil when ProviderUsed is ProviderNone.
type TurnResult struct {
	Audio        []byte
	ProviderUsed Provider
	ContextTag   ContextTag
	ReplyText    string
}

// Pipeline runs classify, generate and synthesize for a single turn
type Pipeline struct {
	generator   *ReplyGenerator
	synthesizer *Synthesizer
	logger      *zap.Logger
}

// NewPipeline creates a pipeline. It holds no per-turn state and is safe to
// share between requests.
func NewPipeline(generator *ReplyGenerator, synthesizer *Synthesizer, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		generator:   generator,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// ProcessTurn never fails: every stage has a degraded output
func (p *Pipeline) ProcessTurn(ctx context.Context, req TurnRequest) TurnResult {
	var (
		tag    ContextTag
		reply  string
		result SynthesisResult
	)

	_ = otel.WithSpan(ctx, "voice.classify", func(ctx context.Context) error {
		tag = Classify(req.Utterance, req.PriorReply)
		return nil
	})

	_ = otel.WithSpan(ctx, "voice.generate", func(ctx context.Context) error {
		reply = p.generator.Generate(ctx, req.Utterance, tag, req.Language)
		return nil
	}, attribute.String("voice.context", tag.String()), attribute.String("voice.language", req.Language))

	_ = otel.WithSpan(ctx, "voice.synthesize", func(ctx context.Context) error {
		result = p.synthesizer.SynthesizeInLanguage(ctx, reply, tag, req.PreferredProvider, req.Language)
		return nil
	}, attribute.String("voice.context", tag.String()), attribute.String("voice.preferred_provider", req.PreferredProvider.String()))

	metrics.RecordTurn(tag.String(), result.Provider.String())

	p.logger.Info("Processed voice turn",
		zap.String("context", tag.String()),
		zap.String("provider", result.Provider.String()),
		zap.Int("audio_bytes", len(result.Audio)),
	)

	return TurnResult{
		Audio:        result.Audio,
		ProviderUsed: result.Provider,
		ContextTag:   tag,
		ReplyText:    result.SpokenText,
	}
}
