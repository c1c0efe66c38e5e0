package voice

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/ai"
	"github.com/troikatech/voice-assistant/pkg/metrics"
)

// Completer is the language-model collaborator. *ai.Manager satisfies it.
type Completer interface {
	Complete(ctx context.Context, req *ai.CompletionRequest) (string, error)
}

// ReplyGenerator asks the language model for a context-conditioned reply
type ReplyGenerator struct {
	llm    Completer
	post   *PostProcessor
	cfg    Config
	logger *zap.Logger
}

// NewReplyGenerator creates a generator. llm may be nil, in which case every
// turn is answered from the fallback table.
func NewReplyGenerator(llm Completer, cfg Config, logger *zap.Logger) *ReplyGenerator {
	return &ReplyGenerator{
		llm:    llm,
		post:   NewPostProcessor(cfg.MaxWords, cfg.TruncateWords, logger),
		cfg:    cfg,
		logger: logger,
	}
}

// Generate always returns speakable text. LLM failures are answered with the
// context's fallback sentence.
func (g *ReplyGenerator) Generate(ctx context.Context, utterance string, tag ContextTag, language string) string {
	if g.llm == nil {
		g.logger.Warn("No language model configured, using fallback reply",
			zap.String("context", tag.String()),
		)
		return g.fallback(tag)
	}

	tmpl, ok := g.cfg.Prompts[tag]
	if !ok {
		tmpl = g.cfg.Prompts[ContextNeutral]
	}

	callCtx := ctx
	if g.cfg.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.ProviderTimeout)
		defer cancel()
	}

	raw, err := g.llm.Complete(callCtx, &ai.CompletionRequest{
		SystemPrompt: g.systemPrompt(tmpl, language),
		UserMessage:  utterance,
		MaxTokens:    tmpl.MaxTokens,
		Temperature:  tmpl.Temperature,
	})
	if err != nil {
		g.logger.Warn("Reply generation failed, using fallback reply",
			zap.String("context", tag.String()),
			zap.Error(err),
		)
		return g.fallback(tag)
	}

	reply := g.post.Finalize(raw, tag)
	if reply == "" {
		g.logger.Warn("Language model returned nothing speakable, using fallback reply",
			zap.String("context", tag.String()),
		)
		return g.fallback(tag)
	}

	// Finalize already enforces the budget; this holds even if the post-processor changes.
	return g.post.Truncate(reply, tag)
}

func (g *ReplyGenerator) fallback(tag ContextTag) string {
	metrics.RecordReplyFallback()
	if s, ok := g.cfg.Fallbacks[tag]; ok {
		return s
	}
	return g.cfg.Fallbacks[ContextNeutral]
}

func (g *ReplyGenerator) systemPrompt(tmpl PromptTemplate, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly phone assistant for %s, speaking with a caller on a live phone call. ", g.cfg.BusinessName)
	b.WriteString("Answer in two or three short sentences of plain spoken language. Do not use lists, markdown, emojis or stage directions. ")
	b.WriteString(tmpl.Fragment)
	b.WriteString(" ")
	b.WriteString(languageInstruction(language))
	return b.String()
}

func languageInstruction(language string) string {
	if languageCode(language) == spanishLanguageCode {
		return "Respond only in Spanish."
	}
	return "Respond only in English."
}

const spanishLanguageCode = "es-US"

// languageCode maps a turn's language ("es", "spanish", "es-MX") to the
// locale replies are spoken in. English and unknown languages map to "".
func languageCode(language string) string {
	l := strings.ToLower(strings.TrimSpace(language))
	if strings.HasPrefix(l, "es") || strings.HasPrefix(l, "sp") {
		return spanishLanguageCode
	}
	return ""
}
