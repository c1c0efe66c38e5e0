package voice

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/metrics"
)

// Opener prepended to a reply that does not already start conversationally
var contextOpeners = map[ContextTag]string{
	ContextEmpathetic:   "I understand,",
	ContextProfessional: "Certainly,",
	ContextExcited:      "Oh wow,",
	ContextCalm:         "Sure,",
	ContextNeutral:      "Well,",
}

var knownOpeners = []string{
	"i understand", "certainly", "oh wow", "sure", "well", "so", "oh", "okay",
	"ok", "absolutely", "of course", "got it", "great", "alright", "right",
	"yes", "no", "hi", "hello", "thanks", "thank you", "i see", "hmm",
}

var empathyWords = []string{
	"sorry", "apologize", "apologies", "frustrating", "i hear you",
	"understandable", "here to help",
}

const reassurance = "I'm here to help you with this."

var (
	markupChars  = strings.NewReplacer(`"`, "", "“", "", "”", "", "*", "", "_", "", "`", "", "#", "")
	openParenRe  = regexp.MustCompile(`\s*[(\[]\s*`)
	closeParenRe = regexp.MustCompile(`\s*[)\]]`)
	dashRe       = regexp.MustCompile(`\s+(--|\x{2014}|\x{2013})\s+|\x{2014}`)
	strayCommaRe = regexp.MustCompile(`,\s*([,.!?])`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

// PostProcessor turns raw LLM output into a reply suitable for speech
type PostProcessor struct {
	maxWords  int
	keepWords int
	logger    *zap.Logger
}

// NewPostProcessor creates a post-processor. Replies longer than maxWords are cut
// to keepWords plus a pause marker. keepWords outside [1, maxWords] falls back
// to maxWords-5, and never below one word.
func NewPostProcessor(maxWords, keepWords int, logger *zap.Logger) *PostProcessor {
	if maxWords <= 0 {
		maxWords = 70
	}
	keepWords = truncateBudget(maxWords, keepWords)
	return &PostProcessor{maxWords: maxWords, keepWords: keepWords, logger: logger}
}

// Finalize cleans written-text artifacts, enforces an opener and terminator,
// applies the per-context content rules and truncates to the word budget
func (p *PostProcessor) Finalize(raw string, tag ContextTag) string {
	text := stripMarkup(raw)
	if text == "" {
		return ""
	}

	if !startsWithOpener(text) {
		text = contextOpeners[tag] + " " + lowerFirstWord(text)
	}

	text = ensureTerminator(text)

	switch tag {
	case ContextEmpathetic:
		if !containsAny(strings.ToLower(text), empathyWords) {
			text = text + " " + reassurance
		}
	case ContextExcited:
		text = strings.TrimRight(text, ".!?") + "!"
	}

	return p.Truncate(text, tag)
}

// Truncate keeps the first keepWords words of text longer than maxWords and
// appends a pause marker. Excited replies keep their closing exclamation mark.
func (p *PostProcessor) Truncate(text string, tag ContextTag) string {
	words := strings.Fields(text)
	if len(words) <= p.maxWords {
		return text
	}

	p.logger.Warn("Reply exceeded word budget, truncating",
		zap.Int("words", len(words)),
		zap.Int("max_words", p.maxWords),
		zap.String("context", tag.String()),
	)
	metrics.RecordTruncation()

	kept := strings.Join(words[:p.keepWords], " ")
	kept = strings.TrimRight(kept, ",;:")
	marker := pauseMarker
	if tag == ContextExcited {
		kept = strings.TrimRight(kept, "!")
		marker += "!"
	}
	return kept + " " + marker
}

func truncateBudget(maxWords, keepWords int) int {
	if keepWords > 0 && keepWords <= maxWords {
		return keepWords
	}
	if maxWords > 5 {
		return maxWords - 5
	}
	return 1
}

func stripMarkup(s string) string {
	s = markupChars.Replace(s)
	s = dashRe.ReplaceAllString(s, ", ")
	s = openParenRe.ReplaceAllString(s, ", ")
	s = closeParenRe.ReplaceAllString(s, ",")
	s = strayCommaRe.ReplaceAllString(s, "$1")
	s = spacesRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.TrimLeft(s, ", ")
}

func startsWithOpener(text string) bool {
	lower := strings.ToLower(text)
	for _, opener := range knownOpeners {
		if !strings.HasPrefix(lower, opener) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(lower[len(opener):])
		if len(lower) == len(opener) || !unicode.IsLetter(next) && next != '\'' {
			return true
		}
	}
	return false
}

// lowerFirstWord lower-cases the first letter unless the first word is the pronoun "I"
func lowerFirstWord(text string) string {
	first, size := utf8.DecodeRuneInString(text)
	if first == 'I' {
		next, _ := utf8.DecodeRuneInString(text[size:])
		if size == len(text) || next == ' ' || next == '\'' || next == ',' {
			return text
		}
	}
	return string(unicode.ToLower(first)) + text[size:]
}

func ensureTerminator(text string) string {
	text = strings.TrimRight(text, " ,;:")
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?") {
		return text
	}
	return text + "."
}
