package voice

import "strings"

// ContextTag is the emotional register chosen for a conversation turn
type ContextTag string

const (
	ContextEmpathetic   ContextTag = "empathetic"
	ContextProfessional ContextTag = "professional"
	ContextExcited      ContextTag = "excited"
	ContextCalm         ContextTag = "calm"
	ContextNeutral      ContextTag = "neutral"
)

// AllContextTags lists every tag in a stable order
var AllContextTags = []ContextTag{
	ContextEmpathetic,
	ContextProfessional,
	ContextExcited,
	ContextCalm,
	ContextNeutral,
}

// ParseContextTag maps a string onto a known tag, defaulting to neutral
func ParseContextTag(s string) ContextTag {
	tag := ContextTag(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllContextTags {
		if tag == known {
			return known
		}
	}
	return ContextNeutral
}

func (t ContextTag) String() string {
	return string(t)
}

var (
	frustrationKeywords = []string{
		"problem", "issue", "confused", "confusing", "help", "not working",
		"isn't working", "doesn't work", "broken", "frustrated", "stuck",
		"error", "wrong", "trouble", "difficult",
	}
	enthusiasmKeywords = []string{
		"great", "excellent", "amazing", "wonderful", "fantastic", "perfect",
		"awesome", "congratulations", "exciting",
	}
	businessKeywords = []string{
		"schedule", "appointment", "meeting", "pricing", "price", "cost",
		"business", "service", "consultation", "book", "calendar", "quote",
	}
	informationalKeywords = []string{
		"how", "what", "explain", "why", "tell me", "describe",
	}
)

type classifierRule struct {
	matches func(utterance, reply string) bool
	tag     ContextTag
}

// First match wins. The order (frustration, enthusiasm, business, informational)
// means a frustrated caller stays empathetic even when the reply sounds upbeat.
// TODO: revisit whether business replies should outrank enthusiasm once call data is reviewed.
var classifierRules = []classifierRule{
	{matches: func(u, _ string) bool { return containsAny(u, frustrationKeywords) }, tag: ContextEmpathetic},
	{matches: func(_, r string) bool { return containsAny(r, enthusiasmKeywords) }, tag: ContextExcited},
	{matches: func(_, r string) bool { return containsAny(r, businessKeywords) }, tag: ContextProfessional},
	{matches: func(u, _ string) bool { return containsAny(u, informationalKeywords) }, tag: ContextCalm},
}

// Classify picks the context tag for a turn from the caller's utterance and the
// candidate (or prior) reply text
func Classify(callerUtterance, replyText string) ContextTag {
	u := strings.ToLower(callerUtterance)
	r := strings.ToLower(replyText)

	for _, rule := range classifierRules {
		if rule.matches(u, r) {
			return rule.tag
		}
	}
	return ContextNeutral
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
