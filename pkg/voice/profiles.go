package voice

// PromptTemplate is the per-context system prompt fragment and sampling settings
type PromptTemplate struct {
	Fragment    string
	MaxTokens   int
	Temperature float32
}

// ElevenLabsVoice selects a voice and its style parameters for providerB
type ElevenLabsVoice struct {
	VoiceID         string
	Stability       float64
	SimilarityBoost float64
	Style           float64
	SpeakerBoost    bool
}

// GoogleVoice selects a voice and speaking rate for providerA. An empty
// LanguageCode leaves the service's configured language in place.
type GoogleVoice struct {
	Name         string
	SpeakingRate float64
	LanguageCode string
}

// VoiceProfile holds the per-provider voice tables. GoogleLocales maps a
// language code to the Google voice used for replies in that language.
type VoiceProfile struct {
	ElevenLabs    map[ContextTag]ElevenLabsVoice
	Google        map[ContextTag]GoogleVoice
	GoogleLocales map[string]GoogleVoice
}

var (
	defaultElevenLabsVoice = ElevenLabsVoice{
		VoiceID:         "21m00Tcm4TlvDq8ikWAM",
		Stability:       0.5,
		SimilarityBoost: 0.75,
		SpeakerBoost:    true,
	}
	defaultGoogleVoice = GoogleVoice{Name: "en-US-Neural2-F", SpeakingRate: 1.0}
)

// ElevenLabsFor returns the voice for tag, or the default voice when unmapped
func (p VoiceProfile) ElevenLabsFor(tag ContextTag) ElevenLabsVoice {
	if v, ok := p.ElevenLabs[tag]; ok {
		return v
	}
	return defaultElevenLabsVoice
}

// GoogleFor returns the voice for tag, or the default voice at rate 1.0 when unmapped
func (p VoiceProfile) GoogleFor(tag ContextTag) GoogleVoice {
	if v, ok := p.Google[tag]; ok {
		if v.SpeakingRate == 0 {
			v.SpeakingRate = defaultGoogleVoice.SpeakingRate
		}
		return v
	}
	return defaultGoogleVoice
}

// GoogleForLanguage returns the voice for tag in the reply language. The tag's
// speaking rate is kept; languages without a locale voice use the tag table.
func (p VoiceProfile) GoogleForLanguage(tag ContextTag, language string) GoogleVoice {
	v := p.GoogleFor(tag)
	code := languageCode(language)
	if code == "" {
		return v
	}
	local, ok := p.GoogleLocales[code]
	if !ok {
		return v
	}
	local.SpeakingRate = v.SpeakingRate
	local.LanguageCode = code
	return local
}

// DefaultVoiceProfile is the built-in voice table
func DefaultVoiceProfile() VoiceProfile {
	return VoiceProfile{
		ElevenLabs: map[ContextTag]ElevenLabsVoice{
			ContextEmpathetic:   {VoiceID: "21m00Tcm4TlvDq8ikWAM", Stability: 0.8, SimilarityBoost: 0.75, Style: 0.1, SpeakerBoost: true},
			ContextProfessional: {VoiceID: "EXAVITQu4vr4xnSDxMaL", Stability: 0.7, SimilarityBoost: 0.8, Style: 0.0, SpeakerBoost: true},
			ContextExcited:      {VoiceID: "ErXwobaYiN019PkySvjV", Stability: 0.35, SimilarityBoost: 0.75, Style: 0.6, SpeakerBoost: true},
			ContextCalm:         {VoiceID: "MF3mGyEYCl7XYWbV9V6O", Stability: 0.85, SimilarityBoost: 0.7, Style: 0.05, SpeakerBoost: false},
			ContextNeutral:      {VoiceID: "AZnzlk1XvdvUeBnXmlld", Stability: 0.6, SimilarityBoost: 0.75, Style: 0.2, SpeakerBoost: true},
		},
		Google: map[ContextTag]GoogleVoice{
			ContextEmpathetic:   {Name: "en-US-Neural2-C", SpeakingRate: 0.9},
			ContextProfessional: {Name: "en-US-Neural2-D", SpeakingRate: 1.0},
			ContextExcited:      {Name: "en-US-Neural2-H", SpeakingRate: 1.1},
			ContextCalm:         {Name: "en-US-Neural2-F", SpeakingRate: 0.95},
		},
		GoogleLocales: map[string]GoogleVoice{
			"es-US": {Name: "es-US-Neural2-A"},
		},
	}
}

// DefaultPromptTemplates is the built-in prompt table
func DefaultPromptTemplates() map[ContextTag]PromptTemplate {
	return map[ContextTag]PromptTemplate{
		ContextEmpathetic: {
			Fragment:    "The caller is having a hard time. Acknowledge how they feel before anything else, keep a warm and patient tone, and offer one concrete next step.",
			MaxTokens:   150,
			Temperature: 0.6,
		},
		ContextProfessional: {
			Fragment:    "The caller is discussing scheduling, pricing or services. Be precise and courteous, and confirm any details they give you.",
			MaxTokens:   120,
			Temperature: 0.4,
		},
		ContextExcited: {
			Fragment:    "The conversation is upbeat. Match the caller's energy and keep it positive and lively.",
			MaxTokens:   130,
			Temperature: 0.8,
		},
		ContextCalm: {
			Fragment:    "The caller wants information. Explain clearly and simply, one idea per sentence, at an unhurried pace.",
			MaxTokens:   160,
			Temperature: 0.5,
		},
		ContextNeutral: {
			Fragment:    "Keep the conversation friendly and natural.",
			MaxTokens:   120,
			Temperature: 0.7,
		},
	}
}

// DefaultFallbacks are spoken verbatim when the language model cannot answer
func DefaultFallbacks() map[ContextTag]string {
	return map[ContextTag]string{
		ContextEmpathetic:   "I'm so sorry you're dealing with this. Let me get someone from our team to help you right away.",
		ContextProfessional: "Thank you for calling. I'd be happy to get that scheduled for you. Could you share a good time to reach you?",
		ContextExcited:      "That's wonderful to hear! Let me make sure the right person follows up with you.",
		ContextCalm:         "That's a good question. Let me have one of our specialists walk you through it.",
		ContextNeutral:      "Thanks for calling. Could you tell me a little more about what you need?",
	}
}
