package voice

import (
	"strings"
	"testing"
)

func TestOptimizeForSpeech_ContractionsAndConnectives(t *testing.T) {
	n := NewNormalizer(120)

	got := n.OptimizeForSpeech("I cannot do that, however I will try.", ContextNeutral)
	want := "I can't do that, but I'll try."
	if got != want {
		t.Errorf("OptimizeForSpeech() = %q, want %q", got, want)
	}
}

func TestOptimizeForSpeech_Passes(t *testing.T) {
	n := NewNormalizer(120)

	tests := []struct {
		name string
		in   string
		tag  ContextTag
		want string
	}{
		{
			name: "will not before I will",
			in:   "I will not forget.",
			tag:  ContextNeutral,
			want: "I won't forget.",
		},
		{
			name: "domain terms",
			in:   "Our AI assistant updates the CRM 24/7.",
			tag:  ContextNeutral,
			want: "Our A.I. assistant updates the C.R.M. twenty-four seven.",
		},
		{
			name: "connective phrase",
			in:   "We call in order to confirm.",
			tag:  ContextProfessional,
			want: "We call to confirm.",
		},
		{
			name: "empathetic pauses after sentence breaks",
			in:   "That's hard. Let's fix it.",
			tag:  ContextEmpathetic,
			want: "That's hard... Let's fix it.",
		},
		{
			name: "empathetic softens affirmation",
			in:   "Sure, one moment.",
			tag:  ContextEmpathetic,
			want: "Of course, one moment.",
		},
		{
			name: "excited strengthens affirmative words",
			in:   "That sounds good to me.",
			tag:  ContextExcited,
			want: "That sounds great to me.",
		},
		{
			name: "contractions only match whole words",
			in:   "This is nothing. I do nothing on that island.",
			tag:  ContextNeutral,
			want: "This is nothing. I do nothing on that island.",
		},
		{
			name: "contraction before punctuation",
			in:   "It is not, and we are.",
			tag:  ContextNeutral,
			want: "It isn't, and we're.",
		},
		{
			name: "short text left unsegmented",
			in:   "One. Two. Three.",
			tag:  ContextNeutral,
			want: "One. Two. Three.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.OptimizeForSpeech(tt.in, tt.tag); got != tt.want {
				t.Errorf("OptimizeForSpeech(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOptimizeForSpeech_BreathingPauses(t *testing.T) {
	n := NewNormalizer(120)

	in := "Thanks for calling us today. Our office opens at nine in the morning. " +
		"We close at six in the evening. Weekends are by appointment only."
	got := n.OptimizeForSpeech(in, ContextNeutral)
	want := "Thanks for calling us today. Our office opens at nine in the morning. ... " +
		"We close at six in the evening. Weekends are by appointment only."

	if got != want {
		t.Errorf("OptimizeForSpeech() =\n%q\nwant\n%q", got, want)
	}
	if strings.HasSuffix(got, pauseMarker) {
		t.Error("pause marker inserted after the final sentence")
	}
}

func TestOptimizeForSpeech_Idempotent(t *testing.T) {
	n := NewNormalizer(120)

	inputs := []string{
		"Hello there, thanks for calling.",
		"Thanks for calling us today. Our office opens at nine in the morning. " +
			"We close at six in the evening. Weekends are by appointment only. Bye now.",
		"No terminator here and quite a long sentence that keeps going past the pause threshold for sure",
		"",
	}

	for _, tag := range AllContextTags {
		for _, in := range inputs {
			once := n.OptimizeForSpeech(in, tag)
			twice := n.OptimizeForSpeech(once, tag)
			if once != twice {
				t.Errorf("OptimizeForSpeech not idempotent for %s:\nonce  %q\ntwice %q", tag, once, twice)
			}
		}
	}
}

func TestSplitSentences_RoundTrips(t *testing.T) {
	in := "One. Two! ... Three? Four"
	parts := splitSentences(in)
	if strings.Join(parts, "") != in {
		t.Errorf("splitSentences() joined = %q, want %q", strings.Join(parts, ""), in)
	}
	if len(parts) != 4 {
		t.Errorf("splitSentences() = %d parts %q, want 4", len(parts), parts)
	}
}
