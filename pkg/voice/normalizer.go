package voice

import (
	"regexp"
	"strings"
)

const pauseMarker = "..."

type replacement struct {
	from string
	to   string
}

// rule is a compiled replacement. Keys that start or end with a word character
// only match at a word boundary on that side, so "is not" leaves "is nothing" alone.
type rule struct {
	re *regexp.Regexp
	to string
}

func compileTable(table []replacement) []rule {
	rules := make([]rule, 0, len(table))
	for _, r := range table {
		pattern := regexp.QuoteMeta(r.from)
		if isWordByte(r.from[0]) {
			pattern = `\b` + pattern
		}
		if isWordByte(r.from[len(r.from)-1]) {
			pattern += `\b`
		}
		rules = append(rules, rule{re: regexp.MustCompile(pattern), to: r.to})
	}
	return rules
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// Order matters inside each table: "will not" has to be seen before "I will".
var contractionTable = []replacement{
	{"I am ", "I'm "},
	{"cannot", "can't"},
	{"will not", "won't"},
	{"I will", "I'll"},
	{"do not", "don't"},
	{"Do not", "Don't"},
	{"does not", "doesn't"},
	{"did not", "didn't"},
	{"is not", "isn't"},
	{"are not", "aren't"},
	{"that is", "that's"},
	{"That is", "That's"},
	{" it is ", " it's "},
	{"It is ", "It's "},
	{"you are", "you're"},
	{"You are", "You're"},
	{"we are", "we're"},
	{"We are", "We're"},
	{"they are", "they're"},
	{"we will", "we'll"},
	{"We will", "We'll"},
	{"you will", "you'll"},
	{"You will", "You'll"},
	{"I have been", "I've been"},
	{"I would", "I'd"},
	{"let us", "let's"},
	{"Let us", "Let's"},
}

var connectiveTable = []replacement{
	{"however", "but"},
	{"However", "But"},
	{"therefore", "so"},
	{"Therefore", "So"},
	{"furthermore", "plus"},
	{"Furthermore", "Plus"},
	{"additionally", "also"},
	{"Additionally", "Also"},
	{"nevertheless", "still"},
	{"Nevertheless", "Still"},
	{"in order to", "to"},
	{"assist you", "help you"},
	{"regarding", "about"},
	{"Regarding", "About"},
	{"utilize", "use"},
}

var domainTermTable = []replacement{
	{" AI ", " A.I. "},
	{"CRM", "C.R.M."},
	{"API", "A.P.I."},
	{"FAQ", "F.A.Q."},
	{"24/7", "twenty-four seven"},
	{"e.g.", "for example"},
	{"i.e.", "that is"},
	{"etc.", "and so on"},
	{" & ", " and "},
}

var excitedTable = []replacement{
	{"good ", "great "},
	{"Good ", "Great "},
	{"good.", "great."},
	{"good!", "great!"},
	{"nice ", "wonderful "},
}

var empatheticTable = []replacement{
	{"Sure,", "Of course,"},
	{"Sure.", "Of course."},
	{"Okay,", "Alright,"},
}

var (
	contractionRules = compileTable(contractionTable)
	connectiveRules  = compileTable(connectiveTable)
	domainTermRules  = compileTable(domainTermTable)
	excitedRules     = compileTable(excitedTable)
	empatheticRules  = compileTable(empatheticTable)
)

var (
	// a single period followed by a space, not part of an existing ellipsis
	sentenceBreakRe = regexp.MustCompile(`([^.])\. `)
	sentenceRe      = regexp.MustCompile(`[^.!?]*[.!?]+`)
)

// Normalizer rewrites written text into phrasing that sounds natural when spoken
type Normalizer struct {
	pauseThreshold int
}

// NewNormalizer creates a normalizer that inserts breathing pauses into text
// longer than pauseThreshold characters
func NewNormalizer(pauseThreshold int) *Normalizer {
	if pauseThreshold <= 0 {
		pauseThreshold = 120
	}
	return &Normalizer{pauseThreshold: pauseThreshold}
}

// OptimizeForSpeech runs the fixed pass order: contractions, connectives,
// domain terms, context micro-edits, breathing pauses
func (n *Normalizer) OptimizeForSpeech(text string, tag ContextTag) string {
	text = applyRules(text, contractionRules)
	text = applyRules(text, connectiveRules)
	text = applyRules(text, domainTermRules)

	switch tag {
	case ContextEmpathetic:
		text = sentenceBreakRe.ReplaceAllString(text, "$1"+pauseMarker+" ")
		text = applyRules(text, empatheticRules)
	case ContextExcited:
		text = applyRules(text, excitedRules)
	}

	if len(text) > n.pauseThreshold {
		text = insertBreathingPauses(text)
	}

	return text
}

func applyRules(text string, rules []rule) string {
	for _, r := range rules {
		text = r.re.ReplaceAllLiteralString(text, r.to)
	}
	return text
}

// insertBreathingPauses adds a pause marker after every second sentence except the last.
// Sentences already ending in a pause marker are left alone so the pass can be re-run.
func insertBreathingPauses(text string) string {
	sentences := splitSentences(text)
	if len(sentences) < 3 {
		return text
	}

	var b strings.Builder
	for i, s := range sentences {
		b.WriteString(s)
		last := i == len(sentences)-1
		if (i+1)%2 == 0 && !last && !strings.HasSuffix(s, pauseMarker) {
			b.WriteString(" " + pauseMarker)
		}
	}
	return b.String()
}

// splitSentences keeps leading whitespace on each sentence so that joining them
// reproduces the input. Fragments made only of terminators or whitespace are
// folded into the sentence before them.
func splitSentences(text string) []string {
	locs := sentenceRe.FindAllStringIndex(text, -1)
	var sentences []string
	end := 0
	for _, loc := range locs {
		frag := text[loc[0]:loc[1]]
		end = loc[1]
		if len(sentences) > 0 && strings.Trim(frag, " .!?") == "" {
			sentences[len(sentences)-1] += frag
			continue
		}
		sentences = append(sentences, frag)
	}
	if end < len(text) {
		tail := text[end:]
		if len(sentences) > 0 && strings.TrimSpace(tail) == "" {
			sentences[len(sentences)-1] += tail
		} else {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}
