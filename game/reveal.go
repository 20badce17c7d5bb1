package game

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// RevealData is the synthesized story for a completed round.
type RevealData struct {
	Story   string                  `json:"story"`
	Answers map[QuestionType]Answer `json:"answers"`
	Round   int                     `json:"round"`
}

// Answers that already open with one of these need no template preposition.
var leadingPrepositions = map[string]bool{
	"with": true, "at": true, "in": true, "on": true, "to": true,
	"under": true, "over": true, "behind": true, "beside": true,
	"near": true, "by": true, "inside": true, "outside": true,
	"between": true, "around": true, "through": true, "during": true,
	"atop": true, "aboard": true, "among": true,
}

// GenerateReveal composes the story sentence from the four collected
// answers. Returns nil if any slot is missing; submitAnswer only flips the
// room to reveal once all four are in, but the guard stays.
func GenerateReveal(room *Room) *RevealData {
	answers := room.State.Answers
	for _, q := range Questions {
		if _, ok := answers[q]; !ok {
			return nil
		}
	}

	who := answers[QuestionWho].Text
	withWhom := withPreposition(answers[QuestionWithWhom].Text, "with")
	where := withPreposition(answers[QuestionWhere].Text, "at")
	how := lowerFirst(answers[QuestionHow].Text)

	story := cleanSentence(fmt.Sprintf("%s was %s %s, and they did it %s", who, withWhom, where, how))

	copied := make(map[QuestionType]Answer, len(answers))
	for q, a := range answers {
		copied[q] = a
	}
	return &RevealData{Story: story, Answers: copied, Round: room.State.CurrentRound}
}

func withPreposition(text, prep string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	if leadingPrepositions[strings.ToLower(first)] {
		return text
	}
	return prep + " " + text
}

func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// Textual normalization, not NLP. The passes run in a fixed order and later
// passes assume earlier ones already ran (e.g. the terminal-period pass runs
// before the comma-before-period fix so ",." collapses to ".").
var (
	reWhitespaceRuns   = regexp.MustCompile(`\s+`)
	reSpaceBeforePunct = regexp.MustCompile(`\s+([,.!?;:])`)
	reNoSpaceAfterComm = regexp.MustCompile(`([,;:])([^\s])`)
	rePunctRepeats     []*regexp.Regexp
	reArticleAn        = regexp.MustCompile(`\b([Aa]) ([aeiouAEIOU])`)
	reWordRepeats      []*regexp.Regexp
	reCommaBeforeStop  = regexp.MustCompile(`,\s*\.$`)
)

func init() {
	for _, p := range []string{",", ".", "!", "?", ";", ":"} {
		rePunctRepeats = append(rePunctRepeats, regexp.MustCompile(regexp.QuoteMeta(p)+`{2,}`))
	}
	// RE2 has no backreferences, so repeated function words get one pattern
	// each.
	for _, w := range []string{"a", "an", "the", "with", "at", "in", "on", "to", "and", "of"} {
		reWordRepeats = append(reWordRepeats, regexp.MustCompile(`(?i)\b(`+w+`) `+w+`\b`))
	}
}

func cleanSentence(s string) string {
	// 1. collapse whitespace
	s = strings.TrimSpace(reWhitespaceRuns.ReplaceAllString(s, " "))
	// 2. fix spacing around punctuation
	s = reSpaceBeforePunct.ReplaceAllString(s, "$1")
	s = reNoSpaceAfterComm.ReplaceAllString(s, "$1 $2")
	// 3. deduplicate immediate punctuation repeats
	for i, re := range rePunctRepeats {
		s = re.ReplaceAllString(s, []string{",", ".", "!", "?", ";", ":"}[i])
	}
	// 4. capitalize the first letter
	r := []rune(s)
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
		s = string(r)
	}
	// 5. ensure terminal punctuation
	if s != "" && !strings.ContainsRune(".!?", rune(s[len(s)-1])) {
		s += "."
	}
	// 6. a -> an before vowel sounds
	s = reArticleAn.ReplaceAllString(s, "${1}n $2")
	// 7. collapse immediately-repeated function words
	for _, re := range reWordRepeats {
		s = re.ReplaceAllString(s, "$1")
	}
	// 8. drop a comma directly before the final period
	s = reCommaBeforeStop.ReplaceAllString(s, ".")
	return s
}
