package game

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const DefaultMaxAnswerLength = 200

var innerWhitespace = regexp.MustCompile(`\s+`)

// ProfanityFunc reports whether text contains disallowed content. The
// concrete filter is injected at wiring time.
type ProfanityFunc func(text string) bool

type ValidationResult struct {
	Valid   bool
	Cleaned string
	Err     error
}

// AnswerValidator checks and cleans a submitted answer. It is a pure
// function of its inputs: no I/O, no shared state.
type AnswerValidator struct {
	MaxLength int
	Profane   ProfanityFunc
}

func NewAnswerValidator(maxLength int, profane ProfanityFunc) AnswerValidator {
	if maxLength <= 0 {
		maxLength = DefaultMaxAnswerLength
	}
	return AnswerValidator{MaxLength: maxLength, Profane: profane}
}

// Validate applies the rules in order: empty, length, then moderation when
// enabled. Cleaning trims and collapses whitespace before any rule runs.
func (v AnswerValidator) Validate(text string, moderation bool) ValidationResult {
	cleaned := innerWhitespace.ReplaceAllString(strings.TrimSpace(text), " ")
	if cleaned == "" {
		return ValidationResult{Err: ErrEmptyAnswer}
	}
	if utf8.RuneCountInString(cleaned) > v.MaxLength {
		return ValidationResult{Err: ErrAnswerTooLong}
	}
	if moderation && v.Profane != nil && v.Profane(cleaned) {
		return ValidationResult{Err: ErrProfaneAnswer}
	}
	return ValidationResult{Valid: true, Cleaned: cleaned}
}
