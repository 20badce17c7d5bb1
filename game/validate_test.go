package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerValidator_Validate(t *testing.T) {
	t.Parallel()

	blockList := func(text string) bool {
		return strings.Contains(strings.ToLower(text), "badword")
	}
	v := NewAnswerValidator(100, blockList)

	testCases := []struct {
		desc       string
		input      string
		moderation bool
		wantErr    error
		wantClean  string
	}{
		{
			desc:    "empty answer rejected",
			input:   "",
			wantErr: ErrEmptyAnswer,
		},
		{
			desc:    "whitespace-only answer rejected",
			input:   "   \t\n  ",
			wantErr: ErrEmptyAnswer,
		},
		{
			desc:      "valid answer passes through",
			input:     "a dragon",
			wantClean: "a dragon",
		},
		{
			desc:      "surrounding whitespace trimmed",
			input:     "  the moon  ",
			wantClean: "the moon",
		},
		{
			desc:      "inner whitespace collapsed",
			input:     "my   best \t friend",
			wantClean: "my best friend",
		},
		{
			desc:    "overlong answer rejected",
			input:   strings.Repeat("x", 101),
			wantErr: ErrAnswerTooLong,
		},
		{
			desc:      "answer at the limit accepted",
			input:     strings.Repeat("x", 100),
			wantClean: strings.Repeat("x", 100),
		},
		{
			desc:       "profanity rejected when moderation on",
			input:      "a badword thing",
			moderation: true,
			wantErr:    ErrProfaneAnswer,
		},
		{
			desc:      "profanity ignored when moderation off",
			input:     "a badword thing",
			wantClean: "a badword thing",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			res := v.Validate(tc.input, tc.moderation)
			if tc.wantErr != nil {
				assert.False(t, res.Valid)
				assert.ErrorIs(t, res.Err, tc.wantErr)
				return
			}
			assert.True(t, res.Valid)
			assert.NoError(t, res.Err)
			assert.Equal(t, tc.wantClean, res.Cleaned)
		})
	}
}

func TestAnswerValidator_LengthCountsRunes(t *testing.T) {
	t.Parallel()
	v := NewAnswerValidator(5, nil)
	res := v.Validate("héllo", false)
	assert.True(t, res.Valid)
}

func TestAnswerValidator_NilProfanityFuncWithModeration(t *testing.T) {
	t.Parallel()
	v := NewAnswerValidator(100, nil)
	res := v.Validate("anything goes", true)
	assert.True(t, res.Valid)
}

func TestAnswerValidator_DefaultMaxLength(t *testing.T) {
	t.Parallel()
	v := NewAnswerValidator(0, nil)
	assert.Equal(t, DefaultMaxAnswerLength, v.MaxLength)
}
