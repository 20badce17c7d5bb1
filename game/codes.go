package game

import (
	"context"
	"fmt"
	"strings"
)

// Visually ambiguous characters (I, O, 0, 1) are excluded so codes survive
// being read out loud or typed from a projector.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	CodeLength      = 6
	maxCodeAttempts = 10
)

// CodeGenerator mints room codes that are unique among live rooms, checked
// against the store at creation time.
type CodeGenerator struct {
	store RoomStore
	rng   Rand
}

func NewCodeGenerator(store RoomStore, rng Rand) *CodeGenerator {
	return &CodeGenerator{store: store, rng: rng}
}

func (g *CodeGenerator) random() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(codeAlphabet[g.rng.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// Generate retries until a code is free in the store, bounded by a small
// cap. The code space has 32^6 entries, so exhausting the cap means the
// store is lying or the deployment is misconfigured.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := g.random()
		taken, err := g.store.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking code %q: %w", code, err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}
