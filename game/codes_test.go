package game

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCodeGenerator_Generate(t *testing.T) {
	t.Parallel()
	store := &MockRoomStore{}
	store.On("Exists", mock.Anything, mock.Anything).Return(false, nil)

	gen := NewCodeGenerator(store, rand.New(rand.NewSource(7)))
	code, err := gen.Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, code, CodeLength)
	for _, c := range code {
		assert.Contains(t, codeAlphabet, string(c), "code %q uses a character outside the alphabet", code)
	}
	assert.NotContains(t, code, "I")
	assert.NotContains(t, code, "O")
	assert.NotContains(t, code, "0")
	assert.NotContains(t, code, "1")
}

func TestCodeGenerator_RetriesOnCollision(t *testing.T) {
	t.Parallel()
	store := &MockRoomStore{}
	store.On("Exists", mock.Anything, mock.Anything).Return(true, nil).Twice()
	store.On("Exists", mock.Anything, mock.Anything).Return(false, nil).Once()

	gen := NewCodeGenerator(store, rand.New(rand.NewSource(7)))
	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, CodeLength)
	store.AssertNumberOfCalls(t, "Exists", 3)
}

func TestCodeGenerator_ExhaustsRetryCap(t *testing.T) {
	t.Parallel()
	store := &MockRoomStore{}
	store.On("Exists", mock.Anything, mock.Anything).Return(true, nil)

	gen := NewCodeGenerator(store, rand.New(rand.NewSource(7)))
	_, err := gen.Generate(context.Background())
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
	store.AssertNumberOfCalls(t, "Exists", maxCodeAttempts)
}

func TestCodeGenerator_StoreErrorPropagates(t *testing.T) {
	t.Parallel()
	store := &MockRoomStore{}
	store.On("Exists", mock.Anything, mock.Anything).Return(false, ErrStoreUnavailable)

	gen := NewCodeGenerator(store, rand.New(rand.NewSource(7)))
	_, err := gen.Generate(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestCodeGenerator_DistinctCodes(t *testing.T) {
	t.Parallel()
	store := &MockRoomStore{}
	store.On("Exists", mock.Anything, mock.Anything).Return(false, nil)

	gen := NewCodeGenerator(store, rand.New(rand.NewSource(42)))
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := gen.Generate(context.Background())
		require.NoError(t, err)
		assert.False(t, seen[code], "generated duplicate code %q", code)
		seen[code] = true
		assert.Equal(t, strings.ToUpper(code), code)
	}
}
