package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyparty/game"
)

func sampleRoom(code string) *game.Room {
	return &game.Room{
		Code:   code,
		HostID: "h1",
		Players: []*game.Player{
			{ID: "h1", Name: "Amy", IsHost: true},
			{ID: "c1", Name: "Bo"},
		},
		Settings: game.RoomSettings{MaxPlayers: 8, Language: "en"},
		State: game.GameState{
			Phase:         game.PhaseLobby,
			Answers:       map[game.QuestionType]game.Answer{},
			QuestionOrder: game.Questions,
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestMemoryRoomStore_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryRoomStore(time.Hour)
	room := sampleRoom("ABCDEF")

	require.NoError(t, store.Save(ctx, room))

	got, err := store.Get(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, room.Code, got.Code)
	assert.Equal(t, room.HostID, got.HostID)
	require.Len(t, got.Players, 2)
	assert.Equal(t, "Amy", got.Players[0].Name)
	assert.True(t, got.Players[0].IsHost)

	// Get hands back an independent copy; mutating it must not touch the
	// stored snapshot.
	got.Players[0].Name = "Mallory"
	again, err := store.Get(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, "Amy", again.Players[0].Name)
}

func TestMemoryRoomStore_GetUnknown(t *testing.T) {
	t.Parallel()
	store := NewMemoryRoomStore(time.Hour)
	_, err := store.Get(context.Background(), "NOPE42")
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestMemoryRoomStore_DeleteAndExists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryRoomStore(time.Hour)
	require.NoError(t, store.Save(ctx, sampleRoom("ABCDEF")))

	ok, err := store.Exists(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "ABCDEF"))
	ok, err = store.Exists(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = store.Get(ctx, "ABCDEF")
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestMemoryRoomStore_ExpiryAndSlidingWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryRoomStore(time.Hour)
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, sampleRoom("ABCDEF")))

	// Still alive just inside the window.
	now = now.Add(59 * time.Minute)
	_, err := store.Get(ctx, "ABCDEF")
	require.NoError(t, err)

	// A write refreshes the window.
	require.NoError(t, store.Save(ctx, sampleRoom("ABCDEF")))
	now = now.Add(59 * time.Minute)
	_, err = store.Get(ctx, "ABCDEF")
	require.NoError(t, err)

	// Without another write the room ages out.
	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "ABCDEF")
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
	ok, err := store.Exists(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.False(t, ok)
}
