package game

import "context"

// RoomStore persists room snapshots keyed by code. Implementations refresh
// a sliding expiry window on every Save; the store is a cache, not durable
// storage. The store gives no transactional guarantee: the engine holds a
// per-room lock across every load-mutate-save.
type RoomStore interface {
	Save(ctx context.Context, room *Room) error
	// Get returns ErrRoomNotFound for absent or expired codes.
	Get(ctx context.Context, code string) (*Room, error)
	Delete(ctx context.Context, code string) error
	Exists(ctx context.Context, code string) (bool, error)
}
