package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	"storyparty/game"
)

const roomKeyPrefix = "storyparty:room:"

// RedisRoomStore keeps room snapshots in a shared Redis, one JSON value per
// room code. Every Save resets the expiry window, so an abandoned room ages
// out on its own.
type RedisRoomStore struct {
	pool *redis.Pool
	ttl  time.Duration
}

func NewRedisRoomStore(url string, ttl time.Duration) *RedisRoomStore {
	pool := &redis.Pool{
		MaxIdle:     8,
		MaxActive:   64,
		IdleTimeout: 4 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(url)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
	return &RedisRoomStore{pool: pool, ttl: ttl}
}

func roomKey(code string) string {
	return roomKeyPrefix + code
}

func (s *RedisRoomStore) Save(ctx context.Context, room *game.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encoding room %s: %w", room.Code, err)
	}
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", game.ErrStoreUnavailable, err)
	}
	defer conn.Close()
	if _, err := conn.Do("SET", roomKey(room.Code), data, "EX", int(s.ttl.Seconds())); err != nil {
		return fmt.Errorf("%w: %v", game.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisRoomStore) Get(ctx context.Context, code string) (*game.Room, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrStoreUnavailable, err)
	}
	defer conn.Close()
	data, err := redis.Bytes(conn.Do("GET", roomKey(code)))
	if errors.Is(err, redis.ErrNil) {
		return nil, game.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrStoreUnavailable, err)
	}
	room := &game.Room{}
	if err := json.Unmarshal(data, room); err != nil {
		return nil, fmt.Errorf("decoding room %s: %w", code, err)
	}
	return room, nil
}

func (s *RedisRoomStore) Delete(ctx context.Context, code string) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", game.ErrStoreUnavailable, err)
	}
	defer conn.Close()
	if _, err := conn.Do("DEL", roomKey(code)); err != nil {
		return fmt.Errorf("%w: %v", game.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisRoomStore) Exists(ctx context.Context, code string) (bool, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", game.ErrStoreUnavailable, err)
	}
	defer conn.Close()
	n, err := redis.Int(conn.Do("EXISTS", roomKey(code)))
	if err != nil {
		return false, fmt.Errorf("%w: %v", game.ErrStoreUnavailable, err)
	}
	return n == 1, nil
}

func (s *RedisRoomStore) Close() error {
	return s.pool.Close()
}
