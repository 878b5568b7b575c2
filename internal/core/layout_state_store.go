package core

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const layoutStateKeyPrefix = "layout_state:"

var ErrLayoutStateNotFound = errors.New("layout state not found")

// LayoutStateStorer keeps the last known layout state of rooms so that
// restarted nodes and late joiners start from the same picture
type LayoutStateStorer interface {
	Save(ctx context.Context, roomID string, state LayoutState) error
	Load(ctx context.Context, roomID string) (*LayoutState, error)
	Delete(ctx context.Context, roomID string) error
}

type LayoutStateRedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLayoutStateRedisStore(rdb *redis.Client, ttl time.Duration) *LayoutStateRedisStore {
	return &LayoutStateRedisStore{
		rdb: rdb,
		ttl: ttl,
	}
}

func layoutStateKey(roomID string) string {
	return layoutStateKeyPrefix + roomID
}

func (s *LayoutStateRedisStore) Save(ctx context.Context, roomID string, state LayoutState) error {
	return s.rdb.Set(ctx, layoutStateKey(roomID), state, s.ttl).Err()
}

func (s *LayoutStateRedisStore) Load(ctx context.Context, roomID string) (*LayoutState, error) {
	state := NewLayoutState()

	err := s.rdb.Get(ctx, layoutStateKey(roomID)).Scan(state)
	if err == redis.Nil {
		return nil, ErrLayoutStateNotFound
	}
	if err != nil {
		return nil, err
	}

	return state, nil
}

func (s *LayoutStateRedisStore) Delete(ctx context.Context, roomID string) error {
	return s.rdb.Del(ctx, layoutStateKey(roomID)).Err()
}
