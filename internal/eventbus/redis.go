package eventbus

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/isqad/livelook-grid/internal/eventbus/rpc"
)

// RedisBus carries room events over redis pub/sub
type RedisBus struct {
	rdb *redis.Client
}

// RedisPubSub is factory for building the bus based on redis pubsub
func RedisPubSub(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, roomID string, r rpc.Rpc) error {
	msg, err := encodeServerMessage(roomID, r)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, RedisChannelPrefix+roomID, msg).Err()
}

func (b *RedisBus) SubscribeRooms(ctx context.Context) (Subscription, error) {
	pubsub := b.rdb.PSubscribe(ctx, RedisChannelPrefix+"*")
	// Wait until subscription is created
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	s := &redisSubscription{
		pubsub:   pubsub,
		messages: make(chan Message),
		done:     make(chan struct{}),
	}
	go s.forward()

	return s, nil
}

// Close leaves the client open, it is shared with the layout state store
func (b *RedisBus) Close() error {
	return nil
}

type redisSubscription struct {
	pubsub   *redis.PubSub
	messages chan Message
	done     chan struct{}
	once     sync.Once
}

func (s *redisSubscription) forward() {
	for msg := range s.pubsub.Channel() {
		select {
		case s.messages <- Message{Subject: msg.Channel, Payload: []byte(msg.Payload)}:
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Messages() <-chan Message {
	return s.messages
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
