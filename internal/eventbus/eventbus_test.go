package eventbus

import (
	"context"

	"github.com/isqad/livelook-grid/internal/eventbus/rpc"
)

type MockBus struct {
	ch         chan Message
	Subscribed bool
	Closed     bool
}

func NewMockBus() *MockBus {
	return &MockBus{ch: make(chan Message)}
}

func (b *MockBus) Messages() <-chan Message {
	return b.ch
}

func (b *MockBus) SubscribeRooms(ctx context.Context) (Subscription, error) {
	b.Subscribed = true
	return b, nil
}

// Publish blocks until the router took the message
func (b *MockBus) Publish(ctx context.Context, roomID string, r rpc.Rpc) error {
	payload, err := encodeServerMessage(roomID, r)
	if err != nil {
		return err
	}
	b.ch <- Message{Subject: RedisChannelPrefix + roomID, Payload: payload}
	return nil
}

func (b *MockBus) Close() error {
	b.Closed = true
	return nil
}
