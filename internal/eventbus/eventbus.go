package eventbus

import (
	"context"
	"encoding/json"

	"github.com/isqad/livelook-grid/internal/eventbus/rpc"
)

const (
	// RedisChannelPrefix is followed by the room id
	RedisChannelPrefix = "layout_events:"
	// NatsSubjectPrefix is followed by the room id
	NatsSubjectPrefix = "layout.events."
)

// ServerMessage is the envelope of every event published for a room
type ServerMessage struct {
	RoomID  string          `json:"room_id"`
	Message json.RawMessage `json:"rpc"`
}

// Message is a raw payload received from the bus
type Message struct {
	Subject string
	Payload []byte
}

type Publisher interface {
	Publish(ctx context.Context, roomID string, r rpc.Rpc) error
}

type Subscriber interface {
	SubscribeRooms(ctx context.Context) (Subscription, error)
}

// Subscription delivers the messages of every room. Messages is not closed
// by Close, readers must stop on their own.
type Subscription interface {
	Messages() <-chan Message
	Close() error
}

type Bus interface {
	Publisher
	Subscriber
	Close() error
}

func encodeServerMessage(roomID string, r rpc.Rpc) ([]byte, error) {
	msg, err := r.ToJSON()
	if err != nil {
		return nil, err
	}

	return json.Marshal(ServerMessage{
		RoomID:  roomID,
		Message: msg,
	})
}
