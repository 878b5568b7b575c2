package eventbus

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/isqad/livelook-grid/internal/eventbus/rpc"
	"github.com/nats-io/nats.go"
)

// natsRoomsSubject matches every room, dotted room ids included
const natsRoomsSubject = NatsSubjectPrefix + ">"

var errNatsRoomID = errors.New("room id can not be mapped to a nats subject")

// natsSubject is the subject of a room. Room ids with whitespace, wildcards
// or empty dot separated tokens are rejected.
func natsSubject(roomID string) (string, error) {
	if roomID == "" || strings.ContainsAny(roomID, "*>") || strings.IndexFunc(roomID, unicode.IsSpace) >= 0 {
		return "", errNatsRoomID
	}
	for _, token := range strings.Split(roomID, ".") {
		if token == "" {
			return "", errNatsRoomID
		}
	}
	return NatsSubjectPrefix + roomID, nil
}

// NatsBus carries room events over NATS subjects
type NatsBus struct {
	nc *nats.Conn
}

func NewNatsBus(natsAddr string) (*NatsBus, error) {
	nc, err := nats.Connect(natsAddr, nats.Name("livelook-layout"))
	if err != nil {
		return nil, err
	}

	return &NatsBus{nc: nc}, nil
}

func (b *NatsBus) Publish(_ context.Context, roomID string, r rpc.Rpc) error {
	subject, err := natsSubject(roomID)
	if err != nil {
		return err
	}
	msg, err := encodeServerMessage(roomID, r)
	if err != nil {
		return err
	}
	return b.nc.Publish(subject, msg)
}

func (b *NatsBus) SubscribeRooms(_ context.Context) (Subscription, error) {
	s := &natsSubscription{
		messages: make(chan Message),
		done:     make(chan struct{}),
	}

	sub, err := b.nc.Subscribe(natsRoomsSubject, func(msg *nats.Msg) {
		select {
		case s.messages <- Message{Subject: msg.Subject, Payload: msg.Data}:
		case <-s.done:
		}
	})
	if err != nil {
		return nil, err
	}
	// Wait until the server registered the subscription
	if err := b.nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, err
	}
	s.sub = sub

	return s, nil
}

func (b *NatsBus) Close() error {
	return b.nc.Drain()
}

type natsSubscription struct {
	sub      *nats.Subscription
	messages chan Message
	done     chan struct{}
	once     sync.Once
}

func (s *natsSubscription) Messages() <-chan Message {
	return s.messages
}

func (s *natsSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.sub.Unsubscribe()
	})
	return err
}
