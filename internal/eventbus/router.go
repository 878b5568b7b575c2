package eventbus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/eventbus/rpc"
	"github.com/isqad/livelook-grid/internal/telemetry"
)

var (
	errNoRoomID        = errors.New("can't get room id")
	errUndefinedMethod = errors.New("undefined method")
)

// Handler applies the room events to the layout state
type Handler interface {
	OnParticipantJoined(roomID string, params rpc.ParticipantJoinedParams) error
	OnParticipantLeft(roomID, participantID string) error
	OnTrackUpdated(roomID string, params rpc.TrackUpdatedParams) error
	OnScreenshare(roomID, participantID string, started bool) error
	OnPin(roomID string, pin core.PinnedParticipant) error
	OnUnpin(roomID string) error
	OnLayoutMode(roomID string, mode core.LayoutMode) error
	OnLayoutType(roomID string, layoutType core.LayoutType) error
	OnHandRaised(roomID string, params rpc.HandRaisedParams) error
	OnDominantSpeaker(roomID, participantID string) error
	OnPip(roomID string, enabled bool) error
	OnSubtitle(roomID string, params rpc.SubtitleParams) error
}

// Router reads the room events from the bus and calls the handler in the
// order they were published. It is the only writer of the layout state.
type Router struct {
	subscription Subscription
	handler      Handler

	stop chan struct{}
	done chan struct{}
}

func NewRouter(ctx context.Context, sub Subscriber, handler Handler) (*Router, error) {
	subscription, err := sub.SubscribeRooms(ctx)
	if err != nil {
		return nil, err
	}

	return &Router{
		subscription: subscription,
		handler:      handler,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}, nil
}

// Start returns a channel closed once the router reads messages
func (router *Router) Start() <-chan struct{} {
	log.Debug().Str("service", "router").Msg("start")

	ready := make(chan struct{})

	go func() {
		defer close(router.done)

		messages := router.subscription.Messages()
		close(ready)

		for {
			select {
			case <-router.stop:
				return
			case msg := <-messages:
				if err := router.Route(msg.Payload); err != nil {
					log.Error().Err(err).Str("service", "router").Str("subject", msg.Subject).Msg("")
				}
			}
		}
	}()

	return ready
}

// Stop returns a channel closed once the router stopped
func (router *Router) Stop() <-chan struct{} {
	select {
	case <-router.stop:
	default:
		close(router.stop)
		if err := router.subscription.Close(); err != nil {
			log.Error().Err(err).Str("service", "router").Msg("can not close subscription")
		}
	}

	return router.done
}

// Route decodes one envelope and applies it
func (router *Router) Route(payload []byte) error {
	roomID, r, err := parseRpc(payload)
	if err != nil {
		return err
	}

	err = router.dispatch(roomID, r)
	telemetry.BusMessage(string(r.GetMethod()), err)
	if err != nil {
		return fmt.Errorf("%s in room %s: %w", r.GetMethod(), roomID, err)
	}

	return nil
}

func (router *Router) dispatch(roomID string, r rpc.Rpc) error {
	switch msg := r.(type) {
	case *rpc.ParticipantJoinedRpc:
		return router.handler.OnParticipantJoined(roomID, msg.Params)
	case *rpc.ParticipantLeftRpc:
		return router.handler.OnParticipantLeft(roomID, msg.Params.ParticipantID)
	case *rpc.TrackUpdatedRpc:
		return router.handler.OnTrackUpdated(roomID, msg.Params)
	case *rpc.ScreenshareRpc:
		return router.handler.OnScreenshare(roomID, msg.Params.ParticipantID, msg.Started())
	case *rpc.PinRpc:
		return router.handler.OnPin(roomID, msg.Params)
	case *rpc.UnpinRpc:
		return router.handler.OnUnpin(roomID)
	case *rpc.LayoutModeRpc:
		return router.handler.OnLayoutMode(roomID, msg.Params.Mode)
	case *rpc.LayoutTypeRpc:
		return router.handler.OnLayoutType(roomID, msg.Params.Type)
	case *rpc.HandRaisedRpc:
		return router.handler.OnHandRaised(roomID, msg.Params)
	case *rpc.DominantSpeakerRpc:
		return router.handler.OnDominantSpeaker(roomID, msg.Params.ParticipantID)
	case *rpc.PipRpc:
		return router.handler.OnPip(roomID, msg.Params.Enabled)
	case *rpc.SubtitleRpc:
		return router.handler.OnSubtitle(roomID, msg.Params)
	default:
		return errUndefinedMethod
	}
}

func parseRpc(payload []byte) (string, rpc.Rpc, error) {
	serverMessage := ServerMessage{}
	if err := json.Unmarshal(payload, &serverMessage); err != nil {
		return "", nil, err
	}

	if serverMessage.RoomID == "" {
		return "", nil, errNoRoomID
	}

	r, err := rpc.RpcFromReader(bytes.NewReader(serverMessage.Message))
	if err != nil {
		return "", nil, err
	}
	return serverMessage.RoomID, r, nil
}
