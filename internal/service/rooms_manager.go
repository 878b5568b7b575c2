package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/engine"
	"github.com/isqad/livelook-grid/internal/eventbus/rpc"
	"github.com/isqad/livelook-grid/internal/layout"
	"github.com/isqad/livelook-grid/internal/rtc"
	"github.com/isqad/livelook-grid/internal/telemetry"
)

const stateStoreTimeout = 2 * time.Second

var ErrRoomNotFound = errors.New("room not found")

// room is guarded by the manager lock. A room is closed only when nobody
// holds it and it has neither members nor clients.
type room struct {
	id         string
	conference *rtc.Room
	engine     *engine.Engine

	holders int
	clients map[string]struct{}
}

func (r *room) idle() bool {
	return r.holders == 0 && len(r.clients) == 0 && r.conference.Len() == 0
}

// RoomSnapshot is the current picture of a room
type RoomSnapshot struct {
	RoomID       string             `json:"room_id"`
	State        core.LayoutState   `json:"state"`
	Participants []core.Participant `json:"participants"`
	Clients      int                `json:"clients"`
}

// RoomsManager owns the rooms of the node: their roster, layout state and engine.
// It applies the bus events and serves the attached clients.
type RoomsManager struct {
	cfg        engine.Config
	dispatcher *engine.ResizeDispatcher
	states     core.LayoutStateStorer

	lock  sync.RWMutex
	rooms map[string]*room
}

// NewRoomsManager creates the manager, states may be nil when the layout
// state is not persisted
func NewRoomsManager(cfg engine.Config, dispatcher *engine.ResizeDispatcher, states core.LayoutStateStorer) *RoomsManager {
	return &RoomsManager{
		cfg:        cfg,
		dispatcher: dispatcher,
		states:     states,
		rooms:      make(map[string]*room),
	}
}

// holdRoom returns the room with a hold on it, nil when it is not open.
// Every hold is given back with releaseRoom.
func (m *RoomsManager) holdRoom(roomID string) *room {
	m.lock.Lock()
	defer m.lock.Unlock()

	r := m.rooms[roomID]
	if r != nil {
		r.holders++
	}
	return r
}

// holdOrInitRoom opens the room when needed and holds it
func (m *RoomsManager) holdOrInitRoom(roomID string) (*room, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if r := m.rooms[roomID]; r != nil {
		r.holders++
		return r, nil
	}

	conference := rtc.NewRoom(roomID)
	e, err := engine.NewEngine(roomID, engine.NewStore(m.restoreState(roomID)), conference, m.dispatcher, m.cfg)
	if err != nil {
		return nil, err
	}
	e.Start()

	r := &room{
		id:         roomID,
		conference: conference,
		engine:     e,
		holders:    1,
		clients:    make(map[string]struct{}),
	}
	m.rooms[roomID] = r

	telemetry.RoomOpened()
	log.Info().Str("service", "rooms_manager").Str("room", roomID).Msg("room opened")

	return r, nil
}

// releaseRoom gives the hold back and closes the room when it is idle.
// The layout state stays in the state store until it expires.
func (m *RoomsManager) releaseRoom(r *room) {
	m.lock.Lock()
	r.holders--
	if !r.idle() || m.rooms[r.id] != r {
		m.lock.Unlock()
		return
	}
	delete(m.rooms, r.id)
	m.lock.Unlock()

	<-r.engine.Stop()
	telemetry.RoomClosed()

	log.Info().Str("service", "rooms_manager").Str("room", r.id).Msg("room closed")
}

func (m *RoomsManager) restoreState(roomID string) *core.LayoutState {
	if m.states == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), stateStoreTimeout)
	defer cancel()

	state, err := m.states.Load(ctx, roomID)
	if err != nil {
		if !errors.Is(err, core.ErrLayoutStateNotFound) {
			log.Error().Err(err).Str("service", "rooms_manager").Str("room", roomID).Msg("can not restore layout state")
		}
		return nil
	}

	log.Debug().Str("service", "rooms_manager").Str("room", roomID).Msg("layout state restored")

	return state
}

func (m *RoomsManager) persist(roomID string, r *room) {
	if m.states == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stateStoreTimeout)
	defer cancel()

	if err := m.states.Save(ctx, roomID, r.engine.Store().Snapshot()); err != nil {
		log.Error().Err(err).Str("service", "rooms_manager").Str("room", roomID).Msg("can not save layout state")
	}
}

// update applies a state change to the room and persists the result
func (m *RoomsManager) update(roomID string, apply func(r *room) error) error {
	r, err := m.holdOrInitRoom(roomID)
	if err != nil {
		return err
	}
	defer m.releaseRoom(r)

	if err := apply(r); err != nil {
		telemetry.ServiceOperationCounter.WithLabelValues("update", "error", "apply").Inc()
		return err
	}
	m.persist(roomID, r)

	telemetry.ServiceOperationCounter.WithLabelValues("update", "success", "").Inc()

	return nil
}

func (m *RoomsManager) OnParticipantJoined(roomID string, params rpc.ParticipantJoinedParams) error {
	return m.update(roomID, func(r *room) error {
		r.conference.Join(params.User, params.Hidden)
		r.engine.Store().RosterChanged()
		return nil
	})
}

func (m *RoomsManager) OnParticipantLeft(roomID, participantID string) error {
	return m.update(roomID, func(r *room) error {
		if r.conference.Leave(participantID) {
			r.engine.Store().ForgetParticipant(participantID)
		}
		return nil
	})
}

func (m *RoomsManager) OnTrackUpdated(roomID string, params rpc.TrackUpdatedParams) error {
	return m.update(roomID, func(r *room) error {
		var err error
		if params.Removed {
			err = r.conference.RemoveTrack(params.Track.ParticipantID, params.Track.ID)
		} else {
			err = r.conference.UpdateTrack(params.Track)
		}
		if err != nil {
			return err
		}

		r.engine.Store().RosterChanged()
		return nil
	})
}

func (m *RoomsManager) OnScreenshare(roomID, participantID string, started bool) error {
	return m.update(roomID, func(r *room) error {
		if started {
			r.engine.Store().StartPresenting(participantID)
		} else {
			r.engine.Store().StopPresenting(participantID)
		}
		return nil
	})
}

func (m *RoomsManager) OnPin(roomID string, pin core.PinnedParticipant) error {
	return m.update(roomID, func(r *room) error {
		r.engine.Store().Pin(pin)
		return nil
	})
}

func (m *RoomsManager) OnUnpin(roomID string) error {
	return m.update(roomID, func(r *room) error {
		r.engine.Store().Unpin()
		return nil
	})
}

func (m *RoomsManager) OnLayoutMode(roomID string, mode core.LayoutMode) error {
	return m.update(roomID, func(r *room) error {
		return r.engine.Store().SetMode(mode)
	})
}

func (m *RoomsManager) OnLayoutType(roomID string, layoutType core.LayoutType) error {
	return m.update(roomID, func(r *room) error {
		return r.engine.Store().SetType(layoutType)
	})
}

func (m *RoomsManager) OnHandRaised(roomID string, params rpc.HandRaisedParams) error {
	return m.update(roomID, func(r *room) error {
		r.engine.Store().SetHandRaised(params.ParticipantID, params.Raised)
		return nil
	})
}

func (m *RoomsManager) OnDominantSpeaker(roomID, participantID string) error {
	return m.update(roomID, func(r *room) error {
		r.engine.Store().SetDominantSpeaker(participantID)
		return nil
	})
}

func (m *RoomsManager) OnPip(roomID string, enabled bool) error {
	return m.update(roomID, func(r *room) error {
		r.engine.Store().SetPip(enabled)
		return nil
	})
}

func (m *RoomsManager) OnSubtitle(roomID string, params rpc.SubtitleParams) error {
	return m.update(roomID, func(r *room) error {
		r.engine.Store().SetSubtitle(params.Transcription, params.Text)
		return nil
	})
}

// Attach starts sending the frames of the room to a client
func (m *RoomsManager) Attach(roomID, clientID, userID string, device layout.DeviceClass, sink engine.Sink) error {
	r, err := m.holdOrInitRoom(roomID)
	if err != nil {
		return err
	}
	defer m.releaseRoom(r)

	if err := r.engine.Attach(clientID, userID, device, sink); err != nil {
		return err
	}

	m.lock.Lock()
	r.clients[clientID] = struct{}{}
	m.lock.Unlock()

	telemetry.ClientAttached()

	return nil
}

func (m *RoomsManager) Detach(roomID, clientID string) {
	r := m.holdRoom(roomID)
	if r == nil {
		return
	}
	defer m.releaseRoom(r)

	m.lock.Lock()
	_, attached := r.clients[clientID]
	delete(r.clients, clientID)
	m.lock.Unlock()

	if !attached {
		return
	}

	r.engine.Detach(clientID)
	telemetry.ClientDetached()
}

// withRoom runs fn on an open room
func (m *RoomsManager) withRoom(roomID string, fn func(r *room)) error {
	r := m.holdRoom(roomID)
	if r == nil {
		return ErrRoomNotFound
	}
	defer m.releaseRoom(r)

	fn(r)
	return nil
}

func (m *RoomsManager) Scroll(roomID, clientID string, offset float64) error {
	return m.withRoom(roomID, func(r *room) {
		r.engine.Scroll(clientID, offset)
	})
}

func (m *RoomsManager) SetDeviceClass(roomID, clientID string, device layout.DeviceClass) error {
	return m.withRoom(roomID, func(r *room) {
		r.engine.SetDeviceClass(clientID, device)
	})
}

func (m *RoomsManager) SetWindowSize(roomID, clientID string, size int) error {
	return m.withRoom(roomID, func(r *room) {
		r.engine.SetWindowSize(clientID, size)
	})
}

func (m *RoomsManager) Snapshot(roomID string) (*RoomSnapshot, error) {
	var snapshot *RoomSnapshot

	err := m.withRoom(roomID, func(r *room) {
		r.engine.Sync()

		snapshot = &RoomSnapshot{
			RoomID:       roomID,
			State:        r.engine.Store().Snapshot(),
			Participants: r.conference.Participants(),
			Clients:      r.engine.ClientsCount(),
		}
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (m *RoomsManager) RoomsCount() int {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return len(m.rooms)
}

// Close stops every room engine
func (m *RoomsManager) Close() {
	m.lock.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*room)
	m.lock.Unlock()

	for _, r := range rooms {
		<-r.engine.Stop()
		telemetry.RoomClosed()
	}
}
