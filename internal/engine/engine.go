package engine

import (
	"errors"
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/layout"
	"github.com/isqad/livelook-grid/internal/telemetry"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
)

var ErrEngineStopped = errors.New("engine is stopped")

// Conference is the view of the room from one user's seat
type Conference interface {
	ParticipantsWithoutHidden() []core.Participant
	LocalUser() core.Identity
	MyUserID() string
	ParticipantCount() int
	Tracks(participantID string) []core.Track
}

// Sessions gives the conference seen by a user
type Sessions interface {
	SessionFor(userID string) Conference
}

type Config struct {
	Chrome            layout.Chrome
	WindowSize        int
	RowGap            float64
	SpeakerBorder     float64
	GeometryCacheSize int
}

func DefaultConfig() Config {
	return Config{
		Chrome:            layout.DefaultChrome,
		WindowSize:        layout.DefaultWindowSize,
		RowGap:            layout.DefaultRowGap,
		SpeakerBorder:     layout.DefaultSpeakerBorder,
		GeometryCacheSize: 1024,
	}
}

type viewportKey struct {
	documentWidth  float64
	documentHeight float64
	mode           core.LayoutMode
	layoutType     core.LayoutType
	count          int
}

type geometryKey struct {
	tileWidth     float64
	tileHeight    float64
	viewport      layout.Viewport
	presenter     bool
	activeSpeaker bool
	device        layout.DeviceClass
}

type client struct {
	id     string
	userID string
	sink   Sink
	device layout.DeviceClass

	documentWidth  float64
	documentHeight float64
	sized          bool

	scroller *layout.Scroller

	projection    layout.Projection
	projectionGen uint64

	viewport    layout.Viewport
	viewportKey *viewportKey

	seq  uint64
	last *Frame
}

// Engine lays out the tiles of one room for each attached client.
// Everything but the public methods runs on the room's queue.
type Engine struct {
	roomID     string
	cfg        Config
	calc       layout.GeometryCalculator
	store      *Store
	sessions   Sessions
	dispatcher *ResizeDispatcher
	queue      *OpsQueue
	geometry   *lru.Cache[geometryKey, layout.TileGeometry]

	releaseStore func()
	resizeSub    *ResizeSubscription

	clients      map[string]*client
	clientsCount *atomic.Int64
	rosterGen    uint64
}

func NewEngine(roomID string, store *Store, sessions Sessions, dispatcher *ResizeDispatcher, cfg Config) (*Engine, error) {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = layout.DefaultWindowSize
	}
	if cfg.GeometryCacheSize <= 0 {
		cfg.GeometryCacheSize = DefaultConfig().GeometryCacheSize
	}

	cache, err := lru.New[geometryKey, layout.TileGeometry](cfg.GeometryCacheSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		roomID:       roomID,
		cfg:          cfg,
		calc:         layout.GeometryCalculator{SpeakerBorder: cfg.SpeakerBorder},
		store:        store,
		sessions:     sessions,
		dispatcher:   dispatcher,
		queue:        NewOpsQueue("room:" + roomID),
		geometry:     cache,
		clients:      make(map[string]*client),
		clientsCount: atomic.NewInt64(0),
		rosterGen:    1,
	}, nil
}

func (e *Engine) RoomID() string {
	return e.roomID
}

func (e *Engine) Store() *Store {
	return e.store
}

func (e *Engine) Start() {
	e.queue.Start()

	e.releaseStore = e.store.Subscribe(AllSlices, func(changed Slice) {
		e.queue.Enqueue(func() {
			e.onStateChanged(changed)
		})
	})

	e.queue.Enqueue(func() {
		e.acquireResize(e.store.Snapshot().Mode)
	})
}

// Stop detaches from the store and the dispatcher, the returned channel is
// closed when the queue is drained
func (e *Engine) Stop() <-chan struct{} {
	if e.releaseStore != nil {
		e.releaseStore()
	}

	e.queue.Enqueue(func() {
		if e.resizeSub != nil {
			e.resizeSub.Release()
			e.resizeSub = nil
		}
	})

	return e.queue.Stop()
}

// Sync waits for the queued events to be applied
func (e *Engine) Sync() {
	e.queue.Sync()
}

func (e *Engine) ClientsCount() int {
	return int(e.clientsCount.Load())
}

// Attach starts rendering for a client. Frames are sent once its size is known.
func (e *Engine) Attach(clientID, userID string, device layout.DeviceClass, sink Sink) error {
	ok := e.queue.Enqueue(func() {
		if _, ok := e.clients[clientID]; !ok {
			e.clientsCount.Inc()
		}

		c := &client{
			id:       clientID,
			userID:   userID,
			sink:     sink,
			device:   device,
			scroller: layout.NewScroller(e.cfg.WindowSize),
		}
		e.dispatcher.Route(clientID, e.roomID)
		if last, ok := e.dispatcher.Last(clientID); ok {
			c.documentWidth, c.documentHeight, c.sized = last.Width, last.Height, true
		}
		e.clients[clientID] = c

		log.Debug().Str("service", "engine").Str("room", e.roomID).Str("client", clientID).Str("user", userID).Msg("client attached")

		e.render(c)
	})
	if !ok {
		return ErrEngineStopped
	}
	return nil
}

func (e *Engine) Detach(clientID string) {
	e.queue.Enqueue(func() {
		if _, ok := e.clients[clientID]; !ok {
			return
		}
		delete(e.clients, clientID)
		e.clientsCount.Dec()
		e.dispatcher.Unroute(clientID, e.roomID)

		log.Debug().Str("service", "engine").Str("room", e.roomID).Str("client", clientID).Msg("client detached")
	})
}

func (e *Engine) Resize(ev ResizeEvent) {
	e.queue.EnqueueLatest("resize:"+ev.ClientID, func() {
		c, ok := e.clients[ev.ClientID]
		if !ok {
			return
		}

		c.documentWidth, c.documentHeight, c.sized = ev.Width, ev.Height, true
		e.render(c)
	})
}

func (e *Engine) Scroll(clientID string, offset float64) {
	e.queue.EnqueueLatest("scroll:"+clientID, func() {
		c, ok := e.clients[clientID]
		if !ok {
			return
		}

		c.scroller.Scroll(offset)
		e.render(c)
	})
}

func (e *Engine) SetDeviceClass(clientID string, device layout.DeviceClass) {
	e.queue.Enqueue(func() {
		c, ok := e.clients[clientID]
		if !ok || c.device == device {
			return
		}

		c.device = device
		e.render(c)
	})
}

// SetWindowSize changes the number of rows mounted for the client, the
// scroll position starts over
func (e *Engine) SetWindowSize(clientID string, size int) {
	e.queue.Enqueue(func() {
		c, ok := e.clients[clientID]
		if !ok || size <= 0 || c.scroller.Size() == size {
			return
		}

		c.scroller = layout.NewScroller(size)
		e.render(c)
	})
}

// acquireResize keeps exactly one dispatcher subscription for the active mode
func (e *Engine) acquireResize(mode core.LayoutMode) {
	if e.resizeSub != nil {
		if e.resizeSub.Tag() == string(mode) {
			return
		}
		e.resizeSub.Release()
	}

	e.resizeSub = e.dispatcher.Acquire(e.roomID, string(mode), e.Resize)
}

func (e *Engine) onStateChanged(changed Slice) {
	if changed.Has(RosterSlice | PresentersSlice | PinSlice) {
		e.rosterGen++
	}
	if changed.Has(ModeSlice) {
		e.acquireResize(e.store.Snapshot().Mode)
	}

	for _, c := range e.clients {
		e.render(c)
	}
}

func (e *Engine) project(c *client, session Conference, state core.LayoutState) layout.Projection {
	if c.projectionGen == e.rosterGen {
		return c.projection
	}

	focusedID, presenterFocused := "", false
	if pin := state.PinnedParticipant; pin != nil {
		focusedID, presenterFocused = pin.ID, pin.IsPresenter
	}

	projection := layout.Project(
		session.ParticipantsWithoutHidden(),
		session.LocalUser(),
		state.PresenterParticipantIDs,
		focusedID,
		presenterFocused,
	)
	if projection.StaleFocus {
		log.Debug().Err(layout.ErrInconsistentPin).Str("service", "engine").Str("room", e.roomID).Str("pinned", focusedID).Msg("pin ignored")
	}

	c.projection = projection
	c.projectionGen = e.rosterGen
	telemetry.Recomputed("projection")

	return projection
}

func (e *Engine) computeViewport(c *client, state core.LayoutState, count int) layout.Viewport {
	key := viewportKey{
		documentWidth:  c.documentWidth,
		documentHeight: c.documentHeight,
		mode:           state.Mode,
		layoutType:     state.Type,
		count:          count,
	}
	if c.viewportKey != nil && *c.viewportKey == key {
		return c.viewport
	}

	c.viewport = e.cfg.Chrome.ComputeViewport(key.documentWidth, key.documentHeight, key.mode, key.layoutType, key.count)
	c.viewportKey = &key
	telemetry.Recomputed("viewport")

	return c.viewport
}

func (e *Engine) tileGeometry(key geometryKey) layout.TileGeometry {
	if g, ok := e.geometry.Get(key); ok {
		return g
	}

	g := e.calc.ComputeTileGeometry(key.tileWidth, key.tileHeight, key.viewport, key.presenter, key.activeSpeaker, key.device)
	e.geometry.Add(key, g)
	telemetry.Recomputed("geometry")

	return g
}

func (e *Engine) render(c *client) {
	if !c.sized {
		return
	}

	state := e.store.Snapshot()
	session := e.sessions.SessionFor(c.userID)
	count := session.ParticipantCount()

	projection := e.project(c, session, state)
	if c.scroller.SetRoster(projection.Views) {
		telemetry.Recomputed("window")
	}

	viewport := e.computeViewport(c, state, count)

	tileWidth := viewport.Width
	if layout.HasSideRail(state.Mode, state.Type, count) {
		tileWidth = e.cfg.Chrome.SideRail
	}
	rowHeight := layout.RowHeight(viewport.Height, c.scroller.Size())
	tileHeight := rowHeight - e.cfg.RowGap
	if tileHeight < 0 {
		tileHeight = 0
	}
	window := c.scroller.SetRowHeight(rowHeight)

	frame := Frame{
		RoomID:     e.roomID,
		ClientID:   c.id,
		Viewport:   viewport,
		Window:     window,
		Total:      projection.Len(),
		FullScreen: state.IsFullScreen(),
		Mode:       state.Mode,
		Type:       state.Type,
		Tiles:      make([]Tile, 0, window.Len()),
	}

	if projection.Len() == 0 {
		log.Debug().Err(ErrEmptyRoster).Str("service", "engine").Str("room", e.roomID).Str("client", c.id).Msg("nothing to display")
	}

	for i := window.Start; i < window.End; i++ {
		t := e.buildTile(c, session, state, count, projection.Views[i], tileWidth, tileHeight, viewport, false)
		t.Index = i
		frame.Tiles = append(frame.Tiles, t)
	}

	if pin := state.PinnedParticipant; pin != nil && !projection.StaleFocus {
		if view, ok := lookupView(session, pin.ID, pin.IsPresenter); ok {
			focus := e.buildTile(c, session, state, count, view, viewport.Width, viewport.Height, viewport, !pin.IsPresenter)
			focus.Index = -1
			frame.Focus = &focus
		}
	}

	e.emit(c, frame)
}

func (e *Engine) buildTile(
	c *client,
	session Conference,
	state core.LayoutState,
	count int,
	view core.ParticipantView,
	tileWidth, tileHeight float64,
	viewport layout.Viewport,
	largeCamera bool,
) Tile {
	tracks := session.Tracks(view.ID)
	video := SelectVideoTrack(tracks, view.IsPresenter, largeCamera)
	audio := SelectAudioTrack(tracks)

	activeSpeaker := state.DominantSpeakerID != "" && state.DominantSpeakerID == view.ID
	speakerBorder := count > 1 && activeSpeaker && !view.IsPresenter

	if video == nil {
		log.Debug().Err(ErrMissingTrack).Str("service", "engine").Str("room", e.roomID).Str("participant", view.ID).Bool("presenter", view.IsPresenter).Msg("showing avatar")
	}

	label := view.User.Name
	if view.IsLocal || (session.MyUserID() != "" && view.ID == session.MyUserID()) {
		label = "You"
	}

	caption := ""
	if state.Transcription {
		caption = state.Subtitle
	}

	pin := state.PinnedParticipant

	return Tile{
		ParticipantID: view.ID,
		Presenter:     view.IsPresenter,
		User:          view.User,
		Geometry: e.tileGeometry(geometryKey{
			tileWidth:     tileWidth,
			tileHeight:    tileHeight,
			viewport:      viewport,
			presenter:     view.IsPresenter,
			activeSpeaker: speakerBorder,
			device:        c.device,
		}),
		Tracks: Tracks{
			Video: refOf(video),
			Audio: refOf(audio),
		},
		Roles: Roles{
			IsLocal:           view.IsLocal,
			IsActiveSpeaker:   activeSpeaker,
			IsPinned:          pin != nil && pin.ID == view.ID,
			HandRaised:        state.RaisedHandParticipantIDs[view.ID],
			ShowSpeakerBorder: speakerBorder,
			ShowAvatar:        video == nil || video.IsMuted(),
			PlayAudio:         audio != nil && !audio.IsLocal() && !view.IsLocal,
			Pip:               state.PipEnabled,
			Label:             label,
			Caption:           caption,
		},
	}
}

func lookupView(session Conference, participantID string, presenter bool) (core.ParticipantView, bool) {
	local := session.LocalUser()
	if local.ID != "" && local.ID == participantID {
		return core.ParticipantView{ID: local.ID, User: local, IsLocal: true, IsPresenter: presenter}, true
	}

	for _, p := range session.ParticipantsWithoutHidden() {
		if p.ID == participantID {
			view := core.ViewOf(p)
			view.IsPresenter = presenter
			return view, true
		}
	}
	return core.ParticipantView{}, false
}

func (e *Engine) emit(c *client, frame Frame) {
	if c.last != nil && reflect.DeepEqual(*c.last, frame) {
		telemetry.FrameSuppressed()
		return
	}
	last := frame

	frame.Seq = c.seq + 1

	if err := c.sink.Send(frame); err != nil {
		log.Warn().Err(err).Str("service", "engine").Str("room", e.roomID).Str("client", c.id).Msg("can not send frame")
		return
	}
	c.seq++
	c.last = &last
	telemetry.FrameEmitted()
}
