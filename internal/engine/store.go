package engine

import (
	"sync"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"
	"github.com/isqad/livelook-grid/internal/core"
)

// Slice is a part of the layout state observers can subscribe to
type Slice uint16

const (
	RosterSlice Slice = 1 << iota
	PresentersSlice
	PinSlice
	ModeSlice
	TypeSlice
	HandsSlice
	SpeakerSlice
	PipSlice
	SubtitleSlice

	AllSlices = RosterSlice | PresentersSlice | PinSlice | ModeSlice | TypeSlice |
		HandsSlice | SpeakerSlice | PipSlice | SubtitleSlice
)

func (s Slice) Has(other Slice) bool {
	return s&other != 0
}

type observer struct {
	slices   Slice
	onChange func(changed Slice)
}

// Store holds the layout state of a room. The event router is its only
// writer, readers get snapshots.
type Store struct {
	lock       sync.RWMutex
	state      core.LayoutState
	presenters *orderedmap.OrderedMap[string, struct{}]

	observersLock sync.Mutex
	observers     map[string]observer
}

func NewStore(state *core.LayoutState) *Store {
	if state == nil {
		state = core.NewLayoutState()
	}

	s := &Store{
		observers: make(map[string]observer),
	}
	s.replace(state.Clone())

	return s
}

// Subscribe registers onChange for the given slices. It is called
// synchronously by the writer and must not block. The returned func
// removes the observer, calling it twice is safe.
func (s *Store) Subscribe(slices Slice, onChange func(changed Slice)) (release func()) {
	key := uuid.NewString()

	s.observersLock.Lock()
	s.observers[key] = observer{slices: slices, onChange: onChange}
	s.observersLock.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.observersLock.Lock()
			delete(s.observers, key)
			s.observersLock.Unlock()
		})
	}
}

func (s *Store) ObserversCount() int {
	s.observersLock.Lock()
	defer s.observersLock.Unlock()

	return len(s.observers)
}

func (s *Store) notify(changed Slice) {
	if changed == 0 {
		return
	}

	s.observersLock.Lock()
	targets := make([]func(Slice), 0, len(s.observers))
	for _, o := range s.observers {
		if o.slices.Has(changed) {
			targets = append(targets, o.onChange)
		}
	}
	s.observersLock.Unlock()

	for _, onChange := range targets {
		onChange(changed)
	}
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() core.LayoutState {
	s.lock.RLock()
	defer s.lock.RUnlock()

	c := s.state.Clone()
	c.PresenterParticipantIDs = s.presenterIDs()

	return c
}

func (s *Store) presenterIDs() []string {
	ids := make([]string, 0, s.presenters.Len())
	for el := s.presenters.Front(); el != nil; el = el.Next() {
		ids = append(ids, el.Key)
	}
	return ids
}

func (s *Store) replace(state core.LayoutState) {
	s.state = state
	s.presenters = orderedmap.NewOrderedMap[string, struct{}]()
	for _, id := range state.PresenterParticipantIDs {
		s.presenters.Set(id, struct{}{})
	}
	if s.state.RaisedHandParticipantIDs == nil {
		s.state.RaisedHandParticipantIDs = make(map[string]bool)
	}
}

// Replace swaps the whole state, used when a room is restored
func (s *Store) Replace(state core.LayoutState) {
	s.lock.Lock()
	s.replace(state.Clone())
	s.lock.Unlock()

	s.notify(AllSlices)
}

// RosterChanged tells observers the conference membership or tracks changed
func (s *Store) RosterChanged() {
	s.notify(RosterSlice)
}

func (s *Store) SetMode(mode core.LayoutMode) error {
	if err := mode.Validate(); err != nil {
		return err
	}

	s.lock.Lock()
	changed := s.state.Mode != mode
	s.state.Mode = mode
	s.lock.Unlock()

	if changed {
		s.notify(ModeSlice)
	}
	return nil
}

func (s *Store) SetType(layoutType core.LayoutType) error {
	if err := layoutType.Validate(); err != nil {
		return err
	}

	s.lock.Lock()
	changed := s.state.Type != layoutType
	s.state.Type = layoutType
	s.lock.Unlock()

	if changed {
		s.notify(TypeSlice)
	}
	return nil
}

func (s *Store) Pin(pin core.PinnedParticipant) {
	s.lock.Lock()
	changed := s.state.PinnedParticipant == nil || *s.state.PinnedParticipant != pin
	s.state.PinnedParticipant = &pin
	s.lock.Unlock()

	if changed {
		s.notify(PinSlice)
	}
}

func (s *Store) Unpin() {
	s.lock.Lock()
	changed := s.state.PinnedParticipant != nil
	s.state.PinnedParticipant = nil
	s.lock.Unlock()

	if changed {
		s.notify(PinSlice)
	}
}

// UnpinParticipant clears the pin only when it points to participantID
func (s *Store) UnpinParticipant(participantID string) {
	s.lock.Lock()
	changed := s.state.PinnedParticipant != nil && s.state.PinnedParticipant.ID == participantID
	if changed {
		s.state.PinnedParticipant = nil
	}
	s.lock.Unlock()

	if changed {
		s.notify(PinSlice)
	}
}

func (s *Store) StartPresenting(participantID string) {
	s.lock.Lock()
	_, exists := s.presenters.Get(participantID)
	s.presenters.Set(participantID, struct{}{})
	s.lock.Unlock()

	if !exists {
		s.notify(PresentersSlice)
	}
}

// StopPresenting removes the presenter view, a pin on it goes away too
func (s *Store) StopPresenting(participantID string) {
	s.lock.Lock()
	removed := s.presenters.Delete(participantID)
	pin := s.state.PinnedParticipant
	unpinned := removed && pin != nil && pin.ID == participantID && pin.IsPresenter
	if unpinned {
		s.state.PinnedParticipant = nil
	}
	s.lock.Unlock()

	var changed Slice
	if removed {
		changed |= PresentersSlice
	}
	if unpinned {
		changed |= PinSlice
	}
	s.notify(changed)
}

func (s *Store) SetHandRaised(participantID string, raised bool) {
	s.lock.Lock()
	changed := s.state.RaisedHandParticipantIDs[participantID] != raised
	if raised {
		s.state.RaisedHandParticipantIDs[participantID] = true
	} else {
		delete(s.state.RaisedHandParticipantIDs, participantID)
	}
	s.lock.Unlock()

	if changed {
		s.notify(HandsSlice)
	}
}

func (s *Store) SetDominantSpeaker(participantID string) {
	s.lock.Lock()
	changed := s.state.DominantSpeakerID != participantID
	s.state.DominantSpeakerID = participantID
	s.lock.Unlock()

	if changed {
		s.notify(SpeakerSlice)
	}
}

func (s *Store) SetPip(enabled bool) {
	s.lock.Lock()
	changed := s.state.PipEnabled != enabled
	s.state.PipEnabled = enabled
	s.lock.Unlock()

	if changed {
		s.notify(PipSlice)
	}
}

func (s *Store) SetSubtitle(transcription bool, text string) {
	s.lock.Lock()
	changed := s.state.Transcription != transcription || s.state.Subtitle != text
	s.state.Transcription = transcription
	s.state.Subtitle = text
	s.lock.Unlock()

	if changed {
		s.notify(SubtitleSlice)
	}
}

// ForgetParticipant drops everything the state keeps about a participant
// who left the room
func (s *Store) ForgetParticipant(participantID string) {
	s.lock.Lock()
	var changed Slice
	if s.presenters.Delete(participantID) {
		changed |= PresentersSlice
	}
	if pin := s.state.PinnedParticipant; pin != nil && pin.ID == participantID {
		s.state.PinnedParticipant = nil
		changed |= PinSlice
	}
	if _, ok := s.state.RaisedHandParticipantIDs[participantID]; ok {
		delete(s.state.RaisedHandParticipantIDs, participantID)
		changed |= HandsSlice
	}
	if s.state.DominantSpeakerID == participantID {
		s.state.DominantSpeakerID = ""
		changed |= SpeakerSlice
	}
	s.lock.Unlock()

	s.notify(changed | RosterSlice)
}
