package rtc

import (
	"errors"
	"sync"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/engine"
)

var (
	errNoParticipant = errors.New("participant is not in the room")
	errNoTrackID     = errors.New("track has no id")
)

// Room is the roster of a conference as announced on the event bus
type Room struct {
	ID string

	lock         sync.RWMutex
	order        []string
	participants map[string]*Participant
}

func NewRoom(roomID string) *Room {
	return &Room{
		ID:           roomID,
		participants: make(map[string]*Participant),
	}
}

// Join adds the participant or refreshes its identity. It reports whether the
// membership changed.
func (r *Room) Join(user core.Identity, hidden bool) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	if p, ok := r.participants[user.ID]; ok {
		p.Lock()
		p.User = user
		p.Hidden = hidden
		p.Unlock()
		return false
	}

	r.participants[user.ID] = NewParticipant(user, hidden)
	r.order = append(r.order, user.ID)

	return true
}

func (r *Room) Leave(participantID string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.participants[participantID]; !ok {
		return false
	}
	delete(r.participants, participantID)

	for i, id := range r.order {
		if id == participantID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Room) UpdateTrack(track core.Track) error {
	if track.ID == "" {
		return errNoTrackID
	}

	p := r.participant(track.ParticipantID)
	if p == nil {
		return errNoParticipant
	}
	p.SetTrack(track)

	return nil
}

func (r *Room) RemoveTrack(participantID, trackID string) error {
	p := r.participant(participantID)
	if p == nil {
		return errNoParticipant
	}
	p.RemoveTrack(trackID)

	return nil
}

func (r *Room) participant(participantID string) *Participant {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.participants[participantID]
}

// Participants returns every member in join order, hidden ones included
func (r *Room) Participants() []core.Participant {
	r.lock.RLock()
	defer r.lock.RUnlock()

	res := make([]core.Participant, 0, len(r.order))
	for _, id := range r.order {
		p := r.participants[id]
		p.RLock()
		res = append(res, p.ToCore())
		p.RUnlock()
	}
	return res
}

func (r *Room) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.order)
}

func (r *Room) Tracks(participantID string) []core.Track {
	p := r.participant(participantID)
	if p == nil {
		return nil
	}
	return p.Tracks()
}

func (r *Room) SessionFor(userID string) engine.Conference {
	return &Session{room: r, userID: userID}
}
