package rtc

import (
	"sync"

	"github.com/isqad/livelook-grid/internal/core"
)

// Participant is a conference member with the tracks it published
type Participant struct {
	sync.RWMutex

	ID     string
	User   core.Identity
	Hidden bool

	trackIDs []string
	tracks   map[string]core.Track
}

func NewParticipant(user core.Identity, hidden bool) *Participant {
	return &Participant{
		ID:     user.ID,
		User:   user,
		Hidden: hidden,
		tracks: make(map[string]core.Track),
	}
}

// SetTrack adds the track or updates it in place
func (p *Participant) SetTrack(track core.Track) {
	p.Lock()
	defer p.Unlock()

	track.ParticipantID = p.ID
	if _, ok := p.tracks[track.ID]; !ok {
		p.trackIDs = append(p.trackIDs, track.ID)
	}
	p.tracks[track.ID] = track
}

func (p *Participant) RemoveTrack(trackID string) bool {
	p.Lock()
	defer p.Unlock()

	if _, ok := p.tracks[trackID]; !ok {
		return false
	}
	delete(p.tracks, trackID)

	for i, id := range p.trackIDs {
		if id == trackID {
			p.trackIDs = append(p.trackIDs[:i], p.trackIDs[i+1:]...)
			break
		}
	}
	return true
}

// Tracks returns a copy in publication order
func (p *Participant) Tracks() []core.Track {
	p.RLock()
	defer p.RUnlock()

	tracks := make([]core.Track, 0, len(p.trackIDs))
	for _, id := range p.trackIDs {
		tracks = append(tracks, p.tracks[id])
	}
	return tracks
}

func (p *Participant) ToCore() core.Participant {
	return core.Participant{
		ID:     p.ID,
		User:   p.User,
		Hidden: p.Hidden,
	}
}
