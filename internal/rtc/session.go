package rtc

import (
	"github.com/isqad/livelook-grid/internal/core"
)

// Session is the room seen by one user. An empty user id is a spectator,
// such as a recorder, which has no local tile.
type Session struct {
	room   *Room
	userID string
}

func (s *Session) MyUserID() string {
	return s.userID
}

// ParticipantsWithoutHidden lists the remote members that can be displayed
func (s *Session) ParticipantsWithoutHidden() []core.Participant {
	all := s.room.Participants()

	res := make([]core.Participant, 0, len(all))
	for _, p := range all {
		if p.Hidden || p.ID == s.userID {
			continue
		}
		res = append(res, p)
	}
	return res
}

func (s *Session) LocalUser() core.Identity {
	if s.userID == "" {
		return core.Identity{}
	}

	p := s.room.participant(s.userID)
	if p == nil {
		return core.Identity{ID: s.userID}
	}

	p.RLock()
	defer p.RUnlock()

	return p.User
}

// ParticipantCount counts the displayable members, the local user included
func (s *Session) ParticipantCount() int {
	count := 0
	local := false
	for _, p := range s.room.Participants() {
		if p.Hidden {
			continue
		}
		if p.ID == s.userID {
			local = true
		}
		count++
	}
	if s.userID != "" && !local {
		count++
	}
	return count
}

// Tracks marks the user's own tracks as local
func (s *Session) Tracks(participantID string) []core.Track {
	tracks := s.room.Tracks(participantID)
	for i := range tracks {
		tracks[i].Local = participantID == s.userID
	}
	return tracks
}
