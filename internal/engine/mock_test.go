package engine

import (
	"sync"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/pion/webrtc/v3"
)

type MockRoom struct {
	lock         sync.Mutex
	participants []core.Participant
	tracks       map[string][]core.Track
}

func NewMockRoom(ids ...string) *MockRoom {
	r := &MockRoom{tracks: make(map[string][]core.Track)}
	for _, id := range ids {
		r.Join(id)
	}
	return r
}

func (r *MockRoom) Join(id string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.participants = append(r.participants, core.Participant{
		ID:   id,
		User: core.Identity{ID: id, Name: "user " + id},
	})
	r.tracks[id] = []core.Track{
		{ID: id + "-mic", ParticipantID: id, Kind: webrtc.RTPCodecTypeAudio},
		{ID: id + "-cam", ParticipantID: id, Kind: webrtc.RTPCodecTypeVideo, Source: core.CameraVideo},
	}
}

func (r *MockRoom) SetTracks(id string, tracks []core.Track) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.tracks[id] = tracks
}

func (r *MockRoom) SessionFor(userID string) Conference {
	return &mockSession{room: r, userID: userID}
}

type mockSession struct {
	room   *MockRoom
	userID string
}

func (s *mockSession) ParticipantsWithoutHidden() []core.Participant {
	s.room.lock.Lock()
	defer s.room.lock.Unlock()

	res := make([]core.Participant, 0, len(s.room.participants))
	for _, p := range s.room.participants {
		if p.Hidden || p.ID == s.userID {
			continue
		}
		res = append(res, p)
	}
	return res
}

func (s *mockSession) LocalUser() core.Identity {
	s.room.lock.Lock()
	defer s.room.lock.Unlock()

	for _, p := range s.room.participants {
		if p.ID == s.userID {
			return p.User
		}
	}
	return core.Identity{}
}

func (s *mockSession) MyUserID() string {
	return s.userID
}

func (s *mockSession) ParticipantCount() int {
	s.room.lock.Lock()
	defer s.room.lock.Unlock()

	count := 0
	for _, p := range s.room.participants {
		if !p.Hidden {
			count++
		}
	}
	return count
}

func (s *mockSession) Tracks(participantID string) []core.Track {
	s.room.lock.Lock()
	defer s.room.lock.Unlock()

	tracks := make([]core.Track, len(s.room.tracks[participantID]))
	copy(tracks, s.room.tracks[participantID])

	for i := range tracks {
		tracks[i].Local = participantID == s.userID
	}
	return tracks
}

type MockSink struct {
	lock   sync.Mutex
	frames []Frame
	// MockErr fails every Send while set
	MockErr error
}

func (s *MockSink) Send(frame Frame) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.MockErr != nil {
		return s.MockErr
	}
	s.frames = append(s.frames, frame)
	return nil
}

func (s *MockSink) Fail(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.MockErr = err
}

func (s *MockSink) Count() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.frames)
}

func (s *MockSink) Last() Frame {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.frames) == 0 {
		return Frame{}
	}
	return s.frames[len(s.frames)-1]
}
