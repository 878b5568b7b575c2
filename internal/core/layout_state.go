package core

import (
	"encoding/json"
	"errors"
)

// LayoutMode is either the normal mode or the full screen one
type LayoutMode string

// LayoutType is the arrangement of the conference screen
type LayoutType string

const (
	NormalMode     LayoutMode = "NORMAL"
	FullScreenMode LayoutMode = "FULL_SCREEN"

	GridLayout         LayoutType = "GRID"
	SpeakerLayout      LayoutType = "SPEAKER"
	PresentationLayout LayoutType = "PRESENTATION"
)

var (
	ErrUnknownLayoutMode = errors.New("unknown layout mode")
	ErrUnknownLayoutType = errors.New("unknown layout type")
)

func (m LayoutMode) Validate() error {
	switch m {
	case NormalMode, FullScreenMode:
		return nil
	default:
		return ErrUnknownLayoutMode
	}
}

func (t LayoutType) Validate() error {
	switch t {
	case GridLayout, SpeakerLayout, PresentationLayout:
		return nil
	default:
		return ErrUnknownLayoutType
	}
}

// PinnedParticipant is the participant shown in the large video slot
type PinnedParticipant struct {
	ID          string `json:"id"`
	IsPresenter bool   `json:"is_presenter"`
}

// LayoutState is the state shared by every layout component of a room.
// It has a single writer, readers always work with a copy.
type LayoutState struct {
	Mode                     LayoutMode         `json:"mode"`
	Type                     LayoutType         `json:"type"`
	PinnedParticipant        *PinnedParticipant `json:"pinned_participant,omitempty"`
	PresenterParticipantIDs  []string           `json:"presenter_participant_ids"`
	RaisedHandParticipantIDs map[string]bool    `json:"raised_hand_participant_ids"`
	PipEnabled               bool               `json:"pip_enabled"`
	DominantSpeakerID        string             `json:"dominant_speaker_id,omitempty"`
	Transcription            bool               `json:"transcription"`
	Subtitle                 string             `json:"subtitle,omitempty"`
}

func NewLayoutState() *LayoutState {
	return &LayoutState{
		Mode:                     NormalMode,
		Type:                     GridLayout,
		PresenterParticipantIDs:  []string{},
		RaisedHandParticipantIDs: make(map[string]bool),
	}
}

// Clone makes a deep copy
func (s LayoutState) Clone() LayoutState {
	c := s

	if s.PinnedParticipant != nil {
		pin := *s.PinnedParticipant
		c.PinnedParticipant = &pin
	}

	c.PresenterParticipantIDs = make([]string, len(s.PresenterParticipantIDs))
	copy(c.PresenterParticipantIDs, s.PresenterParticipantIDs)

	c.RaisedHandParticipantIDs = make(map[string]bool, len(s.RaisedHandParticipantIDs))
	for id, raised := range s.RaisedHandParticipantIDs {
		c.RaisedHandParticipantIDs[id] = raised
	}

	return c
}

func (s LayoutState) IsPresenting(participantID string) bool {
	for _, id := range s.PresenterParticipantIDs {
		if id == participantID {
			return true
		}
	}
	return false
}

func (s LayoutState) IsFullScreen() bool {
	return s.Mode == FullScreenMode
}

func (s LayoutState) MarshalBinary() ([]byte, error) {
	return json.Marshal(s)
}

func (s *LayoutState) UnmarshalBinary(data []byte) error {
	if err := json.Unmarshal(data, s); err != nil {
		return err
	}
	if s.PresenterParticipantIDs == nil {
		s.PresenterParticipantIDs = []string{}
	}
	if s.RaisedHandParticipantIDs == nil {
		s.RaisedHandParticipantIDs = make(map[string]bool)
	}
	return nil
}
