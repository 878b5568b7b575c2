package core

import (
	"encoding/json"

	"github.com/pion/webrtc/v3"
)

// VideoType tells the camera stream apart from the screen share
type VideoType string

const (
	CameraVideo  VideoType = "camera"
	DesktopVideo VideoType = "desktop"
)

// Track is a read-only description of a media track owned by the media engine
type Track struct {
	ID            string
	ParticipantID string
	Kind          webrtc.RTPCodecType
	Source        VideoType
	Muted         bool
	Local         bool
}

type trackJSON struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	Kind          string    `json:"kind"`
	VideoType     VideoType `json:"video_type,omitempty"`
	Muted         bool      `json:"muted,omitempty"`
	Local         bool      `json:"local,omitempty"`
}

// Type is either "audio" or "video"
func (t Track) Type() string {
	return t.Kind.String()
}

func (t Track) VideoType() VideoType {
	if t.Kind != webrtc.RTPCodecTypeVideo {
		return ""
	}
	if t.Source == "" {
		return CameraVideo
	}
	return t.Source
}

func (t Track) IsAudioTrack() bool {
	return t.Kind == webrtc.RTPCodecTypeAudio
}

func (t Track) IsVideoTrack() bool {
	return t.Kind == webrtc.RTPCodecTypeVideo
}

func (t Track) IsMuted() bool {
	return t.Muted
}

func (t Track) IsLocal() bool {
	return t.Local
}

func (t Track) MarshalJSON() ([]byte, error) {
	return json.Marshal(trackJSON{
		ID:            t.ID,
		ParticipantID: t.ParticipantID,
		Kind:          t.Kind.String(),
		VideoType:     t.VideoType(),
		Muted:         t.Muted,
		Local:         t.Local,
	})
}

func (t *Track) UnmarshalJSON(data []byte) error {
	raw := trackJSON{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.ID = raw.ID
	t.ParticipantID = raw.ParticipantID
	t.Kind = webrtc.NewRTPCodecType(raw.Kind)
	t.Source = raw.VideoType
	t.Muted = raw.Muted
	t.Local = raw.Local

	return nil
}
