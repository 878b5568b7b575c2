package engine

import (
	"errors"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/layout"
)

var (
	// ErrMissingTrack means the view has no video track to show, the tile falls back to the avatar
	ErrMissingTrack = errors.New("participant has no video track")
	// ErrEmptyRoster means nobody is left to display
	ErrEmptyRoster = errors.New("projected roster is empty")
)

// TrackRef points the renderer to a track it already holds
type TrackRef struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	VideoType core.VideoType `json:"video_type,omitempty"`
	Muted     bool           `json:"muted"`
	Local     bool           `json:"local"`
}

func refOf(t *core.Track) *TrackRef {
	if t == nil {
		return nil
	}
	return &TrackRef{
		ID:        t.ID,
		Kind:      t.Type(),
		VideoType: t.VideoType(),
		Muted:     t.IsMuted(),
		Local:     t.IsLocal(),
	}
}

type Tracks struct {
	Video *TrackRef `json:"video,omitempty"`
	Audio *TrackRef `json:"audio,omitempty"`
}

// Roles are the flags deciding how a tile is decorated
type Roles struct {
	IsLocal           bool   `json:"is_local"`
	IsActiveSpeaker   bool   `json:"is_active_speaker"`
	IsPinned          bool   `json:"is_pinned"`
	HandRaised        bool   `json:"hand_raised"`
	ShowSpeakerBorder bool   `json:"show_speaker_border"`
	ShowAvatar        bool   `json:"show_avatar"`
	PlayAudio         bool   `json:"play_audio"`
	Pip               bool   `json:"pip"`
	Label             string `json:"label"`
	Caption           string `json:"caption,omitempty"`
}

// Tile is everything the renderer needs for one participant view
type Tile struct {
	ParticipantID string              `json:"participant_id"`
	Index         int                 `json:"index"`
	Presenter     bool                `json:"presenter"`
	User          core.Identity       `json:"user"`
	Geometry      layout.TileGeometry `json:"geometry"`
	Tracks        Tracks              `json:"tracks"`
	Roles         Roles               `json:"roles"`
}

// Frame is one render pass for one client
type Frame struct {
	RoomID     string          `json:"room_id"`
	ClientID   string          `json:"client_id"`
	Seq        uint64          `json:"seq"`
	Viewport   layout.Viewport `json:"viewport"`
	Window     layout.Window   `json:"window"`
	Total      int             `json:"total"`
	FullScreen bool            `json:"full_screen"`
	Mode       core.LayoutMode `json:"mode"`
	Type       core.LayoutType `json:"type"`
	Focus      *Tile           `json:"focus,omitempty"`
	Tiles      []Tile          `json:"tiles"`
}

// Sink consumes the frames of one client
type Sink interface {
	Send(frame Frame) error
}

type SinkFunc func(frame Frame) error

func (f SinkFunc) Send(frame Frame) error {
	return f(frame)
}

// SelectVideoTrack picks the screen share for presenter views and the camera
// otherwise. The large view of a pinned camera always gets the camera.
func SelectVideoTrack(tracks []core.Track, isPresenter, largeCamera bool) *core.Track {
	want := core.CameraVideo
	if isPresenter && !largeCamera {
		want = core.DesktopVideo
	}

	var fallback *core.Track
	for i := range tracks {
		t := &tracks[i]
		if !t.IsVideoTrack() {
			continue
		}
		if t.VideoType() == want {
			return t
		}
		if fallback == nil && !isPresenter {
			fallback = t
		}
	}
	return fallback
}

// SelectAudioTrack returns the first audio track
func SelectAudioTrack(tracks []core.Track) *core.Track {
	for i := range tracks {
		if tracks[i].IsAudioTrack() {
			return &tracks[i]
		}
	}
	return nil
}
