package rpc

import (
	"encoding/json"

	"github.com/isqad/livelook-grid/internal/core"
)

type ParticipantJoinedParams struct {
	User   core.Identity `json:"user"`
	Hidden bool          `json:"hidden,omitempty"`
}

type ParticipantJoinedRpc struct {
	jsonRpcHead
	Params ParticipantJoinedParams `json:"params"`
}

func NewParticipantJoinedRpc(user core.Identity, hidden bool) *ParticipantJoinedRpc {
	return &ParticipantJoinedRpc{
		jsonRpcHead: head(ParticipantJoinedMethod),
		Params: ParticipantJoinedParams{
			User:   user,
			Hidden: hidden,
		},
	}
}

func (r ParticipantJoinedRpc) GetMethod() Method {
	return r.Method
}

func (r ParticipantJoinedRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

type ParticipantParams struct {
	ParticipantID string `json:"participant_id"`
}

type ParticipantLeftRpc struct {
	jsonRpcHead
	Params ParticipantParams `json:"params"`
}

func NewParticipantLeftRpc(participantID string) *ParticipantLeftRpc {
	return &ParticipantLeftRpc{
		jsonRpcHead: head(ParticipantLeftMethod),
		Params:      ParticipantParams{ParticipantID: participantID},
	}
}

func (r ParticipantLeftRpc) GetMethod() Method {
	return r.Method
}

func (r ParticipantLeftRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

type TrackUpdatedParams struct {
	Track   core.Track `json:"track"`
	Removed bool       `json:"removed,omitempty"`
}

// TrackUpdatedRpc announces a published, muted, unmuted or removed track
type TrackUpdatedRpc struct {
	jsonRpcHead
	Params TrackUpdatedParams `json:"params"`
}

func NewTrackUpdatedRpc(track core.Track, removed bool) *TrackUpdatedRpc {
	return &TrackUpdatedRpc{
		jsonRpcHead: head(TrackUpdatedMethod),
		Params: TrackUpdatedParams{
			Track:   track,
			Removed: removed,
		},
	}
}

func (r TrackUpdatedRpc) GetMethod() Method {
	return r.Method
}

func (r TrackUpdatedRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ScreenshareRpc is either screenshare_started or screenshare_stopped
type ScreenshareRpc struct {
	jsonRpcHead
	Params ParticipantParams `json:"params"`
}

func NewScreenshareRpc(participantID string, started bool) *ScreenshareRpc {
	method := ScreenshareStoppedMethod
	if started {
		method = ScreenshareStartedMethod
	}

	return &ScreenshareRpc{
		jsonRpcHead: head(method),
		Params:      ParticipantParams{ParticipantID: participantID},
	}
}

func (r ScreenshareRpc) Started() bool {
	return r.Method == ScreenshareStartedMethod
}

func (r ScreenshareRpc) GetMethod() Method {
	return r.Method
}

func (r ScreenshareRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
