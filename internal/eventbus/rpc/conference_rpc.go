package rpc

import "encoding/json"

type HandRaisedParams struct {
	ParticipantID string `json:"participant_id"`
	Raised        bool   `json:"raised"`
}

type HandRaisedRpc struct {
	jsonRpcHead
	Params HandRaisedParams `json:"params"`
}

func NewHandRaisedRpc(participantID string, raised bool) *HandRaisedRpc {
	return &HandRaisedRpc{
		jsonRpcHead: head(HandRaisedMethod),
		Params: HandRaisedParams{
			ParticipantID: participantID,
			Raised:        raised,
		},
	}
}

func (r HandRaisedRpc) GetMethod() Method {
	return r.Method
}

func (r HandRaisedRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// DominantSpeakerRpc with an empty participant id means nobody speaks
type DominantSpeakerRpc struct {
	jsonRpcHead
	Params ParticipantParams `json:"params"`
}

func NewDominantSpeakerRpc(participantID string) *DominantSpeakerRpc {
	return &DominantSpeakerRpc{
		jsonRpcHead: head(DominantSpeakerMethod),
		Params:      ParticipantParams{ParticipantID: participantID},
	}
}

func (r DominantSpeakerRpc) GetMethod() Method {
	return r.Method
}

func (r DominantSpeakerRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

type PipParams struct {
	Enabled bool `json:"enabled"`
}

type PipRpc struct {
	jsonRpcHead
	Params PipParams `json:"params"`
}

func NewPipRpc(enabled bool) *PipRpc {
	return &PipRpc{
		jsonRpcHead: head(PipMethod),
		Params:      PipParams{Enabled: enabled},
	}
}

func (r PipRpc) GetMethod() Method {
	return r.Method
}

func (r PipRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

type SubtitleParams struct {
	Transcription bool   `json:"transcription"`
	Text          string `json:"text"`
}

type SubtitleRpc struct {
	jsonRpcHead
	Params SubtitleParams `json:"params"`
}

func NewSubtitleRpc(transcription bool, text string) *SubtitleRpc {
	return &SubtitleRpc{
		jsonRpcHead: head(SubtitleMethod),
		Params: SubtitleParams{
			Transcription: transcription,
			Text:          text,
		},
	}
}

func (r SubtitleRpc) GetMethod() Method {
	return r.Method
}

func (r SubtitleRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
