package rpc

import (
	"encoding/json"
	"errors"
	"io"
)

const jsonRpcVersion = "2.0"

type Method string

const (
	ParticipantJoinedMethod  Method = "participant_joined"
	ParticipantLeftMethod    Method = "participant_left"
	TrackUpdatedMethod       Method = "track_updated"
	ScreenshareStartedMethod Method = "screenshare_started"
	ScreenshareStoppedMethod Method = "screenshare_stopped"
	PinMethod                Method = "pin"
	UnpinMethod              Method = "unpin"
	LayoutModeMethod         Method = "layout_mode"
	LayoutTypeMethod         Method = "layout_type"
	HandRaisedMethod         Method = "hand_raised"
	DominantSpeakerMethod    Method = "dominant_speaker"
	PipMethod                Method = "pip"
	SubtitleMethod           Method = "subtitle"
)

var (
	ErrUnknownRpcType = errors.New("unknown RPC type")
	ErrMalformedRpc   = errors.New("malformed RPC")
)

type Rpc interface {
	GetMethod() Method
	ToJSON() ([]byte, error)
}

type jsonRpcHead struct {
	Version string `json:"jsonrpc"`
	Method  Method `json:"method"`
}

type jsonRpc struct {
	jsonRpcHead
	Params json.RawMessage `json:"params"`
}

func head(method Method) jsonRpcHead {
	return jsonRpcHead{
		Version: jsonRpcVersion,
		Method:  method,
	}
}

func RpcFromReader(reader io.Reader) (Rpc, error) {
	rpc := &jsonRpc{}

	err := json.NewDecoder(reader).Decode(rpc)
	if err != nil {
		return nil, err
	}
	if rpc.Version != jsonRpcVersion {
		return nil, ErrMalformedRpc
	}

	switch rpc.Method {
	case ParticipantJoinedMethod:
		r := &ParticipantJoinedRpc{jsonRpcHead: rpc.jsonRpcHead}
		return r, decodeParams(rpc.Params, &r.Params)
	case ParticipantLeftMethod:
		r := &ParticipantLeftRpc{jsonRpcHead: rpc.jsonRpcHead}
		return r, decodeParams(rpc.Params, &r.Params)
	case TrackUpdatedMethod:
		r := &TrackUpdatedRpc{jsonRpcHead: rpc.jsonRpcHead}
		return r, decodeParams(rpc.Params, &r.Params)
	case ScreenshareStartedMethod, ScreenshareStoppedMethod:
		r := &ScreenshareRpc{jsonRpcHead: rpc.jsonRpcHead}
		return r, decodeParams(rpc.Params, &r.Params)
	case PinMethod:
		r := &PinRpc{jsonRpcHead: rpc.jsonRpcHead}
		return r, decodeParams(rpc.Params, &r.Params)
	case UnpinMethod:
		return NewUnpinRpc(), nil
	case LayoutModeMethod:
		r := &LayoutModeRpc{jsonRpcHead: rpc.jsonRpcHead}
		if err := decodeParams(rpc.Params, &r.Params); err != nil {
			return nil, err
		}
		return r, r.Params.Mode.Validate()
	case LayoutTypeMethod:
		r := &LayoutTypeRpc{jsonRpcHead: rpc.jsonRpcHead}
		if err := decodeParams(rpc.Params, &r.Params); err != nil {
			return nil, err
		}
		return r, r.Params.Type.Validate()
	case HandRaisedMethod:
		r := &HandRaisedRpc{jsonRpcHead: rpc.jsonRpcHead}
		return r, decodeParams(rpc.Params, &r.Params)
	case DominantSpeakerMethod:
		r := &DominantSpeakerRpc{jsonRpcHead: rpc.jsonRpcHead}
		return r, decodeParams(rpc.Params, &r.Params)
	case PipMethod:
		r := &PipRpc{jsonRpcHead: rpc.jsonRpcHead}
		return r, decodeParams(rpc.Params, &r.Params)
	case SubtitleMethod:
		r := &SubtitleRpc{jsonRpcHead: rpc.jsonRpcHead}
		return r, decodeParams(rpc.Params, &r.Params)
	default:
		return nil, ErrUnknownRpcType
	}
}

func decodeParams(raw json.RawMessage, params interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return ErrMalformedRpc
	}
	return json.Unmarshal(raw, params)
}
