package rpc

import (
	"encoding/json"

	"github.com/isqad/livelook-grid/internal/core"
)

type PinRpc struct {
	jsonRpcHead
	Params core.PinnedParticipant `json:"params"`
}

func NewPinRpc(participantID string, isPresenter bool) *PinRpc {
	return &PinRpc{
		jsonRpcHead: head(PinMethod),
		Params: core.PinnedParticipant{
			ID:          participantID,
			IsPresenter: isPresenter,
		},
	}
}

func (r PinRpc) GetMethod() Method {
	return r.Method
}

func (r PinRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

type UnpinRpc struct {
	jsonRpcHead
	Params interface{} `json:"params"`
}

func NewUnpinRpc() *UnpinRpc {
	return &UnpinRpc{
		jsonRpcHead: head(UnpinMethod),
		Params:      nil,
	}
}

func (r UnpinRpc) GetMethod() Method {
	return r.Method
}

func (r UnpinRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

type LayoutModeParams struct {
	Mode core.LayoutMode `json:"mode"`
}

type LayoutModeRpc struct {
	jsonRpcHead
	Params LayoutModeParams `json:"params"`
}

func NewLayoutModeRpc(mode core.LayoutMode) *LayoutModeRpc {
	return &LayoutModeRpc{
		jsonRpcHead: head(LayoutModeMethod),
		Params:      LayoutModeParams{Mode: mode},
	}
}

func (r LayoutModeRpc) GetMethod() Method {
	return r.Method
}

func (r LayoutModeRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

type LayoutTypeParams struct {
	Type core.LayoutType `json:"type"`
}

type LayoutTypeRpc struct {
	jsonRpcHead
	Params LayoutTypeParams `json:"params"`
}

func NewLayoutTypeRpc(layoutType core.LayoutType) *LayoutTypeRpc {
	return &LayoutTypeRpc{
		jsonRpcHead: head(LayoutTypeMethod),
		Params:      LayoutTypeParams{Type: layoutType},
	}
}

func (r LayoutTypeRpc) GetMethod() Method {
	return r.Method
}

func (r LayoutTypeRpc) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
