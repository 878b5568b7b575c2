package rpc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
)

func TestRpcFromReaderPin(t *testing.T) {
	payload, err := NewPinRpc("p1", true).ToJSON()
	assert.Nil(t, err)

	r, err := RpcFromReader(bytes.NewReader(payload))
	assert.Nil(t, err)
	assert.Equal(t, PinMethod, r.GetMethod())

	pin, ok := r.(*PinRpc)
	assert.True(t, ok)
	assert.Equal(t, core.PinnedParticipant{ID: "p1", IsPresenter: true}, pin.Params)
}

func TestRpcFromReaderTrack(t *testing.T) {
	payload := `{"jsonrpc":"2.0","method":"track_updated","params":{"track":{"id":"t1","participant_id":"p1","kind":"video","video_type":"desktop","muted":true}}}`

	r, err := RpcFromReader(strings.NewReader(payload))
	assert.Nil(t, err)

	track := r.(*TrackUpdatedRpc).Params.Track
	assert.Equal(t, webrtc.RTPCodecTypeVideo, track.Kind)
	assert.Equal(t, core.DesktopVideo, track.VideoType())
	assert.True(t, track.IsMuted())
	assert.False(t, r.(*TrackUpdatedRpc).Params.Removed)
}

func TestRpcFromReaderScreenshare(t *testing.T) {
	payload, err := NewScreenshareRpc("p1", false).ToJSON()
	assert.Nil(t, err)

	r, err := RpcFromReader(bytes.NewReader(payload))
	assert.Nil(t, err)
	assert.False(t, r.(*ScreenshareRpc).Started())
	assert.Equal(t, "p1", r.(*ScreenshareRpc).Params.ParticipantID)
}

func TestRpcFromReaderUnpinWithoutParams(t *testing.T) {
	r, err := RpcFromReader(strings.NewReader(`{"jsonrpc":"2.0","method":"unpin","params":null}`))
	assert.Nil(t, err)
	assert.Equal(t, UnpinMethod, r.GetMethod())
}

func TestRpcFromReaderErrors(t *testing.T) {
	_, err := RpcFromReader(strings.NewReader(`{"jsonrpc":"2.0","method":"offer","params":{}}`))
	assert.Equal(t, ErrUnknownRpcType, err)

	_, err = RpcFromReader(strings.NewReader(`{"jsonrpc":"1.0","method":"pin","params":{}}`))
	assert.Equal(t, ErrMalformedRpc, err)

	_, err = RpcFromReader(strings.NewReader(`{"jsonrpc":"2.0","method":"pin"}`))
	assert.Equal(t, ErrMalformedRpc, err)

	_, err = RpcFromReader(strings.NewReader(`{"jsonrpc":"2.0","method":"layout_mode","params":{"mode":"TILED"}}`))
	assert.Equal(t, core.ErrUnknownLayoutMode, err)

	_, err = RpcFromReader(strings.NewReader(`{"jsonrpc":"2.0","method":"layout_type","params":{"type":"MOSAIC"}}`))
	assert.Equal(t, core.ErrUnknownLayoutType, err)

	_, err = RpcFromReader(strings.NewReader(`not json`))
	assert.NotNil(t, err)
}
