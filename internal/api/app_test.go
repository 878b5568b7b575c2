package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/engine"
	"github.com/isqad/livelook-grid/internal/layout"
	"github.com/isqad/livelook-grid/internal/service"
)

type MockRooms struct {
	Snapshots map[string]*service.RoomSnapshot
	MockErr   error
}

func (m *MockRooms) Snapshot(roomID string) (*service.RoomSnapshot, error) {
	if m.MockErr != nil {
		return nil, m.MockErr
	}
	snapshot, ok := m.Snapshots[roomID]
	if !ok {
		return nil, service.ErrRoomNotFound
	}
	return snapshot, nil
}

type MockPreferences struct {
	Saved   map[string]*core.LayoutPreferences
	MockErr error
}

func (p *MockPreferences) Find(userID string) (*core.LayoutPreferences, error) {
	if p.MockErr != nil {
		return nil, p.MockErr
	}
	prefs, ok := p.Saved[userID]
	if !ok {
		return nil, core.ErrPreferencesNotFound
	}
	return prefs, nil
}

func (p *MockPreferences) Save(prefs *core.LayoutPreferences) (*core.LayoutPreferences, error) {
	if p.MockErr != nil {
		return nil, p.MockErr
	}
	p.Saved[prefs.UserID] = prefs
	return prefs, nil
}

func newTestServer(t *testing.T, rooms RoomsSnapshotter, prefs core.PreferencesStorer) *httptest.Server {
	app := NewApp(AppOptions{
		Layout:      engine.DefaultConfig(),
		Rooms:       rooms,
		Preferences: prefs,
	})
	ts := httptest.NewServer(app.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, method, url, body string) *http.Response {
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.Nil(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.Nil(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestViewportHandler(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	t.Run("full screen takes the whole width", func(t *testing.T) {
		resp := doRequest(t, "POST", ts.URL+"/viewport", `{"document_width":1600,"document_height":900,"mode":"FULL_SCREEN","type":"SPEAKER","participant_count":3}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		res := ViewportResponse{}
		require.Nil(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, layout.Viewport{Width: 1600, Height: 792}, res.Viewport)
		assert.False(t, res.HasSideRail)
	})

	t.Run("speaker layout leaves room for the side rail", func(t *testing.T) {
		resp := doRequest(t, "POST", ts.URL+"/viewport", `{"document_width":1600,"document_height":900,"type":"SPEAKER","participant_count":3}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		res := ViewportResponse{}
		require.Nil(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, layout.Viewport{Width: 1382, Height: 808}, res.Viewport)
		assert.True(t, res.HasSideRail)
	})

	t.Run("bad requests", func(t *testing.T) {
		for _, body := range []string{
			`{`,
			`{"document_width":0,"document_height":900}`,
			`{"document_width":1600,"document_height":900,"mode":"TILED"}`,
			`{"document_width":1600,"document_height":900,"participant_count":-1}`,
		} {
			resp := doRequest(t, "POST", ts.URL+"/viewport", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		}
	})
}

func TestGeometryHandler(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp := doRequest(t, "POST", ts.URL+"/geometry", `{"tile_width":1600,"tile_height":192,"viewport":{"width":1600,"height":808}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	g := layout.TileGeometry{}
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&g))
	assert.Equal(t, 192.0, g.StreamHeight)
	assert.Equal(t, "341.33px", g.ContainerWidth.String())

	resp = doRequest(t, "POST", ts.URL+"/geometry", `{"tile_width":1600,"tile_height":192,"viewport":{"width":1600,"height":808},"device":"watch"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWindowHandler(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp := doRequest(t, "POST", ts.URL+"/window", `{"roster_length":10,"scroll_offset":404,"panel_height":808}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	res := WindowResponse{}
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, layout.Window{Start: 2, End: 6}, res.Window)
	assert.Equal(t, 202.0, res.RowHeight)
	assert.Equal(t, 192.0, res.TileHeight)

	resp = doRequest(t, "POST", ts.URL+"/window", `{"roster_length":10,"panel_height":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoomLayoutHandler(t *testing.T) {
	rooms := &MockRooms{Snapshots: map[string]*service.RoomSnapshot{
		"room1": {RoomID: "room1", State: *core.NewLayoutState(), Clients: 2},
	}}
	ts := newTestServer(t, rooms, nil)

	resp := doRequest(t, "GET", ts.URL+"/rooms/room1/layout", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	snapshot := service.RoomSnapshot{}
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	assert.Equal(t, "room1", snapshot.RoomID)
	assert.Equal(t, 2, snapshot.Clients)

	resp = doRequest(t, "GET", ts.URL+"/rooms/nowhere/layout", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	rooms.MockErr = errors.New("boom")
	resp = doRequest(t, "GET", ts.URL+"/rooms/room1/layout", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPreferencesHandlers(t *testing.T) {
	prefs := &MockPreferences{Saved: make(map[string]*core.LayoutPreferences)}
	ts := newTestServer(t, nil, prefs)

	t.Run("not found before saving", func(t *testing.T) {
		resp := doRequest(t, "GET", ts.URL+"/preferences/u1", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("saves and shows", func(t *testing.T) {
		resp := doRequest(t, "PUT", ts.URL+"/preferences/u1", `{"layout_type":"SPEAKER","window_size":6}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 6, prefs.Saved["u1"].WindowSize)

		resp = doRequest(t, "GET", ts.URL+"/preferences/u1", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		found := core.LayoutPreferences{}
		require.Nil(t, json.NewDecoder(resp.Body).Decode(&found))
		assert.Equal(t, "u1", found.UserID)
		assert.Equal(t, core.SpeakerLayout, found.LayoutType)
	})

	t.Run("rejects invalid preferences", func(t *testing.T) {
		resp := doRequest(t, "PUT", ts.URL+"/preferences/u1", `{"layout_type":"SPEAKER","window_size":40}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = doRequest(t, "PUT", ts.URL+"/preferences/u1", `not json`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("storage failures", func(t *testing.T) {
		prefs.MockErr = errors.New("db is down")
		defer func() { prefs.MockErr = nil }()

		resp := doRequest(t, "GET", ts.URL+"/preferences/u1", "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		resp = doRequest(t, "PUT", ts.URL+"/preferences/u1", `{"layout_type":"GRID","window_size":4}`)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}
