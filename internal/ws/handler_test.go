package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/engine"
	"github.com/isqad/livelook-grid/internal/eventbus/rpc"
	"github.com/isqad/livelook-grid/internal/service"
)

type MockPreferences struct {
	Prefs *core.LayoutPreferences
}

func (p *MockPreferences) Find(userID string) (*core.LayoutPreferences, error) {
	if p.Prefs == nil || p.Prefs.UserID != userID {
		return nil, core.ErrPreferencesNotFound
	}
	return p.Prefs, nil
}

func (p *MockPreferences) Save(prefs *core.LayoutPreferences) (*core.LayoutPreferences, error) {
	p.Prefs = prefs
	return prefs, nil
}

func newTestApp(t *testing.T, prefs core.PreferencesStorer) (*WsApp, *service.RoomsManager, *engine.ResizeDispatcher, *httptest.Server) {
	dispatcher := engine.NewResizeDispatcher()
	rooms := service.NewRoomsManager(engine.DefaultConfig(), dispatcher, nil)

	app := New(WsAppOptions{
		Env:         core.DevelopmentEnv,
		Rooms:       rooms,
		Dispatcher:  dispatcher,
		Preferences: prefs,
	})
	ts := httptest.NewServer(app.Router())

	t.Cleanup(func() {
		ts.Close()
		rooms.Close()
	})
	return app, rooms, dispatcher, ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Nil(t, err)
	resp.Body.Close()
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) engine.Frame {
	require.Nil(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	frame := engine.Frame{}
	require.Nil(t, conn.ReadJSON(&frame))
	return frame
}

func TestWsHandlerRejectsBadRequests(t *testing.T) {
	_, _, _, ts := newTestApp(t, nil)

	for _, query := range []string{"user=me", "room=room1&device=watch"} {
		resp, err := http.Get(ts.URL + "/ws?" + query)
		require.Nil(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
	}
}

func TestWsStreamsFrames(t *testing.T) {
	app, rooms, dispatcher, ts := newTestApp(t, nil)

	require.Nil(t, rooms.OnParticipantJoined("room1", rpc.ParticipantJoinedParams{User: core.Identity{ID: "a", Name: "Alice"}}))
	require.Nil(t, rooms.OnParticipantJoined("room1", rpc.ParticipantJoinedParams{User: core.Identity{ID: "me", Name: "Me"}}))

	conn := dial(t, ts, "room=room1&user=me")

	require.Nil(t, conn.WriteJSON(ClientMessage{Type: ResizeMessage, Width: 1600, Height: 900}))

	frame := readFrame(t, conn)
	assert.Equal(t, "room1", frame.RoomID)
	assert.Equal(t, 2, frame.Total)
	assert.Len(t, frame.Tiles, 2)
	assert.Equal(t, "a", frame.Tiles[0].ParticipantID)
	assert.Equal(t, "You", frame.Tiles[1].Roles.Label)
	assert.Equal(t, 1600.0, frame.Viewport.Width)
	assert.Equal(t, int64(1), app.Connections())

	_, ok := dispatcher.Last(frame.ClientID)
	assert.True(t, ok)

	require.Nil(t, conn.Close())

	assert.Eventually(t, func() bool {
		return app.Connections() == 0
	}, 2*time.Second, 10*time.Millisecond)

	_, ok = dispatcher.Last(frame.ClientID)
	assert.False(t, ok)
	assert.Eventually(t, func() bool {
		snapshot, err := rooms.Snapshot("room1")
		return err == nil && snapshot.Clients == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWsAppliesSavedWindowSize(t *testing.T) {
	prefs := &MockPreferences{Prefs: &core.LayoutPreferences{UserID: "me", LayoutType: core.GridLayout, WindowSize: 1}}
	_, rooms, _, ts := newTestApp(t, prefs)

	require.Nil(t, rooms.OnParticipantJoined("room1", rpc.ParticipantJoinedParams{User: core.Identity{ID: "a"}}))
	require.Nil(t, rooms.OnParticipantJoined("room1", rpc.ParticipantJoinedParams{User: core.Identity{ID: "me"}}))

	conn := dial(t, ts, "room=room1&user=me&device=desktop")
	defer conn.Close()

	require.Nil(t, conn.WriteJSON(ClientMessage{Type: ResizeMessage, Width: 1600, Height: 900}))

	frame := readFrame(t, conn)
	assert.Equal(t, 2, frame.Total)
	assert.Equal(t, 1, frame.Window.Len())
	assert.Len(t, frame.Tiles, 1)

	require.Nil(t, conn.WriteJSON(ClientMessage{Type: ScrollMessage, Offset: 900}))

	frame = readFrame(t, conn)
	assert.Equal(t, 1, frame.Window.Start)
	assert.Equal(t, "me", frame.Tiles[0].ParticipantID)
}

func TestHandleClientMessageErrors(t *testing.T) {
	app, _, _, _ := newTestApp(t, nil)

	assert.Equal(t, errUnknownMessage, app.handleClientMessage(nil, "room1", "c1", ClientMessage{Type: "zoom"}))
	assert.Equal(t, errInvalidSize, app.handleClientMessage(nil, "room1", "c1", ClientMessage{Type: ResizeMessage}))
	assert.NotNil(t, app.handleClientMessage(nil, "room1", "c1", ClientMessage{Type: DeviceMessage, Class: "watch"}))
	assert.Equal(t, service.ErrRoomNotFound, app.handleClientMessage(nil, "nowhere", "c1", ClientMessage{Type: ScrollMessage, Offset: 10}))
}
