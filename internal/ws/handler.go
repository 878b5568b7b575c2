package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/isqad/melody"
	"github.com/rs/zerolog/log"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/engine"
	"github.com/isqad/livelook-grid/internal/layout"
)

const (
	wsClientIDSessionKey  = "clientId"
	wsRoomIDSessionKey    = "roomId"
	wsUserIDSessionKey    = "userId"
	wsDeviceSessionKey    = "device"
	wsDebouncerSessionKey = "debouncer"
)

type MessageType string

const (
	ResizeMessage MessageType = "resize"
	ScrollMessage MessageType = "scroll"
	DeviceMessage MessageType = "device"
	WindowMessage MessageType = "window"
)

var (
	errNoRoomID          = errors.New("room is required")
	errInvalidSize       = errors.New("width and height must be positive")
	errUnknownMessage    = errors.New("unknown message type")
	errNoSessionKey      = errors.New("no key in websocket session")
	errSessionKeyConvert = errors.New("can't convert websocket session key")
)

// ClientMessage is sent by the renderer
type ClientMessage struct {
	Type   MessageType `json:"type"`
	Width  float64     `json:"width,omitempty"`
	Height float64     `json:"height,omitempty"`
	Offset float64     `json:"offset,omitempty"`
	Class  string      `json:"class,omitempty"`
	Size   int         `json:"size,omitempty"`
}

// sessionSink writes the frames to the websocket session
type sessionSink struct {
	session *melody.Session
}

func (s sessionSink) Send(frame engine.Frame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return s.session.Write(payload)
}

func WsHandler(websocket *melody.Melody, resizeDebounce time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		roomID := query.Get("room")
		if roomID == "" {
			log.Error().Err(errNoRoomID).Str("service", "websockets").Msg("")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		device, err := layout.ParseDeviceClass(query.Get("device"))
		if err != nil {
			log.Error().Err(err).Str("service", "websockets").Msg("")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		sessKeys := make(map[string]interface{})
		sessKeys[wsClientIDSessionKey] = uuid.NewString()
		sessKeys[wsRoomIDSessionKey] = roomID
		sessKeys[wsUserIDSessionKey] = query.Get("user")
		sessKeys[wsDeviceSessionKey] = device
		sessKeys[wsDebouncerSessionKey] = debounce.New(resizeDebounce)

		if err := websocket.HandleRequestWithKeys(w, r, sessKeys); err != nil {
			log.Error().Err(err).Str("service", "websockets").Msg("can't handle request")
		}
	}
}

func (app *WsApp) ConnectHandler() func(session *melody.Session) {
	return func(session *melody.Session) {
		clientID, roomID, userID, err := sessionIdentity(session)
		if err != nil {
			log.Error().Err(err).Str("service", "websockets").Msg("extract session identity")
			closeWsSession(session)
			return
		}

		device, ok := session.Keys[wsDeviceSessionKey].(layout.DeviceClass)
		if !ok {
			device = layout.Desktop
		}

		if err := app.Rooms.Attach(roomID, clientID, userID, device, sessionSink{session: session}); err != nil {
			log.Error().Err(err).Str("service", "websockets").Str("room", roomID).Msg("attach client")
			closeWsSession(session)
			return
		}
		app.connections.Inc()

		log.Debug().Str("service", "websockets").Str("room", roomID).Str("client", clientID).Str("user", userID).Msg("client connected")

		app.applyPreferences(roomID, clientID, userID)
	}
}

func (app *WsApp) applyPreferences(roomID, clientID, userID string) {
	if app.Preferences == nil || userID == "" {
		return
	}

	prefs, err := app.Preferences.Find(userID)
	if err != nil {
		if !errors.Is(err, core.ErrPreferencesNotFound) {
			log.Error().Err(err).Str("service", "websockets").Str("user", userID).Msg("load preferences")
		}
		return
	}

	if err := app.Rooms.SetWindowSize(roomID, clientID, prefs.WindowSize); err != nil {
		log.Error().Err(err).Str("service", "websockets").Str("room", roomID).Msg("apply preferences")
	}
}

func (app *WsApp) DisconnectHandler() func(session *melody.Session) {
	return func(session *melody.Session) {
		clientID, roomID, _, err := sessionIdentity(session)
		if err != nil {
			log.Error().Err(err).Str("service", "websockets").Msg("extract session identity")
			return
		}

		app.Rooms.Detach(roomID, clientID)
		if app.Dispatcher != nil {
			app.Dispatcher.Forget(clientID)
		}
		app.connections.Dec()

		log.Debug().Str("service", "websockets").Str("room", roomID).Str("client", clientID).Msg("client disconnected")
	}
}

func (app *WsApp) HandleMessage() func(s *melody.Session, msg []byte) {
	return func(s *melody.Session, msg []byte) {
		clientID, roomID, _, err := sessionIdentity(s)
		if err != nil {
			log.Error().Err(err).Str("service", "websockets").Msg("extract session identity")
			closeWsSession(s)
			return
		}

		message := ClientMessage{}
		if err := json.Unmarshal(msg, &message); err != nil {
			log.Error().Err(err).Str("service", "websockets").Str("client", clientID).Msg("malformed client message")
			return
		}

		if err := app.handleClientMessage(s, roomID, clientID, message); err != nil {
			log.Error().Err(err).Str("service", "websockets").Str("client", clientID).Str("type", string(message.Type)).Msg("")
		}
	}
}

func (app *WsApp) handleClientMessage(s *melody.Session, roomID, clientID string, message ClientMessage) error {
	switch message.Type {
	case ResizeMessage:
		if message.Width <= 0 || message.Height <= 0 {
			return errInvalidSize
		}

		ev := engine.ResizeEvent{
			ClientID: clientID,
			Width:    message.Width,
			Height:   message.Height,
		}
		debounced, ok := s.Keys[wsDebouncerSessionKey].(func(func()))
		if !ok {
			app.Dispatcher.Dispatch(ev)
			return nil
		}
		debounced(func() {
			app.Dispatcher.Dispatch(ev)
		})
		return nil
	case ScrollMessage:
		return app.Rooms.Scroll(roomID, clientID, message.Offset)
	case DeviceMessage:
		device, err := layout.ParseDeviceClass(message.Class)
		if err != nil {
			return err
		}
		return app.Rooms.SetDeviceClass(roomID, clientID, device)
	case WindowMessage:
		return app.Rooms.SetWindowSize(roomID, clientID, message.Size)
	default:
		return errUnknownMessage
	}
}

func sessionIdentity(s *melody.Session) (clientID, roomID, userID string, err error) {
	if clientID, err = sessionString(s, wsClientIDSessionKey); err != nil {
		return
	}
	if roomID, err = sessionString(s, wsRoomIDSessionKey); err != nil {
		return
	}
	userID, err = sessionString(s, wsUserIDSessionKey)
	return
}

func sessionString(s *melody.Session, key string) (string, error) {
	value, ok := s.Keys[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", errNoSessionKey, key)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s", errSessionKeyConvert, key)
	}
	return str, nil
}

func closeWsSession(s *melody.Session) {
	if err := s.Close(); err != nil {
		log.Error().Err(err).Str("service", "websockets").Msg("close session")
	}
}
