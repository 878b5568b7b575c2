package bot

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/isqad/livelook-grid/internal/engine"
	"github.com/isqad/livelook-grid/internal/layout"
	"github.com/isqad/livelook-grid/internal/ws"
)

// Options of a headless grid client
type Options struct {
	Host   string
	Secure bool
	RoomID string
	UserID string
	Device layout.DeviceClass
	Width  float64
	Height float64
	// ScrollStep scrolls the panel down by that many pixels every ScrollEvery
	ScrollStep  float64
	ScrollEvery time.Duration
}

// Bot watches the layout of a room the way a renderer does: it reports the
// document size and logs every frame the server sends
type Bot struct {
	Options

	// OnFrame is called for each received frame
	OnFrame func(frame engine.Frame)

	lock          sync.Mutex
	websocketConn *websocket.Conn
	offset        float64
}

func New(options Options) *Bot {
	if options.Device == "" {
		options.Device = layout.Desktop
	}
	return &Bot{Options: options}
}

func (bot *Bot) URL() string {
	scheme := "ws"
	if bot.Secure {
		scheme = "wss"
	}

	query := url.Values{}
	query.Set("room", bot.RoomID)
	query.Set("user", bot.UserID)
	query.Set("device", string(bot.Device))

	u := url.URL{Scheme: scheme, Host: bot.Host, Path: "/ws", RawQuery: query.Encode()}
	return u.String()
}

func (bot *Bot) Close() {
	bot.lock.Lock()
	defer bot.lock.Unlock()

	if bot.websocketConn != nil {
		bot.websocketConn.Close()
	}
}

// Start runs until ctx is done or the server closes the connection
func (bot *Bot) Start(ctx context.Context) error {
	defer bot.Close()

	dialer := &websocket.Dialer{
		HandshakeTimeout: 45 * time.Second,
	}

	c, resp, err := dialer.DialContext(ctx, bot.URL(), nil)
	if err != nil {
		return err
	}
	resp.Body.Close()

	bot.lock.Lock()
	bot.websocketConn = c
	bot.lock.Unlock()

	if err := bot.send(ws.ClientMessage{Type: ws.ResizeMessage, Width: bot.Width, Height: bot.Height}); err != nil {
		return err
	}

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			if err := bot.readFrame(c); err != nil {
				log.Error().Err(err).Str("service", "gridbot").Msg("read error")
				return
			}
		}
	}()

	var scroll <-chan time.Time
	if bot.ScrollStep > 0 && bot.ScrollEvery > 0 {
		ticker := time.NewTicker(bot.ScrollEvery)
		defer ticker.Stop()
		scroll = ticker.C
	}

	for {
		select {
		case <-done:
			return nil
		case <-scroll:
			bot.offset += bot.ScrollStep
			if err := bot.send(ws.ClientMessage{Type: ws.ScrollMessage, Offset: bot.offset}); err != nil {
				return err
			}
		case <-ctx.Done():
			log.Info().Str("service", "gridbot").Msg("interrupt")

			// Cleanly close the connection by sending a close message and then
			// waiting (with timeout) for the server to close the connection.
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				return err
			}

			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return nil
		}
	}
}

func (bot *Bot) send(msg ws.ClientMessage) error {
	bot.lock.Lock()
	defer bot.lock.Unlock()

	return bot.websocketConn.WriteJSON(msg)
}

func (bot *Bot) readFrame(conn *websocket.Conn) error {
	frame := engine.Frame{}
	if err := conn.ReadJSON(&frame); err != nil {
		return err
	}

	log.Info().
		Str("service", "gridbot").
		Uint64("seq", frame.Seq).
		Int("total", frame.Total).
		Str("window", fmt.Sprintf("[%d,%d)", frame.Window.Start, frame.Window.End)).
		Float64("width", frame.Viewport.Width).
		Float64("height", frame.Viewport.Height).
		Msg("frame")

	if bot.OnFrame != nil {
		bot.OnFrame(frame)
	}
	return nil
}
