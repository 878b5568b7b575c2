package ws

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/isqad/melody"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/engine"
	"github.com/isqad/livelook-grid/internal/layout"
)

// Rooms is what the websocket clients need from the rooms of the node
type Rooms interface {
	Attach(roomID, clientID, userID string, device layout.DeviceClass, sink engine.Sink) error
	Detach(roomID, clientID string)
	Scroll(roomID, clientID string, offset float64) error
	SetDeviceClass(roomID, clientID string, device layout.DeviceClass) error
	SetWindowSize(roomID, clientID string, size int) error
}

// WsAppOptions is options of the application
type WsAppOptions struct {
	Env            core.Environment
	Address        string
	Rooms          Rooms
	Dispatcher     *engine.ResizeDispatcher
	Preferences    core.PreferencesStorer
	ResizeDebounce time.Duration
	// API is mounted at /api/v1 when set
	API http.Handler
	// OnShutdown runs once the HTTP server stopped accepting connections
	OnShutdown func()

	websocket   *melody.Melody
	connections *atomic.Int64
}

// WsApp is application for Websocket server
type WsApp struct {
	WsAppOptions
}

func New(options WsAppOptions) *WsApp {
	options.websocket = melody.New()
	options.websocket.Config.MaxMessageSize = 4 * 1024
	options.connections = atomic.NewInt64(0)

	app := &WsApp{
		options,
	}
	return app
}

// Connections is the number of open websocket sessions
func (app *WsApp) Connections() int64 {
	return app.connections.Load()
}

func (app *WsApp) Start() error {
	quit := make(chan os.Signal, 1)
	done := make(chan struct{}, 1)

	app.initLogger()
	router := app.Router()

	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	server := &http.Server{
		Addr:              app.Address,
		Handler:           router,
		ReadHeaderTimeout: 1 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Warn().Msg("received signal to terminate the server")

		if err := app.websocket.Close(); err != nil {
			log.Error().Err(err).Str("service", "ws").Msg("can't close websocket sessions")
		}
		if app.OnShutdown != nil {
			app.OnShutdown()
		}

		log.Info().Msg("all services are stopped")
		close(done)
	})

	// Shutdown the HTTP server
	go func() {
		<-quit
		log.Warn().Msg("the server is going shutting down")

		// Wait 20 seconds for close http connections
		waitIdleConnCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(waitIdleConnCtx); err != nil {
			log.Fatal().Err(err).Msg("can't gracefully shutdown the server")
		}
	}()

	log.Info().Str("service", "ws").Str("address", app.Address).Msg("listen")

	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server has been closed immediatelly")
	}

	<-done
	log.Info().Msg("server stopped")

	return nil
}

func (app *WsApp) initLogger() {
	cw := zerolog.NewConsoleWriter()
	log.Logger = log.Output(cw)

	zerolog.SetGlobalLevel(app.Env.LogLevel())
}

// Router is function for construct http router
func (app *WsApp) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	app.websocket.HandleConnect(app.ConnectHandler())
	app.websocket.HandleDisconnect(app.DisconnectHandler())
	app.websocket.HandleMessage(app.HandleMessage())
	app.websocket.HandleError(func(s *melody.Session, err error) {
		log.Error().Err(err).Str("service", "ws").Msg("error in websocket session")
	})

	r.Get("/ws", WsHandler(app.websocket, app.ResizeDebounce))
	r.Handle("/metrics", promhttp.Handler())

	if app.API != nil {
		r.Mount("/api/v1", app.API)
	}

	return r
}
