package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/engine"
	"github.com/isqad/livelook-grid/internal/service"
)

// RoomsSnapshotter gives the current layout of a room
type RoomsSnapshotter interface {
	Snapshot(roomID string) (*service.RoomSnapshot, error)
}

// AppOptions is options of the application
type AppOptions struct {
	Layout      engine.Config
	Rooms       RoomsSnapshotter
	Preferences core.PreferencesStorer

	router *chi.Mux
}

// App is application for API
type App struct {
	AppOptions
}

// NewApp creates a new API application
func NewApp(options AppOptions) *App {
	options.router = chi.NewRouter()

	app := &App{
		options,
	}
	return app
}

// Router is function for construct http router
func (app *App) Router() http.Handler {
	app.router.Route("/", func(r chi.Router) {
		// Stateless calculators
		r.Post("/viewport", ViewportHandler(app.Layout))
		r.Post("/geometry", GeometryHandler(app.Layout))
		r.Post("/window", WindowHandler(app.Layout))

		if app.Rooms != nil {
			r.Get("/rooms/{id}/layout", RoomLayoutHandler(app.Rooms))
		}

		if app.Preferences != nil {
			r.Get("/preferences/{userID}", PreferencesShowHandler(app.Preferences))
			r.Put("/preferences/{userID}", PreferencesUpdateHandler(app.Preferences))
		}
	})

	return app.router
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Str("service", "web").Msg("can't encode response")
	}
}
