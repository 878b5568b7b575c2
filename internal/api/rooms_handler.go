package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isqad/livelook-grid/internal/service"
)

// RoomLayoutHandler shows the layout state, the roster and the clients count of a room
func RoomLayoutHandler(rooms RoomsSnapshotter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "id")

		snapshot, err := rooms.Snapshot(roomID)
		if err != nil {
			if errors.Is(err, service.ErrRoomNotFound) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			log.Error().Err(err).Str("service", "web").Str("room", roomID).Msg("can't snapshot room")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, snapshot)
	}
}
