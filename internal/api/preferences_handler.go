package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isqad/livelook-grid/internal/core"
)

func PreferencesShowHandler(preferences core.PreferencesStorer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		prefs, err := preferences.Find(userID)
		if err != nil {
			if errors.Is(err, core.ErrPreferencesNotFound) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			log.Error().Err(err).Str("service", "web").Str("userID", userID).Msg("can't find preferences")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, prefs)
	}
}

func PreferencesUpdateHandler(preferences core.PreferencesStorer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		prefs := &core.LayoutPreferences{}
		if err := json.NewDecoder(r.Body).Decode(prefs); err != nil {
			log.Error().Err(err).Str("service", "web").Msg("can't parse preferences")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		prefs.UserID = userID

		if err := prefs.Validate(); err != nil {
			log.Error().Err(err).Str("service", "web").Str("userID", userID).Msg("invalid preferences")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		saved, err := preferences.Save(prefs)
		if err != nil {
			log.Error().Err(err).Str("service", "web").Str("userID", userID).Msg("can't save preferences")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		writeJSON(w, saved)
	}
}
