package layout

import (
	"errors"

	"github.com/isqad/livelook-grid/internal/core"
)

// ErrInconsistentPin is reported when the focused view is not in the roster
var ErrInconsistentPin = errors.New("focused participant is not in the roster")

// Projection is the projected roster. StaleFocus is set when the focus
// pointed to a view absent from the roster and was therefore ignored.
type Projection struct {
	Views      []core.ParticipantView
	StaleFocus bool
}

func (p Projection) Len() int {
	return len(p.Views)
}

// Project derives the roster to display: remote participants without the
// hidden ones, the local user, one extra presenter view per screen sharing
// participant, minus the view already shown in the large slot. An empty
// focusedID means nothing is focused.
func Project(participants []core.Participant, localUser core.Identity, presenterIDs []string, focusedID string, isPresenterFocused bool) Projection {
	views := make([]core.ParticipantView, 0, len(participants)+len(presenterIDs)+1)

	for _, p := range participants {
		if p.Hidden || (localUser.ID != "" && p.ID == localUser.ID) {
			continue
		}
		views = append(views, core.ViewOf(p))
	}
	if localUser.ID != "" {
		views = append(views, core.ParticipantView{
			ID:      localUser.ID,
			User:    localUser,
			IsLocal: true,
		})
	}

	if len(presenterIDs) > 0 {
		presenting := make(map[string]struct{}, len(presenterIDs))
		for _, id := range presenterIDs {
			presenting[id] = struct{}{}
		}

		camera := len(views)
		for i := 0; i < camera; i++ {
			if _, ok := presenting[views[i].ID]; !ok {
				continue
			}
			presenter := views[i]
			presenter.IsPresenter = true
			views = append(views, presenter)
		}
	}

	if focusedID == "" {
		return Projection{Views: views}
	}

	focused := core.ViewKey{ID: focusedID, Presenter: isPresenterFocused}
	filtered := views[:0:0]
	found := false
	for _, v := range views {
		if v.Key() == focused {
			found = true
			continue
		}
		filtered = append(filtered, v)
	}
	if !found {
		return Projection{Views: views, StaleFocus: true}
	}

	return Projection{Views: filtered}
}
