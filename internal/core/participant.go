package core

// Identity is the display identity of a participant
type Identity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Participant is a member of the conference as reported by the signaling layer.
// Hidden participants (recorders, transcribers) are never displayed.
type Participant struct {
	ID      string   `json:"id"`
	User    Identity `json:"user"`
	IsLocal bool     `json:"is_local,omitempty"`
	Hidden  bool     `json:"hidden,omitempty"`
}

// ParticipantView is one entry of the projected roster. A participant that
// shares the screen yields two views: the camera one and the presenter one.
type ParticipantView struct {
	ID          string   `json:"id"`
	User        Identity `json:"user"`
	IsLocal     bool     `json:"is_local,omitempty"`
	IsPresenter bool     `json:"is_presenter,omitempty"`
}

// ViewKey identifies a view inside the projected roster
type ViewKey struct {
	ID        string
	Presenter bool
}

func (v ParticipantView) Key() ViewKey {
	return ViewKey{ID: v.ID, Presenter: v.IsPresenter}
}

// ViewOf builds the camera view of the participant
func ViewOf(p Participant) ParticipantView {
	return ParticipantView{
		ID:      p.ID,
		User:    p.User,
		IsLocal: p.IsLocal,
	}
}
