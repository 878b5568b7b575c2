package layout

import (
	"fmt"
	"testing"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/stretchr/testify/assert"
)

var mockLocalUser = core.Identity{ID: "me", Name: "Me"}

func mockParticipants(ids ...string) []core.Participant {
	participants := make([]core.Participant, 0, len(ids))
	for _, id := range ids {
		participants = append(participants, core.Participant{
			ID:   id,
			User: core.Identity{ID: id, Name: "user " + id},
		})
	}
	return participants
}

func viewKeys(p Projection) []core.ViewKey {
	keys := make([]core.ViewKey, 0, p.Len())
	for _, v := range p.Views {
		keys = append(keys, v.Key())
	}
	return keys
}

func TestProjectSkipsHiddenAndAppendsLocal(t *testing.T) {
	participants := mockParticipants("a", "b", "c")
	participants[1].Hidden = true

	p := Project(participants, mockLocalUser, nil, "", false)

	assert.False(t, p.StaleFocus)
	assert.Equal(t, []core.ViewKey{{ID: "a"}, {ID: "c"}, {ID: "me"}}, viewKeys(p))
	assert.True(t, p.Views[2].IsLocal)
	assert.Equal(t, "Me", p.Views[2].User.Name)
}

func TestProjectDoesNotDuplicateLocal(t *testing.T) {
	participants := mockParticipants("a", "me")

	p := Project(participants, mockLocalUser, nil, "", false)
	assert.Equal(t, []core.ViewKey{{ID: "a"}, {ID: "me"}}, viewKeys(p))
}

func TestProjectAppendsPresentersInRosterOrder(t *testing.T) {
	p := Project(mockParticipants("a", "b", "c"), mockLocalUser, []string{"me", "c", "a"}, "", false)

	assert.Equal(t, []core.ViewKey{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "me"},
		{ID: "a", Presenter: true}, {ID: "c", Presenter: true}, {ID: "me", Presenter: true},
	}, viewKeys(p))
}

func TestProjectPresenterFocus(t *testing.T) {
	p := Project(mockParticipants("a", "b"), mockLocalUser, []string{"b"}, "b", true)

	assert.False(t, p.StaleFocus)
	assert.Equal(t, []core.ViewKey{{ID: "a"}, {ID: "b"}, {ID: "me"}}, viewKeys(p))
}

func TestProjectCameraFocus(t *testing.T) {
	p := Project(mockParticipants("a", "b"), mockLocalUser, []string{"b"}, "b", false)

	assert.Equal(t, []core.ViewKey{{ID: "a"}, {ID: "me"}, {ID: "b", Presenter: true}}, viewKeys(p))
}

func TestProjectStaleFocus(t *testing.T) {
	p := Project(mockParticipants("a", "b"), mockLocalUser, nil, "gone", false)

	assert.True(t, p.StaleFocus)
	assert.Equal(t, 3, p.Len())

	// presenter focus on someone who stopped sharing
	p = Project(mockParticipants("a", "b"), mockLocalUser, nil, "a", true)
	assert.True(t, p.StaleFocus)
	assert.Equal(t, 3, p.Len())
}

func TestProjectWithoutLocalUser(t *testing.T) {
	p := Project(mockParticipants("a"), core.Identity{}, nil, "", false)
	assert.Equal(t, []core.ViewKey{{ID: "a"}}, viewKeys(p))

	p = Project(nil, core.Identity{}, nil, "", false)
	assert.Equal(t, 0, p.Len())
}

func TestProjectNoDuplicatesWithFocus(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "me"}
	for _, focused := range ids {
		for _, presenterFocus := range []bool{true, false} {
			p := Project(mockParticipants("a", "b", "c", "d"), mockLocalUser, []string{"b", focused}, focused, presenterFocus)

			seen := map[core.ViewKey]bool{}
			for _, key := range viewKeys(p) {
				assert.False(t, seen[key], fmt.Sprintf("duplicate %v", key))
				seen[key] = true
			}
			assert.False(t, seen[core.ViewKey{ID: focused, Presenter: presenterFocus}])
		}
	}
}
