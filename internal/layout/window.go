package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/isqad/livelook-grid/internal/core"
)

const (
	// DefaultWindowSize is the number of rows mounted at once
	DefaultWindowSize = 4
	// DefaultRowGap separates two rows of the participant pane
	DefaultRowGap = 10.0
)

// Window is the half-open range [Start, End) of mounted roster entries
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (w Window) Len() int {
	return w.End - w.Start
}

func (w Window) Empty() bool {
	return w.Len() <= 0
}

func (w Window) Contains(i int) bool {
	return i >= w.Start && i < w.End
}

// ComputeWindow maps the scroll offset to the mounted range. The range always
// has min(windowSize, rosterLength) entries and stays inside the roster.
// rowHeight must be positive.
func ComputeWindow(rosterLength int, scrollOffset, rowHeight float64, windowSize int) Window {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if rosterLength <= 0 {
		return Window{}
	}

	maxStart := rosterLength - windowSize
	if maxStart < 0 {
		maxStart = 0
	}

	// clamp as float first, huge offsets overflow int
	row := 0.0
	if rowHeight > 0 && scrollOffset > 0 {
		row = math.Floor(scrollOffset / rowHeight)
	}
	if math.IsNaN(row) || row < 0 {
		row = 0
	}
	if row > float64(maxStart) {
		row = float64(maxStart)
	}
	start := int(row)

	end := start + windowSize
	if end > rosterLength {
		end = rosterLength
	}

	return Window{Start: start, End: end}
}

// RowHeight splits the panel into windowSize rows
func RowHeight(panelHeight float64, windowSize int) float64 {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return panelHeight / float64(windowSize)
}

// IdentityKey fingerprints the membership of the projected roster. Two
// rosters with the same ordered views have the same key no matter how
// the participants' tracks changed.
func IdentityKey(views []core.ParticipantView) string {
	var sb strings.Builder
	for _, v := range views {
		sb.WriteString(strconv.Quote(v.ID))
		if v.IsPresenter {
			sb.WriteString("+p")
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

// Scroller keeps the window of one participant pane
type Scroller struct {
	size      int
	rowHeight float64
	offset    float64
	length    int
	identity  string
	window    Window
}

func NewScroller(windowSize int) *Scroller {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Scroller{size: windowSize}
}

func (s *Scroller) Size() int {
	return s.size
}

func (s *Scroller) Window() Window {
	return s.window
}

func (s *Scroller) Offset() float64 {
	return s.offset
}

// SetRoster resets the window to the first rows when the roster membership
// changed and reports whether it did
func (s *Scroller) SetRoster(views []core.ParticipantView) bool {
	identity := IdentityKey(views)
	if identity == s.identity && len(views) == s.length {
		return false
	}

	s.identity = identity
	s.length = len(views)
	s.offset = 0
	s.window = ComputeWindow(s.length, 0, s.rowHeight, s.size)

	return true
}

func (s *Scroller) SetRowHeight(rowHeight float64) Window {
	s.rowHeight = rowHeight
	s.window = ComputeWindow(s.length, s.offset, s.rowHeight, s.size)
	return s.window
}

func (s *Scroller) Scroll(offset float64) Window {
	if offset < 0 || math.IsNaN(offset) {
		offset = 0
	}
	s.offset = offset
	s.window = ComputeWindow(s.length, s.offset, s.rowHeight, s.size)
	return s.window
}
