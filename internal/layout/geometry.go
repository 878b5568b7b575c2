package layout

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// AspectRatio of every video stream
const AspectRatio = 16.0 / 9.0

// DefaultSpeakerBorder is the width of the active speaker highlight
const DefaultSpeakerBorder = 3.0

var errMalformedLength = errors.New("length must be in px or %")

// Length is a CSS length: pixels or a percentage of the tile
type Length struct {
	Value   float64
	Percent bool
}

func Pixels(v float64) Length {
	return Length{Value: v}
}

func FullWidth() Length {
	return Length{Value: 100, Percent: true}
}

func (l Length) String() string {
	if l.Percent {
		return strconv.FormatFloat(l.Value, 'f', -1, 64) + "%"
	}
	return strconv.FormatFloat(l.Value, 'f', 2, 64) + "px"
}

func (l Length) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Length) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLength(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLength reads the String form back
func ParseLength(s string) (Length, error) {
	l := Length{}
	switch {
	case strings.HasSuffix(s, "%"):
		l.Percent = true
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	default:
		return Length{}, errMalformedLength
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}, errMalformedLength
	}
	l.Value = v
	return l, nil
}

// StreamGeometry is the size of the video element inside its tile
type StreamGeometry struct {
	StreamHeight     float64 `json:"stream_height"`
	HorizontalOffset float64 `json:"horizontal_offset"`
}

// TileGeometry is everything a tile renderer needs to place the stream
type TileGeometry struct {
	TileWidth        float64 `json:"tile_width"`
	TileHeight       float64 `json:"tile_height"`
	StreamHeight     float64 `json:"stream_height"`
	HorizontalOffset float64 `json:"horizontal_offset"`
	ContainerWidth   Length  `json:"container_width"`
}

// GeometryCalculator computes stream geometry. The zero value has no
// speaker border inset.
type GeometryCalculator struct {
	SpeakerBorder float64
}

var defaultCalculator = GeometryCalculator{SpeakerBorder: DefaultSpeakerBorder}

func ComputeStreamGeometry(tileWidth, tileHeight, viewportWidth, viewportHeight float64, isPresenter, isActiveSpeaker bool) StreamGeometry {
	return defaultCalculator.ComputeStreamGeometry(tileWidth, tileHeight, viewportWidth, viewportHeight, isPresenter, isActiveSpeaker)
}

// ComputeStreamGeometry keeps the 16:9 ratio. Presenter tiles are contained
// by the tile width so the whole shared screen is visible. Regular tiles fill
// the tile height and may overflow horizontally, the offset centers them.
// All dimensions must be positive.
func (c GeometryCalculator) ComputeStreamGeometry(tileWidth, tileHeight, viewportWidth, viewportHeight float64, isPresenter, isActiveSpeaker bool) StreamGeometry {
	var streamHeight float64

	if isPresenter {
		streamHeight = math.Min(tileHeight, tileWidth/AspectRatio)
	} else {
		inset := 0.0
		if isActiveSpeaker {
			inset = 2 * c.SpeakerBorder
		}
		streamHeight = math.Min(tileHeight-inset, viewportWidth/AspectRatio)
	}
	streamHeight = math.Max(math.Min(streamHeight, viewportHeight), 0)

	return StreamGeometry{
		StreamHeight:     streamHeight,
		HorizontalOffset: (tileWidth - streamHeight*AspectRatio) / 2,
	}
}

// ContainerWidth is the width of the element holding the stream. Presenter
// tiles on phones and tablets always take the whole tile.
func ContainerWidth(streamHeight float64, isPresenter bool, device DeviceClass) Length {
	if isPresenter && device.IsMobileOrTab() {
		return FullWidth()
	}
	return Pixels(streamHeight * AspectRatio)
}

// ComputeTileGeometry resolves the geometry of one tile of the given box
func (c GeometryCalculator) ComputeTileGeometry(tileWidth, tileHeight float64, viewport Viewport, isPresenter, isActiveSpeaker bool, device DeviceClass) TileGeometry {
	stream := c.ComputeStreamGeometry(tileWidth, tileHeight, viewport.Width, viewport.Height, isPresenter, isActiveSpeaker)
	container := ContainerWidth(stream.StreamHeight, isPresenter, device)

	offset := stream.HorizontalOffset
	if container.Percent {
		offset = 0
	}

	return TileGeometry{
		TileWidth:        tileWidth,
		TileHeight:       tileHeight,
		StreamHeight:     stream.StreamHeight,
		HorizontalOffset: offset,
		ContainerWidth:   container,
	}
}
