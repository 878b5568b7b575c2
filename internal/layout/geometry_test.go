package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenterStreamIsContainedByTile(t *testing.T) {
	g := ComputeStreamGeometry(1280, 900, 1280, 808, true, false)

	assert.InDelta(t, 720.0, g.StreamHeight, 0.001)
	assert.InDelta(t, 0.0, g.HorizontalOffset, 0.001)

	narrow := ComputeStreamGeometry(218, 200, 1382, 808, true, true)
	assert.InDelta(t, 122.625, narrow.StreamHeight, 0.001)
	assert.InDelta(t, 0.0, narrow.HorizontalOffset, 0.001)
}

func TestRegularStreamFillsTileHeight(t *testing.T) {
	g := ComputeStreamGeometry(218, 192, 1382, 808, false, false)

	assert.Equal(t, 192.0, g.StreamHeight)
	assert.InDelta(t, (218-192*AspectRatio)/2, g.HorizontalOffset, 0.001)
	assert.Less(t, g.HorizontalOffset, 0.0)
}

func TestActiveSpeakerKeepsBorderVisible(t *testing.T) {
	quiet := ComputeStreamGeometry(218, 192, 1382, 808, false, false)
	speaking := ComputeStreamGeometry(218, 192, 1382, 808, false, true)

	assert.Equal(t, quiet.StreamHeight-2*DefaultSpeakerBorder, speaking.StreamHeight)

	noBorder := GeometryCalculator{}
	assert.Equal(t, quiet, noBorder.ComputeStreamGeometry(218, 192, 1382, 808, false, true))
}

func TestStreamClampedByViewport(t *testing.T) {
	g := ComputeStreamGeometry(1600, 1000, 1600, 500, false, false)
	assert.Equal(t, 500.0, g.StreamHeight)

	g = ComputeStreamGeometry(1600, 1000, 320, 900, false, false)
	assert.InDelta(t, 180.0, g.StreamHeight, 0.001)
}

func TestStreamHeightNeverNegative(t *testing.T) {
	g := ComputeStreamGeometry(218, 4, 1382, 808, false, true)
	assert.Equal(t, 0.0, g.StreamHeight)
	assert.Equal(t, 109.0, g.HorizontalOffset)
}

func TestStreamHeightMonotonicInTileHeight(t *testing.T) {
	for _, presenter := range []bool{true, false} {
		prev := -1.0
		for h := 0.0; h <= 1200; h += 7.5 {
			g := ComputeStreamGeometry(640, h, 1382, 808, presenter, false)
			assert.GreaterOrEqual(t, g.StreamHeight, prev)
			prev = g.StreamHeight
		}
	}
}

func TestContainerWidth(t *testing.T) {
	assert.Equal(t, FullWidth(), ContainerWidth(120, true, Mobile))
	assert.Equal(t, FullWidth(), ContainerWidth(120, true, Tablet))
	assert.Equal(t, Pixels(120*AspectRatio), ContainerWidth(120, true, Desktop))
	assert.Equal(t, Pixels(90*AspectRatio), ContainerWidth(90, false, Mobile))
}

func TestComputeTileGeometryOnMobilePresenter(t *testing.T) {
	calc := GeometryCalculator{SpeakerBorder: DefaultSpeakerBorder}
	g := calc.ComputeTileGeometry(218, 200, Viewport{Width: 1382, Height: 808}, true, false, Mobile)

	assert.True(t, g.ContainerWidth.Percent)
	assert.Equal(t, 0.0, g.HorizontalOffset)
	assert.Equal(t, 218.0, g.TileWidth)
	assert.Equal(t, 200.0, g.TileHeight)
}

func TestLengthJSON(t *testing.T) {
	b, err := json.Marshal(TileGeometry{ContainerWidth: FullWidth()})
	assert.Nil(t, err)
	assert.Contains(t, string(b), `"container_width":"100%"`)

	assert.Equal(t, "341.33px", Pixels(192*AspectRatio).String())
}

func TestParseLength(t *testing.T) {
	l, err := ParseLength("341.33px")
	assert.Nil(t, err)
	assert.Equal(t, Length{Value: 341.33}, l)

	l, err = ParseLength("100%")
	assert.Nil(t, err)
	assert.Equal(t, FullWidth(), l)

	_, err = ParseLength("12em")
	assert.Equal(t, errMalformedLength, err)

	g := TileGeometry{}
	assert.Nil(t, json.Unmarshal([]byte(`{"container_width":"100%"}`), &g))
	assert.Equal(t, FullWidth(), g.ContainerWidth)
}
