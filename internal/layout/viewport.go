package layout

import "github.com/isqad/livelook-grid/internal/core"

// Viewport is the usable area of the conference screen in pixels
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Chrome is the space reserved around the tiles: toolbars in the normal and
// the full screen modes and the side rail of the speaker layouts
type Chrome struct {
	FullScreen float64
	Normal     float64
	SideRail   float64
}

var DefaultChrome = Chrome{
	FullScreen: 108,
	Normal:     92,
	SideRail:   218,
}

// ComputeViewport sizes the viewport with the default chrome
func ComputeViewport(documentWidth, documentHeight float64, mode core.LayoutMode, layoutType core.LayoutType, participantCount int) Viewport {
	return DefaultChrome.ComputeViewport(documentWidth, documentHeight, mode, layoutType, participantCount)
}

// ComputeViewport applies the rules in priority order, the first match wins.
// A single participant outside the presentation layout gets a centered 16:9 box.
func (c Chrome) ComputeViewport(documentWidth, documentHeight float64, mode core.LayoutMode, layoutType core.LayoutType, participantCount int) Viewport {
	if mode == core.FullScreenMode {
		return Viewport{
			Width:  documentWidth,
			Height: documentHeight - c.FullScreen,
		}
	}

	height := documentHeight - c.Normal

	if participantCount == 1 && layoutType != core.PresentationLayout {
		return Viewport{
			Width:  height * AspectRatio,
			Height: height,
		}
	}

	if layoutType == core.GridLayout {
		return Viewport{
			Width:  documentWidth,
			Height: height,
		}
	}

	return Viewport{
		Width:  documentWidth - c.SideRail,
		Height: height,
	}
}

// HasSideRail reports whether the participant pane lives in the side rail
func HasSideRail(mode core.LayoutMode, layoutType core.LayoutType, participantCount int) bool {
	if mode == core.FullScreenMode || layoutType == core.GridLayout {
		return false
	}
	return participantCount != 1 || layoutType == core.PresentationLayout
}
