package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/layout"
)

var viewportCommand = &cli.Command{
	Name:  "viewport",
	Usage: "size the conference viewport for a document",
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "width", Required: true},
		&cli.Float64Flag{Name: "height", Required: true},
		&cli.StringFlag{Name: "mode", Value: string(core.NormalMode)},
		&cli.StringFlag{Name: "type", Value: string(core.GridLayout)},
		&cli.IntFlag{Name: "count", Value: 2, Usage: "participants count"},
	},
	Action: func(c *cli.Context) error {
		mode := core.LayoutMode(c.String("mode"))
		if err := mode.Validate(); err != nil {
			return err
		}
		layoutType := core.LayoutType(c.String("type"))
		if err := layoutType.Validate(); err != nil {
			return err
		}

		vp := layout.ComputeViewport(c.Float64("width"), c.Float64("height"), mode, layoutType, c.Int("count"))
		renderViewport(c.App.Writer, vp, layout.HasSideRail(mode, layoutType, c.Int("count")))
		return nil
	},
}

func renderViewport(w io.Writer, vp layout.Viewport, sideRail bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Width", "Height", "Side rail"})
	table.Append([]string{humanize.FtoaWithDigits(vp.Width, 2), humanize.FtoaWithDigits(vp.Height, 2), fmt.Sprint(sideRail)})
	table.Render()
}

var windowCommand = &cli.Command{
	Name:  "window",
	Usage: "compute the visible window of the participants panel",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "length", Required: true, Usage: "roster length"},
		&cli.Float64Flag{Name: "offset", Usage: "scroll offset"},
		&cli.Float64Flag{Name: "panel-height", Required: true},
		&cli.IntFlag{Name: "size", Value: layout.DefaultWindowSize, Usage: "window size"},
	},
	Action: func(c *cli.Context) error {
		rowHeight := layout.RowHeight(c.Float64("panel-height"), c.Int("size"))
		window := layout.ComputeWindow(c.Int("length"), c.Float64("offset"), rowHeight, c.Int("size"))

		renderWindow(c.App.Writer, window, rowHeight, rowHeight-layout.DefaultRowGap)
		return nil
	},
}

func renderWindow(w io.Writer, window layout.Window, rowHeight, tileHeight float64) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Start", "End", "Visible", "Row height", "Tile height"})
	table.Append([]string{
		humanize.Comma(int64(window.Start)),
		humanize.Comma(int64(window.End)),
		humanize.Comma(int64(window.Len())),
		humanize.FtoaWithDigits(rowHeight, 2),
		humanize.FtoaWithDigits(tileHeight, 2),
	})
	table.Render()
}

var geometryCommand = &cli.Command{
	Name:  "geometry",
	Usage: "compute the stream geometry of a tile",
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "tile-width", Required: true},
		&cli.Float64Flag{Name: "tile-height", Required: true},
		&cli.Float64Flag{Name: "viewport-width", Required: true},
		&cli.Float64Flag{Name: "viewport-height", Required: true},
		&cli.BoolFlag{Name: "presenter"},
		&cli.BoolFlag{Name: "speaker", Usage: "tile of the active speaker"},
		&cli.StringFlag{Name: "device", Value: string(layout.Desktop)},
	},
	Action: func(c *cli.Context) error {
		device, err := layout.ParseDeviceClass(c.String("device"))
		if err != nil {
			return err
		}

		vp := layout.Viewport{Width: c.Float64("viewport-width"), Height: c.Float64("viewport-height")}
		g := layout.GeometryCalculator{SpeakerBorder: layout.DefaultSpeakerBorder}.
			ComputeTileGeometry(c.Float64("tile-width"), c.Float64("tile-height"), vp, c.Bool("presenter"), c.Bool("speaker"), device)

		renderGeometry(c.App.Writer, g)
		return nil
	},
}

func renderGeometry(w io.Writer, g layout.TileGeometry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Tile", "Stream height", "Offset", "Container width"})
	table.Append([]string{
		humanize.FtoaWithDigits(g.TileWidth, 2) + "x" + humanize.FtoaWithDigits(g.TileHeight, 2),
		humanize.FtoaWithDigits(g.StreamHeight, 2),
		humanize.FtoaWithDigits(g.HorizontalOffset, 2),
		g.ContainerWidth.String(),
	})
	table.Render()
}
