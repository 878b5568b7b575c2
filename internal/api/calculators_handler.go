package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/engine"
	"github.com/isqad/livelook-grid/internal/layout"
)

var (
	errNonPositiveSize = errors.New("sizes must be positive")
	errNegativeCount   = errors.New("counts must not be negative")
)

type ViewportRequest struct {
	DocumentWidth    float64         `json:"document_width"`
	DocumentHeight   float64         `json:"document_height"`
	Mode             core.LayoutMode `json:"mode"`
	Type             core.LayoutType `json:"type"`
	ParticipantCount int             `json:"participant_count"`
}

func (req ViewportRequest) Validate() error {
	if req.DocumentWidth <= 0 || req.DocumentHeight <= 0 {
		return errNonPositiveSize
	}
	if req.ParticipantCount < 0 {
		return errNegativeCount
	}
	if err := req.Mode.Validate(); err != nil {
		return err
	}
	return req.Type.Validate()
}

type ViewportResponse struct {
	Viewport    layout.Viewport `json:"viewport"`
	HasSideRail bool            `json:"has_side_rail"`
}

func ViewportHandler(cfg engine.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := ViewportRequest{Mode: core.NormalMode, Type: core.GridLayout}
		if !decodeRequest(w, r, &req) {
			return
		}

		writeJSON(w, ViewportResponse{
			Viewport:    cfg.Chrome.ComputeViewport(req.DocumentWidth, req.DocumentHeight, req.Mode, req.Type, req.ParticipantCount),
			HasSideRail: layout.HasSideRail(req.Mode, req.Type, req.ParticipantCount),
		})
	}
}

type GeometryRequest struct {
	TileWidth       float64            `json:"tile_width"`
	TileHeight      float64            `json:"tile_height"`
	Viewport        layout.Viewport    `json:"viewport"`
	IsPresenter     bool               `json:"is_presenter"`
	IsActiveSpeaker bool               `json:"is_active_speaker"`
	Device          layout.DeviceClass `json:"device"`
}

func (req GeometryRequest) Validate() error {
	if req.TileWidth <= 0 || req.TileHeight <= 0 || req.Viewport.Width <= 0 || req.Viewport.Height <= 0 {
		return errNonPositiveSize
	}
	_, err := layout.ParseDeviceClass(string(req.Device))
	return err
}

func GeometryHandler(cfg engine.Config) http.HandlerFunc {
	calc := layout.GeometryCalculator{SpeakerBorder: cfg.SpeakerBorder}

	return func(w http.ResponseWriter, r *http.Request) {
		req := GeometryRequest{}
		if !decodeRequest(w, r, &req) {
			return
		}
		device, _ := layout.ParseDeviceClass(string(req.Device))

		writeJSON(w, calc.ComputeTileGeometry(req.TileWidth, req.TileHeight, req.Viewport, req.IsPresenter, req.IsActiveSpeaker, device))
	}
}

type WindowRequest struct {
	RosterLength int     `json:"roster_length"`
	ScrollOffset float64 `json:"scroll_offset"`
	PanelHeight  float64 `json:"panel_height"`
	WindowSize   int     `json:"window_size"`
}

func (req WindowRequest) Validate() error {
	if req.RosterLength < 0 || req.WindowSize < 0 {
		return errNegativeCount
	}
	if req.PanelHeight <= 0 {
		return errNonPositiveSize
	}
	return nil
}

type WindowResponse struct {
	Window     layout.Window `json:"window"`
	RowHeight  float64       `json:"row_height"`
	TileHeight float64       `json:"tile_height"`
}

func WindowHandler(cfg engine.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := WindowRequest{}
		if !decodeRequest(w, r, &req) {
			return
		}

		size := req.WindowSize
		if size == 0 {
			size = cfg.WindowSize
		}
		rowHeight := layout.RowHeight(req.PanelHeight, size)
		tileHeight := rowHeight - cfg.RowGap
		if tileHeight < 0 {
			tileHeight = 0
		}

		writeJSON(w, WindowResponse{
			Window:     layout.ComputeWindow(req.RosterLength, req.ScrollOffset, rowHeight, size),
			RowHeight:  rowHeight,
			TileHeight: tileHeight,
		})
	}
}

type validator interface {
	Validate() error
}

func decodeRequest(w http.ResponseWriter, r *http.Request, req validator) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error().Err(err).Str("service", "web").Msg("can't parse request")
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	if err := req.Validate(); err != nil {
		log.Error().Err(err).Str("service", "web").Msg("invalid request")
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	return true
}
