// Package controller owns "which filter mode is active", multiplexes
// the four authoring engines, and defines the lifecycle shared by all
// of them: drafts are edited freely, then validated and applied as one
// atomic commit.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/paulmach/orb/geojson"

	"github.com/arealab/geofilter/internal/boundary"
	"github.com/arealab/geofilter/internal/draw"
	"github.com/arealab/geofilter/internal/event"
	"github.com/arealab/geofilter/internal/geom"
	"github.com/arealab/geofilter/internal/isochrone"
	"github.com/arealab/geofilter/internal/maplayer"
	"github.com/arealab/geofilter/internal/radius"
)

// Mode identifies one of the four filter authoring modes.
type Mode string

const (
	ModeSearch    Mode = "search" // administrative boundary multi-select
	ModeDraw      Mode = "draw"
	ModeIsochrone Mode = "isochrone"
	ModeRadius    Mode = "radius"
)

// Valid reports whether m names a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeSearch, ModeDraw, ModeIsochrone, ModeRadius:
		return true
	}
	return false
}

var (
	ErrNoActiveMode = errors.New("no active mode")
	ErrEmptyDraft   = errors.New("nothing to apply: draft is empty")
)

// AppliedFilter is the committed location filter consumed by the search
// pipeline. Slots from different modes may coexist once applied; only
// one mode's editor is open at a time.
type AppliedFilter struct {
	Polygons   []geom.Polygon      `json:"polygons,omitempty"`
	Isochrone  *isochrone.Result   `json:"isochrone,omitempty"`
	Radius     *radius.Result      `json:"radius,omitempty"`
	Boundaries []geom.BoundaryItem `json:"boundaries,omitempty"`
}

// Config wires a controller.
type Config struct {
	Draw      *draw.Engine
	Isochrone *isochrone.Engine
	Radius    *radius.Engine
	Selection *boundary.Selection
	Layers    *maplayer.Synchronizer
	Bus       *event.Bus
	Log       logr.Logger
}

// Controller is the single owner of the nullable active-mode field.
// Each engine keeps its own draft, so switching modes and back restores
// the prior draft exactly.
type Controller struct {
	draw      *draw.Engine
	isochrone *isochrone.Engine
	radius    *radius.Engine
	selection *boundary.Selection
	layers    *maplayer.Synchronizer
	bus       *event.Bus
	log       logr.Logger

	mu      sync.Mutex
	active  Mode
	open    bool
	applied AppliedFilter
}

// New creates a controller with no active mode.
func New(cfg Config) *Controller {
	return &Controller{
		draw:      cfg.Draw,
		isochrone: cfg.Isochrone,
		radius:    cfg.Radius,
		selection: cfg.Selection,
		layers:    cfg.Layers,
		bus:       cfg.Bus,
		log:       cfg.Log,
	}
}

// SetMode switches which single mode editor is open. Drafts are never
// reset by switching; an in-flight isochrone request is discarded when
// the user leaves that mode.
func (c *Controller) SetMode(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}

	c.mu.Lock()
	prev, wasOpen := c.active, c.open
	c.active = mode
	c.open = true
	c.mu.Unlock()

	if wasOpen && prev == ModeIsochrone && mode != ModeIsochrone {
		c.isochrone.Cancel()
	}
	if wasOpen && prev == ModeSearch && mode != ModeSearch {
		c.layers.DisableClicks(maplayer.KindBoundaries)
	}
	if mode == ModeSearch {
		// Boundary toggles only fire while the search editor is open.
		// The boundary layers may not exist yet; the registration
		// covers features that arrive later.
		c.layers.EnableClicks(maplayer.KindBoundaries, c.boundaryClick)
	}
	return nil
}

// ActiveMode returns the open editor's mode, if any.
func (c *Controller) ActiveMode() (Mode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.open
}

// ApplyActive validates the active mode's draft and, on success, copies
// it into the applied filter's slot for that mode type. Validation
// failure aborts the apply and leaves both draft and applied state
// unchanged; nothing ever partially commits.
func (c *Controller) ApplyActive() error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrNoActiveMode
	}
	mode := c.active
	c.mu.Unlock()

	switch mode {
	case ModeDraw:
		polys := c.draw.Polygons()
		if len(polys) == 0 {
			return ErrEmptyDraft
		}
		for _, p := range polys {
			if err := p.Validate(); err != nil {
				return fmt.Errorf("polygon %s: %w", p.ID, err)
			}
		}
		c.mu.Lock()
		c.applied.Polygons = polys
		c.mu.Unlock()
		c.layers.EnsureLayers(maplayer.KindPolygons, polygonsFC(polys))

	case ModeIsochrone:
		res := c.isochrone.Draft()
		if res == nil {
			return ErrEmptyDraft
		}
		if err := res.Settings.Validate(); err != nil {
			return err
		}
		c.mu.Lock()
		c.applied.Isochrone = res
		c.mu.Unlock()
		c.layers.EnsureLayers(maplayer.KindIsochrone, isochroneFC(res))

	case ModeRadius:
		res := c.radius.Draft()
		if res == nil {
			return ErrEmptyDraft
		}
		if err := res.Settings.Validate(); err != nil {
			return err
		}
		c.mu.Lock()
		c.applied.Radius = res
		c.mu.Unlock()
		c.layers.EnsureLayers(maplayer.KindRadius, radiusFC(res))

	case ModeSearch:
		items := c.selection.Items()
		if len(items) == 0 {
			return ErrEmptyDraft
		}
		c.mu.Lock()
		c.applied.Boundaries = items
		c.mu.Unlock()
		c.layers.EnsureLayers(maplayer.KindBoundaries, boundariesFC(items))
	}

	c.publish(mode, event.ActionUpdated)
	return nil
}

// ClearActive resets only the active mode's local draft to its empty
// value. Applied state is untouched.
func (c *Controller) ClearActive() error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrNoActiveMode
	}
	mode := c.active
	c.mu.Unlock()

	switch mode {
	case ModeDraw:
		c.draw.Reset()
	case ModeIsochrone:
		c.isochrone.Clear()
	case ModeRadius:
		c.radius.Clear()
	case ModeSearch:
		c.selection.Clear()
	}
	return c.SyncPreview()
}

// CloseActive closes the editor (setMode(null)). It is the only exit
// that also tears down the closed mode's preview layers; committed
// geometry stays on the map.
func (c *Controller) CloseActive() {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	mode := c.active
	c.active = ""
	c.open = false
	c.mu.Unlock()

	if mode == ModeIsochrone {
		c.isochrone.Cancel()
	}
	c.layers.DisableClicks(maplayer.KindBoundaries)
	c.layers.Teardown(previewKind(mode))
	c.resyncApplied(mode)
}

// SyncPreview pushes the active mode's draft to the map. Empty drafts
// remove the preview layers.
func (c *Controller) SyncPreview() error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrNoActiveMode
	}
	mode := c.active
	c.mu.Unlock()

	switch mode {
	case ModeDraw:
		c.layers.EnsureLayers(maplayer.KindDrawPreview, drawPreviewFC(c.draw.State()))
	case ModeIsochrone:
		c.layers.EnsureLayers(maplayer.KindIsochrone, isochroneFC(c.isochrone.Draft()))
	case ModeRadius:
		c.layers.EnsureLayers(maplayer.KindRadius, radiusFC(c.radius.Draft()))
	case ModeSearch:
		c.layers.EnsureLayers(maplayer.KindBoundaries, boundariesFC(c.selection.Items()))
	}
	return nil
}

// ComputeIsochrone runs the isochrone engine for the active settings
// and refreshes the preview on success. Stale results are discarded by
// the engine and not treated as errors worth surfacing twice.
func (c *Controller) ComputeIsochrone(ctx context.Context, settings geom.IsochroneSettings) (*isochrone.Result, error) {
	res, err := c.isochrone.Compute(ctx, settings)
	if err != nil {
		return nil, err
	}
	c.layers.EnsureLayers(maplayer.KindIsochrone, isochroneFC(res))
	return res, nil
}

// Applied returns a snapshot of the committed filter.
func (c *Controller) Applied() AppliedFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := AppliedFilter{
		Polygons:   append([]geom.Polygon(nil), c.applied.Polygons...),
		Boundaries: append([]geom.BoundaryItem(nil), c.applied.Boundaries...),
	}
	if c.applied.Isochrone != nil {
		res := *c.applied.Isochrone
		snap.Isochrone = &res
	}
	if c.applied.Radius != nil {
		res := *c.applied.Radius
		snap.Radius = &res
	}
	return snap
}

// boundaryClick feeds map clicks on boundary features into the
// selection engine.
func (c *Controller) boundaryClick(feature *geojson.Feature) {
	c.selection.Toggle(featureToBoundaryItem(feature))
}

// resyncApplied restores the committed rendering for the mode whose
// editor just closed, since preview and committed state may share a
// layer kind.
func (c *Controller) resyncApplied(mode Mode) {
	snap := c.Applied()
	switch mode {
	case ModeDraw:
		if len(snap.Polygons) > 0 {
			c.layers.EnsureLayers(maplayer.KindPolygons, polygonsFC(snap.Polygons))
		}
	case ModeIsochrone:
		if snap.Isochrone != nil {
			c.layers.EnsureLayers(maplayer.KindIsochrone, isochroneFC(snap.Isochrone))
		}
	case ModeRadius:
		if snap.Radius != nil {
			c.layers.EnsureLayers(maplayer.KindRadius, radiusFC(snap.Radius))
		}
	case ModeSearch:
		if len(snap.Boundaries) > 0 {
			c.layers.EnsureLayers(maplayer.KindBoundaries, boundariesFC(snap.Boundaries))
		}
	}
}

func (c *Controller) publish(mode Mode, action event.Action) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(event.Event{Resource: "filter", Action: action, ID: string(mode)})
}

func previewKind(mode Mode) maplayer.Kind {
	switch mode {
	case ModeDraw:
		return maplayer.KindDrawPreview
	case ModeIsochrone:
		return maplayer.KindIsochrone
	case ModeRadius:
		return maplayer.KindRadius
	default:
		return maplayer.KindBoundaries
	}
}
