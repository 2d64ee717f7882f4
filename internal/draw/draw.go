// Package draw implements the free-hand polygon authoring state
// machine: idle until a draw starts, drawing while points accumulate,
// editing when an existing polygon is reopened, and back to idle on
// complete or cancel.
package draw

import (
	"errors"
	"fmt"
	"sync"

	"github.com/arealab/geofilter/internal/geom"
)

// Mode is the draw lifecycle state.
type Mode string

const (
	ModeIdle    Mode = "idle"
	ModeDrawing Mode = "drawing"
	ModeEditing Mode = "editing"
)

// DefaultMaxPolygons caps how many polygons a session may hold.
const DefaultMaxPolygons = 4

var (
	ErrPolygonCap = errors.New("polygon limit reached")
	ErrNotFound   = errors.New("polygon not found")
	ErrNotActive  = errors.New("no drawing in progress")
)

// Config tunes an engine.
type Config struct {
	// MaxPolygons bounds the session's polygon list. Zero means
	// DefaultMaxPolygons.
	MaxPolygons int
}

// Engine holds one draw session. It is the draw mode's local draft:
// switching modes must not reset it, so the engine keeps all state
// until Reset or destruction.
type Engine struct {
	mu       sync.Mutex
	max      int
	mode     Mode
	current  []geom.Point
	polygons []geom.Polygon
	selected string
}

// New creates an idle engine.
func New(cfg Config) *Engine {
	max := cfg.MaxPolygons
	if max <= 0 {
		max = DefaultMaxPolygons
	}
	return &Engine{max: max, mode: ModeIdle}
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Mode              Mode
	CurrentPoints     []geom.Point
	Polygons          []geom.Polygon
	SelectedPolygonID string
}

// State returns a copy of the session state.
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Mode:              e.mode,
		CurrentPoints:     append([]geom.Point(nil), e.current...),
		Polygons:          append([]geom.Polygon(nil), e.polygons...),
		SelectedPolygonID: e.selected,
	}
}

// Polygons returns a copy of the completed polygon list.
func (e *Engine) Polygons() []geom.Polygon {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]geom.Polygon(nil), e.polygons...)
}

// Start begins drawing a new polygon. Blocked while the session is at
// its polygon cap; editing an existing polygon is exempt because it
// replaces in place.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeIdle {
		return fmt.Errorf("cannot start while %s", e.mode)
	}
	if len(e.polygons) >= e.max {
		return fmt.Errorf("%w (%d)", ErrPolygonCap, e.max)
	}
	e.mode = ModeDrawing
	e.current = nil
	return nil
}

// AddPoint appends a map-click point to the in-progress ring.
func (e *Engine) AddPoint(p geom.Point) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeDrawing && e.mode != ModeEditing {
		return ErrNotActive
	}
	e.current = append(e.current, p)
	return nil
}

// Undo pops the last point. Popping the last remaining point while
// drawing returns the engine to idle; undo with nothing to pop is a
// no-op, not an error.
func (e *Engine) Undo() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.current) == 0 {
		return
	}
	e.current = e.current[:len(e.current)-1]
	if len(e.current) == 0 && e.mode == ModeDrawing {
		e.mode = ModeIdle
		e.current = nil
	}
}

// Complete freezes the current points into a polygon. From drawing it
// appends a new polygon; from editing it replaces the selected one,
// keeping its id and creation time.
func (e *Engine) Complete() (geom.Polygon, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeDrawing && e.mode != ModeEditing {
		return geom.Polygon{}, ErrNotActive
	}
	if len(e.current) < geom.MinPolygonPoints {
		return geom.Polygon{}, fmt.Errorf("%w, got %d", geom.ErrIncomplete, len(e.current))
	}

	if e.mode == ModeEditing {
		for i, poly := range e.polygons {
			if poly.ID == e.selected {
				poly.Points = append([]geom.Point(nil), e.current...)
				e.polygons[i] = poly
				e.toIdle()
				return poly, nil
			}
		}
		return geom.Polygon{}, fmt.Errorf("%w: %s", ErrNotFound, e.selected)
	}

	if len(e.polygons) >= e.max {
		return geom.Polygon{}, fmt.Errorf("%w (%d)", ErrPolygonCap, e.max)
	}
	poly := geom.NewPolygon(e.current)
	e.polygons = append(e.polygons, poly)
	e.toIdle()
	return poly, nil
}

// Cancel discards the in-progress points unconditionally.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.toIdle()
}

// Edit loads an existing polygon's points for modification.
func (e *Engine) Edit(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, poly := range e.polygons {
		if poly.ID == id {
			e.mode = ModeEditing
			e.current = append([]geom.Point(nil), poly.Points...)
			e.selected = id
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Delete removes a polygon. Deleting the polygon being edited also
// abandons the edit.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, poly := range e.polygons {
		if poly.ID == id {
			e.polygons = append(e.polygons[:i], e.polygons[i+1:]...)
			if e.selected == id {
				e.toIdle()
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Rename sets a polygon's display name.
func (e *Engine) Rename(id, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.polygons {
		if e.polygons[i].ID == id {
			e.polygons[i].Name = name
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Reset clears the whole session draft: points, polygons, selection.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.polygons = nil
	e.toIdle()
}

func (e *Engine) toIdle() {
	e.mode = ModeIdle
	e.current = nil
	e.selected = ""
}
