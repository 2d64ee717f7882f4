// Package radius builds circular search areas. Computation is pure and
// local; the only failure mode is out-of-range input, which is rejected
// rather than clamped so user intent is never silently changed.
package radius

import (
	"errors"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/arealab/geofilter/internal/geom"
)

// ErrNoDraft is returned by the step affordances before any radius has
// been computed.
var ErrNoDraft = errors.New("no radius draft")

// Segments is the vertex count of the circle approximation.
const Segments = 64

// StepKm is the increment used by the discrete step affordances.
const StepKm = 0.5

// Result is a computed radius draft: the validated settings plus the
// circle polygon derived from them.
type Result struct {
	Settings geom.RadiusSettings `json:"settings"`
	Polygon  geom.Polygon        `json:"polygon"`
}

// Circle returns a closed ring approximating a circle of radiusKm
// around center, built from great-circle offsets.
func Circle(center geom.Point, radiusKm float64) orb.Ring {
	ring := make(orb.Ring, 0, Segments+1)
	meters := radiusKm * 1000
	for i := 0; i < Segments; i++ {
		bearing := float64(i) * 360 / Segments
		ring = append(ring, geo.PointAtBearingAndDistance(center.Orb(), bearing, meters))
	}
	ring = append(ring, ring[0])
	return ring
}

// Engine holds the radius mode's local draft.
type Engine struct {
	mu    sync.Mutex
	draft *Result
}

// New creates an engine with an empty draft.
func New() *Engine {
	return &Engine{}
}

// Compute validates the settings, builds the circle polygon, and stores
// the result as the draft. Invalid input leaves the draft unchanged.
// Every caller, slider or step buttons, must go through here; there is
// no other path to a radius polygon.
func (e *Engine) Compute(settings geom.RadiusSettings) (Result, error) {
	if err := settings.Validate(); err != nil {
		return Result{}, err
	}
	res := Result{
		Settings: settings,
		Polygon:  geom.PolygonFromRing(Circle(settings.Center, settings.RadiusKm)),
	}
	e.mu.Lock()
	e.draft = &res
	e.mu.Unlock()
	return res, nil
}

// StepUp recomputes with the radius increased by one step. Stepping
// past the maximum is rejected like any other out-of-range input.
func (e *Engine) StepUp() (Result, error) {
	return e.step(StepKm)
}

// StepDown recomputes with the radius decreased by one step.
func (e *Engine) StepDown() (Result, error) {
	return e.step(-StepKm)
}

func (e *Engine) step(delta float64) (Result, error) {
	e.mu.Lock()
	cur := e.draft
	e.mu.Unlock()
	if cur == nil {
		return Result{}, ErrNoDraft
	}
	next := cur.Settings
	next.RadiusKm += delta
	return e.Compute(next)
}

// Draft returns a copy of the current draft, or nil if none.
func (e *Engine) Draft() *Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return nil
	}
	res := *e.draft
	return &res
}

// Clear resets the draft to its empty value.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.draft = nil
	e.mu.Unlock()
}
