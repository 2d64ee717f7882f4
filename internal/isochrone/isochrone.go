// Package isochrone maps (center, profile, minutes) to a polygon via an
// external travel-time computation service. The engine enforces
// last-request-wins: a resolved-but-stale response never overwrites a
// newer request's draft.
package isochrone

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/paulmach/orb"

	"github.com/arealab/geofilter/internal/geom"
)

var (
	// ErrSuperseded marks a request that was overtaken by a newer one
	// before its result could be applied.
	ErrSuperseded = errors.New("isochrone request superseded")
	// ErrEmptyResult marks a service response with no usable polygon.
	ErrEmptyResult = errors.New("isochrone service returned no polygon")
)

// Client computes a travel-time polygon. Implementations must honor
// context cancellation.
type Client interface {
	Isochrone(ctx context.Context, center geom.Point, profile geom.Profile, minutes int) (orb.Polygon, error)
}

// Result is a committed or draft isochrone: settings, derived polygon,
// and the profile's fixed display color.
type Result struct {
	Settings geom.IsochroneSettings `json:"settings"`
	Polygon  geom.Polygon           `json:"polygon"`
	Color    string                 `json:"color" doc:"Display color for the travel profile"`
}

// Engine holds the isochrone mode's local draft and arbitrates
// concurrent computations by generation tagging.
type Engine struct {
	client Client
	log    logr.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	draft  *Result
}

// New creates an engine around the given travel-time client.
func New(client Client, log logr.Logger) *Engine {
	return &Engine{client: client, log: log}
}

// Compute validates the settings locally, issues one request to the
// travel-time service, and stores the result as the draft. Issuing a
// new Compute cancels any in-flight request; if a canceled request
// resolves anyway, its result is discarded. On failure the draft is
// left exactly as it was.
func (e *Engine) Compute(ctx context.Context, settings geom.IsochroneSettings) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.gen++
	myGen := e.gen
	if e.cancel != nil {
		e.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	poly, err := e.client.Isochrone(reqCtx, settings.Center, settings.Profile, settings.Minutes)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != myGen {
		cancel()
		return nil, ErrSuperseded
	}
	e.cancel = nil
	cancel()

	if err != nil {
		e.log.Info("isochrone computation failed", "profile", settings.Profile, "minutes", settings.Minutes, "err", err)
		return nil, fmt.Errorf("travel-time service: %w", err)
	}
	if len(poly) == 0 || len(poly[0]) < 4 {
		return nil, ErrEmptyResult
	}

	res := &Result{
		Settings: settings,
		Polygon:  geom.PolygonFromRing(poly[0]),
		Color:    settings.Profile.Color(),
	}
	e.draft = res
	out := *res
	return &out, nil
}

// Cancel discards any in-flight request. Called when the user switches
// mode or closes the editor.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
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

// Clear cancels in-flight work and resets the draft to empty.
func (e *Engine) Clear() {
	e.Cancel()
	e.mu.Lock()
	e.draft = nil
	e.mu.Unlock()
}
