// Package maplayer is the single owner of the map's rendering layers.
// Engines never touch layers directly; they hand declarative
// (kind, data) inputs to the Synchronizer, which idempotently creates,
// updates, and removes layer sets and arbitrates click/hover listeners.
package maplayer

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/paulmach/orb/geojson"

	"github.com/arealab/geofilter/internal/event"
)

// Kind identifies a layer set owned by one of the filter modes.
type Kind string

const (
	KindDrawPreview Kind = "draw-preview"
	KindPolygons    Kind = "polygons"
	KindIsochrone   Kind = "isochrone"
	KindRadius      Kind = "radius"
	KindBoundaries  Kind = "boundaries"
)

// Theme selects the light or dark style variant. Theming affects
// fill/line color and opacity only, never geometry.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// LayerSpec is a renderable layer description in the shape the map
// client consumes.
type LayerSpec struct {
	ID      string  `json:"id" doc:"Layer identifier"`
	Type    string  `json:"type" enum:"fill,line,circle" doc:"Render type"`
	Fill    string  `json:"fill,omitempty" doc:"Fill color (CSS)"`
	Stroke  string  `json:"stroke,omitempty" doc:"Stroke color (CSS)"`
	Opacity float64 `json:"opacity" doc:"Layer opacity (0-1)"`
}

// ClickHandler receives the clicked feature for a kind.
type ClickHandler func(feature *geojson.Feature)

type layerSet struct {
	data   *geojson.FeatureCollection
	layers []LayerSpec
}

// Synchronizer keeps the map surface consistent with draft and
// committed filter state. Click and hover registrations live in their
// own registry, not on the layer sets: a mode may attach its handler
// before the first feature exists, and an empty-draft teardown must not
// eat the handler for the rest of the session.
type Synchronizer struct {
	mu     sync.Mutex
	theme  Theme
	sets   map[Kind]*layerSet
	clicks map[Kind]ClickHandler
	hovers map[Kind]bool
	bus    *event.Bus
	log    logr.Logger
}

// New creates a synchronizer with the light theme.
func New(bus *event.Bus, log logr.Logger) *Synchronizer {
	return &Synchronizer{
		theme:  ThemeLight,
		sets:   make(map[Kind]*layerSet),
		clicks: make(map[Kind]ClickHandler),
		hovers: make(map[Kind]bool),
		bus:    bus,
		log:    log,
	}
}

// EnsureLayers creates or updates the layer set for a kind. Repeated
// calls with the same kind update the existing source's data instead of
// creating duplicates. Empty data removes the whole set so no rendering
// resources leak across mode switches.
func (s *Synchronizer) EnsureLayers(kind Kind, data *geojson.FeatureCollection) {
	if data == nil || len(data.Features) == 0 {
		s.Teardown(kind)
		return
	}

	s.mu.Lock()
	set, exists := s.sets[kind]
	if exists {
		set.data = data
	} else {
		s.sets[kind] = &layerSet{data: data, layers: specsFor(kind, s.theme)}
	}
	s.mu.Unlock()

	action := event.ActionCreated
	if exists {
		action = event.ActionUpdated
	}
	s.publish(kind, action)
}

// Teardown removes all layers and sources for a kind. Listener
// registrations survive: re-ensuring the kind re-arms them. Removing an
// absent kind is a no-op.
func (s *Synchronizer) Teardown(kind Kind) {
	s.mu.Lock()
	_, existed := s.sets[kind]
	delete(s.sets, kind)
	s.mu.Unlock()

	if existed {
		s.publish(kind, event.ActionRemoved)
	}
}

// SetTheme restyles every layer set for the given theme. Geometry is
// untouched and no data is refetched.
func (s *Synchronizer) SetTheme(theme Theme) {
	s.mu.Lock()
	s.theme = theme
	for kind, set := range s.sets {
		set.layers = specsFor(kind, theme)
	}
	s.mu.Unlock()
}

// Layers returns the layer specs for a kind, if present.
func (s *Synchronizer) Layers(kind Kind) ([]LayerSpec, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[kind]
	if !ok {
		return nil, false
	}
	return append([]LayerSpec(nil), set.layers...), true
}

// Data returns the source data for a kind, if present.
func (s *Synchronizer) Data(kind Kind) (*geojson.FeatureCollection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[kind]
	if !ok {
		return nil, false
	}
	return set.data, true
}

// EnableClicks attaches a click handler for a kind. The kind may have
// no layers yet; the handler fires once features arrive.
func (s *Synchronizer) EnableClicks(kind Kind, h ClickHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks[kind] = h
}

// DisableClicks detaches the click handler for a kind.
func (s *Synchronizer) DisableClicks(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clicks, kind)
}

// EnableHover turns on the hover/selection visual pass for a kind. It
// is independent of click handling and may stay on while clicks are
// disabled.
func (s *Synchronizer) EnableHover(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hovers[kind] = true
}

// DisableHover turns off the hover pass for a kind.
func (s *Synchronizer) DisableHover(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hovers, kind)
}

// HoverEnabled reports whether the hover pass is on for a kind.
func (s *Synchronizer) HoverEnabled(kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hovers[kind]
}

// HandleClick dispatches a map click for a kind to its handler, if one
// is attached. Clicks on kinds without a handler are dropped, so
// boundary toggles never fire while the search editor is closed.
func (s *Synchronizer) HandleClick(kind Kind, feature *geojson.Feature) bool {
	s.mu.Lock()
	h := s.clicks[kind]
	s.mu.Unlock()

	if h == nil {
		return false
	}
	h(feature)
	return true
}

func (s *Synchronizer) publish(kind Kind, action event.Action) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{
		Resource: "maplayers",
		Action:   action,
		ID:       string(kind),
	})
}
