// Package boundary implements administrative-area multi-select: a
// selection set toggled by map-click events, and a search client that
// finds candidate regions by name.
package boundary

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/arealab/geofilter/internal/geom"
)

// Selection is the search mode's local draft: the set of boundary items
// currently selected, keyed by stable external identifier.
//
// The engine has no map dependency; click events from the layer
// synchronizer and synthetic test events go through the same Toggle.
type Selection struct {
	mu    sync.Mutex
	items []geom.BoundaryItem
	log   logr.Logger
}

// NewSelection creates an empty selection.
func NewSelection(log logr.Logger) *Selection {
	return &Selection{log: log}
}

// Toggle adds the item if its stable key is not in the set, removes it
// if it is. Items without a stable key cannot be synced: the call is a
// no-op and a warning is recorded. Returns whether the item is selected
// after the call.
func (s *Selection) Toggle(item geom.BoundaryItem) bool {
	if !item.Syncable() {
		s.log.Info("warning: boundary item has no stable key, skipping toggle",
			"name", item.Name, "id", item.ID)
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.items {
		if existing.StableKey == item.StableKey {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return false
		}
	}
	s.items = append(s.items, item)
	return true
}

// Remove drops the item with the given stable key, if present.
func (s *Selection) Remove(stableKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.items {
		if existing.StableKey == stableKey {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether a stable key is currently selected.
func (s *Selection) Contains(stableKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.StableKey == stableKey {
			return true
		}
	}
	return false
}

// Items returns a copy of the selection in insertion order.
func (s *Selection) Items() []geom.BoundaryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]geom.BoundaryItem(nil), s.items...)
}

// Len returns the selection size.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}
