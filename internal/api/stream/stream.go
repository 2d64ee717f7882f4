// Package stream bridges the event bus to map clients over Datastar
// SSE: filter commits and layer-registry changes are pushed as signals
// and custom DOM events.
package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/arealab/geofilter/internal/event"
)

// EmptyInput is a shared empty input struct for handlers with no parameters.
type EmptyInput struct{}

// SSE wraps the Datastar SSE generator with helper methods.
type SSE struct {
	*datastar.ServerSentEventGenerator
}

// NewSSE creates a Datastar SSE helper from a Huma streaming context.
func NewSSE(ctx huma.Context) SSE {
	r, w := humago.Unwrap(ctx)
	return SSE{datastar.NewSSE(w, r)}
}

// Signals sends arbitrary signals to the client.
func (s SSE) Signals(signals map[string]any) {
	s.MarshalAndPatchSignals(signals)
}

// Error sends an error signal to the client.
func (s SSE) Error(msg string) {
	s.MarshalAndPatchSignals(map[string]any{"error": msg})
}

// DispatchCustomEvent fires a DOM CustomEvent on the client window.
func (s SSE) DispatchCustomEvent(name string, detail map[string]any) {
	payload, err := json.Marshal(detail)
	if err != nil {
		return
	}
	s.ExecuteScript(fmt.Sprintf(
		"window.dispatchEvent(new CustomEvent(%q, {detail: %s}))", name, payload))
}

// EventHandler streams resource change events to map clients via SSE.
type EventHandler struct {
	bus *event.Bus
}

// NewEventHandler creates a handler over the given bus.
func NewEventHandler(bus *event.Bus) *EventHandler {
	return &EventHandler{bus: bus}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/events", h.Events, huma.OperationTags("events"))
}

// Events subscribes the client to bus events until it disconnects.
func (h *EventHandler) Events(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)
			ch := h.bus.Subscribe()
			defer h.bus.Unsubscribe(ch)

			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					sse.Signals(map[string]any{
						"resource": ev.Resource,
						"action":   string(ev.Action),
						"id":       ev.ID,
					})
					detail := map[string]any{
						"resource": ev.Resource,
						"action":   string(ev.Action),
						"id":       ev.ID,
					}
					for k, v := range ev.Detail {
						detail[k] = v
					}
					sse.DispatchCustomEvent("resource-changed", detail)
				}
			}
		},
	}, nil
}
