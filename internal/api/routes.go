// Package api defines the Huma API routes and handlers for geometry
// persistence, boundary search, and isochrone computation.
package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/arealab/geofilter/internal/event"
	"github.com/arealab/geofilter/internal/geom"
	"github.com/arealab/geofilter/internal/isochrone"
	"github.com/arealab/geofilter/internal/store"
)

// GeometryStore is the persistence surface the handlers need.
type GeometryStore interface {
	Create(ctx context.Context, typ store.Type, payload store.Payload, name string, metadata map[string]string) (store.Stored, error)
	List(ctx context.Context) ([]store.Stored, error)
	Get(ctx context.Context, id string) (store.Stored, error)
	Delete(ctx context.Context, id string) error
}

// BoundarySearcher finds administrative boundary candidates by name.
type BoundarySearcher interface {
	Search(ctx context.Context, name, lang string) ([]geom.BoundaryItem, error)
}

// IsochroneComputer computes travel-time polygons.
type IsochroneComputer interface {
	Compute(ctx context.Context, settings geom.IsochroneSettings) (*isochrone.Result, error)
}

// Services holds the service dependencies for API handlers. Bus, when
// set, receives geometry mutation events for the SSE stream.
type Services struct {
	Geometries GeometryStore
	Boundaries BoundarySearcher
	Isochrones IsochroneComputer
	Bus        *event.Bus
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Geometry ID"`
}

type GeometryOutput struct {
	Body store.Stored
}

type GeometriesOutput struct {
	Body []store.Stored
}

type CreateGeometryInput struct {
	Body struct {
		Type     store.Type        `json:"type" required:"true" enum:"polygon,isochrone,radius" doc:"Geometry type"`
		Geometry store.Payload     `json:"geometry" required:"true" doc:"Geometry body"`
		Name     string            `json:"name,omitempty" maxLength:"100" doc:"Optional display name"`
		Metadata map[string]string `json:"metadata,omitempty" doc:"Styling and provenance metadata"`
	}
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type BoundarySearchInput struct {
	Query string `query:"q" required:"true" minLength:"1" doc:"Free-text boundary name" example:"Barcelona"`
	Lang  string `query:"lang" default:"en" doc:"Language code for localized names" example:"es"`
}

type BoundariesOutput struct {
	Body []geom.BoundaryItem
}

type IsochroneInput struct {
	Body geom.IsochroneSettings
}

type IsochroneOutput struct {
	Body isochrone.Result
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every handler group.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterGeometries registers geometry persistence routes.
func (h *APIHandler) RegisterGeometries(api huma.API) {
	huma.Get(api, "/api/v1/geometries", h.ListGeometries, huma.OperationTags("geometries"))
	huma.Post(api, "/api/v1/geometries", h.CreateGeometry, huma.OperationTags("geometries"))
	huma.Get(api, "/api/v1/geometries/{id}", h.GetGeometry, huma.OperationTags("geometries"))
	huma.Delete(api, "/api/v1/geometries/{id}", h.DeleteGeometry, huma.OperationTags("geometries"))
}

// RegisterBoundaries registers boundary search routes.
func (h *APIHandler) RegisterBoundaries(api huma.API) {
	huma.Get(api, "/api/v1/boundaries/search", h.SearchBoundaries, huma.OperationTags("boundaries"))
}

// RegisterIsochrones registers isochrone computation routes.
func (h *APIHandler) RegisterIsochrones(api huma.API) {
	huma.Post(api, "/api/v1/isochrones", h.ComputeIsochrone, huma.OperationTags("isochrones"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) ListGeometries(ctx context.Context, input *struct{}) (*GeometriesOutput, error) {
	if h.svc == nil || h.svc.Geometries == nil {
		return &GeometriesOutput{Body: []store.Stored{}}, nil
	}
	records, err := h.svc.Geometries.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list geometries", err)
	}
	return &GeometriesOutput{Body: records}, nil
}

func (h *APIHandler) CreateGeometry(ctx context.Context, input *CreateGeometryInput) (*GeometryOutput, error) {
	if h.svc == nil || h.svc.Geometries == nil {
		return nil, huma.Error503ServiceUnavailable("Geometry store not available")
	}
	rec, err := h.svc.Geometries.Create(ctx, input.Body.Type, input.Body.Geometry, input.Body.Name, input.Body.Metadata)
	if err != nil {
		// Create failures at this layer are validation failures:
		// unknown type, incomplete ring, out-of-range settings.
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	h.publish(event.ActionCreated, rec.ID)
	return &GeometryOutput{Body: rec}, nil
}

func (h *APIHandler) GetGeometry(ctx context.Context, input *IDInput) (*GeometryOutput, error) {
	if h.svc == nil || h.svc.Geometries == nil {
		return nil, huma.Error404NotFound("geometry store not available")
	}
	rec, err := h.svc.Geometries.Get(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error500InternalServerError("Failed to load geometry", err)
	}
	return &GeometryOutput{Body: rec}, nil
}

func (h *APIHandler) DeleteGeometry(ctx context.Context, input *IDInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Geometries == nil {
		return nil, huma.Error503ServiceUnavailable("Geometry store not available")
	}
	if err := h.svc.Geometries.Delete(ctx, input.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error500InternalServerError("Failed to delete geometry", err)
	}
	h.publish(event.ActionRemoved, input.ID)
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Geometry deleted"}}, nil
}

func (h *APIHandler) publish(action event.Action, id string) {
	if h.svc == nil || h.svc.Bus == nil {
		return
	}
	h.svc.Bus.Publish(event.Event{Resource: "geometries", Action: action, ID: id})
}

func (h *APIHandler) SearchBoundaries(ctx context.Context, input *BoundarySearchInput) (*BoundariesOutput, error) {
	if h.svc == nil || h.svc.Boundaries == nil {
		return nil, huma.Error503ServiceUnavailable("Boundary search not available")
	}
	items, err := h.svc.Boundaries.Search(ctx, input.Query, input.Lang)
	if err != nil {
		return nil, huma.Error502BadGateway("Boundary search failed", err)
	}
	if items == nil {
		items = []geom.BoundaryItem{}
	}
	return &BoundariesOutput{Body: items}, nil
}

func (h *APIHandler) ComputeIsochrone(ctx context.Context, input *IsochroneInput) (*IsochroneOutput, error) {
	if h.svc == nil || h.svc.Isochrones == nil {
		return nil, huma.Error503ServiceUnavailable("Isochrone service not available")
	}
	if err := input.Body.Validate(); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	res, err := h.svc.Isochrones.Compute(ctx, input.Body)
	if err != nil {
		if errors.Is(err, isochrone.ErrSuperseded) {
			return nil, huma.Error409Conflict("Superseded by a newer isochrone request")
		}
		return nil, huma.Error502BadGateway("Isochrone computation failed", err)
	}
	return &IsochroneOutput{Body: *res}, nil
}
