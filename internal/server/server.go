// Package server wires the HTTP surface: Huma REST API over a stdlib
// mux, the geometry store, and the external boundary/isochrone clients.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/go-logr/logr"

	"github.com/arealab/geofilter/internal/api"
	"github.com/arealab/geofilter/internal/api/stream"
	"github.com/arealab/geofilter/internal/boundary"
	"github.com/arealab/geofilter/internal/db"
	"github.com/arealab/geofilter/internal/event"
	"github.com/arealab/geofilter/internal/isochrone"
	"github.com/arealab/geofilter/internal/store"
)

// Config holds the server configuration.
type Config struct {
	Host           string
	Port           string
	DataDir        string
	OverpassURL    string
	IsochroneURL   string
	IsochroneToken string
	Log            logr.Logger
}

// Server is the geofilter HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	services *api.Services
	bus      *event.Bus
	log      logr.Logger
}

// New creates a new geofilter server.
func New(cfg Config) *Server {
	mux := http.NewServeMux()

	// Huma API with the humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("geofilter API", "1.0.0")
	humaConfig.Info.Description = "Spatial search-filter API: geometry persistence, boundary search, and travel-time isochrones."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:  cfg,
		mux:     mux,
		humaAPI: humaAPI,
		bus:     event.NewBus(),
		log:     cfg.Log,
	}

	services := &api.Services{Bus: s.bus}
	if cfg.OverpassURL != "" {
		services.Boundaries = boundary.NewSearcher(cfg.OverpassURL, 25*time.Second, cfg.Log.WithName("boundary"))
	}
	if cfg.IsochroneURL != "" {
		client := isochrone.NewHTTPClient(cfg.IsochroneURL, cfg.IsochroneToken)
		services.Isochrones = isochrone.New(client, cfg.Log.WithName("isochrone"))
	}

	conn, err := db.Get(db.Config{DataDir: cfg.DataDir, DBName: "geofilter"})
	if err == nil && conn != nil {
		s.db = conn
		st := store.New(conn)
		if err := st.Init(context.Background()); err != nil {
			cfg.Log.Error(err, "geometry store init failed")
		} else {
			services.Geometries = st
		}
	} else if err != nil {
		cfg.Log.Error(err, "duckdb unavailable, persistence disabled")
	}

	s.services = services
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close closes server resources.
func (s *Server) Close() error {
	return db.Close()
}

// Bus exposes the event bus so in-process publishers (layer
// synchronizer, mode controller) can reach SSE subscribers.
func (s *Server) Bus() *event.Bus {
	return s.bus
}

// OpenAPI returns the assembled OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

func (s *Server) routes() {
	api.RegisterRoutes(s.humaAPI, s.services)
	api.NewInfoHandler(s.config.DataDir, s.db != nil).RegisterRoutes(s.humaAPI)
	stream.NewEventHandler(s.bus).RegisterRoutes(s.humaAPI)
}
