// Package store persists committed filter geometries. Every invariant
// the client already checked is re-validated here; the store trusts
// nothing that crosses the API boundary.
//
// The store is append-only from the client's perspective: a changed
// geometry is a new Create, with Delete of the old record left to the
// caller.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arealab/geofilter/internal/geom"
)

// Type is the kind of stored geometry.
type Type string

const (
	TypePolygon   Type = "polygon"
	TypeIsochrone Type = "isochrone"
	TypeRadius    Type = "radius"
)

// Valid reports whether t is a known geometry type.
func (t Type) Valid() bool {
	switch t {
	case TypePolygon, TypeIsochrone, TypeRadius:
		return true
	}
	return false
}

var (
	ErrNotFound    = errors.New("geometry not found")
	ErrUnknownType = errors.New("unknown geometry type")
)

// Payload is the per-type geometry body. Polygon and isochrone records
// carry points; radius records carry center + radiusKm; isochrone
// records additionally carry their settings.
type Payload struct {
	Points   []geom.Point `json:"points,omitempty" doc:"Ring vertices for polygon/isochrone geometries"`
	Center   *geom.Point  `json:"center,omitempty" doc:"Center for radius geometries"`
	RadiusKm float64      `json:"radiusKm,omitempty" doc:"Radius in kilometers"`
	Profile  geom.Profile `json:"profile,omitempty" doc:"Travel profile for isochrone geometries"`
	Minutes  int          `json:"minutes,omitempty" doc:"Travel minutes for isochrone geometries"`
}

// Stored is a persisted geometry record. Its id is assigned by the
// store and independent of any client-side draft id.
type Stored struct {
	ID        string            `json:"id" doc:"Storage identifier"`
	Type      Type              `json:"type" enum:"polygon,isochrone,radius" doc:"Geometry type"`
	Name      string            `json:"name,omitempty" doc:"Optional display name"`
	Geometry  Payload           `json:"geometry" doc:"Geometry body"`
	Metadata  map[string]string `json:"metadata,omitempty" doc:"Styling and provenance metadata"`
	CreatedAt time.Time         `json:"createdAt" doc:"Creation timestamp"`
}

// Store is a DuckDB-backed geometry store.
type Store struct {
	db *sql.DB
}

// New wraps a database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the geometries table if needed.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS geometries (
			id         VARCHAR PRIMARY KEY,
			type       VARCHAR NOT NULL,
			name       VARCHAR,
			geometry   VARCHAR NOT NULL,
			metadata   VARCHAR,
			created_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create geometries table: %w", err)
	}
	return nil
}

// Create validates and inserts a geometry, returning the stored record.
func (s *Store) Create(ctx context.Context, typ Type, payload Payload, name string, metadata map[string]string) (Stored, error) {
	if err := Validate(typ, payload); err != nil {
		return Stored{}, err
	}

	rec := Stored{
		ID:        uuid.NewString(),
		Type:      typ,
		Name:      name,
		Geometry:  payload,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	geomJSON, err := json.Marshal(rec.Geometry)
	if err != nil {
		return Stored{}, fmt.Errorf("failed to encode geometry: %w", err)
	}
	metaJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return Stored{}, fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO geometries (id, type, name, geometry, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Type), rec.Name, string(geomJSON), string(metaJSON), rec.CreatedAt)
	if err != nil {
		return Stored{}, fmt.Errorf("failed to insert geometry: %w", err)
	}
	return rec, nil
}

// List returns all stored geometries, newest first.
func (s *Store) List(ctx context.Context) ([]Stored, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, name, geometry, metadata, created_at FROM geometries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list geometries: %w", err)
	}
	defer rows.Close()

	records := []Stored{}
	for rows.Next() {
		rec, err := scanStored(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns one stored geometry by id.
func (s *Store) Get(ctx context.Context, id string) (Stored, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, name, geometry, metadata, created_at FROM geometries WHERE id = ?`, id)
	if err != nil {
		return Stored{}, fmt.Errorf("failed to query geometry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return Stored{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return scanStored(rows)
}

// Delete removes a stored geometry. Deleting an unknown id is a
// not-found condition, not a silent success.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM geometries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete geometry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func scanStored(rows *sql.Rows) (Stored, error) {
	var (
		rec      Stored
		typ      string
		name     sql.NullString
		geomJSON string
		metaJSON sql.NullString
	)
	if err := rows.Scan(&rec.ID, &typ, &name, &geomJSON, &metaJSON, &rec.CreatedAt); err != nil {
		return Stored{}, fmt.Errorf("failed to scan geometry: %w", err)
	}
	rec.Type = Type(typ)
	rec.Name = name.String
	if err := json.Unmarshal([]byte(geomJSON), &rec.Geometry); err != nil {
		return Stored{}, fmt.Errorf("failed to decode geometry %s: %w", rec.ID, err)
	}
	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &rec.Metadata); err != nil {
			return Stored{}, fmt.Errorf("failed to decode metadata %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

// Validate applies the full server-side invariant check for a geometry
// payload of the given type.
func Validate(typ Type, payload Payload) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}

	switch typ {
	case TypePolygon:
		return validateRing(payload.Points)

	case TypeIsochrone:
		if err := validateRing(payload.Points); err != nil {
			return err
		}
		if !payload.Profile.Valid() {
			return fmt.Errorf("unknown travel profile %q", payload.Profile)
		}
		if payload.Minutes < geom.MinMinutes || payload.Minutes > geom.MaxMinutes {
			return fmt.Errorf("minutes %d out of range [%d, %d]", payload.Minutes, geom.MinMinutes, geom.MaxMinutes)
		}

	case TypeRadius:
		if payload.Center == nil {
			return fmt.Errorf("radius geometry requires a center")
		}
		settings := geom.RadiusSettings{Center: *payload.Center, RadiusKm: payload.RadiusKm}
		if err := settings.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateRing(points []geom.Point) error {
	if len(points) < geom.MinPolygonPoints {
		return fmt.Errorf("%w, got %d", geom.ErrIncomplete, len(points))
	}
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
	}
	return nil
}
