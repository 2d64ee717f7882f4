package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arealab/geofilter/internal/db"
	"github.com/arealab/geofilter/internal/geom"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.duckdb"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	s := New(conn)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func ring() []geom.Point {
	return []geom.Point{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 0}, {Lng: 1, Lat: 1}, {Lng: 0, Lat: 1}}
}

func TestCreateAndGetPolygon(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, TypePolygon, Payload{Points: ring()}, "Eixample", map[string]string{"fill": "#3388ff"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.WithinDuration(t, time.Now().UTC(), rec.CreatedAt, 5*time.Second)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, TypePolygon, got.Type)
	assert.Equal(t, "Eixample", got.Name)
	assert.Equal(t, ring(), got.Geometry.Points)
	assert.Equal(t, "#3388ff", got.Metadata["fill"])
}

func TestCreateRadiusAndIsochrone(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	center := geom.Point{Lng: 2.17, Lat: 41.38}

	rec, err := s.Create(ctx, TypeRadius, Payload{Center: &center, RadiusKm: 2.5}, "", nil)
	require.NoError(t, err)
	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Geometry.Center)
	assert.Equal(t, center, *got.Geometry.Center)
	assert.Equal(t, 2.5, got.Geometry.RadiusKm)

	rec, err = s.Create(ctx, TypeIsochrone, Payload{
		Points: ring(), Profile: geom.ProfileWalking, Minutes: 15,
	}, "15 min walk", nil)
	require.NoError(t, err)
	got, err = s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, geom.ProfileWalking, got.Geometry.Profile)
	assert.Equal(t, 15, got.Geometry.Minutes)
}

func TestListNewestFirst(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, TypePolygon, Payload{Points: ring()}, "first", nil)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := s.Create(ctx, TypePolygon, Payload{Points: ring()}, "second", nil)
	require.NoError(t, err)

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)
}

func TestCreateRejectsInvalidPayloads(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	center := geom.Point{Lng: 2.17, Lat: 41.38}

	cases := []struct {
		name    string
		typ     Type
		payload Payload
	}{
		{"unknown type", Type("blob"), Payload{Points: ring()}},
		{"too few points", TypePolygon, Payload{Points: ring()[:2]}},
		{"coordinates out of range", TypePolygon, Payload{Points: []geom.Point{{Lng: 200, Lat: 0}, {Lng: 1, Lat: 0}, {Lng: 1, Lat: 1}}}},
		{"radius without center", TypeRadius, Payload{RadiusKm: 2}},
		{"radius above maximum", TypeRadius, Payload{Center: &center, RadiusKm: 150}},
		{"radius below minimum", TypeRadius, Payload{Center: &center, RadiusKm: 0.05}},
		{"isochrone bad profile", TypeIsochrone, Payload{Points: ring(), Profile: "rocket", Minutes: 10}},
		{"isochrone bad minutes", TypeIsochrone, Payload{Points: ring(), Profile: geom.ProfileWalking, Minutes: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(ctx, tc.typ, tc.payload, "", nil)
			require.Error(t, err)
		})
	}

	// Rejected creates never leave partial records behind.
	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, TypePolygon, Payload{Points: ring()}, "", nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, rec.ID))
	_, err = s.Get(ctx, rec.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, s.Delete(ctx, rec.ID), ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "never-existed"), ErrNotFound)
}

func TestValidateUnknownType(t *testing.T) {
	err := Validate(Type("hexagon"), Payload{Points: ring()})
	require.ErrorIs(t, err, ErrUnknownType)
}
