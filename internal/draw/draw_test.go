package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arealab/geofilter/internal/geom"
)

func square(off float64) []geom.Point {
	return []geom.Point{
		{Lng: off, Lat: off},
		{Lng: off + 1, Lat: off},
		{Lng: off + 1, Lat: off + 1},
		{Lng: off, Lat: off + 1},
	}
}

func mustDraw(t *testing.T, e *Engine, points []geom.Point) geom.Polygon {
	t.Helper()
	require.NoError(t, e.Start())
	for _, p := range points {
		require.NoError(t, e.AddPoint(p))
	}
	poly, err := e.Complete()
	require.NoError(t, err)
	return poly
}

func TestLifecycle(t *testing.T) {
	e := New(Config{})
	assert.Equal(t, ModeIdle, e.State().Mode)

	require.NoError(t, e.Start())
	assert.Equal(t, ModeDrawing, e.State().Mode)

	// Start while already drawing is rejected.
	require.Error(t, e.Start())

	for _, p := range square(0) {
		require.NoError(t, e.AddPoint(p))
	}
	poly, err := e.Complete()
	require.NoError(t, err)
	assert.Equal(t, ModeIdle, e.State().Mode)
	assert.Len(t, e.Polygons(), 1)
	assert.Equal(t, square(0), poly.Points)
}

func TestAddPointRequiresActiveDraw(t *testing.T) {
	e := New(Config{})
	err := e.AddPoint(geom.Point{Lng: 1, Lat: 1})
	require.ErrorIs(t, err, ErrNotActive)

	require.NoError(t, e.Start())
	require.Error(t, e.AddPoint(geom.Point{Lng: 200, Lat: 0}), "invalid coordinates rejected")
	assert.Empty(t, e.State().CurrentPoints)
}

func TestCompleteWithTooFewPoints(t *testing.T) {
	e := New(Config{})
	require.NoError(t, e.Start())
	require.NoError(t, e.AddPoint(geom.Point{Lng: 0, Lat: 0}))
	require.NoError(t, e.AddPoint(geom.Point{Lng: 1, Lat: 0}))

	_, err := e.Complete()
	require.ErrorIs(t, err, geom.ErrIncomplete)

	// The failed completion must not disturb the draft.
	st := e.State()
	assert.Equal(t, ModeDrawing, st.Mode)
	assert.Len(t, st.CurrentPoints, 2)
	assert.Empty(t, st.Polygons)
}

func TestUndo(t *testing.T) {
	e := New(Config{})

	// Undo with nothing drawn is a silent no-op.
	e.Undo()
	assert.Equal(t, ModeIdle, e.State().Mode)

	require.NoError(t, e.Start())
	require.NoError(t, e.AddPoint(geom.Point{Lng: 0, Lat: 0}))
	require.NoError(t, e.AddPoint(geom.Point{Lng: 1, Lat: 0}))

	e.Undo()
	assert.Len(t, e.State().CurrentPoints, 1)

	// Undoing the last point exits drawing entirely.
	e.Undo()
	st := e.State()
	assert.Equal(t, ModeIdle, st.Mode)
	assert.Empty(t, st.CurrentPoints)
}

func TestCancelDiscardsDraft(t *testing.T) {
	e := New(Config{})
	require.NoError(t, e.Start())
	require.NoError(t, e.AddPoint(geom.Point{Lng: 0, Lat: 0}))
	e.Cancel()

	st := e.State()
	assert.Equal(t, ModeIdle, st.Mode)
	assert.Empty(t, st.CurrentPoints)
	assert.Empty(t, st.Polygons)
}

func TestEditReplacesInPlace(t *testing.T) {
	e := New(Config{})
	orig := mustDraw(t, e, square(0))

	require.NoError(t, e.Edit(orig.ID))
	st := e.State()
	assert.Equal(t, ModeEditing, st.Mode)
	assert.Equal(t, orig.ID, st.SelectedPolygonID)
	assert.Equal(t, orig.Points, st.CurrentPoints)

	require.NoError(t, e.AddPoint(geom.Point{Lng: 0.5, Lat: 2}))
	updated, err := e.Complete()
	require.NoError(t, err)

	assert.Equal(t, orig.ID, updated.ID, "edit keeps the polygon identity")
	assert.Equal(t, orig.CreatedAt, updated.CreatedAt)
	assert.Len(t, updated.Points, 5)

	polys := e.Polygons()
	require.Len(t, polys, 1)
	assert.Equal(t, updated.Points, polys[0].Points)
}

func TestEditUnknownPolygon(t *testing.T) {
	e := New(Config{})
	require.ErrorIs(t, e.Edit("nope"), ErrNotFound)
}

func TestPolygonCap(t *testing.T) {
	e := New(Config{MaxPolygons: 2})
	mustDraw(t, e, square(0))
	second := mustDraw(t, e, square(2))

	require.ErrorIs(t, e.Start(), ErrPolygonCap)

	// Editing at the cap is still allowed: it replaces, not adds.
	require.NoError(t, e.Edit(second.ID))
	require.NoError(t, e.AddPoint(geom.Point{Lng: 3, Lat: 4}))
	_, err := e.Complete()
	require.NoError(t, err)
	assert.Len(t, e.Polygons(), 2)

	// Deleting frees a slot again.
	require.NoError(t, e.Delete(second.ID))
	require.NoError(t, e.Start())
}

func TestDeleteSelectedAbandonsEdit(t *testing.T) {
	e := New(Config{})
	poly := mustDraw(t, e, square(0))
	require.NoError(t, e.Edit(poly.ID))

	require.NoError(t, e.Delete(poly.ID))
	st := e.State()
	assert.Equal(t, ModeIdle, st.Mode)
	assert.Empty(t, st.SelectedPolygonID)
	assert.Empty(t, st.Polygons)

	require.ErrorIs(t, e.Delete(poly.ID), ErrNotFound)
}

func TestRename(t *testing.T) {
	e := New(Config{})
	poly := mustDraw(t, e, square(0))

	require.NoError(t, e.Rename(poly.ID, "Eixample"))
	assert.Equal(t, "Eixample", e.Polygons()[0].Name)

	require.ErrorIs(t, e.Rename("missing", "x"), ErrNotFound)
}

func TestReset(t *testing.T) {
	e := New(Config{})
	mustDraw(t, e, square(0))
	require.NoError(t, e.Start())
	require.NoError(t, e.AddPoint(geom.Point{Lng: 5, Lat: 5}))

	e.Reset()
	st := e.State()
	assert.Equal(t, ModeIdle, st.Mode)
	assert.Empty(t, st.CurrentPoints)
	assert.Empty(t, st.Polygons)
}
