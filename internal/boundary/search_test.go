package boundary

import (
	"testing"

	overpass "github.com/serjvanilla/go-overpass"
	"github.com/stretchr/testify/assert"

	"github.com/arealab/geofilter/internal/geom"
)

func TestRelationToItem(t *testing.T) {
	rel := &overpass.Relation{
		Meta: overpass.Meta{
			ID: 347950,
			Tags: map[string]string{
				"name":        "Barcelona",
				"name:ca":     "Barcelona",
				"admin_level": "8",
				"wikidata":    "Q1492",
			},
		},
		Members: []overpass.RelationMember{
			{Role: "admin_centre", Node: &overpass.Node{Lat: 41.38, Lon: 2.17}},
		},
	}

	item := relationToItem(rel, "en", 1)
	assert.Equal(t, "Barcelona", item.Name)
	assert.Equal(t, geom.TypeDistrict, item.Type)
	assert.Equal(t, 8, item.AdminLevel)
	assert.Equal(t, "Q1492", item.StableKey)
	assert.Equal(t, int64(347950), item.ExternalGeometryID)
	assert.Equal(t, 41.38, item.CenterLat)
	assert.Equal(t, 2.17, item.CenterLon)
	assert.True(t, item.Syncable())
}

func TestRelationToItemLocalizedNameAndMissingTags(t *testing.T) {
	rel := &overpass.Relation{
		Meta: overpass.Meta{
			ID:   1,
			Tags: map[string]string{"name": "München", "name:en": "Munich"},
		},
	}
	item := relationToItem(rel, "en", 1)
	assert.Equal(t, "Munich", item.Name)
	assert.Equal(t, geom.TypeCity, item.Type, "missing admin_level falls back to city")
	assert.Empty(t, item.StableKey)
	assert.False(t, item.Syncable())
}

func TestRelationCenterAveragesMembers(t *testing.T) {
	rel := &overpass.Relation{
		Members: []overpass.RelationMember{
			{Node: &overpass.Node{Lat: 40, Lon: 2}},
			{Way: &overpass.Way{Nodes: []*overpass.Node{
				{Lat: 42, Lon: 4},
				nil,
			}}},
		},
	}
	lat, lon := relationCenter(rel)
	assert.Equal(t, 41.0, lat)
	assert.Equal(t, 3.0, lon)

	lat, lon = relationCenter(&overpass.Relation{})
	assert.Zero(t, lat)
	assert.Zero(t, lon)
}

func TestEscapeRegex(t *testing.T) {
	assert.Equal(t, `Sant Cugat`, escapeRegex("  Sant Cugat "))
	assert.Equal(t, `L'Hospitalet`, escapeRegex(`L'Hospitalet`), "apostrophes pass through")
	assert.Equal(t, `a\.b\*c`, escapeRegex("a.b*c"))
	assert.Equal(t, `\"x\"`, escapeRegex(`"x"`))
}
