package geom

// BoundaryType is the location-type taxonomy for administrative areas.
type BoundaryType string

const (
	TypeCountry      BoundaryType = "country"
	TypeRegion       BoundaryType = "region"
	TypeProvince     BoundaryType = "province"
	TypeComarca      BoundaryType = "comarca"
	TypeCity         BoundaryType = "city"
	TypeDistrict     BoundaryType = "district"
	TypeNeighborhood BoundaryType = "neighborhood"
)

// adminLevelTypes maps OSM-style admin levels to the taxonomy.
var adminLevelTypes = map[int]BoundaryType{
	2:  TypeCountry,
	4:  TypeProvince,
	6:  TypeCity,
	8:  TypeDistrict,
	10: TypeNeighborhood,
}

// AdminLevelType resolves an admin level to a boundary type. Unmapped
// levels fall back to the city-equivalent tier.
func AdminLevelType(level int) BoundaryType {
	if t, ok := adminLevelTypes[level]; ok {
		return t
	}
	return TypeCity
}

// BoundaryItem is an administrative region candidate. StableKey is the
// cross-source identifier required for toggle semantics; items without
// one cannot be synced into a selection.
type BoundaryItem struct {
	ID                 int64        `json:"id" doc:"Local numeric identifier"`
	Name               string       `json:"name" doc:"Display name"`
	Type               BoundaryType `json:"type" doc:"Location type" enum:"country,region,province,comarca,city,district,neighborhood"`
	AdminLevel         int          `json:"adminLevel,omitempty" doc:"Administrative level"`
	CenterLat          float64      `json:"centerLat,omitempty" doc:"Center latitude"`
	CenterLon          float64      `json:"centerLon,omitempty" doc:"Center longitude"`
	AreaSqKm           float64      `json:"areaSqKm,omitempty" doc:"Approximate area in square kilometers"`
	StableKey          string       `json:"stableKey,omitempty" doc:"Stable cross-source identifier"`
	ExternalGeometryID int64        `json:"externalGeometryId,omitempty" doc:"Geometry id in the boundary source"`
}

// Syncable reports whether the item can be added to or removed from a
// selection set.
func (b BoundaryItem) Syncable() bool {
	return b.StableKey != ""
}
