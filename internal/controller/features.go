package controller

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/arealab/geofilter/internal/draw"
	"github.com/arealab/geofilter/internal/geom"
	"github.com/arealab/geofilter/internal/isochrone"
	"github.com/arealab/geofilter/internal/radius"
)

// drawPreviewFC renders an in-progress draw session: the session's
// completed polygons, the open line/ring being authored, and one circle
// feature per vertex. The first point is marked as the anchor for the
// editor control popup.
func drawPreviewFC(state draw.Snapshot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, poly := range state.Polygons {
		f := geojson.NewFeature(poly.Orb())
		f.Properties["id"] = poly.ID
		f.Properties["name"] = poly.Name
		f.Properties["committed"] = true
		f.Properties["editing"] = poly.ID == state.SelectedPolygonID
		fc.Append(f)
	}

	pts := state.CurrentPoints
	if len(pts) >= 2 {
		line := make(orb.LineString, 0, len(pts))
		for _, p := range pts {
			line = append(line, p.Orb())
		}
		fc.Append(geojson.NewFeature(line))
	}
	if len(pts) >= geom.MinPolygonPoints {
		draft := geom.Polygon{Points: pts}
		f := geojson.NewFeature(draft.Orb())
		f.Properties["draft"] = true
		fc.Append(f)
	}
	for i, p := range pts {
		f := geojson.NewFeature(p.Orb())
		f.Properties["anchor"] = i == 0
		fc.Append(f)
	}
	return fc
}

func polygonsFC(polys []geom.Polygon) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, poly := range polys {
		f := geojson.NewFeature(poly.Orb())
		f.Properties["id"] = poly.ID
		f.Properties["name"] = poly.Name
		fc.Append(f)
	}
	return fc
}

func isochroneFC(res *isochrone.Result) *geojson.FeatureCollection {
	if res == nil {
		return geojson.NewFeatureCollection()
	}
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(res.Polygon.Orb())
	f.Properties["profile"] = string(res.Settings.Profile)
	f.Properties["minutes"] = res.Settings.Minutes
	f.Properties["color"] = res.Color
	fc.Append(f)
	return fc
}

func radiusFC(res *radius.Result) *geojson.FeatureCollection {
	if res == nil {
		return geojson.NewFeatureCollection()
	}
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(res.Polygon.Orb())
	f.Properties["radiusKm"] = res.Settings.RadiusKm
	fc.Append(f)
	center := geojson.NewFeature(res.Settings.Center.Orb())
	center.Properties["center"] = true
	fc.Append(center)
	return fc
}

func boundariesFC(items []geom.BoundaryItem) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, item := range items {
		f := geojson.NewFeature(orb.Point{item.CenterLon, item.CenterLat})
		f.Properties["name"] = item.Name
		f.Properties["type"] = string(item.Type)
		f.Properties["stableKey"] = item.StableKey
		f.Properties["adminLevel"] = item.AdminLevel
		if item.ExternalGeometryID != 0 {
			f.Properties["externalGeometryId"] = item.ExternalGeometryID
		}
		fc.Append(f)
	}
	return fc
}

// featureToBoundaryItem reconstructs a boundary item from a clicked map
// feature's properties. A missing stableKey property survives as an
// empty key; the selection engine logs and skips it.
func featureToBoundaryItem(f *geojson.Feature) geom.BoundaryItem {
	if f == nil {
		return geom.BoundaryItem{}
	}
	item := geom.BoundaryItem{
		Name:      propString(f, "name"),
		Type:      geom.BoundaryType(propString(f, "type")),
		StableKey: propString(f, "stableKey"),
	}
	if v, ok := f.Properties["adminLevel"]; ok {
		switch n := v.(type) {
		case int:
			item.AdminLevel = n
		case float64:
			item.AdminLevel = int(n)
		}
	}
	if pt, ok := f.Geometry.(orb.Point); ok {
		item.CenterLon = pt[0]
		item.CenterLat = pt[1]
	}
	return item
}

func propString(f *geojson.Feature, key string) string {
	if v, ok := f.Properties[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
