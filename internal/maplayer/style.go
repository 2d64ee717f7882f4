package maplayer

// styles carries the theme-dependent color/opacity values for one kind.
type style struct {
	fill        string
	stroke      string
	fillOpacity float64
}

var lightStyles = map[Kind]style{
	KindDrawPreview: {fill: "#3388ff", stroke: "#2266cc", fillOpacity: 0.25},
	KindPolygons:    {fill: "#3388ff", stroke: "#2266cc", fillOpacity: 0.4},
	KindIsochrone:   {fill: "#4caf50", stroke: "#388e3c", fillOpacity: 0.35},
	KindRadius:      {fill: "#9c27b0", stroke: "#7b1fa2", fillOpacity: 0.3},
	KindBoundaries:  {fill: "#ff9800", stroke: "#f57c00", fillOpacity: 0.3},
}

var darkStyles = map[Kind]style{
	KindDrawPreview: {fill: "#66aaff", stroke: "#99ccff", fillOpacity: 0.3},
	KindPolygons:    {fill: "#66aaff", stroke: "#99ccff", fillOpacity: 0.45},
	KindIsochrone:   {fill: "#81c784", stroke: "#a5d6a7", fillOpacity: 0.4},
	KindRadius:      {fill: "#ba68c8", stroke: "#ce93d8", fillOpacity: 0.35},
	KindBoundaries:  {fill: "#ffb74d", stroke: "#ffcc80", fillOpacity: 0.35},
}

// specsFor builds the layer stack for a kind under a theme. Every kind
// gets a fill and an outline; the draw preview additionally gets vertex
// circles with the first point styled as the editor anchor.
func specsFor(kind Kind, theme Theme) []LayerSpec {
	styles := lightStyles
	if theme == ThemeDark {
		styles = darkStyles
	}
	st := styles[kind]

	specs := []LayerSpec{
		{ID: string(kind) + "-fill", Type: "fill", Fill: st.fill, Opacity: st.fillOpacity},
		{ID: string(kind) + "-outline", Type: "line", Stroke: st.stroke, Opacity: 0.9},
	}
	if kind == KindDrawPreview {
		specs = append(specs,
			LayerSpec{ID: string(kind) + "-vertices", Type: "circle", Fill: st.stroke, Opacity: 1},
			LayerSpec{ID: string(kind) + "-anchor", Type: "circle", Fill: "#ffffff", Stroke: st.stroke, Opacity: 1},
		)
	}
	return specs
}
