package boundary

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	overpass "github.com/serjvanilla/go-overpass"

	"github.com/arealab/geofilter/internal/geom"
)

// Searcher finds administrative boundary candidates by free-text name
// via an Overpass endpoint. The wikidata tag of a relation is used as
// the stable cross-source key; relations without one are still returned
// (for display) but cannot be toggled into a selection.
type Searcher struct {
	client  overpass.Client
	timeout time.Duration
	log     logr.Logger
}

// NewSearcher creates a searcher against the given Overpass endpoint.
func NewSearcher(endpoint string, timeout time.Duration, log logr.Logger) *Searcher {
	httpClient := &http.Client{Timeout: timeout}
	return &Searcher{
		client:  overpass.NewWithSettings(endpoint, 2, httpClient),
		timeout: timeout,
		log:     log,
	}
}

// Search queries administrative relations whose name (or localized
// name:<lang>) matches the given text.
func (s *Searcher) Search(ctx context.Context, name, lang string) ([]geom.BoundaryItem, error) {
	name = escapeRegex(name)
	if name == "" {
		return nil, fmt.Errorf("search text is required")
	}
	if lang == "" {
		lang = "en"
	}

	query := fmt.Sprintf(`
		[out:json];
		(
			relation["boundary"="administrative"]["name"~"%s",i];
			relation["boundary"="administrative"]["name:%s"~"%s",i];
		);
		out body;
		>;
		out skel qt;
	`, name, lang, name)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	done := make(chan struct{})
	var (
		result overpass.Result
		err    error
	)
	go func() {
		result, err = s.client.Query(query)
		close(done)
	}()
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("boundary search canceled: %w", ctx.Err())
	case <-done:
	}
	if err != nil {
		return nil, fmt.Errorf("boundary search failed: %w", err)
	}

	items := make([]geom.BoundaryItem, 0, len(result.Relations))
	localID := int64(1)
	for _, rel := range result.Relations {
		if rel == nil {
			continue
		}
		item := relationToItem(rel, lang, localID)
		if item.Name == "" {
			continue
		}
		items = append(items, item)
		localID++
	}

	// Overpass map order is unstable; sort by admin level then name so
	// countries come before their districts.
	sort.Slice(items, func(i, j int) bool {
		if items[i].AdminLevel != items[j].AdminLevel {
			return items[i].AdminLevel < items[j].AdminLevel
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func relationToItem(rel *overpass.Relation, lang string, localID int64) geom.BoundaryItem {
	name := rel.Tags["name:"+lang]
	if name == "" {
		name = rel.Tags["name"]
	}

	level := 0
	if lv, err := strconv.Atoi(rel.Tags["admin_level"]); err == nil {
		level = lv
	}

	lat, lon := relationCenter(rel)

	return geom.BoundaryItem{
		ID:                 localID,
		Name:               name,
		Type:               geom.AdminLevelType(level),
		AdminLevel:         level,
		CenterLat:          lat,
		CenterLon:          lon,
		StableKey:          rel.Tags["wikidata"],
		ExternalGeometryID: rel.ID,
	}
}

// relationCenter averages member node positions, preferring the
// admin_centre/label member when present.
func relationCenter(rel *overpass.Relation) (lat, lon float64) {
	for _, m := range rel.Members {
		if m.Node != nil && (m.Role == "admin_centre" || m.Role == "label") {
			return m.Node.Lat, m.Node.Lon
		}
	}

	var count int
	for _, m := range rel.Members {
		switch {
		case m.Node != nil:
			lat += m.Node.Lat
			lon += m.Node.Lon
			count++
		case m.Way != nil:
			for _, n := range m.Way.Nodes {
				if n == nil {
					continue
				}
				lat += n.Lat
				lon += n.Lon
				count++
			}
		}
	}
	if count == 0 {
		return 0, 0
	}
	return lat / float64(count), lon / float64(count)
}

// escapeRegex neutralizes Overpass regex metacharacters in user input.
func escapeRegex(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`, `"`, `\"`, `.`, `\.`, `*`, `\*`, `+`, `\+`,
		`?`, `\?`, `(`, `\(`, `)`, `\)`, `[`, `\[`, `]`, `\]`,
		`{`, `\{`, `}`, `\}`, `^`, `\^`, `$`, `\$`, `|`, `\|`,
	)
	return replacer.Replace(strings.TrimSpace(s))
}
