package isochrone

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/arealab/geofilter/internal/geom"
)

// HTTPClient talks to a Mapbox-style isochrone endpoint:
//
//	GET {base}/isochrone/v1/{profile}/{lng},{lat}?contours_minutes=N&polygons=true
//
// The response is a GeoJSON FeatureCollection; only the first polygon
// is used.
type HTTPClient struct {
	baseURL string
	token   string
	hc      *http.Client
}

// NewHTTPClient creates a client for the given service base URL. The
// token is optional and passed through as access_token when set.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Isochrone implements Client.
func (c *HTTPClient) Isochrone(ctx context.Context, center geom.Point, profile geom.Profile, minutes int) (orb.Polygon, error) {
	q := url.Values{}
	q.Set("contours_minutes", fmt.Sprintf("%d", minutes))
	q.Set("polygons", "true")
	if c.token != "" {
		q.Set("access_token", c.token)
	}
	endpoint := fmt.Sprintf("%s/isochrone/v1/%s/%f,%f?%s",
		c.baseURL, profile, center.Lng, center.Lat, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create isochrone request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("isochrone request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("isochrone service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read isochrone response: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse isochrone response: %w", err)
	}

	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			return g, nil
		case orb.MultiPolygon:
			if len(g) > 0 {
				return g[0], nil
			}
		}
	}
	return nil, ErrEmptyResult
}

var _ Client = (*HTTPClient)(nil)
