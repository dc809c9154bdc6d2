package render

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Public Overpass API instances. A random one is tried first to spread
// load; the rest serve as fallbacks.
var overpassEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.private.coffee/api/interpreter",
	"https://overpass.osm.jp/api/interpreter",
	"https://overpass.openstreetmap.ru/api/interpreter",
}

type overpassData struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string            `json:"type"`
	Tags     map[string]string `json:"tags"`
	Geometry []overpassPoint   `json:"geometry"`
}

type overpassPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// buildOverpassQuery asks for the features the map renderer knows how to
// draw: roads, buildings, water, land use and points of interest around
// the photo location.
func buildOverpassQuery(lat, lon float64, radius int) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, selector := range []string{"[highway]", "[building]", "[natural=water]", "[landuse]", "[amenity]"} {
		fmt.Fprintf(&b, "way(around:%d,%f,%f)%s;", radius, lat, lon, selector)
	}
	b.WriteString(");out body geom;")
	return b.String()
}

// fetchOverpass posts the query to each endpoint in a shuffled order and
// returns the first successful response. All endpoints failing is not an
// error the caller escalates; it falls back to the placeholder map.
func (r *MapRenderer) fetchOverpass(ctx context.Context, lat, lon float64, radius int) (*overpassData, error) {
	query := buildOverpassQuery(lat, lon, radius)
	form := url.Values{"data": []string{query}}

	order := rand.Perm(len(r.endpoints))

	var lastErr error
	for _, i := range order {
		endpoint := r.endpoints[i]

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := r.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("overpass %s: status %d", endpoint, resp.StatusCode)
			continue
		}

		var data overpassData
		err = json.NewDecoder(resp.Body).Decode(&data)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return &data, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no overpass endpoints configured")
	}
	return nil, lastErr
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
