// Package render produces the small per-photo companion images: a map of
// the photo location and a compass glyph for the camera heading. Both are
// written as temporary PNG files the caller is responsible for removing.
package render

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"

	"github.com/fogleman/gg"
)

// MapRenderer fetches OpenStreetMap features around a coordinate and
// rasterizes them. When every data source fails it renders an offline
// placeholder instead; only a filesystem failure is an error.
type MapRenderer struct {
	client    *http.Client
	endpoints []string
	tempDir   string
	zoom      int
	sizePx    int
}

func NewMapRenderer(tempDir string, zoom, sizePx int) *MapRenderer {
	if zoom < 1 {
		zoom = 14
	}
	if sizePx < 50 {
		sizePx = 300
	}
	return &MapRenderer{
		client:    defaultHTTPClient(),
		endpoints: overpassEndpoints,
		tempDir:   tempDir,
		zoom:      zoom,
		sizePx:    sizePx,
	}
}

// Render produces a map PNG centered on the coordinate and returns its
// path.
func (r *MapRenderer) Render(ctx context.Context, lat, lon float64) (string, error) {
	// Higher zoom means a smaller query radius; 500m at zoom 10.
	radius := int(500 / (float64(r.zoom) / 10))
	if radius < 20 {
		radius = 20
	}

	data, err := r.fetchOverpass(ctx, lat, lon, radius)
	if err != nil || len(data.Elements) == 0 {
		return r.renderPlaceholder(lat, lon)
	}

	return r.renderFeatures(data, lat, lon)
}

// renderFeatures draws the fetched ways with the road/building/water
// palette, a pin on the photo location, the coordinates and the OSM
// attribution.
func (r *MapRenderer) renderFeatures(data *overpassData, lat, lon float64) (string, error) {
	size := float64(r.sizePx)
	dc := gg.NewContext(r.sizePx, r.sizePx)

	dc.SetRGB255(240, 248, 255)
	dc.Clear()

	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, el := range data.Elements {
		for _, pt := range el.Geometry {
			minLat = math.Min(minLat, pt.Lat)
			maxLat = math.Max(maxLat, pt.Lat)
			minLon = math.Min(minLon, pt.Lon)
			maxLon = math.Max(maxLon, pt.Lon)
		}
	}
	// No geometry, or geometry collapsed to a single point: fall back to
	// a zoom-sized box so the projection has a non-zero span.
	if math.IsInf(minLat, 1) || maxLat == minLat || maxLon == minLon {
		zoomFactor := float64(r.zoom) / 10
		minLat, maxLat = lat-0.003/zoomFactor, lat+0.003/zoomFactor
		minLon, maxLon = lon-0.003/zoomFactor, lon+0.003/zoomFactor
	}

	// Small margin around the feature bounds.
	bufLat := (maxLat - minLat) * 0.1
	bufLon := (maxLon - minLon) * 0.1
	minLat, maxLat = minLat-bufLat, maxLat+bufLat
	minLon, maxLon = minLon-bufLon, maxLon+bufLon

	toPixel := func(plat, plon float64) (float64, float64) {
		x := (plon - minLon) / (maxLon - minLon) * size
		y := (maxLat - plat) / (maxLat - minLat) * size
		return x, y
	}

	drawGrid(dc, size)

	for _, el := range data.Elements {
		if el.Type != "way" || len(el.Geometry) < 2 {
			continue
		}
		style := featureStyle(el.Tags)

		dc.NewSubPath()
		for i, pt := range el.Geometry {
			x, y := toPixel(pt.Lat, pt.Lon)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}

		if style.fill {
			dc.SetRGBA255(style.r, style.g, style.b, 150)
			dc.FillPreserve()
		}
		dc.SetRGB255(style.r, style.g, style.b)
		dc.SetLineWidth(style.width)
		dc.Stroke()
	}

	cx, cy := toPixel(lat, lon)
	drawPin(dc, cx, cy)

	dc.SetRGB255(0, 0, 0)
	dc.DrawString(fmt.Sprintf("Lat: %.6f, Lon: %.6f", lat, lon), 8, size-10)
	drawAttribution(dc, size)
	drawBorder(dc, size)

	return r.savePNG(dc)
}

// renderPlaceholder draws the deterministic offline map: stylized land
// and water, a grid, roads, the pin and a compass rose.
func (r *MapRenderer) renderPlaceholder(lat, lon float64) (string, error) {
	size := float64(r.sizePx)
	dc := gg.NewContext(r.sizePx, r.sizePx)

	// Water above a rough coastline, land below.
	dc.SetRGB255(173, 216, 230)
	dc.Clear()

	dc.NewSubPath()
	dc.MoveTo(0, size/2)
	dc.LineTo(size/4, size/2-20)
	dc.LineTo(size/2, size/2-10)
	dc.LineTo(3*size/4, size/2+15)
	dc.LineTo(size, size/2+5)
	dc.LineTo(size, size)
	dc.LineTo(0, size)
	dc.ClosePath()
	dc.SetRGB255(240, 240, 224)
	dc.Fill()

	drawGrid(dc, size)

	// A few indicative roads.
	dc.SetRGB255(255, 255, 255)
	dc.SetLineWidth(2)
	dc.DrawLine(size/4, 0, size/4, size)
	dc.Stroke()
	dc.DrawLine(0, size/3, size, size/3)
	dc.Stroke()
	dc.DrawLine(size/2, 0, 3*size/4, size)
	dc.Stroke()

	drawPin(dc, size/2, size/2)

	dc.SetRGB255(80, 80, 80)
	dc.DrawStringAnchored("Location Map (Offline)", size/2, 14, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("Lat: %.6f", lat), size/2, size-26, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("Lon: %.6f", lon), size/2, size-14, 0.5, 0.5)

	drawCompassRose(dc, size-28, 28, 15)
	drawAttribution(dc, size)
	drawBorder(dc, size)

	return r.savePNG(dc)
}

func (r *MapRenderer) savePNG(dc *gg.Context) (string, error) {
	f, err := os.CreateTemp(r.tempDir, "appendix-map-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create map temp file: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := dc.SavePNG(path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write map image: %w", err)
	}
	return path, nil
}

type wayStyle struct {
	r, g, b int
	width   float64
	fill    bool
}

func featureStyle(tags map[string]string) wayStyle {
	switch {
	case tags["highway"] == "motorway" || tags["highway"] == "trunk" || tags["highway"] == "primary":
		return wayStyle{r: 255, width: 3}
	case tags["highway"] == "secondary" || tags["highway"] == "tertiary":
		return wayStyle{r: 255, g: 165, width: 2}
	case tags["highway"] != "":
		return wayStyle{r: 255, g: 255, b: 255, width: 2}
	case tags["building"] != "":
		return wayStyle{r: 169, g: 169, b: 169, width: 1, fill: true}
	case tags["natural"] == "water":
		return wayStyle{g: 191, b: 255, width: 1, fill: true}
	case tags["landuse"] == "forest" || tags["landuse"] == "wood":
		return wayStyle{r: 34, g: 139, b: 34, width: 1, fill: true}
	case tags["landuse"] == "residential" || tags["landuse"] == "commercial":
		return wayStyle{r: 245, g: 222, b: 179, width: 1, fill: true}
	default:
		return wayStyle{r: 100, g: 100, b: 100, width: 1}
	}
}

func drawGrid(dc *gg.Context, size float64) {
	dc.SetRGB255(200, 200, 200)
	dc.SetLineWidth(1)
	for i := 1; i < 8; i++ {
		pos := size * float64(i) / 8
		dc.DrawLine(pos, 0, pos, size)
		dc.Stroke()
		dc.DrawLine(0, pos, size, pos)
		dc.Stroke()
	}
}

func drawPin(dc *gg.Context, x, y float64) {
	// Shadow, red pin, white center dot.
	dc.SetRGB255(100, 100, 100)
	dc.DrawCircle(x+2, y+2, 7)
	dc.Fill()

	dc.SetRGB255(255, 0, 0)
	dc.DrawCircle(x, y, 7)
	dc.FillPreserve()
	dc.SetRGB255(0, 0, 0)
	dc.SetLineWidth(1)
	dc.Stroke()

	dc.SetRGB255(255, 255, 255)
	dc.DrawCircle(x, y, 2)
	dc.Fill()
}

func drawCompassRose(dc *gg.Context, x, y, radius float64) {
	dc.SetRGB255(80, 80, 80)
	dc.SetLineWidth(1)
	dc.DrawCircle(x, y, radius)
	dc.Stroke()
	dc.DrawLine(x, y-radius+3, x, y+radius-3)
	dc.Stroke()
	dc.DrawLine(x-radius+3, y, x+radius-3, y)
	dc.Stroke()
	dc.DrawStringAnchored("N", x, y-radius-6, 0.5, 0.5)
}

func drawAttribution(dc *gg.Context, size float64) {
	text := "(c) OpenStreetMap contributors"
	dc.SetRGB255(80, 80, 80)
	dc.DrawStringAnchored(text, size-6, size-6, 1, 0)
}

func drawBorder(dc *gg.Context, size float64) {
	dc.SetRGB255(0, 0, 0)
	dc.SetLineWidth(2)
	dc.DrawRectangle(1, 1, size-2, size-2)
	dc.Stroke()
}
