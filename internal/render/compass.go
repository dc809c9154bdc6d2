package render

import (
	"fmt"
	"math"
	"os"

	"github.com/fogleman/gg"
)

// CompassRenderer draws the camera-heading glyph: a compass circle with
// cardinal labels and a red arrow pointing at the bearing.
type CompassRenderer struct {
	tempDir string
	sizePx  int
}

func NewCompassRenderer(tempDir string, sizePx int) *CompassRenderer {
	if sizePx < 40 {
		sizePx = 100
	}
	return &CompassRenderer{tempDir: tempDir, sizePx: sizePx}
}

// Render writes the glyph for a heading in degrees (0 = North, 90 = East)
// and returns the PNG path.
func (r *CompassRenderer) Render(heading float64) (string, error) {
	size := float64(r.sizePx)
	dc := gg.NewContext(r.sizePx, r.sizePx)

	dc.SetRGB255(255, 255, 255)
	dc.Clear()

	cx, cy := size/2, size/2
	radius := size/2 - 18

	dc.SetRGB255(0, 0, 0)
	dc.SetLineWidth(2)
	dc.DrawCircle(cx, cy, radius)
	dc.Stroke()

	dc.DrawStringAnchored("N", cx, cy-radius-8, 0.5, 0.5)
	dc.DrawStringAnchored("E", cx+radius+8, cy, 0.5, 0.5)
	dc.DrawStringAnchored("S", cx, cy+radius+8, 0.5, 0.5)
	dc.DrawStringAnchored("W", cx-radius-8, cy, 0.5, 0.5)

	// Arrow tip; bearing measured clockwise from north.
	rad := heading * math.Pi / 180
	tipX := cx + (radius-4)*math.Sin(rad)
	tipY := cy - (radius-4)*math.Cos(rad)

	dc.SetRGB255(255, 0, 0)
	dc.SetLineWidth(3)
	dc.DrawLine(cx, cy, tipX, tipY)
	dc.Stroke()

	// Arrow head: two short strokes back from the tip.
	headSize := 8.0
	for _, offset := range []float64{math.Pi - math.Pi/6, math.Pi + math.Pi/6} {
		a := rad + offset
		dc.DrawLine(tipX, tipY, tipX+headSize*math.Sin(a), tipY-headSize*math.Cos(a))
		dc.Stroke()
	}

	dc.SetRGB255(0, 0, 0)
	dc.DrawStringAnchored(fmt.Sprintf("%.1f°", heading), cx, size-6, 0.5, 0.5)

	f, err := os.CreateTemp(r.tempDir, "appendix-compass-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create compass temp file: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := dc.SavePNG(path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write compass image: %w", err)
	}
	return path, nil
}

// CleanupFiles removes rendered temp images, tolerating already-missing
// files. Safe to call repeatedly.
func CleanupFiles(paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			// Best effort; the OS temp dir is the final backstop.
			continue
		}
	}
}
