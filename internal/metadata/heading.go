package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

// headingFields is the bearing-field priority list. Several bearing-like
// fields exist (image direction, destination bearing, gimbal yaw) without
// a documented semantic distinction between them; the order below follows
// the original tool and is a judgment call, not a semantic ranking.
var headingFields = []struct {
	source string
	field  string
}{
	{SourceExifTool, "GPSImgDirection"},
	{SourceExifTool, "GPSDestBearing"},
	{SourceExifTool, "CameraYaw"},
	{SourceExifTool, "Yaw"},
	{SourceEmbedded, "GPSImgDirection"},
	{SourceEmbedded, "GPSDestBearing"},
}

// leadingNumber extracts the numeric prefix of a raw bearing value,
// tolerating trailing unit text like "123.4 (Magnetic North)".
var leadingNumber = regexp.MustCompile(`^[-+]?\d+(?:\.\d+)?`)

// ResolveHeading returns the first in-range bearing found in priority
// order. Values outside [0, 360] are skipped, not clamped. The returned
// value may be exactly 360; normalizing that to 0 is the record builder's
// concern.
func ResolveHeading(bundle Bundle) (float64, bool) {
	for _, probe := range headingFields {
		raw, present := bundle.Field(probe.source, probe.field)
		if !present {
			continue
		}

		numeric := leadingNumber.FindString(strings.TrimSpace(raw))
		if numeric == "" {
			continue
		}

		v, err := strconv.ParseFloat(numeric, 64)
		if err != nil {
			continue
		}
		if v < 0 || v > 360 {
			continue
		}
		return v, true
	}
	return 0, false
}
