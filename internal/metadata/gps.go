package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

// dmsPattern matches exiftool's default coordinate rendering, e.g.
// `47 deg 36' 35.0" N`. The hemisphere letter is optional.
var dmsPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*deg\s*(\d+(?:\.\d+)?)'\s*(\d+(?:\.\d+)?)"?\s*([NSEW])?$`)

// ResolveGPS returns the first complete, in-range coordinate pair found
// across the sources, in priority order. A source that yields only one
// parseable component is skipped entirely; components are never mixed
// between sources.
func ResolveGPS(bundle Bundle) (lat, lon float64, ok bool) {
	// (a) exiftool explicit latitude/longitude with reference letters.
	if lat, lon, ok := pairFrom(bundle, SourceExifTool, "GPSLatitude", "GPSLatitudeRef", "GPSLongitude", "GPSLongitudeRef"); ok {
		return lat, lon, true
	}

	// (b) exiftool composite position: "lat, lon".
	if raw, present := bundle.Field(SourceExifTool, "GPSPosition"); present {
		if lat, lon, ok := parsePosition(raw); ok {
			return lat, lon, true
		}
	}

	// (c) Spotlight numeric attributes.
	if lat, lon, ok := pairFrom(bundle, SourceSpotlight, "kMDItemLatitude", "", "kMDItemLongitude", ""); ok {
		return lat, lon, true
	}

	// (d) embedded GPS tag group (already signed decimal).
	if lat, lon, ok := pairFrom(bundle, SourceEmbedded, "GPSLatitude", "", "GPSLongitude", ""); ok {
		return lat, lon, true
	}

	return 0, 0, false
}

// pairFrom parses both components from one source, all-or-nothing.
func pairFrom(bundle Bundle, source, latField, latRefField, lonField, lonRefField string) (float64, float64, bool) {
	rawLat, okLat := bundle.Field(source, latField)
	rawLon, okLon := bundle.Field(source, lonField)
	if !okLat || !okLon {
		return 0, 0, false
	}

	latRef, _ := bundle.Field(source, latRefField)
	lonRef, _ := bundle.Field(source, lonRefField)

	lat, okLat := parseCoordinate(rawLat, latRef)
	lon, okLon := parseCoordinate(rawLon, lonRef)
	if !okLat || !okLon {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// parsePosition splits a composite "lat, lon" string and parses each half.
func parsePosition(raw string) (float64, float64, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, okLat := parseCoordinate(parts[0], "")
	lon, okLon := parseCoordinate(parts[1], "")
	if !okLat || !okLon {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// parseCoordinate converts one coordinate component to signed decimal
// degrees. Accepted forms: signed decimal ("47.6097", "-122.33"), decimal
// with trailing hemisphere ("122.33 W"), and degree-minute-second
// ("47 deg 36' 35.0\" N"). When the raw value is unsigned and carries no
// inline hemisphere, the separate reference letter decides the sign; an
// inline hemisphere or explicit sign wins over the reference field.
func parseCoordinate(raw, ref string) (float64, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, false
	}

	if m := dmsPattern.FindStringSubmatch(value); m != nil {
		deg, err1 := strconv.ParseFloat(m[1], 64)
		min, err2 := strconv.ParseFloat(m[2], 64)
		sec, err3 := strconv.ParseFloat(m[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, false
		}
		dec := deg + min/60 + sec/3600
		hemisphere := m[4]
		if hemisphere == "" {
			hemisphere = strings.TrimSpace(ref)
		}
		return applyHemisphere(dec, hemisphere), true
	}

	// Decimal form, possibly with a trailing hemisphere letter.
	hemisphere := ""
	if n := len(value); n > 1 {
		last := value[n-1]
		if last == 'N' || last == 'S' || last == 'E' || last == 'W' {
			hemisphere = string(last)
			value = strings.TrimSpace(value[:n-1])
		}
	}

	dec, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}

	if dec < 0 {
		// Already signed; reference letters do not apply twice.
		return dec, true
	}
	if hemisphere == "" {
		hemisphere = strings.TrimSpace(ref)
	}
	return applyHemisphere(dec, hemisphere), true
}

func applyHemisphere(dec float64, hemisphere string) float64 {
	switch strings.ToUpper(strings.TrimSpace(hemisphere)) {
	case "S", "W", "SOUTH", "WEST":
		return -dec
	default:
		return dec
	}
}
