package metadata

import (
	"context"
	"os"
	"strconv"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

func init() {
	// Register manufacturer-specific note parsers so vendor fields decode.
	exif.RegisterParsers(mknote.All...)
}

// EmbeddedSource reads tags embedded in the file itself, in-process.
// It works on JPEG and TIFF-based containers; HEIC files are left to the
// exiftool adapter. Field names are the EXIF tag names.
type EmbeddedSource struct{}

func NewEmbeddedSource() *EmbeddedSource { return &EmbeddedSource{} }

func (s *EmbeddedSource) Name() string { return SourceEmbedded }

func (s *EmbeddedSource) Query(ctx context.Context, path string) map[string]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil
	}

	fields := make(map[string]string)

	if v, ok := stringTag(x, exif.ImageDescription); ok {
		fields["ImageDescription"] = v
	}

	if lat, lon, err := x.LatLong(); err == nil {
		fields["GPSLatitude"] = strconv.FormatFloat(lat, 'f', -1, 64)
		fields["GPSLongitude"] = strconv.FormatFloat(lon, 'f', -1, 64)
	}

	if v, ok := ratioTag(x, exif.GPSImgDirection); ok {
		fields["GPSImgDirection"] = v
	}
	if v, ok := ratioTag(x, exif.GPSDestBearing); ok {
		fields["GPSDestBearing"] = v
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func stringTag(x *exif.Exif, name exif.FieldName) (string, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return "", false
	}
	v, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	return v, true
}

func ratioTag(x *exif.Exif, name exif.FieldName) (string, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return "", false
	}
	if v, err := tag.StringVal(); err == nil {
		return v, true
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return "", false
	}
	return strconv.FormatFloat(float64(num)/float64(den), 'f', -1, 64), true
}

// Orientation reads the EXIF orientation value (1..8) from the file.
// Returns 1 (no transform) when the tag is absent or unreadable.
func Orientation(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 1
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}
