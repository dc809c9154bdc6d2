package builder

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/d-dboss/Worksite-Appendix-Creator/internal/metadata"
)

type fakeSource struct {
	name   string
	fields map[string]string
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Query(ctx context.Context, path string) map[string]string {
	return s.fields
}

func writeTestPNG(t *testing.T, path string, width, height int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
}

func TestBuild_ResolvesCaptionAndDimensions(t *testing.T) {
	photoPath := filepath.Join(t.TempDir(), "wall.png")
	writeTestPNG(t, photoPath, 4, 3)

	sources := []metadata.Source{
		&fakeSource{name: metadata.SourceExifTool, fields: map[string]string{
			"ImageDescription": "north wall",
		}},
	}

	rec := New(sources, t.TempDir()).Build(context.Background(), photoPath)

	if rec.SourcePath != photoPath || rec.DisplayName != "wall.png" {
		t.Fatalf("unexpected identity fields: %+v", rec)
	}
	if rec.Caption != "north wall" || rec.CaptionSource != "exiftool:ImageDescription" {
		t.Fatalf("unexpected caption: %q from %q", rec.Caption, rec.CaptionSource)
	}
	if rec.Width != 4 || rec.Height != 3 {
		t.Fatalf("unexpected dimensions: %dx%d", rec.Width, rec.Height)
	}
	if rec.NormalizedCopyPath != "" {
		t.Fatalf("png should not be converted, got copy %q", rec.NormalizedCopyPath)
	}
	if rec.ProcessingError != "" {
		t.Fatalf("unexpected processing error: %s", rec.ProcessingError)
	}
}

func TestBuild_SetsLocationPairTogether(t *testing.T) {
	photoPath := filepath.Join(t.TempDir(), "located.png")
	writeTestPNG(t, photoPath, 2, 2)

	sources := []metadata.Source{
		&fakeSource{name: metadata.SourceExifTool, fields: map[string]string{
			"GPSLatitude":     "47.6097",
			"GPSLatitudeRef":  "North",
			"GPSLongitude":    "122.3331",
			"GPSLongitudeRef": "West",
		}},
	}

	rec := New(sources, t.TempDir()).Build(context.Background(), photoPath)

	if !rec.HasLocation() {
		t.Fatal("expected a resolved location")
	}
	if *rec.Latitude != 47.6097 || *rec.Longitude != -122.3331 {
		t.Fatalf("unexpected pair: %v, %v", *rec.Latitude, *rec.Longitude)
	}
}

func TestBuild_PartialCoordinateLeavesBothNil(t *testing.T) {
	photoPath := filepath.Join(t.TempDir(), "partial.png")
	writeTestPNG(t, photoPath, 2, 2)

	sources := []metadata.Source{
		&fakeSource{name: metadata.SourceExifTool, fields: map[string]string{
			"GPSLatitude":    "47.6097",
			"GPSLatitudeRef": "North",
		}},
	}

	rec := New(sources, t.TempDir()).Build(context.Background(), photoPath)

	if rec.Latitude != nil || rec.Longitude != nil {
		t.Fatalf("expected both coordinates nil, got %v, %v", rec.Latitude, rec.Longitude)
	}
}

func TestBuild_WrapsFullCircleHeadingToNorth(t *testing.T) {
	photoPath := filepath.Join(t.TempDir(), "north.png")
	writeTestPNG(t, photoPath, 2, 2)

	sources := []metadata.Source{
		&fakeSource{name: metadata.SourceExifTool, fields: map[string]string{
			"GPSImgDirection": "360",
		}},
	}

	rec := New(sources, t.TempDir()).Build(context.Background(), photoPath)

	if rec.Heading == nil || *rec.Heading != 0 {
		t.Fatalf("expected heading 0, got %v", rec.Heading)
	}
}

func TestBuild_SynthesizesFallbackCaption(t *testing.T) {
	photoPath := filepath.Join(t.TempDir(), "IMG_20230401_143000.png")
	writeTestPNG(t, photoPath, 2, 2)

	rec := New(nil, t.TempDir()).Build(context.Background(), photoPath)

	if rec.Caption != "Photo from April 01, 2023, 14:30" {
		t.Fatalf("unexpected fallback caption: %q", rec.Caption)
	}
	if rec.CaptionSource != "" {
		t.Fatalf("fallback caption must not carry a source, got %q", rec.CaptionSource)
	}
}

func TestBuild_RecordsErrorButStaysUsable(t *testing.T) {
	// The file does not exist: normalization fails, but the record keeps
	// its identity and still gets a fallback caption.
	missing := filepath.Join(t.TempDir(), "gone_forever.jpg")

	rec := New(nil, t.TempDir()).Build(context.Background(), missing)

	if rec.ProcessingError == "" {
		t.Fatal("expected a processing error for a missing file")
	}
	if rec.Caption != "gone forever" {
		t.Fatalf("unexpected fallback caption: %q", rec.Caption)
	}
	if rec.SourcePath != missing {
		t.Fatalf("unexpected source path: %q", rec.SourcePath)
	}
}

func TestBuild_CorruptDecodableFileSetsError(t *testing.T) {
	// A .tiff that is not a TIFF fails conversion; the error is recorded
	// and no temp copy is left behind.
	photoPath := filepath.Join(t.TempDir(), "broken.tiff")
	if err := os.WriteFile(photoPath, []byte("not a tiff"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	rec := New(nil, t.TempDir()).Build(context.Background(), photoPath)

	if rec.ProcessingError == "" {
		t.Fatal("expected a processing error")
	}
	if rec.NormalizedCopyPath != "" {
		t.Fatalf("expected no normalized copy, got %q", rec.NormalizedCopyPath)
	}
	if rec.Caption == "" {
		t.Fatal("expected a fallback caption despite the failure")
	}
}
