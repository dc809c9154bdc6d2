package document

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/d-dboss/Worksite-Appendix-Creator/pkg/types"
)

func writeTestPNG(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()

	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
}

func requirePDF(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		t.Fatalf("output is not a PDF (%d bytes)", len(data))
	}
}

func TestCreate_WritesDocumentWithPhotos(t *testing.T) {
	tmpDir := t.TempDir()
	photoPath := filepath.Join(tmpDir, "site.png")
	writeTestPNG(t, photoPath)

	entries := []Entry{
		{Record: types.PhotoRecord{
			SourcePath:  photoPath,
			DisplayName: "site.png",
			Caption:     "north wall",
			Width:       8,
			Height:      6,
		}},
	}

	outputPath := filepath.Join(tmpDir, "appendix.pdf")
	if err := Create(entries, outputPath, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requirePDF(t, outputPath)
}

func TestCreate_EachDensityProducesDocument(t *testing.T) {
	tmpDir := t.TempDir()
	photoPath := filepath.Join(tmpDir, "p.png")
	writeTestPNG(t, photoPath)

	var entries []Entry
	for i := 0; i < 5; i++ {
		entries = append(entries, Entry{Record: types.PhotoRecord{
			SourcePath:  photoPath,
			DisplayName: "p.png",
			Caption:     "photo",
			Width:       8,
			Height:      6,
		}})
	}

	for _, perPage := range []int{1, 2, 4} {
		outputPath := filepath.Join(tmpDir, "out.pdf")
		if err := Create(entries, outputPath, perPage); err != nil {
			t.Fatalf("per-page %d: unexpected error: %v", perPage, err)
		}
		requirePDF(t, outputPath)
	}
}

func TestCreate_UnembeddableImageGetsNoteNotFailure(t *testing.T) {
	tmpDir := t.TempDir()

	entries := []Entry{
		{Record: types.PhotoRecord{
			SourcePath:  filepath.Join(tmpDir, "raw.heic"),
			DisplayName: "raw.heic",
			Caption:     "unconverted photo",
		}},
	}

	outputPath := filepath.Join(tmpDir, "appendix.pdf")
	if err := Create(entries, outputPath, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requirePDF(t, outputPath)
}

func TestCreate_PrefersNormalizedCopy(t *testing.T) {
	tmpDir := t.TempDir()
	copyPath := filepath.Join(tmpDir, "normalized.png")
	writeTestPNG(t, copyPath)

	entries := []Entry{
		{Record: types.PhotoRecord{
			SourcePath:         filepath.Join(tmpDir, "original.heic"),
			DisplayName:        "original.heic",
			Caption:            "converted photo",
			NormalizedCopyPath: copyPath,
			Width:              8,
			Height:             6,
		}},
	}

	outputPath := filepath.Join(tmpDir, "appendix.pdf")
	if err := Create(entries, outputPath, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requirePDF(t, outputPath)
}

func TestCreate_EmptyEntryListStillWritesTitlePage(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.pdf")
	if err := Create(nil, outputPath, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requirePDF(t, outputPath)
}

func TestSlotRect_GridPositions(t *testing.T) {
	// Four per page: slot 3 is the bottom-right quadrant.
	x, y, w, h := slotRect(3, 4, 160, 240)
	if x != pageMargin+80 || y != pageMargin+120 {
		t.Fatalf("unexpected origin: %v, %v", x, y)
	}
	if w != 80 || h != 120 {
		t.Fatalf("unexpected size: %v x %v", w, h)
	}
}

func TestEmbeddable_ByExtension(t *testing.T) {
	if !embeddable("a.JPG") || !embeddable("b.png") || !embeddable("c.gif") {
		t.Fatal("expected jpeg/png/gif to be embeddable")
	}
	if embeddable("d.heic") || embeddable("e.tiff") || embeddable("f") {
		t.Fatal("expected non-embeddable formats rejected")
	}
}
