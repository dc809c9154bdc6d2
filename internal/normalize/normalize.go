// Package normalize reads the visually-correct pixel dimensions of a
// photo and, when the source container is not directly usable by the
// document writer, produces a temporary JPEG copy of it.
package normalize

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	// Decoders beyond the stdlib set, registered for DecodeConfig.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/d-dboss/Worksite-Appendix-Creator/internal/metadata"
)

// Result is the outcome of normalizing one photo. A conversion failure is
// non-fatal: Err is set, dimensions and NormalizedPath stay zero, and the
// caller proceeds with the record anyway.
type Result struct {
	Width          int
	Height         int
	NormalizedPath string
	Err            error
}

// Formats the document writer can embed as-is.
var embeddableExt = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
}

// Formats we can decode in-process but must re-encode for embedding.
var decodableExt = map[string]bool{
	"tif": true, "tiff": true, "bmp": true, "webp": true,
}

// Formats that need an external converter.
var externalExt = map[string]bool{
	"heic": true, "heif": true,
}

// Normalize inspects the photo at path and reports post-orientation pixel
// dimensions plus, for formats that are not directly embeddable, the path
// of a temporary JPEG copy written under tempDir.
func Normalize(ctx context.Context, path, tempDir string) Result {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	switch {
	case embeddableExt[ext]:
		w, h, err := dimensions(path)
		if err != nil {
			return Result{Err: fmt.Errorf("failed to read dimensions: %w", err)}
		}
		return Result{Width: w, Height: h}

	case decodableExt[ext]:
		return convertInProcess(path, tempDir)

	case externalExt[ext]:
		return convertExternal(ctx, path, tempDir)

	default:
		// Unknown extension: try a plain dimension read; no conversion.
		w, h, err := dimensions(path)
		if err != nil {
			return Result{Err: fmt.Errorf("unsupported format %q: %w", ext, err)}
		}
		return Result{Width: w, Height: h}
	}
}

// dimensions reads the pixel size without decoding the full image, then
/// applies the embedded orientation: transposed orientations (5..8) swap
// width and height so the reported size is the visually correct one.
func dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}

	w, h := cfg.Width, cfg.Height
	if o := metadata.Orientation(path); o >= 5 && o <= 8 {
		w, h = h, w
	}
	return w, h, nil
}

// convertInProcess decodes the image, applies the orientation transform
// and writes a temporary JPEG copy.
func convertInProcess(path, tempDir string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to open for conversion: %w", err)}
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return Result{Err: fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)}
	}

	oriented := applyOrientation(img, metadata.Orientation(path))

	tmpPath, err := tempCopyPath(tempDir)
	if err != nil {
		return Result{Err: err}
	}
	if err := imaging.Save(oriented, tmpPath, imaging.JPEGQuality(92)); err != nil {
		os.Remove(tmpPath)
		return Result{Err: fmt.Errorf("failed to write normalized copy: %w", err)}
	}

	bounds := oriented.Bounds()
	return Result{Width: bounds.Dx(), Height: bounds.Dy(), NormalizedPath: tmpPath}
}

// convertExternal runs the HEIC converter cascade and reads dimensions
// from the converted copy. The converter already renders the image
// upright, so no further orientation transform applies.
func convertExternal(ctx context.Context, path, tempDir string) Result {
	tmpPath, err := tempCopyPath(tempDir)
	if err != nil {
		return Result{Err: err}
	}

	if err := runConverter(ctx, path, tmpPath); err != nil {
		os.Remove(tmpPath)
		return Result{Err: err}
	}

	w, h, err := dimensions(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return Result{Err: fmt.Errorf("converted copy unreadable: %w", err)}
	}

	return Result{Width: w, Height: h, NormalizedPath: tmpPath}
}

// tempCopyPath reserves a collision-free temp filename.
func tempCopyPath(tempDir string) (string, error) {
	f, err := os.CreateTemp(tempDir, "appendix-*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := f.Name()
	f.Close()
	return name, nil
}

// applyOrientation maps the eight EXIF orientation values onto their
// inverse transforms so the result is upright.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
