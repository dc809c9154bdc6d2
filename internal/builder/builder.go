// Package builder assembles one PhotoRecord per photo by orchestrating
// the metadata sources, the image normalizer and the field resolvers.
package builder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/d-dboss/Worksite-Appendix-Creator/internal/metadata"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/normalize"
	"github.com/d-dboss/Worksite-Appendix-Creator/pkg/types"
)

type Builder struct {
	sources []metadata.Source
	tempDir string
}

func New(sources []metadata.Source, tempDir string) *Builder {
	return &Builder{sources: sources, tempDir: tempDir}
}

// Build produces the record for a single photo. The stages always run in
// order: gather, normalize, resolve, fallback caption. Normalize runs even
// when every adapter returned nothing, since dimensions come from the file
// itself. A panic anywhere inside is recovered at this boundary and
// recorded on the record; the record is returned regardless.
func (b *Builder) Build(ctx context.Context, path string) (rec types.PhotoRecord) {
	rec = types.PhotoRecord{
		SourcePath:  path,
		DisplayName: filepath.Base(path),
	}

	defer func() {
		if r := recover(); r != nil {
			rec.ProcessingError = fmt.Sprintf("internal error: %v", r)
			if rec.Caption == "" {
				rec.Caption = FallbackCaption(rec.DisplayName)
			}
		}
	}()

	bundle := metadata.Gather(ctx, path, b.sources)

	n := normalize.Normalize(ctx, path, b.tempDir)
	if n.Err != nil {
		rec.ProcessingError = n.Err.Error()
	}
	rec.Width = n.Width
	rec.Height = n.Height
	rec.NormalizedCopyPath = n.NormalizedPath

	if caption, origin, ok := metadata.ResolveCaption(bundle); ok {
		rec.Caption = caption
		rec.CaptionSource = origin
	}

	if lat, lon, ok := metadata.ResolveGPS(bundle); ok {
		rec.Latitude = &lat
		rec.Longitude = &lon
	}

	if heading, ok := metadata.ResolveHeading(bundle); ok {
		// The resolver accepts the closed interval; the record stores
		// [0, 360), so exactly 360 wraps to north.
		if heading == 360 {
			heading = 0
		}
		rec.Heading = &heading
	}

	if rec.Caption == "" {
		rec.Caption = FallbackCaption(rec.DisplayName)
	}

	return rec
}
