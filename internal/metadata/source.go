// Package metadata implements the multi-source metadata extraction and
// resolution for a single photo: four independent source adapters feed a
// raw field bundle, and per-field resolvers apply a strict priority order
// over the bundle to pick the caption, GPS coordinates and camera heading.
package metadata

import (
	"context"
)

// Well-known source names. Resolver priority tables refer to these.
const (
	SourceExifTool  = "exiftool"
	SourceEmbedded  = "exif"
	SourceSpotlight = "mdls"
	SourceSidecar   = "sidecar"
)

// Source is a single metadata-source-specific query mechanism. A query
// returns a flat field mapping, or an empty/nil map when the source has
// nothing for this file. Implementations must not panic and must not
// return errors: any internal failure degrades to "no data".
type Source interface {
	// Name identifies the adapter; it keys the bundle and the resolver
	// priority tables.
	Name() string
	// Query extracts raw fields for the file at path. The context bounds
	// any external-process invocation.
	Query(ctx context.Context, path string) map[string]string
}

// Bundle is the union of adapter outputs for one photo, keyed by source
// name. It lives only for the duration of one photo's resolution.
type Bundle map[string]map[string]string

// Field returns the named field from the named source.
func (b Bundle) Field(source, field string) (string, bool) {
	fields, ok := b[source]
	if !ok {
		return "", false
	}
	v, ok := fields[field]
	return v, ok
}

// Gather queries every source and assembles the bundle. Sources that
// return nothing are omitted; one source failing never blocks another.
func Gather(ctx context.Context, path string, sources []Source) Bundle {
	bundle := make(Bundle, len(sources))
	for _, src := range sources {
		fields := src.Query(ctx, path)
		if len(fields) > 0 {
			bundle[src.Name()] = fields
		}
	}
	return bundle
}
