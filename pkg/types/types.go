// Package types defines core data structures shared across appendix modules.
package types

import (
	"time"
)

// PhotoRecord holds everything resolved for a single input photo.
// One record is produced per input path, in input order, even when
// every extraction step failed for that photo.
type PhotoRecord struct {
	// SourcePath is the path of the original file as given by the caller.
	// It is the identity key of the record and never changes.
	SourcePath string
	// DisplayName is the base filename, derived once at creation.
	DisplayName string
	// Caption is the resolved descriptive text. Never empty in a finished
	// record: when no metadata source yields one, a filename-derived
	// fallback is synthesized. Callers (manual caption entry) may
	// overwrite it afterwards.
	Caption string
	// CaptionSource names the adapter field the caption came from
	// (e.g. "exiftool:ImageDescription"). Empty for fallback captions.
	CaptionSource string
	// Latitude and Longitude are decimal degrees. Either both are set or
	// both are nil; a partially parsed pair is discarded.
	Latitude  *float64
	Longitude *float64
	// Heading is the camera compass bearing in degrees, [0, 360).
	Heading *float64
	// Width and Height are pixel dimensions after applying the embedded
	// orientation transform. Zero when dimensions could not be read.
	Width  int
	Height int
	// NormalizedCopyPath points to a temporary, directly-renderable copy
	// of the photo. Set only when the source format needed conversion.
	// The file is owned by the pipeline run and removed by Cleanup.
	NormalizedCopyPath string
	// ProcessingError carries a diagnostic when some stage failed. The
	// record remains usable; downstream decides whether to surface it.
	ProcessingError string
}

// HasLocation reports whether a complete coordinate pair was resolved.
func (r *PhotoRecord) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// RunSummary contains statistics for a completed appendix run.
type RunSummary struct {
	TotalPhotos      int
	MetadataCaptions int
	FallbackCaptions int
	WithLocation     int
	WithHeading      int
	Normalized       int
	Failed           int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

// Tally folds one record into the summary counters.
func (s *RunSummary) Tally(r PhotoRecord) {
	s.TotalPhotos++
	if r.CaptionSource != "" {
		s.MetadataCaptions++
	} else {
		s.FallbackCaptions++
	}
	if r.HasLocation() {
		s.WithLocation++
	}
	if r.Heading != nil {
		s.WithHeading++
	}
	if r.NormalizedCopyPath != "" {
		s.Normalized++
	}
	if r.ProcessingError != "" {
		s.Failed++
	}
}
