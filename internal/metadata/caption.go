package metadata

import (
	"strings"
)

// captionRule is one (source, field) probe. An optional transform cleans
// the raw value before the usability check.
type captionRule struct {
	source    string
	field     string
	transform func(string) string
}

// captionTiers is the full caption priority table. Within a tier the first
// rule with a usable value wins and later rules are never consulted; once
// any tier hits, no later tier runs.
//
// Tier 1: primary description fields from exiftool.
// Tier 2: secondary exiftool fields (titles, headlines, comment-style).
// Tier 3: Spotlight attributes.
// Tier 4: the embedded tag reader's description field.
// Tier 5: the sidecar caption.
var captionTiers = [][]captionRule{
	{
		{source: SourceExifTool, field: "ImageDescription"},
		{source: SourceExifTool, field: "Description"},
		{source: SourceExifTool, field: "Caption-Abstract"},
	},
	{
		{source: SourceExifTool, field: "Title"},
		{source: SourceExifTool, field: "Headline"},
		{source: SourceExifTool, field: "Caption"},
		{source: SourceExifTool, field: "CaptionWriter"},
		{source: SourceExifTool, field: "XPTitle"},
		{source: SourceExifTool, field: "XPComment"},
		{source: SourceExifTool, field: "UserComment", transform: lastSegment},
	},
	{
		{source: SourceSpotlight, field: "kMDItemDescription"},
		{source: SourceSpotlight, field: "kMDItemTitle"},
		{source: SourceSpotlight, field: "kMDItemHeadline"},
		{source: SourceSpotlight, field: "kMDItemSubject"},
		{source: SourceSpotlight, field: "kMDItemComment"},
	},
	{
		{source: SourceEmbedded, field: "ImageDescription"},
	},
	{
		{source: SourceSidecar, field: "description"},
	},
}

// placeholder values some writers leave in description fields; treated the
// same as absent.
var captionPlaceholders = map[string]bool{
	"(null)": true,
	"null":   true,
	"none":   true,
}

// ResolveCaption walks the priority table and returns the first usable
// caption plus its origin ("source:field"). ok is false when no source
// yielded one; the caller synthesizes a fallback in that case.
func ResolveCaption(bundle Bundle) (caption, origin string, ok bool) {
	for _, tier := range captionTiers {
		for _, rule := range tier {
			raw, present := bundle.Field(rule.source, rule.field)
			if !present {
				continue
			}
			if rule.transform != nil {
				raw = rule.transform(raw)
			}
			value := strings.TrimSpace(raw)
			if value == "" || captionPlaceholders[strings.ToLower(value)] {
				continue
			}
			return value, rule.source + ":" + rule.field, true
		}
	}
	return "", "", false
}

// lastSegment handles the null-separated encoding convention used by some
// comment writers: the value is a sequence of segments split on NUL bytes
// and the last non-empty segment carries the text.
func lastSegment(raw string) string {
	if !strings.Contains(raw, "\x00") {
		return raw
	}
	segments := strings.Split(raw, "\x00")
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(segments[i]); s != "" {
			return s
		}
	}
	return ""
}
