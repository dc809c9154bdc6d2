package metadata

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestParseSpotlightOutput_ReadsQuotedAndNumericValues(t *testing.T) {
	out := []byte(`kMDItemDescription = "north wall"
kMDItemLatitude    = 47.6097
kMDItemLongitude   = -122.3331
`)

	fields := parseSpotlightOutput(out)
	if fields["kMDItemDescription"] != "north wall" {
		t.Fatalf("unexpected description: %q", fields["kMDItemDescription"])
	}
	if fields["kMDItemLatitude"] != "47.6097" {
		t.Fatalf("unexpected latitude: %q", fields["kMDItemLatitude"])
	}
	if fields["kMDItemLongitude"] != "-122.3331" {
		t.Fatalf("unexpected longitude: %q", fields["kMDItemLongitude"])
	}
}

func TestParseSpotlightOutput_OmitsNullAttributes(t *testing.T) {
	out := []byte(`kMDItemTitle = (null)
kMDItemComment = "present"
`)

	fields := parseSpotlightOutput(out)
	if _, ok := fields["kMDItemTitle"]; ok {
		t.Fatal("expected (null) attribute to be omitted")
	}
	if fields["kMDItemComment"] != "present" {
		t.Fatalf("unexpected comment: %q", fields["kMDItemComment"])
	}
}

func TestParseSpotlightOutput_SkipsMalformedLines(t *testing.T) {
	out := []byte("garbage line without equals\nkMDItemTitle = \"ok\"\n")

	fields := parseSpotlightOutput(out)
	if len(fields) != 1 || fields["kMDItemTitle"] != "ok" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestParseSpotlightOutput_Empty(t *testing.T) {
	if fields := parseSpotlightOutput(nil); len(fields) != 0 {
		t.Fatalf("expected no fields, got %v", fields)
	}
}

func TestSpotlightSource_Name(t *testing.T) {
	if NewSpotlightSource().Name() != SourceSpotlight {
		t.Fatal("unexpected source name")
	}
}

func TestSpotlightSource_QueryTimesOutOnHungTool(t *testing.T) {
	// A hung mdls must be bounded by the adapter itself, even when the
	// caller's context has no deadline.
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}

	binDir := t.TempDir()
	script := filepath.Join(binDir, "mdls")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\n"), 0755); err != nil {
		t.Fatalf("failed to write fake tool: %v", err)
	}
	t.Setenv("PATH", binDir)

	src := NewSpotlightSource()
	src.timeout = 100 * time.Millisecond

	start := time.Now()
	fields := src.Query(context.Background(), "/photos/a.jpg")
	elapsed := time.Since(start)

	if fields != nil {
		t.Fatalf("expected nil after timeout, got %v", fields)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("query was not bounded internally, blocked for %v", elapsed)
	}
}
