package builder

import (
	"testing"
)

func TestFallbackCaption_DateAndTimeFromFilename(t *testing.T) {
	got := FallbackCaption("IMG_20230401_143000.heic")
	if got != "Photo from April 01, 2023, 14:30" {
		t.Fatalf("unexpected caption: %q", got)
	}
}

func TestFallbackCaption_DateOnlyFromFilename(t *testing.T) {
	got := FallbackCaption("2023-04-01.jpg")
	if got != "Photo from April 01, 2023" {
		t.Fatalf("unexpected caption: %q", got)
	}
}

func TestFallbackCaption_PixelStyleName(t *testing.T) {
	got := FallbackCaption("PXL_20221212_090500.jpg")
	if got != "Photo from December 12, 2022, 09:05" {
		t.Fatalf("unexpected caption: %q", got)
	}
}

func TestFallbackCaption_InvalidDateFallsThroughToCleanup(t *testing.T) {
	// Month 13 is not a date; the camera prefix is stripped instead.
	got := FallbackCaption("IMG_20231340_999999.jpg")
	if got != "20231340 999999" {
		t.Fatalf("unexpected caption: %q", got)
	}
}

func TestFallbackCaption_InvalidTimeKeepsDate(t *testing.T) {
	// A bogus time component is dropped but the valid date is kept.
	got := FallbackCaption("IMG_20230401_256199.jpg")
	if got != "Photo from April 01, 2023" {
		t.Fatalf("unexpected caption: %q", got)
	}
}

func TestFallbackCaption_StripsCameraPrefixAndUnderscores(t *testing.T) {
	got := FallbackCaption("IMG_site_entrance.jpg")
	if got != "site entrance" {
		t.Fatalf("unexpected caption: %q", got)
	}
}

func TestFallbackCaption_PlainNamePassesThrough(t *testing.T) {
	got := FallbackCaption("east_retaining_wall.png")
	if got != "east retaining wall" {
		t.Fatalf("unexpected caption: %q", got)
	}
}

func TestFallbackCaption_PrefixOnlyNameKeepsStem(t *testing.T) {
	// With nothing left after cleanup, the raw stem is better than "".
	got := FallbackCaption("IMG_.jpg")
	if got != "IMG_" {
		t.Fatalf("unexpected caption: %q", got)
	}
}

func TestFallbackCaption_NonLeapFebruaryRejected(t *testing.T) {
	got := FallbackCaption("20230229_report.jpg")
	if got == "Photo from February 29, 2023" {
		t.Fatal("expected impossible date to be rejected")
	}
}
