package builder

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// filenameDate matches camera-style timestamps in filenames:
// YYYYMMDD optionally followed by HHMMSS, with optional -/_ separators
// between all components (IMG_20230401_143000, 2023-04-01, PXL_20221212).
var filenameDate = regexp.MustCompile(`(\d{4})[-_]?(\d{2})[-_]?(\d{2})(?:[-_]?(\d{2})[-_]?(\d{2})[-_]?(\d{2}))?`)

// cameraPrefix strips the generated-name prefixes cameras and phones use.
var cameraPrefix = regexp.MustCompile(`(?i)^(IMG|IMAGE|VID|VIDEO|DSC[NF]?|PXL|MVIMG|Screenshot)[-_ ]*`)

// FallbackCaption synthesizes a caption from the filename when no
// metadata source yielded one. A recognizable date in the name becomes
// "Photo from April 01, 2023" (plus ", 14:30" when a time component is
// present); otherwise the cleaned-up filename is used verbatim.
func FallbackCaption(displayName string) string {
	stem := strings.TrimSuffix(displayName, filepath.Ext(displayName))

	if m := filenameDate.FindStringSubmatch(stem); m != nil {
		if caption, ok := dateCaption(m); ok {
			return caption
		}
	}

	cleaned := cameraPrefix.ReplaceAllString(stem, "")
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "_", " "))
	if cleaned == "" {
		return stem
	}
	return cleaned
}

// dateCaption validates the captured components as a real calendar date
// and formats the caption. Rejected dates (month 13, second 61) fall
// through to filename cleanup.
func dateCaption(m []string) (string, bool) {
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}

	caption := "Photo from " + t.Format("January 02, 2006")

	if m[4] != "" {
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		second, _ := strconv.Atoi(m[6])
		if hour <= 23 && minute <= 59 && second <= 59 {
			caption += ", " + time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC).Format("15:04")
		}
	}

	return caption, true
}
