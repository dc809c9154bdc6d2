package metadata

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// iOS edit sidecars store the user caption in one of two shapes depending
// on the OS version. First pattern to match wins.
var sidecarPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<string name="description">([^<]+)</string>`),
	regexp.MustCompile(`<key>description</key>\s*<string>([^<]+)</string>`),
}

// SidecarSource reads the .AAE sidecar file accompanying a photo, if one
// exists under the same base name.
type SidecarSource struct{}

func NewSidecarSource() *SidecarSource { return &SidecarSource{} }

func (s *SidecarSource) Name() string { return SourceSidecar }

func (s *SidecarSource) Query(ctx context.Context, path string) map[string]string {
	sidecarPath := findSidecarPath(path)
	if sidecarPath == "" {
		return nil
	}

	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return nil
	}

	for _, pattern := range sidecarPatterns {
		if m := pattern.FindSubmatch(data); m != nil {
			value := strings.TrimSpace(string(m[1]))
			if value != "" {
				return map[string]string{"description": value}
			}
		}
	}

	return nil
}

func findSidecarPath(photoPath string) string {
	base := strings.TrimSuffix(photoPath, filepath.Ext(photoPath))

	for _, ext := range []string{".AAE", ".aae"} {
		candidate := base + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
