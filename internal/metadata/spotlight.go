package metadata

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Spotlight attribute names queried per photo.
var spotlightAttributes = []string{
	"kMDItemDescription",
	"kMDItemTitle",
	"kMDItemHeadline",
	"kMDItemSubject",
	"kMDItemComment",
	"kMDItemLatitude",
	"kMDItemLongitude",
}

// spotlightTimeout bounds one mdls invocation so a hung tool cannot
// stall the batch.
const spotlightTimeout = 10 * time.Second

// SpotlightSource queries the macOS metadata index via the mdls command.
// On systems without mdls the adapter yields empty output; the lookup
// result is cached after the first query.
type SpotlightSource struct {
	lookOnce sync.Once
	toolPath string
	timeout  time.Duration
}

func NewSpotlightSource() *SpotlightSource {
	return &SpotlightSource{timeout: spotlightTimeout}
}

func (s *SpotlightSource) Name() string { return SourceSpotlight }

func (s *SpotlightSource) available() bool {
	s.lookOnce.Do(func() {
		path, err := exec.LookPath("mdls")
		if err == nil {
			s.toolPath = path
		}
	})
	return s.toolPath != ""
}

func (s *SpotlightSource) Query(ctx context.Context, path string) map[string]string {
	if !s.available() {
		return nil
	}

	timeout := s.timeout
	if timeout <= 0 {
		timeout = spotlightTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := make([]string, 0, len(spotlightAttributes)*2+1)
	for _, attr := range spotlightAttributes {
		args = append(args, "-name", attr)
	}
	args = append(args, path)

	out, err := exec.CommandContext(ctx, s.toolPath, args...).Output()
	if err != nil {
		return nil
	}

	fields := parseSpotlightOutput(out)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// parseSpotlightOutput reads mdls line output of the form
//
//	kMDItemDescription = "north wall"
//	kMDItemLatitude    = 47.6097
//	kMDItemTitle       = (null)
//
// (null) attributes are omitted.
func parseSpotlightOutput(out []byte) map[string]string {
	fields := make(map[string]string)

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		eq := strings.Index(line, "=")
		if eq < 0 {
			continue
		}

		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if key == "" || value == "" || value == "(null)" {
			continue
		}

		value = strings.Trim(value, `"`)
		if value == "" {
			continue
		}
		fields[key] = value
	}

	return fields
}
