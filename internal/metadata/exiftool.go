package metadata

import (
	"context"
	"strconv"
	"sync"
	"time"

	exiftool "github.com/barasher/go-exiftool"
)

// ExifToolSource queries the external exiftool program. It is the richest
// adapter: exiftool understands HEIC containers, XMP and IPTC blocks that
// the in-process tag reader cannot see. The tool process is started
// lazily; when exiftool is not installed the adapter degrades to empty
// output and remembers that for the rest of its lifetime.
type ExifToolSource struct {
	timeout time.Duration

	once sync.Once
	mu   sync.Mutex
	et   *exiftool.Exiftool
	err  error
}

// NewExifToolSource creates the adapter. timeout bounds a single file
// query; a hung tool invocation is treated as a failed source, not a
// fatal error.
func NewExifToolSource(timeout time.Duration) *ExifToolSource {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ExifToolSource{timeout: timeout}
}

func (s *ExifToolSource) Name() string { return SourceExifTool }

func (s *ExifToolSource) init() {
	s.once.Do(func() {
		s.et, s.err = exiftool.NewExiftool()
	})
}

// Available reports whether the exiftool binary could be started. The
// check runs once and is reused.
func (s *ExifToolSource) Available() bool {
	s.init()
	return s.err == nil
}

func (s *ExifToolSource) Query(ctx context.Context, path string) map[string]string {
	if !s.Available() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type extracted struct {
		fields map[string]interface{}
	}
	done := make(chan extracted, 1)

	go func() {
		// The stay-open exiftool process is not safe for concurrent
		// extraction.
		s.mu.Lock()
		defer s.mu.Unlock()

		metas := s.et.ExtractMetadata(path)
		if len(metas) == 0 || metas[0].Err != nil {
			done <- extracted{}
			return
		}
		done <- extracted{fields: metas[0].Fields}
	}()

	select {
	case res := <-done:
		if len(res.fields) == 0 {
			return nil
		}
		return flattenFields(res.fields)
	case <-ctx.Done():
		// Timed out or cancelled: empty result. The goroutine above is
		// left to finish on its own; the next query waits on the mutex.
		return nil
	}
}

// Close terminates the underlying exiftool process.
func (s *ExifToolSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.et != nil {
		return s.et.Close()
	}
	return nil
}

// flattenFields converts exiftool's JSON-typed values to strings so the
// bundle stays a flat string mapping.
func flattenFields(raw map[string]interface{}) map[string]string {
	fields := make(map[string]string, len(raw))
	for key, val := range raw {
		switch v := val.(type) {
		case string:
			fields[key] = v
		case float64:
			fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			fields[key] = strconv.FormatBool(v)
		case []interface{}:
			// Multi-valued tags: keep the first value, matching how the
			// resolvers consume single strings.
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					fields[key] = s
				}
			}
		}
	}
	return fields
}
