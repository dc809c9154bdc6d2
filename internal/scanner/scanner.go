package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"heic": true, "heif": true,
	"tif": true, "tiff": true, "bmp": true, "webp": true,
}

// Scanner walks a directory tree collecting photo files.
type Scanner struct {
	includeExt map[string]bool
}

// New creates a scanner. With no extensions given the default image set is
// used.
func New(extensions []string) *Scanner {
	if len(extensions) == 0 {
		return &Scanner{includeExt: imageExtensions}
	}
	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &Scanner{includeExt: extMap}
}

// Scan returns matching file paths under root in a deterministic order.
// Unreadable entries are skipped; only a failure on root itself is an error.
func (s *Scanner) Scan(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &NotADirectoryError{Path: root}
	}

	var paths []string

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if !s.includeExt[ext] {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

type NotADirectoryError struct {
	Path string
}

func (e *NotADirectoryError) Error() string {
	return e.Path + ": not a directory"
}
