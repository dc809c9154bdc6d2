package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestScan_CollectsImagesRecursively(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, filepath.Join(tmpDir, "a.jpg"))
	touch(t, filepath.Join(tmpDir, "sub", "b.HEIC"))
	touch(t, filepath.Join(tmpDir, "sub", "deeper", "c.png"))
	touch(t, filepath.Join(tmpDir, "notes.txt"))
	touch(t, filepath.Join(tmpDir, "sub", "report.pdf"))

	paths, err := New(nil).Scan(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(paths) != 3 {
		t.Fatalf("expected 3 images, got %d: %v", len(paths), paths)
	}
	if !sort.StringsAreSorted(paths) {
		t.Fatalf("expected sorted output, got %v", paths)
	}
}

func TestScan_CustomExtensionFilter(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, filepath.Join(tmpDir, "a.jpg"))
	touch(t, filepath.Join(tmpDir, "b.png"))

	paths, err := New([]string{".png"}).Scan(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "b.png" {
		t.Fatalf("unexpected result: %v", paths)
	}
}

func TestScan_ExtensionMatchIsCaseInsensitive(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, filepath.Join(tmpDir, "UPPER.JPG"))

	paths, err := New(nil).Scan(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected uppercase extension matched, got %v", paths)
	}
}

func TestScan_EmptyDirectory(t *testing.T) {
	paths, err := New(nil).Scan(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no results, got %v", paths)
	}
}

func TestScan_MissingRoot(t *testing.T) {
	if _, err := New(nil).Scan("/path/does/not/exist"); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestScan_FileRootReturnsTypedError(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "single.jpg")
	touch(t, filePath)

	_, err := New(nil).Scan(filePath)
	if err == nil {
		t.Fatal("expected error for non-directory root")
	}

	var notDir *NotADirectoryError
	if !errors.As(err, &notDir) {
		t.Fatalf("expected NotADirectoryError, got %T: %v", err, err)
	}
	if notDir.Path != filePath {
		t.Fatalf("unexpected path in error: %q", notDir.Path)
	}
}
