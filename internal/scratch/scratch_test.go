package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	dir, err := New("scratch-test-")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer dir.Release()

	info, err := os.Stat(dir.Path())
	if err != nil {
		t.Fatalf("Scratch directory does not exist: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("Scratch path is not a directory: %s", dir.Path())
	}
	if !strings.Contains(filepath.Base(dir.Path()), "scratch-test-") {
		t.Errorf("Scratch directory does not use pattern: %s", dir.Path())
	}
}

func TestJoin(t *testing.T) {
	dir, err := New("scratch-test-")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer dir.Release()

	joined := dir.Join("a", "b.txt")
	expected := filepath.Join(dir.Path(), "a", "b.txt")
	if joined != expected {
		t.Errorf("Expected %s, got %s", expected, joined)
	}
}

func TestRelease(t *testing.T) {
	dir, err := New("scratch-test-")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Populate the scratch area so Release has real work to do.
	if err := os.MkdirAll(dir.Join("nested", "deeper"), 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}
	if err := os.WriteFile(dir.Join("nested", "file.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := dir.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if _, err := os.Stat(dir.Path()); !os.IsNotExist(err) {
		t.Errorf("Scratch directory still exists after Release: %s", dir.Path())
	}
}

func TestReleaseIdempotent(t *testing.T) {
	dir, err := New("scratch-test-")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := dir.Release(); err != nil {
		t.Fatalf("First Release failed: %v", err)
	}
	if err := dir.Release(); err != nil {
		t.Errorf("Second Release failed: %v", err)
	}
}
