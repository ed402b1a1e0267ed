package layers

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// readTarEntries returns the entry names of a tar file in order, plus the
// content of every regular file.
func readTarEntries(t *testing.T, path string) ([]string, map[string]string) {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	defer file.Close()

	var names []string
	contents := make(map[string]string)

	tarReader := tar.NewReader(file)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read tar header: %v", err)
		}

		names = append(names, header.Name)
		if header.Typeflag == tar.TypeReg {
			data, err := io.ReadAll(tarReader)
			if err != nil {
				t.Fatalf("Failed to read entry %s: %v", header.Name, err)
			}
			contents[header.Name] = string(data)
		}
	}

	return names, contents
}

func buildLayerArchive(t *testing.T, n int) string {
	t.Helper()

	contentDir := t.TempDir()
	if err := BuildContent(contentDir, n); err != nil {
		t.Fatalf("BuildContent failed: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "layer.tar")
	if err := WriteArchive(contentDir, outPath, n); err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}

	return outPath
}

func TestWriteArchive_EntryOrder(t *testing.T) {
	outPath := buildLayerArchive(t, 3)

	names, contents := readTarEntries(t, outPath)

	expected := []string{"test_file_3.txt", "subdir_3/", "subdir_3/subfile.txt"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %d entries, got %d: %v", len(expected), len(names), names)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Entry %d: expected %s, got %s", i, name, names[i])
		}
	}

	if contents["test_file_3.txt"] != "This is test file from layer 3\n" {
		t.Errorf("Unexpected flat file content: %q", contents["test_file_3.txt"])
	}
	if contents["subdir_3/subfile.txt"] != "This is a subfile from layer 3\n" {
		t.Errorf("Unexpected subfile content: %q", contents["subdir_3/subfile.txt"])
	}
}

func TestWriteArchive_NoHostPathPrefix(t *testing.T) {
	outPath := buildLayerArchive(t, 1)

	names, _ := readTarEntries(t, outPath)
	for _, name := range names {
		if strings.HasPrefix(name, "/") {
			t.Errorf("Entry name is absolute: %s", name)
		}
		if strings.Contains(name, os.TempDir()) || strings.Contains(name, "..") {
			t.Errorf("Entry name leaks host path: %s", name)
		}
	}
}

func TestWriteArchive_Deterministic(t *testing.T) {
	first := buildLayerArchive(t, 2)
	second := buildLayerArchive(t, 2)

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("Failed to read first archive: %v", err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("Failed to read second archive: %v", err)
	}

	if string(a) != string(b) {
		t.Error("Layer archives differ between runs")
	}
}

func TestWriteArchive_InvalidOrdinal(t *testing.T) {
	if err := WriteArchive(t.TempDir(), filepath.Join(t.TempDir(), "layer.tar"), 0); err == nil {
		t.Error("Expected error for ordinal 0")
	}
}

func TestWriteArchive_UnwritableDestination(t *testing.T) {
	contentDir := t.TempDir()
	if err := BuildContent(contentDir, 1); err != nil {
		t.Fatalf("BuildContent failed: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "missing-dir", "layer.tar")
	err := WriteArchive(contentDir, outPath, 1)
	if err == nil {
		t.Fatal("Expected error for unwritable destination")
	}
	if _, ok := err.(*LayerError); !ok {
		t.Errorf("Expected *LayerError, got %T", err)
	}
}

func TestWriteArchive_MissingContent(t *testing.T) {
	// Content for layer 2 was never built, so the flat file is absent.
	err := WriteArchive(t.TempDir(), filepath.Join(t.TempDir(), "layer.tar"), 2)
	if err == nil {
		t.Error("Expected error for missing content tree")
	}
}
