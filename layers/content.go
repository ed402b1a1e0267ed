package layers

import (
	"fmt"
	"os"
	"path/filepath"
)

// BuildContent materializes the content tree for layer n inside dir. The
// destination directory must already exist and be writable. A name
// collision with an existing entry is reported as an error rather than
// silently overwritten.
func BuildContent(dir string, n int) error {
	if n < 1 {
		return NewLayerError("content", "", fmt.Errorf("layer ordinal must be positive, got %d", n))
	}
	layerName := fmt.Sprintf("%d", n)

	if err := writeNewFile(filepath.Join(dir, FlatFileName(n)), FlatFileContent(n)); err != nil {
		return NewLayerError("content", layerName, err)
	}

	subdir := filepath.Join(dir, SubdirName(n))
	if err := os.Mkdir(subdir, 0755); err != nil {
		return NewLayerError("content", layerName, err)
	}

	if err := writeNewFile(filepath.Join(subdir, SubfileName), SubfileContent(n)); err != nil {
		return NewLayerError("content", layerName, err)
	}

	return nil
}

// writeNewFile writes content to path, failing if path already exists.
func writeNewFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
