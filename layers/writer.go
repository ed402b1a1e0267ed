package layers

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteArchive packages the content tree built for layer n in contentDir
// into a single tar archive at outPath. Entry order is deterministic:
// the flat file first, then the subdirectory entry and its child file.
// Archive names are relative to contentDir, so no staging-path segments
// leak into the layer.
func WriteArchive(contentDir, outPath string, n int) error {
	if n < 1 {
		return NewLayerError("archive", "", fmt.Errorf("layer ordinal must be positive, got %d", n))
	}
	layerName := fmt.Sprintf("%d", n)

	out, err := os.Create(outPath)
	if err != nil {
		return NewLayerError("archive", layerName, fmt.Errorf("failed to create layer archive: %v", err))
	}
	defer out.Close()

	tarWriter := tar.NewWriter(out)

	if err := addFileToTar(tarWriter, filepath.Join(contentDir, FlatFileName(n)), FlatFileName(n)); err != nil {
		tarWriter.Close()
		return NewLayerError("archive", layerName, err)
	}

	if err := addTreeToTar(tarWriter, contentDir, filepath.Join(contentDir, SubdirName(n))); err != nil {
		tarWriter.Close()
		return NewLayerError("archive", layerName, err)
	}

	if err := tarWriter.Close(); err != nil {
		return NewLayerError("archive", layerName, fmt.Errorf("failed to close tar writer: %v", err))
	}

	if err := out.Close(); err != nil {
		return NewLayerError("archive", layerName, fmt.Errorf("failed to close layer archive: %v", err))
	}

	return nil
}

// addFileToTar adds a single regular file to the archive under tarPath.
func addFileToTar(tarWriter *tar.Writer, filePath, tarPath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = tarPath
	header.ModTime = archiveEpoch

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}

// addTreeToTar walks srcDir and adds the directory entry and every
// regular file beneath it, named relative to baseDir.
func addTreeToTar(tarWriter *tar.Writer, baseDir, srcDir string) error {
	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(baseDir, path)
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relPath)
		header.ModTime = archiveEpoch

		if info.IsDir() {
			header.Name += "/"
			return tarWriter.WriteHeader(header)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(tarWriter, file)
		return err
	})
}
