package image

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"github.com/squashtools/mkimage/internal/scratch"
	"github.com/squashtools/mkimage/manifest"
)

// Names of the document entries inside the outer archive.
const (
	ManifestFileName = "manifest.json"
	ConfigFileName   = "config.json"
)

// archiveEpoch is the fixed mod-time stamped on outer archive entries.
var archiveEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Assembler combines a manifest, a config and the built layer archives
// into the final outer image tar. The archive is assembled in a private
// scratch area and moved to the target path only once complete, so a
// failed run never leaves a partial file at the caller-visible path.
type Assembler struct{}

// NewAssembler creates an Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble serializes the documents, writes them plus every layer archive
// as sibling top-level entries into one tar, and moves the result to
// outPath. Layer entries are named by their base filename only. If
// outPath ends in .tar.gz or .tgz the outer archive is gzip-compressed.
func (a *Assembler) Assemble(m manifest.Manifest, c *manifest.Config, layerPaths []string, outPath string) error {
	if err := manifest.ValidateAgainst(m, c); err != nil {
		return fmt.Errorf("inconsistent image documents: %v", err)
	}
	if len(layerPaths) != len(m[0].Layers) {
		return fmt.Errorf("manifest lists %d layers but %d layer archives were provided",
			len(m[0].Layers), len(layerPaths))
	}

	manifestData, err := manifest.SerializeManifest(m)
	if err != nil {
		return err
	}
	configData, err := manifest.SerializeConfig(c)
	if err != nil {
		return err
	}

	work, err := scratch.New("mkimage-assemble-")
	if err != nil {
		return err
	}
	defer work.Release()

	// Stage under the final base name so the compression choice keys
	// off the same extension the caller sees.
	staged := work.Join(filepath.Base(outPath))
	if err := a.writeArchive(staged, manifestData, configData, layerPaths); err != nil {
		return err
	}

	if err := moveFile(staged, outPath); err != nil {
		return fmt.Errorf("failed to move assembled archive to %s: %v", outPath, err)
	}

	logrus.WithFields(logrus.Fields{
		"output": outPath,
		"layers": len(layerPaths),
	}).Debug("image archive assembled")

	return nil
}

// writeArchive writes the outer tar (optionally gzipped, keyed off the
// final output path's extension) at staged.
func (a *Assembler) writeArchive(staged string, manifestData, configData []byte, layerPaths []string) error {
	out, err := os.Create(staged)
	if err != nil {
		return fmt.Errorf("failed to create archive: %v", err)
	}
	defer out.Close()

	var tarWriter *tar.Writer
	var gzWriter *gzip.Writer
	if compressOutput(staged) {
		gzWriter = gzip.NewWriter(out)
		tarWriter = tar.NewWriter(gzWriter)
	} else {
		tarWriter = tar.NewWriter(out)
	}

	if err := addBytesToTar(tarWriter, ManifestFileName, manifestData); err != nil {
		tarWriter.Close()
		return fmt.Errorf("failed to add %s: %v", ManifestFileName, err)
	}
	if err := addBytesToTar(tarWriter, ConfigFileName, configData); err != nil {
		tarWriter.Close()
		return fmt.Errorf("failed to add %s: %v", ConfigFileName, err)
	}

	for _, layerPath := range layerPaths {
		if err := addFileToTar(tarWriter, layerPath, filepath.Base(layerPath)); err != nil {
			tarWriter.Close()
			return fmt.Errorf("failed to add layer %s: %v", filepath.Base(layerPath), err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %v", err)
	}
	if gzWriter != nil {
		if err := gzWriter.Close(); err != nil {
			return fmt.Errorf("failed to close gzip writer: %v", err)
		}
	}

	return out.Close()
}

// addBytesToTar adds an in-memory document to the archive.
func addBytesToTar(tarWriter *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name:     name,
		Mode:     0644,
		Size:     int64(len(data)),
		ModTime:  archiveEpoch,
		Typeflag: tar.TypeReg,
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err := tarWriter.Write(data)
	return err
}

// addFileToTar adds an on-disk file to the archive under tarPath.
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
	header.Name = strings.TrimPrefix(tarPath, "/")
	header.ModTime = archiveEpoch

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}

// moveFile renames src to dest, falling back to a copy when the rename
// crosses filesystems. A failed copy removes the partial dest file.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}

	if err := out.Close(); err != nil {
		os.Remove(dest)
		return err
	}

	return nil
}

// compressOutput reports whether the output should be gzip-compressed.
func compressOutput(path string) bool {
	return strings.HasSuffix(path, ".tar.gz") || strings.HasSuffix(path, ".tgz")
}
