// Package image generates a self-consistent, minimal multi-layer test
// image archive in the Docker tar layout.
//
// The generated archive contains exactly manifest.json, config.json and
// one layer tar per manifest entry as sibling top-level entries. All
// intermediate artifacts are staged in a private scratch area that is
// released on every exit path, and the finished archive is moved to the
// caller-visible path only once complete.
package image

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/squashtools/mkimage/internal/scratch"
	"github.com/squashtools/mkimage/layers"
	"github.com/squashtools/mkimage/manifest"
)

// DefaultOutputName is the archive path used when the caller gives none.
const DefaultOutputName = "test-docker-image.tar"

// runState tracks the phase of a generation run.
type runState int

const (
	stateInit runState = iota
	stateLayersBuilt
	stateDocumentsBuilt
	stateAssembled
	stateDone
	stateFailed
)

func (s runState) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateLayersBuilt:
		return "layers-built"
	case stateDocumentsBuilt:
		return "documents-built"
	case stateAssembled:
		return "assembled"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Generate builds the default fixture image (three layers, test:latest,
// amd64) and writes it to outputPath. Every failure is terminal for the
// run: the scratch area is released and the error propagates unchanged.
func Generate(outputPath string) error {
	return GenerateWithOptions(outputPath, DefaultOptions())
}

// GenerateWithOptions builds a fixture image shaped by opts and writes
// it to outputPath. A nil opts selects the defaults.
func GenerateWithOptions(outputPath string, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	log := logrus.WithField("output", outputPath)
	state := stateInit

	advance := func(next runState) {
		state = next
		log.WithField("state", state).Debug("generation state changed")
	}
	fail := func(err error) error {
		advance(stateFailed)
		return err
	}

	work, err := scratch.New("mkimage-")
	if err != nil {
		return fail(err)
	}
	defer work.Release()

	// Build every layer's content tree and archive in the scratch area.
	layerFiles := make([]string, opts.Layers)
	layerPaths := make([]string, opts.Layers)
	for i := 0; i < opts.Layers; i++ {
		n := i + 1

		contentDir := work.Join(fmt.Sprintf("layer%d-content", n))
		if err := os.Mkdir(contentDir, 0755); err != nil {
			return fail(fmt.Errorf("failed to create layer staging directory: %v", err))
		}
		if err := layers.BuildContent(contentDir, n); err != nil {
			return fail(err)
		}

		layerFiles[i] = fmt.Sprintf("layer%d.tar", n)
		layerPaths[i] = work.Join(layerFiles[i])
		if err := layers.WriteArchive(contentDir, layerPaths[i], n); err != nil {
			return fail(err)
		}
	}
	advance(stateLayersBuilt)

	config, err := manifest.BuildConfig(opts.Layers, opts.Architecture, opts.Runtime, opts.HistoryStart)
	if err != nil {
		return fail(err)
	}
	m, err := manifest.BuildManifest(ConfigFileName, opts.RepoTags, layerFiles)
	if err != nil {
		return fail(err)
	}
	advance(stateDocumentsBuilt)

	if err := NewAssembler().Assemble(m, config, layerPaths, outputPath); err != nil {
		return fail(err)
	}
	advance(stateAssembled)

	if err := work.Release(); err != nil {
		return fail(err)
	}
	advance(stateDone)

	log.WithField("layers", opts.Layers).Info("test image generated")
	return nil
}
