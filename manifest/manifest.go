// Package manifest builds the manifest.json/config.json document pair of
// the test image fixture.
//
// Both documents are represented as explicit typed records instead of
// loose maps, and the builders enforce the cross-document invariant that
// makes the fixture self-consistent: the manifest's layer list, the
// config's rootfs diff_ids and the config's history entries all have the
// same length and order. ValidateAgainst re-checks that invariant for
// documents built separately.
package manifest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/opencontainers/go-digest"
)

// DefaultArchitecture is the architecture label of the default fixture.
const DefaultArchitecture = "amd64"

// RootFSTypeLayers is the only rootfs type the Docker tar layout uses.
const RootFSTypeLayers = "layers"

// defaultHistoryStart is the created timestamp of the first history
// entry when the caller does not supply one.
var defaultHistoryStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultContainerConfig returns the runtime defaults of the fixture
// image: a shell, a root working directory and a standard PATH.
func DefaultContainerConfig() ContainerConfig {
	return ContainerConfig{
		Env:        []string{"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"},
		Cmd:        []string{"/bin/sh"},
		WorkingDir: "/",
	}
}

// DiffIDPlaceholder returns the fixed placeholder content digest for
// layer n. The placeholder is not a real digest of the layer bytes;
// consumers of the fixture resolve layers positionally, not by content.
func DiffIDPlaceholder(n int) digest.Digest {
	return digest.Digest(fmt.Sprintf("sha256:layer%ddigest123456789abcdef", n))
}

// BuildConfig builds a config document for layerCount layers. Each layer
// gets one placeholder diff-id and one non-empty history entry whose
// created timestamps start at historyStart (or a fixed default when
// zero) and increase by one minute per layer.
func BuildConfig(layerCount int, architecture string, runtime ContainerConfig, historyStart time.Time) (*Config, error) {
	if layerCount < 1 {
		return nil, fmt.Errorf("layer count must be positive, got %d", layerCount)
	}
	if architecture == "" {
		architecture = DefaultArchitecture
	}
	if historyStart.IsZero() {
		historyStart = defaultHistoryStart
	}

	config := &Config{
		Architecture: architecture,
		Config:       runtime,
		RootFS: RootFS{
			Type:    RootFSTypeLayers,
			DiffIDs: make([]digest.Digest, layerCount),
		},
		History: make([]HistoryEntry, layerCount),
	}

	for i := 0; i < layerCount; i++ {
		n := i + 1
		config.RootFS.DiffIDs[i] = DiffIDPlaceholder(n)
		config.History[i] = HistoryEntry{
			Created:    historyStart.Add(time.Duration(i) * time.Minute).UTC().Format(time.RFC3339),
			CreatedBy:  fmt.Sprintf("test layer %d", n),
			EmptyLayer: false,
		}
	}

	return config, nil
}

// BuildManifest builds a single-entry manifest referencing the config
// document by name and listing layer archive filenames in the exact
// order the layers were built.
func BuildManifest(configRef string, repoTags []string, layerFiles []string) (Manifest, error) {
	if configRef == "" {
		return nil, fmt.Errorf("config reference cannot be empty")
	}
	if len(repoTags) == 0 {
		return nil, fmt.Errorf("at least one repo tag is required")
	}
	if len(layerFiles) == 0 {
		return nil, fmt.Errorf("at least one layer file is required")
	}

	for _, tag := range repoTags {
		if _, err := name.NewTag(tag); err != nil {
			return nil, fmt.Errorf("invalid repo tag %q: %v", tag, err)
		}
	}

	layerList := make([]string, len(layerFiles))
	for i, layerFile := range layerFiles {
		if layerFile == "" {
			return nil, fmt.Errorf("layer file %d has an empty name", i)
		}
		layerList[i] = layerFile
	}

	return Manifest{
		{
			Config:   configRef,
			RepoTags: append([]string(nil), repoTags...),
			Layers:   layerList,
		},
	}, nil
}

// SerializeManifest serializes a manifest document as indented UTF-8 JSON.
func SerializeManifest(m Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize manifest: %v", err)
	}
	return data, nil
}

// SerializeConfig serializes a config document as indented UTF-8 JSON.
func SerializeConfig(c *Config) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize config: %v", err)
	}
	return data, nil
}
