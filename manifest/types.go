package manifest

import (
	"github.com/opencontainers/go-digest"
)

// Entry is one image record in a docker-save style manifest.json. Config
// names the config document inside the archive, and Layers lists the
// layer archive filenames in application order. Consumers resolve layers
// positionally against the config's rootfs diff_ids, so the order here
// is load-bearing.
type Entry struct {
	Config   string   `json:"Config"`
	RepoTags []string `json:"RepoTags"`
	Layers   []string `json:"Layers"`
}

// Manifest is the document serialized as manifest.json: an ordered list
// of image entries. This generator always emits exactly one.
type Manifest []Entry

// Config is the image configuration document serialized as config.json.
type Config struct {
	Architecture string          `json:"architecture"`
	Config       ContainerConfig `json:"config"`
	RootFS       RootFS          `json:"rootfs"`
	History      []HistoryEntry  `json:"history"`
}

// ContainerConfig holds the runtime defaults of the image. ExposedPorts
// deliberately has no omitempty: the reference artifact spells out an
// explicit null when no ports are exposed.
type ContainerConfig struct {
	Env          []string            `json:"Env"`
	Cmd          []string            `json:"Cmd"`
	WorkingDir   string              `json:"WorkingDir"`
	ExposedPorts map[string]struct{} `json:"ExposedPorts"`
}

// RootFS describes the layer composition of the image. DiffIDs holds one
// content digest per layer; this generator emits fixed placeholder
// digests rather than computing them from layer bytes.
type RootFS struct {
	Type    string          `json:"type"`
	DiffIDs []digest.Digest `json:"diff_ids"`
}

// HistoryEntry records how one layer was produced. EmptyLayer carries no
// omitempty so every entry serializes an explicit false, keeping the 1:1
// correspondence with manifest layers visible in the document itself.
type HistoryEntry struct {
	Created    string `json:"created"`
	CreatedBy  string `json:"created_by"`
	EmptyLayer bool   `json:"empty_layer"`
}
