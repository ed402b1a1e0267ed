package image

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/squashtools/mkimage/manifest"
)

// Options configures the shape of a generated fixture image. The CLI
// exposes none of these; they are extension points for embedders and
// tests. The zero value of any field falls back to the default fixture
// shape.
type Options struct {
	// Layers is the number of layers to generate.
	Layers int
	// RepoTags are the image tags recorded in the manifest.
	RepoTags []string
	// Architecture is the config's architecture label.
	Architecture string
	// Runtime holds the config's runtime defaults.
	Runtime manifest.ContainerConfig
	// HistoryStart is the created timestamp of the first history entry.
	HistoryStart time.Time
}

// DefaultOptions returns the default fixture shape: three layers tagged
// test:latest on amd64.
func DefaultOptions() *Options {
	return &Options{
		Layers:       3,
		RepoTags:     []string{"test:latest"},
		Architecture: manifest.DefaultArchitecture,
		Runtime:      manifest.DefaultContainerConfig(),
	}
}

// Validate checks that the options describe a buildable image.
func (o *Options) Validate() error {
	if o.Layers < 1 {
		return fmt.Errorf("layer count must be positive, got %d", o.Layers)
	}
	if len(o.RepoTags) == 0 {
		return fmt.Errorf("at least one repo tag is required")
	}
	return nil
}

// profile is the YAML shape of an options file.
type profile struct {
	Layers       int      `yaml:"layers"`
	RepoTags     []string `yaml:"repo_tags"`
	Architecture string   `yaml:"architecture"`
	Env          []string `yaml:"env"`
	Cmd          []string `yaml:"cmd"`
	WorkingDir   string   `yaml:"working_dir"`
	HistoryStart string   `yaml:"history_start"`
}

// OptionsFromFile loads options from a YAML profile. Absent fields keep
// their defaults.
func OptionsFromFile(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options profile: %v", err)
	}

	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse options profile: %v", err)
	}

	opts := DefaultOptions()
	if p.Layers > 0 {
		opts.Layers = p.Layers
	}
	if len(p.RepoTags) > 0 {
		opts.RepoTags = p.RepoTags
	}
	if p.Architecture != "" {
		opts.Architecture = p.Architecture
	}
	if len(p.Env) > 0 {
		opts.Runtime.Env = p.Env
	}
	if len(p.Cmd) > 0 {
		opts.Runtime.Cmd = p.Cmd
	}
	if p.WorkingDir != "" {
		opts.Runtime.WorkingDir = p.WorkingDir
	}
	if p.HistoryStart != "" {
		start, err := time.Parse(time.RFC3339, p.HistoryStart)
		if err != nil {
			return nil, fmt.Errorf("invalid history_start %q: %v", p.HistoryStart, err)
		}
		opts.HistoryStart = start
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return opts, nil
}
