package manifest

import (
	"fmt"
	"time"
)

// ValidateConfig checks the internal invariants of a config document:
// a layers-typed rootfs, matching diff-id and history counts, strictly
// increasing history timestamps and no empty layers.
func ValidateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if c.RootFS.Type != RootFSTypeLayers {
		return fmt.Errorf("rootfs type must be %q, got %q", RootFSTypeLayers, c.RootFS.Type)
	}
	if len(c.RootFS.DiffIDs) == 0 {
		return fmt.Errorf("rootfs has no diff_ids")
	}
	if len(c.RootFS.DiffIDs) != len(c.History) {
		return fmt.Errorf("diff_id count %d does not match history count %d",
			len(c.RootFS.DiffIDs), len(c.History))
	}

	var previous time.Time
	for i, entry := range c.History {
		if entry.EmptyLayer {
			return fmt.Errorf("history entry %d is marked as an empty layer", i)
		}

		created, err := time.Parse(time.RFC3339, entry.Created)
		if err != nil {
			return fmt.Errorf("history entry %d has an invalid created timestamp %q: %v",
				i, entry.Created, err)
		}
		if i > 0 && !created.After(previous) {
			return fmt.Errorf("history entry %d created %q is not after entry %d", i, entry.Created, i-1)
		}
		previous = created
	}

	return nil
}

// ValidateManifest checks the internal invariants of a manifest document.
func ValidateManifest(m Manifest) error {
	if len(m) == 0 {
		return fmt.Errorf("manifest has no entries")
	}

	for i, entry := range m {
		if entry.Config == "" {
			return fmt.Errorf("manifest entry %d has no config reference", i)
		}
		if len(entry.RepoTags) == 0 {
			return fmt.Errorf("manifest entry %d has no repo tags", i)
		}
		if len(entry.Layers) == 0 {
			return fmt.Errorf("manifest entry %d has no layers", i)
		}
	}

	return nil
}

// ValidateAgainst checks that a manifest and a config agree on layer
// count, so documents built separately cannot drift apart. Both
// documents must also pass their own validation.
func ValidateAgainst(m Manifest, c *Config) error {
	if err := ValidateManifest(m); err != nil {
		return err
	}
	if err := ValidateConfig(c); err != nil {
		return err
	}

	if len(m) != 1 {
		return fmt.Errorf("expected a single-entry manifest, got %d entries", len(m))
	}
	if len(m[0].Layers) != len(c.RootFS.DiffIDs) {
		return fmt.Errorf("manifest lists %d layers but config has %d diff_ids",
			len(m[0].Layers), len(c.RootFS.DiffIDs))
	}

	return nil
}
