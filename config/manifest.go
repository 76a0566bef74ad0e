package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the optional per-project manifest at the working tree root.
const ManifestFileName = "siteforge.yaml"

// Manifest holds per-project overrides. Every field has a default, so a
// missing manifest file is not an error.
type Manifest struct {
	DefaultBranch string `yaml:"default_branch"`
	StagingBranch string `yaml:"staging_branch"`
	SitePrefix    string `yaml:"site_prefix"`
}

// DefaultManifest returns the manifest used when no file is present.
func DefaultManifest() Manifest {
	return Manifest{
		DefaultBranch: "main",
		StagingBranch: "develop",
		SitePrefix:    "site",
	}
}

// LoadManifest reads siteforge.yaml from the working tree, falling back to
// defaults for the whole file or any field left empty.
func LoadManifest(workingDir string) (Manifest, error) {
	m := DefaultManifest()

	data, err := os.ReadFile(filepath.Join(workingDir, ManifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return m, fmt.Errorf("failed to read %s: %w", ManifestFileName, err)
	}

	var overrides Manifest
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return m, fmt.Errorf("failed to parse %s: %w", ManifestFileName, err)
	}

	if overrides.DefaultBranch != "" {
		m.DefaultBranch = overrides.DefaultBranch
	}
	if overrides.StagingBranch != "" {
		m.StagingBranch = overrides.StagingBranch
	}
	if overrides.SitePrefix != "" {
		m.SitePrefix = overrides.SitePrefix
	}
	return m, nil
}

// Branches returns the branches published on every provision run, default
// branch first.
func (m Manifest) Branches() []string {
	return []string{m.DefaultBranch, m.StagingBranch}
}
