package hosting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/siteforge-io/siteforge/domain"
)

// The provider CLI records which site a directory is linked to in
// .netlify/state.json. Probing reads this record instead of re-deriving the
// site from its name, so a site created under a different naming convention
// is still found.
const (
	linkDir  = ".netlify"
	linkFile = "state.json"
)

type linkRecord struct {
	SiteID string `json:"siteId"`
}

// StateFile reads and writes the site link record of a working tree.
type StateFile struct{}

// Read returns the linked site id, or domain.ErrNotFound when the working
// tree has no link record.
func (StateFile) Read(workingDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(workingDir, linkDir, linkFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no site link record: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("failed to read site link record: %w", err)
	}

	var record linkRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return "", &domain.TransientError{Op: "parse site link record", Err: err}
	}
	if record.SiteID == "" {
		return "", fmt.Errorf("site link record has no site id: %w", domain.ErrNotFound)
	}
	return record.SiteID, nil
}

// Write records the linked site id in the working tree.
func (StateFile) Write(workingDir, siteID string) error {
	dir := filepath.Join(workingDir, linkDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create link directory: %w", err)
	}

	data, err := json.MarshalIndent(linkRecord{SiteID: siteID}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode site link record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, linkFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write site link record: %w", err)
	}
	return nil
}

// Remove deletes the link record. A missing record is not an error.
func (StateFile) Remove(workingDir string) error {
	err := os.Remove(filepath.Join(workingDir, linkDir, linkFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove site link record: %w", err)
	}
	return nil
}
