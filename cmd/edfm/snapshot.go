package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edfm/edfm/pkg/listing"
)

// snapshotFile is the on-disk form of a listing snapshot. Entries carry
// their session IDs so that the original and edited files of one session
// share an identity space.
type snapshotFile struct {
	Entries []listing.Entry `yaml:"entries"`
}

func loadSnapshot(path string) (*listing.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var file snapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	for i, e := range file.Entries {
		if e.ID == 0 {
			return nil, fmt.Errorf("snapshot %s: entry %d (%s) has no id", path, i, e.Path)
		}
		if e.Path == "" {
			return nil, fmt.Errorf("snapshot %s: entry %d has no path", path, i)
		}
	}

	return listing.NewSnapshot(file.Entries...), nil
}
