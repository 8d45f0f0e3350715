// Package store persists a catalog snapshot in a file, a SQLite database or a Badger directory.
package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"photo-catalog/catalog"
)

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

func encode(c *catalog.Catalog, f format) ([]byte, error) {
	snap := *c
	snap.Version = catalog.SnapshotVersion
	if f == formatYAML {
		return yaml.Marshal(&snap)
	}
	return json.MarshalIndent(&snap, "", "  ")
}

func decode(data []byte, f format) (*catalog.Catalog, error) {
	var c catalog.Catalog
	var err error
	if f == formatYAML {
		err = yaml.Unmarshal(data, &c)
	} else {
		err = json.Unmarshal(data, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrCorruptSnapshot, err)
	}
	if c.Version > catalog.SnapshotVersion {
		return nil, fmt.Errorf("%w: snapshot version %d is newer than %d", catalog.ErrCorruptSnapshot, c.Version, catalog.SnapshotVersion)
	}
	for _, u := range c.Users {
		if u == nil {
			continue
		}
		for _, p := range u.Photos {
			if p != nil {
				p.CaptureDate = p.CaptureDate.UTC()
			}
		}
	}
	return &c, nil
}
