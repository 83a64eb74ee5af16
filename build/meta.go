package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Meta is stored as build.json next to the tiles of a layer and records the
// newest chunk timestamp seen in each rendered region.
type Meta struct {
	RegionTimestamps map[string]int32 `json:"region_timestamps"`
}

// LoadMeta reads the metadata of a previous build. A missing file yields empty
// metadata.
func LoadMeta(path string) (*Meta, error) {
	meta := &Meta{RegionTimestamps: map[string]int32{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return meta, nil
	} else if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if meta.RegionTimestamps == nil {
		meta.RegionTimestamps = map[string]int32{}
	}
	return meta, nil
}

func (m *Meta) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LayerManifest describes the tiles of one rendered layer.
type LayerManifest struct {
	Name      string  `json:"name"`
	Render    string  `json:"render"`
	TileSize  int     `json:"tile_size"`
	Opacity   float64 `json:"opacity"`
	Thumbnail int     `json:"thumbnail_size,omitempty"`
}

// MapManifest is written to maps.json in each output so a viewer can find the
// tiles of every map.
type MapManifest struct {
	Name    string          `json:"name"`
	Version string          `json:"version,omitempty"`
	Layers  []LayerManifest `json:"layers"`
}
