package anvil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Tnze/go-mc/save/region"
	"go.uber.org/zap"

	"github.com/b1naryth1ef/topshade"
	"github.com/b1naryth1ef/topshade/logger"
)

// Region holds the raw sectors of one region file. Chunks are decoded when
// asked for.
type Region struct {
	X, Z topshade.RCoord

	// Timestamps holds the last modification time of each chunk, [z][x].
	Timestamps [32][32]int32

	sectors [32][32][]byte
}

// LoadRegion reads every sector of a region file into memory and closes it.
func LoadRegion(path string, x, z topshade.RCoord) (*Region, error) {
	reg, err := region.Open(path)
	if err != nil {
		return nil, err
	}
	defer reg.Close()

	r := &Region{X: x, Z: z, Timestamps: reg.Timestamps}
	for cz := 0; cz < 32; cz++ {
		for cx := 0; cx < 32; cx++ {
			sector, err := reg.ReadSector(cx, cz)
			if errors.Is(err, region.ErrNoSector) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read chunk (%d, %d) of %s: %w", cx, cz, path, err)
			}
			r.sectors[cz][cx] = sector
		}
	}
	return r, nil
}

// MaxTimestamp returns the most recent chunk modification time.
func (r *Region) MaxTimestamp() int32 {
	var latest int32
	for _, row := range r.Timestamps {
		for _, ts := range row {
			latest = max(latest, ts)
		}
	}
	return latest
}

func (r *Region) Chunk(x, z topshade.CCoord) (topshade.Chunk, bool) {
	sector := r.sectors[z][x]
	if sector == nil {
		return nil, false
	}

	chunk, err := DecodeChunk(sector)
	if errors.Is(err, ErrNotGenerated) {
		return nil, false
	}
	if err != nil {
		logger.Warn("skipping unreadable chunk",
			zap.Int("regionX", int(r.X)), zap.Int("regionZ", int(r.Z)),
			zap.Int("x", int(x)), zap.Int("z", int(z)),
			zap.Error(err))
		return nil, false
	}
	return chunk, true
}

// Dimension is a directory of r.X.Z.mca region files.
type Dimension struct {
	path string
}

func Open(path string) (*Dimension, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", path)
	}
	return &Dimension{path: path}, nil
}

func (d *Dimension) regionPath(x, z topshade.RCoord) string {
	return filepath.Join(d.path, fmt.Sprintf("r.%d.%d.mca", x, z))
}

// LoadRegion loads region (x, z). The error wraps os.ErrNotExist when the
// region has no file.
func (d *Dimension) LoadRegion(x, z topshade.RCoord) (*Region, error) {
	return LoadRegion(d.regionPath(x, z), x, z)
}

func (d *Dimension) Region(x, z topshade.RCoord) (topshade.Region, bool) {
	r, err := d.LoadRegion(x, z)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("skipping unreadable region",
				zap.String("path", d.regionPath(x, z)), zap.Error(err))
		}
		return nil, false
	}
	return r, true
}

// RegionCoord identifies a region file.
type RegionCoord struct {
	X, Z topshade.RCoord
}

// Regions lists the regions that have a non-empty file, sorted north to
// south then west to east.
func (d *Dimension) Regions() ([]RegionCoord, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}

	var coords []RegionCoord
	for _, e := range entries {
		var x, z int
		if _, err := fmt.Sscanf(e.Name(), "r.%d.%d.mca", &x, &z); err != nil {
			continue
		}
		if info, err := e.Info(); err != nil || info.Size() == 0 {
			continue
		}
		coords = append(coords, RegionCoord{X: topshade.RCoord(x), Z: topshade.RCoord(z)})
	}

	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Z != coords[j].Z {
			return coords[i].Z < coords[j].Z
		}
		return coords[i].X < coords[j].X
	})
	return coords, nil
}
