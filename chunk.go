package topshade

import (
	"fmt"

	"github.com/b1naryth1ef/topshade/tower"
)

// RCoord is a region coordinate. Region (x, z) holds chunks 32x to 32x+31.
type RCoord int

// CCoord is a chunk coordinate within a region, 0..31.
type CCoord int

// HeightMode selects how a chunk reports the surface height of a column.
type HeightMode int

const (
	// HeightTrust uses the stored heightmap, calculating only when it is missing.
	HeightTrust HeightMode = iota
	// HeightCalculate ignores stored heightmaps and scans the column.
	HeightCalculate
)

func ParseHeightMode(s string) (HeightMode, error) {
	switch s {
	case "", "trust":
		return HeightTrust, nil
	case "calculate":
		return HeightCalculate, nil
	}
	return HeightTrust, fmt.Errorf("unknown height mode '%s'", s)
}

func (m HeightMode) String() string {
	if m == HeightCalculate {
		return "calculate"
	}
	return "trust"
}

// Chunk is a 16x16 column of world data.
type Chunk interface {
	// SurfaceHeight returns the y just above the topmost relevant block of
	// column x, z.
	SurfaceHeight(x, z int, mode HeightMode) int
	Block(x, y, z int) (tower.Block, bool)
	Biome(x, y, z int) (tower.Biome, bool)
	// YRange returns the half open range of valid y.
	YRange() (int, int)
}

// Region is a 32x32 grid of chunks.
type Region interface {
	Chunk(x, z CCoord) (Chunk, bool)
}

// Dimension is a collection of regions.
type Dimension interface {
	Region(x, z RCoord) (Region, bool)
}

var airyBlocks = map[string]struct{}{
	"minecraft:air":      {},
	"minecraft:cave_air": {},
	"minecraft:void_air": {},
}

// IsAiry reports whether a block is skipped entirely when looking for colour.
func IsAiry(block tower.Block) bool {
	_, ok := airyBlocks[block.Name]
	return ok
}

var wateryBlocks = map[string]struct{}{
	"minecraft:water":         {},
	"minecraft:bubble_column": {},
	"minecraft:kelp":          {},
	"minecraft:kelp_plant":    {},
	"minecraft:seagrass":      {},
	"minecraft:tall_seagrass": {},
}

// IsWatery reports whether a block is coloured as part of a body of water.
func IsWatery(block tower.Block) bool {
	_, ok := wateryBlocks[block.Name]
	return ok
}

// CalculateSurfaceHeight scans column x, z of chunk from the top and returns
// the y above the first block that is not airy, or the bottom of the chunk.
func CalculateSurfaceHeight(chunk Chunk, x, z int) int {
	yMin, yMax := chunk.YRange()
	for y := yMax - 1; y >= yMin; y-- {
		b, ok := chunk.Block(x, y, z)
		if ok && !IsAiry(b) {
			return y + 1
		}
	}
	return yMin
}
