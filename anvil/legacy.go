package anvil

import (
	"fmt"

	"github.com/Tnze/go-mc/nbt"
	"github.com/Tnze/go-mc/save"

	"github.com/b1naryth1ef/topshade/tower"
)

// 1.16 and 1.17 chunks, wrapped in a Level compound with one biome array for
// the whole column.
type flatBiomeChunk struct {
	Level struct {
		Biomes     []int32             `nbt:"Biomes"`
		Heightmaps map[string][]uint64 `nbt:"Heightmaps"`
		Sections   []flatBiomeSection  `nbt:"Sections"`
	} `nbt:"Level"`
}

type flatBiomeSection struct {
	Y           int8              `nbt:"Y"`
	Palette     []save.BlockState `nbt:"Palette"`
	BlockStates []uint64          `nbt:"BlockStates"`
}

const (
	legacySections = 16
	legacyHeight   = legacySections * 16
)

func decodeFlatBiomes(data []byte) (*Chunk, error) {
	var chunk flatBiomeChunk
	if err := nbt.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("failed to decode chunk: %w", err)
	}

	// index 0 is the light-only section below the world at y = -1
	decoded := make([]tower.BlockStorage, legacySections+1)
	for i := range decoded {
		decoded[i] = emptyStorage{}
	}
	for _, s := range chunk.Level.Sections {
		index := int(s.Y) + 1
		if index < 0 || index >= len(decoded) || len(s.Palette) == 0 {
			continue
		}
		decoded[index] = newPaletteStorage(s.Palette, s.BlockStates)
	}

	biomes := make([]tower.Biome, legacySections*tower.BiomeCount)
	if len(chunk.Level.Biomes) == len(biomes) {
		for i, id := range chunk.Level.Biomes {
			biomes[i] = legacyBiome(int(id))
		}
	}

	return &Chunk{
		SectionTower: tower.FromFlatBiomes(0, legacyHeight, decoded, biomes),
		heights:      unpackHeights(chunk.Level.Heightmaps["MOTION_BLOCKING"], 0),
	}, nil
}

// Chunks from before the flattening store numeric block ids.
type denseChunk struct {
	Level struct {
		Biomes    []byte         `nbt:"Biomes"`
		HeightMap []int32        `nbt:"HeightMap"`
		Sections  []denseSection `nbt:"Sections"`
	} `nbt:"Level"`
}

type denseSection struct {
	Y      int8   `nbt:"Y"`
	Blocks []byte `nbt:"Blocks"`
	Add    []byte `nbt:"Add"`
	Data   []byte `nbt:"Data"`
}

func nibble(data []byte, i int) int {
	if i/2 >= len(data) {
		return 0
	}
	return int(data[i/2]>>((i%2)*4)) & 0x0f
}

func decodeDense(data []byte) (*Chunk, error) {
	var chunk denseChunk
	if err := nbt.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("failed to decode chunk: %w", err)
	}
	if len(chunk.Level.Sections) == 0 {
		return nil, ErrNotGenerated
	}

	decoded := make([]tower.BlockStorage, legacySections)
	blocks := make([]tower.Block, legacySections*tower.BlockCount)
	for i := range decoded {
		decoded[i] = emptyStorage{}
	}
	for i := range blocks {
		blocks[i] = tower.Air
	}

	for _, s := range chunk.Level.Sections {
		if s.Y < 0 || int(s.Y) >= legacySections || len(s.Blocks) != tower.BlockCount {
			continue
		}
		offset := int(s.Y) * tower.BlockCount
		for i, low := range s.Blocks {
			id := int(low) | nibble(s.Add, i)<<8
			blocks[offset+i] = legacyBlock(id, nibble(s.Data, i))
		}
	}

	biomes := make([]tower.Biome, legacySections*tower.BiomeCount)
	if len(chunk.Level.Biomes) == 16*16 {
		for section := 0; section < legacySections; section++ {
			for i := 0; i < tower.BiomeCount; i++ {
				// the stored biomes are per column, sample one column per 4x4 cell
				x, z := (i%4)*4, ((i/4)%4)*4
				biomes[section*tower.BiomeCount+i] = legacyBiome(int(chunk.Level.Biomes[z*16+x]))
			}
		}
	}

	var heights []int
	if len(chunk.Level.HeightMap) == 16*16 {
		heights = make([]int, 16*16)
		for i, h := range chunk.Level.HeightMap {
			heights[i] = int(h)
		}
	}

	return &Chunk{
		SectionTower: tower.FromDense(0, legacyHeight, decoded, blocks, biomes),
		heights:      heights,
	}, nil
}
