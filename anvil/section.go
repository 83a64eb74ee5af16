package anvil

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"

	"github.com/Tnze/go-mc/level"
	"github.com/Tnze/go-mc/nbt"
	"github.com/Tnze/go-mc/save"
	"go.uber.org/zap"

	"github.com/b1naryth1ef/topshade/logger"
	"github.com/b1naryth1ef/topshade/tower"
)

// calcBitsPerValue guesses the width of packed values from the number of
// longs. Only unambiguous for heightmaps, palettes give their own width.
func calcBitsPerValue(length, longs int) int {
	if longs == 0 || length == 0 {
		return 0
	}
	valuePerLong := (length + longs - 1) / longs
	return 64 / valuePerLong
}

const (
	minBlockStateBits = 4
	minBiomeBits      = 0
)

// paletteBits returns the width of indices into a palette of n entries. A
// single entry palette stores no indices at all.
func paletteBits(n, minBits int) int {
	if n <= 1 {
		return 0
	}
	return max(bits.Len(uint(n-1)), minBits)
}

// packedIndices unpacks long array data holding length values of the given
// width. A nil result means every value is zero, which is how single entry
// palettes are stored.
func packedIndices(width, length int, data []uint64) (*level.BitStorage, error) {
	if width == 0 {
		return nil, nil
	}
	perLong := 64 / width
	if want := (length + perLong - 1) / perLong; len(data) != want {
		return nil, fmt.Errorf("%d longs cannot hold %d values of %d bits", len(data), length, width)
	}
	return level.NewBitStorage(width, length, data), nil
}

func lookup(storage *level.BitStorage, index int) int {
	if storage == nil {
		return 0
	}
	return storage.Get(index)
}

func namespaced(name string) string {
	if strings.Contains(name, ":") {
		return name
	}
	return "minecraft:" + name
}

func convertBlockState(state save.BlockState) tower.Block {
	props := map[string]string{}
	if state.Properties.Type != nbt.TagEnd && len(state.Properties.Data) > 0 {
		if err := state.Properties.Unmarshal(&props); err != nil {
			logger.Debug("dropping unreadable block state properties",
				zap.String("block", state.Name), zap.Error(err))
			props = map[string]string{}
		}
	}
	return tower.NewBlock(namespaced(state.Name), props)
}

// paletteStorage is block storage backed by a palette and packed indices.
type paletteStorage struct {
	palette []tower.Block
	indices *level.BitStorage
	// broken is set when the indices do not fit the palette; no block is
	// reported then.
	broken bool
}

func newPaletteStorage(states []save.BlockState, data []uint64) *paletteStorage {
	palette := make([]tower.Block, len(states))
	for i, state := range states {
		palette[i] = convertBlockState(state)
	}
	indices, err := packedIndices(paletteBits(len(palette), minBlockStateBits), tower.BlockCount, data)
	if err != nil {
		logger.Debug("skipping section with malformed block states", zap.Error(err))
	}
	return &paletteStorage{
		palette: palette,
		indices: indices,
		broken:  err != nil,
	}
}

func (s *paletteStorage) Block(x, y, z int) (tower.Block, bool) {
	if s.broken || x < 0 || x >= 16 || y < 0 || y >= 16 || z < 0 || z >= 16 {
		return tower.Block{}, false
	}
	i := lookup(s.indices, tower.BlockIndex(x, y, z))
	if i >= len(s.palette) {
		return tower.Block{}, false
	}
	return s.palette[i], true
}

// emptyStorage stands in for sections missing from a chunk.
type emptyStorage struct{}

func (emptyStorage) Block(x, y, z int) (tower.Block, bool) {
	if x < 0 || x >= 16 || y < 0 || y >= 16 || z < 0 || z >= 16 {
		return tower.Block{}, false
	}
	return tower.Air, true
}

// palettedSection is a current-generation section with its own block and
// biome palettes.
type palettedSection struct {
	*paletteStorage

	biomes       []tower.Biome
	biomeIndices *level.BitStorage
}

func newPalettedSection(section save.Section) *palettedSection {
	biomes := make([]tower.Biome, len(section.Biomes.Palette))
	for i, b := range section.Biomes.Palette {
		biomes[i] = tower.Biome(namespaced(string(b)))
	}
	indices, err := packedIndices(paletteBits(len(biomes), minBiomeBits), tower.BiomeCount, section.Biomes.Data)
	if err != nil {
		logger.Debug("dropping malformed section biomes", zap.Error(err))
		biomes = nil
	}
	return &palettedSection{
		paletteStorage: newPaletteStorage(section.BlockStates.Palette, section.BlockStates.Data),
		biomes:         biomes,
		biomeIndices:   indices,
	}
}

func (s *palettedSection) Biome(x, y, z int) (tower.Biome, bool) {
	if x < 0 || x >= 16 || y < 0 || y >= 16 || z < 0 || z >= 16 || len(s.biomes) == 0 {
		return "", false
	}
	i := lookup(s.biomeIndices, tower.BiomeIndex(x, y, z))
	if i >= len(s.biomes) {
		return "", false
	}
	return s.biomes[i], true
}

func (s *palettedSection) Blocks() iter.Seq[tower.Block] {
	return tower.ScanBlocks(s.paletteStorage)
}
