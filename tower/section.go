package tower

import "iter"

const (
	SectionSize   = 16
	BlockCount    = SectionSize * SectionSize * SectionSize
	BiomeCount    = 4 * 4 * 4
	biomeCellSize = 4
)

// BlockStorage is the block half of a section. Coordinates are section local.
type BlockStorage interface {
	Block(x, y, z int) (Block, bool)
}

// Section is a 16x16x16 slab of blocks and biomes. Implementations never
// report a block or biome as present outside of 0..16 on any axis.
type Section interface {
	BlockStorage
	Biome(x, y, z int) (Biome, bool)
	// Blocks yields every block in storage order: x fastest, then z, then y.
	Blocks() iter.Seq[Block]
}

func inSection(x, y, z int) bool {
	return x >= 0 && x < SectionSize && y >= 0 && y < SectionSize && z >= 0 && z < SectionSize
}

// BlockIndex returns the storage index of a section local position.
func BlockIndex(x, y, z int) int {
	return (y*SectionSize+z)*SectionSize + x
}

// BiomeIndex returns the index into a 4x4x4 biome array for a section local
// block position.
func BiomeIndex(x, y, z int) int {
	return ((y/biomeCellSize)*4+z/biomeCellSize)*4 + x/biomeCellSize
}

// ScanBlocks walks storage in scan order. Positions the storage does not
// report are yielded as Air so every scan has exactly BlockCount items.
func ScanBlocks(storage BlockStorage) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for y := 0; y < SectionSize; y++ {
			for z := 0; z < SectionSize; z++ {
				for x := 0; x < SectionSize; x++ {
					b, ok := storage.Block(x, y, z)
					if !ok {
						b = Air
					}
					if !yield(b) {
						return
					}
				}
			}
		}
	}
}

// DenseSection stores every block and biome explicitly.
type DenseSection struct {
	blocks []Block
	biomes []Biome
}

// NewDenseSection wraps BlockCount blocks and BiomeCount biomes. biomes may be
// nil, in which case no biome is ever reported.
func NewDenseSection(blocks []Block, biomes []Biome) *DenseSection {
	if len(blocks) != BlockCount {
		panic("tower: dense section needs exactly 4096 blocks")
	}
	if biomes != nil && len(biomes) != BiomeCount {
		panic("tower: dense section needs exactly 64 biomes")
	}
	return &DenseSection{blocks: blocks, biomes: biomes}
}

// FilledSection returns a dense section holding a single block and biome.
func FilledSection(block Block, biome Biome) *DenseSection {
	blocks := make([]Block, BlockCount)
	for i := range blocks {
		blocks[i] = block
	}
	biomes := make([]Biome, BiomeCount)
	for i := range biomes {
		biomes[i] = biome
	}
	return NewDenseSection(blocks, biomes)
}

func (s *DenseSection) Block(x, y, z int) (Block, bool) {
	if !inSection(x, y, z) {
		return Block{}, false
	}
	return s.blocks[BlockIndex(x, y, z)], true
}

func (s *DenseSection) Biome(x, y, z int) (Biome, bool) {
	if s.biomes == nil || !inSection(x, y, z) {
		return "", false
	}
	return s.biomes[BiomeIndex(x, y, z)], true
}

func (s *DenseSection) Blocks() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for _, b := range s.blocks {
			if !yield(b) {
				return
			}
		}
	}
}

// biomeOverlay pairs block storage with a biome slice cut from a tower-wide
// biome array.
type biomeOverlay struct {
	storage BlockStorage
	biomes  []Biome
}

func (s *biomeOverlay) Block(x, y, z int) (Block, bool) {
	if !inSection(x, y, z) {
		return Block{}, false
	}
	return s.storage.Block(x, y, z)
}

func (s *biomeOverlay) Biome(x, y, z int) (Biome, bool) {
	if !inSection(x, y, z) {
		return "", false
	}
	return s.biomes[BiomeIndex(x, y, z)], true
}

func (s *biomeOverlay) Blocks() iter.Seq[Block] {
	return ScanBlocks(s.storage)
}
