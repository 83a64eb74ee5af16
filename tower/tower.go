// Package tower stacks 16 block tall sections into a single chunk tall volume
// addressed by absolute y.
package tower

import (
	"fmt"
	"iter"
)

// SectionTower is an immutable vertical stack of sections. Section i covers
// absolute y in [yMin+16*i, yMin+16*i+16).
type SectionTower struct {
	sections []Section

	yMin int
	yMax int
}

func newTower(yMin, yMax int, sections []Section) *SectionTower {
	if yMax <= yMin || (yMax-yMin)%SectionSize != 0 {
		panic(fmt.Sprintf("tower: invalid y range [%d, %d)", yMin, yMax))
	}
	if len(sections) != (yMax-yMin)/SectionSize {
		panic(fmt.Sprintf("tower: %d sections do not cover y range [%d, %d)", len(sections), yMin, yMax))
	}
	return &SectionTower{sections: sections, yMin: yMin, yMax: yMax}
}

// FromSections builds a tower from current-generation sections which carry
// their own block and biome storage.
func FromSections(yMin, yMax int, sections []Section) *SectionTower {
	return newTower(yMin, yMax, append([]Section(nil), sections...))
}

// FromFlatBiomes builds a tower from sections that only store blocks, plus a
// single biome array holding BiomeCount entries per section.
//
// The first decoded section is dropped: decoders for this layout hand over
// one section more than the y range covers.
func FromFlatBiomes(yMin, yMax int, decoded []BlockStorage, biomes []Biome) *SectionTower {
	sections := make([]Section, 0, len(decoded))
	for index, storage := range decoded {
		if index == 0 {
			continue
		}
		sections = append(sections, &biomeOverlay{
			storage: storage,
			biomes:  biomes[(index-1)*BiomeCount : index*BiomeCount],
		})
	}
	return newTower(yMin, yMax, sections)
}

// FromDense builds a tower from flat block and biome arrays laid out section
// after section. The decoded sections only determine how many sections the
// tower has; their own storage is ignored.
func FromDense(yMin, yMax int, decoded []BlockStorage, blocks []Block, biomes []Biome) *SectionTower {
	sections := make([]Section, 0, len(decoded))
	for index := range decoded {
		sections = append(sections, NewDenseSection(
			blocks[index*BlockCount:(index+1)*BlockCount],
			biomes[index*BiomeCount:(index+1)*BiomeCount],
		))
	}
	return newTower(yMin, yMax, sections)
}

// locate resolves an absolute y to a section and a section local y.
func (t *SectionTower) locate(y int) (Section, int) {
	if y < t.yMin || y >= t.yMax {
		panic(fmt.Sprintf("tower: y %d outside of [%d, %d)", y, t.yMin, t.yMax))
	}
	index := (y - t.yMin) / SectionSize
	return t.sections[index], y - (SectionSize*index + t.yMin)
}

// Block returns the block at section local x/z and absolute y. y must be
// within YRange.
func (t *SectionTower) Block(x, y, z int) (Block, bool) {
	section, sy := t.locate(y)
	return section.Block(x, sy, z)
}

// Biome returns the biome at section local x/z and absolute y. y must be
// within YRange.
func (t *SectionTower) Biome(x, y, z int) (Biome, bool) {
	section, sy := t.locate(y)
	return section.Biome(x, sy, z)
}

// YRange returns the half open range of absolute y the tower covers.
func (t *SectionTower) YRange() (int, int) {
	return t.yMin, t.yMax
}

// Len returns the number of sections in the tower, missing sections
// included.
func (t *SectionTower) Len() int {
	return len(t.sections)
}

// Blocks yields every block of the tower, sections bottom to top, each in its
// own storage order. Every call starts a fresh scan.
func (t *SectionTower) Blocks() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for _, section := range t.sections {
			for b := range section.Blocks() {
				if !yield(b) {
					return
				}
			}
		}
	}
}
