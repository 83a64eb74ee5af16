package tower

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// numberedSection labels each block with its section and storage index.
func numberedSection(section int) *DenseSection {
	blocks := make([]Block, BlockCount)
	for i := range blocks {
		blocks[i] = Block{Name: fmt.Sprintf("s%d", section), Properties: fmt.Sprintf("i=%d", i)}
	}
	biomes := make([]Biome, BiomeCount)
	for i := range biomes {
		biomes[i] = Biome(fmt.Sprintf("s%d/b%d", section, i))
	}
	return NewDenseSection(blocks, biomes)
}

func numberedTower(yMin, count int) (*SectionTower, []*DenseSection) {
	dense := make([]*DenseSection, count)
	sections := make([]Section, count)
	for i := range dense {
		dense[i] = numberedSection(i)
		sections[i] = dense[i]
	}
	return FromSections(yMin, yMin+count*SectionSize, sections), dense
}

func TestTowerBlockMatchesOwningSection(t *testing.T) {
	tw, dense := numberedTower(-64, 24)

	yMin, yMax := tw.YRange()
	if yMin != -64 || yMax != 320 {
		t.Fatalf("unexpected y range [%d, %d)", yMin, yMax)
	}

	for y := yMin; y < yMax; y += 3 {
		index := (y - yMin) / 16
		local := (y - yMin) % 16
		for _, xz := range [][2]int{{0, 0}, {15, 15}, {7, 3}} {
			got, ok := tw.Block(xz[0], y, xz[1])
			want, _ := dense[index].Block(xz[0], local, xz[1])
			if !ok || got != want {
				t.Errorf("block(%d, %d, %d) = %v, want %v", xz[0], y, xz[1], got, want)
			}

			gotBiome, ok := tw.Biome(xz[0], y, xz[1])
			wantBiome, _ := dense[index].Biome(xz[0], local, xz[1])
			if !ok || gotBiome != wantBiome {
				t.Errorf("biome(%d, %d, %d) = %v, want %v", xz[0], y, xz[1], gotBiome, wantBiome)
			}
		}
	}
}

func TestTowerSectionBoundaries(t *testing.T) {
	tw, _ := numberedTower(-64, 4)

	cases := []struct {
		y       int
		section string
		index   int
	}{
		{-64, "s0", BlockIndex(0, 0, 0)},
		{-49, "s0", BlockIndex(0, 15, 0)},
		{-48, "s1", BlockIndex(0, 0, 0)},
		{-1, "s3", BlockIndex(0, 15, 0)},
	}

	for _, c := range cases {
		b, ok := tw.Block(0, c.y, 0)
		if !ok {
			t.Fatalf("block at y %d not present", c.y)
		}
		want := Block{Name: c.section, Properties: fmt.Sprintf("i=%d", c.index)}
		if b != want {
			t.Errorf("y %d: got %v, want %v", c.y, b, want)
		}
	}
}

func TestTowerOutOfRangePanics(t *testing.T) {
	tw, _ := numberedTower(0, 2)

	for _, y := range []int{-1, -15, 32, 100} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for y %d", y)
				}
			}()
			tw.Block(0, y, 0)
		}()
	}
}

func TestTowerRejectsBadExtents(t *testing.T) {
	cases := []struct {
		name       string
		yMin, yMax int
		sections   int
	}{
		{"not a multiple of 16", 0, 40, 2},
		{"empty", 0, 0, 0},
		{"section count mismatch", 0, 48, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			sections := make([]Section, c.sections)
			for i := range sections {
				sections[i] = FilledSection(Air, "")
			}
			FromSections(c.yMin, c.yMax, sections)
		})
	}
}

func TestTowerBlocksIteration(t *testing.T) {
	tw, dense := numberedTower(0, 3)

	first := slices.Collect(tw.Blocks())
	if len(first) != 3*BlockCount {
		t.Fatalf("got %d blocks, want %d", len(first), 3*BlockCount)
	}

	var want []Block
	for _, s := range dense {
		want = append(want, slices.Collect(s.Blocks())...)
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("iteration order mismatch (-want +got):\n%s", diff)
	}

	second := slices.Collect(tw.Blocks())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("restarted iteration differs (-first +second):\n%s", diff)
	}

	// crossing into the second section
	if first[BlockCount-1].Name != "s0" || first[BlockCount].Name != "s1" {
		t.Errorf("section crossing yielded %v then %v", first[BlockCount-1], first[BlockCount])
	}
}

func TestTowerBlocksEarlyStop(t *testing.T) {
	tw, _ := numberedTower(0, 2)

	n := 0
	for range tw.Blocks() {
		n++
		if n == 10 {
			break
		}
	}
	if n != 10 {
		t.Errorf("expected to stop after 10 blocks, got %d", n)
	}
}

type storageOnly struct {
	name string
}

func (s storageOnly) Block(x, y, z int) (Block, bool) {
	if !inSection(x, y, z) {
		return Block{}, false
	}
	return Block{Name: s.name}, true
}

func TestFromFlatBiomesSkipsFirstSection(t *testing.T) {
	decoded := []BlockStorage{
		storageOnly{"lighting"},
		storageOnly{"s0"},
		storageOnly{"s1"},
	}
	biomes := make([]Biome, 2*BiomeCount)
	for i := range biomes {
		biomes[i] = Biome(fmt.Sprintf("b%d", i))
	}

	tw := FromFlatBiomes(0, 32, decoded, biomes)
	if tw.Len() != 2 {
		t.Fatalf("expected 2 sections, got %d", tw.Len())
	}
	if yMin, yMax := tw.YRange(); yMin != 0 || yMax != 32 {
		t.Errorf("unexpected y range [%d, %d)", yMin, yMax)
	}

	b, _ := tw.Block(0, 0, 0)
	if b.Name != "s0" {
		t.Errorf("bottom section is %q, want s0", b.Name)
	}
	b, _ = tw.Block(0, 16, 0)
	if b.Name != "s1" {
		t.Errorf("second section is %q, want s1", b.Name)
	}

	biome, _ := tw.Biome(0, 0, 0)
	if biome != "b0" {
		t.Errorf("bottom biome is %q, want b0", biome)
	}
	biome, _ = tw.Biome(5, 16+9, 13)
	if want := Biome(fmt.Sprintf("b%d", BiomeCount+BiomeIndex(5, 9, 13))); biome != want {
		t.Errorf("second section biome is %q, want %q", biome, want)
	}

	if n := len(slices.Collect(tw.Blocks())); n != 2*BlockCount {
		t.Errorf("iterated %d blocks, want %d", n, 2*BlockCount)
	}
}

func TestFromDenseIgnoresDecodedStorage(t *testing.T) {
	decoded := []BlockStorage{storageOnly{"ignored"}, storageOnly{"ignored"}}
	blocks := make([]Block, 2*BlockCount)
	for i := range blocks {
		blocks[i] = Block{Name: fmt.Sprintf("d%d", i/BlockCount)}
	}
	biomes := make([]Biome, 2*BiomeCount)
	for i := range biomes {
		biomes[i] = Biome(fmt.Sprintf("b%d", i/BiomeCount))
	}

	tw := FromDense(0, 32, decoded, blocks, biomes)

	b, _ := tw.Block(3, 20, 4)
	if b.Name != "d1" {
		t.Errorf("got %q, want d1", b.Name)
	}
	biome, _ := tw.Biome(3, 2, 4)
	if biome != "b0" {
		t.Errorf("got %q, want b0", biome)
	}
}

func TestDenseSectionBounds(t *testing.T) {
	s := FilledSection(Block{Name: "minecraft:stone"}, "minecraft:plains")

	for _, p := range [][3]int{{-1, 0, 0}, {16, 0, 0}, {0, 16, 0}, {0, 0, 16}, {0, -1, 0}} {
		if _, ok := s.Block(p[0], p[1], p[2]); ok {
			t.Errorf("block %v reported present", p)
		}
		if _, ok := s.Biome(p[0], p[1], p[2]); ok {
			t.Errorf("biome %v reported present", p)
		}
	}
}

func TestBlockProperties(t *testing.T) {
	b := NewBlock("minecraft:oak_log", map[string]string{"axis": "y", "a": "b"})
	if b.Properties != "a=b,axis=y" {
		t.Errorf("unexpected canonical properties %q", b.Properties)
	}
	if diff := cmp.Diff(map[string]string{"axis": "y", "a": "b"}, b.PropertyMap()); diff != "" {
		t.Errorf("property map mismatch:\n%s", diff)
	}
	if got := b.String(); got != "minecraft:oak_log[a=b,axis=y]" {
		t.Errorf("unexpected string %q", got)
	}
}
