package topshade

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/muesli/gamut"

	"github.com/b1naryth1ef/topshade/tower"
)

// Climate is the part of a biome definition that drives grass and foliage
// tinting.
type Climate struct {
	Temperature float64 `json:"temperature"`
	Downfall    float64 `json:"downfall"`
}

var defaultClimate = Climate{Temperature: 0.8, Downfall: 0.4}

const biomeDir = "data/minecraft/worldgen/biome"

// LoadClimate reads the worldgen definition of biome from the client JAR.
func LoadClimate(loader *AssetLoader, biome tower.Biome) (*Climate, error) {
	if biome == "" {
		return nil, errors.New("unknown biome")
	}
	var climate Climate
	path := fmt.Sprintf("%s/%s.json", biomeDir, stripNamespace(string(biome)))
	if err := loader.LoadJSON(path, &climate); err != nil {
		return nil, err
	}
	return &climate, nil
}

// ColourMapCoords returns the position in the 256x256 grass/foliage colour
// maps for this climate.
func (c *Climate) ColourMapCoords() (int, int) {
	r := clamp(c.Downfall, 0, 1) * clamp(c.Temperature, 0, 1)
	x := int(math.Ceil(255 - (clamp(c.Temperature, 0, 1) * 255)))
	y := int(math.Ceil(255 - (r * 255)))
	return x, y
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	} else if v > hi {
		return hi
	}
	return v
}

// BiomePalette colours every block by its biome alone, using a generated
// pastel colour per biome. Unknown biomes are grey.
type BiomePalette struct {
	biomes map[tower.Biome]RGBA
}

var unknownBiomeColour = RGBA{0x80, 0x80, 0x80, 0xff}

// NewBiomePalette assigns a generated colour to each of the given biomes.
func NewBiomePalette(names []tower.Biome) (*BiomePalette, error) {
	sorted := append([]tower.Biome(nil), names...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	biomes := make(map[tower.Biome]RGBA, len(sorted))
	if len(sorted) == 0 {
		return &BiomePalette{biomes: biomes}, nil
	}

	colours, err := gamut.Generate(len(sorted), gamut.PastelGenerator{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate colour palette for biomes: %w", err)
	}

	for idx, biome := range sorted {
		c := RGBAFromColor(colours[idx])
		c[3] = 0xff
		biomes[biome] = c
	}
	return &BiomePalette{biomes: biomes}, nil
}

// NewBiomePaletteFromAssets colours every biome defined in a client JAR.
func NewBiomePaletteFromAssets(loader *AssetLoader) (*BiomePalette, error) {
	var names []tower.Biome
	for _, name := range loader.List(biomeDir, ".json") {
		names = append(names, tower.Biome("minecraft:"+name))
	}
	return NewBiomePalette(names)
}

func (p *BiomePalette) Pick(block tower.Block, biome tower.Biome) RGBA {
	if c, ok := p.biomes[biome]; ok {
		return c
	}
	return unknownBiomeColour
}
