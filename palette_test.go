package topshade

import (
	"archive/zip"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/b1naryth1ef/topshade/tower"
)

func solidPNG(t *testing.T, size int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "img.png")
	fd, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(fd, img); err != nil {
		t.Fatal(err)
	}
	fd.Close()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// writeClientJAR builds a minimal client JAR holding the given files.
func writeClientJAR(t *testing.T, files map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.jar")
	fd, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fd.Close()

	w := zip.NewWriter(fd)
	for name, data := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func testAssets(t *testing.T) *AssetLoader {
	t.Helper()
	path := writeClientJAR(t, map[string][]byte{
		"assets/minecraft/textures/colormap/grass.png":   solidPNG(t, 256, color.NRGBA{0x10, 0x80, 0x10, 0xff}),
		"assets/minecraft/textures/colormap/foliage.png": solidPNG(t, 256, color.NRGBA{0x20, 0x60, 0x20, 0xff}),

		"assets/minecraft/blockstates/stone.json": []byte(`{"variants": {"": {"model": "minecraft:block/stone"}}}`),
		"assets/minecraft/models/block/stone.json": []byte(`{"parent": "minecraft:block/cube_all", "textures": {"all": "minecraft:block/stone"}}`),
		"assets/minecraft/textures/block/stone.png": solidPNG(t, 16, color.NRGBA{0x7d, 0x7d, 0x7d, 0xff}),

		"assets/minecraft/blockstates/oak_log.json": []byte(`{"variants": {
			"axis=x": {"model": "minecraft:block/oak_log_horizontal"},
			"axis=y": {"model": "minecraft:block/oak_log"}
		}}`),
		"assets/minecraft/models/block/oak_log.json":            []byte(`{"textures": {"end": "minecraft:block/oak_log_top", "side": "minecraft:block/oak_log"}}`),
		"assets/minecraft/models/block/oak_log_horizontal.json": []byte(`{"textures": {"end": "minecraft:block/oak_log_top", "side": "minecraft:block/oak_log"}}`),
		"assets/minecraft/textures/block/oak_log_top.png":       solidPNG(t, 16, color.NRGBA{0xa0, 0x80, 0x50, 0xff}),

		"assets/minecraft/blockstates/broken.json": []byte(`{"variants": {"": {"model": "minecraft:block/nowhere"}}}`),

		"data/minecraft/worldgen/biome/plains.json": []byte(`{"temperature": 0.8, "downfall": 0.4}`),
		"data/minecraft/worldgen/biome/desert.json": []byte(`{"temperature": 2.0, "downfall": 0.0}`),
	})

	loader, err := NewAssetLoaderFromClientJAR(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { loader.Close() })
	return loader
}

func TestTexturePalette(t *testing.T) {
	palette, err := NewTexturePalette(testAssets(t))
	if err != nil {
		t.Fatal(err)
	}

	if got, want := palette.Pick(stone, "minecraft:plains"), (RGBA{0x7d, 0x7d, 0x7d, 0xff}); got != want {
		t.Errorf("stone: got %v, want %v", got, want)
	}

	log := tower.NewBlock("minecraft:oak_log", map[string]string{"axis": "y"})
	if got, want := palette.Pick(log, ""), (RGBA{0xa0, 0x80, 0x50, 0xff}); got != want {
		t.Errorf("oak log: got %v, want %v", got, want)
	}

	if got, want := palette.Pick(grass, "minecraft:plains"), (RGBA{0x10, 0x80, 0x10, 0xff}); got != want {
		t.Errorf("grass: got %v, want %v", got, want)
	}

	if got := palette.Pick(water, "minecraft:warm_ocean"); got != waterColours["minecraft:warm_ocean"] {
		t.Errorf("warm ocean water: got %v", got)
	}
	if got := palette.Pick(water, "minecraft:plains"); got != defaultWaterColour {
		t.Errorf("plains water: got %v", got)
	}

	broken := tower.Block{Name: "minecraft:broken"}
	if got := palette.Pick(broken, ""); got != missingColour {
		t.Errorf("unresolved block: got %v, want %v", got, missingColour)
	}
	unknown := tower.Block{Name: "minecraft:does_not_exist"}
	palette.Pick(unknown, "")

	// tinted blocks without a blockstate in the jar are still recorded
	want := []string{"minecraft:broken", "minecraft:does_not_exist", "minecraft:grass_block", "minecraft:water"}
	if diff := cmp.Diff(want, palette.MissingBlockStates()); diff != "" {
		t.Errorf("missing block states (-want +got):\n%s", diff)
	}
}

func TestFindVariantsFallsBack(t *testing.T) {
	palette, err := NewTexturePalette(testAssets(t))
	if err != nil {
		t.Fatal(err)
	}

	// no variant matches axis=z, the first sorted variant is used
	log := tower.NewBlock("minecraft:oak_log", map[string]string{"axis": "z"})
	if got := palette.Pick(log, ""); got == missingColour {
		t.Error("expected a fallback variant")
	}
}

func TestAverageColour(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{200, 100, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 0, 0, 0})

	if got, want := averageColour(img), (RGBA{200, 100, 0, 127}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	empty := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if got := averageColour(empty); got != Transparent {
		t.Errorf("fully transparent texture gave %v", got)
	}
}

func TestClimateColourMapCoords(t *testing.T) {
	cases := []struct {
		climate Climate
		x, y    int
	}{
		{Climate{Temperature: 0.8, Downfall: 0.4}, 51, 174},
		{Climate{Temperature: 2.0, Downfall: 0.0}, 0, 255},
		{Climate{Temperature: -0.5, Downfall: 0.5}, 255, 255},
	}
	for _, c := range cases {
		x, y := c.climate.ColourMapCoords()
		if x != c.x || y != c.y {
			t.Errorf("%+v: got (%d, %d), want (%d, %d)", c.climate, x, y, c.x, c.y)
		}
	}
}

func TestBiomePalette(t *testing.T) {
	biomes := []tower.Biome{"minecraft:plains", "minecraft:desert", "minecraft:ocean"}
	p, err := NewBiomePalette(biomes)
	if err != nil {
		t.Fatal(err)
	}

	for _, biome := range biomes {
		c := p.Pick(stone, biome)
		if c[3] != 0xff {
			t.Errorf("%s: colour is not opaque: %v", biome, c)
		}
		// the block does not matter
		if other := p.Pick(water, biome); other != c {
			t.Errorf("%s: colour depends on block, %v != %v", biome, c, other)
		}
	}

	if got := p.Pick(stone, "minecraft:nowhere"); got != unknownBiomeColour {
		t.Errorf("unknown biome: got %v", got)
	}
	if got := p.Pick(stone, ""); got != unknownBiomeColour {
		t.Errorf("absent biome: got %v", got)
	}

	empty, err := NewBiomePalette(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := empty.Pick(stone, "minecraft:plains"); got != unknownBiomeColour {
		t.Errorf("empty palette: got %v", got)
	}
}

func TestBiomePaletteFromAssets(t *testing.T) {
	palette, err := NewBiomePaletteFromAssets(testAssets(t))
	if err != nil {
		t.Fatal(err)
	}

	var got []tower.Biome
	for biome := range palette.biomes {
		got = append(got, biome)
	}
	want := []tower.Biome{"minecraft:desert", "minecraft:plains"}
	less := func(a, b tower.Biome) bool { return a < b }
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(less)); diff != "" {
		t.Errorf("biomes (-want +got):\n%s", diff)
	}
}

func TestStaticPalette(t *testing.T) {
	p := DefaultStaticPalette()

	if got := p.Pick(stone, ""); got != stoneColour {
		t.Errorf("stone: got %v", got)
	}
	// properties do not matter
	snowy := tower.NewBlock("minecraft:grass_block", map[string]string{"snowy": "false"})
	if got := p.Pick(snowy, "minecraft:plains"); got != grassColour {
		t.Errorf("grass block: got %v", got)
	}
	if got, want := p.Pick(tower.Block{Name: "minecraft:purpur_block"}, ""), (RGBA{0x70, 0x70, 0x70, 0xff}); got != want {
		t.Errorf("fallback: got %v, want %v", got, want)
	}
}

func TestAssetLoaderList(t *testing.T) {
	loader := testAssets(t)

	want := []string{"broken", "oak_log", "stone"}
	if diff := cmp.Diff(want, loader.List("assets/minecraft/blockstates", ".json")); diff != "" {
		t.Errorf("blockstates (-want +got):\n%s", diff)
	}
	// nested directories are not listed
	if got := loader.List("assets/minecraft/models", ".json"); len(got) != 0 {
		t.Errorf("unexpected models %v", got)
	}

	var climate Climate
	if err := loader.LoadJSON("data/minecraft/worldgen/biome/desert.json", &climate); err != nil {
		t.Fatal(err)
	}
	if climate.Temperature != 2.0 {
		t.Errorf("unexpected climate %+v", climate)
	}
	if err := loader.LoadJSON("data/minecraft/worldgen/biome/nowhere.json", &climate); err == nil {
		t.Error("expected error for a missing file")
	}
}
