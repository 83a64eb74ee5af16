package topshade

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/b1naryth1ef/topshade/logger"
	"github.com/b1naryth1ef/topshade/tower"
)

// Palette picks the colour a block should be drawn with. It must return a
// colour for every block; biome is empty when unknown.
type Palette interface {
	Pick(block tower.Block, biome tower.Biome) RGBA
}

// missingColour is drawn for blocks whose model or texture cannot be resolved.
var missingColour = RGBA{0xff, 0x00, 0xff, 0xff}

var grassBlocks = map[string]struct{}{
	"minecraft:grass":       {},
	"minecraft:short_grass": {},
	"minecraft:grass_block": {},
	"minecraft:tall_grass":  {},
	"minecraft:vine":        {},
	"minecraft:fern":        {},
	"minecraft:large_fern":  {},
}

func isGrassBlock(block string) bool {
	_, ok := grassBlocks[block]
	return ok
}

var foliageBlocks = map[string]struct{}{
	"minecraft:oak_leaves":      {},
	"minecraft:jungle_leaves":   {},
	"minecraft:acacia_leaves":   {},
	"minecraft:dark_oak_leaves": {},
	"minecraft:mangrove_leaves": {},
}

func isFoliageBlock(block string) bool {
	_, ok := foliageBlocks[block]
	return ok
}

var waterColours = map[tower.Biome]RGBA{
	"minecraft:swamp":          {0x61, 0x7b, 0x64, 0xff},
	"minecraft:mangrove_swamp": {0x3a, 0x7a, 0x6a, 0xff},
	"minecraft:lukewarm_ocean": {0x45, 0xad, 0xf2, 0xff},
	"minecraft:warm_ocean":     {0x43, 0xd5, 0xee, 0xff},
	"minecraft:cold_ocean":     {0x3d, 0x57, 0xd6, 0xff},
	"minecraft:frozen_river":   {0x39, 0x38, 0xc9, 0xff},
	"minecraft:frozen_ocean":   {0x39, 0x38, 0xc9, 0xff},
}

var defaultWaterColour = RGBA{0x3f, 0x76, 0xe4, 0xff}

type blockStateMultipart struct {
	Apply json.RawMessage `json:"apply"`
	When  json.RawMessage `json:"when"`
}

type blockStateVariant struct {
	Model string `json:"model"`
}

type blockStateInfo struct {
	Variants  map[string]json.RawMessage `json:"variants"`
	Multipart []blockStateMultipart      `json:"multipart"`
}

type modelInfo struct {
	Parent   string            `json:"parent"`
	Textures map[string]string `json:"textures"`
}

// TexturePalette colours blocks with the average colour of their top texture
// from a client JAR, tinting grass, foliage and water by biome.
type TexturePalette struct {
	sync.RWMutex

	loader *AssetLoader

	biomeLock  sync.RWMutex
	biomeCache map[tower.Biome]*Climate

	modelCache      map[string]modelInfo
	blockStateCache map[string]blockStateInfo
	textureCache    map[string]image.Image

	colours map[tower.Block]RGBA
	missing map[string]struct{}

	grassColourMap   image.Image
	foliageColourMap image.Image
}

func NewTexturePalette(loader *AssetLoader) (*TexturePalette, error) {
	grassColourMap, err := loader.LoadPNG("assets/minecraft/textures/colormap/grass.png")
	if err != nil {
		return nil, fmt.Errorf("failed to load grass colormap: %w", err)
	}
	foliageColourMap, err := loader.LoadPNG("assets/minecraft/textures/colormap/foliage.png")
	if err != nil {
		return nil, fmt.Errorf("failed to load foliage colormap: %w", err)
	}
	return &TexturePalette{
		loader:           loader,
		biomeCache:       make(map[tower.Biome]*Climate),
		modelCache:       make(map[string]modelInfo),
		blockStateCache:  make(map[string]blockStateInfo),
		textureCache:     make(map[string]image.Image),
		colours:          make(map[tower.Block]RGBA),
		missing:          make(map[string]struct{}),
		grassColourMap:   grassColourMap,
		foliageColourMap: foliageColourMap,
	}, nil
}

func (p *TexturePalette) Pick(block tower.Block, biome tower.Biome) RGBA {
	p.RLock()
	colour, ok := p.colours[block]
	p.RUnlock()

	if !ok {
		colour = p.prepare(block)
	}
	return p.tint(block, colour, biome)
}

// MissingBlockStates lists the block names that could not be resolved to a
// texture.
func (p *TexturePalette) MissingBlockStates() []string {
	p.RLock()
	defer p.RUnlock()

	result := make([]string, 0, len(p.missing))
	for k := range p.missing {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

func (p *TexturePalette) prepare(block tower.Block) RGBA {
	p.Lock()
	defer p.Unlock()

	if colour, ok := p.colours[block]; ok {
		return colour
	}

	colour, err := p.resolve(block)
	if err != nil {
		if _, seen := p.missing[block.Name]; !seen {
			logger.Warn("unresolved block state", zap.Stringer("block", block), zap.Error(err))
		}
		p.missing[block.Name] = struct{}{}
		colour = missingColour
	}
	p.colours[block] = colour
	return colour
}

func (p *TexturePalette) climate(biome tower.Biome) *Climate {
	p.biomeLock.RLock()
	if res, ok := p.biomeCache[biome]; ok {
		p.biomeLock.RUnlock()
		return res
	}
	p.biomeLock.RUnlock()

	p.biomeLock.Lock()
	defer p.biomeLock.Unlock()

	climate, err := LoadClimate(p.loader, biome)
	if err != nil {
		logger.Debug("using default climate", zap.String("biome", string(biome)), zap.Error(err))
		climate = &defaultClimate
	}
	p.biomeCache[biome] = climate
	return climate
}

func (p *TexturePalette) tint(block tower.Block, colour RGBA, biome tower.Biome) RGBA {
	switch {
	case isGrassBlock(block.Name):
		x, y := p.climate(biome).ColourMapCoords()
		return RGBAFromColor(p.grassColourMap.At(x, y))
	case isFoliageBlock(block.Name):
		x, y := p.climate(biome).ColourMapCoords()
		return RGBAFromColor(p.foliageColourMap.At(x, y))
	case block.Name == "minecraft:birch_leaves":
		return RGBA{0x80, 0xa7, 0x55, 0xff}
	case block.Name == "minecraft:spruce_leaves":
		return RGBA{0x61, 0x99, 0x61, 0xff}
	case IsWatery(block) && block.Name != "minecraft:kelp" && block.Name != "minecraft:kelp_plant":
		if c, ok := waterColours[biome]; ok {
			return c
		}
		return defaultWaterColour
	}
	return colour
}

func (p *TexturePalette) resolve(block tower.Block) (RGBA, error) {
	rawName := stripNamespace(block.Name)

	info, ok := p.blockStateCache[block.Name]
	if !ok {
		if err := p.loader.LoadJSON(fmt.Sprintf("assets/minecraft/blockstates/%s.json", rawName), &info); err != nil {
			return RGBA{}, err
		}
		p.blockStateCache[block.Name] = info
	}

	var modelName string
	switch {
	case info.Multipart != nil:
		modelName = firstMultipartModel(info.Multipart)
	case len(info.Variants) == 1:
		for _, v := range info.Variants {
			if variants := decodeVariants(v); len(variants) > 0 {
				modelName = variants[0].Model
			}
		}
	default:
		if variants := findVariants(block.PropertyMap(), info.Variants); len(variants) > 0 {
			modelName = variants[0].Model
		}
	}
	if modelName == "" {
		return RGBA{}, errors.New("no model for block state")
	}

	textureName, err := p.topTexture(modelName)
	if err != nil {
		return RGBA{}, err
	}

	texture, ok := p.textureCache[textureName]
	if !ok {
		texture, err = p.loader.LoadPNG(fmt.Sprintf("assets/minecraft/textures/%s.png", textureName))
		if err != nil {
			return RGBA{}, fmt.Errorf("failed to load texture %s: %w", textureName, err)
		}
		p.textureCache[textureName] = texture
	}

	return averageColour(texture), nil
}

func (p *TexturePalette) model(name string) (modelInfo, error) {
	info, ok := p.modelCache[name]
	if ok {
		return info, nil
	}

	if err := p.loader.LoadJSON(fmt.Sprintf("assets/minecraft/models/%s.json", stripNamespace(name)), &info); err != nil {
		return info, err
	}
	p.modelCache[name] = info
	return info, nil
}

// topTexture picks the texture best representing a model seen from above,
// following parents for models that inherit their textures.
func (p *TexturePalette) topTexture(modelName string) (string, error) {
	for depth := 0; modelName != "" && depth < 8; depth++ {
		info, err := p.model(modelName)
		if err != nil {
			return "", err
		}

		var textureName string
		if len(info.Textures) == 1 {
			for _, v := range info.Textures {
				textureName = v
			}
		} else {
			for _, key := range []string{"top", "end", "all", "texture", "cross", "side", "particle"} {
				if v, ok := info.Textures[key]; ok {
					textureName = v
					break
				}
			}
		}

		if textureName != "" && !strings.HasPrefix(textureName, "#") {
			return stripNamespace(textureName), nil
		}
		modelName = info.Parent
	}
	return "", fmt.Errorf("no texture for model %s", modelName)
}

func stripNamespace(name string) string {
	if _, after, ok := strings.Cut(name, ":"); ok {
		return after
	}
	return name
}

// averageColour averages a texture weighted by pixel alpha.
func averageColour(texture image.Image) RGBA {
	bounds := texture.Bounds()
	var rr, gg, bb, aa, count float64
	for i := bounds.Min.X; i < bounds.Max.X; i++ {
		for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
			c := RGBAFromColor(texture.At(i, j))
			a := float64(c[3])
			rr += float64(c[0]) * a
			gg += float64(c[1]) * a
			bb += float64(c[2]) * a
			aa += a
			count++
		}
	}
	if aa == 0 {
		return Transparent
	}
	return RGBA{uint8(rr / aa), uint8(gg / aa), uint8(bb / aa), uint8(aa / count)}
}

func decodeVariants(raw json.RawMessage) []blockStateVariant {
	var variants []blockStateVariant
	if err := json.Unmarshal(raw, &variants); err == nil {
		return variants
	}
	var v blockStateVariant
	if err := json.Unmarshal(raw, &v); err == nil {
		return []blockStateVariant{v}
	}
	return nil
}

func parseVariantProperties(raw string) map[string]string {
	result := make(map[string]string)
	if raw == "" {
		return result
	}
	for _, part := range strings.Split(raw, ",") {
		k, v, _ := strings.Cut(part, "=")
		result[k] = v
	}
	return result
}

func findVariants(properties map[string]string, raw map[string]json.RawMessage) []blockStateVariant {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		matches := true
		for pk, pv := range parseVariantProperties(k) {
			if properties[pk] != pv {
				matches = false
				break
			}
		}
		if matches {
			return decodeVariants(raw[k])
		}
	}

	// fall back to any variant rather than leaving the block uncoloured
	if len(keys) > 0 {
		return decodeVariants(raw[keys[0]])
	}
	return nil
}

func firstMultipartModel(parts []blockStateMultipart) string {
	for _, part := range parts {
		var apply blockStateVariant
		if err := json.Unmarshal(part.Apply, &apply); err == nil && apply.Model != "" {
			return apply.Model
		}
		var applies []blockStateVariant
		if err := json.Unmarshal(part.Apply, &applies); err == nil && len(applies) > 0 {
			return applies[0].Model
		}
	}
	return ""
}
