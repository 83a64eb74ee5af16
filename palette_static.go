package topshade

import "github.com/b1naryth1ef/topshade/tower"

// StaticPalette colours blocks from a fixed table keyed by block name and
// needs no client assets.
type StaticPalette struct {
	colours  map[string]RGBA
	fallback RGBA
}

func NewStaticPalette(colours map[string]RGBA, fallback RGBA) *StaticPalette {
	return &StaticPalette{colours: colours, fallback: fallback}
}

// DefaultStaticPalette covers the blocks that make up most of the surface of
// a vanilla overworld.
func DefaultStaticPalette() *StaticPalette {
	return NewStaticPalette(map[string]RGBA{
		"minecraft:grass_block":   {0x91, 0xbd, 0x59, 0xff},
		"minecraft:short_grass":   {0x91, 0xbd, 0x59, 0x7f},
		"minecraft:grass":         {0x91, 0xbd, 0x59, 0x7f},
		"minecraft:tall_grass":    {0x91, 0xbd, 0x59, 0x7f},
		"minecraft:fern":          {0x91, 0xbd, 0x59, 0x7f},
		"minecraft:dirt":          {0x86, 0x60, 0x43, 0xff},
		"minecraft:coarse_dirt":   {0x77, 0x55, 0x3b, 0xff},
		"minecraft:podzol":        {0x5b, 0x3f, 0x18, 0xff},
		"minecraft:stone":         {0x7d, 0x7d, 0x7d, 0xff},
		"minecraft:deepslate":     {0x50, 0x50, 0x52, 0xff},
		"minecraft:andesite":      {0x88, 0x88, 0x88, 0xff},
		"minecraft:granite":       {0x95, 0x67, 0x55, 0xff},
		"minecraft:diorite":       {0xbc, 0xbc, 0xbc, 0xff},
		"minecraft:gravel":        {0x83, 0x7f, 0x7e, 0xff},
		"minecraft:sand":          {0xdb, 0xcf, 0xa3, 0xff},
		"minecraft:red_sand":      {0xbe, 0x66, 0x21, 0xff},
		"minecraft:sandstone":     {0xd8, 0xcb, 0x9b, 0xff},
		"minecraft:clay":          {0xa0, 0xa6, 0xb3, 0xff},
		"minecraft:snow":          {0xf9, 0xfe, 0xfe, 0xff},
		"minecraft:snow_block":    {0xf9, 0xfe, 0xfe, 0xff},
		"minecraft:ice":           {0x91, 0xb7, 0xfd, 0xbf},
		"minecraft:packed_ice":    {0x8d, 0xb4, 0xfa, 0xff},
		"minecraft:water":         defaultWaterColour,
		"minecraft:bubble_column": defaultWaterColour,
		"minecraft:seagrass":      {0x33, 0x80, 0x0e, 0xff},
		"minecraft:tall_seagrass": {0x33, 0x80, 0x0e, 0xff},
		"minecraft:kelp":          {0x57, 0x82, 0x2b, 0xff},
		"minecraft:kelp_plant":    {0x57, 0x82, 0x2b, 0xff},
		"minecraft:lava":          {0xcf, 0x5b, 0x14, 0xff},
		"minecraft:oak_leaves":    {0x77, 0xab, 0x2f, 0xff},
		"minecraft:birch_leaves":  {0x80, 0xa7, 0x55, 0xff},
		"minecraft:spruce_leaves": {0x61, 0x99, 0x61, 0xff},
		"minecraft:jungle_leaves": {0x77, 0xab, 0x2f, 0xff},
		"minecraft:oak_log":       {0x6d, 0x55, 0x32, 0xff},
		"minecraft:cactus":        {0x55, 0x7f, 0x2b, 0xff},
		"minecraft:mycelium":      {0x6f, 0x63, 0x69, 0xff},
		"minecraft:netherrack":    {0x62, 0x26, 0x26, 0xff},
		"minecraft:end_stone":     {0xdb, 0xde, 0x9e, 0xff},
		"minecraft:bedrock":       {0x55, 0x55, 0x55, 0xff},
	}, RGBA{0x70, 0x70, 0x70, 0xff})
}

func (p *StaticPalette) Pick(block tower.Block, biome tower.Biome) RGBA {
	if c, ok := p.colours[block.Name]; ok {
		return c
	}
	return p.fallback
}
