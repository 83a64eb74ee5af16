package anvil

import (
	"fmt"

	"github.com/b1naryth1ef/topshade/tower"
)

// Numeric block ids used before the flattening. Only the blocks that
// commonly make up the surface are named; the rest keep their id.
var legacyBlocks = map[int]string{
	0:   "air",
	1:   "stone",
	2:   "grass_block",
	3:   "dirt",
	4:   "cobblestone",
	5:   "oak_planks",
	6:   "oak_sapling",
	7:   "bedrock",
	8:   "water",
	9:   "water",
	10:  "lava",
	11:  "lava",
	12:  "sand",
	13:  "gravel",
	14:  "gold_ore",
	15:  "iron_ore",
	16:  "coal_ore",
	17:  "oak_log",
	18:  "oak_leaves",
	19:  "sponge",
	20:  "glass",
	24:  "sandstone",
	30:  "cobweb",
	31:  "grass",
	32:  "dead_bush",
	35:  "white_wool",
	37:  "dandelion",
	38:  "poppy",
	39:  "brown_mushroom",
	40:  "red_mushroom",
	43:  "smooth_stone",
	44:  "smooth_stone_slab",
	45:  "bricks",
	48:  "mossy_cobblestone",
	49:  "obsidian",
	50:  "torch",
	53:  "oak_stairs",
	54:  "chest",
	59:  "wheat",
	60:  "farmland",
	67:  "cobblestone_stairs",
	78:  "snow",
	79:  "ice",
	80:  "snow_block",
	81:  "cactus",
	82:  "clay",
	83:  "sugar_cane",
	85:  "oak_fence",
	86:  "pumpkin",
	87:  "netherrack",
	88:  "soul_sand",
	89:  "glowstone",
	98:  "stone_bricks",
	99:  "brown_mushroom_block",
	100: "red_mushroom_block",
	103: "melon",
	106: "vine",
	110: "mycelium",
	111: "lily_pad",
	112: "nether_bricks",
	121: "end_stone",
	159: "white_terracotta",
	161: "acacia_leaves",
	162: "acacia_log",
	172: "terracotta",
	174: "packed_ice",
	175: "sunflower",
}

// variants of ids whose data value picks a distinct block
var legacyVariants = map[int][]string{
	1:  {"stone", "granite", "polished_granite", "diorite", "polished_diorite", "andesite", "polished_andesite"},
	3:  {"dirt", "coarse_dirt", "podzol"},
	12: {"sand", "red_sand"},
	17: {"oak_log", "spruce_log", "birch_log", "jungle_log"},
	18: {"oak_leaves", "spruce_leaves", "birch_leaves", "jungle_leaves"},
	31: {"dead_bush", "grass", "fern"},
}

func legacyBlock(id, data int) tower.Block {
	if variants, ok := legacyVariants[id]; ok {
		// leaves and logs keep decay and axis bits above the variant
		v := data & 0x07
		if id == 17 || id == 18 {
			v = data & 0x03
		}
		if v < len(variants) {
			return tower.Block{Name: "minecraft:" + variants[v]}
		}
	}
	if name, ok := legacyBlocks[id]; ok {
		return tower.Block{Name: "minecraft:" + name}
	}
	return tower.Block{Name: fmt.Sprintf("legacy:%d", id)}
}

// Numeric biome ids used up to 1.17.
var legacyBiomes = map[int]string{
	0:   "ocean",
	1:   "plains",
	2:   "desert",
	3:   "mountains",
	4:   "forest",
	5:   "taiga",
	6:   "swamp",
	7:   "river",
	8:   "nether_wastes",
	9:   "the_end",
	10:  "frozen_ocean",
	11:  "frozen_river",
	12:  "snowy_tundra",
	13:  "snowy_mountains",
	14:  "mushroom_fields",
	15:  "mushroom_field_shore",
	16:  "beach",
	17:  "desert_hills",
	18:  "wooded_hills",
	19:  "taiga_hills",
	20:  "mountain_edge",
	21:  "jungle",
	22:  "jungle_hills",
	23:  "jungle_edge",
	24:  "deep_ocean",
	25:  "stone_shore",
	26:  "snowy_beach",
	27:  "birch_forest",
	28:  "birch_forest_hills",
	29:  "dark_forest",
	30:  "snowy_taiga",
	31:  "snowy_taiga_hills",
	32:  "giant_tree_taiga",
	33:  "giant_tree_taiga_hills",
	34:  "wooded_mountains",
	35:  "savanna",
	36:  "savanna_plateau",
	37:  "badlands",
	38:  "wooded_badlands_plateau",
	39:  "badlands_plateau",
	40:  "small_end_islands",
	41:  "end_midlands",
	42:  "end_highlands",
	43:  "end_barrens",
	44:  "warm_ocean",
	45:  "lukewarm_ocean",
	46:  "cold_ocean",
	47:  "deep_warm_ocean",
	48:  "deep_lukewarm_ocean",
	49:  "deep_cold_ocean",
	50:  "deep_frozen_ocean",
	127: "the_void",
	129: "sunflower_plains",
	130: "desert_lakes",
	131: "gravelly_mountains",
	132: "flower_forest",
	140: "ice_spikes",
	149: "modified_jungle",
	155: "tall_birch_forest",
	157: "dark_forest_hills",
	160: "giant_spruce_taiga",
	163: "shattered_savanna",
	165: "eroded_badlands",
	168: "bamboo_jungle",
	169: "bamboo_jungle_hills",
	170: "soul_sand_valley",
	171: "crimson_forest",
	172: "warped_forest",
	173: "basalt_deltas",
}

func legacyBiome(id int) tower.Biome {
	if name, ok := legacyBiomes[id]; ok {
		return tower.Biome("minecraft:" + name)
	}
	return ""
}
