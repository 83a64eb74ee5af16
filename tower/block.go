package tower

import (
	"sort"
	"strings"
)

// Block identifies the material of a single voxel.
type Block struct {
	Name string
	// Properties is the canonical "key=value,key=value" form of the block
	// state properties, sorted by key. Empty when the block has none.
	Properties string
}

// NewBlock builds a Block from a name and an unordered property map.
func NewBlock(name string, properties map[string]string) Block {
	return Block{Name: name, Properties: EncodeProperties(properties)}
}

// Air is returned for positions that are stored but hold nothing.
var Air = Block{Name: "minecraft:air"}

func (b Block) String() string {
	if b.Properties == "" {
		return b.Name
	}
	return b.Name + "[" + b.Properties + "]"
}

// PropertyMap decodes Properties back into a map.
func (b Block) PropertyMap() map[string]string {
	result := make(map[string]string)
	if b.Properties == "" {
		return result
	}
	for _, part := range strings.Split(b.Properties, ",") {
		k, v, _ := strings.Cut(part, "=")
		result[k] = v
	}
	return result
}

func EncodeProperties(properties map[string]string) string {
	if len(properties) == 0 {
		return ""
	}
	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(properties[k])
	}
	return sb.String()
}

// Biome is the climate classification of a 4x4x4 cell, e.g. "minecraft:plains".
// The zero value means unknown.
type Biome string
