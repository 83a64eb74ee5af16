// Package anvil reads worlds stored as region files and exposes their chunks
// as section towers.
package anvil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Tnze/go-mc/nbt"
	"github.com/Tnze/go-mc/save"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/b1naryth1ef/topshade"
	"github.com/b1naryth1ef/topshade/tower"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported chunk format")
	ErrNotGenerated      = errors.New("chunk is not fully generated")
)

const (
	// DataVersion of 1.18, the first release with per-section biomes.
	dataVersionSectionBiomes = 2860
	// DataVersion of 1.16, the first release with padded block state arrays.
	dataVersionPaddedStates = 2566
	// DataVersion of 1.13, the flattening.
	dataVersionFlattening = 1451
)

var generatedStatuses = map[string]struct{}{
	"full":          {},
	"fullchunk":     {},
	"spawn":         {},
	"postprocessed": {},
}

func isGenerated(status string) bool {
	// chunks older than 1.13 carry no status
	if status == "" {
		return true
	}
	_, ok := generatedStatuses[strings.TrimPrefix(status, "minecraft:")]
	return ok
}

// Chunk is a decoded chunk column.
type Chunk struct {
	*tower.SectionTower

	// heights holds the stored surface height per column, z*16+x, or nil
	// when the chunk has no usable heightmap.
	heights []int
}

func (c *Chunk) SurfaceHeight(x, z int, mode topshade.HeightMode) int {
	if mode == topshade.HeightTrust && c.heights != nil {
		yMin, yMax := c.YRange()
		return min(max(c.heights[z*16+x], yMin), yMax)
	}
	return topshade.CalculateSurfaceHeight(c, x, z)
}

func decompress(sector []byte) ([]byte, error) {
	if len(sector) == 0 {
		return nil, errors.New("empty sector")
	}

	var r io.Reader = bytes.NewReader(sector[1:])
	switch sector[0] {
	case 1:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		r = gr
	case 2:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case 3:
	default:
		return nil, fmt.Errorf("%w: compression type %d", ErrUnsupportedFormat, sector[0])
	}
	return io.ReadAll(r)
}

type chunkHeader struct {
	DataVersion int32  `nbt:"DataVersion"`
	Status      string `nbt:"Status"`
	Level       struct {
		Status string `nbt:"Status"`
	} `nbt:"Level"`
}

// DecodeChunk decodes a sector as read from a region file, choosing the
// layout from the chunk's data version.
func DecodeChunk(sector []byte) (*Chunk, error) {
	data, err := decompress(sector)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress chunk: %w", err)
	}

	var header chunkHeader
	if err := nbt.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to decode chunk header: %w", err)
	}

	switch v := header.DataVersion; {
	case v >= dataVersionSectionBiomes:
		if !isGenerated(header.Status) {
			return nil, ErrNotGenerated
		}
		return decodeModern(data)
	case v >= dataVersionPaddedStates:
		if !isGenerated(header.Level.Status) {
			return nil, ErrNotGenerated
		}
		return decodeFlatBiomes(data)
	case v >= dataVersionFlattening:
		return nil, fmt.Errorf("%w: data version %d", ErrUnsupportedFormat, v)
	default:
		return decodeDense(data)
	}
}

func decodeModern(data []byte) (*Chunk, error) {
	var chunk save.Chunk
	if err := nbt.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("failed to decode chunk: %w", err)
	}

	var present []save.Section
	for _, s := range chunk.Sections {
		if len(s.BlockStates.Palette) > 0 {
			present = append(present, s)
		}
	}
	if len(present) == 0 {
		return nil, ErrNotGenerated
	}
	sort.Slice(present, func(i, j int) bool { return present[i].Y < present[j].Y })

	lowest := int(present[0].Y)
	highest := int(present[len(present)-1].Y)

	sections := make([]tower.Section, highest-lowest+1)
	for _, s := range present {
		sections[int(s.Y)-lowest] = newPalettedSection(s)
	}
	for i := range sections {
		if sections[i] == nil {
			sections[i] = tower.FilledSection(tower.Air, "")
		}
	}

	return &Chunk{
		SectionTower: tower.FromSections(lowest*16, (highest+1)*16, sections),
		heights:      unpackHeights(chunk.Heightmaps["MOTION_BLOCKING"], int(chunk.YPos)*16),
	}, nil
}

// unpackHeights decodes a packed heightmap whose values are relative to base.
func unpackHeights(data []uint64, base int) []int {
	storage, err := packedIndices(calcBitsPerValue(16*16, len(data)), 16*16, data)
	if storage == nil || err != nil {
		return nil
	}
	heights := make([]int, 16*16)
	for i := range heights {
		heights[i] = storage.Get(i) + base
	}
	return heights
}
