package topshade

import "github.com/b1naryth1ef/topshade/tower"

// TopShadeRenderer renders a chunk to a 16x16 image seen from above, shading
// each pixel by comparing its height with the column to its north.
type TopShadeRenderer struct {
	palette    Palette
	heightMode HeightMode
}

func NewTopShadeRenderer(palette Palette, mode HeightMode) *TopShadeRenderer {
	return &TopShadeRenderer{
		palette:    palette,
		heightMode: mode,
	}
}

// Render returns the pixels of chunk indexed by z*16+x. north is the chunk
// directly north of chunk, or nil when it is not available.
func (r *TopShadeRenderer) Render(chunk Chunk, north Chunk) [16 * 16]RGBA {
	var data [16 * 16]RGBA

	yMin, _ := chunk.YRange()

	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			airHeight := chunk.SurfaceHeight(x, z, r.heightMode)
			blockHeight := max(airHeight-1, yMin)

			colour := r.drillForColour(chunk, x, blockHeight, z, yMin)

			var northHeight int
			if z == 0 {
				// the top row compares against the last row of the chunk above
				if north != nil {
					northHeight = north.SurfaceHeight(x, 15, r.heightMode)
				} else {
					northHeight = blockHeight
				}
			} else {
				northHeight = chunk.SurfaceHeight(x, z-1, r.heightMode)
			}

			data[z*16+x] = TopShade(colour, airHeight, northHeight)
		}
	}

	return data
}

// drillForColour walks down column x, z from yStart until the accumulated
// colour is opaque. It stops early when the chunk has no block at a position.
func (r *TopShadeRenderer) drillForColour(chunk Chunk, x, yStart, z, yMin int) RGBA {
	colour := Transparent

	for y := yStart; colour[3] != 255 && y >= yMin; {
		block, ok := chunk.Block(x, y, z)
		if !ok {
			return colour
		}
		biome, _ := chunk.Biome(x, y, z)

		switch {
		case IsAiry(block):
			y--
		case IsWatery(block):
			// the whole body of water is composited in one step
			blockColour := r.palette.Pick(block, biome)
			depth := waterDepth(chunk, x, y, z, yMin)
			blockColour[3] = WaterDepthToAlpha(depth)

			colour = AOverB(colour, blockColour)
			y -= depth
		default:
			colour = AOverB(colour, r.palette.Pick(block, biome))
			y--
		}
	}

	return colour
}

// waterDepth counts the watery blocks from y downwards, including y itself.
func waterDepth(chunk Chunk, x, y, z, yMin int) int {
	depth := 0
	for ; y >= yMin; y-- {
		block, ok := chunk.Block(x, y, z)
		if !ok || !IsWatery(block) {
			break
		}
		depth++
	}
	return max(depth, 1)
}

// TowerChunk adapts a bare SectionTower into a Chunk whose surface height is
// always calculated.
type TowerChunk struct {
	*tower.SectionTower
}

func (c TowerChunk) SurfaceHeight(x, z int, mode HeightMode) int {
	return CalculateSurfaceHeight(c, x, z)
}
