package topshade

import (
	"fmt"
	"image"
)

const (
	chunkPixels  = 16 * 16
	regionChunks = 32
	// RegionPixels is the width and height of a rendered region.
	RegionPixels = 16 * regionChunks
)

// RegionMap holds one value per pixel of a 512x512 region. Storage is chunk
// major: chunk (cx, cz) owns the 256 values starting at (cz*32+cx)*256, and
// pixel (px, pz) of that chunk is at offset pz*16+px.
type RegionMap[T any] struct {
	Data []T
	X    RCoord
	Z    RCoord
}

func NewRegionMap[T any](x, z RCoord, fill T) *RegionMap[T] {
	data := make([]T, chunkPixels*regionChunks*regionChunks)
	for i := range data {
		data[i] = fill
	}
	return &RegionMap[T]{Data: data, X: x, Z: z}
}

// Chunk returns the pixels of chunk (x, z). The slice aliases the map.
func (m *RegionMap[T]) Chunk(x, z CCoord) []T {
	if x < 0 || z < 0 || x >= regionChunks || z >= regionChunks {
		panic(fmt.Sprintf("topshade: chunk (%d, %d) outside of region", x, z))
	}
	begin := (int(z)*regionChunks + int(x)) * chunkPixels
	return m.Data[begin : begin+chunkPixels]
}

// At returns the value of pixel (px, pz) in region pixel space.
func (m *RegionMap[T]) At(px, pz int) T {
	return m.Chunk(CCoord(px/16), CCoord(pz/16))[(pz%16)*16+px%16]
}

// Image lays a rendered region out row-major.
func Image(m *RegionMap[RGBA]) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, RegionPixels, RegionPixels))
	for cz := 0; cz < regionChunks; cz++ {
		for cx := 0; cx < regionChunks; cx++ {
			pixels := m.Chunk(CCoord(cx), CCoord(cz))
			for pz := 0; pz < 16; pz++ {
				offset := img.PixOffset(cx*16, cz*16+pz)
				for px := 0; px < 16; px++ {
					c := pixels[pz*16+px]
					copy(img.Pix[offset+px*4:offset+px*4+4], c[:])
				}
			}
		}
	}
	return img
}

// RenderRegion renders every chunk of region (x, z) in dimension. A missing
// region yields a fully transparent map.
//
// Chunks are rendered row by row. Slot cx of the cache holds the last chunk
// rendered in column cx, which is the northern neighbour of the next chunk in
// that column. It is seeded from the bottom row of the region to the north so
// shading carries across region boundaries.
func RenderRegion(x, z RCoord, dimension Dimension, renderer *TopShadeRenderer) *RegionMap[RGBA] {
	m := NewRegionMap(x, z, Transparent)

	region, ok := dimension.Region(x, z)
	if !ok {
		return m
	}

	var cache [regionChunks]Chunk

	if north, ok := dimension.Region(x, z-1); ok {
		for cx := range cache {
			if c, ok := north.Chunk(CCoord(cx), regionChunks-1); ok {
				cache[cx] = c
			}
		}
	}

	for cz := CCoord(0); cz < regionChunks; cz++ {
		for cx := CCoord(0); cx < regionChunks; cx++ {
			chunk, ok := region.Chunk(cx, cz)
			if !ok {
				continue
			}

			pixels := renderer.Render(chunk, cache[cx])
			copy(m.Chunk(cx, cz), pixels[:])
			cache[cx] = chunk
		}
	}

	return m
}
