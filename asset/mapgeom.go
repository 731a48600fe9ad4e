// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import "fmt"

// MapGeometry is the size of a facet in cells.
type MapGeometry struct {
	Width  int
	Height int
}

var defaultMapSizes = []MapGeometry{
	{7168, 4096},
	{7168, 4096},
	{2304, 1600},
	{2560, 2048},
	{1448, 1448},
	{1280, 4096},
}

// DefaultMapSize returns the size the client uses for facet n.
func DefaultMapSize(n int) (MapGeometry, error) {
	if n < 0 || n >= len(defaultMapSizes) {
		return MapGeometry{}, fmt.Errorf("asset: no default size for map %d", n)
	}
	return defaultMapSizes[n], nil
}

// BlockWidth returns the number of block columns.
func (g MapGeometry) BlockWidth() int { return g.Width / BlockEdge }

// BlockHeight returns the number of block rows.
func (g MapGeometry) BlockHeight() int { return g.Height / BlockEdge }

// BlockCount returns the number of blocks in the facet.
func (g MapGeometry) BlockCount() int { return g.BlockWidth() * g.BlockHeight() }

// Contains reports whether the cell lies on the facet.
func (g MapGeometry) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// BlockNumber returns the block holding cell x,y. Blocks are stored column
// by column.
func (g MapGeometry) BlockNumber(x, y int) uint32 {
	return uint32((x/BlockEdge)*g.BlockHeight() + y/BlockEdge)
}

// BlockOrigin returns the cell at the top-left corner of block n.
func (g MapGeometry) BlockOrigin(n uint32) (x, y int) {
	h := g.BlockHeight()
	if h == 0 {
		return 0, 0
	}
	return int(n) / h * BlockEdge, int(n) % h * BlockEdge
}
