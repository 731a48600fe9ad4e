// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"
	"os"
	"path/filepath"

	uo "github.com/suprsokr/go-uo"
)

// blocksPerEntry is the number of terrain blocks in one archive entry.
const blocksPerEntry = 4096

// MapTerrainFileNames returns the archive, data, diff list and diff data
// file names of map n.
func MapTerrainFileNames(n int) (uopName, mulName, difList, difData string) {
	return fmt.Sprintf("map%dLegacyMUL.uop", n),
		fmt.Sprintf("map%d.mul", n),
		fmt.Sprintf("mapdifl%d.mul", n),
		fmt.Sprintf("mapdif%d.mul", n)
}

// MapTerrainHashFormat returns the archive entry template of map n.
func MapTerrainHashFormat(n int) string {
	return fmt.Sprintf("build/map%dlegacymul/{8}.dat", n)
}

// MapTerrain holds the terrain blocks of one facet.
type MapTerrain struct {
	number   int
	geometry MapGeometry
	blocks   uo.Blocks
	tiles    *TileData
}

// OpenMapTerrain loads the terrain of map n from a client directory,
// preferring the archive when present. tiles may be nil when Info is not
// needed.
func OpenMapTerrain(dir string, n int, geometry MapGeometry, tiles *TileData, opts ...uo.Option) (*MapTerrain, error) {
	uopName, mulName, _, _ := MapTerrainFileNames(n)
	m := &MapTerrain{number: n, geometry: geometry, blocks: uo.Blocks{}, tiles: tiles}

	uopPath := filepath.Join(dir, uopName)
	if _, err := os.Stat(uopPath); err == nil {
		lastEntry := (geometry.BlockCount()+blocksPerEntry-1)/blocksPerEntry - 1
		err := uo.LoadUOP(uopPath, lastEntry, []string{MapTerrainHashFormat(n)}, terrainLoader{m}, opts...)
		if err != nil {
			return nil, fmt.Errorf("load map %d: %w", n, err)
		}
		return m, nil
	}

	if err := m.readMul(filepath.Join(dir, mulName)); err != nil {
		return nil, fmt.Errorf("load map %d: %w", n, err)
	}
	return m, nil
}

// readMul splits a positional terrain file into blocks. A trailing partial
// block is ignored.
func (m *MapTerrain) readMul(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &uo.FileOpenError{Path: path, Err: err}
	}
	m.storeBlocks(0, data)
	return nil
}

func (m *MapTerrain) storeBlocks(first uint32, data []byte) {
	for i := 0; i+MapBlockSize <= len(data); i += MapBlockSize {
		m.blocks[first+uint32(i/MapBlockSize)] = data[i : i+MapBlockSize : i+MapBlockSize]
	}
}

type terrainLoader struct{ m *MapTerrain }

func (l terrainLoader) ProcessEntry(_, index int, data []byte) error {
	if index == uo.NoIndex {
		return nil
	}
	l.m.storeBlocks(uint32(index*blocksPerEntry), data)
	return nil
}

// Number returns the map number.
func (m *MapTerrain) Number() int { return m.number }

// Geometry returns the facet size.
func (m *MapTerrain) Geometry() MapGeometry { return m.geometry }

// BlockCount returns the number of blocks present.
func (m *MapTerrain) BlockCount() int { return len(m.blocks) }

// Block returns terrain block n.
func (m *MapTerrain) Block(n uint32) (*MapBlock, error) {
	data, ok := m.blocks.Block(n)
	if !ok {
		return nil, fmt.Errorf("terrain block %d: %w", n, uo.ErrNotFound)
	}
	return ParseMapBlock(data)
}

// Tile returns the terrain at cell x,y.
func (m *MapTerrain) Tile(x, y int) (TerrainTile, error) {
	if !m.geometry.Contains(x, y) {
		return TerrainTile{}, fmt.Errorf("cell %d,%d outside map %d", x, y, m.number)
	}
	block, err := m.Block(m.geometry.BlockNumber(x, y))
	if err != nil {
		return TerrainTile{}, err
	}
	return block[x%BlockEdge][y%BlockEdge], nil
}

// Info returns the tile data of the terrain at cell x,y.
func (m *MapTerrain) Info(x, y int) (TerrainInfo, error) {
	if m.tiles == nil {
		return TerrainInfo{}, ErrNoTileData
	}
	tile, err := m.Tile(x, y)
	if err != nil {
		return TerrainInfo{}, err
	}
	return m.tiles.Terrain(int(tile.ID))
}

// ApplyDiff overlays the map's diff files from dir and returns the number of
// blocks replaced. Missing diff files apply nothing.
func (m *MapTerrain) ApplyDiff(dir string, opts ...uo.Option) (int, error) {
	_, _, difList, difData := MapTerrainFileNames(m.number)
	n, err := uo.ApplyFixedDiff(filepath.Join(dir, difList), filepath.Join(dir, difData), MapBlockSize, m.blocks, opts...)
	if err != nil {
		return n, fmt.Errorf("apply map %d diff: %w", m.number, err)
	}
	return n, nil
}
