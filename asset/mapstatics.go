// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"
	"path/filepath"

	uo "github.com/suprsokr/go-uo"
)

// MapStaticsFileNames returns the index, data and three diff file names of
// map n's statics.
func MapStaticsFileNames(n int) (idx, mul, difList, difLookup, difData string) {
	return fmt.Sprintf("staidx%d.mul", n),
		fmt.Sprintf("statics%d.mul", n),
		fmt.Sprintf("stadifl%d.mul", n),
		fmt.Sprintf("stadifi%d.mul", n),
		fmt.Sprintf("stadif%d.mul", n)
}

// MapStatics holds the static blocks of one facet. Blocks without statics
// are absent.
type MapStatics struct {
	number   int
	geometry MapGeometry
	blocks   uo.Blocks
	tiles    *TileData
}

// OpenMapStatics loads the statics of map n from a client directory. tiles
// may be nil when Info is not needed.
func OpenMapStatics(dir string, n int, geometry MapGeometry, tiles *TileData, opts ...uo.Option) (*MapStatics, error) {
	idx, mul, _, _, _ := MapStaticsFileNames(n)
	return OpenMapStaticsFiles(filepath.Join(dir, idx), filepath.Join(dir, mul), n, geometry, tiles, opts...)
}

// OpenMapStaticsFiles loads statics from an index/data pair.
func OpenMapStaticsFiles(idxPath, mulPath string, n int, geometry MapGeometry, tiles *TileData, opts ...uo.Option) (*MapStatics, error) {
	m := &MapStatics{number: n, geometry: geometry, blocks: uo.Blocks{}, tiles: tiles}
	if err := uo.ProcessFiles(idxPath, mulPath, staticsLoader{m}, opts...); err != nil {
		return nil, fmt.Errorf("load statics %d: %w", n, err)
	}
	return m, nil
}

type staticsLoader struct{ m *MapStatics }

func (l staticsLoader) RecordData(record, _ uint32, data []byte) error {
	return l.m.blocks.ReplaceBlock(record, data)
}

func (m *MapStatics) Number() int           { return m.number }
func (m *MapStatics) Geometry() MapGeometry { return m.geometry }

// BlockCount returns the number of blocks holding statics.
func (m *MapStatics) BlockCount() int { return len(m.blocks) }

// Block returns static block n. An absent block is reported with
// uo.ErrNotFound.
func (m *MapStatics) Block(n uint32) (*StaticBlock, error) {
	data, ok := m.blocks.Block(n)
	if !ok {
		return nil, fmt.Errorf("static block %d: %w", n, uo.ErrNotFound)
	}
	return ParseStaticBlock(data)
}

// Statics returns the tiles at cell x,y in file order, or nil when the cell
// has none.
func (m *MapStatics) Statics(x, y int) ([]StaticTile, error) {
	if !m.geometry.Contains(x, y) {
		return nil, fmt.Errorf("cell %d,%d outside map %d", x, y, m.number)
	}
	data, ok := m.blocks.Block(m.geometry.BlockNumber(x, y))
	if !ok {
		return nil, nil
	}
	block, err := ParseStaticBlock(data)
	if err != nil {
		return nil, err
	}
	return block[x%BlockEdge][y%BlockEdge], nil
}

// Info returns the tile data of each static at cell x,y.
func (m *MapStatics) Info(x, y int) ([]ArtInfo, error) {
	if m.tiles == nil {
		return nil, ErrNoTileData
	}
	statics, err := m.Statics(x, y)
	if err != nil {
		return nil, err
	}
	infos := make([]ArtInfo, 0, len(statics))
	for _, s := range statics {
		info, err := m.tiles.Art(int(s.ID))
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ApplyDiff overlays the statics diff files from dir and returns the number
// of list entries applied. A removed entry leaves its block without statics.
func (m *MapStatics) ApplyDiff(dir string, opts ...uo.Option) (int, error) {
	_, _, difList, difLookup, difData := MapStaticsFileNames(m.number)
	n, err := uo.ApplyDiff(filepath.Join(dir, difList), filepath.Join(dir, difLookup), filepath.Join(dir, difData), m.blocks, opts...)
	if err != nil {
		return n, fmt.Errorf("apply statics %d diff: %w", m.number, err)
	}
	return n, nil
}
