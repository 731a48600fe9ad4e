// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"

	"github.com/suprsokr/go-uo/buffer"
)

const (
	// BlockEdge is the number of cells along each side of a map block.
	BlockEdge = 8

	// MapBlockSize is the on-disk size of a terrain block: a 4-byte header
	// and 64 cells of {tile uint16, z int8}.
	MapBlockSize = 4 + BlockEdge*BlockEdge*3

	staticRecordSize = 7
	mapBlockHeader   = 1234 // value the client writes; readers ignore it
)

// TerrainTile is one terrain cell.
type TerrainTile struct {
	ID uint16
	Z  int8
}

// MapBlock is an 8x8 block of terrain indexed [x][y].
type MapBlock [BlockEdge][BlockEdge]TerrainTile

// ParseMapBlock decodes a terrain block. Cells are stored row by row.
func ParseMapBlock(data []byte) (*MapBlock, error) {
	if len(data) != MapBlockSize {
		return nil, &BlockSizeError{Size: len(data)}
	}
	b := buffer.From(data)
	if err := b.Seek(4); err != nil {
		return nil, err
	}

	var block MapBlock
	for y := 0; y < BlockEdge; y++ {
		for x := 0; x < BlockEdge; x++ {
			id, err := buffer.Read[uint16](b)
			if err != nil {
				return nil, fmt.Errorf("read tile: %w", err)
			}
			z, err := buffer.Read[int8](b)
			if err != nil {
				return nil, fmt.Errorf("read altitude: %w", err)
			}
			block[x][y] = TerrainTile{ID: id, Z: z}
		}
	}
	return &block, nil
}

// Bytes encodes the block in its on-disk layout.
func (m *MapBlock) Bytes() []byte {
	b := buffer.New(0)
	buffer.Write[uint32](b, mapBlockHeader)
	for y := 0; y < BlockEdge; y++ {
		for x := 0; x < BlockEdge; x++ {
			buffer.Write(b, m[x][y].ID)
			buffer.Write(b, m[x][y].Z)
		}
	}
	return b.Bytes()
}

// StaticTile is one art tile placed on the map.
type StaticTile struct {
	ID  uint16
	Z   int8
	Hue uint16
}

// StaticBlock is the art in an 8x8 block, indexed [x][y]. A cell holds its
// tiles in file order.
type StaticBlock [BlockEdge][BlockEdge][]StaticTile

// ParseStaticBlock decodes a block of 7-byte static records
// {tile uint16, x uint8, y uint8, z int8, hue uint16}.
func ParseStaticBlock(data []byte) (*StaticBlock, error) {
	if len(data) == 0 || len(data)%staticRecordSize != 0 {
		return nil, &BlockSizeError{Size: len(data)}
	}

	var block StaticBlock
	b := buffer.From(data)
	for b.Remaining() > 0 {
		x, y, tile, err := readStatic(b)
		if err != nil {
			return nil, fmt.Errorf("read static at %d: %w", b.Pos(), err)
		}
		if x >= BlockEdge || y >= BlockEdge {
			return nil, fmt.Errorf("static at %d,%d outside block", x, y)
		}
		block[x][y] = append(block[x][y], tile)
	}
	return &block, nil
}

func readStatic(b *buffer.Buffer) (x, y uint8, tile StaticTile, err error) {
	if tile.ID, err = buffer.Read[uint16](b); err != nil {
		return
	}
	if x, err = buffer.Read[uint8](b); err != nil {
		return
	}
	if y, err = buffer.Read[uint8](b); err != nil {
		return
	}
	if tile.Z, err = buffer.Read[int8](b); err != nil {
		return
	}
	tile.Hue, err = buffer.Read[uint16](b)
	return
}

// Bytes encodes the block in its on-disk layout, row by row.
func (s *StaticBlock) Bytes() []byte {
	b := buffer.New(0)
	for y := 0; y < BlockEdge; y++ {
		for x := 0; x < BlockEdge; x++ {
			for _, t := range s[x][y] {
				buffer.Write(b, t.ID)
				buffer.Write(b, uint8(x))
				buffer.Write(b, uint8(y))
				buffer.Write(b, t.Z)
				buffer.Write(b, t.Hue)
			}
		}
	}
	return b.Bytes()
}
