// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"

	uo "github.com/suprsokr/go-uo"
	"github.com/suprsokr/go-uo/buffer"
)

// Art file names and archive naming
const (
	ArtUOPFile    = "artLegacyMUL.uop"
	ArtIndexFile  = "artidx.mul"
	ArtDataFile   = "art.mul"
	ArtHashFormat = "build/artlegacymul/{8}.tga"
	ArtMaxIndex   = 0xA761 + TerrainTileCount

	maxArtDimension = 1024
)

// TerrainTileCount is the number of terrain tiles; art indices follow them.
const TerrainTileCount = 0x4000

// Art holds terrain and art tile payloads.
type Art struct {
	terrain Records
	art     Records
}

// OpenArt loads art from a client directory or an artLegacyMUL.uop file.
func OpenArt(path string, opts ...uo.Option) (*Art, error) {
	src, err := locate(path, ArtUOPFile, ArtIndexFile, ArtDataFile)
	if err != nil {
		return nil, err
	}
	if src.uop == "" {
		return OpenArtFiles(src.idx, src.mul, opts...)
	}

	a := newArt()
	if err := uo.LoadUOP(src.uop, ArtMaxIndex, []string{ArtHashFormat}, artLoader{a}, opts...); err != nil {
		return nil, fmt.Errorf("load art: %w", err)
	}
	return a, nil
}

// OpenArtFiles loads art from an index/data pair.
func OpenArtFiles(idxPath, mulPath string, opts ...uo.Option) (*Art, error) {
	a := newArt()
	if err := uo.ProcessFiles(idxPath, mulPath, artLoader{a}, opts...); err != nil {
		return nil, fmt.Errorf("load art: %w", err)
	}
	return a, nil
}

func newArt() *Art {
	return &Art{terrain: Records{}, art: Records{}}
}

// Terrain returns the payload of terrain tile id.
func (a *Art) Terrain(id int) ([]byte, bool) { return a.terrain.Get(id) }

// Art returns the payload of art tile id.
func (a *Art) Art(id int) ([]byte, bool) { return a.art.Get(id) }

func (a *Art) HasTerrain(id int) bool { return a.terrain.Has(id) }
func (a *Art) HasArt(id int) bool     { return a.art.Has(id) }

// MaxTerrain returns one past the highest terrain id loaded.
func (a *Art) MaxTerrain() int { return a.terrain.Max() }

// MaxArt returns one past the highest art id loaded.
func (a *Art) MaxArt() int { return a.art.Max() }

func (a *Art) store(index int, data []byte) {
	if index < TerrainTileCount {
		a.terrain[index] = data
		return
	}
	a.art[index-TerrainTileCount] = data
}

// artLoader feeds both container readers into an Art.
type artLoader struct{ a *Art }

func (l artLoader) RecordData(record, _ uint32, data []byte) error {
	l.a.store(int(record), data)
	return nil
}

func (l artLoader) ProcessEntry(_, index int, data []byte) error {
	if index == uo.NoIndex {
		return nil
	}
	l.a.store(index, data)
	return nil
}

// ArtSize returns the dimensions in an art payload's header: a uint32 the
// client ignores, then uint16 width and height.
func ArtSize(data []byte) (width, height int, err error) {
	b := buffer.From(data)
	w, err := buffer.ReadAt[uint16](b, 4)
	if err != nil {
		return 0, 0, fmt.Errorf("read art width: %w", err)
	}
	h, err := buffer.Read[uint16](b)
	if err != nil {
		return 0, 0, fmt.Errorf("read art height: %w", err)
	}
	if w == 0 || h == 0 || w >= maxArtDimension || h >= maxArtDimension {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidArtSize, w, h)
	}
	return int(w), int(h), nil
}
