// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"strings"

	uo "github.com/suprsokr/go-uo"
	"github.com/suprsokr/go-uo/buffer"
)

const (
	TileDataFile = "tiledata.mul"

	// tiledata.mul is exactly this long when it uses 64-bit flags.
	tileDataHSSize = 3188736

	tileGroupSize   = 32
	tileGroupHeader = 4
	tileNameLength  = 20
)

// TileFlag is the property bitmask of a terrain or art tile.
type TileFlag uint64

const (
	FlagBackground TileFlag = 1 << iota
	FlagWeapon
	FlagTransparent
	FlagTranslucent
	FlagWall
	FlagDamaging
	FlagImpassable
	FlagWet
	FlagUnknown8
	FlagSurface
	FlagBridge
	FlagStackable
	FlagWindow
	FlagNoShoot
	FlagArticleA
	FlagArticleAn
	FlagArticleThe
	FlagFoliage
	FlagPartialHue
	FlagNoHouse
	FlagMap
	FlagContainer
	FlagWearable
	FlagLightSource
	FlagAnimated
	FlagHoverOver
	FlagNoDiagonal
	FlagArmor
	FlagDoor
	FlagStairBack
	FlagStairRight
	FlagAlphaBlend
	FlagUseNewArt
	FlagArtUsed
	FlagUnknown34
	FlagNoShadow
	FlagPixelBleed
	FlagAnimatedOnce
)

// FlagMultiMove marks tiles that move with a boat or house.
const FlagMultiMove TileFlag = 1 << 44

var flagNames = map[TileFlag]string{
	FlagBackground:   "background",
	FlagWeapon:       "weapon",
	FlagTransparent:  "transparent",
	FlagTranslucent:  "translucent",
	FlagWall:         "wall",
	FlagDamaging:     "damaging",
	FlagImpassable:   "impassable",
	FlagWet:          "wet",
	FlagSurface:      "surface",
	FlagBridge:       "bridge",
	FlagStackable:    "stackable",
	FlagWindow:       "window",
	FlagNoShoot:      "noShoot",
	FlagArticleA:     "articleA",
	FlagArticleAn:    "articleAn",
	FlagArticleThe:   "articleThe",
	FlagFoliage:      "foliage",
	FlagPartialHue:   "partialHue",
	FlagNoHouse:      "noHouse",
	FlagMap:          "map",
	FlagContainer:    "container",
	FlagWearable:     "wearable",
	FlagLightSource:  "lightSource",
	FlagAnimated:     "animated",
	FlagHoverOver:    "hoverOver",
	FlagNoDiagonal:   "noDiagonal",
	FlagArmor:        "armor",
	FlagDoor:         "door",
	FlagStairBack:    "stairBack",
	FlagStairRight:   "stairRight",
	FlagAlphaBlend:   "alphaBlend",
	FlagUseNewArt:    "useNewArt",
	FlagArtUsed:      "artUsed",
	FlagNoShadow:     "noShadow",
	FlagPixelBleed:   "pixelBleed",
	FlagAnimatedOnce: "animatedOnce",
	FlagMultiMove:    "multiMove",
}

// Has reports whether every bit of flag is set.
func (f TileFlag) Has(flag TileFlag) bool { return f&flag == flag }

// String lists the set flags in bit order, separated by colons.
func (f TileFlag) String() string {
	var names []string
	for rest := uint64(f); rest != 0; rest &= rest - 1 {
		bit := TileFlag(1) << bits.TrailingZeros64(rest)
		name, ok := flagNames[bit]
		if !ok {
			name = fmt.Sprintf("unknownBit%d", bits.TrailingZeros64(rest))
		}
		names = append(names, name)
	}
	return strings.Join(names, ":")
}

// TerrainInfo describes one terrain tile.
type TerrainInfo struct {
	Flags   TileFlag
	Texture uint16
	Name    string
}

// ArtInfo describes one art tile.
type ArtInfo struct {
	Flags          TileFlag
	Weight         uint8
	Quality        uint8
	MiscData       uint16
	Unknown2       uint8
	Quantity       uint8
	AnimID         uint16
	Unknown3       uint8
	Hue            uint8
	StackingOffset uint8
	Value          uint8
	Height         uint8
	Name           string
}

// TileData is the tile property table shared by the map decoders. Load it
// once and pass it to whatever needs it.
type TileData struct {
	terrain []TerrainInfo
	art     []ArtInfo
	hs      bool
}

// LoadTileData reads tiledata.mul from a client directory or a file path.
// The 64-bit flag layout is chosen by file size.
func LoadTileData(path string) (*TileData, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, TileDataFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &uo.FileOpenError{Path: path, Err: err}
	}

	td, err := parseTileData(path, data, len(data) == tileDataHSSize)
	if err != nil {
		return nil, err
	}
	return td, nil
}

// ParseTileData decodes tile data already in memory. hs selects 64-bit flags.
func ParseTileData(data []byte, hs bool) (*TileData, error) {
	return parseTileData("", data, hs)
}

func parseTileData(path string, data []byte, hs bool) (*TileData, error) {
	td := &TileData{hs: hs}
	b := buffer.From(data)

	terrainSize := td.flagSize() + 2 + tileNameLength
	td.terrain = make([]TerrainInfo, 0, TerrainTileCount)
	for i := 0; i < TerrainTileCount; i++ {
		need := terrainSize
		if i%tileGroupSize == 0 {
			need += tileGroupHeader
		}
		if b.Remaining() < need {
			return nil, &uo.StreamError{Path: path, Offset: int64(b.Pos()), Want: need, Got: b.Remaining()}
		}
		if i%tileGroupSize == 0 {
			if err := b.SeekRelative(tileGroupHeader); err != nil {
				return nil, err
			}
		}

		info, err := td.readTerrainInfo(b)
		if err != nil {
			return nil, fmt.Errorf("read terrain %d: %w", i, err)
		}
		td.terrain = append(td.terrain, info)
	}

	artSize := td.flagSize() + 13 + tileNameLength
	for i := 0; ; i++ {
		need := artSize
		if i%tileGroupSize == 0 {
			need += tileGroupHeader
		}
		if b.Remaining() < need {
			break
		}
		if i%tileGroupSize == 0 {
			if err := b.SeekRelative(tileGroupHeader); err != nil {
				return nil, err
			}
		}

		info, err := td.readArtInfo(b)
		if err != nil {
			return nil, fmt.Errorf("read art %d: %w", i, err)
		}
		td.art = append(td.art, info)
	}
	return td, nil
}

func (t *TileData) readTerrainInfo(b *buffer.Buffer) (TerrainInfo, error) {
	var info TerrainInfo
	var err error
	if info.Flags, err = t.readFlags(b); err != nil {
		return info, err
	}
	if info.Texture, err = buffer.Read[uint16](b); err != nil {
		return info, err
	}
	info.Name, err = b.ReadString(tileNameLength)
	return info, err
}

func (t *TileData) readArtInfo(b *buffer.Buffer) (ArtInfo, error) {
	var info ArtInfo
	var err error
	if info.Flags, err = t.readFlags(b); err != nil {
		return info, err
	}
	for _, f := range []*uint8{&info.Weight, &info.Quality} {
		if *f, err = buffer.Read[uint8](b); err != nil {
			return info, err
		}
	}
	if info.MiscData, err = buffer.Read[uint16](b); err != nil {
		return info, err
	}
	for _, f := range []*uint8{&info.Unknown2, &info.Quantity} {
		if *f, err = buffer.Read[uint8](b); err != nil {
			return info, err
		}
	}
	if info.AnimID, err = buffer.Read[uint16](b); err != nil {
		return info, err
	}
	for _, f := range []*uint8{&info.Unknown3, &info.Hue, &info.StackingOffset, &info.Value, &info.Height} {
		if *f, err = buffer.Read[uint8](b); err != nil {
			return info, err
		}
	}
	info.Name, err = b.ReadString(tileNameLength)
	return info, err
}

func (t *TileData) flagSize() int {
	if t.hs {
		return 8
	}
	return 4
}

func (t *TileData) readFlags(b *buffer.Buffer) (TileFlag, error) {
	if t.hs {
		v, err := buffer.Read[uint64](b)
		return TileFlag(v), err
	}
	v, err := buffer.Read[uint32](b)
	return TileFlag(v), err
}

// HS reports whether the table uses 64-bit flags.
func (t *TileData) HS() bool { return t.hs }

// TerrainCount returns the number of terrain entries.
func (t *TileData) TerrainCount() int { return len(t.terrain) }

// ArtCount returns the number of art entries.
func (t *TileData) ArtCount() int { return len(t.art) }

// Terrain returns the properties of terrain tile id.
func (t *TileData) Terrain(id int) (TerrainInfo, error) {
	if id < 0 || id >= len(t.terrain) {
		return TerrainInfo{}, &TileIDError{Kind: "terrain", ID: id}
	}
	return t.terrain[id], nil
}

// Art returns the properties of art tile id.
func (t *TileData) Art(id int) (ArtInfo, error) {
	if id < 0 || id >= len(t.art) {
		return ArtInfo{}, &TileIDError{Kind: "art", ID: id}
	}
	return t.art[id], nil
}
