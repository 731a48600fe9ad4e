// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uo "github.com/suprsokr/go-uo"
	"github.com/suprsokr/go-uo/buffer"
)

// buildTileData encodes a tile data table with every terrain entry and
// artCount art entries. Entry i carries texture or anim id i and the name
// "t{i}" or "a{i}".
func buildTileData(hs bool, artCount int) []byte {
	b := buffer.New(0)
	flags := func(v uint64) {
		if hs {
			buffer.Write(b, v)
		} else {
			buffer.Write(b, uint32(v))
		}
	}

	for i := 0; i < TerrainTileCount; i++ {
		if i%tileGroupSize == 0 {
			buffer.Write[uint32](b, 0)
		}
		flags(uint64(FlagWet))
		buffer.Write(b, uint16(i))
		b.WriteString(fmt.Sprintf("t%d", i), tileNameLength)
	}
	for i := 0; i < artCount; i++ {
		if i%tileGroupSize == 0 {
			buffer.Write[uint32](b, 0)
		}
		flags(uint64(FlagImpassable | FlagSurface))
		buffer.Write(b, uint8(i%256)) // weight
		buffer.Write(b, uint8(1))     // quality
		buffer.Write(b, uint16(0))    // misc
		buffer.Write(b, uint8(0))     // unknown2
		buffer.Write(b, uint8(2))     // quantity
		buffer.Write(b, uint16(i))    // anim
		buffer.Write(b, uint8(0))     // unknown3
		buffer.Write(b, uint8(3))     // hue
		buffer.Write(b, uint8(0))     // stacking offset
		buffer.Write(b, uint8(4))     // value
		buffer.Write(b, uint8(5))     // height
		b.WriteString(fmt.Sprintf("a%d", i), tileNameLength)
	}
	return b.Bytes()
}

func TestParseTileData(t *testing.T) {
	for _, hs := range []bool{false, true} {
		t.Run(fmt.Sprintf("hs=%v", hs), func(t *testing.T) {
			td, err := ParseTileData(buildTileData(hs, 40), hs)
			require.NoError(t, err)

			assert.Equal(t, hs, td.HS())
			assert.Equal(t, TerrainTileCount, td.TerrainCount())
			assert.Equal(t, 40, td.ArtCount())

			terrain, err := td.Terrain(0x3FFF)
			require.NoError(t, err)
			assert.Equal(t, TerrainInfo{Flags: FlagWet, Texture: 0x3FFF, Name: "t16383"}, terrain)

			art, err := td.Art(33)
			require.NoError(t, err)
			assert.Equal(t, "a33", art.Name)
			assert.Equal(t, uint16(33), art.AnimID)
			assert.Equal(t, uint8(5), art.Height)
			assert.True(t, art.Flags.Has(FlagImpassable))

			_, err = td.Art(40)
			assert.ErrorIs(t, err, ErrInvalidTileID)
			_, err = td.Terrain(-1)
			assert.ErrorIs(t, err, ErrInvalidTileID)
		})
	}
}

func TestParseTileDataShortTerrain(t *testing.T) {
	data := buildTileData(false, 0)
	_, err := ParseTileData(data[:len(data)-1], false)
	assert.ErrorIs(t, err, uo.ErrStream)
}

func TestParseTileDataIgnoresPartialArt(t *testing.T) {
	data := buildTileData(false, 2)
	td, err := ParseTileData(data[:len(data)-3], false)
	require.NoError(t, err)
	assert.Equal(t, 1, td.ArtCount())
}

func TestLoadTileDataSelectsLayoutBySize(t *testing.T) {
	dir := t.TempDir()

	// 2048 full groups of HS art make the file exactly the HS size.
	data := buildTileData(true, 0x10000)
	require.Len(t, data, tileDataHSSize)
	require.NoError(t, os.WriteFile(filepath.Join(dir, TileDataFile), data, 0644))

	td, err := LoadTileData(dir)
	require.NoError(t, err)
	assert.True(t, td.HS())
	assert.Equal(t, 0x10000, td.ArtCount())

	path := filepath.Join(dir, "classic.mul")
	require.NoError(t, os.WriteFile(path, buildTileData(false, 10), 0644))
	td, err = LoadTileData(path)
	require.NoError(t, err)
	assert.False(t, td.HS())
	assert.Equal(t, 10, td.ArtCount())

	_, err = LoadTileData(filepath.Join(dir, "missing.mul"))
	assert.ErrorIs(t, err, uo.ErrFileOpen)
}

func TestTileFlagString(t *testing.T) {
	assert.Equal(t, "", TileFlag(0).String())
	assert.Equal(t, "impassable:surface", (FlagSurface | FlagImpassable).String())
	assert.Equal(t, "wet:unknownBit40:multiMove", (FlagWet | 1<<40 | FlagMultiMove).String())
	assert.Equal(t, "unknownBit8", FlagUnknown8.String())
	assert.True(t, (FlagWall | FlagDoor).Has(FlagDoor))
	assert.False(t, FlagWall.Has(FlagWall|FlagDoor))
}

func TestTileRecordReadersReportShortData(t *testing.T) {
	for _, hs := range []bool{false, true} {
		td := &TileData{hs: hs}

		_, err := td.readTerrainInfo(buffer.From(make([]byte, td.flagSize()+3)))
		assert.ErrorIs(t, err, buffer.ErrOutOfRange)

		_, err = td.readArtInfo(buffer.From(make([]byte, td.flagSize()+13)))
		assert.ErrorIs(t, err, buffer.ErrOutOfRange, "name cut short")

		_, err = td.readArtInfo(buffer.From(make([]byte, td.flagSize()+5)))
		assert.ErrorIs(t, err, buffer.ErrOutOfRange, "quantity cut short")
	}
}
