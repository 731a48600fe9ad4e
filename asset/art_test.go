// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uo "github.com/suprsokr/go-uo"
	"github.com/suprsokr/go-uo/buffer"
)

func TestOpenArtIndexSplitsTerrainAndArt(t *testing.T) {
	dir := t.TempDir()
	writeIndexPair(t, dir, ArtIndexFile, ArtDataFile, func(w *uo.IndexWriter) {
		w.Add(2, 0, patterned(44, 1))
		w.Add(TerrainTileCount, 0, patterned(30, 2))
		w.Add(TerrainTileCount+9, 0, patterned(31, 3))
	})

	art, err := OpenArt(dir)
	require.NoError(t, err)

	data, ok := art.Terrain(2)
	require.True(t, ok)
	assert.Equal(t, patterned(44, 1), data)

	data, ok = art.Art(0)
	require.True(t, ok)
	assert.Equal(t, patterned(30, 2), data)
	assert.True(t, art.HasArt(9))
	assert.False(t, art.HasTerrain(TerrainTileCount))
	assert.Equal(t, 3, art.MaxTerrain())
	assert.Equal(t, 10, art.MaxArt())
}

func TestOpenArtPrefersArchive(t *testing.T) {
	dir := t.TempDir()
	writeIndexPair(t, dir, ArtIndexFile, ArtDataFile, func(w *uo.IndexWriter) {
		w.Add(1, 0, []byte("from index"))
	})
	writeUOP(t, filepath.Join(dir, ArtUOPFile), func(w *uo.Writer) {
		require.NoError(t, w.AddIndex(ArtHashFormat, 5, []byte("terrain")))
		require.NoError(t, w.AddIndex(ArtHashFormat, TerrainTileCount+7, []byte("art")))
	})

	art, err := OpenArt(dir)
	require.NoError(t, err)

	assert.False(t, art.HasTerrain(1))
	data, ok := art.Terrain(5)
	require.True(t, ok)
	assert.Equal(t, []byte("terrain"), data)
	data, ok = art.Art(7)
	require.True(t, ok)
	assert.Equal(t, []byte("art"), data)
}

func TestOpenArtMissingFiles(t *testing.T) {
	_, err := OpenArt(t.TempDir())
	assert.ErrorIs(t, err, uo.ErrFileOpen)
}

func TestArtSize(t *testing.T) {
	b := buffer.New(0)
	buffer.Write[uint32](b, 0)
	buffer.Write[uint16](b, 44)
	buffer.Write[uint16](b, 88)

	w, h, err := ArtSize(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 44, w)
	assert.Equal(t, 88, h)

	_, _, err = ArtSize(b.Bytes()[:6])
	assert.Error(t, err)

	buffer.WriteAt[uint16](b, 4, 0, false)
	_, _, err = ArtSize(b.Bytes())
	assert.ErrorIs(t, err, ErrInvalidArtSize)

	buffer.WriteAt[uint16](b, 4, maxArtDimension, false)
	_, _, err = ArtSize(b.Bytes())
	assert.ErrorIs(t, err, ErrInvalidArtSize)
}
