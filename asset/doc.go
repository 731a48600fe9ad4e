// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package asset decodes individual client asset files on top of package uo.

Each decoder accepts a client directory and prefers the hashed archive when
one is present, falling back to the index and data pair:

	art, err := asset.OpenArt("/games/uo")
	data, ok := art.Art(0x0EED)

Payloads are returned raw. Pixel formats are left to the caller.

Map decoders take the facet size and an optional [TileData], which is loaded
once and shared:

	tiles, err := asset.LoadTileData("/games/uo")
	geom, _ := asset.DefaultMapSize(0)
	terrain, err := asset.OpenMapTerrain("/games/uo", 0, geom, tiles)
	_, err = terrain.ApplyDiff("/games/uo")
	info, err := terrain.Info(1323, 1624)
*/
package asset
