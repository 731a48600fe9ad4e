// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"
	"os"
	"path/filepath"

	uo "github.com/suprsokr/go-uo"
	"github.com/suprsokr/go-uo/buffer"
)

const RadarColorFile = "radarcol.mul"

// RadarColors maps tiles to 16-bit minimap colours. Terrain ids come first,
// art ids follow at TerrainTileCount.
type RadarColors []uint16

// LoadRadarColors reads radarcol.mul from a client directory or a file path.
// A trailing odd byte is ignored.
func LoadRadarColors(path string) (RadarColors, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, RadarColorFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &uo.FileOpenError{Path: path, Err: err}
	}

	b := buffer.From(data)
	colors := make(RadarColors, len(data)/2)
	for i := range colors {
		c, err := buffer.Read[uint16](b)
		if err != nil {
			return nil, fmt.Errorf("read radar colour %d: %w", i, err)
		}
		colors[i] = c
	}
	return colors, nil
}

// Color returns entry i, or 0 when it is out of range.
func (r RadarColors) Color(i int) uint16 {
	if i < 0 || i >= len(r) {
		return 0
	}
	return r[i]
}

func (r RadarColors) TerrainColor(id int) uint16 { return r.Color(id) }
func (r RadarColors) ArtColor(id int) uint16     { return r.Color(id + TerrainTileCount) }
