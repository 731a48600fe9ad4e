// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"
	"path/filepath"

	uo "github.com/suprsokr/go-uo"
)

const (
	TextureIndexFile = "texidx.mul"
	TextureDataFile  = "texmaps.mul"
)

// Textures holds terrain texture payloads of 16-bit pixels.
type Textures struct {
	Records
}

// OpenTextures loads textures from a client directory.
func OpenTextures(dir string, opts ...uo.Option) (*Textures, error) {
	return OpenTextureFiles(filepath.Join(dir, TextureIndexFile), filepath.Join(dir, TextureDataFile), opts...)
}

// OpenTextureFiles loads textures from an index/data pair.
func OpenTextureFiles(idxPath, mulPath string, opts ...uo.Option) (*Textures, error) {
	t := &Textures{Records: Records{}}
	if err := uo.ProcessFiles(idxPath, mulPath, textureLoader{t}, opts...); err != nil {
		return nil, fmt.Errorf("load textures: %w", err)
	}
	return t, nil
}

// Size returns the edge length of texture id: 64, 128, or 0 when the id is
// absent or its payload is neither size.
func (t *Textures) Size(id int) int {
	data, ok := t.Get(id)
	if !ok {
		return 0
	}
	return TextureSize(len(data))
}

// TextureSize maps a texture payload length to its edge length.
func TextureSize(n int) int {
	switch n {
	case 0x2000:
		return 64
	case 0x8000:
		return 128
	default:
		return 0
	}
}

type textureLoader struct{ t *Textures }

func (l textureLoader) RecordData(record, _ uint32, data []byte) error {
	if len(data) > 0 {
		l.t.Records[int(record)] = data
	}
	return nil
}
