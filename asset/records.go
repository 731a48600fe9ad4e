// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"encoding/binary"
	"os"
	"path/filepath"

	uo "github.com/suprsokr/go-uo"
)

// Records holds raw payloads keyed by record number or logical index.
type Records map[int][]byte

// Get returns the payload for id.
func (r Records) Get(id int) ([]byte, bool) {
	data, ok := r[id]
	return data, ok
}

// Has reports whether id holds a payload.
func (r Records) Has(id int) bool {
	_, ok := r[id]
	return ok
}

// Max returns one past the highest id present, or 0 when empty.
func (r Records) Max() int {
	highest := -1
	for id := range r {
		highest = max(highest, id)
	}
	return highest + 1
}

// source is where a decoder reads its records from.
type source struct {
	uop string // set when a hashed archive should be read
	idx string
	mul string
}

// locate resolves path to a data source. A directory is searched for uopName
// first and falls back to the idx/mul pair; any other path names an archive.
func locate(path, uopName, idxName, mulName string) (source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return source{}, &uo.FileOpenError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return source{uop: path}, nil
	}

	if uopName != "" {
		candidate := filepath.Join(path, uopName)
		if _, err := os.Stat(candidate); err == nil {
			return source{uop: candidate}, nil
		}
	}
	return source{
		idx: filepath.Join(path, idxName),
		mul: filepath.Join(path, mulName),
	}, nil
}

// withSizePrefix prepends the width and height packed in an index record's
// extra field (width in the high 16 bits) as two little-endian uint32s.
func withSizePrefix(extra uint32, data []byte) []byte {
	out := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint32(out[0:4], extra>>16)
	binary.LittleEndian.PutUint32(out[4:8], extra&0xFFFF)
	copy(out[8:], data)
	return out
}

// sizePrefix reads the width and height written by withSizePrefix.
func sizePrefix(data []byte) (width, height int, ok bool) {
	if len(data) < 8 {
		return 0, 0, false
	}
	return int(binary.LittleEndian.Uint32(data[0:4])), int(binary.LittleEndian.Uint32(data[4:8])), true
}
