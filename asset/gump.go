// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"

	uo "github.com/suprsokr/go-uo"
)

// Gump file names and archive naming. Client archives use both an eight and
// a seven digit naming scheme.
const (
	GumpUOPFile      = "gumpartLegacyMUL.uop"
	GumpIndexFile    = "gumpidx.mul"
	GumpDataFile     = "gumpart.mul"
	GumpHashFormat   = "build/gumpartlegacymul/{8}.tga"
	GumpHashFormatV7 = "build/gumpartlegacymul/{7}.tga"
	GumpMaxIndex     = 0x7FFFF
)

// Gumps holds gump payloads. Every payload starts with its width and height
// as two uint32s, whichever container it came from.
type Gumps struct {
	Records
}

// OpenGumps loads gumps from a client directory or a gumpartLegacyMUL.uop file.
func OpenGumps(path string, opts ...uo.Option) (*Gumps, error) {
	src, err := locate(path, GumpUOPFile, GumpIndexFile, GumpDataFile)
	if err != nil {
		return nil, err
	}
	if src.uop == "" {
		return OpenGumpFiles(src.idx, src.mul, opts...)
	}

	g := &Gumps{Records: Records{}}
	templates := []string{GumpHashFormat, GumpHashFormatV7}
	if err := uo.LoadUOP(src.uop, GumpMaxIndex, templates, gumpLoader{g}, opts...); err != nil {
		return nil, fmt.Errorf("load gumps: %w", err)
	}
	return g, nil
}

// OpenGumpFiles loads gumps from an index/data pair.
func OpenGumpFiles(idxPath, mulPath string, opts ...uo.Option) (*Gumps, error) {
	g := &Gumps{Records: Records{}}
	if err := uo.ProcessFiles(idxPath, mulPath, gumpLoader{g}, opts...); err != nil {
		return nil, fmt.Errorf("load gumps: %w", err)
	}
	return g, nil
}

// Size returns the dimensions of gump id.
func (g *Gumps) Size(id int) (width, height int, ok bool) {
	data, found := g.Get(id)
	if !found {
		return 0, 0, false
	}
	return sizePrefix(data)
}

type gumpLoader struct{ g *Gumps }

func (l gumpLoader) RecordData(record, extra uint32, data []byte) error {
	l.g.Records[int(record)] = withSizePrefix(extra, data)
	return nil
}

// ProcessEntry keeps archive payloads as they are; anything no larger than
// the size prefix is a placeholder.
func (l gumpLoader) ProcessEntry(_, index int, data []byte) error {
	if len(data) <= 8 || index == uo.NoIndex {
		return nil
	}
	l.g.Records[index] = data
	return nil
}
