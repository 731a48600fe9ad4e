// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"
	"log/slog"

	uo "github.com/suprsokr/go-uo"
)

const (
	MultiUOPFile    = "MultiCollection.uop"
	MultiIndexFile  = "multi.idx"
	MultiDataFile   = "multi.mul"
	MultiHashFormat = "build/multicollection/{6}.bin"
	MultiMaxIndex   = 8500

	// MultiHousingHash identifies the housing side-channel entry in
	// MultiCollection.uop. It is not a multi.
	MultiHousingHash = 0x126D1E99DDEDEE0A
)

// Multis holds multi payloads keyed by multi id.
type Multis struct {
	Records

	// Unresolved lists archive identifiers that matched no multi id.
	Unresolved []uint64
}

// OpenMultis loads multis from a client directory or a MultiCollection.uop
// file.
func OpenMultis(path string, opts ...uo.Option) (*Multis, error) {
	src, err := locate(path, MultiUOPFile, MultiIndexFile, MultiDataFile)
	if err != nil {
		return nil, err
	}
	if src.uop == "" {
		return OpenMultiFiles(src.idx, src.mul, opts...)
	}

	m := &Multis{Records: Records{}}
	loader := &multiLoader{m: m, logger: uo.LoggerFor(opts...), path: src.uop}
	if err := uo.LoadUOP(src.uop, MultiMaxIndex, []string{MultiHashFormat}, loader, opts...); err != nil {
		return nil, fmt.Errorf("load multis: %w", err)
	}
	return m, nil
}

// OpenMultiFiles loads multis from an index/data pair.
func OpenMultiFiles(idxPath, mulPath string, opts ...uo.Option) (*Multis, error) {
	m := &Multis{Records: Records{}}
	if err := uo.ProcessFiles(idxPath, mulPath, &multiLoader{m: m}, opts...); err != nil {
		return nil, fmt.Errorf("load multis: %w", err)
	}
	return m, nil
}

type multiLoader struct {
	m      *Multis
	logger *slog.Logger
	path   string
}

func (l *multiLoader) RecordData(record, _ uint32, data []byte) error {
	l.m.Records[int(record)] = data
	return nil
}

func (l *multiLoader) ProcessHash(hash uint64, _ int, _ []byte) bool {
	return hash != MultiHousingHash
}

// NonIndexHash keeps loading past identifiers with no multi id.
func (l *multiLoader) NonIndexHash(hash uint64, sequence int, _ []byte) bool {
	l.m.Unresolved = append(l.m.Unresolved, hash)
	l.logger.Info("multi entry has no index",
		slog.String("path", l.path),
		slog.Int("sequence", sequence),
		slog.String("hash", fmt.Sprintf("0x%016X", hash)))
	return true
}

func (l *multiLoader) ProcessEntry(_, index int, data []byte) error {
	if index != uo.NoIndex {
		l.m.Records[index] = data
	}
	return nil
}
