// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/suprsokr/go-uo/buffer"
)

// BlockStore is a collection of blocks keyed by block number that a diff
// pass rewrites.
type BlockStore interface {
	// ReplaceBlock stores data as the whole content of block n.
	ReplaceBlock(n uint32, data []byte) error

	// RemoveBlock deletes block n. Removing an absent block does nothing.
	RemoveBlock(n uint32)
}

// Blocks is a BlockStore that keeps raw block bytes.
type Blocks map[uint32][]byte

func (b Blocks) ReplaceBlock(n uint32, data []byte) error {
	b[n] = data
	return nil
}

func (b Blocks) RemoveBlock(n uint32) { delete(b, n) }

// Block returns block n and whether it is present.
func (b Blocks) Block(n uint32) ([]byte, bool) {
	data, ok := b[n]
	return data, ok
}

// ApplyDiff applies a variable-size diff to store. listPath holds the block
// numbers, lookupPath one index record per list entry, and dataPath the
// payloads. Entries apply in file order, so a later entry for a block wins.
//
// A missing list file means there is nothing to apply and returns 0.
func ApplyDiff(listPath, lookupPath, dataPath string, store BlockStore, opts ...Option) (int, error) {
	cfg := newConfig(opts)

	blocks, err := readDiffList(listPath)
	if err != nil || blocks == nil {
		return 0, err
	}

	raw, err := os.ReadFile(lookupPath)
	if err != nil {
		return 0, &FileOpenError{Path: lookupPath, Err: err}
	}
	lookup := buffer.From(raw)

	data, err := os.Open(dataPath)
	if err != nil {
		return 0, &FileOpenError{Path: dataPath, Err: err}
	}
	defer data.Close()

	applied := 0
	for i, n := range blocks {
		off := i * indexRecordSize
		p, err := lookup.CopyBlock(off, indexRecordSize)
		if err != nil {
			return applied, &StreamError{Path: lookupPath, Offset: int64(off), Want: indexRecordSize, Got: max(lookup.Len()-off, 0)}
		}
		rec := decodeIndexRecord(p)

		if !rec.Valid() {
			store.RemoveBlock(n)
			applied++
			continue
		}

		payload, err := readAt(data, dataPath, int64(rec.Offset), int(rec.Length))
		if err != nil {
			return applied, err
		}
		if err := store.ReplaceBlock(n, payload); err != nil {
			return applied, fmt.Errorf("replace block %d: %w", n, err)
		}
		applied++
	}

	cfg.logger.Debug("diff applied",
		slog.String("list", listPath),
		slog.Int("entries", applied))
	return applied, nil
}

// ApplyFixedDiff applies a diff whose payloads are blockSize bytes each,
// stored in list order in dataPath. Every list entry replaces its block.
//
// A missing list file means there is nothing to apply and returns 0.
func ApplyFixedDiff(listPath, dataPath string, blockSize int, store BlockStore, opts ...Option) (int, error) {
	cfg := newConfig(opts)

	blocks, err := readDiffList(listPath)
	if err != nil || blocks == nil {
		return 0, err
	}

	data, err := os.Open(dataPath)
	if err != nil {
		return 0, &FileOpenError{Path: dataPath, Err: err}
	}
	defer data.Close()

	applied := 0
	for i, n := range blocks {
		payload, err := readAt(data, dataPath, int64(i)*int64(blockSize), blockSize)
		if err != nil {
			return applied, err
		}
		if err := store.ReplaceBlock(n, payload); err != nil {
			return applied, fmt.Errorf("replace block %d: %w", n, err)
		}
		applied++
	}

	cfg.logger.Debug("diff applied",
		slog.String("list", listPath),
		slog.Int("entries", applied))
	return applied, nil
}

// readDiffList returns the block numbers in a diff list file. A missing file
// yields nil and no error. Trailing bytes short of a full number are ignored.
func readDiffList(path string) ([]uint32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &FileOpenError{Path: path, Err: err}
	}

	b := buffer.From(raw)
	blocks := make([]uint32, 0, len(raw)/4)
	for b.Remaining() >= 4 {
		n, err := buffer.Read[uint32](b)
		if err != nil {
			return nil, fmt.Errorf("read diff list: %w", err)
		}
		blocks = append(blocks, n)
	}
	return blocks, nil
}

// readAt reads exactly n bytes at off or fails with a StreamError.
func readAt(r io.ReaderAt, path string, off int64, n int) ([]byte, error) {
	p := make([]byte, n)
	got, err := r.ReadAt(p, off)
	if got != n {
		return nil, &StreamError{Path: path, Offset: off, Want: n, Got: got}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %q at %d: %w", path, off, err)
	}
	return p, nil
}
