// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Archive is a hashed archive opened for random access.
type Archive struct {
	file    *os.File
	path    string
	header  *ArchiveHeader
	entries []TableEntry
	tables  hashTables
	byHash  map[uint64]int // identifier -> position in entries
	cache   *lru.Cache[uint64, []byte]
	logger  *slog.Logger
}

// OpenArchive opens the archive at path, validates its header and reads its
// tables. Templates are hashed for indices 0..=maxIndex and consulted in
// order by the index lookups.
func OpenArchive(path string, maxIndex int, templates []string, opts ...Option) (*Archive, error) {
	cfg := newConfig(opts)

	file, header, err := openArchiveFile(path)
	if err != nil {
		return nil, err
	}

	entries, err := readTables(file, path, header.TableOffset, cfg.logger)
	if err != nil {
		file.Close()
		return nil, err
	}

	byHash := make(map[uint64]int, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.skipped() {
			continue
		}
		if _, dup := byHash[e.Identifier]; dup {
			cfg.logger.Warn("duplicate archive identifier",
				slog.String("path", path),
				slog.String("hash", fmt.Sprintf("0x%016X", e.Identifier)),
				slog.Int("sequence", i))
			continue
		}
		byHash[e.Identifier] = i
	}

	a := &Archive{
		file:    file,
		path:    path,
		header:  header,
		entries: entries,
		tables:  buildHashTables(templates, maxIndex, cfg.logger),
		byHash:  byHash,
		logger:  cfg.logger,
	}

	if cfg.cacheSize > 0 {
		cache, err := lru.New[uint64, []byte](cfg.cacheSize)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create cache: %w", err)
		}
		a.cache = cache
	}

	return a, nil
}

// Path returns the archive's file path.
func (a *Archive) Path() string { return a.path }

// Header returns the archive header.
func (a *Archive) Header() ArchiveHeader { return *a.header }

// Len returns the number of entries that carry data.
func (a *Archive) Len() int { return len(a.byHash) }

// Entries returns every table entry in table order, placeholder slots
// included.
func (a *Archive) Entries() []TableEntry { return a.entries }

// HasHash reports whether an entry with identifier id holds data.
func (a *Archive) HasHash(id uint64) bool {
	_, ok := a.byHash[id]
	return ok
}

// HasIndex reports whether any template's hash for index is in the archive.
func (a *Archive) HasIndex(index int) bool {
	_, ok := a.hashForIndex(index)
	return ok
}

// ReadIndex returns the payload of the logical index.
func (a *Archive) ReadIndex(index int) ([]byte, error) {
	id, ok := a.hashForIndex(index)
	if !ok {
		return nil, fmt.Errorf("index %d in %q: %w", index, a.path, ErrNotFound)
	}
	return a.ReadHash(id)
}

// ReadHash returns the payload of the entry with identifier id. The returned
// slice is owned by the caller.
func (a *Archive) ReadHash(id uint64) ([]byte, error) {
	if a.cache != nil {
		if data, ok := a.cache.Get(id); ok {
			return bytes.Clone(data), nil
		}
	}

	pos, ok := a.byHash[id]
	if !ok {
		return nil, fmt.Errorf("hash 0x%016X in %q: %w", id, a.path, ErrNotFound)
	}
	e := &a.entries[pos]

	stored, err := readStored(a.file, a.path, e)
	if err != nil {
		return nil, err
	}
	data, err := decodePayload(e, stored)
	if err != nil {
		return nil, fmt.Errorf("entry 0x%016X: %w", id, err)
	}

	if a.cache != nil {
		a.cache.Add(id, data)
		return bytes.Clone(data), nil
	}
	return data, nil
}

// Index returns the logical index an identifier resolves to.
func (a *Archive) Index(id uint64) (int, bool) {
	return a.tables.resolve(id)
}

// Close closes the archive file.
func (a *Archive) Close() error {
	if a.cache != nil {
		a.cache.Purge()
	}
	if a.file != nil {
		err := a.file.Close()
		a.file = nil
		return err
	}
	return nil
}

func (a *Archive) hashForIndex(index int) (uint64, bool) {
	for _, t := range a.tables {
		h, ok := t.Hash(index)
		if !ok {
			continue
		}
		if _, present := a.byHash[h]; present {
			return h, true
		}
	}
	return 0, false
}
