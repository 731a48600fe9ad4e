// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// Writer authors hashed archives. It exists so tests and tools can build
// archives the readers in this package consume.
type Writer struct {
	path      string
	tempPath  string
	tableSize int
	compress  bool
	pending   []pendingEntry
}

// pendingEntry is an entry waiting to be written on Close.
type pendingEntry struct {
	entry TableEntry
	data  []byte // bytes stored on disk after the entry header
}

// CreateWriter prepares a new archive at path. Nothing is written until Close.
func CreateWriter(path string, opts ...Option) (*Writer, error) {
	cfg := newConfig(opts)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	// Temp file in the same directory so the final rename is atomic
	tempFile, err := os.CreateTemp(dir, "uop_*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	tempFile.Close()

	return &Writer{
		path:      path,
		tempPath:  tempPath,
		tableSize: cfg.tableSize,
		compress:  cfg.compress,
	}, nil
}

// AddIndex adds data under the name template formatted with index.
func (w *Writer) AddIndex(template string, index int, data []byte) error {
	return w.AddHash(HashFor(template, index), data)
}

// AddHash adds data under identifier id.
func (w *Writer) AddHash(id uint64, data []byte) error {
	entry := TableEntry{
		Identifier:         id,
		DecompressedLength: uint32(len(data)),
		Compression:        compressionStored,
	}
	stored := data

	if w.compress {
		compressed, err := compressData(data)
		if err != nil {
			return fmt.Errorf("compress entry 0x%016X: %w", id, err)
		}
		stored = compressed
		entry.Compression = compressionDeflate
	}

	entry.CompressedLength = uint32(len(stored))
	entry.DataBlockHash = Adler32(stored)
	w.pending = append(w.pending, pendingEntry{entry: entry, data: stored})
	return nil
}

// AddRaw adds an entry exactly as given. Offset is assigned on Close;
// HeaderLength zero bytes are written before data. The lengths are not
// checked against data, which lets callers author placeholder or corrupt
// entries.
func (w *Writer) AddRaw(entry TableEntry, data []byte) {
	w.pending = append(w.pending, pendingEntry{entry: entry, data: data})
}

// Close writes the archive and moves it into place.
func (w *Writer) Close() error {
	if err := w.writeArchive(); err != nil {
		os.Remove(w.tempPath)
		return err
	}

	os.Remove(w.path)
	if err := os.Rename(w.tempPath, w.path); err != nil {
		os.Remove(w.tempPath)
		return fmt.Errorf("save archive: %w", err)
	}
	return nil
}

// writeArchive writes header, payloads and the table chain to the temp file.
func (w *Writer) writeArchive() error {
	file, err := os.Create(w.tempPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer file.Close()

	bw := bufio.NewWriter(file)
	pos := uint64(headerSize)

	// Reserve space for the header
	if _, err := bw.Write(make([]byte, headerSize)); err != nil {
		return fmt.Errorf("reserve header: %w", err)
	}

	entries := make([]TableEntry, len(w.pending))
	for i, pe := range w.pending {
		e := pe.entry
		e.Offset = pos

		if e.HeaderLength > 0 {
			if _, err := bw.Write(make([]byte, e.HeaderLength)); err != nil {
				return fmt.Errorf("write entry header: %w", err)
			}
		}
		if _, err := bw.Write(pe.data); err != nil {
			return fmt.Errorf("write entry data: %w", err)
		}

		pos += uint64(e.HeaderLength) + uint64(len(pe.data))
		entries[i] = e
	}

	// Tables follow the data, each linking to the next
	var tableOffset uint64
	if len(entries) > 0 {
		tableOffset = pos
	}
	for start := 0; start < len(entries); start += w.tableSize {
		end := min(start+w.tableSize, len(entries))
		blockSize := uint64(tableHeaderSize + (end-start)*tableEntrySize)

		var next uint64
		if end < len(entries) {
			next = pos + blockSize
		}
		if err := writeTableBlock(bw, next, entries[start:end]); err != nil {
			return fmt.Errorf("write table: %w", err)
		}
		pos += blockSize
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}

	header := &ArchiveHeader{
		Signature:   uopSignature,
		Version:     uopWriteVersion,
		TableOffset: tableOffset,
		TableSize:   uint32(w.tableSize),
		EntryCount:  uint32(len(entries)),
	}

	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("seek to header: %w", err)
	}
	if err := writeArchiveHeader(file, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}
