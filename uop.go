// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ReaderState is the progress of a UOPReader through a load.
type ReaderState int

const (
	StateUnopened ReaderState = iota
	StateHeaderValidated
	StateTableWalking
	StateEntryDecoding
	StateDone
)

func (s ReaderState) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateHeaderValidated:
		return "header-validated"
	case StateTableWalking:
		return "table-walking"
	case StateEntryDecoding:
		return "entry-decoding"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("ReaderState(%d)", int(s))
	}
}

// EntryHandler receives the entries of a hashed archive.
//
// sequence is the entry's position in table order, counting skipped slots.
// index is the logical index recovered from the hash tables, or NoIndex when
// the entry was accepted without one.
type EntryHandler interface {
	ProcessEntry(sequence, index int, data []byte) error
}

// HashFilter is implemented by handlers that intercept entries before hash
// resolution. Returning false drops the entry silently.
type HashFilter interface {
	ProcessHash(hash uint64, sequence int, data []byte) bool
}

// UnresolvedHandler is implemented by handlers that decide the fate of
// identifiers matching no hash table. Returning true delivers the entry with
// NoIndex; false fails the load with an UnknownHashError.
type UnresolvedHandler interface {
	NonIndexHash(hash uint64, sequence int, data []byte) bool
}

// UOPReader performs one sequential pass over a hashed archive.
type UOPReader struct {
	path      string
	maxIndex  int
	templates []string
	cfg       *config

	state   ReaderState
	header  *ArchiveHeader
	tables  hashTables
	entries []TableEntry
}

// NewUOPReader prepares a reader for the archive at path. Each template is
// hashed for indices 0..=maxIndex; identifiers resolve against the templates
// in order.
func NewUOPReader(path string, maxIndex int, templates []string, opts ...Option) *UOPReader {
	return &UOPReader{
		path:      path,
		maxIndex:  maxIndex,
		templates: templates,
		cfg:       newConfig(opts),
	}
}

// LoadUOP reads the archive at path and delivers its entries to h.
func LoadUOP(path string, maxIndex int, templates []string, h EntryHandler, opts ...Option) error {
	return NewUOPReader(path, maxIndex, templates, opts...).Load(h)
}

// State returns how far the last Load progressed.
func (r *UOPReader) State() ReaderState { return r.state }

// Header returns the validated archive header, or nil before validation.
func (r *UOPReader) Header() *ArchiveHeader { return r.header }

// Entries returns every table entry collected by the last Load, skipped
// slots included.
func (r *UOPReader) Entries() []TableEntry { return r.entries }

// Load walks the archive and delivers every accepted entry to h.
func (r *UOPReader) Load(h EntryHandler) error {
	r.state = StateUnopened
	r.header = nil
	r.entries = nil

	f, header, err := openArchiveFile(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	r.header = header
	r.state = StateHeaderValidated
	r.tables = buildHashTables(r.templates, r.maxIndex, r.cfg.logger)

	r.state = StateTableWalking
	entries, err := readTables(f, r.path, header.TableOffset, r.cfg.logger)
	if err != nil {
		return err
	}
	r.entries = entries

	if c, ok := h.(EntryCounter); ok {
		c.EntryCount(len(entries))
	}

	r.state = StateEntryDecoding
	delivered := 0
	for seq := range entries {
		ok, err := r.processEntry(f, seq, &entries[seq], h)
		if err != nil {
			return err
		}
		if ok {
			delivered++
		}
	}

	r.cfg.logger.Debug("archive processed",
		slog.String("path", r.path),
		slog.Int("entries", len(entries)),
		slog.Int("delivered", delivered))

	if c, ok := h.(ReadingCompleter); ok {
		if err := c.ReadingComplete(); err != nil {
			return fmt.Errorf("reading complete: %w", err)
		}
	}

	r.state = StateDone
	return nil
}

// processEntry decodes, filters, resolves and delivers one table entry.
func (r *UOPReader) processEntry(f io.ReaderAt, seq int, e *TableEntry, h EntryHandler) (bool, error) {
	if e.skipped() {
		return false, nil
	}

	stored, err := readStored(f, r.path, e)
	if err != nil {
		return false, err
	}
	data, err := decodePayload(e, stored)
	if err != nil {
		r.cfg.logger.Warn("entry payload could not be decompressed",
			slog.String("path", r.path),
			slog.Int("sequence", seq),
			slog.String("hash", fmt.Sprintf("0x%016X", e.Identifier)),
			slog.Any("error", err))
		data = []byte{}
	}

	if filter, ok := h.(HashFilter); ok && !filter.ProcessHash(e.Identifier, seq, data) {
		return false, nil
	}

	index, found := r.tables.resolve(e.Identifier)
	if !found && !r.acceptUnresolved(h, e.Identifier, seq, data) {
		return false, &UnknownHashError{Path: r.path, Hash: e.Identifier, Sequence: seq}
	}

	if err := h.ProcessEntry(seq, index, data); err != nil {
		return false, fmt.Errorf("entry %d: %w", seq, err)
	}
	return true, nil
}

func (r *UOPReader) acceptUnresolved(h EntryHandler, hash uint64, seq int, data []byte) bool {
	if u, ok := h.(UnresolvedHandler); ok {
		return u.NonIndexHash(hash, seq, data)
	}
	if r.cfg.policy == RejectUnresolved {
		return false
	}
	r.cfg.logger.Warn("unresolved archive identifier",
		slog.String("path", r.path),
		slog.Int("sequence", seq),
		slog.String("hash", fmt.Sprintf("0x%016X", hash)))
	return true
}

// openArchiveFile opens path and validates its header.
func openArchiveFile(path string) (*os.File, *ArchiveHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &FileOpenError{Path: path, Err: err}
	}

	// Signature and version are checked before the rest of the header is
	// required, so a short foreign file still reports as invalid.
	var raw [headerSize]byte
	n, err := io.ReadFull(f, raw[:headerIDSize])
	if err != nil {
		f.Close()
		return nil, nil, &StreamError{Path: path, Offset: 0, Want: headerSize, Got: n}
	}
	signature := binary.LittleEndian.Uint32(raw[0:4])
	version := binary.LittleEndian.Uint32(raw[4:8])
	if signature != uopSignature || version > uopMaxVersion {
		f.Close()
		return nil, nil, &InvalidArchiveError{Path: path, Signature: signature, Version: version}
	}

	n, err = io.ReadFull(f, raw[headerIDSize:])
	if err != nil {
		f.Close()
		return nil, nil, &StreamError{Path: path, Offset: 0, Want: headerSize, Got: headerIDSize + n}
	}

	header, err := readArchiveHeader(bytes.NewReader(raw[:]))
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	return f, header, nil
}

// readTables follows the table chain starting at offset and returns every
// entry in table order. The walk ends at a zero link or the end of the
// stream.
func readTables(f io.ReadSeeker, path string, offset uint64, logger *slog.Logger) ([]TableEntry, error) {
	var entries []TableEntry
	visited := make(map[uint64]bool)

	for offset != 0 {
		if visited[offset] {
			logger.Warn("table chain loops",
				slog.String("path", path),
				slog.Uint64("offset", offset))
			break
		}
		visited[offset] = true

		if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek to table: %w", err)
		}

		br := bufio.NewReader(f)
		th, err := readTableHeader(br)
		if err != nil {
			if isEOF(err) {
				break
			}
			return nil, fmt.Errorf("read table header: %w", err)
		}

		for i := uint32(0); i < th.EntryCount; i++ {
			e, err := readTableEntry(br)
			if err != nil {
				if isEOF(err) {
					logger.Warn("table block truncated",
						slog.String("path", path),
						slog.Uint64("offset", offset),
						slog.Int("want", int(th.EntryCount)),
						slog.Int("got", int(i)))
					return entries, nil
				}
				return nil, fmt.Errorf("read table entry: %w", err)
			}
			entries = append(entries, e)
		}

		offset = th.NextTable
	}
	return entries, nil
}

// readStored reads the bytes an entry occupies on disk.
func readStored(f io.ReaderAt, path string, e *TableEntry) ([]byte, error) {
	return readAt(f, path, int64(e.Offset)+int64(e.HeaderLength), int(e.storedLength()))
}

// decodePayload turns stored bytes into the entry's payload.
func decodePayload(e *TableEntry, stored []byte) ([]byte, error) {
	switch e.Compression {
	case compressionStored:
		return stored, nil
	case compressionDeflate:
		return decompressData(stored, e.DecompressedLength)
	default:
		return nil, fmt.Errorf("%w: unsupported compression scheme %d", ErrDecompression, e.Compression)
	}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
