// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import (
	"encoding/binary"
	"io"
)

// Container format constants
const (
	// Signature "MYP\x00" in little-endian
	uopSignature = 0x0050594D

	// Highest archive version this package reads
	uopMaxVersion = 5

	// Version written by Writer
	uopWriteVersion = 5

	// Sizes on disk
	headerSize       = 28 // signature, version, reserved, table offset, table size, entry count
	headerIDSize     = 8  // signature and version
	tableHeaderSize  = 12 // entry count, next table offset
	tableEntrySize   = 34
	indexRecordSize  = 12
	defaultTableSize = 100

	// Index record offsets that mean "no data here"
	offsetUnused  = 0xFFFFFFFE
	offsetInvalid = 0xFFFFFFFF

	// Entry compression schemes
	compressionStored  = 0
	compressionDeflate = 1
)

// NoIndex is passed as the logical index for entries accepted without a
// matching hash.
const NoIndex = -1

// ArchiveHeader is the fixed header at the start of a hashed archive.
type ArchiveHeader struct {
	Signature   uint32
	Version     uint32
	Reserved    uint32 // timestamp in client archives
	TableOffset uint64 // first table block, 0 when the archive is empty
	TableSize   uint32 // entries per table block
	EntryCount  uint32 // total entries across all table blocks
}

// tableHeader precedes each block of table entries.
type tableHeader struct {
	EntryCount uint32
	NextTable  uint64
}

// TableEntry describes one payload in a hashed archive.
type TableEntry struct {
	Offset             uint64 // start of the entry's data header
	HeaderLength       uint32 // bytes between Offset and the payload
	CompressedLength   uint32
	DecompressedLength uint32
	Identifier         uint64 // HashLittle2 of the entry's name
	DataBlockHash      uint32
	Compression        uint16
}

// IndexRecord is one 12-byte record of a classic index file.
type IndexRecord struct {
	Offset uint32
	Length uint32
	Extra  uint32
}

// Valid reports whether the record points at data.
func (r IndexRecord) Valid() bool {
	return r.Offset < offsetUnused && r.Length > 0
}

// storedLength returns the number of bytes the entry occupies on disk.
// Only stored entries are sized by their decompressed length.
func (e *TableEntry) storedLength() uint32 {
	if e.Compression == compressionStored {
		return e.DecompressedLength
	}
	return e.CompressedLength
}

// skipped reports whether the entry is a placeholder slot.
func (e *TableEntry) skipped() bool {
	return e.Identifier == 0 || e.CompressedLength == 0
}

// readArchiveHeader reads the archive header from a reader
func readArchiveHeader(r io.Reader) (*ArchiveHeader, error) {
	h := &ArchiveHeader{}
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	return h, nil
}

// writeArchiveHeader writes the archive header to a writer
func writeArchiveHeader(w io.Writer, h *ArchiveHeader) error {
	return binary.Write(w, binary.LittleEndian, h)
}

// readTableHeader reads the header of one table block
func readTableHeader(r io.Reader) (tableHeader, error) {
	var th tableHeader
	err := binary.Read(r, binary.LittleEndian, &th)
	return th, err
}

// readTableEntry reads one table entry
func readTableEntry(r io.Reader) (TableEntry, error) {
	var e TableEntry
	err := binary.Read(r, binary.LittleEndian, &e)
	return e, err
}

// writeTableBlock writes a table header followed by its entries
func writeTableBlock(w io.Writer, next uint64, entries []TableEntry) error {
	th := tableHeader{EntryCount: uint32(len(entries)), NextTable: next}
	if err := binary.Write(w, binary.LittleEndian, &th); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, entries)
}

// decodeIndexRecord decodes a 12-byte index record
func decodeIndexRecord(p []byte) IndexRecord {
	return IndexRecord{
		Offset: binary.LittleEndian.Uint32(p[0:4]),
		Length: binary.LittleEndian.Uint32(p[4:8]),
		Extra:  binary.LittleEndian.Uint32(p[8:12]),
	}
}

// encodeIndexRecord encodes an index record into p
func encodeIndexRecord(p []byte, r IndexRecord) {
	binary.LittleEndian.PutUint32(p[0:4], r.Offset)
	binary.LittleEndian.PutUint32(p[4:8], r.Length)
	binary.LittleEndian.PutUint32(p[8:12], r.Extra)
}
