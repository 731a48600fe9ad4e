// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package buffer provides a growable little-endian byte buffer with a cursor.
//
// Every access is bounds checked. Reads never grow the buffer and fail with a
// [*RangeError] when they would run past the end. Writes grow the buffer and
// zero-fill any gap unless the caller asks for a fixed size.
package buffer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

// ErrOutOfRange is returned when an access exceeds the buffer length.
var ErrOutOfRange = errors.New("buffer: access out of range")

// Integer is the set of fixed-width integers a Buffer can read and write.
type Integer interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

// RangeError describes an access that did not fit the buffer.
type RangeError struct {
	Offset int // first byte of the access
	Length int // requested length
	Size   int // buffer length at the time of the access
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("buffer: access of %d bytes at offset %d exceeds size %d", e.Length, e.Offset, e.Size)
}

// Is reports whether target is ErrOutOfRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Buffer is a byte slice with a read/write cursor.
type Buffer struct {
	data []byte
	pos  int
}

// New returns a zero-filled buffer of the given size.
func New(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	return &Buffer{data: make([]byte, size)}
}

// From wraps data without copying. The caller must not modify data afterwards.
func From(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the underlying bytes.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the buffer length.
func (b *Buffer) Len() int { return len(b.data) }

// Pos returns the cursor position.
func (b *Buffer) Pos() int { return b.pos }

// Remaining returns the number of bytes between the cursor and the end.
func (b *Buffer) Remaining() int {
	if b.pos >= len(b.data) {
		return 0
	}
	return len(b.data) - b.pos
}

// Resize sets the buffer length, zero-filling any growth. The cursor is
// clamped to the new length.
func (b *Buffer) Resize(size int) {
	if size < 0 {
		size = 0
	}
	if size <= len(b.data) {
		b.data = b.data[:size]
	} else if size <= cap(b.data) {
		old := len(b.data)
		b.data = b.data[:size]
		clear(b.data[old:])
	} else {
		grown := make([]byte, size)
		copy(grown, b.data)
		b.data = grown
	}
	if b.pos > size {
		b.pos = size
	}
}

// Seek moves the cursor to an absolute offset. The end of the buffer is a
// valid position.
func (b *Buffer) Seek(offset int) error {
	if offset < 0 || offset > len(b.data) {
		return &RangeError{Offset: offset, Length: 0, Size: len(b.data)}
	}
	b.pos = offset
	return nil
}

// SeekRelative moves the cursor by delta bytes.
func (b *Buffer) SeekRelative(delta int) error {
	return b.Seek(b.pos + delta)
}

// check validates a read of n bytes at offset.
func (b *Buffer) check(offset, n int) error {
	if offset < 0 || n < 0 || offset > len(b.data)-n {
		return &RangeError{Offset: offset, Length: n, Size: len(b.data)}
	}
	return nil
}

// reserve makes room for a write of n bytes at offset.
func (b *Buffer) reserve(offset, n int, grow bool) error {
	if offset < 0 || n < 0 {
		return &RangeError{Offset: offset, Length: n, Size: len(b.data)}
	}
	if offset+n <= len(b.data) {
		return nil
	}
	if !grow {
		return &RangeError{Offset: offset, Length: n, Size: len(b.data)}
	}
	b.Resize(offset + n)
	return nil
}

func sizeOf[T Integer]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func decode[T Integer](p []byte) T {
	switch len(p) {
	case 1:
		return T(p[0])
	case 2:
		return T(binary.LittleEndian.Uint16(p))
	case 4:
		return T(binary.LittleEndian.Uint32(p))
	default:
		return T(binary.LittleEndian.Uint64(p))
	}
}

func encode[T Integer](p []byte, v T) {
	u := uint64(v)
	switch len(p) {
	case 1:
		p[0] = byte(u)
	case 2:
		binary.LittleEndian.PutUint16(p, uint16(u))
	case 4:
		binary.LittleEndian.PutUint32(p, uint32(u))
	default:
		binary.LittleEndian.PutUint64(p, u)
	}
}

// Read decodes a T at the cursor and advances it.
func Read[T Integer](b *Buffer) (T, error) {
	return ReadAt[T](b, b.pos)
}

// ReadAt decodes a T at offset and leaves the cursor just past it.
func ReadAt[T Integer](b *Buffer, offset int) (T, error) {
	v, err := Copy[T](b, offset)
	if err != nil {
		return 0, err
	}
	b.pos = offset + sizeOf[T]()
	return v, nil
}

// Copy decodes a T at offset without moving the cursor.
func Copy[T Integer](b *Buffer, offset int) (T, error) {
	n := sizeOf[T]()
	if err := b.check(offset, n); err != nil {
		return 0, err
	}
	return decode[T](b.data[offset : offset+n]), nil
}

// Write encodes v at the cursor, growing the buffer if needed.
func Write[T Integer](b *Buffer, v T) error {
	return WriteAt(b, b.pos, v, true)
}

// WriteAt encodes v at offset and leaves the cursor just past it. When grow
// is false a write past the end fails instead of extending the buffer.
func WriteAt[T Integer](b *Buffer, offset int, v T, grow bool) error {
	n := sizeOf[T]()
	if err := b.reserve(offset, n, grow); err != nil {
		return err
	}
	encode(b.data[offset:offset+n], v)
	b.pos = offset + n
	return nil
}

// ReadString reads a string at the cursor. With n < 0 it reads up to the
// next NUL (consuming it) or the end of the buffer; otherwise it consumes
// exactly n bytes and truncates the result at the first NUL.
func (b *Buffer) ReadString(n int) (string, error) {
	return b.ReadStringAt(b.pos, n)
}

// ReadStringAt is ReadString at an absolute offset.
func (b *Buffer) ReadStringAt(offset, n int) (string, error) {
	s, consumed, err := b.stringAt(offset, n)
	if err != nil {
		return "", err
	}
	b.pos = offset + consumed
	return s, nil
}

// CopyString is ReadStringAt without moving the cursor.
func (b *Buffer) CopyString(offset, n int) (string, error) {
	s, _, err := b.stringAt(offset, n)
	return s, err
}

func (b *Buffer) stringAt(offset, n int) (string, int, error) {
	if n < 0 {
		if offset < 0 || offset >= len(b.data) {
			return "", 0, &RangeError{Offset: offset, Length: 1, Size: len(b.data)}
		}
		rest := b.data[offset:]
		if i := bytes.IndexByte(rest, 0); i >= 0 {
			return string(rest[:i]), i + 1, nil
		}
		return string(rest), len(rest), nil
	}
	if err := b.check(offset, n); err != nil {
		return "", 0, err
	}
	raw := b.data[offset : offset+n]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw), n, nil
}

// WriteString writes s at the cursor. With n < 0 it writes s and a
// terminating NUL; otherwise it writes exactly n bytes, truncating s or
// padding with zeros.
func (b *Buffer) WriteString(s string, n int) error {
	return b.WriteStringAt(b.pos, s, n, true)
}

// WriteStringAt is WriteString at an absolute offset.
func (b *Buffer) WriteStringAt(offset int, s string, n int, grow bool) error {
	size := n
	if n < 0 {
		size = len(s) + 1
	}
	if err := b.reserve(offset, size, grow); err != nil {
		return err
	}
	dst := b.data[offset : offset+size]
	copied := copy(dst, s)
	clear(dst[copied:])
	b.pos = offset + size
	return nil
}

// ReadBlock returns a copy of the next n bytes and advances the cursor.
func (b *Buffer) ReadBlock(n int) ([]byte, error) {
	return b.ReadBlockAt(b.pos, n)
}

// ReadBlockAt returns a copy of n bytes at offset and leaves the cursor just
// past them.
func (b *Buffer) ReadBlockAt(offset, n int) ([]byte, error) {
	p, err := b.CopyBlock(offset, n)
	if err != nil {
		return nil, err
	}
	b.pos = offset + n
	return p, nil
}

// CopyBlock returns a copy of n bytes at offset without moving the cursor.
func (b *Buffer) CopyBlock(offset, n int) ([]byte, error) {
	if err := b.check(offset, n); err != nil {
		return nil, err
	}
	p := make([]byte, n)
	copy(p, b.data[offset:offset+n])
	return p, nil
}

// WriteBlock writes p at the cursor, growing the buffer if needed.
func (b *Buffer) WriteBlock(p []byte) error {
	return b.WriteBlockAt(b.pos, p, true)
}

// WriteBlockAt writes p at offset and leaves the cursor just past it.
func (b *Buffer) WriteBlockAt(offset int, p []byte, grow bool) error {
	if err := b.reserve(offset, len(p), grow); err != nil {
		return err
	}
	copy(b.data[offset:], p)
	b.pos = offset + len(p)
	return nil
}
