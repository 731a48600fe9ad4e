// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below answer errors.Is for these.
var (
	// ErrFileOpen is returned when a container stream cannot be opened.
	ErrFileOpen = errors.New("uo: unable to open file")

	// ErrStream is returned when a stream yields fewer bytes than a record requires.
	ErrStream = errors.New("uo: stream error")

	// ErrInvalidArchive is returned when an archive header has the wrong
	// signature or an unsupported version.
	ErrInvalidArchive = errors.New("uo: invalid archive")

	// ErrUnknownHash is returned when an entry identifier matches no hash table
	// and the unresolved-identifier policy rejects it.
	ErrUnknownHash = errors.New("uo: unknown hash")

	// ErrDecompression marks an entry whose payload could not be inflated or
	// uses an unsupported compression scheme.
	// Loads never return it; the entry is delivered with an empty payload.
	ErrDecompression = errors.New("uo: decompression failed")

	// ErrNotFound is returned by Archive lookups for absent entries.
	ErrNotFound = errors.New("uo: entry not found")

	// ErrChecksum is returned by Archive verification when stored bytes do
	// not match their data block hash.
	ErrChecksum = errors.New("uo: checksum mismatch")
)

// FileOpenError records the path that could not be opened.
type FileOpenError struct {
	Path string
	Err  error
}

func (e *FileOpenError) Error() string {
	return fmt.Sprintf("uo: unable to open %q: %v", e.Path, e.Err)
}

func (e *FileOpenError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFileOpen.
func (e *FileOpenError) Is(target error) bool { return target == ErrFileOpen }

// StreamError records a short read.
type StreamError struct {
	Path   string
	Offset int64
	Want   int
	Got    int
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("uo: short read in %q at offset %d: wanted %d bytes, got %d", e.Path, e.Offset, e.Want, e.Got)
}

// Is reports whether target is ErrStream.
func (e *StreamError) Is(target error) bool { return target == ErrStream }

// InvalidArchiveError records the header values that failed validation.
type InvalidArchiveError struct {
	Path      string
	Signature uint32
	Version   uint32
}

func (e *InvalidArchiveError) Error() string {
	return fmt.Sprintf("uo: invalid archive %q: signature 0x%08X, version %d", e.Path, e.Signature, e.Version)
}

// Is reports whether target is ErrInvalidArchive.
func (e *InvalidArchiveError) Is(target error) bool { return target == ErrInvalidArchive }

// UnknownHashError records an identifier that could not be mapped to an index.
type UnknownHashError struct {
	Path     string
	Hash     uint64
	Sequence int
}

func (e *UnknownHashError) Error() string {
	return fmt.Sprintf("uo: unknown hash 0x%016X (entry %d) in %q", e.Hash, e.Sequence, e.Path)
}

// Is reports whether target is ErrUnknownHash.
func (e *UnknownHashError) Is(target error) bool { return target == ErrUnknownHash }

// ChecksumError records a data block hash mismatch.
type ChecksumError struct {
	Path string
	Hash uint64
	Want uint32
	Got  uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("uo: entry 0x%016X in %q: data block hash 0x%08X, computed 0x%08X", e.Hash, e.Path, e.Want, e.Got)
}

// Is reports whether target is ErrChecksum.
func (e *ChecksumError) Is(target error) bool { return target == ErrChecksum }
