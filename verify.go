// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import (
	"errors"
	"fmt"
)

// Verify checks the stored bytes of entry id against its data block hash.
// Entries with a zero hash carry no checksum and always pass.
func (a *Archive) Verify(id uint64) error {
	pos, ok := a.byHash[id]
	if !ok {
		return fmt.Errorf("hash 0x%016X in %q: %w", id, a.path, ErrNotFound)
	}
	return a.verifyEntry(&a.entries[pos])
}

// VerifyAll checks every entry that carries data and returns the mismatches
// joined.
func (a *Archive) VerifyAll() error {
	var errs []error
	for i := range a.entries {
		e := &a.entries[i]
		if e.skipped() {
			continue
		}
		if err := a.verifyEntry(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Archive) verifyEntry(e *TableEntry) error {
	if e.DataBlockHash == 0 {
		return nil
	}
	stored, err := readStored(a.file, a.path, e)
	if err != nil {
		return err
	}
	if sum := Adler32(stored); sum != e.DataBlockHash {
		return &ChecksumError{Path: a.path, Hash: e.Identifier, Want: e.DataBlockHash, Got: sum}
	}
	return nil
}
