// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import "hash/adler32"

// Adler32 computes the checksum stored in a table entry's data block hash.
func Adler32(data []byte) uint32 {
	return adler32.Checksum(data)
}
