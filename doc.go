// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package uo provides pure Go decoding of Ultima Online client asset containers.

The client ships its assets in two container formats. The classic format pairs
an index file of 12-byte records with a data file (artidx.mul and art.mul, for
example). The later format is a single hashed archive (.uop) whose entries are
keyed only by a 64-bit hash of their original name. This package reads both,
delivers each record to a handler, and applies the diff files that patch map
data after release.

# Index and data files

Each valid record is delivered with its position in the index file. Records
with a sentinel offset or zero length are skipped but still counted, so
positions keep their gaps:

	type tiles map[uint32][]byte

	func (t tiles) RecordData(record, extra uint32, data []byte) error {
		t[record] = data
		return nil
	}

	t := tiles{}
	err := uo.ProcessFiles("artidx.mul", "art.mul", t)

# Hashed archives

Entries are mapped back to logical indices by hashing every candidate name
produced from a template such as "build/artlegacymul/{8}.tga":

	err := uo.LoadUOP("artLegacyMUL.uop", 0xA761+0x4000,
		[]string{"build/artlegacymul/{8}.tga"}, handler)

A handler may also implement [HashFilter] to drop entries before resolution
and [UnresolvedHandler] to decide what happens to identifiers no template
produces. Without one, [WithUnresolvedPolicy] decides.

For random access, [OpenArchive] keeps the file open and caches decompressed
payloads:

	archive, err := uo.OpenArchive("gumpartLegacyMUL.uop", 0x7FFFF,
		[]string{"build/gumpartlegacymul/{8}.tga"})
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	data, err := archive.ReadIndex(1000)

# Diffs

[ApplyDiff] and [ApplyFixedDiff] replace or remove blocks in a [BlockStore].
Later entries win, so diff sets must be applied oldest first.

# Errors

Failures are typed: [FileOpenError], [StreamError], [InvalidArchiveError] and
[UnknownHashError] each match their sentinel with errors.Is. An entry that
fails to decompress does not fail a load; it is logged and delivered empty.

# Limitations

  - Only compression schemes 0 (stored) and 1 (zlib) are supported
  - Readers are single pass and not safe for concurrent use
  - Pixel formats are not decoded; see package asset for structured records
*/
package uo
