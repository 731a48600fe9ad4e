// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import (
	"log/slog"
	"math/bits"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// HashLittle2 computes the 64-bit archive name hash of s.
//
// This is Bob Jenkins' lookup3 hashlittle2 with both seeds zero, returning
// the secondary result in the high 32 bits and the primary in the low 32.
func HashLittle2(s string) uint64 {
	length := uint32(len(s))
	a := 0xDEADBEEF + length
	b, c := a, a

	k := 0
	for length > 12 {
		a += le32(s, k)
		b += le32(s, k+4)
		c += le32(s, k+8)

		a -= c
		a ^= bits.RotateLeft32(c, 4)
		c += b
		b -= a
		b ^= bits.RotateLeft32(a, 6)
		a += c
		c -= b
		c ^= bits.RotateLeft32(b, 8)
		b += a
		a -= c
		a ^= bits.RotateLeft32(c, 16)
		c += b
		b -= a
		b ^= bits.RotateLeft32(a, 19)
		a += c
		c -= b
		c ^= bits.RotateLeft32(b, 4)
		b += a

		length -= 12
		k += 12
	}

	if length == 0 {
		return uint64(b)<<32 | uint64(c)
	}

	// Tail bytes, highest first.
	for i := int(length) - 1; i >= 0; i-- {
		v := uint32(s[k+i]) << (8 * uint(i%4))
		switch {
		case i >= 8:
			c += v
		case i >= 4:
			b += v
		default:
			a += v
		}
	}

	c ^= b
	c -= bits.RotateLeft32(b, 14)
	a ^= c
	a -= bits.RotateLeft32(c, 11)
	b ^= a
	b -= bits.RotateLeft32(a, 25)
	c ^= b
	c -= bits.RotateLeft32(b, 16)
	a ^= c
	a -= bits.RotateLeft32(c, 4)
	b ^= a
	b -= bits.RotateLeft32(a, 14)
	c ^= b
	c -= bits.RotateLeft32(b, 24)

	return uint64(b)<<32 | uint64(c)
}

func le32(s string, k int) uint32 {
	return uint32(s[k]) | uint32(s[k+1])<<8 | uint32(s[k+2])<<16 | uint32(s[k+3])<<24
}

// FormatHashName substitutes index into the first "{N}" of template,
// zero-padding it to at least N digits. "{}" substitutes without padding.
// A template without a closed brace pair is returned unchanged.
func FormatHashName(template string, index int) string {
	open := strings.IndexByte(template, '{')
	if open < 0 {
		return template
	}
	end := strings.IndexByte(template[open+1:], '}')
	if end < 0 {
		return template
	}
	end += open + 1

	width, _ := strconv.Atoi(template[open+1 : end])
	num := strconv.Itoa(index)
	if pad := width - len(num); pad > 0 {
		num = strings.Repeat("0", pad) + num
	}
	return template[:open] + num + template[end+1:]
}

// HashFor returns the archive hash of template formatted with index.
func HashFor(template string, index int) uint64 {
	return HashLittle2(FormatHashName(template, index))
}

// HashTable maps archive identifiers back to logical indices for one naming
// template. Position i holds the hash of the template formatted with i.
type HashTable struct {
	template   string
	hashes     []uint64
	lookup     map[uint64]int
	collisions []Collision
}

// Collision records two indices whose names hash alike. Lookup resolves the
// hash to First; Index is reachable only through Hash.
type Collision struct {
	Hash  uint64
	First int
	Index int
}

// NewHashTable hashes template for every index in 0..=maxIndex. An empty
// template yields an empty table.
func NewHashTable(template string, maxIndex int) *HashTable {
	t := &HashTable{template: template}
	if template == "" || maxIndex < 0 {
		return t
	}
	t.hashes = make([]uint64, maxIndex+1)
	t.lookup = make(map[uint64]int, maxIndex+1)
	for i := range t.hashes {
		h := HashFor(template, i)
		t.hashes[i] = h
		if first, dup := t.lookup[h]; dup {
			t.collisions = append(t.collisions, Collision{Hash: h, First: first, Index: i})
			continue
		}
		t.lookup[h] = i
	}
	return t
}

// Collisions returns every index whose hash an earlier index already holds,
// in index order.
func (t *HashTable) Collisions() []Collision { return t.collisions }

// Template returns the naming template the table was built from.
func (t *HashTable) Template() string { return t.template }

// Len returns the number of indices in the table.
func (t *HashTable) Len() int { return len(t.hashes) }

// Hash returns the hash stored for index.
func (t *HashTable) Hash(index int) (uint64, bool) {
	if index < 0 || index >= len(t.hashes) {
		return 0, false
	}
	return t.hashes[index], true
}

// Lookup returns the first index whose hash equals h.
func (t *HashTable) Lookup(h uint64) (int, bool) {
	i, ok := t.lookup[h]
	return i, ok
}

// hashTables resolves identifiers against several tables in order.
type hashTables []*HashTable

// buildHashTables hashes each template on its own goroutine. The result
// keeps template order, which decides resolution precedence. Colliding
// names are logged once per template.
func buildHashTables(templates []string, maxIndex int, logger *slog.Logger) hashTables {
	tables := make(hashTables, len(templates))
	var g errgroup.Group
	for i, tmpl := range templates {
		i, tmpl := i, tmpl
		g.Go(func() error {
			tables[i] = NewHashTable(tmpl, maxIndex)
			return nil
		})
	}
	_ = g.Wait()

	for _, t := range tables {
		if c := t.Collisions(); len(c) > 0 {
			logger.Warn("hash table has colliding names",
				slog.String("template", t.template),
				slog.Int("collisions", len(c)),
				slog.Int("first", c[0].First),
				slog.Int("index", c[0].Index))
		}
	}
	return tables
}

func (ts hashTables) resolve(h uint64) (int, bool) {
	for _, t := range ts {
		if i, ok := t.Lookup(h); ok {
			return i, true
		}
	}
	return NoIndex, false
}
