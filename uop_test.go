// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplate = "build/testlegacymul/{8}.bin"

type entryCall struct {
	sequence int
	index    int
	data     []byte
}

// entryRecorder collects the callbacks of a hashed archive pass.
type entryRecorder struct {
	count     int
	calls     []entryCall
	completed int
}

func (r *entryRecorder) EntryCount(n int) { r.count = n }

func (r *entryRecorder) ProcessEntry(sequence, index int, data []byte) error {
	r.calls = append(r.calls, entryCall{sequence: sequence, index: index, data: data})
	return nil
}

func (r *entryRecorder) ReadingComplete() error {
	r.completed++
	return nil
}

// filteringRecorder drops one identifier and decides unresolved ones.
type filteringRecorder struct {
	entryRecorder
	drop       uint64
	accept     bool
	unresolved []uint64
}

func (r *filteringRecorder) ProcessHash(hash uint64, _ int, _ []byte) bool {
	return hash != r.drop
}

func (r *filteringRecorder) NonIndexHash(hash uint64, _ int, _ []byte) bool {
	r.unresolved = append(r.unresolved, hash)
	return r.accept
}

func writeArchive(t *testing.T, path string, build func(w *Writer), opts ...Option) {
	t.Helper()
	w, err := CreateWriter(path, opts...)
	require.NoError(t, err)
	build(w)
	require.NoError(t, w.Close())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestLoadUOPRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.uop")
	writeArchive(t, path, func(w *Writer) {
		for i := 0; i < 10; i++ {
			require.NoError(t, w.AddIndex(testTemplate, i*2, patterned(50+i, byte(i))))
		}
	})

	rec := &entryRecorder{}
	reader := NewUOPReader(path, 20, []string{testTemplate})
	require.NoError(t, reader.Load(rec))

	assert.Equal(t, StateDone, reader.State())
	assert.Equal(t, 10, rec.count)
	assert.Equal(t, 1, rec.completed)
	require.Len(t, rec.calls, 10)
	for i, c := range rec.calls {
		assert.Equal(t, i, c.sequence)
		assert.Equal(t, i*2, c.index)
		assert.Equal(t, patterned(50+i, byte(i)), c.data)
	}

	h := reader.Header()
	require.NotNil(t, h)
	assert.Equal(t, uint32(uopSignature), h.Signature)
	assert.Equal(t, uint32(10), h.EntryCount)
	assert.Equal(t, uint32(defaultTableSize), h.TableSize)
}

func TestLoadUOPStored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stored.uop")
	writeArchive(t, path, func(w *Writer) {
		require.NoError(t, w.AddIndex(testTemplate, 3, []byte("stored payload")))
	}, WithCompression(false))

	rec := &entryRecorder{}
	reader := NewUOPReader(path, 5, []string{testTemplate})
	require.NoError(t, reader.Load(rec))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, []byte("stored payload"), rec.calls[0].data)
	assert.Equal(t, uint16(compressionStored), reader.Entries()[0].Compression)
}

func TestLoadUOPLinkedTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linked.uop")
	writeArchive(t, path, func(w *Writer) {
		for i := 0; i < 10; i++ {
			require.NoError(t, w.AddIndex(testTemplate, i, []byte{byte(i)}))
		}
	}, WithTableSize(3))

	rec := &entryRecorder{}
	reader := NewUOPReader(path, 9, []string{testTemplate})
	require.NoError(t, reader.Load(rec))

	assert.Equal(t, uint32(3), reader.Header().TableSize)
	assert.Len(t, reader.Entries(), 10)
	require.Len(t, rec.calls, 10)
	for i, c := range rec.calls {
		assert.Equal(t, i, c.index)
		assert.Equal(t, []byte{byte(i)}, c.data)
	}
}

func TestLoadUOPSkippedEntriesKeepSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skip.uop")
	writeArchive(t, path, func(w *Writer) {
		require.NoError(t, w.AddIndex(testTemplate, 0, []byte("first")))
		w.AddRaw(TableEntry{}, nil)
		w.AddRaw(TableEntry{Identifier: HashFor(testTemplate, 5), CompressedLength: 0, DecompressedLength: 4}, nil)
		require.NoError(t, w.AddIndex(testTemplate, 1, []byte("second")))
	})

	rec := &entryRecorder{}
	require.NoError(t, LoadUOP(path, 10, []string{testTemplate}, rec))
	assert.Equal(t, 4, rec.count)
	require.Len(t, rec.calls, 2)
	assert.Equal(t, entryCall{sequence: 0, index: 0, data: []byte("first")}, rec.calls[0])
	assert.Equal(t, entryCall{sequence: 3, index: 1, data: []byte("second")}, rec.calls[1])
}

func TestLoadUOPBadSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.uop")
	writeArchive(t, path, func(w *Writer) {
		require.NoError(t, w.AddIndex(testTemplate, 0, []byte("data")))
	})

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	copy(raw, []byte{'X', 'Y', 'Z', 0})
	require.NoError(t, os.WriteFile(path, raw, 0644))

	rec := &entryRecorder{count: -1}
	reader := NewUOPReader(path, 5, []string{testTemplate})
	err = reader.Load(rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArchive)

	var ie *InvalidArchiveError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, path, ie.Path)
	assert.Equal(t, uint32(0x005A5958), ie.Signature)

	assert.Equal(t, StateUnopened, reader.State())
	assert.Equal(t, -1, rec.count)
	assert.Empty(t, rec.calls)
	assert.Zero(t, rec.completed)
	assert.Nil(t, reader.Entries())
}

func TestLoadUOPUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v6.uop")
	var buf bytes.Buffer
	require.NoError(t, writeArchiveHeader(&buf, &ArchiveHeader{Signature: uopSignature, Version: uopMaxVersion + 1}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	err := LoadUOP(path, 0, nil, &entryRecorder{})
	var ie *InvalidArchiveError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, uint32(uopMaxVersion+1), ie.Version)
}

func TestLoadUOPTruncatedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.uop")
	require.NoError(t, os.WriteFile(path, []byte{'M', 'Y', 'P', 0, 5}, 0644))

	err := LoadUOP(path, 0, nil, &entryRecorder{})
	var se *StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, headerSize, se.Want)
	assert.Equal(t, 5, se.Got)
}

func TestLoadUOPMissingFile(t *testing.T) {
	err := LoadUOP(filepath.Join(t.TempDir(), "none.uop"), 0, nil, &entryRecorder{})
	assert.ErrorIs(t, err, ErrFileOpen)
}

func TestLoadUOPEmptyArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.uop")
	writeArchive(t, path, func(*Writer) {})

	rec := &entryRecorder{count: -1}
	reader := NewUOPReader(path, 0, []string{testTemplate})
	require.NoError(t, reader.Load(rec))
	assert.Equal(t, 0, rec.count)
	assert.Equal(t, 1, rec.completed)
	assert.Equal(t, StateDone, reader.State())
}

func TestLoadUOPDecompressionFailureDeliversEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.uop")
	writeArchive(t, path, func(w *Writer) {
		w.AddRaw(TableEntry{
			Identifier:         HashFor(testTemplate, 1),
			CompressedLength:   4,
			DecompressedLength: 100,
			Compression:        compressionDeflate,
		}, []byte{1, 2, 3, 4})
		require.NoError(t, w.AddIndex(testTemplate, 2, []byte("fine")))
	})

	var logs bytes.Buffer
	rec := &entryRecorder{}
	err := LoadUOP(path, 5, []string{testTemplate}, rec, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)

	require.Len(t, rec.calls, 2)
	assert.Equal(t, 1, rec.calls[0].index)
	assert.NotNil(t, rec.calls[0].data)
	assert.Empty(t, rec.calls[0].data)
	assert.Equal(t, []byte("fine"), rec.calls[1].data)
	assert.Contains(t, logs.String(), "could not be decompressed")
}

func TestLoadUOPUnknownCompressionDeliversEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheme.uop")
	writeArchive(t, path, func(w *Writer) {
		require.NoError(t, w.AddIndex(testTemplate, 0, []byte("first")))
		w.AddRaw(TableEntry{
			Identifier:         HashFor(testTemplate, 1),
			CompressedLength:   4,
			DecompressedLength: 1 << 20,
			Compression:        3,
		}, []byte{1, 2, 3, 4})
		require.NoError(t, w.AddIndex(testTemplate, 2, []byte("last")))
	})

	var logs bytes.Buffer
	rec := &entryRecorder{}
	err := LoadUOP(path, 5, []string{testTemplate}, rec, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)

	require.Len(t, rec.calls, 3)
	assert.Equal(t, []byte("first"), rec.calls[0].data)
	assert.Equal(t, 1, rec.calls[1].index)
	assert.NotNil(t, rec.calls[1].data)
	assert.Empty(t, rec.calls[1].data)
	assert.Equal(t, []byte("last"), rec.calls[2].data)
	assert.Contains(t, logs.String(), "unsupported compression scheme 3")
}

func TestDecodePayloadSchemes(t *testing.T) {
	stored := []byte("raw")

	data, err := decodePayload(&TableEntry{Compression: compressionStored}, stored)
	require.NoError(t, err)
	assert.Equal(t, stored, data)

	_, err = decodePayload(&TableEntry{Compression: 2, CompressedLength: 3}, stored)
	assert.ErrorIs(t, err, ErrDecompression)

	e := TableEntry{Compression: 3, CompressedLength: 4, DecompressedLength: 1 << 20}
	assert.Equal(t, uint32(4), e.storedLength())
	e.Compression = compressionStored
	assert.Equal(t, uint32(1<<20), e.storedLength())
}

func TestLoadUOPShortForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign.uop")
	require.NoError(t, os.WriteFile(path, []byte{'X', 'Y', 'Z', 0, 5, 0, 0, 0}, 0644))

	err := LoadUOP(path, 0, nil, &entryRecorder{})
	assert.ErrorIs(t, err, ErrInvalidArchive)

	var ie *InvalidArchiveError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, uint32(0x005A5958), ie.Signature)
	assert.Equal(t, uint32(5), ie.Version)
}

func TestLoadUOPTruncatedAfterSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cut.uop")
	require.NoError(t, os.WriteFile(path, []byte{'M', 'Y', 'P', 0, 5, 0, 0, 0, 1, 2}, 0644))

	err := LoadUOP(path, 0, nil, &entryRecorder{})
	var se *StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, headerSize, se.Want)
	assert.Equal(t, 10, se.Got)
}

func TestLoadUOPShortPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shortpayload.uop")
	writeArchive(t, path, func(w *Writer) {
		w.AddRaw(TableEntry{
			Identifier:         HashFor(testTemplate, 1),
			CompressedLength:   1 << 20,
			DecompressedLength: 1 << 20,
		}, []byte{1, 2, 3})
	})

	rec := &entryRecorder{}
	err := LoadUOP(path, 5, []string{testTemplate}, rec)
	assert.ErrorIs(t, err, ErrStream)
	assert.Empty(t, rec.calls)
}

func TestLoadUOPUnresolvedPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unresolved.uop")
	writeArchive(t, path, func(w *Writer) {
		require.NoError(t, w.AddIndex(testTemplate, 0, []byte("known")))
		require.NoError(t, w.AddHash(0x1234, []byte("stranger")))
	})

	t.Run("accept by default", func(t *testing.T) {
		var logs bytes.Buffer
		rec := &entryRecorder{}
		err := LoadUOP(path, 5, []string{testTemplate}, rec, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		require.NoError(t, err)
		require.Len(t, rec.calls, 2)
		assert.Equal(t, entryCall{sequence: 1, index: NoIndex, data: []byte("stranger")}, rec.calls[1])
		assert.Contains(t, logs.String(), "unresolved archive identifier")
	})

	t.Run("reject", func(t *testing.T) {
		rec := &entryRecorder{}
		reader := NewUOPReader(path, 5, []string{testTemplate}, WithUnresolvedPolicy(RejectUnresolved))
		err := reader.Load(rec)
		assert.ErrorIs(t, err, ErrUnknownHash)

		var ue *UnknownHashError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, uint64(0x1234), ue.Hash)
		assert.Equal(t, 1, ue.Sequence)
		assert.Equal(t, path, ue.Path)
		assert.Equal(t, StateEntryDecoding, reader.State())
		assert.Len(t, rec.calls, 1)
	})

	t.Run("handler rejects", func(t *testing.T) {
		rec := &filteringRecorder{accept: false}
		err := LoadUOP(path, 5, []string{testTemplate}, rec, WithLogger(discardLogger()))
		assert.ErrorIs(t, err, ErrUnknownHash)
		assert.Equal(t, []uint64{0x1234}, rec.unresolved)
	})

	t.Run("handler accepts over policy", func(t *testing.T) {
		rec := &filteringRecorder{accept: true}
		err := LoadUOP(path, 5, []string{testTemplate}, rec, WithUnresolvedPolicy(RejectUnresolved))
		require.NoError(t, err)
		require.Len(t, rec.calls, 2)
		assert.Equal(t, NoIndex, rec.calls[1].index)
	})
}

func TestLoadUOPHashFilter(t *testing.T) {
	const reserved = 0x126D1E99DDEDEE0A
	path := filepath.Join(t.TempDir(), "filter.uop")
	writeArchive(t, path, func(w *Writer) {
		require.NoError(t, w.AddHash(reserved, []byte("housing")))
		require.NoError(t, w.AddIndex(testTemplate, 4, []byte("multi")))
	})

	rec := &filteringRecorder{drop: reserved}
	require.NoError(t, LoadUOP(path, 5, []string{testTemplate}, rec, WithUnresolvedPolicy(RejectUnresolved)))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, entryCall{sequence: 1, index: 4, data: []byte("multi")}, rec.calls[0])
	assert.Empty(t, rec.unresolved)
}

func TestLoadUOPSecondTemplate(t *testing.T) {
	const alt = "build/testlegacymul/{7}.bin"
	path := filepath.Join(t.TempDir(), "alt.uop")
	writeArchive(t, path, func(w *Writer) {
		require.NoError(t, w.AddIndex(alt, 9, []byte("seven digits")))
		require.NoError(t, w.AddIndex(testTemplate, 8, []byte("eight digits")))
	})

	rec := &entryRecorder{}
	err := LoadUOP(path, 10, []string{testTemplate, alt}, rec, WithUnresolvedPolicy(RejectUnresolved))
	require.NoError(t, err)
	require.Len(t, rec.calls, 2)
	assert.Equal(t, 9, rec.calls[0].index)
	assert.Equal(t, 8, rec.calls[1].index)
}

func TestLoadUOPHandlerError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "herr.uop")
	writeArchive(t, path, func(w *Writer) {
		require.NoError(t, w.AddIndex(testTemplate, 0, []byte("x")))
	})

	err := LoadUOP(path, 1, []string{testTemplate}, failingEntryHandler{})
	assert.ErrorIs(t, err, errFail)
}

type failingEntryHandler struct{}

func (failingEntryHandler) ProcessEntry(int, int, []byte) error { return errFail }

func TestReaderStateString(t *testing.T) {
	assert.Equal(t, "table-walking", StateTableWalking.String())
	assert.Equal(t, "ReaderState(9)", ReaderState(9).String())
	assert.Equal(t, "reject", RejectUnresolved.String())
}
