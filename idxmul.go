// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// RecordHandler receives the payloads of an index/data container.
//
// RecordData is called once per index record that points at data. record is
// the record's position in the index file; positions of empty records are
// skipped, never reused, so record numbers can have gaps. The data slice is
// owned by the handler.
type RecordHandler interface {
	RecordData(record uint32, extra uint32, data []byte) error
}

// EntryCounter is implemented by handlers that want the total number of index
// records, valid or not, before any data is delivered.
type EntryCounter interface {
	EntryCount(n int)
}

// ReadingCompleter is implemented by handlers that want to know when a pass
// over a container has finished.
type ReadingCompleter interface {
	ReadingComplete() error
}

// ProcessFiles reads the index file at idxPath and delivers each record's
// payload from the data file at mulPath to h.
func ProcessFiles(idxPath, mulPath string, h RecordHandler, opts ...Option) error {
	idx, err := os.Open(idxPath)
	if err != nil {
		return &FileOpenError{Path: idxPath, Err: err}
	}
	defer idx.Close()

	mul, err := os.Open(mulPath)
	if err != nil {
		return &FileOpenError{Path: mulPath, Err: err}
	}
	defer mul.Close()

	return processStreams(idx, mul, mulPath, h, newConfig(opts))
}

// ProcessStreams is ProcessFiles over already opened streams.
func ProcessStreams(idx io.ReadSeeker, mul io.ReaderAt, h RecordHandler, opts ...Option) error {
	return processStreams(idx, mul, "", h, newConfig(opts))
}

func processStreams(idx io.ReadSeeker, mul io.ReaderAt, mulPath string, h RecordHandler, cfg *config) error {
	size, err := idx.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("size index: %w", err)
	}
	if _, err := idx.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind index: %w", err)
	}

	total := int(size / indexRecordSize)
	if c, ok := h.(EntryCounter); ok {
		c.EntryCount(total)
	}

	r := bufio.NewReader(idx)
	var raw [indexRecordSize]byte
	var record uint32
	delivered := 0

	for ; ; record++ {
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return fmt.Errorf("read index record %d: %w", record, err)
		}

		rec := decodeIndexRecord(raw[:])
		if !rec.Valid() {
			continue
		}

		data, err := readAt(mul, mulPath, int64(rec.Offset), int(rec.Length))
		if err != nil {
			return err
		}

		if err := h.RecordData(record, rec.Extra, data); err != nil {
			return fmt.Errorf("record %d: %w", record, err)
		}
		delivered++
	}

	cfg.logger.Debug("index container processed",
		slog.String("path", mulPath),
		slog.Int("records", total),
		slog.Int("delivered", delivered))

	if c, ok := h.(ReadingCompleter); ok {
		if err := c.ReadingComplete(); err != nil {
			return fmt.Errorf("reading complete: %w", err)
		}
	}
	return nil
}

// IndexWriter authors an index/data container pair. Records are positional:
// positions never added are written as empty records.
type IndexWriter struct {
	idxPath string
	mulPath string
	records []IndexRecord
	data    []byte
}

// CreateIndexWriter prepares an index/data pair to be written on Close.
func CreateIndexWriter(idxPath, mulPath string) *IndexWriter {
	return &IndexWriter{idxPath: idxPath, mulPath: mulPath}
}

// Add stores data as the record at position. Empty data records a
// zero-length entry.
func (w *IndexWriter) Add(position uint32, extra uint32, data []byte) {
	w.grow(position)
	if len(data) == 0 {
		w.records[position] = IndexRecord{Offset: uint32(len(w.data)), Length: 0, Extra: extra}
		return
	}
	w.records[position] = IndexRecord{Offset: uint32(len(w.data)), Length: uint32(len(data)), Extra: extra}
	w.data = append(w.data, data...)
}

// AddRecord stores a raw index record at position without data.
func (w *IndexWriter) AddRecord(position uint32, rec IndexRecord) {
	w.grow(position)
	w.records[position] = rec
}

func (w *IndexWriter) grow(position uint32) {
	for uint32(len(w.records)) <= position {
		w.records = append(w.records, IndexRecord{Offset: offsetInvalid})
	}
}

// Close writes both files.
func (w *IndexWriter) Close() error {
	idx := make([]byte, len(w.records)*indexRecordSize)
	for i, rec := range w.records {
		encodeIndexRecord(idx[i*indexRecordSize:], rec)
	}
	if err := os.WriteFile(w.idxPath, idx, 0644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.WriteFile(w.mulPath, w.data, 0644); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}
