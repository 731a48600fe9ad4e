// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// compressData compresses data as a zlib stream
func compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib write: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}

	return buf.Bytes(), nil
}

// decompressData inflates a zlib stream that must expand to exactly size bytes
func decompressData(data []byte, size uint32) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: create zlib reader: %v", ErrDecompression, err)
	}
	defer r.Close()

	result := make([]byte, size)
	n, err := io.ReadFull(r, result)
	if err != nil && !(err == io.EOF && size == 0) {
		return nil, fmt.Errorf("%w: inflated %d of %d bytes: %v", ErrDecompression, n, size, err)
	}

	// The stream must end here; trailing output means the size was wrong.
	var probe [1]byte
	extra, err := r.Read(probe[:])
	if extra > 0 {
		return nil, fmt.Errorf("%w: stream exceeds %d bytes", ErrDecompression, size)
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}

	return result, nil
}
