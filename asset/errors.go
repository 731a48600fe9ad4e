// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTileID is returned for tile ids outside the loaded tile data.
	ErrInvalidTileID = errors.New("asset: invalid tile id")

	// ErrInvalidBlockSize is returned when map block data has the wrong length.
	ErrInvalidBlockSize = errors.New("asset: invalid block size")

	// ErrInvalidAnimationFile is returned for animation file ids the client
	// never shipped.
	ErrInvalidAnimationFile = errors.New("asset: invalid animation file id")

	// ErrInvalidArtSize is returned when an art header has a zero or
	// oversized dimension.
	ErrInvalidArtSize = errors.New("asset: invalid art size")

	// ErrNoTileData is returned by lookups that need a TileData context when
	// none was supplied.
	ErrNoTileData = errors.New("asset: no tile data")
)

// TileIDError records a tile lookup outside the loaded range.
type TileIDError struct {
	Kind string // "terrain" or "art"
	ID   int
}

func (e *TileIDError) Error() string {
	return fmt.Sprintf("asset: invalid %s tile id 0x%04X", e.Kind, e.ID)
}

// Is reports whether target is ErrInvalidTileID.
func (e *TileIDError) Is(target error) bool { return target == ErrInvalidTileID }

// BlockSizeError records map block data of the wrong length.
type BlockSizeError struct {
	Size int
}

func (e *BlockSizeError) Error() string {
	return fmt.Sprintf("asset: invalid block size %d", e.Size)
}

// Is reports whether target is ErrInvalidBlockSize.
func (e *BlockSizeError) Is(target error) bool { return target == ErrInvalidBlockSize }
