// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package asset

import (
	"fmt"
	"path/filepath"

	uo "github.com/suprsokr/go-uo"
	"github.com/suprsokr/go-uo/buffer"
)

const paletteSize = 256

// AnimationFileNames returns the index and data file names for an animation
// file id. Id 0 is anim.idx/anim.mul; ids 2 through 5 carry their number.
func AnimationFileNames(fileID int) (idx, mul string, err error) {
	switch {
	case fileID == 0:
		return "anim.idx", "anim.mul", nil
	case fileID >= 2 && fileID <= 5:
		return fmt.Sprintf("anim%d.idx", fileID), fmt.Sprintf("anim%d.mul", fileID), nil
	default:
		return "", "", fmt.Errorf("%w: %d", ErrInvalidAnimationFile, fileID)
	}
}

// Animations holds animation payloads keyed by animation id.
type Animations struct {
	Records
}

// OpenAnimations loads animation file fileID from a client directory.
func OpenAnimations(dir string, fileID int, opts ...uo.Option) (*Animations, error) {
	idx, mul, err := AnimationFileNames(fileID)
	if err != nil {
		return nil, err
	}
	return OpenAnimationFiles(filepath.Join(dir, idx), filepath.Join(dir, mul), opts...)
}

// OpenAnimationFiles loads animations from an index/data pair.
func OpenAnimationFiles(idxPath, mulPath string, opts ...uo.Option) (*Animations, error) {
	a := &Animations{Records: Records{}}
	if err := uo.ProcessFiles(idxPath, mulPath, animationLoader{a}, opts...); err != nil {
		return nil, fmt.Errorf("load animations: %w", err)
	}
	return a, nil
}

type animationLoader struct{ a *Animations }

func (l animationLoader) RecordData(record, _ uint32, data []byte) error {
	l.a.Records[int(record)] = data
	return nil
}

// Frame is the header of one animation frame. Pixels follows the header and
// is left encoded.
type Frame struct {
	CenterX int16
	CenterY int16
	Width   uint16
	Height  uint16
	Pixels  []byte
}

// AnimationSequence is an animation payload split into its palette and frames.
type AnimationSequence struct {
	Palette [paletteSize]uint16
	Frames  []Frame
}

// ParseAnimation splits an animation payload. The payload is a 256 entry
// palette, a frame count, and that many frame offsets measured from the end
// of the palette.
func ParseAnimation(data []byte) (*AnimationSequence, error) {
	seq := &AnimationSequence{}
	if len(data) == 0 {
		return seq, nil
	}

	b := buffer.From(data)
	for i := range seq.Palette {
		c, err := buffer.Read[uint16](b)
		if err != nil {
			return nil, fmt.Errorf("read palette: %w", err)
		}
		seq.Palette[i] = c
	}
	base := b.Pos()

	count, err := buffer.Read[uint32](b)
	if err != nil {
		return nil, fmt.Errorf("read frame count: %w", err)
	}
	if int64(count)*4 > int64(b.Remaining()) {
		return nil, fmt.Errorf("frame count %d exceeds payload", count)
	}
	offsets := make([]int, count)
	for i := range offsets {
		off, err := buffer.Read[uint32](b)
		if err != nil {
			return nil, fmt.Errorf("read frame offset: %w", err)
		}
		offsets[i] = base + int(off)
	}

	seq.Frames = make([]Frame, 0, count)
	for i, start := range offsets {
		end := len(data)
		if i+1 < len(offsets) && offsets[i+1] > start {
			end = offsets[i+1]
		}
		frame, err := parseFrame(b, start, end)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		seq.Frames = append(seq.Frames, frame)
	}
	return seq, nil
}

func parseFrame(b *buffer.Buffer, start, end int) (Frame, error) {
	var f Frame
	var err error
	if f.CenterX, err = buffer.ReadAt[int16](b, start); err != nil {
		return f, err
	}
	if f.CenterY, err = buffer.Read[int16](b); err != nil {
		return f, err
	}
	if f.Width, err = buffer.Read[uint16](b); err != nil {
		return f, err
	}
	if f.Height, err = buffer.Read[uint16](b); err != nil {
		return f, err
	}
	if n := end - b.Pos(); n > 0 {
		if f.Pixels, err = b.ReadBlock(n); err != nil {
			return f, err
		}
	}
	return f, nil
}
