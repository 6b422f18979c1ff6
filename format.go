// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package txp

import (
	"fmt"

	"github.com/woozymasta/bcn"
)

// PixelFormat is the pixel layout of a mipmap payload.
type PixelFormat uint8

// Pixel formats representable in an atlas.
const (
	FormatUnknown PixelFormat = iota
	FormatA8
	FormatRGB8
	FormatRGBA8
	FormatRGB5
	FormatRGB5A1
	FormatRGBA4
	FormatDXT1
	FormatDXT1a
	FormatDXT3
	FormatDXT5
	FormatATI1
	FormatATI2
	FormatL8
	FormatL8A8
	// FormatBC7 is only produced by later revisions of the packing tool.
	FormatBC7
	// FormatBC6H is only produced by later revisions of the packing tool.
	FormatBC6H
)

// formatInfo describes one registry entry.
type formatInfo struct {
	name string
	id   uint32
	// bpp is bytes per pixel for linear formats, 0 for block formats.
	bpp int
	// block is bytes per 4x4 block for block formats, 0 for linear formats.
	block int
}

var formats = [...]formatInfo{
	FormatUnknown: {name: "Unknown"},
	FormatA8:      {name: "A8", id: 0, bpp: 1},
	FormatRGB8:    {name: "RGB8", id: 1, bpp: 3},
	FormatRGBA8:   {name: "RGBA8", id: 2, bpp: 4},
	FormatRGB5:    {name: "RGB5", id: 3, bpp: 2},
	FormatRGB5A1:  {name: "RGB5A1", id: 4, bpp: 2},
	FormatRGBA4:   {name: "RGBA4", id: 5, bpp: 2},
	FormatDXT1:    {name: "DXT1", id: 6, block: 8},
	FormatDXT1a:   {name: "DXT1a", id: 7, block: 8},
	FormatDXT3:    {name: "DXT3", id: 8, block: 16},
	FormatDXT5:    {name: "DXT5", id: 9, block: 16},
	FormatATI1:    {name: "ATI1", id: 10, block: 8},
	FormatATI2:    {name: "ATI2", id: 11, block: 16},
	FormatL8:      {name: "L8", id: 12, bpp: 1},
	FormatL8A8:    {name: "L8A8", id: 13, bpp: 2},
	FormatBC7:     {name: "BC7", id: 15, block: 16},
	FormatBC6H:    {name: "BC6H", id: 127, block: 16},
}

// formatsByID is the reverse registry, built once from formats.
var formatsByID = func() map[uint32]PixelFormat {
	m := make(map[uint32]PixelFormat, len(formats)-1)
	for f := FormatA8; int(f) < len(formats); f++ {
		m[formats[f].id] = f
	}
	return m
}()

// FormatFromID maps a wire format identifier to a PixelFormat.
func FormatFromID(id uint32) (PixelFormat, error) {
	f, ok := formatsByID[id]
	if !ok {
		return FormatUnknown, fmt.Errorf("%w: %d", ErrUnsupportedFormatID, id)
	}

	return f, nil
}

// ID returns the wire identifier of f. The second result is false for
// FormatUnknown and values outside the registry.
func (f PixelFormat) ID() (uint32, bool) {
	if !f.valid() {
		return 0, false
	}

	return formats[f].id, true
}

// String returns the format name.
func (f PixelFormat) String() string {
	if int(f) >= len(formats) {
		return fmt.Sprintf("PixelFormat(%d)", uint8(f))
	}

	return formats[f].name
}

// BlockCompressed reports whether f is stored in 4x4 blocks.
func (f PixelFormat) BlockCompressed() bool {
	return f.valid() && formats[f].block != 0
}

func (f PixelFormat) valid() bool {
	return f != FormatUnknown && int(f) < len(formats)
}

// maxDataLength bounds the payload size of a single image.
const maxDataLength = uint64(maxInt32)

// dataLength returns the byte size of a width x height image in format f,
// or -1 when f is not a registry format or the size exceeds maxDataLength.
func dataLength(f PixelFormat, width, height int) int {
	if !f.valid() || width < 0 || height < 0 {
		return -1
	}

	info := formats[f]
	cols, rows, unit := uint64(width), uint64(height), uint64(info.bpp)
	if info.block != 0 {
		cols = (cols + 3) / 4
		rows = (rows + 3) / 4
		unit = uint64(info.block)
	}

	if cols != 0 && rows > maxDataLength/cols {
		return -1
	}
	n := cols * rows
	if n > maxDataLength/unit {
		return -1
	}

	return int(n * unit)
}

// bcnFormat maps f to the block codec format used for decoding.
func bcnFormat(f PixelFormat) bcn.Format {
	switch f {
	case FormatDXT1, FormatDXT1a:
		return bcn.FormatDXT1
	case FormatDXT3:
		return bcn.FormatDXT3
	case FormatDXT5:
		return bcn.FormatDXT5
	case FormatATI1:
		return bcn.FormatBC4
	case FormatATI2:
		return bcn.FormatBC5
	case FormatRGBA8:
		return bcn.FormatRGBA8
	default:
		return bcn.FormatUnknown
	}
}
