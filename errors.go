// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package txp

import (
	"errors"
	"fmt"
)

var (
	// ErrMagicMismatch indicates neither byte-order signature was found at a section start.
	ErrMagicMismatch = errors.New("magic mismatch")
	// ErrUnsupportedFormatID indicates a wire format id with no registry mapping.
	ErrUnsupportedFormatID = errors.New("unsupported format id")
	// ErrOffsetOutOfRange indicates an offset table entry points past the buffer end.
	ErrOffsetOutOfRange = errors.New("offset out of range")
	// ErrBufferTooShort indicates a header, table or payload runs past the buffer end.
	ErrBufferTooShort = errors.New("buffer too short")
	// ErrInvalidDepth indicates a texture array with zero layers.
	ErrInvalidDepth = errors.New("invalid texture array depth")
	// ErrUnevenLayers indicates the total mip count is not divisible by the layer count.
	ErrUnevenLayers = errors.New("mip count not divisible by layer count")
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")

	// ErrEmptyTexture indicates a texture without subtextures or mipmaps.
	ErrEmptyTexture = errors.New("empty texture")
	// ErrUnsupportedFormat indicates a pixel format the target container cannot store.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNotYCbCr indicates a subtexture that is not a two-plane ATI2 pair.
	ErrNotYCbCr = errors.New("subtexture is not YCbCr")
	// ErrDecodeImage indicates block decoding of a payload failed.
	ErrDecodeImage = errors.New("decode image failed")
	// ErrPayloadSize indicates a payload shorter than its dimensions require.
	ErrPayloadSize = errors.New("payload size mismatch")

	// ErrWriteDDSMagic indicates DDS magic write failed.
	ErrWriteDDSMagic = errors.New("writing DDS magic failed")
	// ErrWriteDDSHeader indicates DDS header write failed.
	ErrWriteDDSHeader = errors.New("writing DDS header failed")
	// ErrWriteDX10Header indicates DDS DX10 header write failed.
	ErrWriteDX10Header = errors.New("writing DDS DX10 header failed")
	// ErrWriteData indicates payload write failed.
	ErrWriteData = errors.New("writing data failed")
	// ErrCreateFile indicates file creation failed.
	ErrCreateFile = errors.New("create file failed")

	// ErrEDDSLayers indicates an EDDS export of a layered texture.
	ErrEDDSLayers = errors.New("EDDS stores single-layer textures only")
	// ErrInputTooLarge indicates input data is too large to encode.
	ErrInputTooLarge = errors.New("input data too large")
	// ErrCompressedDataTooLarge indicates compressed payload exceeds limits.
	ErrCompressedDataTooLarge = errors.New("compressed data too large")
	// ErrChunkTooLarge indicates a compressed chunk exceeds allowed size.
	ErrChunkTooLarge = errors.New("compressed chunk too large")
	// ErrLZ4Compress indicates LZ4 compression failed.
	ErrLZ4Compress = errors.New("LZ4 compression failed")
	// ErrLZ4Decode indicates LZ4 decode failed.
	ErrLZ4Decode = errors.New("LZ4 decode failed")
	// ErrUnknownBlockMagic indicates an unknown block magic.
	ErrUnknownBlockMagic = errors.New("unknown block magic")
	// ErrInvalidTargetSize indicates invalid decoded target size.
	ErrInvalidTargetSize = errors.New("invalid target size")
	// ErrChunkStreamTruncated indicates LZ4 chunk stream is truncated.
	ErrChunkStreamTruncated = errors.New("LZ4 chunk-stream truncated")
	// ErrUnknownLZ4Flags indicates unknown LZ4 chunk flags.
	ErrUnknownLZ4Flags = errors.New("unknown LZ4 flags")
	// ErrInvalidChunkSize indicates invalid LZ4 chunk size.
	ErrInvalidChunkSize = errors.New("invalid compressed chunk size")
	// ErrDecodeOverrun indicates decoded data overruns target buffer.
	ErrDecodeOverrun = errors.New("decoded LZ4 overruns target buffer")
	// ErrDecodedSizeMismatch indicates decoded size mismatch.
	ErrDecodedSizeMismatch = errors.New("LZ4 decoded size mismatch")
	// ErrBlockLengthMismatch indicates leftover bytes after decode.
	ErrBlockLengthMismatch = errors.New("LZ4 block length mismatch")
	// ErrBlockTableMagicRead indicates block table magic read failed.
	ErrBlockTableMagicRead = errors.New("reading block table magic failed")
	// ErrBlockTableSizeRead indicates block table size read failed.
	ErrBlockTableSizeRead = errors.New("reading block table size failed")
	// ErrBlockTableUnknownMagic indicates unknown block magic in table.
	ErrBlockTableUnknownMagic = errors.New("unknown block magic in table")
	// ErrBlockTableInvalidSize indicates invalid size in block table.
	ErrBlockTableInvalidSize = errors.New("invalid block size in table")
	// ErrBlockBodyRead indicates block body read failed.
	ErrBlockBodyRead = errors.New("reading block body failed")
	// ErrDDSHeaderRead indicates DDS header read failed.
	ErrDDSHeaderRead = errors.New("reading DDS header failed")
	// ErrDDSDX10Read indicates DDS DX10 header read failed.
	ErrDDSDX10Read = errors.New("reading DDS DX10 header failed")
	// ErrChunkHeaderRead indicates LZ4 chunk header read failed.
	ErrChunkHeaderRead = errors.New("reading chunk header failed")
	// ErrChunkDataRead indicates LZ4 chunk data read failed.
	ErrChunkDataRead = errors.New("reading chunk data failed")
	// ErrDecompressBlock indicates block decompression failed.
	ErrDecompressBlock = errors.New("decompress block failed")
	// ErrWriteBlockMagic indicates block magic write failed.
	ErrWriteBlockMagic = errors.New("writing block magic failed")
	// ErrWriteBlockSize indicates block size write failed.
	ErrWriteBlockSize = errors.New("writing block size failed")
	// ErrWriteBlockData indicates block data write failed.
	ErrWriteBlockData = errors.New("writing block data failed")
)

// ParseError reports a failed record together with its absolute position in
// the parsed buffer. Nested failures wrap each other from the atlas down to
// the record that actually broke.
type ParseError struct {
	// Section is the record kind: "atlas", "texture", "array" or "mipmap".
	Section string
	// Offset is the absolute byte offset of the record start.
	Offset int
	// Err is the underlying cause.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at 0x%x: %v", e.Section, e.Offset, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// section wraps err into a ParseError for the record at off.
func section(name string, off int, err error) error {
	return &ParseError{Section: name, Offset: off, Err: err}
}
