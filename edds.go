// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package txp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/pierrec/lz4/v4"
	"github.com/woozymasta/bcn"
)

const (
	// BlockMagicCOPY marks an uncompressed EDDS block.
	BlockMagicCOPY = "COPY"
	// BlockMagicLZ4 marks an LZ4-compressed EDDS block.
	BlockMagicLZ4 = "LZ4 "

	// ChunkSize is the Enfusion chunk size for LZ4 streams.
	ChunkSize = 64 * 1024

	// lz4MaxRatio bounds the declared size of an LZ4 block against its input.
	lz4MaxRatio = 255
)

// EDDSOptions configures EDDS export.
type EDDSOptions struct {
	// Logger receives one debug record per written block. Nil discards.
	Logger *slog.Logger
	// Compress stores blocks as LZ4 chunk streams where that saves space.
	Compress bool
}

// eddsBlock is one mipmap body. LZ4 bodies start with the u32 uncompressed
// size followed by the chunk stream.
type eddsBlock struct {
	Magic string
	Data  []byte
}

// WriteEDDS writes t as an Enfusion EDDS container: a DDS header followed by
// a block table and block bodies, smallest mipmap first. Only single-layer
// textures in DXT1/DXT3/DXT5/ATI1/ATI2/RGBA8 are accepted.
func (t *Texture) WriteEDDS(w io.Writer, opts *EDDSOptions) error {
	if len(t.Subtextures) != 1 {
		return fmt.Errorf("%w: %d layers", ErrEDDSLayers, len(t.Subtextures))
	}

	first, ok := t.first()
	if !ok {
		return ErrEmptyTexture
	}
	if bcnFormat(first.Format) == bcn.FormatUnknown {
		return fmt.Errorf("%w: %s in EDDS", ErrUnsupportedFormat, first.Format)
	}

	var o EDDSOptions
	if opts != nil {
		o = *opts
	}
	log := o.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	d, err := t.DDS()
	if err != nil {
		return err
	}
	d.Header.Reserved1 = enfusionReserved1()

	mipmaps := t.Subtextures[0].Mipmaps
	blocks := make([]*eddsBlock, len(mipmaps))
	for i := range mipmaps {
		if o.Compress {
			blocks[i], err = compressBlock(mipmaps[i].Data)
			if err != nil {
				return fmt.Errorf("mipmap %d: %w", i, err)
			}
		} else {
			blocks[i] = &eddsBlock{Magic: BlockMagicCOPY, Data: mipmaps[i].Data}
		}
		log.Debug("edds block", "level", i, "magic", blocks[i].Magic, "raw", len(mipmaps[i].Data), "stored", len(blocks[i].Data))
	}

	if err := bcn.WriteDDSMagic(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDDSMagic, err)
	}
	if err := bcn.WriteDDSHeader(w, d.Header); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDDSHeader, err)
	}

	for i := len(blocks) - 1; i >= 0; i-- {
		size, err := i32FromInt(len(blocks[i].Data))
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, blocks[i].Magic); err != nil {
			return fmt.Errorf("%w: mipmap %d: %v", ErrWriteBlockMagic, i, err)
		}
		if err := binary.Write(w, binary.LittleEndian, size); err != nil {
			return fmt.Errorf("%w: mipmap %d: %v", ErrWriteBlockSize, i, err)
		}
	}

	for i := len(blocks) - 1; i >= 0; i-- {
		if _, err := w.Write(blocks[i].Data); err != nil {
			return fmt.Errorf("%w: mipmap %d: %v", ErrWriteBlockData, i, err)
		}
	}

	return nil
}

// ReadEDDS reads an EDDS container back into a single-layer Texture with
// mipmaps ordered largest first. Mipmap ids are zero.
func ReadEDDS(r io.Reader) (*Texture, error) {
	header, err := bcn.ReadDDSHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDDSHeaderRead, err)
	}

	dx10, err := bcn.ReadDDSHeaderDX10(r, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDDSDX10Read, err)
	}
	if dx10 != nil {
		return nil, fmt.Errorf("%w: DXGI %d in EDDS", ErrUnsupportedFormat, dx10.DXGIFormat)
	}

	format := eddsPixelFormat(&header.PixelFormat)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: EDDS pixel format %q", ErrUnsupportedFormat, intToFourCC(header.PixelFormat.FourCC))
	}

	mipCount := uint32(1)
	if (header.Caps&bcn.DDSCapsMipmap) != 0 && header.MipMapCount > 0 {
		mipCount = header.MipMapCount
	}
	if mipCount > maxMipLevels {
		return nil, fmt.Errorf("%w: %d mipmaps", ErrSizeOverflow, mipCount)
	}

	table, err := readBlockTable(r, mipCount)
	if err != nil {
		return nil, err
	}

	mipmaps := make([]Mipmap, mipCount)
	for i, h := range table {
		var body bytes.Buffer
		if _, err := io.CopyN(&body, r, int64(h.Size)); err != nil {
			return nil, fmt.Errorf("%w: %d: %v", ErrBlockBodyRead, i, err)
		}

		data, err := decompressBlock(&eddsBlock{Magic: h.Magic, Data: body.Bytes()})
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrDecompressBlock, i, err)
		}

		level := int(mipCount) - i - 1
		mipmaps[level] = Mipmap{
			Width:  mipDimension(header.Width, level),
			Height: mipDimension(header.Height, level),
			Format: format,
			Data:   data,
		}
	}

	return &Texture{Subtextures: []Subtexture{{Mipmaps: mipmaps}}}, nil
}

// eddsPixelFormat recognizes the pixel formats WriteEDDS produces.
func eddsPixelFormat(pf *bcn.DDSPixelFormat) PixelFormat {
	if (pf.Flags & bcn.DDSPFFourCC) != 0 {
		switch intToFourCC(pf.FourCC) {
		case "DXT1":
			return FormatDXT1
		case "DXT2", "DXT3":
			return FormatDXT3
		case "DXT4", "DXT5":
			return FormatDXT5
		case "ATI1", "BC4U":
			return FormatATI1
		case "ATI2", "BC5U":
			return FormatATI2
		default:
			return FormatUnknown
		}
	}

	if (pf.Flags&bcn.DDSPFRGB) != 0 && (pf.Flags&bcn.DDSPFAlphaPixels) != 0 && pf.RGBBitCount == 32 &&
		pf.RBitMask == 0x000000ff && pf.GBitMask == 0x0000ff00 &&
		pf.BBitMask == 0x00ff0000 && pf.ABitMask == 0xff000000 {
		return FormatRGBA8
	}

	return FormatUnknown
}

func enfusionReserved1() [11]uint32 {
	return [11]uint32{
		0,
		0x31464e45, // "ENF1"
		0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
}

// compressBlock compresses raw data into an LZ4 chunk stream or falls back
// to COPY when compression does not pay off.
func compressBlock(data []byte) (*eddsBlock, error) {
	if len(data) > maxInt32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(data))
	}
	if len(data) < 1024 {
		return &eddsBlock{Magic: BlockMagicCOPY, Data: data}, nil
	}

	var stream bytes.Buffer
	_ = binary.Write(&stream, binary.LittleEndian, uint32(len(data))) // #nosec G115 -- bounded above.

	compressBuf := make([]byte, lz4.CompressBlockBound(ChunkSize))
	for i := 0; i < len(data); i += ChunkSize {
		end := min(i+ChunkSize, len(data))
		src := data[i:end]

		cn, err := lz4.CompressBlockHC(src, compressBuf, 0, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Compress, err)
		}
		if cn == 0 || float64(cn) > float64(len(src))*0.85 {
			return &eddsBlock{Magic: BlockMagicCOPY, Data: data}, nil
		}
		if cn > 0x7fffff {
			return nil, fmt.Errorf("%w: %d", ErrChunkTooLarge, cn)
		}

		flags := byte(0x00)
		if end == len(data) {
			flags = 0x80
		}
		stream.Write([]byte{byte(cn), byte(cn >> 8), byte(cn >> 16), flags})
		stream.Write(compressBuf[:cn])
	}

	if stream.Len() > maxInt32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCompressedDataTooLarge, stream.Len())
	}
	if float64(stream.Len()) > float64(len(data))*0.85 {
		return &eddsBlock{Magic: BlockMagicCOPY, Data: data}, nil
	}

	return &eddsBlock{Magic: BlockMagicLZ4, Data: stream.Bytes()}, nil
}

// decompressBlock inflates an EDDS block body into raw data.
func decompressBlock(block *eddsBlock) ([]byte, error) {
	switch block.Magic {
	case BlockMagicCOPY:
		return bytes.Clone(block.Data), nil
	case BlockMagicLZ4:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockMagic, block.Magic)
	}

	if len(block.Data) < 4 {
		return nil, fmt.Errorf("%w: need 4 bytes size prefix, have %d", ErrChunkStreamTruncated, len(block.Data))
	}
	targetSize := int(binary.LittleEndian.Uint32(block.Data[:4]))
	data := block.Data[4:]
	if targetSize <= 0 || targetSize > maxInt32 || targetSize > len(data)*lz4MaxRatio {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTargetSize, targetSize)
	}

	const dictCap = 64 * 1024
	dict := make([]byte, dictCap)
	dictSize := 0

	target := make([]byte, targetSize)
	outIdx := 0

	r := bytes.NewReader(data)
	for {
		if r.Len() < 4 {
			return nil, fmt.Errorf("%w: need 4 bytes header, have %d", ErrChunkStreamTruncated, r.Len())
		}

		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChunkHeaderRead, err)
		}

		cSize := int(hdr[0]) | (int(hdr[1]) << 8) | (int(hdr[2]) << 16)
		flags := hdr[3]
		if (flags &^ 0x80) != 0 {
			return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownLZ4Flags, flags)
		}
		if cSize <= 0 || cSize > r.Len() {
			return nil, fmt.Errorf("%w: %d (remaining %d)", ErrInvalidChunkSize, cSize, r.Len())
		}

		compressed := make([]byte, cSize)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChunkDataRead, err)
		}

		remaining := targetSize - outIdx
		if remaining <= 0 {
			return nil, ErrDecodeOverrun
		}
		dst := target[outIdx : outIdx+min(ChunkSize, remaining)]

		n, err := lz4.UncompressBlockWithDict(compressed, dst, dict[:dictSize])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Decode, err)
		}
		outIdx += n

		// slide the 64KB dictionary window over the decoded output
		decoded := target[outIdx-n : outIdx]
		if len(decoded) >= dictCap {
			copy(dict, decoded[len(decoded)-dictCap:])
			dictSize = dictCap
		} else if avail := dictCap - dictSize; len(decoded) <= avail {
			copy(dict[dictSize:], decoded)
			dictSize += len(decoded)
		} else {
			shift := len(decoded) - avail
			copy(dict, dict[shift:dictSize])
			copy(dict[dictCap-len(decoded):], decoded)
			dictSize = dictCap
		}

		if (flags & 0x80) != 0 {
			break
		}
	}

	if outIdx != targetSize {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDecodedSizeMismatch, targetSize, outIdx)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes left after decode", ErrBlockLengthMismatch, r.Len())
	}

	return target, nil
}

type blockHeader struct {
	Magic string
	Size  int32
}

func readBlockTable(r io.Reader, mipMapCount uint32) ([]blockHeader, error) {
	hdrs := make([]blockHeader, 0, min(mipMapCount, maxMipLevels))
	for i := uint32(0); i < mipMapCount; i++ {
		var magic [4]byte
		if _, err := io.ReadFull(r, magic[:]); err != nil {
			return nil, fmt.Errorf("%w: %d: %v", ErrBlockTableMagicRead, i, err)
		}

		var size int32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("%w: %d: %v", ErrBlockTableSizeRead, i, err)
		}

		m := string(magic[:])
		if m != BlockMagicCOPY && m != BlockMagicLZ4 {
			return nil, fmt.Errorf("%w: %d: %q", ErrBlockTableUnknownMagic, i, m)
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: %d: %d", ErrBlockTableInvalidSize, i, size)
		}

		hdrs = append(hdrs, blockHeader{Magic: m, Size: size})
	}

	return hdrs, nil
}
