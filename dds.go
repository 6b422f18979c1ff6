// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package txp

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/bcn"
)

const (
	ddpfAlpha = 0x2

	ddsCaps2Cubemap         = 0x200
	ddsCaps2CubemapAllFaces = 0xfc00

	dx10ResourceTexture2D  = 3
	dx10MiscTextureCube    = 0x4
	dx10AlphaStraight      = 1
	dx10AlphaPremultiplied = 2
)

// DXGI formats used by the extended header.
const (
	dxgiR8G8B8A8UNorm = 28
	dxgiR8G8UNorm     = 49
	dxgiR8UNorm       = 61
	dxgiA8UNorm       = 65
	dxgiBC1UNorm      = 71
	dxgiBC2UNorm      = 74
	dxgiBC3UNorm      = 77
	dxgiBC4UNorm      = 80
	dxgiBC5UNorm      = 83
	dxgiB5G6R5UNorm   = 85
	dxgiB5G5R5A1UNorm = 86
	dxgiBC6HTypeless  = 94
	dxgiBC7UNorm      = 98
	dxgiB4G4R4A4UNorm = 115
)

// DX10Header is the DDS extended header used for BC6H/BC7 and texture arrays.
type DX10Header struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// DDS is a texture laid out as a DDS container.
type DDS struct {
	Header *bcn.DDSHeader
	// DX10 is nil when the legacy header describes the format.
	DX10 *DX10Header
	// Data is every subtexture's mip chain, subtexture after subtexture.
	Data []byte
}

// DDS builds a DDS container for t. Size and format come from the largest
// mipmap of the first subtexture; six subtextures make a cubemap.
func (t *Texture) DDS() (*DDS, error) {
	first, ok := t.first()
	if !ok {
		return nil, ErrEmptyTexture
	}

	mipCount, err := u32FromInt(len(t.Subtextures[0].Mipmaps))
	if err != nil {
		return nil, err
	}

	layers := len(t.Subtextures)
	cubemap := t.IsCubemap()

	hdr := &bcn.DDSHeader{
		Size:        bcn.DDSHeaderSize,
		Flags:       uint32(bcn.DDSFlagCaps | bcn.DDSFlagHeight | bcn.DDSFlagWidth | bcn.DDSFlagPixelFormat),
		Height:      first.Height,
		Width:       first.Width,
		Depth:       1,
		MipMapCount: mipCount,
		Caps:        uint32(bcn.DDSCapsTexture),
	}
	hdr.PixelFormat.Size = bcn.DDSPixelFormatSize
	if mipCount > 1 {
		hdr.Flags |= bcn.DDSFlagMipmapCount
		hdr.Caps |= bcn.DDSCapsComplex | bcn.DDSCapsMipmap
	}
	if cubemap {
		hdr.Caps |= bcn.DDSCapsComplex
		hdr.Caps2 = ddsCaps2Cubemap | ddsCaps2CubemapAllFaces
	}

	if !first.Format.valid() {
		return nil, fmt.Errorf("%w: %s in DDS", ErrUnsupportedFormat, first.Format)
	}

	size := dataLength(first.Format, int(first.Width), int(first.Height))
	if first.Format.BlockCompressed() {
		hdr.Flags |= bcn.DDSFlagLinearSize
	} else {
		hdr.Flags |= bcn.DDSFlagPitch
		size = dataLength(first.Format, int(first.Width), 1)
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: %s %dx%d", ErrSizeOverflow, first.Format, first.Width, first.Height)
	}
	if hdr.PitchOrLinearSize, err = u32FromInt(size); err != nil {
		return nil, err
	}

	out := &DDS{Header: hdr}
	if layers == 1 || cubemap {
		if pf, ok := legacyPixelFormat(first.Format); ok {
			pf.Size = hdr.PixelFormat.Size
			hdr.PixelFormat = pf
			out.Data = t.concat()
			return out, nil
		}
	}

	dxgi, ok := dxgiFormat(first.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %s with %d layers", ErrUnsupportedFormat, first.Format, layers)
	}

	dx10 := &DX10Header{
		DXGIFormat:        dxgi,
		ResourceDimension: dx10ResourceTexture2D,
		MiscFlags2:        dx10AlphaStraight,
	}
	if first.Format == FormatDXT1 || first.Format == FormatDXT1a {
		dx10.MiscFlags2 = dx10AlphaPremultiplied
	}
	if cubemap {
		dx10.MiscFlag = dx10MiscTextureCube
		dx10.ArraySize = 1
	} else {
		if dx10.ArraySize, err = u32FromInt(layers); err != nil {
			return nil, err
		}
	}

	hdr.PixelFormat.Flags = bcn.DDSPFFourCC
	hdr.PixelFormat.FourCC = makeFourCC('D', 'X', '1', '0')
	out.DX10 = dx10
	out.Data = t.concat()
	return out, nil
}

// concat joins all mip payloads in subtexture-then-mip order.
func (t *Texture) concat() []byte {
	total := 0
	for i := range t.Subtextures {
		for j := range t.Subtextures[i].Mipmaps {
			total += len(t.Subtextures[i].Mipmaps[j].Data)
		}
	}

	data := make([]byte, 0, total)
	for i := range t.Subtextures {
		for j := range t.Subtextures[i].Mipmaps {
			data = append(data, t.Subtextures[i].Mipmaps[j].Data...)
		}
	}

	return data
}

// Write serializes the container: magic, header, optional DX10 header, data.
func (d *DDS) Write(w io.Writer) error {
	if err := bcn.WriteDDSMagic(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDDSMagic, err)
	}
	if err := bcn.WriteDDSHeader(w, d.Header); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDDSHeader, err)
	}
	if d.DX10 != nil {
		if err := binary.Write(w, binary.LittleEndian, d.DX10); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteDX10Header, err)
		}
	}
	if _, err := w.Write(d.Data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteData, err)
	}

	return nil
}

// WriteDDSFile writes t as a DDS file at path.
func WriteDDSFile(path string, t *Texture) error {
	d, err := t.DDS()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}
	defer func() { _ = f.Close() }()

	return d.Write(f)
}

// legacyPixelFormat returns the DDS_PIXELFORMAT describing f without the
// extended header. Masks follow the byte order of the atlas payloads.
func legacyPixelFormat(f PixelFormat) (bcn.DDSPixelFormat, bool) {
	var pf bcn.DDSPixelFormat
	switch f {
	case FormatA8:
		pf.Flags = ddpfAlpha
		pf.RGBBitCount = 8
		pf.ABitMask = 0xff
	case FormatRGB8:
		pf.Flags = bcn.DDSPFRGB
		pf.RGBBitCount = 24
		pf.RBitMask = 0x0000ff
		pf.GBitMask = 0x00ff00
		pf.BBitMask = 0xff0000
	case FormatRGBA8:
		pf.Flags = bcn.DDSPFRGB | bcn.DDSPFAlphaPixels
		pf.RGBBitCount = 32
		pf.RBitMask = 0x000000ff
		pf.GBitMask = 0x0000ff00
		pf.BBitMask = 0x00ff0000
		pf.ABitMask = 0xff000000
	case FormatRGB5:
		pf.Flags = bcn.DDSPFRGB
		pf.RGBBitCount = 16
		pf.RBitMask = 0xf800
		pf.GBitMask = 0x07e0
		pf.BBitMask = 0x001f
	case FormatRGB5A1:
		pf.Flags = bcn.DDSPFRGB | bcn.DDSPFAlphaPixels
		pf.RGBBitCount = 16
		pf.RBitMask = 0x7c00
		pf.GBitMask = 0x03e0
		pf.BBitMask = 0x001f
		pf.ABitMask = 0x8000
	case FormatRGBA4:
		pf.Flags = bcn.DDSPFRGB | bcn.DDSPFAlphaPixels
		pf.RGBBitCount = 16
		pf.RBitMask = 0x0f00
		pf.GBitMask = 0x00f0
		pf.BBitMask = 0x000f
		pf.ABitMask = 0xf000
	case FormatL8:
		pf.Flags = bcn.DDSPFLuminance
		pf.RGBBitCount = 8
		pf.RBitMask = 0xff
	case FormatL8A8:
		pf.Flags = bcn.DDSPFLuminance | bcn.DDSPFAlphaPixels
		pf.RGBBitCount = 16
		pf.RBitMask = 0x00ff
		pf.ABitMask = 0xff00
	case FormatDXT1, FormatDXT1a:
		pf.Flags = bcn.DDSPFFourCC
		pf.FourCC = makeFourCC('D', 'X', 'T', '1')
	case FormatDXT3:
		pf.Flags = bcn.DDSPFFourCC
		pf.FourCC = makeFourCC('D', 'X', 'T', '3')
	case FormatDXT5:
		pf.Flags = bcn.DDSPFFourCC
		pf.FourCC = makeFourCC('D', 'X', 'T', '5')
	case FormatATI1:
		pf.Flags = bcn.DDSPFFourCC
		pf.FourCC = makeFourCC('A', 'T', 'I', '1')
	case FormatATI2:
		pf.Flags = bcn.DDSPFFourCC
		pf.FourCC = makeFourCC('A', 'T', 'I', '2')
	default:
		return pf, false
	}

	return pf, true
}

// dxgiFormat maps f to a DXGI format with the same payload layout.
func dxgiFormat(f PixelFormat) (uint32, bool) {
	switch f {
	case FormatA8:
		return dxgiA8UNorm, true
	case FormatRGBA8:
		return dxgiR8G8B8A8UNorm, true
	case FormatRGB5:
		return dxgiB5G6R5UNorm, true
	case FormatRGB5A1:
		return dxgiB5G5R5A1UNorm, true
	case FormatRGBA4:
		return dxgiB4G4R4A4UNorm, true
	case FormatDXT1, FormatDXT1a:
		return dxgiBC1UNorm, true
	case FormatDXT3:
		return dxgiBC2UNorm, true
	case FormatDXT5:
		return dxgiBC3UNorm, true
	case FormatATI1:
		return dxgiBC4UNorm, true
	case FormatATI2:
		return dxgiBC5UNorm, true
	case FormatL8:
		return dxgiR8UNorm, true
	case FormatL8A8:
		return dxgiR8G8UNorm, true
	case FormatBC7:
		return dxgiBC7UNorm, true
	case FormatBC6H:
		return dxgiBC6HTypeless, true
	default:
		return 0, false
	}
}

func makeFourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

func intToFourCC(value uint32) string {
	return string([]byte{
		byte(value & 0xff),
		byte((value >> 8) & 0xff),
		byte((value >> 16) & 0xff),
		byte((value >> 24) & 0xff),
	})
}
