package txp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/bcn"
)

// ddsPrefixSize is the DDS magic plus the legacy header.
const ddsPrefixSize = 4 + 124

// dx10HeaderSize is the byte size of the extended header.
const dx10HeaderSize = 20

func layeredTexture(format PixelFormat, width, height uint32, layers, mips int) *Texture {
	tex := &Texture{Subtextures: make([]Subtexture, layers)}
	for l := range tex.Subtextures {
		for m := 0; m < mips; m++ {
			w, h := mipDimension(width, m), mipDimension(height, m)
			data := make([]byte, dataLength(format, int(w), int(h)))
			for i := range data {
				data[i] = byte(l*16 + m)
			}
			tex.Subtextures[l].Mipmaps = append(tex.Subtextures[l].Mipmaps, Mipmap{
				Width: w, Height: h, Format: format, Data: data,
			})
		}
	}
	return tex
}

func TestDDSLegacyHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format PixelFormat
		fourCC string
		flags  uint32
		bits   uint32
	}{
		{name: "dxt1", format: FormatDXT1, fourCC: "DXT1", flags: bcn.DDSPFFourCC},
		{name: "dxt1a", format: FormatDXT1a, fourCC: "DXT1", flags: bcn.DDSPFFourCC},
		{name: "dxt3", format: FormatDXT3, fourCC: "DXT3", flags: bcn.DDSPFFourCC},
		{name: "dxt5", format: FormatDXT5, fourCC: "DXT5", flags: bcn.DDSPFFourCC},
		{name: "ati1", format: FormatATI1, fourCC: "ATI1", flags: bcn.DDSPFFourCC},
		{name: "ati2", format: FormatATI2, fourCC: "ATI2", flags: bcn.DDSPFFourCC},
		{name: "rgb8", format: FormatRGB8, flags: bcn.DDSPFRGB, bits: 24},
		{name: "rgba8", format: FormatRGBA8, flags: bcn.DDSPFRGB | bcn.DDSPFAlphaPixels, bits: 32},
		{name: "l8", format: FormatL8, flags: bcn.DDSPFLuminance, bits: 8},
		{name: "a8", format: FormatA8, flags: ddpfAlpha, bits: 8},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tex := layeredTexture(tc.format, 16, 8, 1, 3)
			d, err := tex.DDS()
			if err != nil {
				t.Fatalf("DDS: %v", err)
			}
			if d.DX10 != nil {
				t.Fatalf("unexpected DX10 header for %v", tc.format)
			}

			h := d.Header
			if h.Width != 16 || h.Height != 8 || h.MipMapCount != 3 {
				t.Fatalf("header %dx%d mips=%d", h.Width, h.Height, h.MipMapCount)
			}
			if h.PixelFormat.Flags != tc.flags {
				t.Fatalf("pixel format flags = 0x%x, want 0x%x", h.PixelFormat.Flags, tc.flags)
			}
			if tc.fourCC != "" && intToFourCC(h.PixelFormat.FourCC) != tc.fourCC {
				t.Fatalf("fourCC = %q, want %q", intToFourCC(h.PixelFormat.FourCC), tc.fourCC)
			}
			if h.PixelFormat.RGBBitCount != tc.bits {
				t.Fatalf("bit count = %d, want %d", h.PixelFormat.RGBBitCount, tc.bits)
			}
			if (h.Caps & bcn.DDSCapsMipmap) == 0 {
				t.Fatalf("mipmap caps missing")
			}
			if (h.Flags & bcn.DDSFlagMipmapCount) == 0 {
				t.Fatalf("mipmap count flag missing")
			}

			if !bytes.Equal(d.Data, tex.concat()) {
				t.Fatalf("data segment does not match payloads")
			}
		})
	}
}

func TestDDSPitchOrLinearSize(t *testing.T) {
	t.Parallel()

	d, err := layeredTexture(FormatDXT5, 16, 8, 1, 1).DDS()
	if err != nil {
		t.Fatalf("DDS: %v", err)
	}
	if (d.Header.Flags&bcn.DDSFlagLinearSize) == 0 || d.Header.PitchOrLinearSize != 128 {
		t.Fatalf("DXT5 linear size = %d flags=0x%x", d.Header.PitchOrLinearSize, d.Header.Flags)
	}

	d, err = layeredTexture(FormatRGB8, 16, 8, 1, 1).DDS()
	if err != nil {
		t.Fatalf("DDS: %v", err)
	}
	if (d.Header.Flags&bcn.DDSFlagPitch) == 0 || d.Header.PitchOrLinearSize != 48 {
		t.Fatalf("RGB8 pitch = %d flags=0x%x", d.Header.PitchOrLinearSize, d.Header.Flags)
	}
	if (d.Header.Flags & bcn.DDSFlagMipmapCount) != 0 {
		t.Fatalf("single mipmap texture carries a mipmap count flag")
	}
}

// hugeTexture is a single-mip texture with declared dimensions and no payload.
func hugeTexture(format PixelFormat, width, height uint32) *Texture {
	return &Texture{Subtextures: []Subtexture{{Mipmaps: []Mipmap{
		{Width: width, Height: height, Format: format},
	}}}}
}

func TestDDSCubemap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format PixelFormat
		layers int
		cube   bool
	}{
		{name: "dxt1-5-layers", format: FormatDXT1, layers: 5},
		{name: "dxt1-6-layers", format: FormatDXT1, layers: 6, cube: true},
		{name: "dxt1-7-layers", format: FormatDXT1, layers: 7},
		{name: "bc7-5-layers", format: FormatBC7, layers: 5},
		{name: "bc7-6-layers", format: FormatBC7, layers: 6, cube: true},
		{name: "bc7-7-layers", format: FormatBC7, layers: 7},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tex := layeredTexture(tc.format, 4, 4, tc.layers, 1)
			if got := tex.IsCubemap(); got != tc.cube {
				t.Fatalf("IsCubemap() = %v, want %v", got, tc.cube)
			}

			d, err := tex.DDS()
			if err != nil {
				t.Fatalf("DDS: %v", err)
			}

			wantCaps2 := uint32(0)
			if tc.cube {
				wantCaps2 = ddsCaps2Cubemap | ddsCaps2CubemapAllFaces
			}
			if d.Header.Caps2 != wantCaps2 {
				t.Fatalf("caps2 = 0x%x, want 0x%x", d.Header.Caps2, wantCaps2)
			}
			if tc.cube && (d.Header.Caps&bcn.DDSCapsComplex) == 0 {
				t.Fatalf("cubemap without complex caps")
			}
			if d.DX10 != nil && tc.cube != ((d.DX10.MiscFlag&dx10MiscTextureCube) != 0) {
				t.Fatalf("DX10 misc flag = 0x%x for %d layers", d.DX10.MiscFlag, tc.layers)
			}
			if len(d.Data) != tc.layers*len(tex.Subtextures[0].Mipmaps[0].Data) {
				t.Fatalf("data = %d bytes for %d layers", len(d.Data), tc.layers)
			}

			// the legacy header only carries DXT1 cubemaps; other layer counts need DX10
			if legacy := tc.format == FormatDXT1 && tc.cube; legacy != (d.DX10 == nil) {
				t.Fatalf("DX10 header present = %v for %d %s layers", d.DX10 != nil, tc.layers, tc.format)
			}
		})
	}
}

func TestDDSExtendedHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tex       *Texture
		dxgi      uint32
		arraySize uint32
		misc      uint32
		alpha     uint32
	}{
		{name: "bc7", tex: layeredTexture(FormatBC7, 8, 8, 1, 2), dxgi: dxgiBC7UNorm, arraySize: 1, alpha: dx10AlphaStraight},
		{name: "bc6h", tex: layeredTexture(FormatBC6H, 4, 4, 1, 1), dxgi: dxgiBC6HTypeless, arraySize: 1, alpha: dx10AlphaStraight},
		{name: "dxt5-array", tex: layeredTexture(FormatDXT5, 8, 8, 3, 2), dxgi: dxgiBC3UNorm, arraySize: 3, alpha: dx10AlphaStraight},
		{name: "dxt1-array", tex: layeredTexture(FormatDXT1, 8, 8, 2, 1), dxgi: dxgiBC1UNorm, arraySize: 2, alpha: dx10AlphaPremultiplied},
		{name: "bc7-cubemap", tex: layeredTexture(FormatBC7, 4, 4, 6, 1), dxgi: dxgiBC7UNorm, arraySize: 1, misc: dx10MiscTextureCube, alpha: dx10AlphaStraight},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d, err := tc.tex.DDS()
			if err != nil {
				t.Fatalf("DDS: %v", err)
			}
			if d.DX10 == nil {
				t.Fatalf("missing DX10 header")
			}
			if intToFourCC(d.Header.PixelFormat.FourCC) != "DX10" {
				t.Fatalf("fourCC = %q, want DX10", intToFourCC(d.Header.PixelFormat.FourCC))
			}

			want := DX10Header{
				DXGIFormat:        tc.dxgi,
				ResourceDimension: dx10ResourceTexture2D,
				MiscFlag:          tc.misc,
				ArraySize:         tc.arraySize,
				MiscFlags2:        tc.alpha,
			}
			if *d.DX10 != want {
				t.Fatalf("DX10 = %+v, want %+v", *d.DX10, want)
			}
		})
	}
}

func TestDDSErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tex     *Texture
		wantErr error
	}{
		{name: "no-subtextures", tex: &Texture{}, wantErr: ErrEmptyTexture},
		{name: "no-mipmaps", tex: &Texture{Subtextures: []Subtexture{{}}}, wantErr: ErrEmptyTexture},
		{name: "rgb8-array", tex: layeredTexture(FormatRGB8, 4, 4, 2, 1), wantErr: ErrUnsupportedFormat},
		{name: "unknown-format", tex: &Texture{Subtextures: []Subtexture{{Mipmaps: []Mipmap{{Width: 4, Height: 4}}}}}, wantErr: ErrUnsupportedFormat},
		{name: "huge-dxt5", tex: hugeTexture(FormatDXT5, 0xffffffff, 0xffffffff), wantErr: ErrSizeOverflow},
		{name: "huge-ati2", tex: hugeTexture(FormatATI2, 1<<31, 1<<31), wantErr: ErrSizeOverflow},
		{name: "huge-rgba8-pitch", tex: hugeTexture(FormatRGBA8, 0xffffffff, 1), wantErr: ErrSizeOverflow},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tc.tex.DDS(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDDSWriteLegacy(t *testing.T) {
	t.Parallel()

	tex := layeredTexture(FormatDXT5, 8, 8, 1, 2)
	d, err := tex.DDS()
	if err != nil {
		t.Fatalf("DDS: %v", err)
	}

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := buf.Len(), ddsPrefixSize+len(d.Data); got != want {
		t.Fatalf("written %d bytes, want %d", got, want)
	}

	r := bytes.NewReader(buf.Bytes())
	header, err := bcn.ReadDDSHeader(r)
	if err != nil {
		t.Fatalf("ReadDDSHeader: %v", err)
	}
	if header.Width != 8 || header.Height != 8 || header.MipMapCount != 2 {
		t.Fatalf("read back %dx%d mips=%d", header.Width, header.Height, header.MipMapCount)
	}
	if intToFourCC(header.PixelFormat.FourCC) != "DXT5" {
		t.Fatalf("fourCC = %q", intToFourCC(header.PixelFormat.FourCC))
	}
	if !bytes.Equal(buf.Bytes()[ddsPrefixSize:], tex.concat()) {
		t.Fatalf("payload mismatch after header")
	}
}

func TestDDSWriteExtended(t *testing.T) {
	t.Parallel()

	tex := layeredTexture(FormatATI2, 4, 4, 3, 1)
	d, err := tex.DDS()
	if err != nil {
		t.Fatalf("DDS: %v", err)
	}

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := buf.Len(), ddsPrefixSize+dx10HeaderSize+len(d.Data); got != want {
		t.Fatalf("written %d bytes, want %d", got, want)
	}

	var ext DX10Header
	if err := binary.Read(bytes.NewReader(buf.Bytes()[ddsPrefixSize:]), binary.LittleEndian, &ext); err != nil {
		t.Fatalf("read DX10 header: %v", err)
	}
	if ext.DXGIFormat != dxgiBC5UNorm || ext.ArraySize != 3 {
		t.Fatalf("DX10 = %+v", ext)
	}
	if !bytes.Equal(buf.Bytes()[ddsPrefixSize+dx10HeaderSize:], tex.concat()) {
		t.Fatalf("payload mismatch after headers")
	}
}

func TestWriteDDSFile(t *testing.T) {
	t.Parallel()

	atlas, err := Parse(readSample(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	dir := t.TempDir()
	for i := range atlas.Textures {
		path := filepath.Join(dir, "tex.dds")
		if err := WriteDDSFile(path, &atlas.Textures[i]); err != nil {
			t.Fatalf("WriteDDSFile(%d): %v", i, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if string(data[:4]) != "DDS " {
			t.Fatalf("texture %d: magic = %q", i, data[:4])
		}
		if want := ddsPrefixSize + len(atlas.Textures[i].concat()); len(data) != want {
			t.Fatalf("texture %d: file is %d bytes, want %d", i, len(data), want)
		}
	}

	err = WriteDDSFile(filepath.Join(dir, "missing", "tex.dds"), &atlas.Textures[0])
	if !errors.Is(err, ErrCreateFile) {
		t.Fatalf("expected ErrCreateFile, got %v", err)
	}
}

func BenchmarkDDSWrite(b *testing.B) {
	atlas, err := Parse(readSample(b))
	if err != nil {
		b.Fatalf("parse: %v", err)
	}
	tex := &atlas.Textures[0]

	b.ReportAllocs()
	b.SetBytes(int64(len(tex.concat())))
	b.ResetTimer()

	var buf bytes.Buffer
	for b.Loop() {
		buf.Reset()
		d, err := tex.DDS()
		if err != nil {
			b.Fatalf("DDS: %v", err)
		}
		if err := d.Write(&buf); err != nil {
			b.Fatalf("Write: %v", err)
		}
	}
}
