// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package txp

import (
	"fmt"
	"image"

	"github.com/woozymasta/bcn"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ImageOptions configures raster decoding of block-compressed payloads.
type ImageOptions struct {
	// DecodeOptions are passed to the BCn decoder (e.g. Workers).
	DecodeOptions *bcn.DecodeOptions
}

// Image returns m as a displayable image. It reports false when the format
// has no raster form here (anything but RGB8, RGBA8, L8, L8A8 and the DXT
// family) or when the payload is too short for the declared size.
func (m *Mipmap) Image() (image.Image, bool) {
	return m.ImageWithOptions(nil)
}

// ImageWithOptions is Image with explicit decoder options. Nil opts uses
// default decoding.
func (m *Mipmap) ImageWithOptions(opts *ImageOptions) (image.Image, bool) {
	w, h := int(m.Width), int(m.Height)
	if w <= 0 || h <= 0 {
		return nil, false
	}

	want := dataLength(m.Format, w, h)
	if want < 0 || len(m.Data) < want {
		return nil, false
	}
	rect := image.Rect(0, 0, w, h)

	switch m.Format {
	case FormatRGB8:
		img := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(img.Pix); i, j = i+4, j+3 {
			img.Pix[i] = m.Data[j]
			img.Pix[i+1] = m.Data[j+1]
			img.Pix[i+2] = m.Data[j+2]
			img.Pix[i+3] = 0xff
		}
		return img, true

	case FormatRGBA8:
		img := image.NewNRGBA(rect)
		copy(img.Pix, m.Data)
		return img, true

	case FormatL8:
		img := image.NewGray(rect)
		copy(img.Pix, m.Data)
		return img, true

	case FormatL8A8:
		img := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(img.Pix); i, j = i+4, j+2 {
			img.Pix[i] = m.Data[j]
			img.Pix[i+1] = m.Data[j]
			img.Pix[i+2] = m.Data[j]
			img.Pix[i+3] = m.Data[j+1]
		}
		return img, true

	case FormatDXT1, FormatDXT1a, FormatDXT3, FormatDXT5:
		img, err := decodeBlocks(m, opts)
		if err != nil {
			return nil, false
		}
		return img, true

	default:
		return nil, false
	}
}

// decodeBlocks runs the BCn decoder over the payload of m.
func decodeBlocks(m *Mipmap, opts *ImageOptions) (*image.NRGBA, error) {
	format := bcnFormat(m.Format)
	if format == bcn.FormatUnknown || !m.Format.BlockCompressed() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, m.Format)
	}

	w, h := int(m.Width), int(m.Height)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty %dx%d mipmap", ErrDecodeImage, w, h)
	}
	want := dataLength(m.Format, w, h)
	if want < 0 {
		return nil, fmt.Errorf("%w: %s %dx%d", ErrSizeOverflow, m.Format, w, h)
	}
	if len(m.Data) < want {
		return nil, fmt.Errorf("%w: %s %dx%d needs %d bytes, have %d", ErrPayloadSize, m.Format, w, h, want, len(m.Data))
	}

	var decOpts *bcn.DecodeOptions
	if opts != nil {
		decOpts = opts.DecodeOptions
	}

	img, err := bcn.DecodeImageWithOptions(m.Data[:want], w, h, format, decOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}

	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}

	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// FlipVertical returns a copy of img mirrored top to bottom. Atlas payloads
// store rows bottom-up, so extracted images are flipped before display.
func FlipVertical(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	// maps source (x, y) to (x - minX, minY + height - y)
	s2d := f64.Aff3{
		1, 0, -float64(b.Min.X),
		0, -1, float64(b.Min.Y + b.Dy()),
	}
	draw.NearestNeighbor.Transform(dst, s2d, img, b, draw.Src, nil)
	return dst
}
