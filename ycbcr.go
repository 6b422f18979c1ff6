// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package txp

import (
	"fmt"
	"image"
)

// BT.709 YCbCr to RGB coefficients.
const (
	bt709CrR = 1.5748
	bt709CbG = 0.1873
	bt709CrG = 0.4681
	bt709CbB = 1.8556
)

// YCbCrImage converts a two-plane subtexture into interleaved color pixels.
// Level 0 carries luma in its first channel and alpha in its second;
// level 1 carries Cb and Cr at reduced resolution. Both levels must be ATI2.
func (s *Subtexture) YCbCrImage() (*image.NRGBA, error) {
	return s.YCbCrImageWithOptions(nil)
}

// YCbCrImageWithOptions is YCbCrImage with explicit decoder options.
func (s *Subtexture) YCbCrImageWithOptions(opts *ImageOptions) (*image.NRGBA, error) {
	if !s.IsYCbCr() {
		return nil, fmt.Errorf("%w: %d mipmap(s)", ErrNotYCbCr, len(s.Mipmaps))
	}

	luma, err := decodeBlocks(&s.Mipmaps[0], opts)
	if err != nil {
		return nil, fmt.Errorf("luma plane: %w", err)
	}
	chroma, err := decodeBlocks(&s.Mipmaps[1], opts)
	if err != nil {
		return nil, fmt.Errorf("chroma plane: %w", err)
	}

	lb, cb := luma.Bounds(), chroma.Bounds()
	w, h := lb.Dx(), lb.Dy()
	cw, ch := cb.Dx(), cb.Dy()

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		cy := min(y*ch/h, ch-1)
		for x := 0; x < w; x++ {
			cx := min(x*cw/w, cw-1)

			li := luma.PixOffset(lb.Min.X+x, lb.Min.Y+y)
			ci := chroma.PixOffset(cb.Min.X+cx, cb.Min.Y+cy)

			yv := float64(luma.Pix[li])
			u := float64(chroma.Pix[ci]) - 128
			v := float64(chroma.Pix[ci+1]) - 128

			di := dst.PixOffset(x, y)
			dst.Pix[di] = clampByte(yv + bt709CrR*v)
			dst.Pix[di+1] = clampByte(yv - bt709CbG*u - bt709CrG*v)
			dst.Pix[di+2] = clampByte(yv + bt709CbB*u)
			dst.Pix[di+3] = luma.Pix[li+1]
		}
	}

	return dst, nil
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
