// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package txp

import "fmt"

// cubeFaces is the subtexture count that marks a texture as a cubemap.
const cubeFaces = 6

// Atlas is a parsed texture atlas. Textures keep their on-disk table order.
type Atlas struct {
	Textures []Texture
}

// Texture is one logical texture: a single image, an array or a cubemap.
type Texture struct {
	Subtextures []Subtexture
}

// Subtexture is one layer of a texture with its mip chain, largest first.
type Subtexture struct {
	Mipmaps []Mipmap
}

// Mipmap is one resolution level of a subtexture.
//
// Data holds exactly the bytes declared by the record; it is not checked
// against Width, Height and Format. Unless the atlas was parsed with
// ParseOptions.CopyData, Data aliases the buffer passed to Parse.
type Mipmap struct {
	Data   []byte
	ID     uint32
	Width  uint32
	Height uint32
	Format PixelFormat
}

// IsCubemap reports whether t has exactly six subtextures.
func (t *Texture) IsCubemap() bool {
	return len(t.Subtextures) == cubeFaces
}

// IsYCbCr reports whether t is a single two-plane YCbCr subtexture.
func (t *Texture) IsYCbCr() bool {
	return len(t.Subtextures) == 1 && t.Subtextures[0].IsYCbCr()
}

// IsYCbCr reports whether s holds a luma plane and a chroma plane, both ATI2.
func (s *Subtexture) IsYCbCr() bool {
	if len(s.Mipmaps) != 2 {
		return false
	}
	for i := range s.Mipmaps {
		if s.Mipmaps[i].Format != FormatATI2 {
			return false
		}
	}

	return true
}

// first returns the largest mipmap of the first subtexture.
func (t *Texture) first() (*Mipmap, bool) {
	if len(t.Subtextures) == 0 || len(t.Subtextures[0].Mipmaps) == 0 {
		return nil, false
	}

	return &t.Subtextures[0].Mipmaps[0], true
}

func (a *Atlas) String() string {
	return fmt.Sprintf("Atlas: %d texture(s)", len(a.Textures))
}

func (t *Texture) String() string {
	m, ok := t.first()
	if !ok {
		return fmt.Sprintf("Texture: %d subtexture(s)", len(t.Subtextures))
	}

	return fmt.Sprintf("Texture: %d subtexture(s) %s %dx%d", len(t.Subtextures), m.Format, m.Width, m.Height)
}

func (s *Subtexture) String() string {
	if len(s.Mipmaps) == 0 {
		return "Subtexture: 0 mipmap(s)"
	}

	m := &s.Mipmaps[0]
	return fmt.Sprintf("Subtexture: %d mipmap(s) %s %dx%d", len(s.Mipmaps), m.Format, m.Width, m.Height)
}

func (m *Mipmap) String() string {
	return fmt.Sprintf("Mipmap %dx%d %s", m.Width, m.Height, m.Format)
}
