// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package txp

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
)

// ParseOptions configures atlas parsing.
type ParseOptions struct {
	// Logger receives one debug record per parsed section. Nil discards.
	Logger *slog.Logger
	// CopyData stores owned copies of mipmap payloads instead of slices of
	// the input buffer.
	CopyData bool
	// StrictLayers rejects texture arrays whose total mip count is not a
	// multiple of the layer count. By default the per-layer count is
	// truncated and trailing mips are ignored.
	StrictLayers bool
}

// Parse decodes a whole atlas from buf. On failure no atlas is returned;
// the error wraps a *ParseError chain down to the failing record.
//
// Table entries may point at the same record, and every entry produces its
// own value. N texture entries sharing one texture of M mipmaps cost
// 4*(N+M) input bytes but yield N*M Mipmap values (and N*M payload copies
// with ParseOptions.CopyData). Callers parsing untrusted input should bound
// len(buf) accordingly.
func Parse(buf []byte) (*Atlas, error) {
	return ParseWithOptions(buf, nil)
}

// ParseWithOptions decodes a whole atlas from buf with the given options.
// Nil opts uses defaults.
func ParseWithOptions(buf []byte, opts *ParseOptions) (*Atlas, error) {
	p := newParser(buf, opts)
	return p.atlas()
}

type parser struct {
	log  *slog.Logger
	buf  []byte
	opts ParseOptions
}

func newParser(buf []byte, opts *ParseOptions) *parser {
	p := &parser{buf: buf}
	if opts != nil {
		p.opts = *opts
	}

	p.log = p.opts.Logger
	if p.log == nil {
		p.log = slog.New(slog.DiscardHandler)
	}

	return p
}

// header reads the magic and two u32 fields shared by every container record.
func (p *parser) header(off int, id sectionID) (*cursor, uint32, uint32, error) {
	order, err := detectByteOrder(p.buf[off:], id)
	if err != nil {
		return nil, 0, 0, err
	}

	c := &cursor{order: order, buf: p.buf, off: off + magicSize}
	count, err := c.u32()
	if err != nil {
		return nil, 0, 0, err
	}
	extra, err := c.u32()
	if err != nil {
		return nil, 0, 0, err
	}

	return c, count, extra, nil
}

func (p *parser) atlas() (*Atlas, error) {
	c, count, reserved, err := p.header(0, sectionAtlas)
	if err != nil {
		return nil, section("atlas", 0, err)
	}
	p.log.Debug("atlas", "byteOrder", c.order, "textures", count, "reserved", reserved)

	textures, err := offsetTable(c, count, p.texture)
	if err != nil {
		return nil, section("atlas", 0, err)
	}

	return &Atlas{Textures: textures}, nil
}

// texture resolves a texture record as the simple form or, when the simple
// magic does not match, as the array form.
func (p *parser) texture(off int) (Texture, error) {
	tex, err := p.simpleTexture(off)
	if !errors.Is(err, errNotSimple) {
		return tex, err
	}

	tex, err = p.arrayTexture(off)
	if errors.Is(err, errNotArray) {
		return Texture{}, section("texture", off, fmt.Errorf("%w: neither texture (%d) nor array (%d) at 0x%x",
			ErrMagicMismatch, sectionTexture, sectionArray, off))
	}

	return tex, err
}

var (
	errNotSimple = errors.New("not a simple texture")
	errNotArray  = errors.New("not a texture array")
)

func (p *parser) simpleTexture(off int) (Texture, error) {
	c, mipCount, reserved, err := p.header(off, sectionTexture)
	if errors.Is(err, ErrMagicMismatch) {
		return Texture{}, errNotSimple
	}
	if err != nil {
		return Texture{}, section("texture", off, err)
	}
	p.log.Debug("texture", "offset", off, "byteOrder", c.order, "mipmaps", mipCount, "reserved", reserved)

	mipmaps, err := offsetTable(c, mipCount, p.mipmap)
	if err != nil {
		return Texture{}, section("texture", off, err)
	}

	return Texture{Subtextures: []Subtexture{{Mipmaps: mipmaps}}}, nil
}

func (p *parser) arrayTexture(off int) (Texture, error) {
	c, totalMips, mipData, err := p.header(off, sectionArray)
	if errors.Is(err, ErrMagicMismatch) {
		return Texture{}, errNotArray
	}
	if err != nil {
		return Texture{}, section("array", off, err)
	}

	depth := (mipData >> 8) & 0xff
	if depth == 0 {
		return Texture{}, section("array", off, fmt.Errorf("%w: mipdata 0x%08x", ErrInvalidDepth, mipData))
	}
	if p.opts.StrictLayers && totalMips%depth != 0 {
		return Texture{}, section("array", off, fmt.Errorf("%w: %d mips over %d layers", ErrUnevenLayers, totalMips, depth))
	}

	perLayer := totalMips / depth
	p.log.Debug("array", "offset", off, "byteOrder", c.order, "mipmaps", totalMips,
		"depth", depth, "perLayer", perLayer, "dropped", totalMips-perLayer*depth)

	subtextures := make([]Subtexture, 0, depth)
	for layer := uint32(0); layer < depth; layer++ {
		mipmaps, err := offsetTable(c, perLayer, p.mipmap)
		if err != nil {
			return Texture{}, section("array", off, fmt.Errorf("layer %d: %w", layer, err))
		}
		subtextures = append(subtextures, Subtexture{Mipmaps: mipmaps})
	}

	return Texture{Subtextures: subtextures}, nil
}

func (p *parser) mipmap(off int) (Mipmap, error) {
	m, err := p.readMipmap(off)
	if err != nil {
		return Mipmap{}, section("mipmap", off, err)
	}

	return m, nil
}

func (p *parser) readMipmap(off int) (Mipmap, error) {
	order, err := detectByteOrder(p.buf[off:], sectionMipmap)
	if err != nil {
		return Mipmap{}, err
	}

	c := &cursor{order: order, buf: p.buf, off: off + magicSize}
	var fields [4]uint32
	for i := range fields {
		if fields[i], err = c.u32(); err != nil {
			return Mipmap{}, err
		}
	}

	format, err := FormatFromID(fields[2])
	if err != nil {
		return Mipmap{}, err
	}

	data, err := c.lengthPrefixed()
	if err != nil {
		return Mipmap{}, err
	}
	if p.opts.CopyData {
		data = bytes.Clone(data)
	}

	m := Mipmap{
		Width:  fields[0],
		Height: fields[1],
		Format: format,
		ID:     fields[3],
		Data:   data,
	}
	p.log.Debug("mipmap", "offset", off, "byteOrder", order, "width", m.Width, "height", m.Height,
		"format", m.Format, "id", m.ID, "size", len(m.Data))

	return m, nil
}
