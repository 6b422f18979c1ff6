package txp

import (
	"encoding/binary"
	"testing"
)

// atlasBuilder lays out atlas records at arbitrary positions for tests.
type atlasBuilder struct {
	order binary.ByteOrder
	buf   []byte
}

func newAtlasBuilder(order binary.ByteOrder) *atlasBuilder {
	return &atlasBuilder{order: order}
}

func (b *atlasBuilder) pos() int { return len(b.buf) }

func (b *atlasBuilder) u32(v uint32) {
	var tmp [4]byte
	b.order.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *atlasBuilder) magic(id sectionID) {
	if b.order == binary.BigEndian {
		b.buf = append(b.buf, byte(id), 'P', 'X', 'T')
		return
	}
	b.buf = append(b.buf, 'T', 'X', 'P', byte(id))
}

// patch overwrites the u32 at a table slot.
func (b *atlasBuilder) patch(table, index, off int) {
	b.order.PutUint32(b.buf[table+index*4:], uint32(off))
}

// atlas writes the atlas header at the current position (tests keep it at 0)
// with count zeroed table slots and returns the table position.
func (b *atlasBuilder) atlas(count int) int {
	b.magic(sectionAtlas)
	b.u32(uint32(count))
	b.u32(0)
	table := b.pos()
	for i := 0; i < count; i++ {
		b.u32(0)
	}
	return table
}

type testMip struct {
	data     []byte
	width    uint32
	height   uint32
	formatID uint32
	id       uint32
}

func (b *atlasBuilder) mipmap(m testMip) int {
	off := b.pos()
	b.magic(sectionMipmap)
	b.u32(m.width)
	b.u32(m.height)
	b.u32(m.formatID)
	b.u32(m.id)
	b.u32(uint32(len(m.data)))
	b.buf = append(b.buf, m.data...)
	return off
}

func (b *atlasBuilder) texture(mips ...int) int {
	off := b.pos()
	b.magic(sectionTexture)
	b.u32(uint32(len(mips)))
	b.u32(0)
	for _, m := range mips {
		b.u32(uint32(m))
	}
	return off
}

// array writes a texture array header followed by the flat list of mip
// offsets, layer after layer.
func (b *atlasBuilder) array(total uint32, depth byte, mips ...int) int {
	off := b.pos()
	b.magic(sectionArray)
	b.u32(total)
	b.u32(uint32(depth)<<8 | 0x01)
	for _, m := range mips {
		b.u32(uint32(m))
	}
	return off
}

// mips writes n RGBA8 1x1 mipmaps with ids first..first+n-1.
func (b *atlasBuilder) mips(n int, first uint32) []int {
	offs := make([]int, n)
	for i := range offs {
		id := first + uint32(i)
		offs[i] = b.mipmap(testMip{width: 1, height: 1, formatID: 2, id: id, data: []byte{byte(id), 0, 0, 0xff}})
	}
	return offs
}

// singleTextureAtlas builds an atlas holding one simple texture with the given mips.
func singleTextureAtlas(t *testing.T, order binary.ByteOrder, mips ...testMip) []byte {
	t.Helper()

	b := newAtlasBuilder(order)
	table := b.atlas(1)
	offs := make([]int, len(mips))
	for i, m := range mips {
		offs[i] = b.mipmap(m)
	}
	b.patch(table, 0, b.texture(offs...))
	return b.buf
}

// innermostParseError returns the deepest *ParseError in err's chain.
func innermostParseError(err error) *ParseError {
	var last *ParseError
	for err != nil {
		if pe, ok := err.(*ParseError); ok {
			last = pe
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return last
}
