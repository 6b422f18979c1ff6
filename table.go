// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package txp

import (
	"encoding/binary"
	"fmt"
)

// cursor reads fixed-width fields from buf starting at off.
type cursor struct {
	order binary.ByteOrder
	buf   []byte
	off   int
}

// u32 reads one 32-bit field and advances the cursor.
func (c *cursor) u32() (uint32, error) {
	end, ok := spanEnd(c.off, 4, len(c.buf))
	if !ok {
		return 0, fmt.Errorf("%w: u32 at 0x%x", ErrBufferTooShort, c.off)
	}

	v := c.order.Uint32(c.buf[c.off:end])
	c.off = end
	return v, nil
}

// lengthPrefixed reads a u32 length followed by that many bytes. The
// returned slice aliases buf and has its capacity clipped to its length.
func (c *cursor) lengthPrefixed() ([]byte, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}

	end, ok := spanEnd(c.off, uint64(n), len(c.buf))
	if !ok {
		return nil, fmt.Errorf("%w: payload of %d bytes at 0x%x, buffer is %d bytes", ErrBufferTooShort, n, c.off, len(c.buf))
	}

	data := c.buf[c.off:end:end]
	c.off = end
	return data, nil
}

// offsetTable reads count absolute offsets at the cursor and parses one
// record at each of them. Offsets count from the start of c.buf, not from
// the table, and the cursor advances by the table width only. Results keep
// table order; the first failing record aborts the whole table.
func offsetTable[T any](c *cursor, count uint32, parse func(off int) (T, error)) ([]T, error) {
	tableEnd, ok := spanEnd(c.off, uint64(count)*4, len(c.buf))
	if !ok {
		return nil, fmt.Errorf("%w: table of %d offsets at 0x%x", ErrBufferTooShort, count, c.off)
	}

	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i] = c.order.Uint32(c.buf[c.off+i*4:])
	}
	c.off = tableEnd

	out := make([]T, 0, count)
	for i, off := range offsets {
		if uint64(off) >= uint64(len(c.buf)) {
			return nil, fmt.Errorf("%w: entry %d points to 0x%x, buffer is %d bytes", ErrOffsetOutOfRange, i, off, len(c.buf))
		}

		v, err := parse(int(off))
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, v)
	}

	return out, nil
}
