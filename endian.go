// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package txp

import (
	"encoding/binary"
	"fmt"
)

// sectionID is the fourth magic byte naming a record kind.
type sectionID byte

const (
	sectionMipmap  sectionID = 2
	sectionAtlas   sectionID = 3
	sectionTexture sectionID = 4
	sectionArray   sectionID = 5
)

const magicSize = 4

// detectByteOrder matches "TXP<id>" (little-endian record) or its reverse
// "<id>PXT" (big-endian record) at the start of window.
func detectByteOrder(window []byte, id sectionID) (binary.ByteOrder, error) {
	if len(window) < magicSize {
		return nil, fmt.Errorf("%w: magic needs %d bytes, have %d", ErrBufferTooShort, magicSize, len(window))
	}

	b := window[:magicSize]
	switch {
	case b[0] == 'T' && b[1] == 'X' && b[2] == 'P' && b[3] == byte(id):
		return binary.LittleEndian, nil
	case b[0] == byte(id) && b[1] == 'P' && b[2] == 'X' && b[3] == 'T':
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: want section %d, got % x", ErrMagicMismatch, id, b)
	}
}
