// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package txp

// maxMipLevels bounds mip chains read from untrusted container headers.
const maxMipLevels = 32

// mipDimension calculates the dimension of a mipmap level.
func mipDimension(base uint32, level int) uint32 {
	result := base >> uint(level)
	if result < 1 {
		return 1
	}

	return result
}
