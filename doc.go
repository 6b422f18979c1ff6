// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

/*
Package txp decodes TXP texture atlases, the packed multi-texture containers
used by game asset pipelines, and exports their textures as DDS, EDDS or
plain raster images.

An atlas is a tree of offset tables: the atlas lists textures, a texture
lists one subtexture (simple form) or several layers (array and cubemap
form), and every subtexture lists its mipmaps. Table entries are absolute
offsets into the whole input buffer. Each record starts with a "TXP<id>"
magic; a reversed magic marks a big-endian record, so byte order is decided
per record.

Parse works on an in-memory buffer, performs no I/O and either returns a
complete tree or an error naming the failing record and its offset. The
tree is read-only after parsing and is safe to share between goroutines.
*/
package txp
