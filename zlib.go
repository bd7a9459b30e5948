// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// zlibFilter reads zlib streams. The first byte selects deflate with a 32K
// window, the second byte carries the compression level and the header checksum.
// Streams with a preset dictionary (FDICT) cannot be decoded and are not sniffed.
//
// https://www.ietf.org/rfc/rfc1950.txt
var zlibFilter = filter{
	Name: "zz",
	MagicBytes: [][]byte{
		{0x78, 0x01}, {0x78, 0x5e}, {0x78, 0x9c}, {0x78, 0xda},
	},
	Decompress: func(src io.Reader) (io.Reader, error) {
		return zlib.NewReader(src)
	},
}
