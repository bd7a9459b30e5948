// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"io"

	"github.com/ulikunitz/xz"
)

// xzFilter reads xz streams.
//
// https://tukaani.org/xz/xz-file-format-1.0.4.txt
var xzFilter = filter{
	Name:       "xz",
	MagicBytes: [][]byte{{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	Decompress: func(src io.Reader) (io.Reader, error) {
		return xz.NewReader(src)
	},
}
