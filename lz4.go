// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Filter reads lz4 frames.
//
// https://github.com/lz4/lz4/blob/dev/doc/lz4_Frame_format.md
var lz4Filter = filter{
	Name:       "lz4",
	MagicBytes: [][]byte{{0x04, 0x22, 0x4d, 0x18}},
	Decompress: func(src io.Reader) (io.Reader, error) {
		return lz4.NewReader(src), nil
	},
}
