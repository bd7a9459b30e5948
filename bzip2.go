// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// bzip2Filter reads bzip2 streams. The fourth magic byte is the block size
// ('1' to '9').
//
// https://github.com/dsnet/compress/blob/master/doc/bzip2-format.pdf
var bzip2Filter = filter{
	Name:       "bz2",
	MagicBytes: bzip2BlockSizes(),
	Decompress: func(src io.Reader) (io.Reader, error) {
		return bzip2.NewReader(src, nil)
	},
}

func bzip2BlockSizes() [][]byte {
	magic := make([][]byte, 0, 9)
	for level := byte('1'); level <= '9'; level++ {
		magic = append(magic, []byte{'B', 'Z', 'h', level})
	}
	return magic
}
