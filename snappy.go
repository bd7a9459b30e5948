// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"io"

	"github.com/golang/snappy"
)

// snappyFilter reads the snappy framing format, which starts with a stream
// identifier chunk.
var snappyFilter = filter{
	Name:       "sz",
	MagicBytes: [][]byte{[]byte("\xff\x06\x00\x00sNaPpY")},
	Decompress: func(src io.Reader) (io.Reader, error) {
		return snappy.NewReader(src), nil
	},
}
