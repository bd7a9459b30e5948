// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"io"

	"github.com/andybalholm/brotli"
)

// brotliFilter reads brotli streams. Brotli has no magic bytes, the filter is
// only selected by the extension of the source name.
var brotliFilter = filter{
	Name: "br",
	Decompress: func(src io.Reader) (io.Reader, error) {
		return brotli.NewReader(src), nil
	},
}
