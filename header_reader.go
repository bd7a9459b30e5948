// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// peekHeader reads up to size bytes of r for format and filter detection. The
// returned stream yields the complete input, header included. Inputs shorter
// than size result in a short header, read errors other than io.EOF are fatal.
func peekHeader(r io.Reader, size int) (io.Reader, []byte, error) {
	header := make([]byte, size)
	n, err := fillBlock(r, header)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("cannot read header: %w", err)
	}
	header = header[:n]
	return io.MultiReader(bytes.NewReader(header), r), header, nil
}
