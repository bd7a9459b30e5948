// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"io"
	"path/filepath"
	"strings"
)

// init indexes the filters and calculates the maximum header length.
func init() {
	availableFilters = make(map[string]filter, len(filterChain))
	for _, f := range filterChain {
		availableFilters[f.Name] = f
		for _, mb := range f.MagicBytes {
			if len(mb) > maxHeaderLength {
				maxHeaderLength = len(mb)
			}
		}
	}
	for _, f := range availableFormats {
		for _, mb := range f.MagicBytes {
			if len(mb)+f.Offset > maxHeaderLength {
				maxHeaderLength = len(mb) + f.Offset
			}
		}
	}
}

// maxFilterLayers is the maximum number of stacked filters, e.g. a gzip stream
// inside a xz stream.
const maxFilterLayers = 4

// decompressionFunc returns a reader that decompresses src.
type decompressionFunc func(src io.Reader) (io.Reader, error)

// headerCheck is a function that checks if the given header matches the expected magic bytes.
type headerCheck func([]byte) bool

// filter is a compression layer below an archive format.
type filter struct {
	// Name is the file extension of the filter and its part of archive type
	// names, e.g. "gz" in "tar.gz".
	Name string

	// MagicBytes identify the filter at the start of a stream. A filter without
	// magic bytes is only selected by the extension of the source name.
	MagicBytes [][]byte

	Decompress decompressionFunc
}

// sniffable is true if the filter can be detected from the stream header.
func (f filter) sniffable() bool {
	return len(f.MagicBytes) > 0
}

// filterChain lists the supported filters in the order they are sniffed.
var filterChain = []filter{
	gzipFilter,
	bzip2Filter,
	xzFilter,
	zstdFilter,
	lz4Filter,
	snappyFilter,
	zlibFilter,
	brotliFilter,
}

// availableFilters holds the filters of filterChain by name.
var availableFilters map[string]filter

// availableFormat describes an archive format.
type availableFormat struct {
	HeaderCheck headerCheck
	MagicBytes  [][]byte
	Offset      int
}

// availableFormats is the collection of supported archive formats, keyed by their
// file extension.
var availableFormats = map[string]availableFormat{
	fileExtension7zip: {
		HeaderCheck: is7zip,
		MagicBytes:  magicBytes7zip,
	},
	fileExtensionIso9660: {
		HeaderCheck: isIso9660,
		MagicBytes:  magicBytesIso9660,
		Offset:      offsetIso9660,
	},
	fileExtensionRar: {
		HeaderCheck: isRar,
		MagicBytes:  magicBytesRar,
	},
	fileExtensionTar: {
		HeaderCheck: isTar,
		MagicBytes:  magicBytesTar,
		Offset:      offsetTar,
	},
	fileExtensionZip: {
		HeaderCheck: isZip,
		MagicBytes:  magicBytesZip,
	},
}

// formatOrder is the order in which formats are sniffed.
var formatOrder = []string{
	fileExtensionTar,
	fileExtensionZip,
	fileExtensionRar,
	fileExtension7zip,
	fileExtensionIso9660,
}

// maxHeaderLength is the maximum header length of all formats and filters
var maxHeaderLength int

// detectFormat returns the extension of the format matching header or "".
func detectFormat(header []byte) string {
	for _, name := range formatOrder {
		if availableFormats[name].HeaderCheck(header) {
			return name
		}
	}
	return ""
}

// detectFilter returns the name of the filter matching header or "". Filters
// without magic bytes are matched against the extension of sourceName, if one is
// given.
func detectFilter(header []byte, sourceName string) string {
	for _, f := range filterChain {
		if f.sniffable() && matchesMagicBytes(header, 0, f.MagicBytes) {
			return f.Name
		}
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(sourceName)), ".")
	for _, f := range filterChain {
		if !f.sniffable() && ext == f.Name {
			return f.Name
		}
	}
	return ""
}

// IsKnownType returns true if name is a supported format, filter or combination
// of a format with filters, e.g. "tar.gz".
func IsKnownType(name string) bool {
	parts := strings.Split(strings.ToLower(name), ".")
	for i, p := range parts {
		if _, ok := availableFilters[p]; ok {
			continue
		}
		if _, ok := availableFormats[p]; ok && i == 0 {
			continue
		}
		return false
	}
	return len(name) > 0
}
