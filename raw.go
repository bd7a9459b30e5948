// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"fmt"
	"io"
	"regexp"
	"runtime"
	"strings"
	"unicode/utf8"
)

// fileExtensionRaw is the format of a filtered stream that contains no archive.
const fileExtensionRaw = "raw"

// rawWalker exposes a decompressed stream as a single regular file.
type rawWalker struct {
	name string
	src  io.Reader
	done bool
}

// newRawWalker returns a walker for the decompressed stream src. The name of the
// entry is derived from the source name without the filter extensions.
func newRawWalker(src io.Reader, sourceName string, filters []string) *rawWalker {
	exts := make([]string, len(filters))
	for i, f := range filters {
		exts[i] = "." + f
	}
	return &rawWalker{name: determineOutputName(sourceName, exts), src: src}
}

// Type returns the name of the raw format.
func (w *rawWalker) Type() string {
	return fileExtensionRaw
}

// Streaming returns true, the payload is the stream itself.
func (w *rawWalker) Streaming() bool {
	return true
}

// Next returns the single entry of the stream.
func (w *rawWalker) Next() (archiveEntry, error) {
	if w.done {
		return nil, io.EOF
	}
	w.done = true
	return &rawEntry{name: w.name, src: w.src}, nil
}

// rawEntry is the decompressed content of a filtered stream.
type rawEntry struct {
	name string
	src  io.Reader
}

// Header returns the metadata of the entry. Size is unknown until the stream is
// decompressed.
func (e *rawEntry) Header() *Entry {
	return &Entry{
		Pathname: e.name,
		Size:     -1,
		Type:     EntryRegular,
		ModTime:  now(),
		Uid:      -1,
		Gid:      -1,
	}
}

// Open returns the decompressed stream.
func (e *rawEntry) Open() (io.ReadCloser, error) {
	return &noopReaderCloser{e.src}, nil
}

// init prepares the filename restriction regex
func init() {
	namingRestrictions = []nameRestriction{
		{"empty name", regexp.MustCompile(`^$`)},
		{"current directory", regexp.MustCompile(`^\.$`)},
		{"parent directory", regexp.MustCompile(`^\.\.$`)},
		{"maximum length 255", regexp.MustCompile(`^.{256,}$`)},
		{"limit to first 255 ascii characters", regexp.MustCompile(`[^\x00-\xFF]`)},
		{"exclude line break, feed and tab", regexp.MustCompile(`[\x0a\x0d\x09]`)},
	}

	if runtime.GOOS != "windows" {

		// regex with invalid unix filesystem characters, allowing unicode (128-255), excluding following character: / null byte backslash
		namingRestrictions = append(namingRestrictions,
			nameRestriction{"invalid character in filename (unix): null byte, slash, backslash", regexp.MustCompile(`[\x00/\\]`)},
		)

	}

	// check for invalid characters
	if runtime.GOOS == "windows" {

		// regex with invalid windows filesystem characters, allowing unicode (128-255), excluding control characters, and the following characters: <>:"/\\|?*e
		// https://docs.microsoft.com/en-us/windows/win32/fileio/naming-a-file
		namingRestrictions = append(namingRestrictions, nameRestriction{
			"invalid characters (windows)", regexp.MustCompile(`[\x00-\x1f<>:"/\\|?*]`),
		})

		// known reserved names on windows, "(?i)" is case-insensitive
		namingRestrictions = append(namingRestrictions,
			nameRestriction{"reserved name", regexp.MustCompile(`^(?i)CON$`)},
			nameRestriction{"reserved name", regexp.MustCompile(`^(?i)PRN$`)},
			nameRestriction{"reserved name", regexp.MustCompile(`^(?i)AUX$`)},
			nameRestriction{"reserved name", regexp.MustCompile(`^(?i)NUL$`)},
			nameRestriction{"reserved name", regexp.MustCompile(`^(?i)COM[0-9]+$`)},
			nameRestriction{"reserved name", regexp.MustCompile(`^(?i)LPT[0-9]+$`)},
			nameRestriction{"reserved name", regexp.MustCompile(`^(\s|\.)+$`)})
	}

}

// nameRestriction is a struct that contains the name of the restriction and the regex to check for it
type nameRestriction struct {
	RestrictionName string
	Regex           *regexp.Regexp
}

// namingRestrictions is a list of restrictions for filenames, depending on the operating system
var namingRestrictions []nameRestriction

const (
	// defaultDecompressionName is the default name for the extracted content
	defaultDecompressionName = "unarchive-decompressed-content"

	// defaultDecompressedSuffix is the suffix for the extracted content if
	// the filename does not end with a file extension
	defaultDecompressedSuffix = "decompressed"
)

// determineOutputName determines the name of decompressed content from the name of
// the input and the extensions of the filters, outermost first.
func determineOutputName(inputName string, fileExts []string) string {

	// is src for decompression a file?
	if len(inputName) == 0 {
		return defaultDecompressionName
	}

	// start with the input name
	newName := inputName

	// remove file extensions
	for _, ext := range fileExts {
		if strings.HasSuffix(strings.ToLower(newName), strings.ToLower(ext)) {
			newName = newName[:len(newName)-len(ext)]
		}
	}

	// check if file extension has been removed, if not, add a suffix
	if newName == inputName {
		newName = fmt.Sprintf("%s.%s", inputName, defaultDecompressedSuffix)
	}

	// check newName is a valid utf8 string
	if !utf8.ValidString(newName) {
		return defaultDecompressionName
	}

	// check if the new filename without the extension is valid and does not violate
	// any restrictions for the operating system
	for _, restriction := range namingRestrictions {
		if restriction.Regex.FindStringIndex(newName) != nil {
			return defaultDecompressionName
		}
	}

	// return the new name
	return newName
}
