// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ArchiveReader is a streaming archive engine. It is opened once, walked entry by
// entry and closed once. Every method returns nil on success, a [*Warning] if the
// operation succeeded with a problem, or any other error if it failed.
type ArchiveReader interface {
	// EnableAllFormats enables every supported archive format.
	EnableAllFormats() error

	// EnableAllFilters enables every supported compression filter.
	EnableAllFilters() error

	// SetPassphrase sets a fixed passphrase for encrypted entries.
	SetPassphrase(passphrase string) error

	// SetPassphraseResolver registers a resolver that is asked for the passphrase
	// when an encrypted entry is read.
	SetPassphraseResolver(r PassphraseResolver) error

	// Open opens src. Data is returned in blocks of blockSize bytes.
	Open(ctx context.Context, src Source, blockSize int) error

	// NextHeader returns the next entry or io.EOF if there are no more entries.
	NextHeader() (*Entry, error)

	// ReadBlock returns the next block of the current entry and its offset in the
	// entry, or io.EOF if all data has been read. The block is only valid until
	// the next call.
	ReadBlock() ([]byte, int64, error)

	// SkipData discards the data of the current entry.
	SkipData() error

	// Close releases all resources of the reader.
	Close() error
}

// archiveReader is the default [ArchiveReader]. It stacks compression filters
// detected by their magic bytes and walks the archive format found beneath them.
type archiveReader struct {
	cfg        *Config
	allFormats bool
	allFilters bool
	keys       keyring

	closers   []io.Closer
	walker    archiveWalker
	typeName  string
	inputSize int64

	buf      []byte
	current  archiveEntry
	data     io.ReadCloser
	offset   int64
	dataDone bool
}

// NewArchiveReader returns the default [ArchiveReader] configured with cfg.
func NewArchiveReader(cfg *Config) ArchiveReader {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &archiveReader{cfg: cfg}
}

// EnableAllFormats enables tar, zip, rar, 7zip and iso9660.
func (r *archiveReader) EnableAllFormats() error {
	r.allFormats = true
	return nil
}

// EnableAllFilters enables all compression filters.
func (r *archiveReader) EnableAllFilters() error {
	r.allFilters = true
	return nil
}

// SetPassphrase sets the passphrase used for every encrypted entry.
func (r *archiveReader) SetPassphrase(passphrase string) error {
	r.keys.fixed = passphrase
	r.keys.hasFixed = true
	return nil
}

// SetPassphraseResolver sets the resolver for encrypted entries.
func (r *archiveReader) SetPassphraseResolver(resolver PassphraseResolver) error {
	if resolver == nil {
		return errors.New("passphrase resolver is nil")
	}
	r.keys.resolver = resolver
	return nil
}

// Open opens src, detects its filters and format and prepares the walker.
func (r *archiveReader) Open(ctx context.Context, src Source, blockSize int) error {
	if r.walker != nil {
		return errors.New("archive reader is already open")
	}
	if !r.allFormats && !r.allFilters {
		return errors.New("no formats or filters enabled")
	}
	if blockSize <= 0 {
		blockSize = r.cfg.BlockSize()
	}
	r.buf = make([]byte, blockSize)
	r.keys.ctx = ctx
	r.keys.logger = r.cfg.Logger()

	base, size, closer, err := src.open()
	if err != nil {
		return err
	}
	r.closers = append(r.closers, closer)
	r.inputSize = size
	if r.cfg.MaxInputSize() != -1 && size > r.cfg.MaxInputSize() {
		return fmt.Errorf("%w (%d bytes)", ErrMaxInputSizeExceeded, size)
	}

	// stack filters
	var (
		filters []string
		stream  io.Reader = newLimitErrorReader(base, r.cfg.MaxInputSize())
		header  []byte
	)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context error: %w", err)
		}
		stream, header, err = peekHeader(stream, maxHeaderLength)
		if err != nil {
			return err
		}

		if !r.allFilters || len(filters) == maxFilterLayers {
			break
		}
		// formats first, short filter magics collide with archive headers
		if r.allFormats && detectFormat(header) != "" {
			break
		}
		sourceName := ""
		if len(filters) == 0 {
			sourceName = src.Name()
		}
		name := detectFilter(header, sourceName)
		if name == "" {
			break
		}
		r.cfg.Logger().Debug("detected filter", "filter", name)
		dec, err := availableFilters[name].Decompress(stream)
		if err != nil {
			return fmt.Errorf("cannot start %s decompression: %w", name, err)
		}
		if c, ok := dec.(io.Closer); ok {
			r.closers = append(r.closers, c)
		}
		filters = append(filters, name)
		stream = dec
	}

	// detect format
	format := ""
	if r.allFormats {
		format = detectFormat(header)
	}
	if format == "" && len(filters) == 0 {
		return ErrUnrecognizedFormat
	}
	if format == "" {
		format = fileExtensionRaw
	}
	r.typeName = typeName(format, filters)
	if t := r.cfg.ExtractType(); t != "" && !matchesType(t, format, filters) {
		return fmt.Errorf("archive type %s does not match expected type %s", r.typeName, t)
	}
	r.cfg.Logger().Info("extracting", "type", r.typeName)

	// random access for formats with a central directory
	randomAccess := func() (io.ReaderAt, int64, error) {
		if len(filters) == 0 {
			return base, size, nil
		}
		sra, n, c, err := readerToReaderAtSeeker(r.cfg, stream)
		if err != nil {
			return nil, 0, err
		}
		r.closers = append(r.closers, c)
		return sra, n, nil
	}

	switch format {
	case fileExtensionTar:
		r.walker = newTarWalker(stream)

	case fileExtensionZip:
		ra, n, err := randomAccess()
		if err != nil {
			return err
		}
		zw, err := newZipWalker(ra, n, &r.keys)
		if err != nil {
			return err
		}
		r.walker = zw

	case fileExtensionRar:
		var open rarOpener
		if len(filters) == 0 && src.Kind != SourceMemory {
			open = rarFileOpener(src.Paths[0])
		} else {
			ra, n, err := randomAccess()
			if err != nil {
				return err
			}
			open = rarStreamOpener(ra, n)
		}
		rw, err := newRarWalker(open, src.Name(), &r.keys)
		if err != nil {
			return err
		}
		r.closers = append(r.closers, rw)
		r.walker = rw

	case fileExtension7zip:
		ra, n, err := randomAccess()
		if err != nil {
			return err
		}
		zw, err := newSevenZipWalker(ra, n, src.Name(), &r.keys)
		if err != nil {
			return err
		}
		r.walker = zw

	case fileExtensionIso9660:
		ra, _, err := randomAccess()
		if err != nil {
			return err
		}
		iw, err := newIsoWalker(ra)
		if err != nil {
			return err
		}
		r.walker = iw

	default:
		r.walker = newRawWalker(stream, src.Name(), filters)
	}
	return nil
}

// Type returns the detected type of the archive, e.g. "tar.gz".
func (r *archiveReader) Type() string {
	return r.typeName
}

// InputSize returns the size of the opened source.
func (r *archiveReader) InputSize() int64 {
	return r.inputSize
}

// NextHeader returns the next entry of the archive.
func (r *archiveReader) NextHeader() (*Entry, error) {
	if r.walker == nil {
		return nil, errors.New("archive reader is not open")
	}
	if err := r.closeData(); err != nil {
		return nil, err
	}

	ae, err := r.walker.Next()
	if errors.Is(err, io.EOF) {
		r.current = nil
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	r.current = ae
	e := ae.Header()
	e.Format = r.typeName
	return e, nil
}

// ReadBlock reads the next block of the current entry.
func (r *archiveReader) ReadBlock() ([]byte, int64, error) {
	if r.current == nil {
		return nil, 0, errors.New("no current entry")
	}
	if r.dataDone {
		return nil, r.offset, io.EOF
	}
	if r.data == nil {
		rc, err := r.current.Open()
		if err != nil {
			return nil, 0, err
		}
		r.data = rc
	}

	n, err := fillBlock(r.data, r.buf)
	off := r.offset
	r.offset += int64(n)
	switch {
	case err == nil:
		return r.buf[:n], off, nil
	case errors.Is(err, io.EOF):
		r.dataDone = true
		if n == 0 {
			return nil, off, io.EOF
		}
		return r.buf[:n], off, nil
	default:
		// truncated or corrupt payload, the decoders report io.ErrUnexpectedEOF
		return nil, off, err
	}
}

// maxEmptyReads is the number of consecutive empty reads after which fillBlock
// gives up with io.ErrNoProgress.
const maxEmptyReads = 100

// fillBlock reads from r until buf is full or r fails. Only a clean io.EOF of r
// ends the payload, any other error is returned as is.
func fillBlock(r io.Reader, buf []byte) (int, error) {
	var n, empty int
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m > 0 {
			empty = 0
			continue
		}
		if empty++; empty >= maxEmptyReads {
			return n, io.ErrNoProgress
		}
	}
	return n, nil
}

// SkipData discards the remaining data of the current entry. Streaming formats
// skip unread data when the next header is read, opened payloads are drained.
func (r *archiveReader) SkipData() error {
	if r.current == nil {
		return errors.New("no current entry")
	}
	if r.data != nil && !r.dataDone {
		if _, err := io.Copy(io.Discard, r.data); err != nil {
			return err
		}
	}
	r.dataDone = true
	return nil
}

// closeData closes the payload reader of the current entry.
func (r *archiveReader) closeData() error {
	var err error
	if r.data != nil {
		err = r.data.Close()
	}
	r.data, r.offset, r.dataDone = nil, 0, false
	return err
}

// Close closes the payload, the decoders and the source in reverse order.
func (r *archiveReader) Close() error {
	err := r.closeData()
	for i := len(r.closers) - 1; i >= 0; i-- {
		if cerr := r.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	r.closers = nil
	r.walker = nil
	return err
}

// typeName combines format and filters, outermost filter last, e.g. "tar.gz".
func typeName(format string, filters []string) string {
	parts := make([]string, 0, len(filters)+1)
	if format != fileExtensionRaw {
		parts = append(parts, format)
	}
	for i := len(filters) - 1; i >= 0; i-- {
		parts = append(parts, filters[i])
	}
	return strings.Join(parts, ".")
}

// matchesType checks if the expected type names the detected format, the
// outermost filter or the combination of both.
func matchesType(expected string, format string, filters []string) bool {
	expected = strings.ToLower(strings.TrimPrefix(expected, "."))
	if expected == typeName(format, filters) || expected == format {
		return true
	}
	return len(filters) > 0 && expected == filters[0]
}
