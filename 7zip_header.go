// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/bodgit/sevenzip"
	"github.com/ulikunitz/xz/lzma"
)

// property ids of the 7zip header
const (
	sevenZipIDEnd           = 0x00
	sevenZipIDHeader        = 0x01
	sevenZipIDArchiveProps  = 0x02
	sevenZipIDAdditional    = 0x03
	sevenZipIDMainStreams   = 0x04
	sevenZipIDPackInfo      = 0x06
	sevenZipIDUnpackInfo    = 0x07
	sevenZipIDSubStreams    = 0x08
	sevenZipIDSize          = 0x09
	sevenZipIDCRC           = 0x0A
	sevenZipIDFolder        = 0x0B
	sevenZipIDUnpackSize    = 0x0C
	sevenZipIDEncodedHeader = 0x17
)

// coder ids
var (
	sevenZipCoderCopy  = []byte{0x00}
	sevenZipCoderLZMA  = []byte{0x03, 0x01, 0x01}
	sevenZipCoderLZMA2 = []byte{0x21}
	sevenZipCoderAES   = []byte{0x06, 0xf1, 0x07, 0x01}
)

const (
	// sevenZipSignatureHeaderSize is the size of the fixed header in front of the packed streams.
	sevenZipSignatureHeaderSize = 32

	// maxSevenZipHeaderSize limits the size of a decoded header.
	maxSevenZipHeaderSize = 1 << 28
)

// errSevenZipHeader is returned for headers that cannot be parsed.
var errSevenZipHeader = errors.New("corrupt 7zip header")

// sevenZipLayout is what the header of a 7zip archive tells about encryption
// without a passphrase.
type sevenZipLayout struct {
	// headerEncrypted is true if the file list can only be read with the passphrase
	headerEncrypted bool

	// folderEncrypted tells for every folder (compressed stream) if it is encrypted
	folderEncrypted []bool
}

// encrypted returns true if the payload of f can only be read with the passphrase.
func (l *sevenZipLayout) encrypted(f *sevenzip.File) bool {
	if f.UncompressedSize == 0 {
		return false
	}
	if l.headerEncrypted {
		return true
	}
	return f.Stream >= 0 && f.Stream < len(l.folderEncrypted) && l.folderEncrypted[f.Stream]
}

// sevenZipCoder is one step of the decoding pipeline of a folder.
type sevenZipCoder struct {
	id    []byte
	props []byte
}

// sevenZipFolder is a compressed stream.
type sevenZipFolder struct {
	coders      []sevenZipCoder
	unpackSizes []uint64
}

// encrypted returns true if one of the coders is AES.
func (f *sevenZipFolder) encrypted() bool {
	for _, c := range f.coders {
		if bytes.Equal(c.id, sevenZipCoderAES) {
			return true
		}
	}
	return false
}

// sevenZipStreams is the packed stream and folder information of a header.
type sevenZipStreams struct {
	packPos   uint64
	packSizes []uint64
	folders   []*sevenZipFolder
}

// inspectSevenZip reads the header of the 7zip archive in ra and reports which
// parts of it are encrypted. Encoded headers compressed with LZMA or LZMA2 are
// decoded; encrypted headers are reported as such.
func inspectSevenZip(ra io.ReaderAt, size int64) (*sevenZipLayout, error) {
	var sig [sevenZipSignatureHeaderSize]byte
	if _, err := ra.ReadAt(sig[:], 0); err != nil {
		return nil, fmt.Errorf("cannot read 7zip signature header: %w", err)
	}
	if !is7zip(sig[:]) {
		return nil, fmt.Errorf("%w: missing signature", errSevenZipHeader)
	}
	if crc32.ChecksumIEEE(sig[12:]) != binary.LittleEndian.Uint32(sig[8:12]) {
		return nil, fmt.Errorf("%w: start header checksum mismatch", errSevenZipHeader)
	}

	offset := binary.LittleEndian.Uint64(sig[12:20])
	length := binary.LittleEndian.Uint64(sig[20:28])
	if length == 0 {
		// empty archive
		return &sevenZipLayout{}, nil
	}
	available := uint64(size) - sevenZipSignatureHeaderSize
	if size < sevenZipSignatureHeaderSize || offset > available || length > available-offset {
		return nil, fmt.Errorf("%w: header out of bounds", errSevenZipHeader)
	}
	buf := make([]byte, length)
	if _, err := ra.ReadAt(buf, int64(sevenZipSignatureHeaderSize+offset)); err != nil {
		return nil, fmt.Errorf("cannot read 7zip header: %w", err)
	}
	if crc32.ChecksumIEEE(buf) != binary.LittleEndian.Uint32(sig[28:32]) {
		return nil, fmt.Errorf("%w: header checksum mismatch", errSevenZipHeader)
	}

	hr := newSevenZipHeaderReader(buf)
	id, err := hr.ReadByte()
	if err != nil {
		return nil, errSevenZipHeader
	}
	switch id {
	case sevenZipIDHeader:
	case sevenZipIDEncodedHeader:
		streams, err := hr.streamsInfo()
		if err != nil {
			return nil, err
		}
		for _, f := range streams.folders {
			if f.encrypted() {
				return &sevenZipLayout{headerEncrypted: true}, nil
			}
		}
		buf, err = decodeSevenZipHeader(ra, streams)
		if err != nil {
			return nil, err
		}
		hr = newSevenZipHeaderReader(buf)
		if id, err := hr.ReadByte(); err != nil || id != sevenZipIDHeader {
			return nil, fmt.Errorf("%w: unexpected encoded header", errSevenZipHeader)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected property %#x", errSevenZipHeader, id)
	}

	streams, err := hr.header()
	if err != nil {
		return nil, err
	}
	layout := &sevenZipLayout{folderEncrypted: make([]bool, len(streams.folders))}
	for i, f := range streams.folders {
		layout.folderEncrypted[i] = f.encrypted()
	}
	return layout, nil
}

// decodeSevenZipHeader unpacks the encoded header described by streams.
func decodeSevenZipHeader(ra io.ReaderAt, streams *sevenZipStreams) ([]byte, error) {
	if len(streams.folders) != 1 || len(streams.packSizes) == 0 {
		return nil, fmt.Errorf("%w: encoded header needs one folder", errSevenZipHeader)
	}
	folder := streams.folders[0]
	if len(folder.coders) != 1 || len(folder.unpackSizes) != 1 {
		return nil, fmt.Errorf("%w: unsupported encoded header", errSevenZipHeader)
	}
	coder := folder.coders[0]
	unpackSize := folder.unpackSizes[0]
	if unpackSize > maxSevenZipHeaderSize {
		return nil, fmt.Errorf("%w: encoded header too large", errSevenZipHeader)
	}
	packed := io.NewSectionReader(ra, int64(sevenZipSignatureHeaderSize+streams.packPos), int64(streams.packSizes[0]))

	var (
		r   io.Reader
		err error
	)
	switch {
	case bytes.Equal(coder.id, sevenZipCoderCopy):
		r = packed

	case bytes.Equal(coder.id, sevenZipCoderLZMA):
		if len(coder.props) != 5 {
			return nil, fmt.Errorf("%w: invalid lzma properties", errSevenZipHeader)
		}
		// classic lzma header: properties, dictionary size and unpacked size
		header := make([]byte, 13)
		header[0] = coder.props[0]
		dictCap := headerDictCap(uint64(binary.LittleEndian.Uint32(coder.props[1:])), unpackSize)
		binary.LittleEndian.PutUint32(header[1:5], uint32(dictCap))
		binary.LittleEndian.PutUint64(header[5:], unpackSize)
		r, err = lzma.ReaderConfig{DictCap: lzma.MinDictCap}.NewReader(io.MultiReader(bytes.NewReader(header), packed))

	case bytes.Equal(coder.id, sevenZipCoderLZMA2):
		if len(coder.props) != 1 || coder.props[0] > 40 {
			return nil, fmt.Errorf("%w: invalid lzma2 properties", errSevenZipHeader)
		}
		dict := uint64(0xFFFFFFFF)
		if p := coder.props[0]; p < 40 {
			dict = uint64(2|p&1) << (p/2 + 11)
		}
		r, err = lzma.Reader2Config{DictCap: headerDictCap(dict, unpackSize)}.NewReader2(packed)

	default:
		return nil, fmt.Errorf("%w: unsupported header coder %x", errSevenZipHeader, coder.id)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot decode 7zip header: %w", err)
	}

	buf := make([]byte, unpackSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("cannot decode 7zip header: %w", err)
	}
	return buf, nil
}

// headerDictCap returns a dictionary capacity large enough to decode unpackSize bytes.
func headerDictCap(dict, unpackSize uint64) int {
	if dict > unpackSize {
		dict = unpackSize
	}
	if dict < lzma.MinDictCap {
		dict = lzma.MinDictCap
	}
	return int(dict)
}

// sevenZipHeaderReader parses the property lists of a 7zip header.
type sevenZipHeaderReader struct {
	*bytes.Reader
}

// newSevenZipHeaderReader returns a reader for the header in b.
func newSevenZipHeaderReader(b []byte) *sevenZipHeaderReader {
	return &sevenZipHeaderReader{bytes.NewReader(b)}
}

// number reads a variable length number. The leading one bits of the first byte
// count the following little endian bytes, the remaining bits are the high bits.
func (r *sevenZipHeaderReader) number() (uint64, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, errSevenZipHeader
	}
	var value uint64
	mask := byte(0x80)
	for i := 0; i < 8; i++ {
		if first&mask == 0 {
			return value | uint64(first&(mask-1))<<(8*i), nil
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, errSevenZipHeader
		}
		value |= uint64(b) << (8 * i)
		mask >>= 1
	}
	return value, nil
}

// count reads a number of items, each item needs at least one more byte.
func (r *sevenZipHeaderReader) count() (int, error) {
	n, err := r.number()
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Len()) {
		return 0, fmt.Errorf("%w: count out of bounds", errSevenZipHeader)
	}
	return int(n), nil
}

// bytes reads n bytes.
func (r *sevenZipHeaderReader) bytes(n int) ([]byte, error) {
	if n > r.Len() {
		return nil, errSevenZipHeader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errSevenZipHeader
	}
	return b, nil
}

// expect reads the next property id and fails if it is not id.
func (r *sevenZipHeaderReader) expect(id byte) error {
	got, err := r.ReadByte()
	if err != nil {
		return errSevenZipHeader
	}
	if got != id {
		return fmt.Errorf("%w: expected property %#x, got %#x", errSevenZipHeader, id, got)
	}
	return nil
}

// digests skips the checksums of n items.
func (r *sevenZipHeaderReader) digests(n int) error {
	all, err := r.ReadByte()
	if err != nil {
		return errSevenZipHeader
	}
	defined := n
	if all == 0 {
		bits, err := r.bytes((n + 7) / 8)
		if err != nil {
			return err
		}
		defined = 0
		for i := 0; i < n; i++ {
			if bits[i/8]&(0x80>>(i%8)) != 0 {
				defined++
			}
		}
	}
	_, err = r.bytes(4 * defined)
	return err
}

// header reads a plain header up to the main streams.
func (r *sevenZipHeaderReader) header() (*sevenZipStreams, error) {
	id, err := r.ReadByte()
	if err != nil {
		return nil, errSevenZipHeader
	}
	if id == sevenZipIDArchiveProps {
		for {
			t, err := r.ReadByte()
			if err != nil {
				return nil, errSevenZipHeader
			}
			if t == sevenZipIDEnd {
				break
			}
			n, err := r.count()
			if err != nil {
				return nil, err
			}
			if _, err := r.bytes(n); err != nil {
				return nil, err
			}
		}
		if id, err = r.ReadByte(); err != nil {
			return nil, errSevenZipHeader
		}
	}
	if id == sevenZipIDAdditional {
		return nil, fmt.Errorf("%w: additional streams are not supported", errSevenZipHeader)
	}
	if id != sevenZipIDMainStreams {
		// no packed streams, e.g. only directories
		return &sevenZipStreams{}, nil
	}
	return r.streamsInfo()
}

// streamsInfo reads pack and unpack information. Sub stream information is not
// needed to locate the folders and is left unread.
func (r *sevenZipHeaderReader) streamsInfo() (*sevenZipStreams, error) {
	s := &sevenZipStreams{}
	for {
		id, err := r.ReadByte()
		if err != nil {
			return nil, errSevenZipHeader
		}
		switch id {
		case sevenZipIDEnd, sevenZipIDSubStreams:
			return s, nil
		case sevenZipIDPackInfo:
			if err := r.packInfo(s); err != nil {
				return nil, err
			}
		case sevenZipIDUnpackInfo:
			if err := r.unpackInfo(s); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unexpected property %#x", errSevenZipHeader, id)
		}
	}
}

// packInfo reads the position and sizes of the packed streams.
func (r *sevenZipHeaderReader) packInfo(s *sevenZipStreams) error {
	pos, err := r.number()
	if err != nil {
		return err
	}
	s.packPos = pos
	n, err := r.count()
	if err != nil {
		return err
	}
	for {
		id, err := r.ReadByte()
		if err != nil {
			return errSevenZipHeader
		}
		switch id {
		case sevenZipIDEnd:
			return nil
		case sevenZipIDSize:
			s.packSizes = make([]uint64, n)
			for i := range s.packSizes {
				if s.packSizes[i], err = r.number(); err != nil {
					return err
				}
			}
		case sevenZipIDCRC:
			if err := r.digests(n); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected pack property %#x", errSevenZipHeader, id)
		}
	}
}

// unpackInfo reads the folders and their unpacked sizes.
func (r *sevenZipHeaderReader) unpackInfo(s *sevenZipStreams) error {
	if err := r.expect(sevenZipIDFolder); err != nil {
		return err
	}
	n, err := r.count()
	if err != nil {
		return err
	}
	if external, err := r.ReadByte(); err != nil || external != 0 {
		return fmt.Errorf("%w: external folders are not supported", errSevenZipHeader)
	}
	s.folders = make([]*sevenZipFolder, n)
	outputs := make([]int, n)
	for i := range s.folders {
		if s.folders[i], outputs[i], err = r.folder(); err != nil {
			return err
		}
	}

	if err := r.expect(sevenZipIDUnpackSize); err != nil {
		return err
	}
	for i, f := range s.folders {
		f.unpackSizes = make([]uint64, outputs[i])
		for j := range f.unpackSizes {
			if f.unpackSizes[j], err = r.number(); err != nil {
				return err
			}
		}
	}

	for {
		id, err := r.ReadByte()
		if err != nil {
			return errSevenZipHeader
		}
		switch id {
		case sevenZipIDEnd:
			return nil
		case sevenZipIDCRC:
			if err := r.digests(n); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected unpack property %#x", errSevenZipHeader, id)
		}
	}
}

// folder reads the coders of a folder and returns it with its number of output streams.
func (r *sevenZipHeaderReader) folder() (*sevenZipFolder, int, error) {
	n, err := r.count()
	if err != nil {
		return nil, 0, err
	}
	if n == 0 {
		return nil, 0, fmt.Errorf("%w: folder without coders", errSevenZipHeader)
	}

	f := &sevenZipFolder{coders: make([]sevenZipCoder, n)}
	inputs, outputs := 0, 0
	for i := range f.coders {
		flags, err := r.ReadByte()
		if err != nil {
			return nil, 0, errSevenZipHeader
		}
		if flags&0x80 != 0 {
			return nil, 0, fmt.Errorf("%w: alternative coders are not supported", errSevenZipHeader)
		}
		c := &f.coders[i]
		if c.id, err = r.bytes(int(flags & 0x0F)); err != nil {
			return nil, 0, err
		}
		in, out := 1, 1
		if flags&0x10 != 0 {
			if in, err = r.count(); err != nil {
				return nil, 0, err
			}
			if out, err = r.count(); err != nil {
				return nil, 0, err
			}
		}
		inputs += in
		outputs += out
		if flags&0x20 != 0 {
			size, err := r.count()
			if err != nil {
				return nil, 0, err
			}
			if c.props, err = r.bytes(size); err != nil {
				return nil, 0, err
			}
		}
	}

	// bind pairs connect all outputs but the last one
	bindPairs := outputs - 1
	for i := 0; i < 2*bindPairs; i++ {
		if _, err := r.number(); err != nil {
			return nil, 0, err
		}
	}
	packed := inputs - bindPairs
	if packed < 1 {
		return nil, 0, fmt.Errorf("%w: folder without packed stream", errSevenZipHeader)
	}
	if packed > 1 {
		for i := 0; i < packed; i++ {
			if _, err := r.number(); err != nil {
				return nil, 0, err
			}
		}
	}
	return f, outputs, nil
}
