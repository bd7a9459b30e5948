// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"context"
	"fmt"
	"sort"
)

// Option configures a [Job] at construction time.
type Option func(*jobOptions)

// jobOptions collects the construction options of a [Job]. Problems are recorded
// and reported by [New], options never fail on their own.
type jobOptions struct {
	filenames    []string
	filenameList bool
	filenameSet  bool

	memory    []byte
	memorySet bool

	passphrase    Passphrase
	passphraseSet bool

	filter    EntryFilter
	filterSet bool

	cfg    *Config
	reader ArchiveReader
	writer DiskWriter

	errs []*ConfigError
}

// invalid records a construction problem.
func (o *jobOptions) invalid(format string, args ...interface{}) {
	o.errs = append(o.errs, &ConfigError{Msg: fmt.Sprintf(format, args...)})
}

// WithFilename sets the archive file. Several names form one multi-volume archive,
// read in the given order.
func WithFilename(names ...string) Option {
	return func(o *jobOptions) {
		o.filenames = append([]string(nil), names...)
		o.filenameList = len(names) > 1
		o.filenameSet = true
	}
}

// WithFilenames sets an ordered list of archive volumes. A list with a single
// name is still treated as a list.
func WithFilenames(names []string) Option {
	return func(o *jobOptions) {
		o.filenames = append([]string(nil), names...)
		o.filenameList = true
		o.filenameSet = true
	}
}

// WithMemory sets an in-memory archive. The buffer is not copied and must not be
// modified until the extraction has finished.
func WithMemory(buf []byte) Option {
	return func(o *jobOptions) {
		o.memory = buf
		o.memorySet = true
	}
}

// WithPassphrase sets a fixed passphrase for encrypted entries.
func WithPassphrase(passphrase string) Option {
	return func(o *jobOptions) {
		if o.passphraseSet {
			o.invalid("passphrase is set more than once")
		}
		o.passphrase = FixedPassphrase(passphrase)
		o.passphraseSet = true
	}
}

// WithPassphraseResolver sets a resolver that is asked for the passphrase when an
// encrypted entry is read.
func WithPassphraseResolver(r PassphraseResolver) Option {
	return func(o *jobOptions) {
		if o.passphraseSet {
			o.invalid("passphrase is set more than once")
		}
		if r == nil {
			o.invalid("passphrase resolver must not be nil")
		}
		o.passphrase = ResolvedPassphrase(r)
		o.passphraseSet = true
	}
}

// WithEntryFilter sets the predicate that decides which entries are extracted.
func WithEntryFilter(f EntryFilter) Option {
	return func(o *jobOptions) {
		if f == nil {
			o.invalid("entry filter must be a function")
		}
		o.filter = f
		o.filterSet = true
	}
}

// WithConfig sets the ambient configuration: logging, limits, telemetry and
// restored metadata.
func WithConfig(cfg *Config) Option {
	return func(o *jobOptions) {
		if cfg == nil {
			o.invalid("config must not be nil")
		}
		o.cfg = cfg
	}
}

// WithArchiveReader replaces the default archive engine.
func WithArchiveReader(r ArchiveReader) Option {
	return func(o *jobOptions) {
		if r == nil {
			o.invalid("archive reader must not be nil")
		}
		o.reader = r
	}
}

// WithDiskWriter replaces the default disk writer.
func WithDiskWriter(w DiskWriter) Option {
	return func(o *jobOptions) {
		if w == nil {
			o.invalid("disk writer must not be nil")
		}
		o.writer = w
	}
}

// Keys recognized by [NewFromMap].
const (
	KeyFilename   = "filename"
	KeyMemory     = "memory"
	KeyPassphrase = "passphrase"
	KeyEntry      = "entry"
)

// NewFromMap creates a [Job] from a map of construction options, e.g. decoded from
// a job file. Recognized keys are "filename" (a string or a list of strings),
// "memory" (a byte slice or a pointer to one), "passphrase" (a string or a
// resolver) and "entry" (an entry filter). Any other key fails with a
// [*ConfigError] listing the unrecognized keys in sorted order. opts are applied
// after the map.
func NewFromMap(m map[string]interface{}, opts ...Option) (*Job, error) {
	var unknown []string
	for k := range m {
		switch k {
		case KeyFilename, KeyMemory, KeyPassphrase, KeyEntry:
		default:
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &ConfigError{Msg: "illegal options", Keys: unknown}
	}

	var mapped []Option
	if v, ok := m[KeyFilename]; ok {
		opt, err := filenameOption(v)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, opt)
	}
	if v, ok := m[KeyMemory]; ok {
		opt, err := memoryOption(v)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, opt)
	}
	if v, ok := m[KeyPassphrase]; ok {
		opt, err := passphraseOption(v)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, opt)
	}
	if v, ok := m[KeyEntry]; ok {
		opt, err := entryOption(v)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, opt)
	}

	return New(append(mapped, opts...)...)
}

// filenameOption maps the value of the filename key.
func filenameOption(v interface{}) (Option, error) {
	switch t := v.(type) {
	case string:
		return WithFilename(t), nil
	case []string:
		return WithFilenames(t), nil
	case []interface{}:
		names := make([]string, 0, len(t))
		for _, n := range t {
			s, ok := n.(string)
			if !ok {
				return nil, &ConfigError{Msg: fmt.Sprintf("filename must be a string or a list of strings, got %T in list", n)}
			}
			names = append(names, s)
		}
		return WithFilenames(names), nil
	}
	return nil, &ConfigError{Msg: fmt.Sprintf("filename must be a string or a list of strings, got %T", v)}
}

// memoryOption maps the value of the memory key.
func memoryOption(v interface{}) (Option, error) {
	switch t := v.(type) {
	case []byte:
		return WithMemory(t), nil
	case *[]byte:
		if t == nil || *t == nil {
			return nil, &ConfigError{Msg: "memory must reference a byte buffer"}
		}
		return WithMemory(*t), nil
	}
	return nil, &ConfigError{Msg: "memory must reference a byte buffer"}
}

// passphraseOption maps the value of the passphrase key.
func passphraseOption(v interface{}) (Option, error) {
	switch t := v.(type) {
	case string:
		return WithPassphrase(t), nil
	case PassphraseResolver:
		return WithPassphraseResolver(t), nil
	case func(context.Context, *Entry) (string, error):
		return WithPassphraseResolver(PassphraseResolverFunc(t)), nil
	case func(*Entry) string:
		return WithPassphraseResolver(PassphraseResolverFunc(func(_ context.Context, e *Entry) (string, error) {
			return t(e), nil
		})), nil
	}
	return nil, &ConfigError{Msg: fmt.Sprintf("passphrase must be a string or a resolver, got %T", v)}
}

// entryOption maps the value of the entry key.
func entryOption(v interface{}) (Option, error) {
	switch t := v.(type) {
	case EntryFilter:
		return WithEntryFilter(t), nil
	case func(*Entry) bool:
		return WithEntryFilter(t), nil
	}
	return nil, &ConfigError{Msg: "entry filter must be a function"}
}
