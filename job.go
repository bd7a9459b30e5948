// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// jobState is the lifecycle state of a [Job].
type jobState int

const (
	stateNotStarted jobState = iota
	stateExtracting
	stateDone
	stateFailed
)

// Job extracts one archive. It is created with [New] or [NewFromMap] and extracted
// at most once.
//
// Extract changes the working directory of the process while entries are written.
// Jobs must not be extracted concurrently with each other or with code that
// depends on the working directory.
type Job struct {
	source     Source
	passphrase Passphrase
	filter     EntryFilter
	cfg        *Config
	reader     ArchiveReader
	writer     DiskWriter

	state       jobState
	destination string
	pathnames   []string
	warnings    []*Warning
}

// New validates opts and returns a [Job]. Invalid, contradictory or unreadable
// options fail with a [*ConfigError] before any archive data is read.
func New(opts ...Option) (*Job, error) {
	o := &jobOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.errs) > 0 {
		return nil, o.errs[0]
	}

	src, err := resolveSource(o)
	if err != nil {
		return nil, err
	}

	j := &Job{
		source:     src,
		passphrase: o.passphrase,
		filter:     o.filter,
		cfg:        o.cfg,
		reader:     o.reader,
		writer:     o.writer,
	}
	if j.cfg == nil {
		j.cfg = NewConfig()
	}
	return j, nil
}

// ExtractOption adjusts a single call of [Job.Extract].
type ExtractOption func(*extractOptions)

// extractOptions holds the options of one extraction.
type extractOptions struct {
	to string
}

// To sets the destination directory. It is created if it does not exist. The
// default is the working directory at the time of the call.
func To(dir string) ExtractOption {
	return func(o *extractOptions) {
		o.to = dir
	}
}

// Source returns the resolved archive source.
func (j *Job) Source() Source {
	return j.source
}

// Destination returns the absolute destination directory and true after a
// successful extraction.
func (j *Job) Destination() (string, bool) {
	return j.destination, j.state == stateDone
}

// ExtractedPathnames returns the pathnames of all accepted entries in archive
// order. After a failed extraction, it lists the entries attempted so far,
// including the one that failed.
func (j *Job) ExtractedPathnames() []string {
	return append([]string{}, j.pathnames...)
}

// Warnings returns the warnings of the extraction.
func (j *Job) Warnings() []*Warning {
	return append([]*Warning{}, j.warnings...)
}

// Extract extracts the archive into the destination directory. Engine warnings are
// logged and collected (see [Job.Warnings]); the first fatal engine status aborts
// the extraction with an [*ArchiveError]. A Job can be extracted only once, later
// calls fail with a [*UsageError].
func (j *Job) Extract(ctx context.Context, opts ...ExtractOption) (err error) {
	if j.state != stateNotStarted {
		return &UsageError{Msg: "extract can only be called once per job"}
	}
	j.state = stateExtracting

	eo := &extractOptions{}
	for _, opt := range opts {
		opt(eo)
	}

	// prepare telemetry capturing
	td := &TelemetryData{}
	defer func() {
		if err != nil {
			j.state = stateFailed
			if td.LastExtractionError == nil {
				td.ExtractionErrors++
				td.LastExtractionError = err
			}
		}
		j.cfg.TelemetryHook()(ctx, td)
	}()
	defer captureExtractionDuration(td, now())

	// resolve and create destination
	dst, err := resolveDestination(eo.to, j.cfg)
	if err != nil {
		return err
	}

	status := &statusChecker{cfg: j.cfg, td: td}
	defer func() { j.warnings = append(j.warnings, status.warnings...) }()

	// open reader before anything else is touched
	reader, err := j.openReader(ctx, status, td)
	if err != nil {
		return err
	}

	// scope the working directory, restored after both sessions are closed
	wd, err := enterDir(dst)
	if err != nil {
		status.check("close reader", reader.Close())
		return &IoError{Path: dst, Err: err}
	}
	// the job is done once sessions are closed and the working directory is back
	defer func() {
		if err != nil {
			return
		}
		j.cfg.Logger().Info("extraction finished", "destination", dst, "entries", len(j.pathnames))
		j.destination = dst
		j.state = stateDone
	}()
	defer func() {
		if rerr := wd.restore(); rerr != nil && err == nil {
			err = &IoError{Path: dst, Err: rerr}
		}
	}()

	writer, err := j.openWriter(status)
	if err != nil {
		status.check("close reader", reader.Close())
		return err
	}
	defer func() {
		err = closeSessions(reader, writer, status, err)
	}()

	return j.extractEntries(ctx, reader, writer, status, td)
}

// resolveDestination returns the absolute destination directory and creates it.
func resolveDestination(to string, cfg *Config) (string, error) {
	dst := to
	if dst == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", &IoError{Path: ".", Err: err}
		}
		dst = wd
	}
	dst, err := filepath.Abs(dst)
	if err != nil {
		return "", &IoError{Path: to, Err: err}
	}
	if err := os.MkdirAll(dst, cfg.CustomCreateDirMode().Perm()); err != nil {
		return "", &IoError{Path: dst, Err: err}
	}
	stat, err := os.Stat(dst)
	if err != nil {
		return "", &IoError{Path: dst, Err: err}
	}
	if !stat.IsDir() {
		return "", &IoError{Path: dst, Err: fmt.Errorf("not a directory")}
	}
	return dst, nil
}

// closeSessions closes reader and writer. The first failure is returned, unless
// the run already failed with err.
func closeSessions(reader ArchiveReader, writer DiskWriter, status *statusChecker, err error) error {
	rerr := status.check("close reader", reader.Close())
	werr := status.check("close writer", writer.Close())
	switch {
	case err != nil:
		return err
	case rerr != nil:
		return rerr
	}
	return werr
}

// openReader configures and opens the archive reader. The reader is closed if it
// cannot be opened.
func (j *Job) openReader(ctx context.Context, status *statusChecker, td *TelemetryData) (ArchiveReader, error) {
	reader := j.reader
	if reader == nil {
		reader = NewArchiveReader(j.cfg)
	}

	open := func() error {
		if err := status.check("enable formats", reader.EnableAllFormats()); err != nil {
			return err
		}
		if err := status.check("enable filters", reader.EnableAllFilters()); err != nil {
			return err
		}
		if err := status.check("set passphrase", j.passphrase.apply(reader)); err != nil {
			return err
		}
		return status.check("open archive", reader.Open(ctx, j.source, j.cfg.BlockSize()))
	}
	if err := open(); err != nil {
		status.check("close reader", reader.Close())
		return nil, err
	}

	if d, ok := reader.(interface {
		Type() string
		InputSize() int64
	}); ok {
		td.ExtractedType = d.Type()
		td.InputSize = d.InputSize()
	}
	return reader, nil
}

// openWriter configures the disk writer. The writer is closed if it cannot be
// configured.
func (j *Job) openWriter(status *statusChecker) (DiskWriter, error) {
	writer := j.writer
	if writer == nil {
		writer = NewDiskWriter(j.cfg)
	}

	open := func() error {
		if err := status.check("set options", writer.SetOptions(j.cfg.ExtractFlags())); err != nil {
			return err
		}
		return status.check("set standard lookup", writer.SetStandardLookup())
	}
	if err := open(); err != nil {
		status.check("close writer", writer.Close())
		return nil, err
	}
	return writer, nil
}

// List reads the archive without writing anything and returns the entries accepted
// by the entry filter. It does not change the state of the job and does not touch
// the working directory.
func (j *Job) List(ctx context.Context) (entries []*Entry, err error) {
	td := &TelemetryData{}
	status := &statusChecker{cfg: j.cfg, td: td}

	reader, err := j.openReader(ctx, status, td)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := status.check("close reader", reader.Close()); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return entries, status.check("read header", fmt.Errorf("context error: %w", err))
		}

		e, err := reader.NextHeader()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err := status.check("read header", err); err != nil {
			return entries, err
		}
		if e == nil {
			continue
		}
		if j.filter == nil || j.filter(e) {
			entries = append(entries, e)
		}
		if err := status.check("skip data", reader.SkipData()); err != nil {
			return entries, err
		}
	}
}

// extractEntries runs the read, filter and write loop.
func (j *Job) extractEntries(ctx context.Context, reader ArchiveReader, writer DiskWriter, status *statusChecker, td *TelemetryData) error {
	var files int64
	for {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return status.check("read header", fmt.Errorf("context error: %w", err))
		}

		e, err := reader.NextHeader()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err := status.check("read header", err); err != nil {
			return err
		}
		if e == nil {
			continue
		}

		// filter
		if j.filter != nil && !j.filter(e) {
			j.cfg.Logger().Debug("skip entry", "name", e.Pathname)
			td.FilteredEntries++
			if err := status.check("skip data", reader.SkipData()); err != nil {
				return err
			}
			continue
		}

		// check for to many files in archive
		files++
		if err := j.cfg.CheckMaxFiles(files); err != nil {
			return status.check("read header", &ArchiveError{Op: "read header", Message: err.Error(), Err: err})
		}

		j.pathnames = append(j.pathnames, e.Pathname)
		j.cfg.Logger().Debug("extract entry", "name", e.Pathname, "type", e.Type)

		err = writer.WriteHeader(e)
		if errors.Is(err, ErrUnsupportedFile) {
			td.UnsupportedFiles++
		}
		skipped := Classify(err) == StatusWarn && errors.Is(err, ErrUnsupportedFile)
		if err := status.check("write header", err); err != nil {
			return err
		}

		if e.Size != 0 {
			if err := j.copyData(reader, writer, status, td); err != nil {
				return err
			}
		}

		if err := status.check("finish entry", writer.FinishEntry()); err != nil {
			return err
		}
		if !skipped {
			td.countEntry(e)
		}
	}
}

// copyData streams the blocks of the current entry from reader to writer.
func (j *Job) copyData(reader ArchiveReader, writer DiskWriter, status *statusChecker, td *TelemetryData) error {
	for {
		b, off, err := reader.ReadBlock()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err := status.check("read data", err); err != nil {
			return err
		}

		// check extraction size
		td.ExtractionSize += int64(len(b))
		if err := j.cfg.CheckExtractionSize(td.ExtractionSize); err != nil {
			return status.check("read data", &ArchiveError{Op: "read data", Message: err.Error(), Err: err})
		}

		if err := status.check("write data", writer.WriteBlock(b, off)); err != nil {
			return err
		}
	}
}
