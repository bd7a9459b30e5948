// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMaxFilesExceeded indicates that the maximum number of files is exceeded.
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")

	// ErrMaxExtractionSizeExceeded indicates that the maximum size is exceeded.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")

	// ErrUnsupportedFile is returned by the disk writer for entries it cannot create,
	// e.g. devices, FIFOs or denied symlinks.
	ErrUnsupportedFile = errors.New("unsupported file")

	// ErrMaxInputSizeExceeded indicates that the source is larger than the
	// configured maximum input size.
	ErrMaxInputSizeExceeded = errors.New("input size exceeds maximum input size")

	// ErrUnrecognizedFormat is returned when the input matches no enabled format or filter.
	ErrUnrecognizedFormat = errors.New("unrecognized archive format")
)

// ConfigError is returned by [New] and [NewFromMap] for invalid, contradictory or
// unreadable construction options. No archive I/O happens before it is returned.
type ConfigError struct {
	// Msg describes the problem.
	Msg string

	// Keys lists unrecognized option keys in sorted order, if that is the problem.
	Keys []string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if len(e.Keys) > 0 {
		return fmt.Sprintf("%s: %s", e.Msg, strings.Join(e.Keys, ", "))
	}
	return e.Msg
}

// UsageError is returned when a [Job] is extracted more than once.
type UsageError struct {
	Msg string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return e.Msg
}

// IoError is returned when the destination directory cannot be created or entered.
type IoError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IoError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IoError) Unwrap() error {
	return e.Err
}

// ArchiveError is a fatal status reported by the archive reader or the disk writer.
// Message is the engine's error string, unmodified.
type ArchiveError struct {
	// Op is the engine operation that failed, e.g. "read header" or "write data".
	Op string

	// Message is the error string of the engine that reported the failure.
	Message string

	// Err is the original engine error.
	Err error
}

// Error implements the error interface.
func (e *ArchiveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying engine error.
func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// Warning is a non-fatal status. Engines return it to signal that an operation
// completed with a problem that does not stop the extraction. Warnings are logged,
// collected on the [Job] and never returned by [Job.Extract].
type Warning struct {
	Op      string
	Message string

	// Err is the cause of the warning, if there is one.
	Err error
}

// Error implements the error interface.
func (w *Warning) Error() string {
	if w.Op == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Op, w.Message)
}

// Unwrap returns the cause of the warning.
func (w *Warning) Unwrap() error {
	return w.Err
}

// warnf creates a [Warning] for op.
func warnf(op string, format string, args ...interface{}) *Warning {
	return &Warning{Op: op, Message: fmt.Sprintf(format, args...)}
}

// unsupportedFile returns an error that wraps [ErrUnsupportedFile] for name.
func unsupportedFile(name string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
}
