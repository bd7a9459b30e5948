// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import "errors"

// Status is the severity of the result of an engine operation.
type Status int

const (
	// StatusOK means the operation succeeded.
	StatusOK Status = iota

	// StatusWarn means the operation succeeded with a problem worth reporting.
	StatusWarn

	// StatusFatal means the operation failed and the extraction must stop.
	StatusFatal
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarn:
		return "warning"
	}
	return "fatal"
}

// Classify returns the [Status] of an error returned by an [ArchiveReader] or a
// [DiskWriter]: nil is ok, a [*Warning] is a warning, everything else is fatal.
func Classify(err error) Status {
	if err == nil {
		return StatusOK
	}
	var w *Warning
	if errors.As(err, &w) {
		return StatusWarn
	}
	return StatusFatal
}

// statusChecker applies the three tier classification to every engine call of one
// run. Warnings are logged, recorded and counted; fatal errors are converted into an
// [ArchiveError] carrying the engine message.
type statusChecker struct {
	cfg      *Config
	td       *TelemetryData
	warnings []*Warning
}

// check classifies err, the result of the engine operation op, and returns nil to
// continue or the error that aborts the run.
func (s *statusChecker) check(op string, err error) error {
	switch Classify(err) {
	case StatusOK:
		return nil

	case StatusWarn:
		var w *Warning
		errors.As(err, &w)
		warning := &Warning{Op: w.Op, Message: w.Message, Err: w.Err}
		if warning.Op == "" {
			warning.Op = op
		}
		s.cfg.Logger().Warn(warning.Message, "op", warning.Op)
		s.warnings = append(s.warnings, warning)
		s.td.Warnings++
		s.td.LastWarning = warning.Error()
		return nil
	}

	// already classified, e.g. limit violations raised by the orchestrator
	var ae *ArchiveError
	if !errors.As(err, &ae) {
		ae = &ArchiveError{Op: op, Message: err.Error(), Err: err}
	}
	s.cfg.Logger().Error(ae.Message, "op", ae.Op)
	s.td.ExtractionErrors++
	s.td.LastExtractionError = ae
	return ae
}
