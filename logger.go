// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package unarchive

import "log/slog"

// logger receives the diagnostics of an extraction. Classified warnings are
// logged at warn level, fatal errors at error level.
type logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

var _ logger = (*slog.Logger)(nil)
