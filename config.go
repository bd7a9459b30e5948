// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration struct holds all ambient options of an extraction: logging,
// limits, telemetry and how file attributes are restored. The configuration options
// can be adjusted using the option pattern style.
//
// The default configuration prevents path traversal and symlink attacks. Resource
// limits are disabled by default, callers extracting untrusted input should set
// them with [WithMaxFiles], [WithMaxExtractionSize] and [WithMaxInputSize].
type Config struct {
	// blockSize is the size of the data blocks read from the archive
	blockSize int

	// cacheInMemory offers the option to enable/disable caching in memory. This applies
	// to decompressed zip, 7zip and iso9660 archives, which need random access.
	cacheInMemory bool

	// continueOnUnsupportedFiles turns unsupported files into warnings
	continueOnUnsupportedFiles bool

	// customCreateDirMode is the file mode for created directories, that are not defined in the archive (respecting umask)
	customCreateDirMode fs.FileMode

	// customDecompressFileMode is the file mode for a decompressed file (respecting umask)
	customDecompressFileMode fs.FileMode

	// denySymlinkExtraction offers the option to enable/disable the extraction of symlinks
	denySymlinkExtraction bool

	// dropFileAttributes is a flag drop the file attributes of the extracted files
	dropFileAttributes bool

	// extractionType limits the reader to a single format or filter
	extractionType string

	// traverseSymlinks traverses symlinks to directories during extraction
	traverseSymlinks bool

	// logger stream for extraction
	logger logger

	// maxExtractionSize is the maximum size of all files after decompression.
	// Set value to -1 to disable the check.
	maxExtractionSize int64

	// maxFiles is the maximum of files (including folder and symlinks) in an archive.
	// Set value to -1 to disable the check.
	maxFiles int64

	// maxInputSize is the maximum size of the input
	// Set value to -1 to disable the check.
	maxInputSize int64

	// telemetryHook is a function to consume telemetry data after finished extraction
	// Important: do not adjust this value after extraction started
	telemetryHook TelemetryHook

	// Define if files should be overwritten in the destination
	overwrite bool

	// preserveOwner is a flag to preserve the owner of the extracted files
	preserveOwner bool

	// preserveXattrs is a flag to restore all extended attributes, not only ACLs
	preserveXattrs bool
}

// BlockSize returns the size of the data blocks read from the archive.
func (c *Config) BlockSize() int {
	return c.blockSize
}

// CacheInMemory returns true if caching in memory is enabled. This applies to
// decompressed archives that need random access (zip, 7zip, iso9660).
//
// If set to false, the cache is stored on disk to avoid memory exhaustion.
func (c *Config) CacheInMemory() bool {
	return c.cacheInMemory
}

// CheckMaxFiles checks if counter exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxFilesExceeded] error is returned.
func (c *Config) CheckMaxFiles(counter int64) error {

	// check if disabled
	if c.MaxFiles() == -1 {
		return nil
	}

	// check value
	if counter > c.MaxFiles() {
		return ErrMaxFilesExceeded
	}
	return nil
}

// CheckExtractionSize checks if fileSize exceeds configured maximum. If the maximum is exceeded,
// a [ErrMaxExtractionSizeExceeded] error is returned.
func (c *Config) CheckExtractionSize(fileSize int64) error {

	// check if disabled
	if c.MaxExtractionSize() == -1 {
		return nil
	}

	// check value
	if fileSize > c.MaxExtractionSize() {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// ContinueOnUnsupportedFiles returns true if unsupported files, e.g., FIFO, block or
// character devices, should be skipped with a warning.
//
// If symlinks are not allowed and a symlink is found, it is considered an unsupported
// file.
func (c *Config) ContinueOnUnsupportedFiles() bool {
	return c.continueOnUnsupportedFiles
}

// CustomCreateDirMode returns the file mode for created directories,
// that are not defined in the archive. (respecting umask)
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// CustomDecompressFileMode returns the file mode for a decompressed file.
// (respecting umask)
func (c *Config) CustomDecompressFileMode() fs.FileMode {
	return c.customDecompressFileMode
}

// DenySymlinkExtraction returns true if symlinks are NOT allowed.
func (c *Config) DenySymlinkExtraction() bool {
	return c.denySymlinkExtraction
}

// DropFileAttributes returns true if the file attributes should be dropped.
func (c *Config) DropFileAttributes() bool {
	return c.dropFileAttributes
}

// ExtractType returns the specified extraction type.
func (c *Config) ExtractType() string {
	return c.extractionType
}

// ExtractFlags returns the flags the disk writer is configured with: timestamps,
// permissions, ACLs and file flags, plus owner and extended attributes if enabled.
// Dropping file attributes clears timestamps and permissions.
func (c *Config) ExtractFlags() ExtractFlags {
	flags := ExtractTime | ExtractPerm | ExtractACL | ExtractFFlags
	if c.dropFileAttributes {
		flags &^= ExtractTime | ExtractPerm
	}
	if c.preserveOwner {
		flags |= ExtractOwner
	}
	if c.preserveXattrs {
		flags |= ExtractXattr
	}
	return flags
}

// TraverseSymlinks returns true if symlinks should be traversed during extraction.
func (c *Config) TraverseSymlinks() bool {
	return c.traverseSymlinks
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxExtractionSize returns the maximum size over all decompressed and extracted files.
func (c *Config) MaxExtractionSize() int64 {
	return c.maxExtractionSize
}

// MaxFiles returns the maximum of files (including folder and symlinks) in an archive.
func (c *Config) MaxFiles() int64 {
	return c.maxFiles
}

// MaxInputSize returns the maximum size of the input.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// Overwrite returns true if files should be overwritten in the destination.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// PreserveOwner returns true if the owner of the extracted files should
// be preserved. This option is only available on Unix systems requiring
// root privileges.
func (c *Config) PreserveOwner() bool {
	return c.preserveOwner
}

// PreserveXattrs returns true if all extended attributes recorded in the archive
// should be restored.
func (c *Config) PreserveXattrs() bool {
	return c.preserveXattrs
}

// TelemetryHook returns the  telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return func(ctx context.Context, d *TelemetryData) {
			// noop
		}
	}
	return c.telemetryHook
}

const (
	defaultBlockSize                  = 10240         // read block size
	defaultCacheInMemory              = false         // cache on disk
	defaultContinueOnUnsupportedFiles = false         // stop on unsupported files and return error
	defaultCustomCreateDirMode        = 0750          // default directory permissions rwxr-x---
	defaultCustomDecompressFileMode   = 0640          // default decompression permissions rw-r-----
	defaultDenySymlinkExtraction      = false         // allow symlink extraction
	defaultDropFileAttributes         = false         // restore file attributes from archive
	defaultExtractionType             = ""            // don't limit extraction type
	defaultMaxFiles                   = -1            // no limit, the cli sets 100k files
	defaultMaxExtractionSize          = -1            // no limit, the cli sets 1 GiB
	defaultMaxInputSize               = -1            // no limit, the cli sets 1 GiB
	defaultOverwrite                  = true          // replace existing files
	defaultPreserveOwner              = false         // don't preserve owner
	defaultPreserveXattrs             = false         // restore ACLs only
	defaultTraverseSymlinks           = false         // don't traverse symlinks
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		blockSize:                  defaultBlockSize,
		cacheInMemory:              defaultCacheInMemory,
		continueOnUnsupportedFiles: defaultContinueOnUnsupportedFiles,
		customCreateDirMode:        defaultCustomCreateDirMode,
		customDecompressFileMode:   defaultCustomDecompressFileMode,
		denySymlinkExtraction:      defaultDenySymlinkExtraction,
		dropFileAttributes:         defaultDropFileAttributes,
		extractionType:             defaultExtractionType,
		logger:                     defaultLogger,
		maxFiles:                   defaultMaxFiles,
		maxExtractionSize:          defaultMaxExtractionSize,
		maxInputSize:               defaultMaxInputSize,
		overwrite:                  defaultOverwrite,
		telemetryHook:              defaultTelemetryHook,
		traverseSymlinks:           defaultTraverseSymlinks,
		preserveOwner:              defaultPreserveOwner,
		preserveXattrs:             defaultPreserveXattrs,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithBlockSize options pattern function to set the size of the data blocks read
// from the archive. Values below 1 are ignored.
func WithBlockSize(size int) ConfigOption {
	return func(c *Config) {
		if size > 0 {
			c.blockSize = size
		}
	}
}

// WithCacheInMemory options pattern function to enable/disable caching in memory.
// This applies to decompressed archives that need random access.
//
// If set to false, the cache is stored on disk to avoid memory exhaustion.
func WithCacheInMemory(cache bool) ConfigOption {
	return func(c *Config) {
		c.cacheInMemory = cache
	}
}

// WithContinueOnUnsupportedFiles options pattern function to
// enable/disable skipping unsupported files. An unsupported file is a file
// that is not supported by the disk writer. If symlinks are not allowed
// and a symlink is found, it is considered an unsupported file.
func WithContinueOnUnsupportedFiles(ctd bool) ConfigOption {
	return func(c *Config) {
		c.continueOnUnsupportedFiles = ctd
	}
}

// WithCustomCreateDirMode options pattern function to set the file mode
// for created directories, that are not defined in the archive. (respecting umask)
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithCustomDecompressFileMode options pattern function to set the file mode for a
// decompressed file. (respecting umask)
func WithCustomDecompressFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customDecompressFileMode = mode
	}
}

// WithDenySymlinkExtraction options pattern function to deny symlink extraction.
func WithDenySymlinkExtraction(deny bool) ConfigOption {
	return func(c *Config) {
		c.denySymlinkExtraction = deny
	}
}

// WithDropFileAttributes options pattern function to drop the
// file attributes of the extracted files.
func WithDropFileAttributes(drop bool) ConfigOption {
	return func(c *Config) {
		c.dropFileAttributes = drop
	}
}

// WithExtractType options pattern function to limit the reader to one format or
// filter, e.g. "zip" or "gz".
func WithExtractType(extractionType string) ConfigOption {
	return func(c *Config) {
		if len(extractionType) > 0 {
			c.extractionType = extractionType
		}
	}
}

// WithInsecureTraverseSymlinks options pattern function to traverse symlinks during extraction.
func WithInsecureTraverseSymlinks(traverse bool) ConfigOption {
	return func(c *Config) {
		c.traverseSymlinks = traverse
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxExtractionSize options pattern function to set maximum size over all decompressed
// and extracted files. (-1 to disable check)
func WithMaxExtractionSize(maxExtractionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExtractionSize = maxExtractionSize
	}
}

// WithMaxFiles options pattern function to set maximum number of extracted, files, directories
// and symlinks during the extraction. (-1 to disable check)
func WithMaxFiles(maxFiles int64) ConfigOption {
	return func(c *Config) {
		c.maxFiles = maxFiles
	}
}

// WithMaxInputSize options pattern function to set MaxInputSize for extraction input file. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithOverwrite options pattern function specify if files should be overwritten in the destination.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithPreserveOwner options pattern function to preserve the owner of
// the extracted files. This option is only available on Unix systems
// requiring root privileges.
func WithPreserveOwner(preserve bool) ConfigOption {
	return func(c *Config) {
		c.preserveOwner = preserve
	}
}

// WithPreserveXattrs options pattern function to restore all extended attributes
// recorded in the archive.
func WithPreserveXattrs(preserve bool) ConfigOption {
	return func(c *Config) {
		c.preserveXattrs = preserve
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after extraction.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
