// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive_test

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/hashicorp/go-unarchive"
)

// TestCheckMaxFiles implements test cases
func TestCheckMaxFiles(t *testing.T) {
	// prepare test cases
	cases := []struct {
		name        string
		input       int64
		config      *unarchive.Config
		expectError bool
	}{
		{
			name:        "less files then maximum",
			input:       5,                                               // within limit
			config:      unarchive.NewConfig(unarchive.WithMaxFiles(10)), // 10
			expectError: false,
		},
		{
			name:        "more files then maximum",
			input:       15,                                              // over limit
			config:      unarchive.NewConfig(unarchive.WithMaxFiles(10)), // 10
			expectError: true,
		},
		{
			name:        "disable file counter check",
			input:       5000,                                            // ignored
			config:      unarchive.NewConfig(unarchive.WithMaxFiles(-1)), // disable
			expectError: false,
		},
	}

	// run cases
	for i, tc := range cases {
		t.Run(fmt.Sprintf("tc %d", i), func(t *testing.T) {
			want := tc.expectError
			got := tc.config.CheckMaxFiles(tc.input) != nil
			if got != want {
				t.Errorf("test case %d failed: %s", i, tc.name)
			}
		})
	}
}

// TestCheckExtractionSize implements test cases
func TestCheckExtractionSize(t *testing.T) {
	cases := []struct {
		name        string
		input       int64
		config      *unarchive.Config
		expectError bool
	}{
		{
			name:        "within limit",
			input:       1024,
			config:      unarchive.NewConfig(unarchive.WithMaxExtractionSize(2048)),
			expectError: false,
		},
		{
			name:        "over limit",
			input:       4096,
			config:      unarchive.NewConfig(unarchive.WithMaxExtractionSize(2048)),
			expectError: true,
		},
		{
			name:        "disabled",
			input:       1 << 40,
			config:      unarchive.NewConfig(unarchive.WithMaxExtractionSize(-1)),
			expectError: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.CheckExtractionSize(tc.input)
			if (err != nil) != tc.expectError {
				t.Errorf("CheckExtractionSize(%d) = %v, expectError %v", tc.input, err, tc.expectError)
			}
			if err != nil && err != unarchive.ErrMaxExtractionSizeExceeded {
				t.Errorf("expected ErrMaxExtractionSizeExceeded, got %v", err)
			}
		})
	}
}

// TestWithMaxInputSize implements test cases
func TestWithMaxInputSize(t *testing.T) {
	maxInputSize := int64(1024)
	config := &unarchive.Config{}
	option := unarchive.WithMaxInputSize(maxInputSize)
	option(config)

	if config.MaxInputSize() != maxInputSize {
		t.Errorf("Expected MaxInputSize to be %d, but got %d", maxInputSize, config.MaxInputSize())
	}
}

func TestContinueOnUnsupportedFiles(t *testing.T) {
	tests := []struct {
		name string
		cfg  *unarchive.Config
		want bool
	}{
		{
			name: "continueOnUnsupportedFiles is true",
			cfg:  unarchive.NewConfig(unarchive.WithContinueOnUnsupportedFiles(true)),
			want: true,
		},
		{
			name: "continueOnUnsupportedFiles is false",
			cfg:  unarchive.NewConfig(unarchive.WithContinueOnUnsupportedFiles(false)),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ContinueOnUnsupportedFiles(); got != tt.want {
				t.Errorf("ContinueOnUnsupportedFiles() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithBlockSize(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int
	}{
		{name: "custom block size", size: 512, want: 512},
		{name: "zero is ignored", size: 0, want: 10240},
		{name: "negative is ignored", size: -1, want: 10240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := unarchive.NewConfig(unarchive.WithBlockSize(tt.size))
			if cfg.BlockSize() != tt.want {
				t.Errorf("BlockSize() = %d, want %d", cfg.BlockSize(), tt.want)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := unarchive.NewConfig()

	if !cfg.Overwrite() {
		t.Errorf("expected overwrite to be enabled by default")
	}
	if cfg.CacheInMemory() {
		t.Errorf("expected cache on disk by default")
	}
	if cfg.DenySymlinkExtraction() || cfg.TraverseSymlinks() {
		t.Errorf("expected symlinks to be extracted but not traversed by default")
	}
	if cfg.CustomCreateDirMode() != fs.FileMode(0750) {
		t.Errorf("unexpected directory mode %v", cfg.CustomCreateDirMode())
	}
	if cfg.CustomDecompressFileMode() != fs.FileMode(0640) {
		t.Errorf("unexpected file mode %v", cfg.CustomDecompressFileMode())
	}
	if cfg.ExtractType() != "" {
		t.Errorf("expected no extract type, got %q", cfg.ExtractType())
	}

	// resource limits are opt-in for library callers
	if cfg.MaxFiles() != -1 || cfg.MaxExtractionSize() != -1 || cfg.MaxInputSize() != -1 {
		t.Errorf("expected disabled limits, got files=%d extraction=%d input=%d",
			cfg.MaxFiles(), cfg.MaxExtractionSize(), cfg.MaxInputSize())
	}
	if err := cfg.CheckMaxFiles(1 << 40); err != nil {
		t.Errorf("expected no max files error, got %v", err)
	}
	if err := cfg.CheckExtractionSize(1 << 40); err != nil {
		t.Errorf("expected no extraction size error, got %v", err)
	}
}

func TestExtractFlags(t *testing.T) {
	tests := []struct {
		name string
		cfg  *unarchive.Config
		want unarchive.ExtractFlags
	}{
		{
			name: "default",
			cfg:  unarchive.NewConfig(),
			want: unarchive.ExtractTime | unarchive.ExtractPerm | unarchive.ExtractACL | unarchive.ExtractFFlags,
		},
		{
			name: "drop file attributes",
			cfg:  unarchive.NewConfig(unarchive.WithDropFileAttributes(true)),
			want: unarchive.ExtractACL | unarchive.ExtractFFlags,
		},
		{
			name: "preserve owner and xattrs",
			cfg:  unarchive.NewConfig(unarchive.WithPreserveOwner(true), unarchive.WithPreserveXattrs(true)),
			want: unarchive.ExtractTime | unarchive.ExtractPerm | unarchive.ExtractACL | unarchive.ExtractFFlags | unarchive.ExtractOwner | unarchive.ExtractXattr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ExtractFlags(); got != tt.want {
				t.Errorf("ExtractFlags() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestWithLogger implements test cases
func TestWithLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	config := &unarchive.Config{}
	option := unarchive.WithLogger(logger)
	option(config)

	if config.Logger() == nil {
		t.Errorf("Expected Logger to be set, but it was nil")
	}
}

func TestWithTelemetryHook(t *testing.T) {
	var called bool
	cfg := unarchive.NewConfig(unarchive.WithTelemetryHook(func(ctx context.Context, d *unarchive.TelemetryData) {
		called = true
	}))
	cfg.TelemetryHook()(context.Background(), &unarchive.TelemetryData{})
	if !called {
		t.Errorf("expected telemetry hook to be called")
	}

	// a missing hook is replaced by a noop
	(&unarchive.Config{}).TelemetryHook()(context.Background(), &unarchive.TelemetryData{})
}

func TestPatternFilter(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		path    string
		want    bool
	}{
		{name: "no patterns", path: "a/b.txt", want: true},
		{name: "include match", include: []string{"*.txt"}, path: "b.txt", want: true},
		{name: "include miss", include: []string{"*.txt"}, path: "b.bin", want: false},
		{name: "exclude wins", include: []string{"*"}, exclude: []string{"secret*"}, path: "secret.txt", want: false},
		{name: "exclude only", exclude: []string{"*.bin"}, path: "a.txt", want: true},
		{name: "malformed pattern never matches", include: []string{"[a-"}, path: "a", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := unarchive.PatternFilter(tt.include, tt.exclude)
			if got := f(&unarchive.Entry{Pathname: tt.path}); got != tt.want {
				t.Errorf("PatternFilter(%v, %v)(%q) = %v, want %v", tt.include, tt.exclude, tt.path, got, tt.want)
			}
		})
	}
}
