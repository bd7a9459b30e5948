// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testWriter returns a disk writer working in a temporary working directory.
func testWriter(t *testing.T, cfg *Config) (DiskWriter, string) {
	t.Helper()
	dir := t.TempDir()
	wd, err := enterDir(dir)
	require.NoError(t, err)
	t.Cleanup(func() { wd.restore() })

	w := NewDiskWriter(cfg)
	require.NoError(t, w.SetOptions(cfg.ExtractFlags()))
	require.NoError(t, w.SetStandardLookup())
	return w, dir
}

// writeEntry writes e with data and finishes it.
func writeEntry(w DiskWriter, e *Entry, data string) error {
	if err := w.WriteHeader(e); err != nil {
		return err
	}
	if data != "" {
		if err := w.WriteBlock([]byte(data), 0); err != nil {
			return err
		}
	}
	return w.FinishEntry()
}

func TestWriterEntries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	w, dir := testWriter(t, NewConfig())

	entries := []struct {
		e    *Entry
		data string
	}{
		{e: &Entry{Pathname: "d/", Type: EntryDir, Mode: 0o750, ModTime: mtime}},
		{e: &Entry{Pathname: "d/file.txt", Type: EntryRegular, Mode: 0o600, ModTime: mtime, Size: 5}, data: "hello"},
		{e: &Entry{Pathname: "d/link", Type: EntrySymlink, Linkname: "file.txt", ModTime: mtime}},
		{e: &Entry{Pathname: "d/hard", Type: EntryHardlink, Linkname: "d/file.txt"}},
		{e: &Entry{Pathname: "nested/deep/file", Type: EntryRegular, Size: 1}, data: "x"},
	}
	for _, tc := range entries {
		require.NoError(t, writeEntry(w, tc.e, tc.data), tc.e.Pathname)
	}
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "d", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	stat, err := os.Stat(filepath.Join(dir, "d", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), stat.Mode().Perm())
	assert.True(t, stat.ModTime().Equal(mtime))

	dstat, err := os.Stat(filepath.Join(dir, "d"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), dstat.Mode().Perm())
	assert.True(t, dstat.ModTime().Equal(mtime))

	target, err := os.Readlink(filepath.Join(dir, "d", "link"))
	require.NoError(t, err)
	assert.Equal(t, "file.txt", target)

	data, err = os.ReadFile(filepath.Join(dir, "d", "hard"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	nstat, err := os.Stat(filepath.Join(dir, "nested", "deep"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), nstat.Mode().Perm()&0o750)
}

func TestWriterSecurity(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	tests := []struct {
		name      string
		cfg       *Config
		entries   []*Entry
		expectErr bool
		unsupport bool
	}{
		{
			name:      "path traversal",
			cfg:       NewConfig(),
			entries:   []*Entry{{Pathname: "../escape", Type: EntryRegular}},
			expectErr: true,
		},
		{
			name:      "absolute path",
			cfg:       NewConfig(),
			entries:   []*Entry{{Pathname: "/etc/passwd", Type: EntryRegular}},
			expectErr: true,
		},
		{
			name:      "symlink with absolute target",
			cfg:       NewConfig(),
			entries:   []*Entry{{Pathname: "link", Type: EntrySymlink, Linkname: "/etc/passwd"}},
			expectErr: true,
		},
		{
			name:      "symlink with traversal target",
			cfg:       NewConfig(),
			entries:   []*Entry{{Pathname: "a/link", Type: EntrySymlink, Linkname: "../../outside"}},
			expectErr: true,
		},
		{
			name: "write through symlink",
			cfg:  NewConfig(),
			entries: []*Entry{
				{Pathname: "dir", Type: EntrySymlink, Linkname: "."},
				{Pathname: "dir/file", Type: EntryRegular},
			},
			expectErr: true,
		},
		{
			name: "write through symlink, traversal enabled",
			cfg:  NewConfig(WithInsecureTraverseSymlinks(true)),
			entries: []*Entry{
				{Pathname: "sub/", Type: EntryDir},
				{Pathname: "dir", Type: EntrySymlink, Linkname: "sub"},
				{Pathname: "dir/file", Type: EntryRegular},
			},
		},
		{
			name:      "symlink denied",
			cfg:       NewConfig(WithDenySymlinkExtraction(true)),
			entries:   []*Entry{{Pathname: "link", Type: EntrySymlink, Linkname: "target"}},
			expectErr: true,
			unsupport: true,
		},
		{
			name:      "fifo",
			cfg:       NewConfig(),
			entries:   []*Entry{{Pathname: "fifo", Type: EntryFIFO}},
			expectErr: true,
			unsupport: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := testWriter(t, tc.cfg)
			var err error
			for _, e := range tc.entries {
				if err = writeEntry(w, e, ""); err != nil {
					break
				}
			}
			require.NoError(t, w.Close())
			if !tc.expectErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, StatusFatal, Classify(err))
			assert.Equal(t, tc.unsupport, errors.Is(err, ErrUnsupportedFile))
		})
	}
}

func TestWriterContinueOnUnsupported(t *testing.T) {
	w, dir := testWriter(t, NewConfig(WithContinueOnUnsupportedFiles(true)))

	err := w.WriteHeader(&Entry{Pathname: "dev", Type: EntryCharDevice})
	require.Error(t, err)
	assert.Equal(t, StatusWarn, Classify(err))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	require.NoError(t, w.WriteBlock([]byte("ignored"), 0))
	require.NoError(t, w.FinishEntry())
	require.NoError(t, w.Close())

	_, err = os.Lstat(filepath.Join(dir, "dev"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriterOverwrite(t *testing.T) {
	tests := []struct {
		name      string
		overwrite bool
		expectErr bool
	}{
		{name: "overwrite", overwrite: true},
		{name: "keep existing", overwrite: false, expectErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, dir := testWriter(t, NewConfig(WithOverwrite(tc.overwrite)))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), []byte("old"), 0o644))

			err := writeEntry(w, &Entry{Pathname: "file", Type: EntryRegular, Size: 3}, "new")
			require.NoError(t, w.Close())

			data, rerr := os.ReadFile(filepath.Join(dir, "file"))
			require.NoError(t, rerr)
			if tc.expectErr {
				assert.Error(t, err)
				assert.Equal(t, "old", string(data))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "new", string(data))
		})
	}

	t.Run("never replaces directories", func(t *testing.T) {
		w, dir := testWriter(t, NewConfig())
		require.NoError(t, os.Mkdir(filepath.Join(dir, "dir"), 0o755))
		assert.Error(t, writeEntry(w, &Entry{Pathname: "dir", Type: EntryRegular}, ""))
		require.NoError(t, w.Close())
	})
}

func TestWriterSparse(t *testing.T) {
	w, dir := testWriter(t, NewConfig())

	e := &Entry{Pathname: "sparse", Type: EntryRegular, Sparse: true, Size: 12}
	require.NoError(t, w.WriteHeader(e))
	require.NoError(t, w.WriteBlock([]byte("abcd"), 0))
	require.NoError(t, w.WriteBlock(make([]byte, 4), 4))
	require.NoError(t, w.WriteBlock(make([]byte, 4), 8))
	require.NoError(t, w.FinishEntry())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "sparse"))
	require.NoError(t, err)
	assert.Equal(t, append([]byte("abcd"), make([]byte, 8)...), data)
}

func TestWriterMetadataWarnings(t *testing.T) {
	w, _ := testWriter(t, NewConfig())

	err := writeEntry(w, &Entry{Pathname: "flags", Type: EntryRegular, FFlags: "nodump"}, "")
	require.Error(t, err)
	var warning *Warning
	require.ErrorAs(t, err, &warning)
	assert.Equal(t, "finish entry: cannot restore file flags", warning.Error())
	require.NoError(t, w.Close())

	// file flags are only restored if requested
	w, _ = testWriter(t, NewConfig())
	require.NoError(t, w.SetOptions(0))
	assert.NoError(t, writeEntry(w, &Entry{Pathname: "flags", Type: EntryRegular, FFlags: "nodump"}, ""))
	require.NoError(t, w.Close())
}

func TestWriterProtocolErrors(t *testing.T) {
	w, _ := testWriter(t, NewConfig())

	assert.Error(t, w.WriteHeader(nil))
	assert.Error(t, w.WriteBlock([]byte("a"), 0))
	assert.Error(t, w.FinishEntry())

	require.NoError(t, w.WriteHeader(&Entry{Pathname: "a", Type: EntryRegular}))
	assert.Error(t, w.WriteHeader(&Entry{Pathname: "b", Type: EntryRegular}))
	require.NoError(t, w.FinishEntry())
	require.NoError(t, w.Close())
}

func TestExtractFlagsString(t *testing.T) {
	assert.Equal(t, "time|perm|acl|fflags", NewConfig().ExtractFlags().String())
	assert.Equal(t, "acl|fflags|owner|xattr", NewConfig(
		WithDropFileAttributes(true),
		WithPreserveOwner(true),
		WithPreserveXattrs(true),
	).ExtractFlags().String())
}

func TestLocalName(t *testing.T) {
	tests := map[string]string{
		"a/b/c":  filepath.Join("a", "b", "c"),
		"a/b/":   filepath.Join("a", "b"),
		"./":     "",
		".":      "",
		"a/../b": "b",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, localName(in), in)
	}
	assert.True(t, filepath.IsAbs(localName("/etc/passwd")) || runtime.GOOS == "windows")
}
