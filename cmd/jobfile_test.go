// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hashicorp/go-unarchive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJob(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadJob(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		job, err := loadJob("")
		require.NoError(t, err)
		assert.Empty(t, job.options)
		assert.Empty(t, job.destination)
	})

	t.Run("cli keys are removed from options", func(t *testing.T) {
		job, err := loadJob(writeJob(t, `
filename: [part.001, part.002]
passphrase: secret
include: "*.txt"
exclude:
  - secret.txt
destination: out
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"*.txt"}, job.include)
		assert.Equal(t, []string{"secret.txt"}, job.exclude)
		assert.Equal(t, "out", job.destination)
		assert.Equal(t, map[string]interface{}{
			"filename":   []interface{}{"part.001", "part.002"},
			"passphrase": "secret",
		}, job.options)
	})

	t.Run("empty document", func(t *testing.T) {
		job, err := loadJob(writeJob(t, ""))
		require.NoError(t, err)
		assert.NotNil(t, job.options)
	})

	tests := []struct {
		name    string
		content string
		expect  string
	}{
		{name: "invalid yaml", content: "filename: [", expect: "cannot parse job file"},
		{name: "include of wrong type", content: "include: 1", expect: "include must be a list of strings"},
		{name: "exclude with numbers", content: "exclude: [a, 2]", expect: "exclude must be a list of strings"},
		{name: "destination of wrong type", content: "destination: [a]", expect: "destination must be a string"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadJob(writeJob(t, tc.content))
			assert.ErrorContains(t, err, tc.expect)
		})
	}

	_, err := loadJob(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "cannot read job file")
}

func TestNewJobFlagsOverrideJobFile(t *testing.T) {
	job, err := loadJob(writeJob(t, "filename: from-job.tar\npassphrase: from-job\n"))
	require.NoError(t, err)

	archive := filepath.Join(t.TempDir(), "from-cli.tar")
	require.NoError(t, os.WriteFile(archive, []byte("data"), 0o644))

	flags := &ArchiveFlags{Archive: []string{archive}, Passphrase: "from-cli"}
	j, err := flags.newJob(job, unarchive.NewConfig())
	require.NoError(t, err)
	require.NotNil(t, j)
	assert.NotContains(t, job.options, unarchive.KeyFilename)
	assert.NotContains(t, job.options, unarchive.KeyPassphrase)
}

func TestPrintEntries(t *testing.T) {
	mtime := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	entries := []*unarchive.Entry{
		{Pathname: "dir/", Type: unarchive.EntryDir, Mode: 0o755, Size: 0, ModTime: mtime},
		{Pathname: "dir/file.txt", Type: unarchive.EntryRegular, Mode: 0o644, Size: 2048, ModTime: mtime},
		{Pathname: "dir/link", Type: unarchive.EntrySymlink, Mode: 0o777, Size: -1, Linkname: "file.txt", ModTime: mtime},
	}

	var buf bytes.Buffer
	require.NoError(t, printEntries(&buf, entries))
	out := buf.String()

	assert.Contains(t, strings.ToUpper(out), "NAME")
	assert.Contains(t, out, "dir/file.txt")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "dir/link -> file.txt")
	assert.Contains(t, out, "2023-10-01 12:00:00")
}

func TestCLIDefaultLimits(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	_, err = parser.Parse([]string{"extract", "archive.tar"})
	require.NoError(t, err)

	assert.Equal(t, int64(100000), cli.Extract.MaxFiles)
	assert.Equal(t, int64(1<<30), cli.Extract.MaxInputSize)
	assert.Equal(t, int64(1<<30), cli.Extract.MaxExtractionSize)
	assert.Equal(t, int64(60), cli.Extract.MaxExtractionTime)
}
