// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive_test

import (
	"archive/tar"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/yeka/zip"
)

// testEntry describes an entry of a test archive.
type testEntry struct {
	name     string
	body     string
	typeflag byte
	linkname string
	mode     int64
}

// file returns a regular file entry.
func file(name, body string) testEntry {
	return testEntry{name: name, body: body, typeflag: tar.TypeReg, mode: 0o644}
}

// dir returns a directory entry.
func dir(name string) testEntry {
	return testEntry{name: name, typeflag: tar.TypeDir, mode: 0o755}
}

// symlink returns a symlink entry.
func symlink(name, target string) testEntry {
	return testEntry{name: name, typeflag: tar.TypeSymlink, linkname: target, mode: 0o777}
}

// testModTime is the modification time of all test entries.
var testModTime = time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)

// createTar returns a tar archive holding entries in order.
func createTar(t *testing.T, entries ...testEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Typeflag: e.typeflag,
			Linkname: e.linkname,
			Mode:     e.mode,
			ModTime:  testModTime,
		}
		if e.typeflag == tar.TypeReg {
			hdr.Size = int64(len(e.body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("cannot write tar header: %v", err)
		}
		if hdr.Size > 0 {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatalf("cannot write tar data: %v", err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("cannot close tar writer: %v", err)
	}
	return buf.Bytes()
}

// gzipData compresses data with gzip.
func gzipData(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("cannot compress data: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("cannot close gzip writer: %v", err)
	}
	return buf.Bytes()
}

// createZip returns a zip archive holding the regular files and directories of
// entries. If password is not empty, files are AES-256 encrypted.
func createZip(t *testing.T, password string, entries ...testEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		if e.typeflag == tar.TypeDir {
			hdr := &zip.FileHeader{Name: e.name, Method: zip.Store}
			hdr.SetMode(fs.ModeDir | fs.FileMode(e.mode))
			if _, err := zw.CreateHeader(hdr); err != nil {
				t.Fatalf("cannot create zip dir: %v", err)
			}
			continue
		}

		var (
			w   interface{ Write([]byte) (int, error) }
			err error
		)
		if password != "" {
			w, err = zw.Encrypt(e.name, password, zip.AES256Encryption)
		} else {
			hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
			hdr.SetMode(fs.FileMode(e.mode))
			hdr.SetModTime(testModTime)
			w, err = zw.CreateHeader(hdr)
		}
		if err != nil {
			t.Fatalf("cannot create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			t.Fatalf("cannot write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("cannot close zip writer: %v", err)
	}
	return buf.Bytes()
}

// writeArchive writes data to name in a new temporary directory and returns the path.
func writeArchive(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("cannot write archive: %v", err)
	}
	return path
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	previous, err := os.Getwd()
	if err != nil {
		t.Fatalf("cannot get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("cannot change working directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(previous); err != nil {
			t.Errorf("cannot restore working directory: %v", err)
		}
	})
}

// readFile returns the content of name in dir.
func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("cannot read %s: %v", name, err)
	}
	return string(b)
}
