// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// archiveWalker is an interface that represents a file walker in an archive
type archiveWalker interface {
	// Type returns the archive format, e.g. "tar" or "zip".
	Type() string

	// Next returns the next entry or io.EOF.
	Next() (archiveEntry, error)

	// Streaming returns true if the payload of an entry must be consumed before
	// the next entry can be read.
	Streaming() bool
}

// archiveEntry is an interface that represents a file in an archive
type archiveEntry interface {
	// Header returns the metadata of the entry.
	Header() *Entry

	// Open returns a reader for the payload of the entry.
	Open() (io.ReadCloser, error)
}

// matchesMagicBytes checks if data contains one of magicBytes at offset.
func matchesMagicBytes(data []byte, offset int, magicBytes [][]byte) bool {
	// check all possible magic bytes until match is found
	for _, mb := range magicBytes {
		// check if header is long enough
		if offset+len(mb) > len(data) {
			continue
		}

		// check for byte match
		if bytes.Equal(mb, data[offset:offset+len(mb)]) {
			return true
		}
	}

	// no match found
	return false
}

// keyring hands out passphrases to the format walkers.
type keyring struct {
	ctx      context.Context
	fixed    string
	hasFixed bool
	resolver PassphraseResolver
	logger   logger
}

// passphrase returns the passphrase for the encrypted entry e. A fixed passphrase
// wins over the resolver; the resolver is called on every invocation.
func (k *keyring) passphrase(e *Entry) (string, error) {
	if k.hasFixed {
		return k.fixed, nil
	}
	if k.resolver == nil {
		return "", fmt.Errorf("passphrase required for %s", e.Pathname)
	}
	k.logger.Debug("resolve passphrase", "name", e.Pathname)
	pw, err := k.resolver.ResolvePassphrase(k.ctx, e)
	if err != nil {
		return "", fmt.Errorf("cannot resolve passphrase for %s: %w", e.Pathname, err)
	}
	return pw, nil
}
