// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import "context"

// PassphraseResolver supplies the passphrase for an encrypted entry. It is only
// called when the reader meets an entry that needs a passphrase.
type PassphraseResolver interface {
	ResolvePassphrase(ctx context.Context, e *Entry) (string, error)
}

// PassphraseResolverFunc adapts a function to the [PassphraseResolver] interface.
type PassphraseResolverFunc func(ctx context.Context, e *Entry) (string, error)

// ResolvePassphrase calls f.
func (f PassphraseResolverFunc) ResolvePassphrase(ctx context.Context, e *Entry) (string, error) {
	return f(ctx, e)
}

// passphraseKind tags the variant held by a [Passphrase].
type passphraseKind int

const (
	passphraseNone passphraseKind = iota
	passphraseFixed
	passphraseResolver
)

// Passphrase is either a fixed value or a resolver. The zero value holds neither.
type Passphrase struct {
	kind     passphraseKind
	fixed    string
	resolver PassphraseResolver
}

// FixedPassphrase returns a [Passphrase] that always uses value.
func FixedPassphrase(value string) Passphrase {
	return Passphrase{kind: passphraseFixed, fixed: value}
}

// ResolvedPassphrase returns a [Passphrase] that asks r for every locked entry.
func ResolvedPassphrase(r PassphraseResolver) Passphrase {
	return Passphrase{kind: passphraseResolver, resolver: r}
}

// IsSet returns true if p holds a fixed value or a resolver.
func (p Passphrase) IsSet() bool {
	return p.kind != passphraseNone
}

// Fixed returns the fixed value and true, if p is a fixed passphrase.
func (p Passphrase) Fixed() (string, bool) {
	return p.fixed, p.kind == passphraseFixed
}

// Resolver returns the resolver and true, if p is a resolver.
func (p Passphrase) Resolver() (PassphraseResolver, bool) {
	return p.resolver, p.kind == passphraseResolver
}

// apply registers p on the reader.
func (p Passphrase) apply(r ArchiveReader) error {
	switch p.kind {
	case passphraseFixed:
		return r.SetPassphrase(p.fixed)
	case passphraseResolver:
		return r.SetPassphraseResolver(p.resolver)
	}
	return nil
}
