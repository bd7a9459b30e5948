// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package unarchive extracts the contents of archives (tar, zip, rar, 7z, iso9660 and
// compressed streams such as gzip, bzip2, xz, zstd, lz4, snappy, brotli and zlib)
// into a directory, or lists them without writing anything.
//
// An extraction is described by a [Job]. The job is built once with [New] (or
// [NewFromMap]) from a single source: a path, an ordered list of paths forming a
// multi-volume archive, or an in-memory buffer. [Job.Extract] drives an
// [ArchiveReader] and a [DiskWriter] entry by entry, asks the optional
// [EntryFilter] about every entry, and classifies every engine status as ok,
// [Warning] or fatal ([ArchiveError]).
//
// Extraction changes the process working directory to the destination for the
// duration of the write loop. Jobs must therefore not be extracted concurrently
// without external synchronization.
//
// Ambient behavior (logging, limits, telemetry, file attribute handling) is set with
// a [Config] built from [NewConfig].
package unarchive
