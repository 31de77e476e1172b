// Package archive bundles the downloaded files into a single ZIP archive.
//
// Only regular files directly under the source directory are archived,
// each as a top-level entry named by its base name. Entry names are unique
// because they come from one directory.
//
// A file that cannot be read is skipped and reported; the rest of the
// archive is still written. Failing to create or finalize the archive
// itself is an error wrapping model.ErrArchive.
package archive
