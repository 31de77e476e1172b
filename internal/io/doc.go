// Package ioutils provides file system utilities for the annex downloader.
//
// This package contains functions for:
//   - Directory creation (create or reuse)
//   - Non-recursive listing of regular files
//   - File removal and size lookup
//   - Writing JSON reports atomically
//
// # File Operations
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("downloads")
//
//	// List files to archive
//	files, err := ioutils.ListRegularFiles("downloads")
//
//	// Write the run report
//	err := ioutils.WriteJSON("report.json", report)
package ioutils
