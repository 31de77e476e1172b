package model

import "errors"

var (
	// ErrFetch is returned when a page or a file cannot be retrieved within
	// the timeout, or the server answers with a non-success status.
	ErrFetch = errors.New("fetch failed")

	// ErrParse is returned when the page HTML cannot be parsed.
	ErrParse = errors.New("parse failed")

	// ErrWrite is returned when a directory or a file cannot be written.
	ErrWrite = errors.New("write failed")

	// ErrArchive is returned when the archive container cannot be opened
	// for writing or cannot be finalized.
	ErrArchive = errors.New("archive failed")

	// ErrArchiveEntry is returned for a single file that cannot be added to
	// the archive. The archive build continues without it.
	ErrArchiveEntry = errors.New("archive entry failed")

	// ErrInvalidURL is returned when a URL cannot become a request or a file
	// name. Retrying cannot fix it.
	ErrInvalidURL = errors.New("invalid url")

	// ErrInvalidSettings is returned by settings validation.
	ErrInvalidSettings = errors.New("invalid settings")
)
