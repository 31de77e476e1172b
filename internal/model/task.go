package model

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// TaskStatus represents the current state of a DownloadTask.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusSucceeded  TaskStatus = "succeeded"
	StatusFailed     TaskStatus = "failed"
)

// IsFinished reports whether the status is terminal.
func (s TaskStatus) IsFinished() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// DownloadTask tracks the download of one URL.
//
// A task is created per candidate link and is mutated only by the worker
// processing it.
type DownloadTask struct {
	// URL is the absolute URL to download.
	URL string `json:"url"`

	// FileName is the last path segment of URL. Empty when URL has none.
	FileName string `json:"file_name"`

	// Path is the destination file inside the download directory.
	Path string `json:"path,omitempty"`

	// Attempts is the number of attempts made so far.
	Attempts int `json:"attempts"`

	// Status is the current state of the task.
	Status TaskStatus `json:"status"`

	// LastError is the error of the last failed attempt.
	LastError string `json:"last_error,omitempty"`

	// Bytes is the size written by the successful attempt.
	Bytes int64 `json:"bytes,omitempty"`
}

// NewDownloadTask creates a pending task whose file lives in destDir.
func NewDownloadTask(rawURL, destDir string) *DownloadTask {
	task := &DownloadTask{
		URL:    rawURL,
		Status: StatusPending,
	}
	task.FileName = FileNameFromURL(rawURL)
	if task.FileName != "" {
		task.Path = filepath.Join(destDir, task.FileName)
	}
	return task
}

// FileNameFromURL returns the last segment of the URL path, with query and
// fragment removed and percent-escapes decoded. It returns an empty string
// when the URL has no usable final segment.
//
// Example:
//
//	FileNameFromURL("https://x.org/media/Anexo_I.pdf?v=2") // "Anexo_I.pdf"
//	FileNameFromURL("https://x.org/media/")                // ""
func FileNameFromURL(rawURL string) string {
	var p string
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else {
		p = rawURL
		if i := strings.IndexAny(p, "?#"); i != -1 {
			p = p[:i]
		}
	}

	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	// Backslashes would escape the download directory on Windows.
	if strings.ContainsAny(name, `\`) {
		return ""
	}
	return name
}
