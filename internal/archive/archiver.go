package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	ioutils "github.com/perini/anexos-downloader/internal/io"
	"github.com/perini/anexos-downloader/internal/model"
)

// EntryError records a file that could not be added to the archive.
type EntryError struct {
	Name string
	Err  error
}

// Result describes a finished archive.
type Result struct {
	// Path is the archive file.
	Path string

	// Entries are the names of the complete entries, in archive order.
	Entries []string

	// Failed lists the files that could not be read and were skipped.
	Failed []EntryError
}

// Archiver packs the files of a directory into one ZIP archive.
//
// Example usage:
//
//	archiver := NewArchiver(onProgress)
//	result, err := archiver.Build("downloads", "anexos.zip")
//	if err != nil {
//	    log.Fatal(err) // errors.Is(err, model.ErrArchive)
//	}
//	fmt.Printf("%d entries\n", len(result.Entries))
type Archiver struct {
	onProgress model.ProgressFunc
}

// NewArchiver creates a new Archiver.
func NewArchiver(onProgress model.ProgressFunc) *Archiver {
	return &Archiver{onProgress: onProgress}
}

// Build writes every regular file directly under destDir into a new ZIP
// archive at archivePath, one top-level entry per file named by its base
// name, in directory listing order.
//
// The archive is assembled in a temporary file next to archivePath and
// renamed into place at the end, so a failed build never leaves a partial
// archive behind. The source directory is left untouched.
//
// Returns an error wrapping model.ErrArchive if the directory cannot be
// listed or the archive cannot be written. A file that cannot be read is
// reported with model.ErrArchiveEntry and skipped.
func (a *Archiver) Build(destDir, archivePath string) (*Result, error) {
	a.onProgress.Emit(model.ProgressEvent{Message: "Creating ZIP archive", Level: model.LevelInfo, File: archivePath})

	files, err := ioutils.ListRegularFiles(destDir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", model.ErrArchive, destDir, err)
	}

	if dir := filepath.Dir(archivePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrArchive, err)
		}
	}

	tmpPath := archivePath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", model.ErrArchive, archivePath, err)
	}

	result := &Result{Path: archivePath}
	if err := a.writeEntries(out, files, []string{archivePath, tmpPath}, result); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return nil, err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: close %s: %v", model.ErrArchive, archivePath, err)
	}
	if err := os.Rename(tmpPath, archivePath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: %v", model.ErrArchive, err)
	}

	a.onProgress.Emit(model.ProgressEvent{
		Message: fmt.Sprintf("ZIP archive created with %d entries", len(result.Entries)),
		Level:   model.LevelSuccess,
		File:    archivePath,
	})
	return result, nil
}

func (a *Archiver) writeEntries(out io.Writer, files, exclude []string, result *Result) error {
	zw := zip.NewWriter(out)

	for _, file := range files {
		if isExcluded(file, exclude) {
			continue
		}

		name := filepath.Base(file)
		err := addFile(zw, file, name)
		switch {
		case err == nil:
			result.Entries = append(result.Entries, name)
			a.onProgress.Emit(model.ProgressEvent{Message: "Added to archive", Level: model.LevelVerbose, File: name})
		case isEntryError(err):
			result.Failed = append(result.Failed, EntryError{Name: name, Err: err})
			a.onProgress.Emit(model.ProgressEvent{
				Message: fmt.Sprintf("Error adding file to archive: %v", err),
				Level:   model.LevelError,
				File:    name,
			})
		default:
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: finalize: %v", model.ErrArchive, err)
	}
	return nil
}

// addFile adds file as a new entry called name.
//
// The file is first copied to a staging file so that an entry is only
// created once the whole source has been read. Read failures wrap
// model.ErrArchiveEntry and leave the archive unchanged; failures writing
// the archive wrap model.ErrArchive.
func addFile(zw *zip.Writer, file, name string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrArchiveEntry, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrArchiveEntry, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrArchiveEntry, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	staged, err := stage(f, name)
	if err != nil {
		return err
	}
	defer func() {
		staged.Close()
		os.Remove(staged.Name())
	}()

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrArchive, err)
	}
	if _, err := io.Copy(w, staged); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrArchive, name, err)
	}
	return nil
}

// stage copies src into a temporary file rewound to its start.
func stage(src io.Reader, name string) (*os.File, error) {
	tmp, err := os.CreateTemp("", "archive-entry-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrArchive, err)
	}
	discard := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	r := &errReader{r: src}
	if _, err := io.Copy(tmp, r); err != nil {
		discard()
		if r.err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", model.ErrArchiveEntry, name, r.err)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrArchive, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		discard()
		return nil, fmt.Errorf("%w: %v", model.ErrArchive, err)
	}
	return tmp, nil
}

// List returns the entry names of the archive at path, in archive order.
func List(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrArchive, err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}

func isExcluded(file string, exclude []string) bool {
	for _, ex := range exclude {
		if ioutils.SameFile(file, ex) {
			return true
		}
	}
	return false
}

func isEntryError(err error) bool {
	return errors.Is(err, model.ErrArchiveEntry)
}

type errReader struct {
	r   io.Reader
	err error
}

func (e *errReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && err != io.EOF {
		e.err = err
	}
	return n, err
}
