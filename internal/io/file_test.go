package ioutils

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/perini/anexos-downloader/internal/model"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	// reuse
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir on existing directory failed: %v", err)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(file); !errors.Is(err, model.ErrWrite) {
		t.Errorf("EnsureDir(file) = %v, want ErrWrite", err)
	}
}

func TestListRegularFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.xlsx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "c.pdf"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	files, err := ListRegularFiles(dir)
	if err != nil {
		t.Fatalf("ListRegularFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "a.xlsx" || filepath.Base(files[1]) != "b.pdf" {
		t.Errorf("unexpected order: %v", files)
	}
}

func TestRemoveFileAndSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.pdf")
	if err := os.WriteFile(path, []byte("1234"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := FileSize(path); got != 4 {
		t.Errorf("FileSize() = %d, want 4", got)
	}
	if err := RemoveFile(path); err != nil {
		t.Fatalf("RemoveFile failed: %v", err)
	}
	if got := FileSize(path); got != -1 {
		t.Errorf("FileSize() after remove = %d, want -1", got)
	}
	if err := RemoveFile(path); err != nil {
		t.Errorf("RemoveFile on missing file = %v, want nil", err)
	}
}

func TestSameFile(t *testing.T) {
	if !SameFile("downloads/x.zip", "./downloads/../downloads/x.zip") {
		t.Error("expected equivalent paths to match")
	}
	if SameFile("downloads/x.zip", "x.zip") {
		t.Error("expected different paths not to match")
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	in := map[string]int{"succeeded": 2}

	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]int
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out["succeeded"] != 2 {
		t.Errorf("got %v", out)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}
}
