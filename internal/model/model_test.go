package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
)

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://www.gov.br/media/Anexo_I_Rol.pdf", "Anexo_I_Rol.pdf"},
		{"https://www.gov.br/media/Anexo_I_Rol.pdf?download=1", "Anexo_I_Rol.pdf"},
		{"https://www.gov.br/media/Anexo_II.xlsx#top", "Anexo_II.xlsx"},
		{"https://www.gov.br/media/Anexo%20I.pdf", "Anexo I.pdf"},
		{"https://www.gov.br/media/", ""},
		{"https://www.gov.br", ""},
		{"Anexo_I.pdf", "Anexo_I.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FileNameFromURL(tt.input); got != tt.want {
				t.Errorf("FileNameFromURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewDownloadTask(t *testing.T) {
	task := NewDownloadTask("https://x.org/a/Anexo_I.pdf", "downloads")

	if task.FileName != "Anexo_I.pdf" {
		t.Errorf("FileName = %q, want %q", task.FileName, "Anexo_I.pdf")
	}
	if want := filepath.Join("downloads", "Anexo_I.pdf"); task.Path != want {
		t.Errorf("Path = %q, want %q", task.Path, want)
	}
	if task.Status != StatusPending {
		t.Errorf("Status = %q, want %q", task.Status, StatusPending)
	}

	empty := NewDownloadTask("https://x.org/a/", "downloads")
	if empty.Path != "" {
		t.Errorf("expected empty path for URL without file name, got %q", empty.Path)
	}
}

func TestReportCounts(t *testing.T) {
	report := NewReport([]*DownloadTask{
		{Status: StatusSucceeded, Bytes: 10},
		{Status: StatusFailed},
		{Status: StatusSucceeded, Bytes: 5},
	})

	if report.RunID == "" {
		t.Error("expected a run ID")
	}
	if got := report.Succeeded(); got != 2 {
		t.Errorf("Succeeded() = %d, want 2", got)
	}
	if got := report.Failed(); got != 1 {
		t.Errorf("Failed() = %d, want 1", got)
	}
	if got := report.Bytes(); got != 15 {
		t.Errorf("Bytes() = %d, want 15", got)
	}
	if !report.Finished() {
		t.Error("expected report to be finished")
	}

	report.Tasks = append(report.Tasks, &DownloadTask{Status: StatusInProgress})
	if report.Finished() {
		t.Error("report with an in-progress task must not be finished")
	}
}

func TestProgressFuncEmitNil(t *testing.T) {
	var f ProgressFunc
	f.Emit(ProgressEvent{Message: "ignored"})

	var got []ProgressEvent
	f = func(e ProgressEvent) { got = append(got, e) }
	f.Emit(ProgressEvent{Message: "kept", Level: LevelWarning})
	if len(got) != 1 || got[0].Level != LevelWarning {
		t.Errorf("unexpected events: %+v", got)
	}
}

func TestErrorsWrap(t *testing.T) {
	err := fmt.Errorf("%w: HTTP 404", ErrFetch)
	if !errors.Is(err, ErrFetch) {
		t.Error("wrapped error should match ErrFetch")
	}
	if errors.Is(err, ErrParse) {
		t.Error("wrapped error should not match ErrParse")
	}
}
