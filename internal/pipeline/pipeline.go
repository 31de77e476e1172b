package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/perini/anexos-downloader/internal/archive"
	"github.com/perini/anexos-downloader/internal/config"
	"github.com/perini/anexos-downloader/internal/download"
	"github.com/perini/anexos-downloader/internal/http"
	ioutils "github.com/perini/anexos-downloader/internal/io"
	"github.com/perini/anexos-downloader/internal/links"
	"github.com/perini/anexos-downloader/internal/model"
)

// Stage identifies the phase a run is in.
type Stage int32

const (
	StageIdle Stage = iota
	StageExtracting
	StageDownloading
	StageArchiving
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageExtracting:
		return "extracting"
	case StageDownloading:
		return "downloading"
	case StageArchiving:
		return "archiving"
	case StageDone:
		return "done"
	default:
		return "idle"
	}
}

// Result is the outcome of a completed run.
type Result struct {
	// Links are the target URLs found on the page.
	Links []string

	// Report holds one task per link with its final status.
	Report *model.Report

	// Archive describes the ZIP archive that was written.
	Archive *archive.Result
}

// Pipeline runs extraction, download and archiving in sequence.
//
// Example usage:
//
//	p := pipeline.New(settings, onProgress)
//	result, err := p.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d/%d files archived\n", len(result.Archive.Entries), len(result.Links))
type Pipeline struct {
	settings   *config.Settings
	extractor  *links.Extractor
	engine     *download.Engine
	archiver   *archive.Archiver
	onProgress model.ProgressFunc

	stage atomic.Int32
}

// New creates a Pipeline that talks to the network through an HTTP client
// built from settings.
func New(settings *config.Settings, onProgress model.ProgressFunc) *Pipeline {
	client := http.NewClient(settings.UserAgent, settings.TimeoutDuration())
	return NewWithClient(settings, client, onProgress)
}

// NewWithClient creates a Pipeline that uses client for both the page and
// the file downloads.
func NewWithClient(settings *config.Settings, client *http.Client, onProgress model.ProgressFunc) *Pipeline {
	rule := links.NewRule(settings.Markers, settings.Extensions, settings.CaseInsensitive)

	return &Pipeline{
		settings: settings,
		extractor: links.NewExtractor(client, rule, links.Options{
			BaseOrigin:  settings.BaseOrigin,
			Deduplicate: settings.DeduplicateLinks,
		}, onProgress),
		engine: download.NewEngine(client, download.Options{
			DestDir:            settings.DownloadDir,
			MaxRetries:         settings.MaxRetries,
			Timeout:            settings.TimeoutDuration(),
			RetryCooldown:      settings.RetryCooldown,
			RetryExponent:      settings.RetryExponent,
			RemovePartialFiles: settings.RemovePartialFiles,
		}, onProgress),
		archiver:   archive.NewArchiver(onProgress),
		onProgress: onProgress,
	}
}

// Extract fetches the configured page and returns its target links
// without downloading anything.
func (p *Pipeline) Extract(ctx context.Context) ([]string, error) {
	p.stage.Store(int32(StageExtracting))
	return p.extractor.Extract(ctx, p.settings.PageURL)
}

// Run executes a full run: ensure the download directory, extract links,
// download every link on a fixed-size pool, then archive the directory.
// When a report path is configured the report is written as JSON.
//
// Per-file download failures are recorded in the report and do not fail
// the run. Errors from directory creation (model.ErrWrite), page retrieval
// (model.ErrFetch, model.ErrParse) and archiving (model.ErrArchive) are
// returned. If ctx is canceled during the download phase, Run returns
// ctx.Err() with the partial result and skips archiving.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	defer p.stage.Store(int32(StageDone))

	if err := ioutils.EnsureDir(p.settings.DownloadDir); err != nil {
		return nil, err
	}

	urls, err := p.Extract(ctx)
	if err != nil {
		return nil, err
	}
	result := &Result{Links: urls}

	p.stage.Store(int32(StageDownloading))
	pool := download.NewPool(p.settings.Concurrency)
	p.onProgress.Emit(model.ProgressEvent{
		Message: fmt.Sprintf("Downloading %d files with %d workers", len(urls), pool.Size()),
		Level:   model.LevelInfo,
	})

	report := p.engine.DownloadAll(ctx, pool, urls)
	result.Report = report
	p.onProgress.Emit(model.ProgressEvent{
		Message: fmt.Sprintf("Downloads finished: %d succeeded, %d failed", report.Succeeded(), report.Failed()),
		Level:   model.LevelInfo,
	})

	if err := ctx.Err(); err != nil {
		p.writeReport(report)
		return result, err
	}

	p.stage.Store(int32(StageArchiving))
	archived, err := p.archiver.Build(p.settings.DownloadDir, p.settings.ArchivePath)
	if err != nil {
		p.writeReport(report)
		return result, err
	}
	result.Archive = archived

	p.writeReport(report)
	return result, nil
}

// Progress returns the current stage and download progress.
func (p *Pipeline) Progress() (stage Stage, received int64, filesFinished, filesTotal int32) {
	received, filesFinished, filesTotal = p.engine.Progress()
	return Stage(p.stage.Load()), received, filesFinished, filesTotal
}

// writeReport saves report when a report path is configured. A failure is
// reported as a warning only.
func (p *Pipeline) writeReport(report *model.Report) {
	if p.settings.ReportPath == "" || report == nil {
		return
	}
	if err := ioutils.WriteJSON(p.settings.ReportPath, report); err != nil {
		p.onProgress.Emit(model.ProgressEvent{
			Message: fmt.Sprintf("Could not write report: %v", err),
			Level:   model.LevelWarning,
			File:    p.settings.ReportPath,
		})
		return
	}
	p.onProgress.Emit(model.ProgressEvent{Message: "Report written", Level: model.LevelVerbose, File: p.settings.ReportPath})
}
