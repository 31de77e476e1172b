package download

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	ioutils "github.com/perini/anexos-downloader/internal/io"
	"github.com/perini/anexos-downloader/internal/model"
)

// Fetcher streams the body of a URL into a file.
//
// onProgress must be called once the destination file has been created or
// truncated, and after every write. The engine uses the first call to learn
// that an attempt touched the file.
//
// *http.Client from internal/http satisfies this interface.
type Fetcher interface {
	DownloadFile(ctx context.Context, rawURL, destPath string, onProgress func(written, total int64)) (int64, error)
}

// Options configures an Engine.
type Options struct {
	// DestDir is the directory files are written to.
	DestDir string

	// MaxRetries is the number of attempts per URL, including the first.
	MaxRetries int

	// Timeout bounds a single attempt. Zero leaves it to the Fetcher.
	Timeout time.Duration

	// RetryCooldown is the wait in seconds before the second attempt.
	// Each later wait is multiplied by RetryExponent. Zero disables waiting.
	RetryCooldown float64
	RetryExponent float64

	// RemovePartialFiles deletes a file left behind by a task that failed
	// all its attempts.
	RemovePartialFiles bool
}

// Engine downloads a list of URLs with bounded concurrency and per-URL
// retry. One URL's failure never affects another.
type Engine struct {
	fetcher    Fetcher
	opts       Options
	onProgress model.ProgressFunc

	totalFiles    int32
	finishedFiles int32
	receivedBytes int64

	// mu guards writers and completed, both keyed by destination path.
	// writers holds the last task that created each file; completed marks
	// files a task finished successfully.
	mu        sync.Mutex
	writers   map[string]*model.DownloadTask
	completed map[string]bool
}

// NewEngine creates a new Engine.
func NewEngine(fetcher Fetcher, opts Options, onProgress model.ProgressFunc) *Engine {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	return &Engine{
		fetcher:    fetcher,
		opts:       opts,
		onProgress: onProgress,
	}
}

// DownloadAll downloads every URL on pool and blocks until each task has
// reached a terminal state.
//
// The returned report lists the tasks in the order of urls. DownloadAll does
// not fail as a whole; per-URL failures are recorded in their tasks.
func (e *Engine) DownloadAll(ctx context.Context, pool *Pool, urls []string) *model.Report {
	tasks := make([]*model.DownloadTask, len(urls))
	for i, u := range urls {
		tasks[i] = model.NewDownloadTask(u, e.opts.DestDir)
	}
	report := model.NewReport(tasks)

	atomic.StoreInt32(&e.totalFiles, int32(len(tasks)))
	atomic.StoreInt32(&e.finishedFiles, 0)
	atomic.StoreInt64(&e.receivedBytes, 0)

	e.mu.Lock()
	e.writers = make(map[string]*model.DownloadTask)
	e.completed = make(map[string]bool)
	e.mu.Unlock()

	e.warnCollisions(tasks)

	for _, task := range tasks {
		pool.Go(func() {
			e.download(ctx, task)
			atomic.AddInt32(&e.finishedFiles, 1)
		})
	}
	pool.Wait()

	report.FinishedAt = time.Now().UTC()
	return report
}

// Progress returns current download progress.
func (e *Engine) Progress() (received int64, filesFinished, filesTotal int32) {
	return atomic.LoadInt64(&e.receivedBytes),
		atomic.LoadInt32(&e.finishedFiles), atomic.LoadInt32(&e.totalFiles)
}

// download runs the retry loop of one task.
func (e *Engine) download(ctx context.Context, task *model.DownloadTask) {
	task.Status = model.StatusInProgress

	var (
		result AttemptResult
		wrote  bool
	)
	for attempt := 1; attempt <= e.opts.MaxRetries; attempt++ {
		task.Attempts = attempt
		e.emit(model.LevelVerbose, task, "Starting download")

		var touched bool
		result, touched = e.attempt(ctx, task)
		wrote = wrote || touched
		if result.Kind == AttemptSuccess {
			break
		}

		task.LastError = result.Err.Error()
		e.emit(model.LevelWarning, task, fmt.Sprintf("Attempt %d/%d failed: %v", attempt, e.opts.MaxRetries, result.Err))

		if result.Kind == AttemptFatal || isCanceled(ctx) || attempt == e.opts.MaxRetries {
			break
		}
		e.waitForRetry(ctx, attempt-1)
	}

	if result.Kind == AttemptSuccess {
		task.Status = model.StatusSucceeded
		task.Bytes = result.Bytes
		task.LastError = ""
		e.markCompleted(task)
		e.emit(model.LevelSuccess, task, fmt.Sprintf("Downloaded %s (%d bytes)", task.FileName, task.Bytes))
		return
	}

	task.Status = model.StatusFailed
	e.emit(model.LevelError, task, fmt.Sprintf("Failed after %d attempt(s): %s", task.Attempts, task.LastError))
	if wrote {
		e.handleLeftover(task)
	}
}

// attempt performs one bounded attempt. touched reports whether the
// attempt created or truncated the destination file.
func (e *Engine) attempt(ctx context.Context, task *model.DownloadTask) (result AttemptResult, touched bool) {
	if task.Path == "" {
		return AttemptResult{
			Kind: AttemptFatal,
			Err:  fmt.Errorf("%w: no file name in %q", model.ErrInvalidURL, task.URL),
		}, false
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	var written int64
	n, err := e.fetcher.DownloadFile(ctx, task.URL, task.Path, func(w, _ int64) {
		if !touched {
			touched = true
			e.claim(task)
		}
		atomic.AddInt64(&e.receivedBytes, w-written)
		written = w
	})
	if err != nil {
		atomic.AddInt64(&e.receivedBytes, -written)
	}
	return classify(n, err), touched
}

// claim records task as the last writer of its file.
func (e *Engine) claim(task *model.DownloadTask) {
	e.mu.Lock()
	e.writers[task.Path] = task
	e.mu.Unlock()
}

func (e *Engine) markCompleted(task *model.DownloadTask) {
	e.mu.Lock()
	e.completed[task.Path] = true
	e.mu.Unlock()
}

// handleLeftover reports, and optionally removes, a file written by a task
// that failed all its attempts. A file last written by another task is left
// alone, and a file that another task of the same name completed is never
// removed.
func (e *Engine) handleLeftover(task *model.DownloadTask) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.writers[task.Path] != task {
		return
	}
	after, err := os.Stat(task.Path)
	if err != nil {
		return
	}

	if !e.opts.RemovePartialFiles || e.completed[task.Path] {
		e.emit(model.LevelWarning, task, fmt.Sprintf("Partial file left on disk (%d bytes)", after.Size()))
		return
	}
	if err := ioutils.RemoveFile(task.Path); err != nil {
		e.emit(model.LevelWarning, task, fmt.Sprintf("Could not remove partial file: %v", err))
		return
	}
	delete(e.writers, task.Path)
	e.emit(model.LevelVerbose, task, "Removed partial file")
}

// warnCollisions reports tasks that would write the same file.
func (e *Engine) warnCollisions(tasks []*model.DownloadTask) {
	byName := make(map[string][]*model.DownloadTask)
	var order []string
	for _, t := range tasks {
		if t.FileName == "" {
			continue
		}
		if _, ok := byName[t.FileName]; !ok {
			order = append(order, t.FileName)
		}
		byName[t.FileName] = append(byName[t.FileName], t)
	}

	for _, name := range order {
		group := byName[name]
		if len(group) < 2 {
			continue
		}
		distinct := make(map[string]struct{})
		for _, t := range group {
			distinct[t.URL] = struct{}{}
		}
		msg := fmt.Sprintf("%d tasks write %s; the last one to finish wins", len(group), name)
		if len(distinct) == 1 {
			msg = fmt.Sprintf("URL listed %d times; %s will be downloaded %d times", len(group), name, len(group))
		}
		e.onProgress.Emit(model.ProgressEvent{Message: msg, Level: model.LevelWarning, File: name})
	}
}

func (e *Engine) waitForRetry(ctx context.Context, tries int) {
	if e.opts.RetryCooldown <= 0 {
		return
	}
	exp := e.opts.RetryExponent
	if exp <= 0 {
		exp = 1
	}
	cooldown := e.opts.RetryCooldown * math.Pow(exp, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (e *Engine) emit(level model.ProgressLevel, task *model.DownloadTask, msg string) {
	e.onProgress.Emit(model.ProgressEvent{
		Message: msg,
		Level:   level,
		URL:     task.URL,
		Attempt: task.Attempts,
		File:    task.FileName,
	})
}
