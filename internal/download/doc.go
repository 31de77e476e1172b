// Package download provides the concurrent download engine.
//
// # Engine
//
// The Engine fetches a list of URLs into a destination directory:
//
//  1. Create one DownloadTask per URL, named after the URL's last path segment
//  2. Warn about tasks that would write the same file
//  3. Run each task on a worker of the Pool
//  4. Retry each task up to MaxRetries times
//  5. Return once every task has succeeded or exhausted its attempts
//
// # Basic Usage
//
//	engine := download.NewEngine(client, download.Options{
//	    DestDir:    "downloads",
//	    MaxRetries: 3,
//	    Timeout:    15 * time.Second,
//	}, onProgress)
//
//	pool := download.NewPool(4)
//	report := engine.DownloadAll(ctx, pool, urls)
//	fmt.Printf("%d/%d downloaded\n", report.Succeeded(), len(report.Tasks))
//
// # Concurrency
//
// The Pool is a fixed number of workers built on errgroup.Group with a limit.
// Each worker runs one task, retries included, before it takes the next.
// DownloadAll joins the pool before it returns, so nothing downstream can
// observe a download in progress.
//
// # Retry Logic
//
// Each attempt produces an AttemptResult. Retryable failures (network
// errors, timeouts, non-2xx statuses, write errors) consume an attempt;
// fatal failures (a URL that cannot become a request or a file name) end the
// task immediately. An optional cooldown grows by RetryExponent between
// attempts.
//
// A task that fails all attempts may leave a partially written file. It is
// reported with a warning and kept unless Options.RemovePartialFiles is set.
package download
