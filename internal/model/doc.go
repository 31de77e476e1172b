// Package model defines the core data structures shared by the
// link extractor, the download engine, the archiver and the pipeline.
//
// # Download Tasks
//
// DownloadTask tracks one URL through its retry loop:
//
//	task := model.NewDownloadTask("https://example.org/media/Anexo_I.pdf", "downloads")
//	fmt.Println(task.FileName) // Anexo_I.pdf
//	fmt.Println(task.Path)     // downloads/Anexo_I.pdf
//
// A task is owned by exactly one worker, so its fields are written without
// locking. Its terminal Status is either StatusSucceeded or StatusFailed.
//
// # Reports
//
// Report collects every task of a run in input order:
//
//	report := model.NewReport(tasks)
//	fmt.Printf("%d/%d downloaded\n", report.Succeeded(), len(report.Tasks))
//
// # Progress Events
//
// Components never log on their own. They emit ProgressEvent values through a
// callback and leave rendering to the CLI or the TUI.
//
// # Errors
//
// Error kinds are sentinel values (ErrFetch, ErrParse, ErrWrite, ErrArchive,
// ErrArchiveEntry, ErrInvalidURL, ErrInvalidSettings) wrapped with %w, so
// callers test them with errors.Is.
package model
