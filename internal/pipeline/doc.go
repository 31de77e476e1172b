// Package pipeline sequences a complete run.
//
// # Phases
//
// A run goes through these steps, each starting only after the previous one
// has finished:
//
//  1. Ensure the download directory exists.
//  2. Fetch the page and extract the target links.
//  3. Download every link on a fixed-size worker pool and wait for all of
//     them to finish.
//  4. Pack the download directory into the ZIP archive.
//  5. Optionally write the run report as JSON.
//
// The pipeline holds no domain logic of its own. Download failures are
// part of the report; only directory, page and archive failures end a run.
package pipeline
