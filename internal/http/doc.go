// Package http provides the HTTP client used to read the source page and
// download the annex files.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Timeout handling
//   - Streaming downloads with progress tracking
//   - Mapping transport failures onto model.ErrFetch, model.ErrWrite and
//     model.ErrInvalidURL
//
// # Basic Usage
//
//	client := http.NewClient(userAgent, 15*time.Second)
//
//	// Fetch HTML page
//	body, _, err := client.Open(ctx, pageURL)
//	defer body.Close()
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, fileURL, "/downloads/Anexo_I.pdf", func(written, total int64) {
//	    fmt.Printf("%d / %d bytes\n", written, total)
//	})
package http
