package download

import (
	"context"
	"errors"

	"github.com/perini/anexos-downloader/internal/model"
)

// AttemptKind classifies the outcome of one download attempt.
type AttemptKind int

const (
	// AttemptSuccess means the file was written completely.
	AttemptSuccess AttemptKind = iota
	// AttemptRetryable means the attempt failed and another may succeed.
	AttemptRetryable
	// AttemptFatal means no further attempt can succeed.
	AttemptFatal
)

func (k AttemptKind) String() string {
	switch k {
	case AttemptSuccess:
		return "success"
	case AttemptRetryable:
		return "retryable"
	case AttemptFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// AttemptResult is the result of one attempt.
type AttemptResult struct {
	Kind  AttemptKind
	Bytes int64
	Err   error
}

// classify maps an attempt error onto an AttemptResult.
//
// Invalid URLs are fatal. Everything else, including timeouts, non-2xx
// statuses and filesystem write errors, is retryable.
func classify(n int64, err error) AttemptResult {
	switch {
	case err == nil:
		return AttemptResult{Kind: AttemptSuccess, Bytes: n}
	case errors.Is(err, model.ErrInvalidURL):
		return AttemptResult{Kind: AttemptFatal, Bytes: n, Err: err}
	default:
		return AttemptResult{Kind: AttemptRetryable, Bytes: n, Err: err}
	}
}

// isCanceled reports whether the run context itself is done, as opposed to
// a single attempt timing out.
func isCanceled(ctx context.Context) bool {
	return ctx.Err() != nil
}
