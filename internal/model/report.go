package model

import (
	"time"

	"github.com/google/uuid"
)

// Report is the informational outcome of a download phase.
//
// Tasks keep the order of the input URL list. A failed task never makes the
// whole report an error.
type Report struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Tasks      []*DownloadTask `json:"tasks"`
}

// NewReport creates a report for tasks stamped with a fresh run ID.
func NewReport(tasks []*DownloadTask) *Report {
	return &Report{
		RunID:     newRunID(),
		StartedAt: time.Now().UTC(),
		Tasks:     tasks,
	}
}

// Succeeded returns the number of tasks that finished successfully.
func (r *Report) Succeeded() int {
	n := 0
	for _, t := range r.Tasks {
		if t.Status == StatusSucceeded {
			n++
		}
	}
	return n
}

// Failed returns the number of tasks that exhausted their attempts.
func (r *Report) Failed() int {
	n := 0
	for _, t := range r.Tasks {
		if t.Status == StatusFailed {
			n++
		}
	}
	return n
}

// Finished reports whether every task reached a terminal state.
func (r *Report) Finished() bool {
	for _, t := range r.Tasks {
		if !t.Status.IsFinished() {
			return false
		}
	}
	return true
}

// Bytes returns the total size of the successful downloads.
func (r *Report) Bytes() int64 {
	var total int64
	for _, t := range r.Tasks {
		total += t.Bytes
	}
	return total
}

// newRunID uses UUID v7 so run IDs sort by creation time.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
