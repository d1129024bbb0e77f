package compaction

import (
	"errors"
	"fmt"
)

// Sentinel errors for compaction operations.
var (
	// ErrSummarizerFailed indicates the injected Summarizer returned an error or panicked.
	ErrSummarizerFailed = errors.New("summarizer failed")

	// ErrEmptySummary indicates the Summarizer returned blank text.
	ErrEmptySummary = errors.New("summarizer returned empty summary")

	// ErrMalformedItem indicates an item the adapter could not classify.
	ErrMalformedItem = errors.New("malformed conversation item")

	// ErrInvalidConfig indicates invalid compaction configuration.
	ErrInvalidConfig = errors.New("invalid compaction configuration")
)

// SummarizerError carries the context of one failed Summarizer call.
// It matches both ErrSummarizerFailed and its underlying cause with errors.Is.
type SummarizerError struct {
	// Op is the pass that made the call ("per_turn" or "rolling_summary").
	Op string

	// Turn is the index of the turn within the selection, or -1 for a rolling pass.
	Turn int

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
func (e *SummarizerError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrSummarizerFailed, e.Op)
	if e.Turn >= 0 {
		msg += fmt.Sprintf(" turn %d", e.Turn)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrSummarizerFailed and the underlying error.
func (e *SummarizerError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSummarizerFailed}
	}
	return []error{ErrSummarizerFailed, e.Err}
}
