package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyProcessing = errors.New("video is already being processed")
	ErrNotProcessed      = errors.New("video has not been processed yet")
)

// ProbeError means the total duration of a source could not be determined.
// It is fatal: the job aborts before any segment is attempted.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// SegmentationError means the per-segment failure counter reached the fatal
// threshold and the whole job was aborted, discarding any segments already
// produced for that run.
type SegmentationError struct {
	Failures int
	LastErr  error
}

func (e *SegmentationError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("too many segment failures (%d): %v", e.Failures, e.LastErr)
	}
	return fmt.Sprintf("too many segment failures (%d)", e.Failures)
}

func (e *SegmentationError) Unwrap() error { return e.LastErr }
