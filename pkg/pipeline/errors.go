package pipeline

import (
	"errors"
)

// Error taxonomy for the pipeline. Callers match with errors.Is; stages wrap
// these with context via fmt.Errorf and %w.
var (
	// ErrInvalidInput reports a bad time range, frame rate or dimension
	// constraint. Caller error, never retried.
	ErrInvalidInput = errors.New("gifclip: invalid input")

	// ErrSourceNotReady reports a source that cannot yet supply pixels.
	// The caller may retry after a readiness wait.
	ErrSourceNotReady = errors.New("gifclip: source not ready")

	// ErrSeekTimeout reports a frame whose positioning did not confirm in
	// time. The whole run aborts; frames are never silently skipped.
	ErrSeekTimeout = errors.New("gifclip: seek timeout")

	// ErrCancelled reports that the cancellation signal fired mid-run.
	// Always propagates, never retried.
	ErrCancelled = errors.New("gifclip: encoding cancelled")

	// ErrEmptyInput reports zero frames where at least one is required.
	ErrEmptyInput = errors.New("gifclip: no frames")
)
